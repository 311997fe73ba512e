package builder

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/google/uuid"
)

var scriptBlockOpenRegexp = regexp.MustCompile(`<([a-zA-Z]+)[^>]*>%%`)

// ScriptBlockPass rewrites <tag>%% js %%</tag> blocks into a data-bound
// element plus a <script> assigning the element's textContent from the
// minified JS. Matching is single-level, a block never descends into nested
// elements of the same tag.
type ScriptBlockPass struct {
	builder *Builder
}

func (sb *ScriptBlockPass) Init() error {
	sb.builder.debug("pass", "script", "msg", "init")
	return nil
}

func (sb *ScriptBlockPass) Process(doc []byte, docPath string) ([]byte, error) {
	out := make([]byte, 0, len(doc))

	for {
		loc := scriptBlockOpenRegexp.FindSubmatchIndex(doc)
		if loc == nil {
			out = append(out, doc...)
			break
		}

		tag := string(doc[loc[2]:loc[3]])
		rest := doc[loc[1]:]

		closer := []byte("%%</" + tag + ">")
		ci := bytes.Index(rest, closer)
		if ci < 0 {
			out = append(out, doc[:loc[1]]...)
			doc = rest
			continue
		}

		js := bytes.TrimSpace(rest[:ci])

		min, err := sb.builder.Code.Minify("application/javascript", js)
		if err != nil {
			sb.builder.error("pass", "script", "msg", "Minification failed, embedding as-is", "file", docPath, "err", err)
			min = js
		}

		// One id per block, collisions would break the selector.
		id := uuid.NewString()

		out = append(out, doc[:loc[0]]...)
		out = append(out, fmt.Sprintf(`<%s data-ref=%q>`, tag, id)...)
		out = append(out, fmt.Sprintf(`<script>document.querySelector("[data-ref=\"%s\"]").textContent = %s;</script>`, id, min)...)
		out = append(out, fmt.Sprintf(`</%s>`, tag)...)

		doc = rest[ci+len(closer):]
	}

	return out, nil
}
