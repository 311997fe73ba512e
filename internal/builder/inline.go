package builder

import (
	"os"
	"regexp"
	"strings"
)

var linkTagRegexp = regexp.MustCompile(`(?is)<link\b[^>]*>`)
var hrefAttrRegexp = regexp.MustCompile(`(?is)href\s*=\s*["']([^"']*)["']`)
var relStylesheetRegexp = regexp.MustCompile(`(?is)rel\s*=\s*["']stylesheet["']`)
var scriptSrcTagRegexp = regexp.MustCompile(`(?is)<script\b[^>]*?src\s*=\s*["']([^"']*)["'][^>]*></script>`)

// CSSInliner swaps local stylesheet links for inline <style> elements.
type CSSInliner struct {
	builder *Builder
}

func (cb *CSSInliner) Init() error {
	cb.builder.debug("pass", "css", "msg", "init")
	return nil
}

func (cb *CSSInliner) Process(doc []byte, docPath string) ([]byte, error) {
	return linkTagRegexp.ReplaceAllFunc(doc, func(tag []byte) []byte {
		if !relStylesheetRegexp.Match(tag) {
			return tag
		}
		m := hrefAttrRegexp.FindSubmatch(tag)
		if m == nil {
			return tag
		}
		href := strings.TrimSpace(string(m[1]))

		body, ok := cb.builder.loadAsset("css", href, docPath)
		if !ok {
			return tag
		}

		min, err := cb.builder.Code.Minify("text/css", body)
		if err != nil {
			cb.builder.error("pass", "css", "msg", "Minification failed, inlining as-is", "ref", href, "file", docPath, "err", err)
			min = body
		}

		out := make([]byte, 0, len(min)+len("<style></style>"))
		out = append(out, "<style>"...)
		out = append(out, min...)
		return append(out, "</style>"...)
	}), nil
}

// JSInliner swaps local <script src> pairs for inline <script> elements.
type JSInliner struct {
	builder *Builder
}

func (jb *JSInliner) Init() error {
	jb.builder.debug("pass", "js", "msg", "init")
	return nil
}

func (jb *JSInliner) Process(doc []byte, docPath string) ([]byte, error) {
	return scriptSrcTagRegexp.ReplaceAllFunc(doc, func(tag []byte) []byte {
		src := strings.TrimSpace(string(scriptSrcTagRegexp.FindSubmatch(tag)[1]))

		body, ok := jb.builder.loadAsset("js", src, docPath)
		if !ok {
			return tag
		}

		min, err := jb.builder.Code.Minify("application/javascript", body)
		if err != nil {
			jb.builder.error("pass", "js", "msg", "Minification failed, inlining as-is", "ref", src, "file", docPath, "err", err)
			min = body
		}

		out := make([]byte, 0, len(min)+len("<script></script>"))
		out = append(out, "<script>"...)
		out = append(out, min...)
		return append(out, "</script>"...)
	}), nil
}

// loadAsset fetches a local asset reference for inlining. External
// references and every degradation case (missing file, unreadable file,
// empty content) report not-ok so the caller keeps the original tag.
func (b *Builder) loadAsset(kind, ref, docPath string) ([]byte, bool) {
	if isExternalRef(ref) {
		return nil, false
	}

	p, ok := resolveLocal(ref, docPath)
	if !ok {
		b.warn("pass", kind, "msg", "Asset not found", "ref", ref, "file", docPath)
		return nil, false
	}

	body, err := os.ReadFile(p)
	if err != nil {
		b.warn("pass", kind, "msg", "Asset unreadable", "ref", ref, "file", docPath, "err", err)
		return nil, false
	}
	// Only a zero-length read counts as empty, whitespace is content.
	if len(body) == 0 {
		b.warn("pass", kind, "msg", "Asset empty", "ref", ref, "file", docPath)
		return nil, false
	}

	return body, true
}
