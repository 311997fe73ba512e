package builder

import (
	"bytes"
	"os"
	"regexp"
)

var includeRegexp = regexp.MustCompile(`(?s)<%@\s*(.*?)\s*%>`)
var dataBlockOpenRegexp = regexp.MustCompile(`<template:([^>/\s]+)>`)
var placeholderRegexp = regexp.MustCompile(`<template:([^>/\s]+?)\s*/?>`)
var residualTemplateRegexp = regexp.MustCompile(`<template:[^>]+?\s*/>`)

// IncludePass splices referenced partials in place of <%@ ref %> directives.
// Data blocks declared in the including document feed placeholder
// substitution inside each partial, substitution stays single-level.
type IncludePass struct {
	builder *Builder
}

func (ip *IncludePass) Init() error {
	ip.builder.debug("pass", "include", "msg", "init")
	return nil
}

func (ip *IncludePass) Process(doc []byte, docPath string) ([]byte, error) {
	// Data blocks must come out before any include is touched, the
	// extracted map is what feeds substitution into the partials.
	data, doc := extractDataBlocks(doc)

	doc = includeRegexp.ReplaceAllFunc(doc, func(directive []byte) []byte {
		ref := string(includeRegexp.FindSubmatch(directive)[1])

		p, ok := resolveLocal(ref, docPath)
		if !ok {
			ip.builder.warn("pass", "include", "msg", "Partial not found", "ref", ref, "file", docPath)
			return nil
		}

		partial, err := os.ReadFile(p)
		if err != nil {
			ip.builder.warn("pass", "include", "msg", "Partial unreadable", "ref", ref, "file", docPath, "err", err)
			return nil
		}
		if len(partial) == 0 {
			ip.builder.warn("pass", "include", "msg", "Partial empty", "ref", ref, "file", docPath)
			return directive
		}

		return substitute(replaceWindowsCarriageReturn(partial), data)
	})

	// Anything self-closing that survived substitution is dead markup.
	return residualTemplateRegexp.ReplaceAll(doc, nil), nil
}

// extractDataBlocks collects <template:KEY>…</template:KEY> pairs into a
// key → trimmed-value map and returns the document without them. An opening
// tag with no matching closer is a placeholder, not a data block, and is
// left where it stands.
func extractDataBlocks(doc []byte) (map[string]string, []byte) {
	data := map[string]string{}
	out := make([]byte, 0, len(doc))

	for {
		loc := dataBlockOpenRegexp.FindSubmatchIndex(doc)
		if loc == nil {
			out = append(out, doc...)
			break
		}

		key := string(doc[loc[2]:loc[3]])
		rest := doc[loc[1]:]

		ci := bytes.Index(rest, []byte("</template:"+key+">"))
		if ci < 0 {
			out = append(out, doc[:loc[1]]...)
			doc = rest
			continue
		}

		data[key] = string(bytes.TrimSpace(rest[:ci]))
		out = append(out, doc[:loc[0]]...)
		doc = rest[ci+len("</template:"+key+">"):]
	}

	return data, out
}

// substitute replaces mapped placeholders in a partial. The partial is
// scanned exactly once, values carrying placeholder syntax of their own are
// never re-expanded.
func substitute(partial []byte, data map[string]string) []byte {
	out := placeholderRegexp.ReplaceAllFunc(partial, func(m []byte) []byte {
		key := string(placeholderRegexp.FindSubmatch(m)[1])
		if v, ok := data[key]; ok {
			return []byte(v)
		}
		return m
	})

	for key := range data {
		out = bytes.ReplaceAll(out, []byte("</template:"+key+">"), nil)
	}

	return out
}
