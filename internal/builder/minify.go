package builder

import (
	"bytes"
	"regexp"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/js"
)

// CodeMinifier shrinks CSS/JS text. Implementations may fail, callers are
// expected to fall back to the unminified input rather than abort a build.
type CodeMinifier interface {
	Minify(mediatype string, b []byte) ([]byte, error)
}

type TDMinifier struct {
	Minifier *minify.M
}

func NewTDMinifier() *TDMinifier {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFuncRegexp(regexp.MustCompile("^(application|text)/(x-)?(java|ecma)script$"), js.Minify)
	return &TDMinifier{Minifier: m}
}

func (m *TDMinifier) Minify(mediatype string, b []byte) ([]byte, error) {
	return m.Minifier.Bytes(mediatype, b)
}

type NOOPMinifier struct {
}

func (m *NOOPMinifier) Minify(mediatype string, b []byte) ([]byte, error) {
	return b, nil
}

var htmlCommentRegexp = regexp.MustCompile(`(?s)<!--.*?-->`)
var whitespaceRunRegexp = regexp.MustCompile(`\s+`)
var interTagSpaceRegexp = regexp.MustCompile(`>\s+<`)

// minifyHTML is a plain text transform, it has no notion of <pre> or
// <script> content semantics.
func minifyHTML(doc []byte, stripComments, collapseWhitespace bool) []byte {
	if stripComments {
		doc = htmlCommentRegexp.ReplaceAll(doc, nil)
	}
	if collapseWhitespace {
		doc = whitespaceRunRegexp.ReplaceAll(doc, []byte(" "))
		doc = interTagSpaceRegexp.ReplaceAll(doc, []byte("><"))
		doc = bytes.TrimSpace(doc)
	}
	return doc
}

type HTMLMinifyPass struct {
	builder *Builder
}

func (mp *HTMLMinifyPass) Init() error {
	mp.builder.debug("pass", "minify", "msg", "init")
	return nil
}

func (mp *HTMLMinifyPass) Process(doc []byte, docPath string) ([]byte, error) {
	return minifyHTML(doc, true, true), nil
}
