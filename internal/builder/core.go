package builder

import (
	"github.com/go-kit/log"
)

type Builder struct {
	RootFolder string
	SrcDir     string
	BuildDir   string
	PagesDir   string

	// Minify toggles the final document minification pass. Inlined CSS/JS
	// is minified regardless, matching build and serve behavior.
	Minify bool

	// Vars is the flat configuration map handed in by the caller. The
	// pipeline carries it but attaches no meaning to its contents.
	Vars map[string]string

	Log  log.Logger
	Code CodeMinifier

	passes []Pass
}

// Pass is one document rewriting stage. Process receives the current
// document bytes plus the absolute path of the source file so relative
// references can be resolved against the document's own directory.
type Pass interface {
	Init() error
	Process(doc []byte, docPath string) ([]byte, error)
}
