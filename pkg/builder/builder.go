package builder

import "github.com/emberstate/emberfront/internal/builder"

type Builder interface {
	Init() error
	Build() error
}

// NewBuilder returns a release-mode builder (minification enabled) for the
// given source and output trees.
func NewBuilder(srcDir, buildDir, rootDir string) Builder {
	return builder.NewBuilder(srcDir, buildDir, rootDir)
}
