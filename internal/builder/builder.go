package builder

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/emberstate/emberfront/internal/elogger"
)

func NewBuilder(srcDir, buildDir, rootDir string) *Builder {
	return &Builder{
		RootFolder: rootDir,
		SrcDir:     srcDir,
		BuildDir:   buildDir,
		Minify:     true,
		Log:        elogger.Log,
		Code:       NewTDMinifier(),
	}
}

func (b *Builder) Init() error {
	if b.RootFolder == "" {
		b.RootFolder = "."
	}
	if b.SrcDir == "" {
		b.SrcDir = filepath.Join(b.RootFolder, "src")
	}
	if b.BuildDir == "" {
		b.BuildDir = filepath.Join(b.RootFolder, "dist")
	}
	if b.PagesDir == "" {
		b.PagesDir = "pages"
	}
	if b.Log == nil {
		b.Log = elogger.Log
	}
	if b.Code == nil {
		b.Code = NewTDMinifier()
	}

	if _, err := os.Stat(b.SrcDir); os.IsNotExist(err) {
		b.error("msg", "Src folder not found", "path", b.SrcDir)
		return errors.New("src folder not found")
	}

	b.passes = []Pass{
		&IncludePass{builder: b},
		&CSSInliner{builder: b},
		&JSInliner{builder: b},
		&ScriptBlockPass{builder: b},
	}
	if b.Minify {
		b.passes = append(b.passes, &HTMLMinifyPass{builder: b})
	}

	for _, p := range b.passes {
		err := p.Init()
		if err != nil {
			return err
		}
	}

	return nil
}

func (b *Builder) ShouldHandle(name string) bool {
	folderList := strings.Split(name, string(filepath.Separator))
	for _, v := range folderList {
		if len(v) > 0 && (v[0] == '.' || v[0] == '_') {
			return false
		}
	}
	return true
}

func (b *Builder) Build() error {
	err := b.Init()
	if err != nil {
		return err
	}

	err = os.RemoveAll(b.BuildDir)
	if err != nil {
		b.error("msg", "Failed to remove build folder", "path", b.BuildDir, "err", err)
		return errors.Wrap(err, "remove build folder")
	}
	err = os.MkdirAll(b.BuildDir, 0755)
	if err != nil {
		b.error("msg", "Failed to create build folder", "path", b.BuildDir, "err", err)
		return errors.Wrap(err, "create build folder")
	}

	b.info("msg", "Building started", "path", b.SrcDir)
	defer b.info("msg", "Building finished", "path", b.SrcDir)

	pagesRoot := filepath.Join(b.SrcDir, b.PagesDir)
	if _, err := os.Stat(pagesRoot); os.IsNotExist(err) {
		b.warn("msg", "Pages folder not found, nothing to build", "path", pagesRoot)
		return nil
	}

	return filepath.Walk(pagesRoot, func(absolutepath string, info fs.FileInfo, err error) error {
		if err != nil {
			return errors.Wrapf(err, "walk %s", absolutepath)
		}
		if info.IsDir() {
			return nil
		}

		path, err := filepath.Rel(b.SrcDir, absolutepath)
		if err != nil {
			b.error("msg", "Failed to get relative path", "path", absolutepath, "err", err)
			return errors.Wrap(err, "relative path")
		}

		if !b.ShouldHandle(path) || filepath.Ext(path) != ".html" {
			return nil
		}

		err = b.ProcessFile(absolutepath, path)
		if err != nil {
			b.error("msg", "Error processing file", "path", path, "err", err)
			return err
		}
		return nil
	})
}

// ProcessFile runs the pass chain over one source document and writes the
// result at the flattened output location.
func (b *Builder) ProcessFile(absolutepath, relpath string) error {
	b.debug("msg", "processing", "file", relpath)

	doc, err := os.ReadFile(absolutepath)
	if err != nil {
		return errors.Wrapf(err, "read %s", relpath)
	}

	doc = replaceWindowsCarriageReturn(doc)

	for _, p := range b.passes {
		doc, err = p.Process(doc, absolutepath)
		if err != nil {
			return err
		}
	}

	outPath := filepath.Join(b.BuildDir, b.RewritePath(relpath))
	err = os.MkdirAll(filepath.Dir(outPath), 0755)
	if err != nil {
		return errors.Wrapf(err, "create output folder for %s", relpath)
	}

	err = os.WriteFile(outPath, doc, 0644)
	if err != nil {
		return errors.Wrapf(err, "write %s", outPath)
	}
	return nil
}

// RewritePath strips the leading pages segment, files under it land at the
// output root. The mapping is a pure function of the input path.
func (b *Builder) RewritePath(path string) string {
	if strings.HasPrefix(path, b.PagesDir+string(filepath.Separator)) {
		return path[len(b.PagesDir)+1:]
	}
	return path
}
