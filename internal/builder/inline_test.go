package builder

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingMinifier struct{}

func (failingMinifier) Minify(mediatype string, b []byte) ([]byte, error) {
	return nil, errors.New("minifier exploded")
}

func TestCSSInline(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	writeFile(t, filepath.Join(src, "css", "site.css"), "body { color : red ; }\n")
	docPath := filepath.Join(src, "pages", "index.html")
	writeFile(t, docPath, "placeholder")

	b, _ := testBuilder(t, src, filepath.Join(root, "dist"))
	pass := &CSSInliner{builder: b}

	out, err := pass.Process([]byte(`<link rel="stylesheet" href="../css/site.css">`), docPath)
	require.NoError(t, err)
	assert.Equal(t, "<style>body{color:red}</style>", string(out))
}

func TestCSSInlineAttributeOrderInsensitive(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	writeFile(t, filepath.Join(src, "css", "site.css"), "a{b:c}")
	docPath := filepath.Join(src, "pages", "index.html")
	writeFile(t, docPath, "placeholder")

	b, _ := testBuilder(t, src, filepath.Join(root, "dist"))
	pass := &CSSInliner{builder: b}

	out, err := pass.Process([]byte(`<link href='../css/site.css' REL='stylesheet'>`), docPath)
	require.NoError(t, err)
	assert.Equal(t, "<style>a{b:c}</style>", string(out))
}

func TestCSSInlineIgnoresNonStylesheetLinks(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	docPath := filepath.Join(src, "pages", "index.html")
	writeFile(t, docPath, "placeholder")

	b, _ := testBuilder(t, src, filepath.Join(root, "dist"))
	pass := &CSSInliner{builder: b}

	tag := `<link rel="icon" href="../favicon.ico">`
	out, err := pass.Process([]byte(tag), docPath)
	require.NoError(t, err)
	assert.Equal(t, tag, string(out))
}

func TestCSSInlineExternalReferencesUntouched(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	docPath := filepath.Join(src, "pages", "index.html")
	writeFile(t, docPath, "placeholder")

	b, buf := testBuilder(t, src, filepath.Join(root, "dist"))
	pass := &CSSInliner{builder: b}

	for _, tag := range []string{
		`<link rel="stylesheet" href="https://example.com/a.css">`,
		`<link rel="stylesheet" href="http://example.com/a.css">`,
		`<link rel="stylesheet" href="//example.com/a.css">`,
	} {
		out, err := pass.Process([]byte(tag), docPath)
		require.NoError(t, err)
		assert.Equal(t, tag, string(out))
	}
	assert.Empty(t, buf.String())
}

func TestCSSInlineMissingFileWarnsOnce(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	docPath := filepath.Join(src, "pages", "index.html")
	writeFile(t, docPath, "placeholder")

	b, buf := testBuilder(t, src, filepath.Join(root, "dist"))
	pass := &CSSInliner{builder: b}

	tag := `<link rel="stylesheet" href="../css/missing.css">`
	out, err := pass.Process([]byte(tag), docPath)
	require.NoError(t, err)

	assert.Equal(t, tag, string(out))
	assert.Equal(t, 1, strings.Count(buf.String(), "Asset not found"))
}

func TestCSSInlineEmptyFileWarns(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	writeFile(t, filepath.Join(src, "css", "empty.css"), "")
	docPath := filepath.Join(src, "pages", "index.html")
	writeFile(t, docPath, "placeholder")

	b, buf := testBuilder(t, src, filepath.Join(root, "dist"))
	pass := &CSSInliner{builder: b}

	tag := `<link rel="stylesheet" href="../css/empty.css">`
	out, err := pass.Process([]byte(tag), docPath)
	require.NoError(t, err)

	assert.Equal(t, tag, string(out))
	assert.Contains(t, buf.String(), "Asset empty")
}

func TestCSSInlineWhitespaceOnlyFileIsContent(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	writeFile(t, filepath.Join(src, "css", "blank.css"), "  \n")
	docPath := filepath.Join(src, "pages", "index.html")
	writeFile(t, docPath, "placeholder")

	b, buf := testBuilder(t, src, filepath.Join(root, "dist"))
	b.Code = &NOOPMinifier{}
	pass := &CSSInliner{builder: b}

	out, err := pass.Process([]byte(`<link rel="stylesheet" href="../css/blank.css">`), docPath)
	require.NoError(t, err)

	assert.Equal(t, "<style>  \n</style>", string(out))
	assert.Empty(t, buf.String())
}

func TestCSSInlineMinifierFailureFallsBack(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	writeFile(t, filepath.Join(src, "css", "site.css"), "body { color: red; }")
	docPath := filepath.Join(src, "pages", "index.html")
	writeFile(t, docPath, "placeholder")

	b, buf := testBuilder(t, src, filepath.Join(root, "dist"))
	b.Code = failingMinifier{}
	pass := &CSSInliner{builder: b}

	out, err := pass.Process([]byte(`<link rel="stylesheet" href="../css/site.css">`), docPath)
	require.NoError(t, err)

	assert.Equal(t, "<style>body { color: red; }</style>", string(out))
	assert.Contains(t, buf.String(), "Minification failed")
}

func TestJSInline(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	writeFile(t, filepath.Join(src, "js", "app.js"), "var answer = 42;\n")
	docPath := filepath.Join(src, "pages", "index.html")
	writeFile(t, docPath, "placeholder")

	b, _ := testBuilder(t, src, filepath.Join(root, "dist"))
	b.Code = &NOOPMinifier{}
	pass := &JSInliner{builder: b}

	out, err := pass.Process([]byte(`<script src="../js/app.js"></script>`), docPath)
	require.NoError(t, err)
	assert.Equal(t, "<script>var answer = 42;\n</script>", string(out))
}

func TestJSInlineMinifierFailureFallsBack(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	writeFile(t, filepath.Join(src, "js", "app.js"), "var answer = 42;")
	docPath := filepath.Join(src, "pages", "index.html")
	writeFile(t, docPath, "placeholder")

	b, buf := testBuilder(t, src, filepath.Join(root, "dist"))
	b.Code = failingMinifier{}
	pass := &JSInliner{builder: b}

	out, err := pass.Process([]byte(`<script src="../js/app.js"></script>`), docPath)
	require.NoError(t, err)

	assert.Equal(t, "<script>var answer = 42;</script>", string(out))
	assert.Contains(t, buf.String(), "Minification failed")
}

func TestJSInlineExternalReferencesUntouched(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	docPath := filepath.Join(src, "pages", "index.html")
	writeFile(t, docPath, "placeholder")

	b, _ := testBuilder(t, src, filepath.Join(root, "dist"))
	pass := &JSInliner{builder: b}

	tag := `<script src="https://cdn.example.com/lib.js"></script>`
	out, err := pass.Process([]byte(tag), docPath)
	require.NoError(t, err)
	assert.Equal(t, tag, string(out))
}

func TestJSInlineLeavesInlineScriptsAlone(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	docPath := filepath.Join(src, "pages", "index.html")
	writeFile(t, docPath, "placeholder")

	b, _ := testBuilder(t, src, filepath.Join(root, "dist"))
	pass := &JSInliner{builder: b}

	tag := `<script>console.log("already inline")</script>`
	out, err := pass.Process([]byte(tag), docPath)
	require.NoError(t, err)
	assert.Equal(t, tag, string(out))
}
