package assets

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexHTML(t *testing.T) {
	for _, id := range []string{"shortenForm", "urlInput", "result", "urlHistory", "notices"} {
		assert.Contains(t, IndexHTML, `id="`+id+`"`)
	}
}

func TestStatic(t *testing.T) {
	files, err := Static()
	require.NoError(t, err)

	for _, name := range []string{"copy.js", "style.css"} {
		data, err := fs.ReadFile(files, name)
		require.NoError(t, err)
		assert.NotEmpty(t, data)
	}
}

func TestCopyScript_FallsBackAndConfirms(t *testing.T) {
	files, err := Static()
	require.NoError(t, err)

	data, err := fs.ReadFile(files, "copy.js")
	require.NoError(t, err)
	script := string(data)

	for _, want := range []string{
		"navigator.clipboard.writeText(text)",
		".catch(function (err)",
		"if (!navigator.clipboard || !navigator.clipboard.writeText)",
		"document.createElement('textarea')",
		"document.execCommand('copy')",
		"button.dataset.copied ",
		"button.dataset.copiedFallback",
		"alert(",
	} {
		assert.Contains(t, script, want)
	}
}
