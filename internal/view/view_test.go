package view

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/MikhailRaia/url-shortener-client/internal/dom"
	"github.com/MikhailRaia/url-shortener-client/internal/i18n"
	"github.com/MikhailRaia/url-shortener-client/internal/model"
)

func render(t *testing.T, nodes []*html.Node) string {
	t.Helper()

	var buf bytes.Buffer
	for _, n := range nodes {
		require.NoError(t, html.Render(&buf, n))
	}
	return buf.String()
}

func plain(nodes []*html.Node) string {
	lines := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if s := dom.Text(n); s != "" {
			lines = append(lines, s)
		}
	}
	return strings.Join(lines, "\n")
}

func TestTruncateText(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
		want string
	}{
		{name: "longer than max", text: "0123456789", max: 5, want: "01234..."},
		{name: "shorter than max", text: "ab", max: 5, want: "ab"},
		{name: "equal to max", text: "abcde", max: 5, want: "abcde"},
		{name: "empty", text: "", max: 5, want: ""},
		{name: "multibyte runes", text: "ñandú-ñandú", max: 5, want: "ñandú..."},
		{name: "negative max keeps text", text: "abc", max: -1, want: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TruncateText(tt.text, tt.max))
		})
	}
}

func TestErrors(t *testing.T) {
	es := i18n.NewPrinter("es")

	assert.Equal(t, "Por favor ingresa una URL", plain(ValidationError(es)))
	assert.Equal(t, "Error: bad url", plain(APIError(es, "bad url")))
	assert.Equal(t, "Error: Error desconocido", plain(APIError(es, "")))
	assert.Equal(t, "Error de conexión: connection refused", plain(ConnectionError(es, "connection refused")))

	assert.Equal(t, `<p class="error">Error: bad url</p>`, render(t, APIError(es, "bad url")))
}

func TestShortenResult(t *testing.T) {
	es := i18n.NewPrinter("es")

	nodes := ShortenResult(es, model.ShortenResult{
		OriginalURL: "http://ex.com/long",
		ShortURL:    "http://sh.rt/abc",
	})

	out := render(t, nodes)
	assert.Contains(t, out, `<a href="http://ex.com/long" target="_blank" rel="noopener noreferrer">http://ex.com/long</a>`)
	assert.Contains(t, out, `<a href="http://sh.rt/abc" target="_blank" rel="noopener noreferrer">http://sh.rt/abc</a>`)
	assert.Contains(t, out, `data-action="copy" data-value="http://sh.rt/abc"`)
	assert.Contains(t, out, `action="/urls/abc/delete"`)
	assert.Contains(t, out, `data-code="abc"`)

	assert.Equal(t, "URL original: http://ex.com/long\nURL acortada: http://sh.rt/abc", plain(nodes))
}

func TestShortenResult_TruncatesOriginal(t *testing.T) {
	en := i18n.NewPrinter("en")
	long := "https://example.com/" + strings.Repeat("a", 80)

	out := render(t, ShortenResult(en, model.ShortenResult{OriginalURL: long, ShortURL: "http://sh.rt/x"}))

	assert.Contains(t, out, `href="`+long+`"`)
	assert.Contains(t, out, ">"+long[:ResultMaxLen]+"...</a>")
}

func TestCopyButton_Messages(t *testing.T) {
	tests := []struct {
		lang         string
		wantCopied   string
		wantFallback string
	}{
		{lang: "es", wantCopied: "URL copiada: http://sh.rt/abc", wantFallback: "URL copiada!"},
		{lang: "en", wantCopied: "URL copied: http://sh.rt/abc", wantFallback: "URL copied!"},
	}

	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			out := render(t, []*html.Node{CopyButton(i18n.NewPrinter(tt.lang), "http://sh.rt/abc")})

			assert.Contains(t, out, `data-copied="`+tt.wantCopied+`"`)
			assert.Contains(t, out, `data-copied-fallback="`+tt.wantFallback+`"`)
		})
	}
}

func TestHistory_Empty(t *testing.T) {
	es := i18n.NewPrinter("es")

	nodes := History(es, nil)

	require.Len(t, nodes, 1)
	assert.Equal(t, "No hay URLs acortadas aún", plain(nodes))
	assert.NotContains(t, render(t, nodes), ClassURLItem)
}

func TestHistory_Records(t *testing.T) {
	es := i18n.NewPrinter("es")
	clicks := 7

	nodes := History(es, []model.URLRecord{
		{Original: "a", Short: "b"},
		{Original: "https://go.dev", Short: "http://sh.rt/go", Clicks: &clicks, CreatedAt: "2024-05-01T10:00:00"},
	})

	require.Len(t, nodes, 2)
	first := plain(nodes[:1])
	assert.Contains(t, first, "Original: a")
	assert.Contains(t, first, "Acortada: b")

	second := plain(nodes[1:])
	assert.Contains(t, second, "Clics: 7 · Creada: 2024-05-01T10:00:00")

	out := render(t, nodes)
	assert.Equal(t, 2, strings.Count(out, `class="url-item"`))
	assert.Equal(t, 2, strings.Count(out, `data-action="copy"`))
}

func TestHistory_EscapesUntrustedValues(t *testing.T) {
	en := i18n.NewPrinter("en")

	out := render(t, History(en, []model.URLRecord{{
		Original: `javascript:alert(1)`,
		Short:    `http://sh.rt/x"><img src=x onerror=alert(1)>`,
	}}))

	assert.NotContains(t, out, "<img")
	assert.NotContains(t, out, `href="javascript:`)
	assert.Contains(t, out, `href="#"`)
	assert.Contains(t, out, "&lt;img src=x onerror=alert(1)&gt;")
}

func TestSafeHref(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: "http://sh.rt/abc", want: "http://sh.rt/abc"},
		{raw: "HTTPS://example.com/a?b=c", want: "https://example.com/a?b=c"},
		{raw: "javascript:alert(1)", want: "#"},
		{raw: "data:text/html,hi", want: "#"},
		{raw: "/relative/path", want: "#"},
		{raw: "", want: "#"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeHref(tt.raw))
		})
	}
}

func TestNotice(t *testing.T) {
	out := render(t, []*html.Node{Notice("URL eliminada correctamente")})

	assert.Equal(t, `<p class="notice" role="alert">URL eliminada correctamente</p>`, out)
}
