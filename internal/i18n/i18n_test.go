package i18n

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPrinter(t *testing.T) {
	tests := []struct {
		name string
		lang string
		key  string
		args []any
		want string
	}{
		{name: "default is spanish", lang: "", key: HistoryEmpty, want: "No hay URLs acortadas aún"},
		{name: "spanish", lang: "es", key: EmptyURL, want: "Por favor ingresa una URL"},
		{name: "spanish region", lang: "es-MX", key: Deleted, want: "URL eliminada correctamente"},
		{name: "english", lang: "en", key: HistoryEmpty, want: "No shortened URLs yet"},
		{name: "unsupported falls back to spanish", lang: "xx-invalid", key: Copy, want: "Copiar"},
		{name: "api error is language neutral", lang: "en", key: APIError, args: []any{"bad url"}, want: "Error: bad url"},
		{name: "format argument", lang: "es", key: ConnectionError, args: []any{"dial tcp: refused"}, want: "Error de conexión: dial tcp: refused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPrinter(tt.lang)
			assert.Equal(t, tt.want, p.Sprintf(tt.key, tt.args...))
		})
	}
}

func TestCatalogCoversAllKeys(t *testing.T) {
	es := NewPrinter("es")
	for key, want := range spanish {
		if strings.Contains(key, "%") {
			continue
		}
		assert.Equal(t, want, es.Sprintf(key), key)
	}
}
