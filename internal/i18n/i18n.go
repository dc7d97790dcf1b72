// Package i18n holds the user-facing strings of the client.
// Keys are the English texts; Spanish is the default language.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys.
const (
	EmptyURL          = "Please enter a URL"
	APIError          = "Error: %s"
	UnknownError      = "Unknown error"
	ConnectionError   = "Connection error: %s"
	OriginalURL       = "Original URL:"
	ShortURL          = "Short URL:"
	HistoryOriginal   = "Original:"
	HistoryShort      = "Short:"
	HistoryEmpty      = "No shortened URLs yet"
	HistoryClicks     = "Clicks: %d"
	HistoryCreated    = "Created: %s"
	HistoryError      = "Error loading history: %s"
	Copy              = "Copy"
	Copied            = "URL copied: %s"
	CopiedFallback    = "URL copied!"
	Delete            = "Delete"
	ConfirmCheckbox   = "Confirm"
	ConfirmDelete     = "Are you sure you want to delete this URL?"
	Deleted           = "URL deleted successfully"
	DeleteError       = "Error deleting: %s"
	ServerUnreachable = "Error connecting to the server"
)

// DefaultLanguage is used when no language is configured.
var DefaultLanguage = language.Spanish

var spanish = map[string]string{
	EmptyURL:          "Por favor ingresa una URL",
	APIError:          "Error: %s",
	UnknownError:      "Error desconocido",
	ConnectionError:   "Error de conexión: %s",
	OriginalURL:       "URL original:",
	ShortURL:          "URL acortada:",
	HistoryOriginal:   "Original:",
	HistoryShort:      "Acortada:",
	HistoryEmpty:      "No hay URLs acortadas aún",
	HistoryClicks:     "Clics: %d",
	HistoryCreated:    "Creada: %s",
	HistoryError:      "Error cargando historial: %s",
	Copy:              "Copiar",
	Copied:            "URL copiada: %s",
	CopiedFallback:    "URL copiada!",
	Delete:            "Eliminar",
	ConfirmCheckbox:   "Confirmar",
	ConfirmDelete:     "¿Estás seguro de que quieres eliminar esta URL?",
	Deleted:           "URL eliminada correctamente",
	DeleteError:       "Error al eliminar: %s",
	ServerUnreachable: "Error al conectar con el servidor",
}

var cat = newCatalog()

func newCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, msg := range spanish {
		_ = b.SetString(language.Spanish, key, msg)
		_ = b.SetString(language.English, key, key)
	}
	return b
}

// NewPrinter returns a printer for lang ("es", "en", ...).
// Unknown or empty tags fall back to DefaultLanguage.
func NewPrinter(lang string) *message.Printer {
	tag := DefaultLanguage
	if lang != "" {
		if t, err := language.Parse(lang); err == nil {
			tag = t
		}
	}

	_, idx, confidence := cat.Matcher().Match(tag)
	if confidence == language.No {
		tag = DefaultLanguage
	} else {
		tag = cat.Languages()[idx]
	}

	return message.NewPrinter(tag, message.Catalog(cat))
}
