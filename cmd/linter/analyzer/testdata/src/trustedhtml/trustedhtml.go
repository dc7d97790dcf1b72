package trustedhtml

import (
	"html/template"
	"strings"
)

func Render(original, short string) []interface{} {
	return []interface{}{
		template.HTML("<p>" + original + "</p>"),           // want "conversion to template.HTML disables escaping"
		template.HTMLAttr(`href="` + short + `"`),          // want "conversion to template.HTMLAttr disables escaping"
		template.URL(short),                                // want "conversion to template.URL disables escaping"
		template.JS("copy('" + short + "')"),               // want "conversion to template.JS disables escaping"
		template.JSStr(short),                              // want "conversion to template.JSStr disables escaping"
		template.CSS("color: red"),                         // want "conversion to template.CSS disables escaping"
		template.Srcset(short),                             // want "conversion to template.Srcset disables escaping"
		template.HTMLEscapeString(original),                // No want
		strings.ToUpper(short),                             // No want
		template.Must(template.New("x").Parse("{{.}}")),    // No want
	}
}
