// Package view builds the markup of the result panel and the history list.
//
// Every function is pure: it takes data and returns detached html nodes ready to
// be placed into a page region. Values coming from the backend only ever end up
// in text nodes or attribute values, both of which are escaped when rendered,
// and link targets are limited to http and https.
package view

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/message"

	"github.com/MikhailRaia/url-shortener-client/internal/i18n"
	"github.com/MikhailRaia/url-shortener-client/internal/model"
)

// Truncation limits for original URLs.
const (
	ResultMaxLen  = 50
	HistoryMaxLen = 40
)

// CSS classes the tests and the web front end select on.
const (
	ClassError       = "error"
	ClassNotice      = "notice"
	ClassURLItem     = "url-item"
	ClassPlaceholder = "placeholder"
	ClassCopy        = "copy-btn"
	ClassDelete      = "delete-btn"
)

// TruncateText shortens text to max characters followed by "...".
// Text of max characters or fewer is returned unchanged.
func TruncateText(text string, max int) string {
	if max < 0 || utf8.RuneCountInString(text) <= max {
		return text
	}

	runes := []rune(text)
	return string(runes[:max]) + "..."
}

// ValidationError is shown when the URL input is empty.
func ValidationError(p *message.Printer) []*html.Node {
	return []*html.Node{errorLine(p.Sprintf(i18n.EmptyURL))}
}

// APIError renders a failure reported by the backend.
// An empty message is replaced by a generic one.
func APIError(p *message.Printer, msg string) []*html.Node {
	if msg == "" {
		msg = p.Sprintf(i18n.UnknownError)
	}
	return []*html.Node{errorLine(p.Sprintf(i18n.APIError, msg))}
}

// ConnectionError renders a failure to reach the backend.
func ConnectionError(p *message.Printer, cause string) []*html.Node {
	return []*html.Node{errorLine(p.Sprintf(i18n.ConnectionError, cause))}
}

// ShortenResult renders the original/short pair with copy and delete controls.
func ShortenResult(p *message.Printer, res model.ShortenResult) []*html.Node {
	return []*html.Node{
		labeledLink(p.Sprintf(i18n.OriginalURL), res.OriginalURL, TruncateText(res.OriginalURL, ResultMaxLen)),
		labeledLink(p.Sprintf(i18n.ShortURL), res.ShortURL, res.ShortURL),
		CopyButton(p, res.ShortURL),
		DeleteForm(p, model.ShortCode(res.ShortURL)),
	}
}

// History renders one list item per record, or a placeholder item when empty.
func History(p *message.Printer, records []model.URLRecord) []*html.Node {
	if len(records) == 0 {
		return []*html.Node{
			element(atom.Li, attrs("class", ClassPlaceholder), text(p.Sprintf(i18n.HistoryEmpty))),
		}
	}

	items := make([]*html.Node, 0, len(records))
	for _, rec := range records {
		items = append(items, historyItem(p, rec))
	}
	return items
}

func historyItem(p *message.Printer, rec model.URLRecord) *html.Node {
	entry := element(atom.Div, attrs("class", "url-entry"),
		labeledLink(p.Sprintf(i18n.HistoryOriginal), rec.Original, TruncateText(rec.Original, HistoryMaxLen)),
		labeledLink(p.Sprintf(i18n.HistoryShort), rec.Short, rec.Short),
	)

	if rec.Clicks != nil || rec.CreatedAt != "" {
		meta := element(atom.P, attrs("class", "url-meta"))
		var parts []string
		if rec.Clicks != nil {
			parts = append(parts, p.Sprintf(i18n.HistoryClicks, *rec.Clicks))
		}
		if rec.CreatedAt != "" {
			parts = append(parts, p.Sprintf(i18n.HistoryCreated, rec.CreatedAt))
		}
		meta.AppendChild(text(strings.Join(parts, " · ")))
		entry.AppendChild(meta)
	}

	entry.AppendChild(CopyButton(p, rec.Short))
	entry.AppendChild(DeleteForm(p, model.ShortCode(rec.Short)))

	return element(atom.Li, attrs("class", ClassURLItem), entry)
}

// CopyButton is a copy affordance carrying the value to copy as data, along
// with the localized confirmations shown after a direct or fallback copy.
func CopyButton(p *message.Printer, value string) *html.Node {
	return element(atom.Button,
		attrs(
			"type", "button", "class", ClassCopy,
			"data-action", "copy", "data-value", value,
			"data-copied", p.Sprintf(i18n.Copied, value),
			"data-copied-fallback", p.Sprintf(i18n.CopiedFallback),
		),
		text(p.Sprintf(i18n.Copy)),
	)
}

// DeleteForm is the delete affordance for a short code. It posts to the web
// front end and asks for an explicit confirmation checkbox.
func DeleteForm(p *message.Printer, code string) *html.Node {
	return element(atom.Form,
		attrs("class", "delete-form", "method", "post", "action", "/urls/"+url.PathEscape(code)+"/delete"),
		element(atom.Label, nil,
			element(atom.Input, attrs("type", "checkbox", "name", "confirm", "value", "yes")),
			text(" "+p.Sprintf(i18n.ConfirmCheckbox)),
		),
		element(atom.Button,
			attrs("type", "submit", "class", ClassDelete, "data-action", "delete", "data-code", code),
			text(p.Sprintf(i18n.Delete)),
		),
	)
}

// Notice renders an alert for the notices region.
func Notice(msg string) *html.Node {
	return element(atom.P, attrs("class", ClassNotice, "role", "alert"), text(msg))
}

// SafeHref returns raw when it is an absolute http(s) URL and "#" otherwise.
func SafeHref(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return "#"
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u.String()
	default:
		return "#"
	}
}

func labeledLink(label, href, caption string) *html.Node {
	return element(atom.P, nil,
		element(atom.Strong, nil, text(label)),
		text(" "),
		element(atom.A, attrs("href", SafeHref(href), "target", "_blank", "rel", "noopener noreferrer"), text(caption)),
	)
}

func errorLine(msg string) *html.Node {
	return element(atom.P, attrs("class", ClassError), text(msg))
}

func element(a atom.Atom, attr []html.Attribute, children ...*html.Node) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attr}
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func attrs(kv ...string) []html.Attribute {
	out := make([]html.Attribute, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, html.Attribute{Key: kv[i], Val: kv[i+1]})
	}
	return out
}
