// Package dom holds the in-memory page document the controller renders into.
//
// A Page is parsed once from the page template and exposes the regions named by
// the binding contract between the controller and the markup. Every mutation and
// every render goes through the page mutex, so regions can be shared between
// goroutines.
package dom

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/MikhailRaia/url-shortener-client/internal/pool"
)

// Element ids the page template must expose.
const (
	FormID    = "shortenForm"
	InputID   = "urlInput"
	ResultID  = "result"
	HistoryID = "urlHistory"
	// NoticesID is optional; alerts are rendered into it when present.
	NoticesID = "notices"
)

// ErrMissingElement is returned by Parse when a required id is absent.
var ErrMissingElement = errors.New("page element not found")

var buffers = pool.NewBuffers(16)

// Page is a parsed page document with its bound regions.
type Page struct {
	mu   sync.Mutex
	root *html.Node

	form    *html.Node
	input   *html.Node
	submit  *html.Node
	result  *html.Node
	history *html.Node
	notices *html.Node
}

// Parse reads a page template and resolves its regions.
func Parse(r io.Reader) (*Page, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	p := &Page{root: root}

	required := []struct {
		id  string
		dst **html.Node
	}{
		{FormID, &p.form},
		{ResultID, &p.result},
		{HistoryID, &p.history},
	}
	for _, req := range required {
		n := findByID(root, req.id)
		if n == nil {
			return nil, fmt.Errorf("%w: #%s", ErrMissingElement, req.id)
		}
		*req.dst = n
	}

	p.input = findByID(p.form, InputID)
	if p.input == nil {
		return nil, fmt.Errorf("%w: #%s inside #%s", ErrMissingElement, InputID, FormID)
	}

	p.submit = findSubmit(p.form)
	p.notices = findByID(root, NoticesID)

	return p, nil
}

// ParseString is Parse for an in-memory template.
func ParseString(s string) (*Page, error) {
	return Parse(strings.NewReader(s))
}

// Result is the region showing the outcome of the last create call.
func (p *Page) Result() *Region { return &Region{page: p, node: p.result} }

// History is the list region holding the shortened URLs.
func (p *Page) History() *Region { return &Region{page: p, node: p.history} }

// Notices is the optional alert region; nil when the template has none.
func (p *Page) Notices() *Region {
	if p.notices == nil {
		return nil
	}
	return &Region{page: p, node: p.notices}
}

// InputValue returns the current value of the URL input.
func (p *Page) InputValue() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	v, _ := getAttr(p.input, "value")
	return v
}

// SetInputValue replaces the value of the URL input.
func (p *Page) SetInputValue(v string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	setAttr(p.input, "value", v)
}

// SetBusy marks the form as busy and disables its submit control
// (or the input when the form has no submit control).
func (p *Page) SetBusy(busy bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	control := p.submit
	if control == nil {
		control = p.input
	}

	if busy {
		setAttr(control, "disabled", "")
		setAttr(p.form, "aria-busy", "true")
		return
	}
	removeAttr(control, "disabled")
	removeAttr(p.form, "aria-busy")
}

// Busy reports whether SetBusy(true) is in effect.
func (p *Page) Busy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, ok := getAttr(p.form, "aria-busy")
	return ok
}

// Render writes the whole document.
func (p *Page) Render(w io.Writer) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	buf := buffers.Get()
	defer buffers.Put(buf)

	if err := html.Render(buf, p.root); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// Region is a container element owned by the page.
type Region struct {
	page *Page
	node *html.Node
}

// Replace swaps the region's children for nodes.
// The nodes must not be attached to another tree.
func (r *Region) Replace(nodes ...*html.Node) {
	r.page.mu.Lock()
	defer r.page.mu.Unlock()

	for c := r.node.FirstChild; c != nil; c = r.node.FirstChild {
		r.node.RemoveChild(c)
	}
	for _, n := range nodes {
		r.node.AppendChild(n)
	}
}

// Append adds nodes after the region's current children.
func (r *Region) Append(nodes ...*html.Node) {
	r.page.mu.Lock()
	defer r.page.mu.Unlock()

	for _, n := range nodes {
		r.node.AppendChild(n)
	}
}

// HTML renders the region's children.
func (r *Region) HTML() (string, error) {
	r.page.mu.Lock()
	defer r.page.mu.Unlock()

	buf := buffers.Get()
	defer buffers.Put(buf)

	for c := r.node.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(buf, c); err != nil {
			return "", fmt.Errorf("render region: %w", err)
		}
	}
	return buf.String(), nil
}

// Text renders the region as plain text, one line per block element.
func (r *Region) Text() string {
	r.page.mu.Lock()
	defer r.page.mu.Unlock()

	return Text(r.node)
}

// Count returns how many elements with the given tag and class the region contains.
// An empty class matches any element of that tag.
func (r *Region) Count(tag atom.Atom, class string) int {
	r.page.mu.Lock()
	defer r.page.mu.Unlock()

	count := 0
	walk(r.node, func(n *html.Node) bool {
		if n != r.node && n.Type == html.ElementNode && n.DataAtom == tag && (class == "" || hasClass(n, class)) {
			count++
		}
		return true
	})
	return count
}

// Text flattens a node tree into readable text. Form controls are skipped,
// block elements end a line and runs of whitespace collapse to one space.
func Text(n *html.Node) string {
	var b bytes.Buffer
	writeText(&b, n)

	lines := strings.Split(b.String(), "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func writeText(b *bytes.Buffer, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Button, atom.Input, atom.Form, atom.Script, atom.Style, atom.Template:
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
	}

	if n.Type == html.ElementNode && isBlock(n.DataAtom) {
		b.WriteByte('\n')
	}
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.Li, atom.Ul, atom.Ol, atom.Section, atom.H1, atom.H2, atom.H3, atom.Br:
		return true
	}
	return false
}

func walk(n *html.Node, visit func(*html.Node) bool) bool {
	if !visit(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, visit) {
			return false
		}
	}
	return true
}

func findByID(root *html.Node, id string) *html.Node {
	var found *html.Node
	walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode {
			if v, ok := getAttr(n, "id"); ok && v == id {
				found = n
				return false
			}
		}
		return true
	})
	return found
}

func findSubmit(form *html.Node) *html.Node {
	var found *html.Node
	walk(form, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		typ, _ := getAttr(n, "type")
		switch {
		case n.DataAtom == atom.Button && (typ == "" || typ == "submit"):
			found = n
		case n.DataAtom == atom.Input && typ == "submit":
			found = n
		default:
			return true
		}
		return false
	})
	return found
}

func hasClass(n *html.Node, class string) bool {
	v, ok := getAttr(n, "class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}

func getAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	attrs := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		attrs = append(attrs, a)
	}
	n.Attr = attrs
}
