// Package dom is a server-side document tree with the mutation hooks the
// theme controller needs: an id-addressed style registry in the head and
// batched attribute change notification.
package dom

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const skeleton = `<!DOCTYPE html><html><head></head><body></body></html>`

// Document is safe for concurrent use. Observers run outside the lock and
// may mutate the document again.
type Document struct {
	id string

	mu        sync.Mutex
	doc       *goquery.Document
	observers map[int]observer
	nextObs   int
	depth     int
	pending   map[string]struct{}
	cookies   []*http.Cookie
}

type observer struct {
	attr string
	fn   func()
}

// New returns an empty document.
func New() *Document {
	d, err := Parse(strings.NewReader(skeleton))
	if err != nil {
		panic(fmt.Sprintf("dom: parse skeleton: %v", err))
	}
	return d
}

// Parse builds a document from HTML. The parser always supplies head and
// body elements.
func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &Document{
		id:        uuid.NewString(),
		doc:       doc,
		observers: make(map[int]observer),
		pending:   make(map[string]struct{}),
	}, nil
}

// ID identifies the document in logs.
func (d *Document) ID() string {
	return d.id
}

// Has reports whether any element carries id.
func (d *Document) Has(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.doc.Find(idSelector(id)).Length() > 0
}

// Add appends a <style id=id> to the head unless id already exists.
func (d *Document) Add(id, css string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.doc.Find(idSelector(id)).Length() > 0 {
		return false
	}
	style := &html.Node{
		Type:     html.ElementNode,
		Data:     atom.Style.String(),
		DataAtom: atom.Style,
		Attr:     []html.Attribute{{Key: "id", Val: id}},
	}
	style.AppendChild(&html.Node{Type: html.TextNode, Data: css})
	d.doc.Find("head").AppendNodes(style)
	return true
}

// StyleIDs lists the ids of head style elements in document order.
func (d *Document) StyleIDs() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var ids []string
	d.doc.Find("head > style[id]").Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("id")
		ids = append(ids, id)
	})
	return ids
}

func (d *Document) BodyAttr(name string) (string, bool) {
	return d.Attr("body", name)
}

func (d *Document) SetBodyAttr(name, value string) {
	d.SetAttr("body", name, value)
}

// Attr returns name on the first element matching selector.
func (d *Document) Attr(selector, name string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.doc.Find(selector).First().Attr(name)
}

// SetAttr sets name on every element matching selector and returns how
// many matched. Observers of name are notified.
func (d *Document) SetAttr(selector, name, value string) int {
	d.mu.Lock()
	sel := d.doc.Find(selector)
	n := sel.Length()
	if n > 0 {
		sel.SetAttr(name, value)
		d.pending[name] = struct{}{}
	}
	fns := d.takeLocked()
	d.mu.Unlock()

	run(fns)
	return n
}

func (d *Document) RemoveBodyAttr(name string) {
	d.RemoveAttr("body", name)
}

// RemoveAttr removes name from every element matching selector that
// carries it and returns how many did. Observers of name are notified.
func (d *Document) RemoveAttr(selector, name string) int {
	d.mu.Lock()
	sel := d.doc.Find(selector).Filter("[" + name + "]")
	n := sel.Length()
	if n > 0 {
		sel.RemoveAttr(name)
		d.pending[name] = struct{}{}
	}
	fns := d.takeLocked()
	d.mu.Unlock()

	run(fns)
	return n
}

// AttrValues returns name's value on every element carrying it.
func (d *Document) AttrValues(name string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var values []string
	d.doc.Find("[" + name + "]").Each(func(_ int, s *goquery.Selection) {
		v, _ := s.Attr(name)
		values = append(values, v)
	})
	return values
}

// Count returns the number of elements matching selector.
func (d *Document) Count(selector string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.doc.Find(selector).Length()
}

// SetMetaContent sets content on <meta name=name>.
func (d *Document) SetMetaContent(name, content string) {
	d.SetAttr(fmt.Sprintf(`meta[name=%q]`, name), "content", content)
}

// SetLinkHref sets href on the links matching selector.
func (d *Document) SetLinkHref(selector, href string) {
	d.SetAttr(selector, "href", href)
}

// OnAttributeChange calls fn after every batch of changes to name.
func (d *Document) OnAttributeChange(name string, fn func()) (cancel func()) {
	d.mu.Lock()
	id := d.nextObs
	d.nextObs++
	d.observers[id] = observer{attr: name, fn: fn}
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		delete(d.observers, id)
		d.mu.Unlock()
	}
}

// Batch groups the mutations made by fn into one notification per observer.
func (d *Document) Batch(fn func()) {
	d.mu.Lock()
	d.depth++
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.depth--
		fns := d.takeLocked()
		d.mu.Unlock()
		run(fns)
	}()
	fn()
}

// takeLocked drains pending changes into the callbacks to run, unless a
// batch is still open.
func (d *Document) takeLocked() []func() {
	if d.depth > 0 || len(d.pending) == 0 {
		return nil
	}
	var fns []func()
	for _, o := range d.observers {
		if _, ok := d.pending[o.attr]; ok {
			fns = append(fns, o.fn)
		}
	}
	clear(d.pending)
	return fns
}

func run(fns []func()) {
	for _, fn := range fns {
		fn()
	}
}

// SetCookie records a cookie written by document code, like document.cookie.
func (d *Document) SetCookie(c *http.Cookie) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cookies = append(d.cookies, c)
}

// Cookies returns the cookies written so far.
func (d *Document) Cookies() []*http.Cookie {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*http.Cookie, len(d.cookies))
	copy(out, d.cookies)
	return out
}

// InnerHTML returns the markup inside the first element matching selector.
func (d *Document) InnerHTML(selector string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	sel := d.doc.Find(selector).First()
	if sel.Length() == 0 {
		return "", fmt.Errorf("inner html: no element matches %q", selector)
	}
	return sel.Html()
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.doc.Nodes) == 0 {
		return fmt.Errorf("render document: empty tree")
	}
	return html.Render(w, d.doc.Nodes[0])
}

func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

func idSelector(id string) string {
	return fmt.Sprintf(`[id=%q]`, id)
}
