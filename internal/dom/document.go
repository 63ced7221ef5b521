// Package dom is a minimal, concurrency-safe document object model on top
// of golang.org/x/net/html. It covers what the add-to-cart layer touches:
// lookups by id, class and tag, element creation and removal, text content,
// class lists, inline styles and submit events.
package dom

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type Document struct {
	mu        sync.Mutex
	root      *html.Node
	url       *url.URL
	elements  map[*html.Node]*Element
	listeners map[*html.Node][]func(*SubmitEvent)
}

// Parse builds a Document from HTML markup served at u. u may be nil.
func Parse(r io.Reader, u *url.URL) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("html.Parse: %w", err)
	}

	var docURL *url.URL
	if u != nil {
		copied := *u
		docURL = &copied
	}

	return &Document{
		root:      root,
		url:       docURL,
		elements:  make(map[*html.Node]*Element),
		listeners: make(map[*html.Node][]func(*SubmitEvent)),
	}, nil
}

// URL returns the address the document was loaded from, or nil.
func (d *Document) URL() *url.URL {
	if d.url == nil {
		return nil
	}
	copied := *d.url
	return &copied
}

func (d *Document) Body() *Element {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.wrap(findFirst(d.root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == atom.Body
	}))
}

// GetElementByID returns the first connected element with the given id, or nil.
func (d *Document) GetElementByID(id string) *Element {
	if id == "" {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	return d.wrap(findFirst(d.root, func(n *html.Node) bool {
		v, ok := attr(n, "id")
		return ok && v == id
	}))
}

// ElementsByClass returns every connected element carrying class, in document order.
func (d *Document) ElementsByClass(class string) []*Element {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.wrapAll(findAll(d.root, func(n *html.Node) bool {
		return hasClass(n, class)
	}))
}

func (d *Document) ElementsByTag(tag string) []*Element {
	tag = strings.ToLower(tag)

	d.mu.Lock()
	defer d.mu.Unlock()

	return d.wrapAll(findAll(d.root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == tag
	}))
}

// CreateElement returns a detached element owned by d.
func (d *Document) CreateElement(tag string) *Element {
	tag = strings.ToLower(tag)

	d.mu.Lock()
	defer d.mu.Unlock()

	return d.wrap(&html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	})
}

func (d *Document) Render(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := html.Render(w, d.root); err != nil {
		return fmt.Errorf("html.Render: %w", err)
	}

	return nil
}

func (d *Document) wrap(n *html.Node) *Element {
	if n == nil {
		return nil
	}

	if el, ok := d.elements[n]; ok {
		return el
	}

	el := &Element{doc: d, node: n}
	d.elements[n] = el

	return el
}

// forget drops the handles and listeners of a detached subtree.
func (d *Document) forget(root *html.Node) {
	delete(d.elements, root)
	delete(d.listeners, root)
	for n := range root.Descendants() {
		delete(d.elements, n)
		delete(d.listeners, n)
	}
}

func (d *Document) wrapAll(nodes []*html.Node) []*Element {
	elements := make([]*Element, 0, len(nodes))
	for _, n := range nodes {
		elements = append(elements, d.wrap(n))
	}
	return elements
}

func findFirst(root *html.Node, match func(*html.Node) bool) *html.Node {
	for n := range root.Descendants() {
		if match(n) {
			return n
		}
	}
	return nil
}

func findAll(root *html.Node, match func(*html.Node) bool) []*html.Node {
	var nodes []*html.Node
	for n := range root.Descendants() {
		if match(n) {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

func attr(n *html.Node, key string) (string, bool) {
	if n.Type != html.ElementNode {
		return "", false
	}
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

func hasClass(n *html.Node, class string) bool {
	v, ok := attr(n, "class")
	if !ok || class == "" {
		return false
	}
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}
