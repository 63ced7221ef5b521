package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// Element is a handle to an element node. Handles are stable while the
// element is attached: a Document returns the same *Element for the same
// node until the element is removed.
type Element struct {
	doc  *Document
	node *html.Node
}

func (e *Element) Tag() string {
	return e.node.Data
}

func (e *Element) Document() *Document {
	return e.doc
}

func (e *Element) Attr(name string) (string, bool) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	return attr(e.node, name)
}

func (e *Element) SetAttr(name, value string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	setAttr(e.node, name, value)
}

func (e *Element) ID() string {
	v, _ := e.Attr("id")
	return v
}

func (e *Element) SetID(id string) {
	e.SetAttr("id", id)
}

func (e *Element) ClassName() string {
	v, _ := e.Attr("class")
	return v
}

func (e *Element) SetClassName(class string) {
	e.SetAttr("class", class)
}

func (e *Element) HasClass(class string) bool {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	return hasClass(e.node, class)
}

// AddClass appends class to the class list unless it is already there.
func (e *Element) AddClass(class string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	if class == "" || hasClass(e.node, class) {
		return
	}

	v, _ := attr(e.node, "class")
	setAttr(e.node, "class", strings.TrimSpace(v+" "+class))
}

// SetStyle sets one inline style declaration, keeping the others.
func (e *Element) SetStyle(property, value string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	v, _ := attr(e.node, "style")

	var decls []string
	replaced := false
	for _, decl := range strings.Split(v, ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		name, _, _ := strings.Cut(decl, ":")
		if strings.TrimSpace(name) == property {
			decl = property + ": " + value
			replaced = true
		}
		decls = append(decls, decl)
	}
	if !replaced {
		decls = append(decls, property+": "+value)
	}

	setAttr(e.node, "style", strings.Join(decls, "; "))
}

// Style returns the value of one inline style declaration.
func (e *Element) Style(property string) string {
	v, _ := e.Attr("style")
	for _, decl := range strings.Split(v, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if ok && strings.TrimSpace(name) == property {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func (e *Element) TextContent() string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	return textContent(e.node)
}

// SetTextContent replaces all children with a single text node.
func (e *Element) SetTextContent(text string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	for c := e.node.FirstChild; c != nil; c = e.node.FirstChild {
		e.node.RemoveChild(c)
	}
	if text != "" {
		e.node.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
}

// AppendChild moves child to the end of e's children.
func (e *Element) AppendChild(child *Element) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	if p := child.node.Parent; p != nil {
		p.RemoveChild(child.node)
	}
	e.node.AppendChild(child.node)
}

// Remove detaches e from its parent. It reports false, and does nothing,
// when e is already detached.
func (e *Element) Remove() bool {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	p := e.node.Parent
	if p == nil {
		return false
	}
	p.RemoveChild(e.node)
	e.doc.forget(e.node)

	return true
}

func (e *Element) Parent() *Element {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	p := e.node.Parent
	if p == nil || p.Type != html.ElementNode {
		return nil
	}
	return e.doc.wrap(p)
}

func (e *Element) Children() []*Element {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	var children []*Element
	for c := range e.node.ChildNodes() {
		if c.Type == html.ElementNode {
			children = append(children, e.doc.wrap(c))
		}
	}
	return children
}

// IsConnected reports whether e is attached to its document tree.
func (e *Element) IsConnected() bool {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	for n := e.node; n != nil; n = n.Parent {
		if n == e.doc.root {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}

	var sb strings.Builder
	for d := range n.Descendants() {
		if d.Type == html.TextNode {
			sb.WriteString(d.Data)
		}
	}
	return sb.String()
}
