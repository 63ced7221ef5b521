package toast

import (
	"sync"

	"github.com/nikolayk812/cartajax/internal/dom"
)

const (
	ContainerID    = "cart-toast-container"
	containerClass = "cart-toast-container position-fixed"
	containerZ     = "1080"
)

// Container owns the single toast overlay of a page. The element is looked
// up or created on first use and reused afterwards.
type Container struct {
	doc *dom.Document

	mu sync.Mutex
	el *dom.Element
}

func NewContainer(doc *dom.Document) *Container {
	return &Container{doc: doc}
}

// Element returns the overlay element, creating it under <body> if the page
// has none.
func (c *Container) Element() *dom.Element {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.el != nil && c.el.IsConnected() {
		return c.el
	}

	if el := c.doc.GetElementByID(ContainerID); el != nil {
		c.el = el
		return el
	}

	el := c.doc.CreateElement("div")
	el.SetID(ContainerID)
	el.SetClassName(containerClass)
	el.SetStyle("z-index", containerZ)

	if body := c.doc.Body(); body != nil {
		body.AppendChild(el)
	}
	c.el = el

	return el
}
