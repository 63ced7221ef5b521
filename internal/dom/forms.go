package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Field is one name/value entry of a form's data set.
type Field struct {
	Name  string
	Value string
}

type SubmitEvent struct {
	Form *Element

	defaultPrevented bool
}

// PreventDefault suppresses the native navigation for this submit.
func (ev *SubmitEvent) PreventDefault() {
	ev.defaultPrevented = true
}

func (ev *SubmitEvent) DefaultPrevented() bool {
	return ev.defaultPrevented
}

// AddSubmitListener registers fn to run on every submit dispatched to e.
func (e *Element) AddSubmitListener(fn func(*SubmitEvent)) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	e.doc.listeners[e.node] = append(e.doc.listeners[e.node], fn)
}

// DispatchSubmit runs the submit listeners of form synchronously, in
// registration order, and returns the event so the caller can honor
// PreventDefault.
func (d *Document) DispatchSubmit(form *Element) *SubmitEvent {
	d.mu.Lock()
	listeners := append([]func(*SubmitEvent){}, d.listeners[form.node]...)
	d.mu.Unlock()

	ev := &SubmitEvent{Form: form}
	for _, fn := range listeners {
		fn(ev)
	}

	return ev
}

// Action returns the absolute URL the form submits to. An empty action
// attribute resolves to the document URL.
func (e *Element) Action() string {
	action, _ := e.Attr("action")
	action = strings.TrimSpace(action)

	base := e.doc.URL()
	if base == nil {
		return action
	}
	if action == "" {
		return base.String()
	}

	resolved, err := base.Parse(action)
	if err != nil {
		return action
	}
	return resolved.String()
}

// Method returns the upper-cased method attribute, GET when missing.
func (e *Element) Method() string {
	method, _ := e.Attr("method")
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		return "GET"
	}
	return method
}

// FormData collects the successful controls of a form the way a browser's
// FormData constructor does when no submitter is given.
func (e *Element) FormData() []Field {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	var fields []Field
	for n := range e.node.Descendants() {
		if n.Type != html.ElementNode {
			continue
		}
		name, ok := attr(n, "name")
		if !ok || name == "" {
			continue
		}
		if _, disabled := attr(n, "disabled"); disabled {
			continue
		}

		switch n.DataAtom {
		case atom.Input:
			if value, ok := inputValue(n); ok {
				fields = append(fields, Field{Name: name, Value: value})
			}
		case atom.Select:
			for _, value := range selectValues(n) {
				fields = append(fields, Field{Name: name, Value: value})
			}
		case atom.Textarea:
			fields = append(fields, Field{Name: name, Value: textContent(n)})
		}
	}

	return fields
}

func inputValue(n *html.Node) (string, bool) {
	typ, _ := attr(n, "type")
	value, hasValue := attr(n, "value")

	switch strings.ToLower(typ) {
	case "submit", "button", "reset", "image", "file":
		return "", false
	case "checkbox", "radio":
		if _, checked := attr(n, "checked"); !checked {
			return "", false
		}
		if !hasValue {
			return "on", true
		}
	}

	return value, true
}

func selectValues(n *html.Node) []string {
	_, multiple := attr(n, "multiple")

	var (
		options  []*html.Node
		selected []string
	)
	for o := range n.Descendants() {
		if o.Type != html.ElementNode || o.DataAtom != atom.Option {
			continue
		}
		if _, disabled := attr(o, "disabled"); disabled {
			continue
		}
		options = append(options, o)
		if _, ok := attr(o, "selected"); ok {
			selected = append(selected, optionValue(o))
		}
	}

	if multiple {
		return selected
	}
	if len(selected) > 0 {
		return selected[len(selected)-1:]
	}
	if len(options) > 0 {
		return []string{optionValue(options[0])}
	}
	return nil
}

func optionValue(o *html.Node) string {
	if v, ok := attr(o, "value"); ok {
		return v
	}
	return strings.TrimSpace(textContent(o))
}
