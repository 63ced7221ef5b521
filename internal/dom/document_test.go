package dom_test

import (
	"bytes"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nikolayk812/cartajax/internal/dom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const page = `<!doctype html>
<html><body>
<span id="cart-count">2</span>
<form id="add" class="js-add-to-cart-form primary" method="post" action="/cart/add/7/">
  <input type="hidden" name="csrfmiddlewaretoken" value="tok">
  <input type="number" name="quantity" value="2">
  <input type="text" name="note">
  <input type="checkbox" name="gift" checked>
  <input type="checkbox" name="wrap" value="yes">
  <input type="radio" name="size" value="s">
  <input type="radio" name="size" value="m" checked>
  <input type="text" name="locked" value="x" disabled>
  <input type="submit" name="go" value="Add">
  <input type="file" name="photo">
  <select name="color"><option value="red">Red</option><option selected>Blue</option></select>
  <select name="grind"><option>Whole</option><option>Ground</option></select>
  <select name="tags" multiple><option value="a" selected>A</option><option value="b">B</option><option value="c" selected>C</option></select>
  <textarea name="comment">fragile</textarea>
  <button name="btn" value="1">Add</button>
</form>
<form class="js-add-to-cart-form"></form>
</body></html>`

func parse(t *testing.T, markup, rawURL string) *dom.Document {
	t.Helper()

	var u *url.URL
	if rawURL != "" {
		var err error
		u, err = url.Parse(rawURL)
		require.NoError(t, err)
	}

	doc, err := dom.Parse(strings.NewReader(markup), u)
	require.NoError(t, err)

	return doc
}

func TestLookups(t *testing.T) {
	doc := parse(t, page, "")

	counter := doc.GetElementByID("cart-count")
	require.NotNil(t, counter)
	assert.Equal(t, "2", counter.TextContent())
	assert.Same(t, counter, doc.GetElementByID("cart-count"))

	assert.Nil(t, doc.GetElementByID("missing"))
	assert.Nil(t, doc.GetElementByID(""))

	assert.Len(t, doc.ElementsByClass("js-add-to-cart-form"), 2)
	assert.Len(t, doc.ElementsByClass("primary"), 1)
	assert.Empty(t, doc.ElementsByClass("js-add"))
	assert.Len(t, doc.ElementsByTag("FORM"), 2)
	assert.Equal(t, "body", doc.Body().Tag())
}

func TestElementMutations(t *testing.T) {
	doc := parse(t, page, "")

	el := doc.CreateElement("div")
	assert.False(t, el.IsConnected())
	assert.Nil(t, el.Parent())

	el.SetID("box")
	el.SetClassName("a b")
	el.AddClass("c")
	el.AddClass("a")
	el.SetStyle("z-index", "10")
	el.SetStyle("color", "red")
	el.SetStyle("z-index", "1080")
	el.SetTextContent("hello")

	doc.Body().AppendChild(el)

	assert.True(t, el.IsConnected())
	assert.Same(t, el, doc.GetElementByID("box"))
	assert.Equal(t, "a b c", el.ClassName())
	assert.Equal(t, "1080", el.Style("z-index"))
	assert.Equal(t, "red", el.Style("color"))
	assert.Equal(t, "hello", el.TextContent())

	el.SetTextContent("bye")
	assert.Equal(t, "bye", el.TextContent())

	assert.True(t, el.Remove())
	assert.False(t, el.Remove())
	assert.False(t, el.IsConnected())
	assert.Nil(t, doc.GetElementByID("box"))

	var buf bytes.Buffer
	require.NoError(t, doc.Render(&buf))
	assert.NotContains(t, buf.String(), "bye")
	assert.Contains(t, buf.String(), `id="cart-count"`)
}

func TestAppendChild_Moves(t *testing.T) {
	doc := parse(t, `<html><body><div id="a"></div><div id="b"></div></body></html>`, "")

	a, b := doc.GetElementByID("a"), doc.GetElementByID("b")
	child := doc.CreateElement("span")

	a.AppendChild(child)
	b.AppendChild(child)

	assert.Empty(t, a.Children())
	assert.Equal(t, []*dom.Element{child}, b.Children())
	assert.Same(t, b, child.Parent())
}

func TestFormData(t *testing.T) {
	doc := parse(t, page, "")

	got := doc.GetElementByID("add").FormData()
	want := []dom.Field{
		{Name: "csrfmiddlewaretoken", Value: "tok"},
		{Name: "quantity", Value: "2"},
		{Name: "note", Value: ""},
		{Name: "gift", Value: "on"},
		{Name: "size", Value: "m"},
		{Name: "color", Value: "Blue"},
		{Name: "grind", Value: "Whole"},
		{Name: "tags", Value: "a"},
		{Name: "tags", Value: "c"},
		{Name: "comment", Value: "fragile"},
	}

	assert.Empty(t, cmp.Diff(want, got))
}

func TestActionAndMethod(t *testing.T) {
	tests := []struct {
		name       string
		markup     string
		docURL     string
		wantAction string
		wantMethod string
	}{
		{
			name:       "relative action resolved",
			markup:     `<form action="/cart/add/7/" method="post"></form>`,
			docURL:     "https://shop.example/products/7/",
			wantAction: "https://shop.example/cart/add/7/",
			wantMethod: "POST",
		},
		{
			name:       "empty action is the document",
			markup:     `<form></form>`,
			docURL:     "https://shop.example/products/7/?ref=home",
			wantAction: "https://shop.example/products/7/?ref=home",
			wantMethod: "GET",
		},
		{
			name:       "no document url",
			markup:     `<form action="add/" method="Post"></form>`,
			wantAction: "add/",
			wantMethod: "POST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parse(t, "<html><body>"+tt.markup+"</body></html>", tt.docURL)
			form := doc.ElementsByTag("form")[0]

			assert.Equal(t, tt.wantAction, form.Action())
			assert.Equal(t, tt.wantMethod, form.Method())
		})
	}
}

func TestDispatchSubmit(t *testing.T) {
	doc := parse(t, page, "")
	forms := doc.ElementsByClass("js-add-to-cart-form")

	var calls []string
	forms[0].AddSubmitListener(func(ev *dom.SubmitEvent) {
		calls = append(calls, "first")
		assert.Same(t, forms[0], ev.Form)
	})
	forms[0].AddSubmitListener(func(ev *dom.SubmitEvent) {
		calls = append(calls, "second")
		ev.PreventDefault()
	})

	assert.True(t, doc.DispatchSubmit(forms[0]).DefaultPrevented())
	assert.Equal(t, []string{"first", "second"}, calls)

	assert.False(t, doc.DispatchSubmit(forms[1]).DefaultPrevented())
}

func TestConcurrentMutations(t *testing.T) {
	doc := parse(t, page, "")
	counter := doc.GetElementByID("cart-count")
	body := doc.Body()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()

			el := doc.CreateElement("p")
			body.AppendChild(el)
			counter.SetTextContent(strings.Repeat("x", i))
			_ = el.Remove()
		}()
	}
	wg.Wait()

	assert.Empty(t, doc.ElementsByTag("p"))
}
