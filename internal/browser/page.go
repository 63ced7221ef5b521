package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/nikolayk812/cartajax/internal/csrf"
	"github.com/nikolayk812/cartajax/internal/dom"
	"github.com/nikolayk812/cartajax/internal/interceptor"
	"github.com/nikolayk812/cartajax/internal/toast"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrPageClosed = errors.New("page is closed")

	// ErrStaleForm is returned for a form of a document the page has left.
	ErrStaleForm = errors.New("form belongs to a previous document")
)

// Page is one browser tab. Every load, native navigation or reload starts a
// new document lifecycle; the previous one is abandoned.
type Page struct {
	b    *Browser
	root context.Context

	mu      sync.Mutex
	cur     *lifecycle
	retired []*lifecycle
	closed  bool

	loads       atomic.Int32
	navigations atomic.Int32
}

type lifecycle struct {
	ctx    context.Context
	cancel context.CancelFunc

	doc         *dom.Document
	presenter   *toast.Presenter
	interceptor *interceptor.Interceptor
}

// Open loads rawURL in a new page.
func (b *Browser) Open(ctx context.Context, rawURL string) (*Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("url.Parse: %w", err)
	}

	p := &Page{
		b:    b,
		root: context.WithoutCancel(ctx),
	}

	if err := p.load(ctx, http.MethodGet, u, nil, ""); err != nil {
		return nil, fmt.Errorf("p.load: %w", err)
	}

	return p, nil
}

func (p *Page) Document() *dom.Document {
	return p.current().doc
}

func (p *Page) URL() *url.URL {
	return p.current().doc.URL()
}

// Forms returns the add-to-cart forms registered on the current document.
func (p *Page) Forms() []*interceptor.Form {
	return p.current().interceptor.Forms()
}

// Loads counts documents loaded so far, including reloads and navigations.
func (p *Page) Loads() int {
	return int(p.loads.Load())
}

// Navigations counts native form submissions.
func (p *Page) Navigations() int {
	return int(p.navigations.Load())
}

// CartCount returns the text of the cart counter element, if the page has one.
func (p *Page) CartCount() (string, bool) {
	el := p.Document().GetElementByID(interceptor.CounterID)
	if el == nil {
		return "", false
	}
	return el.TextContent(), true
}

// Toasts returns the text of every toast currently in the container.
func (p *Page) Toasts() []string {
	container := p.Document().GetElementByID(toast.ContainerID)
	if container == nil {
		return nil
	}

	var texts []string
	for _, el := range container.Children() {
		texts = append(texts, el.TextContent())
	}
	return texts
}

// Submit dispatches a user submit on form. It reports whether a listener
// took over the submission; otherwise the form is submitted natively.
// Forms of a document replaced by a reload or navigation are rejected.
func (p *Page) Submit(ctx context.Context, form *dom.Element) (bool, error) {
	doc := form.Document()
	if doc != p.current().doc {
		return false, ErrStaleForm
	}

	ev := doc.DispatchSubmit(form)
	if ev.DefaultPrevented() {
		return true, nil
	}

	if err := p.navigate(ctx, form); err != nil {
		return false, fmt.Errorf("p.navigate: %w", err)
	}
	return false, nil
}

// Reload loads the current URL again.
func (p *Page) Reload(ctx context.Context) error {
	if err := p.load(ctx, http.MethodGet, p.URL(), nil, ""); err != nil {
		return fmt.Errorf("p.load: %w", err)
	}
	return nil
}

// Settle waits for the in-flight submissions of the current document,
// following reloads they trigger.
func (p *Page) Settle() {
	for {
		lc := p.current()
		lc.interceptor.Wait()
		if p.current() == lc {
			return
		}
	}
}

// Wait settles submissions, then waits until every toast is dismissed.
func (p *Page) Wait() {
	p.Settle()
	p.current().presenter.Wait()
}

// Close abandons in-flight work and pending toast dismissals.
func (p *Page) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	all := append(p.retired, p.cur)
	p.retired = nil
	p.mu.Unlock()

	for _, lc := range all {
		lc.cancel()
		lc.presenter.Close()
	}
	for _, lc := range all {
		lc.interceptor.Wait()
	}
}

func (p *Page) current() *lifecycle {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.cur
}

func (p *Page) navigate(ctx context.Context, form *dom.Element) error {
	values := url.Values{}
	for _, field := range form.FormData() {
		values.Add(field.Name, field.Value)
	}

	target, err := url.Parse(form.Action())
	if err != nil {
		return fmt.Errorf("url.Parse: %w", err)
	}

	p.navigations.Add(1)

	if form.Method() == http.MethodPost {
		return p.load(ctx, http.MethodPost, target, strings.NewReader(values.Encode()), "application/x-www-form-urlencoded")
	}

	target.RawQuery = values.Encode()
	return p.load(ctx, http.MethodGet, target, nil, "")
}

func (p *Page) load(ctx context.Context, method string, u *url.URL, body io.Reader, contentType string) error {
	ctx, span := p.b.tracer.Start(ctx, "browser.Load", trace.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("url", u.String()),
	))
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("http.NewRequestWithContext: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := p.b.client.Do(req)
	if err != nil {
		return fmt.Errorf("client.Do: %w", err)
	}
	defer resp.Body.Close()

	doc, err := dom.Parse(resp.Body, resp.Request.URL)
	if err != nil {
		return fmt.Errorf("dom.Parse: %w", err)
	}

	lc := p.newLifecycle(doc)
	forms := lc.interceptor.Attach(lc.ctx, csrf.JarSource{Jar: p.b.client.Jar, URL: doc.URL()})

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		lc.cancel()
		lc.presenter.Close()
		return ErrPageClosed
	}
	prev := p.cur
	p.cur = lc
	if prev != nil {
		p.retired = append(p.retired, prev)
	}
	p.mu.Unlock()

	if prev != nil {
		prev.cancel()
		prev.presenter.Close()
	}

	p.loads.Add(1)
	p.b.log.WithFields(logrus.Fields{
		"url":    doc.URL().String(),
		"status": resp.StatusCode,
		"forms":  len(forms),
	}).Info("page loaded")

	return nil
}

func (p *Page) newLifecycle(doc *dom.Document) *lifecycle {
	ctx, cancel := context.WithCancel(p.root)

	opts := append([]toast.Option{toast.WithLogger(p.b.log)}, p.b.toastOpts...)
	presenter := toast.New(toast.NewContainer(doc), p.b.msgs, opts...)

	return &lifecycle{
		ctx:       ctx,
		cancel:    cancel,
		doc:       doc,
		presenter: presenter,
		interceptor: interceptor.New(doc, p.b.client, presenter, p, p.b.msgs,
			interceptor.WithLogger(p.b.log),
			interceptor.WithTracer(p.b.tracer),
		),
	}
}
