// Package toast renders transient add-to-cart notifications into the page.
package toast

import (
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/cartajax/internal/dom"
	"github.com/nikolayk812/cartajax/internal/domain"
	"github.com/nikolayk812/cartajax/internal/i18n"
	"github.com/nikolayk812/cartajax/internal/port"
	"github.com/sirupsen/logrus"
)

const (
	DefaultDismissDelay = 2500 * time.Millisecond

	// DefaultRemovalFallback bounds the wait for a fade that never ends.
	DefaultRemovalFallback = 2 * time.Second

	HidingClass = "is-hiding"
	IDAttr      = "data-toast-id"

	alertClass   = "cart-toast-alert shadow-sm "
	errorClass   = "alert alert-danger"
	successClass = "alert alert-success"
)

type Presenter struct {
	container *Container
	msgs      *i18n.Messages
	animator  port.Animator
	log       logrus.FieldLogger

	dismissDelay time.Duration
	fallback     time.Duration

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
	done   chan struct{}
}

type Option func(*Presenter)

func WithDismissDelay(d time.Duration) Option {
	return func(p *Presenter) {
		p.dismissDelay = d
	}
}

func WithRemovalFallback(d time.Duration) Option {
	return func(p *Presenter) {
		p.fallback = d
	}
}

func WithAnimator(a port.Animator) Option {
	return func(p *Presenter) {
		p.animator = a
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(p *Presenter) {
		p.log = log
	}
}

func New(container *Container, msgs *i18n.Messages, opts ...Option) *Presenter {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	p := &Presenter{
		container:    container,
		msgs:         msgs,
		animator:     CSSTransition{Duration: DefaultFadeDuration},
		log:          discard,
		dismissDelay: DefaultDismissDelay,
		fallback:     DefaultRemovalFallback,
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Show appends a toast to the container and schedules its dismissal.
// An empty message is replaced by the localized default for the severity.
func (p *Presenter) Show(message string, isError bool) domain.Toast {
	if message == "" {
		message = p.msgs.ToastDefault(isError)
	}

	t := domain.Toast{
		ID:        uuid.New(),
		Message:   message,
		Severity:  domain.SeverityOf(isError),
		CreatedAt: time.Now(),
	}

	container := p.container.Element()
	doc := container.Document()

	el := doc.CreateElement("div")
	el.SetClassName(alertClass + severityClass(t.Severity))
	el.SetAttr(IDAttr, t.ID.String())
	el.SetTextContent(t.Message)
	container.AppendChild(el)

	p.log.WithFields(logrus.Fields{
		"toast_id": t.ID,
		"severity": t.Severity,
	}).Debug("toast shown")

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return t
	}
	p.wg.Add(1)
	go p.dismiss(t, el)

	return t
}

// Wait blocks until every scheduled dismissal has finished or was abandoned.
func (p *Presenter) Wait() {
	p.wg.Wait()
}

// Close abandons pending dismissals, leaving their toasts in place.
// Toasts shown after Close are never dismissed.
func (p *Presenter) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.done)
	}
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Presenter) dismiss(t domain.Toast, el *dom.Element) {
	defer p.wg.Done()

	delay := time.NewTimer(p.dismissDelay)
	defer delay.Stop()

	select {
	case <-delay.C:
	case <-p.done:
		return
	}

	el.AddClass(HidingClass)
	ended := p.animator.Fade(el)

	fallback := time.NewTimer(p.fallback)
	defer fallback.Stop()

	select {
	case <-ended:
	case <-fallback.C:
		p.log.WithField("toast_id", t.ID).Warn("fade did not end, removing toast")
	case <-p.done:
		return
	}

	if el.Remove() {
		p.log.WithField("toast_id", t.ID).Debug("toast removed")
	}
}

func severityClass(s domain.Severity) string {
	if s.IsError() {
		return errorClass
	}
	return successClass
}
