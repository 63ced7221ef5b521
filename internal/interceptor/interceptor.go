// Package interceptor turns add-to-cart form submits into background
// requests and reconciles their responses into the page.
package interceptor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/nikolayk812/cartajax/internal/csrf"
	"github.com/nikolayk812/cartajax/internal/dom"
	"github.com/nikolayk812/cartajax/internal/domain"
	"github.com/nikolayk812/cartajax/internal/i18n"
	"github.com/nikolayk812/cartajax/internal/port"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	FormClass = "js-add-to-cart-form"
	CounterID = "cart-count"

	HeaderRequestedWith = "X-Requested-With"
	HeaderCSRFToken     = "X-CSRFToken"
	requestedWithAjax   = "XMLHttpRequest"

	maxPayloadBytes = 1 << 20
)

type State int32

const (
	StateIdle State = iota
	StateInFlight
)

func (s State) String() string {
	if s == StateInFlight {
		return "in-flight"
	}
	return "idle"
}

// Form is one registered add-to-cart form.
type Form struct {
	el       *dom.Element
	inFlight atomic.Int32
}

func (f *Form) Element() *dom.Element {
	return f.el
}

// State is InFlight while at least one submission of f is unsettled.
func (f *Form) State() State {
	if f.inFlight.Load() > 0 {
		return StateInFlight
	}
	return StateIdle
}

func (f *Form) begin() {
	f.inFlight.Add(1)
}

func (f *Form) settle() {
	f.inFlight.Add(-1)
}

type Interceptor struct {
	doc      *dom.Document
	client   port.Doer
	notifier port.Notifier
	reloader port.Reloader
	msgs     *i18n.Messages
	log      logrus.FieldLogger
	tracer   trace.Tracer

	token    string
	hasToken bool
	forms    []*Form

	wg sync.WaitGroup
}

type Option func(*Interceptor)

func WithLogger(log logrus.FieldLogger) Option {
	return func(i *Interceptor) {
		i.log = log
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(i *Interceptor) {
		i.tracer = tracer
	}
}

func New(doc *dom.Document, client port.Doer, notifier port.Notifier, reloader port.Reloader, msgs *i18n.Messages, opts ...Option) *Interceptor {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	i := &Interceptor{
		doc:      doc,
		client:   client,
		notifier: notifier,
		reloader: reloader,
		msgs:     msgs,
		log:      discard,
		tracer:   otel.Tracer("github.com/nikolayk812/cartajax/internal/interceptor"),
	}
	for _, opt := range opts {
		opt(i)
	}

	return i
}

// Attach registers every marker form of the document and caches the CSRF
// token. Submissions run under ctx; cancelling it abandons them.
// It must be called once per page load.
func (i *Interceptor) Attach(ctx context.Context, cookies port.CookieSource) []*Form {
	elements := i.doc.ElementsByClass(FormClass)
	if len(elements) == 0 {
		return nil
	}

	i.token, i.hasToken = csrf.FromSource(cookies, csrf.CookieName)
	if !i.hasToken {
		i.log.Warn("csrf cookie is missing, submitting without token")
	}

	for _, el := range elements {
		f := &Form{el: el}
		el.AddSubmitListener(func(ev *dom.SubmitEvent) {
			ev.PreventDefault()

			f.begin()
			i.wg.Add(1)
			go func() {
				defer i.wg.Done()
				defer f.settle()

				i.Submit(ctx, f)
			}()
		})
		i.forms = append(i.forms, f)
	}

	i.log.WithField("forms", len(i.forms)).Debug("add-to-cart forms attached")

	return i.forms
}

func (i *Interceptor) Forms() []*Form {
	return i.forms
}

// Wait blocks until every intercepted submission has settled.
func (i *Interceptor) Wait() {
	i.wg.Wait()
}

// Submit performs one exchange for f and applies its effect to the page.
func (i *Interceptor) Submit(ctx context.Context, f *Form) domain.Outcome {
	action := f.el.Action()

	ctx, span := i.tracer.Start(ctx, "interceptor.Submit",
		trace.WithAttributes(attribute.String("form.action", action)))
	defer span.End()

	outcome := i.exchange(ctx, action, f.el.FormData())

	span.SetAttributes(attribute.String("outcome", outcome.Kind.String()))
	log := i.log.WithFields(logrus.Fields{
		"action":  action,
		"outcome": outcome.Kind,
	})
	if outcome.Err != nil {
		span.RecordError(outcome.Err)
		span.SetStatus(codes.Error, outcome.Err.Error())
		log = log.WithError(outcome.Err)
	}
	log.Debug("add-to-cart settled")

	i.apply(ctx, Reconcile(outcome, i.msgs))

	return outcome
}

func (i *Interceptor) exchange(ctx context.Context, action string, fields []dom.Field) domain.Outcome {
	req, err := i.newRequest(ctx, action, fields)
	if err != nil {
		return domain.Outcome{Kind: domain.OutcomeFailed, Err: fmt.Errorf("newRequest: %w", err)}
	}

	resp, err := i.client.Do(req)
	if err != nil {
		return domain.Outcome{Kind: domain.OutcomeFailed, Err: fmt.Errorf("client.Do: %w", err)}
	}
	defer resp.Body.Close()

	if !IsJSON(resp.Header.Get("Content-Type")) {
		_, _ = io.Copy(io.Discard, resp.Body)
		return domain.Outcome{Kind: domain.OutcomeReload}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return domain.Outcome{Kind: domain.OutcomeFailed, Err: fmt.Errorf("io.ReadAll: %w", err)}
	}

	return ParsePayload(body)
}

func (i *Interceptor) newRequest(ctx context.Context, action string, fields []dom.Field) (*http.Request, error) {
	var body bytes.Buffer

	mw := multipart.NewWriter(&body)
	for _, field := range fields {
		if err := mw.WriteField(field.Name, field.Value); err != nil {
			return nil, fmt.Errorf("mw.WriteField: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("mw.Close: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, action, &body)
	if err != nil {
		return nil, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}

	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(HeaderRequestedWith, requestedWithAjax)
	if i.hasToken {
		req.Header.Set(HeaderCSRFToken, i.token)
	}

	return req, nil
}

func (i *Interceptor) apply(ctx context.Context, effect domain.Effect) {
	if effect.Reload {
		if i.reloader == nil {
			return
		}
		if err := i.reloader.Reload(ctx); err != nil {
			i.log.WithError(err).Warn("page reload failed")
		}
		return
	}

	if effect.CounterText != nil {
		if counter := i.doc.GetElementByID(CounterID); counter != nil {
			counter.SetTextContent(*effect.CounterText)
		}
	}

	if effect.Notice != nil {
		i.notifier.Show(effect.Notice.Message, effect.Notice.Severity.IsError())
	}
}
