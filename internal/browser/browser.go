// Package browser is a headless storefront page runtime. It loads pages
// over HTTP with a cookie jar, runs the add-to-cart layer on every page load
// and plays the part of the host for submits, native navigation and reloads.
package browser

import (
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"

	"github.com/nikolayk812/cartajax/internal/i18n"
	"github.com/nikolayk812/cartajax/internal/toast"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/nikolayk812/cartajax/internal/browser"

type Browser struct {
	client *http.Client
	msgs   *i18n.Messages
	log    logrus.FieldLogger
	tracer trace.Tracer

	toastOpts []toast.Option
}

type Option func(*Browser)

// WithHTTPClient replaces the default client. A cookie jar is added when
// the client has none.
func WithHTTPClient(client *http.Client) Option {
	return func(b *Browser) {
		b.client = client
	}
}

func WithMessages(msgs *i18n.Messages) Option {
	return func(b *Browser) {
		b.msgs = msgs
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(b *Browser) {
		b.log = log
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(b *Browser) {
		b.tracer = tracer
	}
}

func WithToastOptions(opts ...toast.Option) Option {
	return func(b *Browser) {
		b.toastOpts = append(b.toastOpts, opts...)
	}
}

func New(opts ...Option) (*Browser, error) {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	b := &Browser{
		msgs:   i18n.New(i18n.DefaultLanguage),
		log:    discard,
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(b)
	}

	if b.client == nil {
		b.client = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	if b.client.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("cookiejar.New: %w", err)
		}
		b.client.Jar = jar
	}

	return b, nil
}

func (b *Browser) Client() *http.Client {
	return b.client
}
