// Command cartclient opens a storefront product page, submits its
// add-to-cart forms in the background and reports the resulting toasts and
// cart counter.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/nikolayk812/cartajax/internal/browser"
	"github.com/nikolayk812/cartajax/internal/config"
	"github.com/nikolayk812/cartajax/internal/i18n"
	"github.com/nikolayk812/cartajax/internal/interceptor"
	"github.com/nikolayk812/cartajax/internal/logging"
	"github.com/nikolayk812/cartajax/internal/toast"
	"github.com/nikolayk812/cartajax/internal/tracing"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	fs := flag.NewFlagSet("cartclient", flag.ExitOnError)
	fs.StringVar(&cfg.StorefrontURL, "url", cfg.StorefrontURL, "storefront page to open")
	forms := fs.String("form", "all", "comma separated indexes of add-to-cart forms to submit, or all")
	_ = fs.Parse(os.Args[1:])

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger, err := logging.New(os.Stdout, cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *forms, logger); err != nil {
		logger.WithError(err).Fatal("cartclient failed")
	}
}

func run(ctx context.Context, cfg config.Config, formSelection string, logger *logrus.Logger) error {
	shutdown, err := tracing.Init(ctx, cfg.OTLPEndpoint, cfg.ServiceName)
	if err != nil {
		return fmt.Errorf("tracing.Init: %w", err)
	}
	defer func() {
		if err := shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.WithError(err).Warn("tracer shutdown failed")
		}
	}()

	msgs, err := i18n.Parse(cfg.Language)
	if err != nil {
		return fmt.Errorf("i18n.Parse: %w", err)
	}

	b, err := browser.New(
		browser.WithHTTPClient(&http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   cfg.RequestTimeout,
		}),
		browser.WithMessages(msgs),
		browser.WithLogger(logger),
		browser.WithToastOptions(
			toast.WithDismissDelay(cfg.ToastDismissDelay),
			toast.WithAnimator(toast.CSSTransition{Duration: cfg.ToastFadeDuration}),
			toast.WithRemovalFallback(cfg.ToastRemovalFallback),
		),
	)
	if err != nil {
		return fmt.Errorf("browser.New: %w", err)
	}

	page, err := b.Open(ctx, cfg.StorefrontURL)
	if err != nil {
		return fmt.Errorf("b.Open: %w", err)
	}
	defer page.Close()

	selected, err := selectForms(page.Forms(), formSelection)
	if err != nil {
		return fmt.Errorf("selectForms: %w", err)
	}

	for _, f := range selected {
		_, err := page.Submit(ctx, f.Element())
		if errors.Is(err, browser.ErrStaleForm) {
			// an earlier submit reloaded the page
			action, _ := f.Element().Attr("action")
			logger.WithField("action", action).Warn("form skipped after reload")
			continue
		}
		if err != nil {
			return fmt.Errorf("page.Submit: %w", err)
		}
	}

	page.Settle()

	count, _ := page.CartCount()
	logger.WithFields(logrus.Fields{
		"cart_count": count,
		"toasts":     page.Toasts(),
		"reloads":    page.Loads() - 1,
	}).Info("submissions settled")

	page.Wait()

	return nil
}

func selectForms(forms []*interceptor.Form, selection string) ([]*interceptor.Form, error) {
	if selection == "" || selection == "all" {
		return forms, nil
	}

	var selected []*interceptor.Form
	for _, part := range strings.Split(selection, ",") {
		i, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("strconv.Atoi: %w", err)
		}
		if i < 0 || i >= len(forms) {
			return nil, fmt.Errorf("form index[%d] is out of range, page has %d forms", i, len(forms))
		}
		selected = append(selected, forms[i])
	}

	return selected, nil
}
