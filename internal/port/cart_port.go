package port

import (
	"context"
	"net/http"

	"github.com/nikolayk812/cartajax/internal/dom"
	"github.com/nikolayk812/cartajax/internal/domain"
)

// CookieSource exposes the page cookies serialized as "k1=v1; k2=v2".
type CookieSource interface {
	Cookie() string
}

type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Notifier interface {
	Show(message string, isError bool) domain.Toast
}

// Reloader performs a full reload of the current page.
type Reloader interface {
	Reload(ctx context.Context) error
}

// Animator starts the hide transition of el and returns a channel closed
// when the transition ends. The channel may never close.
type Animator interface {
	Fade(el *dom.Element) <-chan struct{}
}
