package toast

import (
	"time"

	"github.com/nikolayk812/cartajax/internal/dom"
)

// DefaultFadeDuration matches the opacity transition of .is-hiding in the
// storefront stylesheet.
const DefaultFadeDuration = 300 * time.Millisecond

// CSSTransition ends the fade after a fixed duration.
type CSSTransition struct {
	Duration time.Duration
}

func (t CSSTransition) Fade(_ *dom.Element) <-chan struct{} {
	done := make(chan struct{})
	time.AfterFunc(t.Duration, func() {
		close(done)
	})
	return done
}
