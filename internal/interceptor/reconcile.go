package interceptor

import (
	"errors"
	"strings"

	"github.com/nikolayk812/cartajax/internal/domain"
	"github.com/nikolayk812/cartajax/internal/i18n"
	"github.com/tidwall/gjson"
)

var ErrMalformedPayload = errors.New("malformed JSON payload")

// IsJSON reports whether a Content-Type header announces a JSON body.
func IsJSON(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "application/json")
}

// ParsePayload decodes a response body without assuming any field is present.
func ParsePayload(body []byte) domain.Outcome {
	if !gjson.ValidBytes(body) {
		return domain.Outcome{Kind: domain.OutcomeFailed, Err: ErrMalformedPayload}
	}

	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return domain.Outcome{Kind: domain.OutcomeUnrecognized}
	}

	payload := domain.Payload{
		Success: doc.Get("success").Type == gjson.True,
	}

	if msg := doc.Get("message"); msg.Type == gjson.String {
		payload.Message = msg.Str
	}

	count := doc.Get("cart_count")
	switch count.Type {
	case gjson.Number:
		text := domain.CountText(count.Raw)
		payload.CartCount = &text
	case gjson.String:
		text := count.Str
		payload.CartCount = &text
	case gjson.True, gjson.False:
		text := count.Raw
		payload.CartCount = &text
	}

	return domain.Outcome{Kind: domain.OutcomePayload, Payload: payload}
}

// Reconcile maps an outcome to the UI work it calls for.
func Reconcile(o domain.Outcome, msgs *i18n.Messages) domain.Effect {
	switch o.Kind {
	case domain.OutcomeReload:
		return domain.Effect{Reload: true}

	case domain.OutcomeFailed:
		return domain.Effect{Notice: &domain.Notice{
			Message:  msgs.Retry(),
			Severity: domain.SeverityError,
		}}

	case domain.OutcomePayload:
		p := o.Payload
		effect := domain.Effect{CounterText: p.CartCount}

		if p.Success {
			effect.Notice = &domain.Notice{
				Message:  orDefault(p.Message, msgs.Added()),
				Severity: domain.SeveritySuccess,
			}
		} else {
			effect.Notice = &domain.Notice{
				Message:  orDefault(p.Message, msgs.AddFailed()),
				Severity: domain.SeverityError,
			}
		}
		return effect

	default:
		return domain.Effect{Notice: &domain.Notice{
			Message:  msgs.AddFailed(),
			Severity: domain.SeverityError,
		}}
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
