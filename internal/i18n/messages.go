// Package i18n holds the default toast texts of the storefront.
package i18n

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys. The English text doubles as the key.
const (
	keyAdded      = "Product added to cart."
	keyAddFailed  = "Failed to add product to cart."
	keyGeneric    = "An error occurred."
	keyAddedShort = "Added to cart."
	keyRetry      = "An error occurred; please try again."
)

// DefaultLanguage is the language of the storefront this layer was built for.
var DefaultLanguage = language.Persian

var translations = map[language.Tag]map[string]string{
	language.English: {
		keyAdded:      keyAdded,
		keyAddFailed:  keyAddFailed,
		keyGeneric:    keyGeneric,
		keyAddedShort: keyAddedShort,
		keyRetry:      keyRetry,
	},
	language.Persian: {
		keyAdded:      "محصول به سبد خرید اضافه شد.",
		keyAddFailed:  "خطا در افزودن به سبد خرید.",
		keyGeneric:    "خطایی رخ داد.",
		keyAddedShort: "به سبد خرید اضافه شد.",
		keyRetry:      "خطایی رخ داد؛ دوباره تلاش کنید.",
	},
}

var cat = mustBuildCatalog()

func mustBuildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, msgs := range translations {
		for key, text := range msgs {
			if err := b.SetString(tag, key, text); err != nil {
				panic(fmt.Sprintf("i18n: b.SetString(%s, %q): %v", tag, key, err))
			}
		}
	}
	return b
}

// Supported returns the languages with a full translation, default first.
func Supported() []language.Tag {
	return []language.Tag{DefaultLanguage, language.English}
}

type Messages struct {
	tag language.Tag
	p   *message.Printer
}

// New returns the messages for the supported language closest to tag.
func New(tag language.Tag) *Messages {
	matched, _, _ := language.NewMatcher(Supported()).Match(tag)
	base, _ := matched.Base()
	matched, _ = language.Compose(base)

	return &Messages{
		tag: matched,
		p:   message.NewPrinter(matched, message.Catalog(cat)),
	}
}

// Parse is New for a BCP 47 string such as "fa" or "en-US".
func Parse(s string) (*Messages, error) {
	tag, err := language.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("language.Parse: %w", err)
	}
	return New(tag), nil
}

func (m *Messages) Language() language.Tag {
	return m.tag
}

// Added is shown when the server reports success without a message.
func (m *Messages) Added() string {
	return m.p.Sprintf(keyAdded)
}

// AddFailed is shown when the server reports failure without a message.
func (m *Messages) AddFailed() string {
	return m.p.Sprintf(keyAddFailed)
}

// Retry is shown when no usable response was obtained.
func (m *Messages) Retry() string {
	return m.p.Sprintf(keyRetry)
}

// ToastDefault is the text of a toast shown without a message.
func (m *Messages) ToastDefault(isError bool) string {
	if isError {
		return m.p.Sprintf(keyGeneric)
	}
	return m.p.Sprintf(keyAddedShort)
}
