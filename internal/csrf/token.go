package csrf

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/nikolayk812/cartajax/internal/port"
)

// CookieName is the cookie the storefront issues its CSRF token in.
const CookieName = "csrftoken"

// Lookup returns the percent-decoded value of the first cookie in raw whose
// name is exactly name. raw is a document.cookie style string.
func Lookup(raw, name string) (string, bool) {
	if raw == "" || name == "" {
		return "", false
	}

	prefix := name + "="
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if !strings.HasPrefix(entry, prefix) {
			continue
		}

		value := entry[len(prefix):]
		decoded, err := url.PathUnescape(value)
		if err != nil {
			// malformed escapes are kept verbatim
			return value, true
		}
		return decoded, true
	}

	return "", false
}

func FromSource(src port.CookieSource, name string) (string, bool) {
	if src == nil {
		return "", false
	}
	return Lookup(src.Cookie(), name)
}

// JarSource serializes the cookies a jar would send to URL.
type JarSource struct {
	Jar http.CookieJar
	URL *url.URL
}

func (s JarSource) Cookie() string {
	if s.Jar == nil || s.URL == nil {
		return ""
	}

	cookies := s.Jar.Cookies(s.URL)
	pairs := make([]string, 0, len(cookies))
	for _, c := range cookies {
		pairs = append(pairs, c.Name+"="+c.Value)
	}

	return strings.Join(pairs, "; ")
}

// String is a fixed cookie string.
type String string

func (s String) Cookie() string {
	return string(s)
}
