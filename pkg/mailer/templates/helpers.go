package templates

import (
	"net/url"
	"strings"
	"time"
)

// Option pattern
type Option func(*EmailData)

func WithUsername(name string) Option { return func(d *EmailData) { d.Username = name } }
func WithEmail(email string) Option   { return func(d *EmailData) { d.Email = email } }

func WithTime(t time.Time) Option {
	return func(d *EmailData) { d.Time = t.UTC().Format("02 January 2006, 15:04") }
}

func WithExpiresAt(t time.Time) Option {
	return func(d *EmailData) { d.ExpiresAtText = t.UTC().Format("02 January 2006, 15:04") }
}

// WithActivateLinks sets the activation link and the "not you" link, both
// carrying the same token.
func WithActivateLinks(base, token string) Option {
	return func(d *EmailData) {
		d.ActivateURL = Link(base, "token", token)
		d.RemoveURL = Link(base, "remove", token)
	}
}

func WithRecoverLink(base, token string) Option {
	return func(d *EmailData) { d.RecoverURL = Link(base, "recover", token) }
}

// Link appends key=value to the query of base. An unparsable base gets the
// parameter appended verbatim.
func Link(base, key, value string) string {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		sep := "?"
		if strings.Contains(base, "?") {
			sep = "&"
		}
		return base + sep + key + "=" + url.QueryEscape(value)
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}

// NewEmailData builds EmailData with defaults then applies options.
func NewEmailData(appName string, opts ...Option) EmailData {
	d := EmailData{AppName: appName}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}
