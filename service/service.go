// Package service exposes the API as domain-shaped operations.
//
// Each operation builds a request, sends it through a [Sender] (normally
// *client.Client) and unwraps the {"data": ...} envelope. Errors from the
// adapter reach the caller unchanged; the facade neither caches, dedupes
// nor retries.
package service

import (
	"strings"

	client "github.com/peteraglen/starter-api-client"
	"github.com/peteraglen/starter-api-client/token"
)

// LanguageHeader carries the caller's UI language to the API.
const LanguageHeader = "x-app-lang"

// Service groups the facades sharing one sender.
type Service struct {
	Users *UserService
	Auth  *AuthService
}

type options struct {
	language string
}

type Option func(*options)

// WithLanguage sets the [LanguageHeader] value. The default is "en".
func WithLanguage(lang string) Option {
	return func(o *options) {
		if lang = strings.TrimSpace(lang); lang != "" {
			o.language = lang
		}
	}
}

// New builds the facades. store receives the token after login, register
// and refresh and is cleared on logout. A nil store leaves token handling
// to the caller: auth responses are returned but not kept.
func New(sender Sender, store token.Store, opts ...Option) *Service {
	o := &options{language: "en"}
	for _, opt := range opts {
		opt(o)
	}

	b := base{sender: sender, language: o.language}

	return &Service{
		Users: &UserService{base: b},
		Auth:  &AuthService{base: b, store: store},
	}
}

type base struct {
	sender   Sender
	language string
}

func (b base) request(method, path string) *client.Request {
	return client.NewRequest(method, path).SetHeader(LanguageHeader, b.language)
}
