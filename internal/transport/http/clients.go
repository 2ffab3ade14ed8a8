package http

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"quizlink-service/internal/app"
)

const (
	clientCookie        = "quiz_client"
	answerCookiePrefix  = "quiz_answers_"
	browserCookieMaxAge = 365 * 24 * time.Hour
)

// StoreResolver returns the answer store of the browser behind r. It may set
// cookies on w, so it must run before the response body is written.
type StoreResolver func(w http.ResponseWriter, r *http.Request) app.AnswerStore

// ServerSideStores keys records by a browser id cookie and keeps them in stores.
func ServerSideStores(stores app.AnswerStores) StoreResolver {
	return func(w http.ResponseWriter, r *http.Request) app.AnswerStore {
		id, fresh := clientID(r)
		if fresh {
			http.SetCookie(w, clientIDCookie(id))
		}
		return stores.ForClient(id)
	}
}

// CookieStores keeps each answer record in a cookie of its own, so the record
// lives in the browser like local storage would.
func CookieStores() StoreResolver {
	return func(w http.ResponseWriter, r *http.Request) app.AnswerStore {
		return &cookieStore{r: r, w: w, written: make(map[string]string)}
	}
}

// clientID returns the browser id from the request, or a new one.
func clientID(r *http.Request) (string, bool) {
	if c, err := r.Cookie(clientCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value, false
		}
	}
	return uuid.NewString(), true
}

func clientIDCookie(id string) *http.Cookie {
	return &http.Cookie{
		Name:     clientCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(browserCookieMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

type cookieStore struct {
	r       *http.Request
	w       http.ResponseWriter
	written map[string]string
}

func (s *cookieStore) GetItem(_ context.Context, key string) (string, bool, error) {
	if v, ok := s.written[key]; ok {
		return v, true, nil
	}
	c, err := s.r.Cookie(answerCookieName(key))
	if err != nil {
		return "", false, nil
	}
	v, err := url.QueryUnescape(c.Value)
	if err != nil {
		return "", false, nil
	}
	return v, true, nil
}

func (s *cookieStore) SetItem(_ context.Context, key, value string) error {
	s.written[key] = value
	http.SetCookie(s.w, &http.Cookie{
		Name:     answerCookieName(key),
		Value:    url.QueryEscape(value),
		Path:     "/",
		MaxAge:   int(browserCookieMaxAge.Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// answerCookieName encodes the quiz name into a valid cookie token.
func answerCookieName(key string) string {
	return answerCookiePrefix + base64.RawURLEncoding.EncodeToString([]byte(key))
}
