package towerapi

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/ericfisherdev/towerpanel/internal/domain/port/driven"
)

const requestIDHeader = "X-Request-ID"

type hookSuppressedKey struct{}

// withoutUnauthorizedHook marks ctx so a 401 answer does not fire the
// unauthorized hook. Used where 401 reports a wrong input rather than a
// rejected token.
func withoutUnauthorizedHook(ctx context.Context) context.Context {
	return context.WithValue(ctx, hookSuppressedKey{}, true)
}

func hookSuppressed(ctx context.Context) bool {
	v, _ := ctx.Value(hookSuppressedKey{}).(bool)
	return v
}

// authTransport is the request-transform step of the dispatcher. It reads the
// current token on every request, so a login or logout takes effect on the
// next call without rebuilding the client.
type authTransport struct {
	tokens driven.TokenSource
	next   http.RoundTripper

	mu   sync.RWMutex
	hook func()
}

func (t *authTransport) setHook(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hook = fn
}

// RoundTrip clones the request before mutating headers, as required by the
// http.RoundTripper contract.
func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())

	var token string
	if t.tokens != nil {
		token = t.tokens.Token()
	}
	if token != "" {
		out.Header.Set("Authorization", "Bearer "+token)
	} else {
		out.Header.Del("Authorization")
	}
	if out.Header.Get(requestIDHeader) == "" {
		out.Header.Set(requestIDHeader, uuid.NewString())
	}

	resp, err := t.next.RoundTrip(out)
	if err != nil {
		return nil, err
	}

	if token != "" && resp.StatusCode == http.StatusUnauthorized && !hookSuppressed(req.Context()) {
		t.mu.RLock()
		hook := t.hook
		t.mu.RUnlock()
		if hook != nil {
			hook()
		}
	}

	return resp, nil
}
