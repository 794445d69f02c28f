package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/justinas/alice"
	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/traffic-autopilot/pkg/apiErrors"
)

func tag(name string) alice.Constructor {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("X-Chain", name)
			next.ServeHTTP(w, r)
		})
	}
}

func TestRouteMiddlewaresRunInOrder(t *testing.T) {
	rt := New(WithRoutes(Route{
		Path:        "/ping",
		Method:      http.MethodGet,
		Middlewares: []alice.Constructor{tag("a"), tag("b")},
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}),
	}))

	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"a", "b"}, rec.Header().Values("X-Chain"))
}

func TestUnknownRoutesUseAPIErrors(t *testing.T) {
	rt := New(WithRoutes(Route{
		Path:    "/ping",
		Method:  http.MethodGet,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}),
	}))

	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), apiErrors.ErrRouteNotFound))

	rec = httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), apiErrors.ErrMethodNotAllowed))
}
