// Package httpx contains the HTTP delivery layer (net/http handlers) for
// the Hearth service. It maps HTTP requests to the application service
// while enforcing validation, security headers, and error translation.
// Handlers are split across files (dashboard.go, birthdays.go, health.go,
// errors.go).
package httpx

import (
	"context"
	"net/http"

	"github.com/haukened/hearth/internal/app"
	"github.com/haukened/hearth/internal/domain"
)

// ServicePort abstracts the subset of app.Service used by the HTTP layer.
// It is satisfied by *app.Service in production and mocked in tests.
type ServicePort interface {
	Dashboard(ctx context.Context) (app.Dashboard, error)
	AddBirthday(ctx context.Context, name, birthdate string) (int64, error)
	ListBirthdays(ctx context.Context) ([]domain.Birthday, error)
	RemoveBirthday(ctx context.Context, id int64) error
}

// Handler wires HTTP endpoints to the application service.
// It is safe for concurrent use. Zero-value is not valid; construct via New.
type Handler struct {
	Service   ServicePort
	Readiness func(context.Context) error // optional readiness probe
	OnRequest func(route string)          // optional metrics hook per handled route
}

// New returns a configured Handler.
// svc: application service port implementation.
// readiness: optional probe function for /readyz (nil => always ready).
func New(svc ServicePort, readiness func(context.Context) error) *Handler {
	return &Handler{Service: svc, Readiness: readiness}
}

// Router constructs and returns an http.Handler with all routes mounted,
// correlation-ID and security-header middleware applied.
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", h.handleDashboard)
	mux.HandleFunc("/api/new", h.handleNewBirthday)
	mux.HandleFunc("/api/birthdays", h.handleListBirthdays)
	mux.HandleFunc("/api/birthday/", h.handleDeleteBirthday) // expect /api/birthday/{id}
	mux.HandleFunc("/healthz", h.handleHealth)
	mux.HandleFunc("/readyz", h.handleReady)
	return CorrelationIDMiddleware(h.secureHeaders(mux))
}

// secureHeaders middleware adds standard security & cache control headers.
// Every response carries personal data or reflects local state, so nothing
// is cacheable.
func (h *Handler) secureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'; base-uri 'none'")
		next.ServeHTTP(w, r)
	})
}

// countRequest invokes the metrics hook when configured.
func (h *Handler) countRequest(route string) {
	if h.OnRequest != nil {
		h.OnRequest(route)
	}
}
