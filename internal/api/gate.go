// internal/api/gate.go
//
// Authorization gate: the three wrappers every route passes through.
//
// Context
// -------
// Handlers never inspect tokens or roles themselves.  A route declares its
// requirement once in the route table and the wrapper enforces it:
//
//	public       no identity needed; anonymous callers pass.
//	secured      identity required, and the caller's stored role must be
//	             Executive.  Anything less answers 401.
//	securedSelf  identity required; the handler acts only on the caller's
//	             own record, so no role floor applies.
//
// A missing identity is a client fault (400 "Not logged in."), not an
// authorization failure.  Role lookups hit the user table on every secured
// request; a deleted user is locked out on their next call.
//
// Notes
// -----
// • Panics inside a handler must never leak a stack trace to the client.
// • Oxford commas, two spaces after periods.

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/volunteerpeel/vp-api/internal/auth"
	"github.com/volunteerpeel/vp-api/internal/database"
	"github.com/volunteerpeel/vp-api/internal/metrics"
)

// guarded is the signature every resource handler implements.  The gate
// hands it a Gateway so handlers never touch the raw pool.
type guarded func(w http.ResponseWriter, r *http.Request, db *database.Gateway)

// public runs the handler for any caller, authenticated or not.
func (s *Server) public(h guarded) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer s.recoverPanic(w, r)
		h(w, r, database.NewGateway(s.db))
	}
}

// secured requires an authenticated caller with the Executive role.
func (s *Server) secured(h guarded) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer s.recoverPanic(w, r)

		id, ok := auth.FromContext(r.Context())
		if !ok {
			badRequest(w, "Not logged in.")
			return
		}

		db := database.NewGateway(s.db)
		role, err := db.RoleOf(r.Context(), id.Email)
		if err != nil {
			s.log.Errorw("role lookup failed", "email", id.Email, "err", err)
			serverError(w, "Failed to process action.")
			return
		}
		if role < auth.RoleExecutive {
			s.log.Warnw("unauthorized request",
				"email", id.Email,
				"path", r.URL.Path,
			)
			metrics.UnauthorizedTotal.Inc()
			unauthorized(w)
			return
		}

		h(w, r, db)
	}
}

// securedSelf requires an authenticated caller but no role floor; the
// handler touches only rows keyed by the caller's own email.
func (s *Server) securedSelf(h guarded) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer s.recoverPanic(w, r)

		if _, ok := auth.FromContext(r.Context()); !ok {
			badRequest(w, "Not logged in.")
			return
		}

		h(w, r, database.NewGateway(s.db))
	}
}

// recoverPanic converts a handler panic into a generic 500.
func (s *Server) recoverPanic(w http.ResponseWriter, r *http.Request) {
	if rec := recover(); rec != nil {
		s.log.Errorw("handler panic",
			"panic", rec,
			"method", r.Method,
			"path", r.URL.Path,
		)
		serverError(w, "Failed to process action.")
	}
}

// accessLog records one structured line and the Prometheus pair for every
// request.  The route label uses the chi pattern, not the raw path, so the
// cardinality stays bounded.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		pattern := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			pattern = rc.RoutePattern()
		}

		metrics.RequestsTotal.WithLabelValues(pattern, strconv.Itoa(ww.Status())).Inc()
		metrics.RequestDuration.Observe(elapsed.Seconds())

		s.log.Infow("request",
			"method", r.Method,
			"route", pattern,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", elapsed.Milliseconds(),
		)
	})
}
