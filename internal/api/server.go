// internal/api/server.go
//
// Server wiring: shared dependencies and the chi route table.
//
// Context
// -------
// One Server owns the pool, the blob store, and the logger.  Routes bind a
// resource handler to one of three authorization wrappers from gate.go:
// public, secured (Executive), or securedSelf (acting on own record).
// Routes without an {id} parameter resolve to the "create" sentinel, so
// POST /faq and PUT /faq/{id} share one handler.
//
// Notes
// -----
// • Route patterns mirror the public site contract; renaming one breaks
//   the deployed front end.
// • Oxford commas, two spaces after periods.

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/volunteerpeel/vp-api/internal/auth"
	"github.com/volunteerpeel/vp-api/internal/blob"
	"github.com/volunteerpeel/vp-api/internal/middleware"
	"github.com/volunteerpeel/vp-api/internal/requestinfo"
)

// Server carries the collaborators every handler needs.
type Server struct {
	db    *sqlx.DB
	blobs blob.Store
	log   *zap.SugaredLogger
}

// New returns a Server ready to build its router.
func New(db *sqlx.DB, blobs blob.Store, log *zap.SugaredLogger) *Server {
	return &Server{db: db, blobs: blobs, log: log}
}

// Router assembles the full middleware chain and route table.  authSecret
// is the HMAC key for the identity middleware.
func (s *Server) Router(authSecret []byte) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Security)
	r.Use(requestinfo.Enrich)
	r.Use(s.accessLog)
	r.Use(auth.Middleware(authSecret))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", s.handleHealth)

	// Events.
	r.Get("/events", s.public(s.getAllEvents))
	r.Put("/event/{id}", s.secured(s.updateEvent))
	r.Delete("/event/{id}", s.secured(s.deleteEvent))
	r.Put("/archive-event/{id}", s.secured(s.archiveEvent))

	// FAQs.
	r.Get("/faq", s.public(s.getAllFAQs))
	r.Post("/faq", s.secured(s.upsertFAQ))
	r.Put("/faq/{id}", s.secured(s.upsertFAQ))
	r.Delete("/faq/{id}", s.secured(s.deleteFAQ))

	// Sponsors.
	r.Get("/sponsor", s.public(s.getAllSponsors))
	r.Post("/sponsor", s.secured(s.upsertSponsor))
	r.Put("/sponsor/{id}", s.secured(s.upsertSponsor))
	r.Delete("/sponsor/{id}", s.secured(s.deleteSponsor))

	// Header images.
	r.Post("/header", s.secured(s.createHeader))
	r.Get("/header", s.secured(s.getAllHeaders))
	r.Get("/header/random", s.public(s.getRandomHeader))
	r.Delete("/header/{id}", s.secured(s.deleteHeader))

	// Mail lists.
	r.Get("/mail-list", s.public(s.getAllMailLists))
	r.Post("/mail-list", s.secured(s.upsertMailList))
	r.Put("/mail-list/{id}", s.secured(s.upsertMailList))
	r.Delete("/mail-list/{id}", s.secured(s.deleteMailList))
	r.Post("/mail-list/signup/{id}", s.public(s.mailListSignup))

	// Users and the current-user alias.
	r.Put("/user", s.secured(s.setUser))
	r.Post("/user/{id}", s.secured(s.setUser))
	r.Get("/user/{id}", s.secured(s.getUser))
	r.Delete("/user/{id}", s.secured(s.deleteUser))
	r.Get("/me", s.securedSelf(s.getCurrentUser))
	r.Post("/me", s.securedSelf(s.setCurrentUser))

	// Shift signup.
	r.Post("/signup", s.securedSelf(s.shiftSignup))

	return r
}

// handleHealth answers a bare 200 for load-balancer probes.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ok(w, "OK", nil)
}

// fail logs the cause and answers a 500 with a caller-safe message.
func (s *Server) fail(w http.ResponseWriter, message string, err error) {
	s.log.Errorw("request failed", "reason", message, "err", err)
	serverError(w, message)
}
