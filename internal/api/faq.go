// internal/api/faq.go
//
// FAQ endpoints.  The simplest resource on the platform: a flat table, a
// public list, and Executive-only writes through the shared upsert path.

package api

import (
	"net/http"

	"github.com/volunteerpeel/vp-api/internal/database"
)

// faqCols is the upsert whitelist for the faq table.
var faqCols = []string{"question", "answer"}

// getAllFAQs lists every FAQ in table order.
func (s *Server) getAllFAQs(w http.ResponseWriter, r *http.Request, db *database.Gateway) {
	faqs, err := db.Query(r.Context(), "SELECT `faq_id`, `question`, `answer` FROM `faq`")
	if err != nil {
		s.fail(w, "Unable to get FAQs.", err)
		return
	}
	ok(w, "Got FAQs successfully.", faqs)
}

// upsertFAQ updates the FAQ at the route id, creating it when the id is
// the create sentinel or unknown.
func (s *Server) upsertFAQ(w http.ResponseWriter, r *http.Request, db *database.Gateway) {
	id, err := urlID(r)
	if err != nil {
		badRequest(w, "Bad route parameter id.")
		return
	}
	fields, _, err := parseBody(r)
	if err != nil {
		badRequest(w, "Unable to parse request body.")
		return
	}

	stmt, matched := database.BuildUpsert("faq", "faq_id", id, faqCols, fields)
	if !matched {
		badRequest(w, "No recognized fields to update.")
		return
	}
	newID, err := db.Upsert(r.Context(), stmt)
	if err != nil {
		s.fail(w, "Unable to edit FAQ record.", err)
		return
	}
	ok(w, upsertMessage("FAQ", newID), nil)
}

// deleteFAQ removes one FAQ.
func (s *Server) deleteFAQ(w http.ResponseWriter, r *http.Request, db *database.Gateway) {
	id, err := urlID(r)
	if err != nil {
		badRequest(w, "Bad route parameter id.")
		return
	}
	rows, err := db.Exec(r.Context(), "DELETE FROM `faq` WHERE `faq_id` = ?", id)
	if err != nil {
		s.fail(w, "Unable to delete FAQ.", err)
		return
	}
	if rows != 1 {
		notFound(w, "FAQ not found.")
		return
	}
	ok(w, "Deleted FAQ successfully.", nil)
}

// upsertMessage words the shared create-versus-update response.  newID is
// the Gateway.Upsert return: non-nil only when the insert leg ran.
func upsertMessage(noun string, newID *int64) string {
	if newID != nil {
		return "Created " + noun + " successfully."
	}
	return "Updated " + noun + " successfully."
}
