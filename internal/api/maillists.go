// internal/api/maillists.go
//
// Mail-list endpoints: metadata CRUD, the public signup form, and the
// member roster view.
//
// Context
// -------
// The roster query reads the denormalized vw_user_mail_list view, one row
// per (list, member) pair, and collapses it into lists with embedded
// member arrays.  Public signup provisions a bare user row keyed by email
// when the address is unknown; the insert-ignore against the unique email
// index keeps concurrent signups from racing.

package api

import (
	"net/http"
	"strings"

	"github.com/volunteerpeel/vp-api/internal/database"
	"github.com/volunteerpeel/vp-api/internal/rowtree"
)

// mailListCols is the upsert whitelist for the mail_list table.
var mailListCols = []string{"display_name", "description"}

// getAllMailLists lists every mail list with its member roster.
func (s *Server) getAllMailLists(w http.ResponseWriter, r *http.Request, db *database.Gateway) {
	rows, err := db.Query(r.Context(), "SELECT "+
		"`mail_list_id`, `display_name`, `description`, `first_name`, `last_name`, `email` "+
		"FROM `vw_user_mail_list`")
	if err != nil {
		s.fail(w, "Unable to get mail lists.", err)
		return
	}
	lists := rowtree.Collapse(rows, "mail_list_id",
		[]string{"mail_list_id", "display_name", "description"},
		[]string{"first_name", "last_name", "email"},
		"members")
	ok(w, "Got mail lists successfully.", lists)
}

// upsertMailList updates list metadata, creating the list when the id is
// the create sentinel.
func (s *Server) upsertMailList(w http.ResponseWriter, r *http.Request, db *database.Gateway) {
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

	stmt, matched := database.BuildUpsert("mail_list", "mail_list_id", id, mailListCols, fields)
	if !matched {
		badRequest(w, "No recognized fields to update.")
		return
	}
	newID, err := db.Upsert(r.Context(), stmt)
	if err != nil {
		s.fail(w, "Unable to edit mail list record.", err)
		return
	}
	ok(w, upsertMessage("mail list", newID), nil)
}

// deleteMailList removes one mail list; subscriptions cascade.
func (s *Server) deleteMailList(w http.ResponseWriter, r *http.Request, db *database.Gateway) {
	id, err := urlID(r)
	if err != nil {
		badRequest(w, "Bad route parameter id.")
		return
	}
	rows, err := db.Exec(r.Context(), "DELETE FROM `mail_list` WHERE `mail_list_id` = ?", id)
	if err != nil {
		s.fail(w, "Unable to delete mail list.", err)
		return
	}
	if rows != 1 {
		notFound(w, "Mail list not found.")
		return
	}
	ok(w, "Deleted mail list successfully.", nil)
}

// mailListSignup subscribes an email address to the list at the route id,
// provisioning a bare user row first when the address is unknown.
func (s *Server) mailListSignup(w http.ResponseWriter, r *http.Request, db *database.Gateway) {
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
	email, _ := fields["email"].(string)
	email = strings.TrimSpace(email)
	if email == "" {
		badRequest(w, "No email provided.")
		return
	}

	if _, err := db.Exec(r.Context(),
		"INSERT IGNORE INTO `user` (`email`) VALUES (?)", email); err != nil {
		s.fail(w, "Unable to sign up for mail list.", err)
		return
	}
	if _, err := db.Exec(r.Context(),
		"INSERT IGNORE INTO `user_mail_list` (`user_id`, `mail_list_id`) "+
			"SELECT `user_id`, ? FROM `user` WHERE `email` = ?", id, email); err != nil {
		s.fail(w, "Unable to sign up for mail list.", err)
		return
	}
	ok(w, "Signed up for mail list successfully.", nil)
}
