// internal/api/signup.go
//
// Shift signup: a volunteer registers for one or more shifts in a single
// request.  Self-mode endpoint; the gate only guarantees an identity, and
// the handler resolves it to a user row.

package api

import (
	"net/http"
	"strings"

	"github.com/volunteerpeel/vp-api/internal/auth"
	"github.com/volunteerpeel/vp-api/internal/database"
)

// shiftSignup bulk-inserts user_shift rows for the caller.
func (s *Server) shiftSignup(w http.ResponseWriter, r *http.Request, db *database.Gateway) {
	id, _ := auth.FromContext(r.Context())
	fields, _, err := parseBody(r)
	if err != nil {
		badRequest(w, "Unable to parse request body.")
		return
	}

	v, err := db.Scalar(r.Context(),
		"SELECT `user_id` FROM `user` WHERE `email` = ?", id.Email)
	if err != nil {
		s.fail(w, "Unable to get user data.", err)
		return
	}
	if v == nil {
		notFound(w, "Unable to find user.")
		return
	}

	shifts := intsFromAny(fields["shifts"])
	if len(shifts) == 0 {
		badRequest(w, "No shifts selected.")
		return
	}
	info, _ := fields["add_info"].(string)

	args := make([]any, 0, len(shifts)*3)
	marks := make([]string, 0, len(shifts))
	for _, shiftID := range shifts {
		marks = append(marks, "(?, ?, ?)")
		args = append(args, v, shiftID, info)
	}
	q := "INSERT INTO `user_shift` (`user_id`, `shift_id`, `add_info`) VALUES " +
		strings.Join(marks, ", ")
	if _, err := db.Exec(r.Context(), q, args...); err != nil {
		s.fail(w, "Unable to sign up for shifts.", err)
		return
	}
	ok(w, "Signed up successfully.", nil)
}
