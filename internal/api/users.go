// internal/api/users.go
//
// User endpoints: detail reads with shift and subscription assembly, the
// shared write path for create / by-id / self modes, and deletion.
//
// Context
// -------
// Two endpoints per verb: /user/{id} is the Executive admin surface and
// /me is the self-service surface.  Both funnel into one detail reader
// and one writer parameterized by mode.  Self mode swaps the lookup key
// from user_id to the caller's email and strips email from the update
// whitelist, so nobody rebinds their own account to a different address.
//
// First-login provisioning lives on the read path: a caller with no user
// row gets one at the floor role.  The insert-ignore against the unique
// email index makes a concurrent double-read insert exactly one row; the
// affected count tells us whether this request was the one that created
// it.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.

package api

import (
	"net/http"
	"strings"

	"github.com/volunteerpeel/vp-api/internal/auth"
	"github.com/volunteerpeel/vp-api/internal/blob"
	"github.com/volunteerpeel/vp-api/internal/database"
	"github.com/volunteerpeel/vp-api/internal/rowtree"
)

// userCols is the detail projection for the user table.
var userCols = []string{
	"user_id", "role_id",
	"first_name", "last_name",
	"email", "phone_1", "phone_2", "school",
	"title", "bio", "pic", "show_exec",
}

// userWriteCols is the upsert whitelist for user writes.  email joins the
// list only outside self mode; pic only when an upload arrives.
var userWriteCols = []string{
	"first_name", "last_name",
	"phone_1", "phone_2", "school", "role_id", "bio", "title", "show_exec",
}

// getUser serves the admin detail view for the user at the route id.
func (s *Server) getUser(w http.ResponseWriter, r *http.Request, db *database.Gateway) {
	id, err := urlID(r)
	if err != nil {
		badRequest(w, "Bad route parameter id.")
		return
	}
	s.userDetail(w, r, db, false, id)
}

// getCurrentUser serves the caller's own detail view, provisioning the
// user row on first visit.
func (s *Server) getCurrentUser(w http.ResponseWriter, r *http.Request, db *database.Gateway) {
	s.userDetail(w, r, db, true, createID)
}

// userDetail assembles the full user response: base record, per-shift
// attendance with nested confirm level / shift / event, and the mail-list
// array with a subscribed flag for every known list.
func (s *Server) userDetail(w http.ResponseWriter, r *http.Request, db *database.Gateway, self bool, id int64) {
	ident, _ := auth.FromContext(r.Context())

	created := false
	if self {
		role, err := db.RoleOf(r.Context(), ident.Email)
		if err != nil {
			s.fail(w, "Unable to fetch user.", err)
			return
		}
		if role == auth.RoleNone {
			rows, err := db.Exec(r.Context(),
				"INSERT IGNORE INTO `user` (`first_name`, `last_name`, `email`, `role_id`) VALUES (?, ?, ?, ?)",
				ident.GivenName, ident.FamilyName, ident.Email, int(auth.RoleVolunteer))
			if err != nil {
				s.fail(w, "Unable to create user.", err)
				return
			}
			created = rows == 1
		}
	}

	sel := "SELECT `" + strings.Join(userCols, "`, `") + "` FROM `user` WHERE "
	var users []database.Row
	var err error
	if self {
		users, err = db.Query(r.Context(), sel+"`email` = ? LIMIT 1", ident.Email)
	} else {
		users, err = db.Query(r.Context(), sel+"`user_id` = ? LIMIT 1", id)
	}
	if err != nil {
		s.fail(w, "Unable to fetch user.", err)
		return
	}
	if len(users) == 0 {
		notFound(w, "User not found.")
		return
	}
	user := users[0]
	userID := user["user_id"]

	attendance, err := db.Query(r.Context(),
		"SELECT `user_shift_id`, `hours`, "+
			"`confirm_level_id`, `confirm_level`, `confirm_description`, `letter`, "+
			"`shift_id`, `shift_num`, `start_time`, `end_time`, `event_id`, `name` "+
			"FROM `vw_user_shift` WHERE `user_id` = ?", userID)
	if err != nil {
		s.fail(w, "Unable to fetch attendance statuses.", err)
		return
	}
	userShifts := make([]database.Row, 0, len(attendance))
	for _, row := range attendance {
		userShifts = append(userShifts, database.Row{
			"user_shift_id": row["user_shift_id"],
			"hours":         row["hours"],
			"letter":        row["letter"],
			"confirm_level": database.Row{
				"id":          row["confirm_level_id"],
				"name":        row["confirm_level"],
				"description": row["confirm_description"],
			},
			"shift":       rowtree.Pick(row, "shift_id", "shift_num", "start_time", "end_time"),
			"parentEvent": rowtree.Pick(row, "event_id", "name"),
		})
	}

	mailLists, err := db.Query(r.Context(),
		"SELECT m.`mail_list_id`, m.`display_name`, m.`description`, "+
			"(uml.`user_mail_list_id` IS NOT NULL) AS `subscribed` "+
			"FROM `mail_list` m "+
			"LEFT JOIN `user_mail_list` uml "+
			"ON uml.`mail_list_id` = m.`mail_list_id` AND uml.`user_id` = ?", userID)
	if err != nil {
		s.fail(w, "Unable to get mail list subscriptions.", err)
		return
	}
	for _, ml := range mailLists {
		if n, okn := int64FromAny(ml["subscribed"]); okn {
			ml["subscribed"] = n == 1
		}
	}
	user["mail_lists"] = mailLists

	ok(w, "Retrieved user successfully.", database.Row{
		"user":       user,
		"created":    created,
		"userShifts": userShifts,
	})
}

// setUser handles PUT /user (create) and POST /user/{id} (edit by id).
func (s *Server) setUser(w http.ResponseWriter, r *http.Request, db *database.Gateway) {
	id, err := urlID(r)
	if err != nil {
		badRequest(w, "Bad route parameter id.")
		return
	}
	s.writeUser(w, r, db, false, id)
}

// setCurrentUser handles POST /me.
func (s *Server) setCurrentUser(w http.ResponseWriter, r *http.Request, db *database.Gateway) {
	s.writeUser(w, r, db, true, createID)
}

// writeUser is the shared user write path: whitelist upsert, optional
// photo upload, and mail-list subscription sync.
func (s *Server) writeUser(w http.ResponseWriter, r *http.Request, db *database.Gateway, self bool, id int64) {
	ident, _ := auth.FromContext(r.Context())
	fields, files, err := parseBody(r)
	if err != nil {
		badRequest(w, "Unable to parse request body.")
		return
	}

	userID := id
	if self {
		v, err := db.Scalar(r.Context(),
			"SELECT `user_id` FROM `user` WHERE `email` = ?", ident.Email)
		if err != nil {
			s.fail(w, "Error finding user in database.", err)
			return
		}
		if v == nil {
			notFound(w, "User not found.")
			return
		}
		n, okn := int64FromAny(v)
		if !okn {
			s.fail(w, "Error finding user in database.", nil)
			return
		}
		userID = n
	}

	whitelist := userWriteCols
	if !self {
		whitelist = append(append([]string{}, userWriteCols...), "email")
	}
	if fh, okf := files["pic"]; okf {
		url, err := s.storeUpload(r.Context(), blob.ContainerPhotos, fh)
		if err != nil {
			s.fail(w, "Unable to upload photo.", err)
			return
		}
		fields["pic"] = url
		whitelist = append(append([]string{}, whitelist...), "pic")
	}

	mailLists := mapsFromAny(fields["mail_lists"])
	stmt, matched := database.BuildUpsert("user", "user_id", userID, whitelist, fields)
	if !matched && len(mailLists) == 0 {
		badRequest(w, "No recognized fields to update.")
		return
	}

	if matched {
		newID, err := db.Upsert(r.Context(), stmt)
		if err != nil {
			s.fail(w, "Unable to update user.", err)
			return
		}
		if newID != nil {
			userID = *newID
		}
	}

	if len(mailLists) > 0 {
		if err := s.syncMailLists(r, db, userID, mailLists); err != nil {
			s.fail(w, "Unable to update mail list subscriptions.", err)
			return
		}
	}

	ok(w, "User updated successfully.", nil)
}

// syncMailLists applies the subscription flags in one pass: insert-ignore
// for every subscribe, one batch delete for the unsubscribes.
func (s *Server) syncMailLists(r *http.Request, db *database.Gateway, userID int64, mailLists []map[string]any) error {
	var unsubscribe []any
	for _, entry := range mailLists {
		listID, okn := int64FromAny(entry["mail_list_id"])
		if !okn {
			continue
		}
		subscribed, _ := entry["subscribed"].(bool)
		if subscribed {
			if _, err := db.Exec(r.Context(),
				"INSERT IGNORE INTO `user_mail_list` (`user_id`, `mail_list_id`) VALUES (?, ?)",
				userID, listID); err != nil {
				return err
			}
		} else {
			unsubscribe = append(unsubscribe, listID)
		}
	}
	if len(unsubscribe) == 0 {
		return nil
	}
	q := "DELETE FROM `user_mail_list` WHERE `user_id` = ? AND `mail_list_id` IN (" +
		placeholders(len(unsubscribe)) + ")"
	args := append([]any{userID}, unsubscribe...)
	_, err := db.Exec(r.Context(), q, args...)
	return err
}

// deleteUser removes one user; attendance and subscriptions cascade.
func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request, db *database.Gateway) {
	id, err := urlID(r)
	if err != nil {
		badRequest(w, "Bad route parameter id.")
		return
	}
	rows, err := db.Exec(r.Context(), "DELETE FROM `user` WHERE `user_id` = ?", id)
	if err != nil {
		s.fail(w, "Unable to delete user.", err)
		return
	}
	if rows != 1 {
		notFound(w, "Unable to find user.")
		return
	}
	ok(w, "Deleted user successfully.", nil)
}
