// internal/api/sponsors.go
//
// Sponsor endpoints.  Same shape as FAQs plus an optional logo upload on
// the write path; the stored URL lands in the image column.

package api

import (
	"net/http"

	"github.com/volunteerpeel/vp-api/internal/blob"
	"github.com/volunteerpeel/vp-api/internal/database"
)

// sponsorCols is the upsert whitelist for the sponsor table.
var sponsorCols = []string{"name", "image", "website", "priority"}

// getAllSponsors lists sponsors ordered by display priority.
func (s *Server) getAllSponsors(w http.ResponseWriter, r *http.Request, db *database.Gateway) {
	sponsors, err := db.Query(r.Context(),
		"SELECT `sponsor_id`, `name`, `image`, `website`, `priority` FROM `sponsor` ORDER BY `priority`")
	if err != nil {
		s.fail(w, "Unable to get sponsors.", err)
		return
	}
	ok(w, "Got sponsors successfully.", sponsors)
}

// upsertSponsor updates the sponsor at the route id, creating it when the
// id is the create sentinel.  A multipart pic upload replaces the image
// URL.
func (s *Server) upsertSponsor(w http.ResponseWriter, r *http.Request, db *database.Gateway) {
	id, err := urlID(r)
	if err != nil {
		badRequest(w, "Bad route parameter id.")
		return
	}
	fields, files, err := parseBody(r)
	if err != nil {
		badRequest(w, "Unable to parse request body.")
		return
	}

	if fh, okf := files["pic"]; okf {
		url, err := s.storeUpload(r.Context(), blob.ContainerSponsors, fh)
		if err != nil {
			s.fail(w, "Unable to upload sponsor image.", err)
			return
		}
		fields["image"] = url
	}

	stmt, matched := database.BuildUpsert("sponsor", "sponsor_id", id, sponsorCols, fields)
	if !matched {
		badRequest(w, "No recognized fields to update.")
		return
	}
	newID, err := db.Upsert(r.Context(), stmt)
	if err != nil {
		s.fail(w, "Unable to edit sponsor record.", err)
		return
	}
	ok(w, upsertMessage("sponsor", newID), nil)
}

// deleteSponsor removes one sponsor.
func (s *Server) deleteSponsor(w http.ResponseWriter, r *http.Request, db *database.Gateway) {
	id, err := urlID(r)
	if err != nil {
		badRequest(w, "Bad route parameter id.")
		return
	}
	rows, err := db.Exec(r.Context(), "DELETE FROM `sponsor` WHERE `sponsor_id` = ?", id)
	if err != nil {
		s.fail(w, "Unable to delete sponsor.", err)
		return
	}
	if rows != 1 {
		notFound(w, "Sponsor not found.")
		return
	}
	ok(w, "Deleted sponsor successfully.", nil)
}
