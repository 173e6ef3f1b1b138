// internal/api/headers.go
//
// Header-image endpoints.  Headers are bare links: the blob store holds
// the image, the header table holds the URL, and the public site pulls a
// random one per page load.
//
// Notes
// -----
// • Delete removes the stored object before the row, so a crash between
//   the two leaves a dangling row, never an orphaned file URL.

package api

import (
	"net/http"
	"net/url"
	"path"

	"github.com/volunteerpeel/vp-api/internal/blob"
	"github.com/volunteerpeel/vp-api/internal/database"
)

// createHeader stores the uploaded image and records its public URL.
func (s *Server) createHeader(w http.ResponseWriter, r *http.Request, db *database.Gateway) {
	_, files, err := parseBody(r)
	if err != nil {
		badRequest(w, "Unable to parse request body.")
		return
	}
	fh, okf := files["pic"]
	if !okf {
		badRequest(w, "No image included in request.")
		return
	}

	link, err := s.storeUpload(r.Context(), blob.ContainerHeaders, fh)
	if err != nil {
		s.fail(w, "Failed to create header image.", err)
		return
	}
	id, err := db.Insert(r.Context(), "INSERT INTO `header` (`link`) VALUES (?)", link)
	if err != nil {
		s.fail(w, "Failed to create header image.", err)
		return
	}

	ok(w, "Image uploaded successfully.", database.Row{"id": id, "link": link})
}

// getAllHeaders lists every header row.
func (s *Server) getAllHeaders(w http.ResponseWriter, r *http.Request, db *database.Gateway) {
	headers, err := db.Query(r.Context(), "SELECT `header_id`, `link` FROM `header`")
	if err != nil {
		s.fail(w, "Unable to get headers.", err)
		return
	}
	ok(w, "Got headers successfully.", headers)
}

// getRandomHeader redirects to a random header image.  The caller is an
// <img> tag, so failures answer an empty 204 instead of the JSON envelope.
func (s *Server) getRandomHeader(w http.ResponseWriter, r *http.Request, db *database.Gateway) {
	v, err := db.Scalar(r.Context(), "SELECT `link` FROM `header` ORDER BY RAND() LIMIT 1")
	if err != nil {
		s.log.Errorw("random header failed", "err", err)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	link, okv := v.(string)
	if !okv || link == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, link, http.StatusFound)
}

// deleteHeader removes the stored object, then the row.
func (s *Server) deleteHeader(w http.ResponseWriter, r *http.Request, db *database.Gateway) {
	id, err := urlID(r)
	if err != nil {
		badRequest(w, "Bad route parameter id.")
		return
	}

	v, err := db.Scalar(r.Context(), "SELECT `link` FROM `header` WHERE `header_id` = ?", id)
	if err != nil {
		s.fail(w, "Failed to delete header image.", err)
		return
	}
	if v == nil {
		notFound(w, "Header not found.")
		return
	}

	if link, okv := v.(string); okv {
		if u, err := url.Parse(link); err == nil {
			if _, err := s.blobs.DeleteIfExists(r.Context(), blob.ContainerHeaders, path.Base(u.Path)); err != nil {
				s.fail(w, "Failed to delete header image.", err)
				return
			}
		}
	}
	if _, err := db.Exec(r.Context(), "DELETE FROM `header` WHERE `header_id` = ?", id); err != nil {
		s.fail(w, "Failed to delete header image.", err)
		return
	}
	ok(w, "Image deleted successfully.", nil)
}
