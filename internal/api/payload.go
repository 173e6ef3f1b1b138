// internal/api/payload.go
//
// Request payload helpers shared by the resource handlers.
//
// Context
// -------
// The front end sends two body shapes.  Plain edits arrive as a JSON
// object.  Edits that carry a file (event letters, user photos, header
// images) arrive as multipart/form-data where every non-file field value
// is itself JSON-encoded text.  parseBody folds both into one
// map[string]any so the upsert builder sees a single payload shape.
//
// Notes
// -----
// • Unknown fields are kept; the column whitelist discards them later.
// • Oxford commas, two spaces after periods.

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// createID is the sentinel for routes without an {id} parameter: the
// upsert builder receives it, matches no row, and falls through to the
// INSERT leg.
const createID int64 = -1

// maxUploadBytes bounds multipart memory use; larger files spill to disk.
const maxUploadBytes = 10 << 20

// errBadID reports a non-numeric {id} path parameter.
var errBadID = errors.New("api: id parameter is not a number")

// urlID resolves the {id} route parameter.  Routes without one resolve to
// createID.
func urlID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		return createID, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errBadID
	}
	return id, nil
}

// parseBody decodes the request into a field map and, for multipart
// bodies, the uploaded file under its form name.  A missing or empty body
// yields an empty map, not an error; handlers decide whether that is
// acceptable.
func parseBody(r *http.Request) (map[string]any, map[string]*multipart.FileHeader, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if ct == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return nil, nil, err
		}
		fields := make(map[string]any, len(r.MultipartForm.Value))
		for name, vals := range r.MultipartForm.Value {
			if len(vals) == 0 {
				continue
			}
			fields[name] = decodeFormValue(vals[0])
		}
		files := make(map[string]*multipart.FileHeader, len(r.MultipartForm.File))
		for name, fhs := range r.MultipartForm.File {
			if len(fhs) > 0 {
				files[name] = fhs[0]
			}
		}
		return fields, files, nil
	}

	fields := map[string]any{}
	if r.Body == nil {
		return fields, nil, nil
	}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil, nil
		}
		return nil, nil, err
	}
	return fields, nil, nil
}

// decodeFormValue interprets a multipart field value as JSON when it parses
// as JSON, and as plain text otherwise.  The front end encodes every field
// that way, but hand-written curl requests send bare strings.
func decodeFormValue(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	var v any
	dec := json.NewDecoder(strings.NewReader(trimmed))
	dec.UseNumber()
	if err := dec.Decode(&v); err == nil {
		return v
	}
	return raw
}

// intsFromAny coerces a decoded JSON array into int64s, dropping anything
// non-numeric.  Shift lists and delete lists arrive this way.
func intsFromAny(v any) []int64 {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]int64, 0, len(arr))
	for _, item := range arr {
		switch n := item.(type) {
		case json.Number:
			if i, err := n.Int64(); err == nil {
				out = append(out, i)
			}
		case float64:
			out = append(out, int64(n))
		case int64:
			out = append(out, n)
		}
	}
	return out
}

// mapsFromAny coerces a decoded JSON array of objects, dropping anything
// that is not an object.  Shift payloads arrive this way.
func mapsFromAny(v any) []map[string]any {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(arr))
	for _, item := range arr {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// storeUpload streams one multipart file into the blob store and returns
// its public URL.
func (s *Server) storeUpload(ctx context.Context, container string, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	return s.blobs.Put(ctx, container, fh.Filename, f)
}

// int64FromAny coerces one numeric value; ok is false for anything else.
func int64FromAny(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	}
	return 0, false
}
