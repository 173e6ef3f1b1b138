// internal/api/events.go
//
// Event endpoints: listing with shift nesting, upsert with child shifts,
// delete, and archive toggling.
//
// Context
// -------
// Events are the core resource.  The list endpoint is public but the
// non-active filters expose archived records, so those require Executive
// inline; the route itself stays public for the common case.  The update
// endpoint is the heaviest write on the platform: one event upsert, a
// batch shift delete, and a concurrent upsert per surviving shift.
//
// Notes
// -----
// • The event and vw_shift queries must share one predicate; the nesting
//   step drops shifts whose parent was filtered out.
// • Oxford commas, two spaces after periods.

package api

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/volunteerpeel/vp-api/internal/auth"
	"github.com/volunteerpeel/vp-api/internal/blob"
	"github.com/volunteerpeel/vp-api/internal/database"
	"github.com/volunteerpeel/vp-api/internal/metrics"
	"github.com/volunteerpeel/vp-api/internal/rowtree"
)

// eventCols is the upsert whitelist for the event table.  letter joins the
// list only when an upload arrives.
var eventCols = []string{"name", "description", "transport", "address", "add_info"}

// shiftCols is the upsert whitelist for the shift table.
var shiftCols = []string{"event_id", "shift_num", "max_spots", "start_time", "end_time", "meals", "notes"}

// getAllEvents lists events with their shifts nested.  filter selects the
// visibility slice: active (default, public), nonarchived, or all.  The
// non-active slices require Executive.
func (s *Server) getAllEvents(w http.ResponseWriter, r *http.Request, db *database.Gateway) {
	filter := r.URL.Query().Get("filter")
	if filter == "" {
		filter = "active"
	}
	if filter != "active" && filter != "nonarchived" && filter != "all" {
		badRequest(w, "Bad query parameter filter.")
		return
	}

	if filter != "active" {
		id, _ := auth.FromContext(r.Context())
		role, err := db.RoleOf(r.Context(), id.Email)
		if err != nil {
			s.fail(w, "Unable to retrieve events.", err)
			return
		}
		if role < auth.RoleExecutive {
			s.log.Warnw("unauthorized request", "email", id.Email, "path", r.URL.Path)
			metrics.UnauthorizedTotal.Inc()
			unauthorized(w)
			return
		}
	}

	cols := "`event_id`, `name`, `address`, `transport`, `description`, `add_info`"
	shiftSel := "`shift_id`, `event_id`, `shift_num`, `start_time`, `end_time`, `meals`, `spots_taken`, `max_spots`, `notes`"
	if filter != "active" {
		cols += ", `active`, `archived`"
		shiftSel += ", `active`, `archived`"
	}

	where := ""
	switch filter {
	case "active":
		where = " WHERE `active` = 1"
	case "nonarchived":
		where = " WHERE `archived` = 0"
	}

	events, err := db.Query(r.Context(), "SELECT "+cols+" FROM `event`"+where)
	if err != nil {
		s.fail(w, "Unable to retrieve events.", err)
		return
	}
	shifts, err := db.Query(r.Context(), "SELECT "+shiftSel+" FROM `vw_shift`"+where)
	if err != nil {
		s.fail(w, "Unable to retrieve shifts.", err)
		return
	}

	ok(w, "Retrieved events successfully.", rowtree.Nest(events, shifts, "event_id", "shifts"))
}

// updateEvent upserts one event and its shifts.  The route id is the event
// to update, or the create sentinel.  The body may carry deleteShifts (ids
// to remove), shifts (objects to upsert), and a multipart letter upload.
func (s *Server) updateEvent(w http.ResponseWriter, r *http.Request, db *database.Gateway) {
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

	whitelist := eventCols
	if fh, ok := files["letter"]; ok {
		url, err := s.storeUpload(r.Context(), blob.ContainerLetters, fh)
		if err != nil {
			s.fail(w, "Unable to upload letter.", err)
			return
		}
		fields["letter"] = url
		whitelist = append(append([]string{}, eventCols...), "letter")
	}

	eventID := id
	if stmt, ok := database.BuildUpsert("event", "event_id", id, whitelist, fields); ok {
		newID, err := db.Upsert(r.Context(), stmt)
		if err != nil {
			s.fail(w, "Unable to update event.", err)
			return
		}
		if newID != nil {
			eventID = *newID
		}
	}

	if del := intsFromAny(fields["deleteShifts"]); len(del) > 0 {
		args := make([]any, len(del))
		for i, v := range del {
			args[i] = v
		}
		q := "DELETE FROM `shift` WHERE `shift_id` IN (" + placeholders(len(del)) + ")"
		if _, err := db.Exec(r.Context(), q, args...); err != nil {
			s.fail(w, "Unable to delete shifts.", err)
			return
		}
	}

	if shifts := mapsFromAny(fields["shifts"]); len(shifts) > 0 {
		failed := s.upsertShifts(r.Context(), db, eventID, shifts)
		if len(failed) > 0 {
			nums := make([]string, len(failed))
			for i, n := range failed {
				nums[i] = fmt.Sprintf("%d", n)
			}
			serverError(w, "Unable to update shift "+strings.Join(nums, ", "))
			return
		}
	}

	ok(w, "Updated event successfully.", nil)
}

// upsertShifts runs one upsert per shift concurrently and returns the
// shift numbers that failed.  A partial batch is reported, not rolled
// back; the front end retries the failed shifts alone.
func (s *Server) upsertShifts(ctx context.Context, db *database.Gateway, eventID int64, shifts []map[string]any) []int64 {
	var (
		mu     sync.Mutex
		failed []int64
	)
	g, ctx := errgroup.WithContext(ctx)
	for _, shift := range shifts {
		g.Go(func() error {
			shift["event_id"] = eventID
			shiftID, ok := int64FromAny(shift["shift_id"])
			if !ok {
				shiftID = createID
			}
			num, _ := int64FromAny(shift["shift_num"])

			stmt, ok := database.BuildUpsert("shift", "shift_id", shiftID, shiftCols, shift)
			if !ok {
				return nil
			}
			if _, err := db.Upsert(ctx, stmt); err != nil {
				s.log.Errorw("shift upsert failed", "shift_num", num, "err", err)
				mu.Lock()
				failed = append(failed, num)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait() // goroutines never return errors; failures land in failed
	sort.Slice(failed, func(i, j int) bool { return failed[i] < failed[j] })
	return failed
}

// deleteEvent removes the event; shifts go with it via cascade.
func (s *Server) deleteEvent(w http.ResponseWriter, r *http.Request, db *database.Gateway) {
	id, err := urlID(r)
	if err != nil {
		badRequest(w, "Bad route parameter id.")
		return
	}
	if _, err := db.Exec(r.Context(), "DELETE FROM `event` WHERE `event_id` = ?", id); err != nil {
		s.fail(w, "Unable to delete event.", err)
		return
	}
	ok(w, "Deleted event successfully.", nil)
}

// archiveEvent flags the event archived; the unarchive query parameter
// clears the flag instead.
func (s *Server) archiveEvent(w http.ResponseWriter, r *http.Request, db *database.Gateway) {
	id, err := urlID(r)
	if err != nil {
		badRequest(w, "Bad route parameter id.")
		return
	}

	flag, message := 1, "Archived event successfully."
	if r.URL.Query().Has("unarchive") {
		flag, message = 0, "Unarchived event successfully."
	}
	if _, err := db.Exec(r.Context(),
		"UPDATE `event` SET `archived` = ? WHERE `event_id` = ?", flag, id); err != nil {
		s.fail(w, "Unable to archive event.", err)
		return
	}
	ok(w, message, nil)
}

// placeholders returns n comma-joined binding marks.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
