package rowtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNestAttachesChildrenInOrder(t *testing.T) {
	parents := []Row{
		{"event_id": int64(1), "name": "Gala"},
		{"event_id": int64(2), "name": "Run"},
	}
	children := []Row{
		{"shift_id": int64(10), "event_id": int64(2)},
		{"shift_id": int64(11), "event_id": int64(1)},
		{"shift_id": int64(12), "event_id": int64(2)},
	}

	out := Nest(parents, children, "event_id", "shifts")
	require.Len(t, out, 2)

	gala := out[0]["shifts"].([]Row)
	run := out[1]["shifts"].([]Row)
	require.Len(t, gala, 1)
	require.Len(t, run, 2)
	assert.Equal(t, int64(11), gala[0]["shift_id"])
	assert.Equal(t, int64(10), run[0]["shift_id"])
	assert.Equal(t, int64(12), run[1]["shift_id"])
}

func TestNestDropsOrphanChildren(t *testing.T) {
	parents := []Row{{"event_id": int64(1)}}
	children := []Row{
		{"shift_id": int64(10), "event_id": int64(99)}, // filtered-out parent
		{"shift_id": int64(11), "event_id": int64(1)},
	}

	out := Nest(parents, children, "event_id", "shifts")
	shifts := out[0]["shifts"].([]Row)
	require.Len(t, shifts, 1, "orphan must be dropped, not errored")
	assert.Equal(t, int64(11), shifts[0]["shift_id"])
}

func TestNestChildAppearsUnderOneParentOnly(t *testing.T) {
	parents := []Row{{"event_id": int64(1)}, {"event_id": int64(2)}}
	children := []Row{{"shift_id": int64(10), "event_id": int64(1)}}

	out := Nest(parents, children, "event_id", "shifts")
	assert.Len(t, out[0]["shifts"].([]Row), 1)
	assert.Empty(t, out[1]["shifts"].([]Row))
}

func TestNestEmptyParentsGetEmptyList(t *testing.T) {
	out := Nest([]Row{{"event_id": int64(1)}}, nil, "event_id", "shifts")
	assert.Empty(t, out[0]["shifts"].([]Row))
}

func TestNestMixedKeyTypes(t *testing.T) {
	// Parent keyed int64, child keyed string, as different views return.
	parents := []Row{{"event_id": int64(3)}}
	children := []Row{{"shift_id": int64(1), "event_id": "3"}}

	out := Nest(parents, children, "event_id", "shifts")
	assert.Len(t, out[0]["shifts"].([]Row), 1)
}

func TestCollapseGroupsByFirstAppearance(t *testing.T) {
	rows := []Row{
		{"mail_list_id": int64(1), "display_name": "News", "email": "a@x.org"},
		{"mail_list_id": int64(2), "display_name": "Execs", "email": "b@x.org"},
		{"mail_list_id": int64(1), "display_name": "News", "email": "c@x.org"},
	}

	out := Collapse(rows, "mail_list_id",
		[]string{"mail_list_id", "display_name"},
		[]string{"email"}, "members")
	require.Len(t, out, 2)
	assert.Equal(t, "News", out[0]["display_name"])
	assert.Len(t, out[0]["members"].([]Row), 2)
	assert.Len(t, out[1]["members"].([]Row), 1)
	_, leaked := out[0]["email"]
	assert.False(t, leaked, "child columns must not leak onto the parent")
}

func TestPick(t *testing.T) {
	r := Row{"a": 1, "b": 2, "c": 3}
	assert.Equal(t, Row{"a": 1, "c": 3}, Pick(r, "a", "c"))
}
