// internal/database/upsert_test.go
//
// Unit-tests for the upsert statement builder.
//
// Run: go test ./internal/database -v

package database

import (
	"strings"
	"testing"
)

func TestBuildUpsertNoIntersection(t *testing.T) {
	stmt, ok := BuildUpsert("faq", "faq_id", 3,
		[]string{"question", "answer"},
		map[string]any{"a_fake_column": "x"})
	if ok || stmt != nil {
		t.Fatalf("expected no-op, got %#v", stmt)
	}
}

func TestBuildUpsertEmptyPayload(t *testing.T) {
	if _, ok := BuildUpsert("faq", "faq_id", 3, []string{"question"}, map[string]any{}); ok {
		t.Fatal("empty payload must be a no-op")
	}
}

func TestBuildUpsertClausesPerMatchedColumn(t *testing.T) {
	stmt, ok := BuildUpsert("event", "event_id", -1,
		[]string{"name", "address", "transport", "description"},
		map[string]any{"name": "Gala", "transport": "TTC", "ignored": 1})
	if !ok {
		t.Fatal("expected a statement")
	}

	wantUpdate := "UPDATE `event` SET `name` = ?, `transport` = ? WHERE `event_id` = ?"
	if stmt.Update != wantUpdate {
		t.Errorf("update = %q, want %q", stmt.Update, wantUpdate)
	}
	wantInsert := "INSERT INTO `event` (`name`, `transport`) VALUES (?, ?)"
	if stmt.Insert != wantInsert {
		t.Errorf("insert = %q, want %q", stmt.Insert, wantInsert)
	}
	if len(stmt.Args) != 2 || stmt.Args[0] != "Gala" || stmt.Args[1] != "TTC" {
		t.Errorf("args = %#v", stmt.Args)
	}
	if stmt.PKValue != -1 {
		t.Errorf("pk value = %v", stmt.PKValue)
	}
}

func TestBuildUpsertWhitelistOrderIsFixed(t *testing.T) {
	// Payload map order must not matter; clauses follow the whitelist.
	stmt, _ := BuildUpsert("shift", "shift_id", 9,
		[]string{"event_id", "shift_num", "max_spots"},
		map[string]any{"max_spots": 20, "event_id": 4, "shift_num": 1})
	want := "UPDATE `shift` SET `event_id` = ?, `shift_num` = ?, `max_spots` = ? WHERE `shift_id` = ?"
	if stmt.Update != want {
		t.Errorf("update = %q, want %q", stmt.Update, want)
	}
	if stmt.Args[0] != 4 || stmt.Args[1] != 1 || stmt.Args[2] != 20 {
		t.Errorf("args out of whitelist order: %#v", stmt.Args)
	}
}

func TestBuildUpsertValuesNeverInText(t *testing.T) {
	stmt, _ := BuildUpsert("user", "user_id", 5,
		[]string{"first_name", "bio"},
		map[string]any{"first_name": "Robert'); DROP TABLE `user`;--", "bio": "hi"})
	for _, text := range []string{stmt.Update, stmt.Insert} {
		if strings.Contains(text, "Robert") || strings.Contains(text, "DROP TABLE") {
			t.Errorf("payload value leaked into statement text: %q", text)
		}
	}
}
