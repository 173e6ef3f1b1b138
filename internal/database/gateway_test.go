// internal/database/gateway_test.go
//
// Unit-tests for the Gateway using sqlmock.
//
// Run: go test ./internal/database -v

package database

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

var errDuplicate = errors.New("Error 1062 (23000): Duplicate entry")

func newMockGateway(t *testing.T) (*Gateway, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewGateway(sqlx.NewDb(db, "sqlmock")), mock
}

func TestUpsertUpdatePath(t *testing.T) {
	gw, mock := newMockGateway(t)
	stmt, _ := BuildUpsert("faq", "faq_id", 7,
		[]string{"question", "answer"},
		map[string]any{"question": "Q?", "answer": "A."})

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(stmt.Update)).
		WithArgs("Q?", "A.", 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	id, err := gw.Upsert(context.Background(), stmt)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if id != nil {
		t.Fatalf("update path must return nil id, got %d", *id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestUpsertInsertFallback(t *testing.T) {
	gw, mock := newMockGateway(t)
	stmt, _ := BuildUpsert("faq", "faq_id", -1,
		[]string{"question"},
		map[string]any{"question": "Q?"})

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(stmt.Update)).
		WithArgs("Q?", -1).
		WillReturnResult(sqlmock.NewResult(0, 0)) // no row updated
	mock.ExpectExec(regexp.QuoteMeta(stmt.Insert)).
		WithArgs("Q?").
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectCommit()

	id, err := gw.Upsert(context.Background(), stmt)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if id == nil || *id != 42 {
		t.Fatalf("expected generated id 42, got %v", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestUpsertRollsBackOnInsertError(t *testing.T) {
	gw, mock := newMockGateway(t)
	stmt, _ := BuildUpsert("faq", "faq_id", -1,
		[]string{"question"},
		map[string]any{"question": "Q?"})

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(stmt.Update)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(stmt.Insert)).
		WillReturnError(errDuplicate)
	mock.ExpectRollback()

	if _, err := gw.Upsert(context.Background(), stmt); err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestScalarNoRows(t *testing.T) {
	gw, mock := newMockGateway(t)
	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

	v, err := gw.Scalar(context.Background(), "SELECT `user_id` FROM `user` WHERE `email` = ?", "nobody@example.org")
	if err != nil {
		t.Fatalf("scalar: %v", err)
	}
	if v != nil {
		t.Fatalf("expected nil for empty result, got %v", v)
	}
}

func TestRoleOfUnknownEmailIsNone(t *testing.T) {
	gw, mock := newMockGateway(t)
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT `role_id` FROM `user` WHERE `email` = ? LIMIT 1")).
		WithArgs("nobody@example.org").
		WillReturnRows(sqlmock.NewRows([]string{"role_id"}))

	role, err := gw.RoleOf(context.Background(), "nobody@example.org")
	if err != nil {
		t.Fatalf("roleOf: %v", err)
	}
	if role.String() != "none" {
		t.Fatalf("expected none, got %v", role)
	}
}

func TestQueryNormalizesBytes(t *testing.T) {
	gw, mock := newMockGateway(t)
	mock.ExpectQuery("SELECT").WillReturnRows(
		sqlmock.NewRows([]string{"faq_id", "question"}).
			AddRow(int64(1), []byte("Where?")))

	rows, err := gw.Query(context.Background(), "SELECT `faq_id`, `question` FROM `faq`")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0]["question"] != "Where?" {
		t.Fatalf("[]byte column not normalized: %#v", rows[0]["question"])
	}
}
