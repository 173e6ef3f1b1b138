package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/volunteerpeel/vp-api/internal/auth"
)

// stubStore satisfies blob.Store without touching disk.
type stubStore struct {
	putURL string
}

func (s stubStore) Put(ctx context.Context, container, name string, r io.Reader) (string, error) {
	if s.putURL != "" {
		return s.putURL, nil
	}
	return "https://cdn.test/" + container + "/" + name, nil
}

func (s stubStore) DeleteIfExists(ctx context.Context, container, name string) (bool, error) {
	return true, nil
}

// newTestServer wires a Server around a sqlmock pool.
func newTestServer(t *testing.T) (*Server, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(sqlx.NewDb(db, "sqlmock"), stubStore{}, zap.NewNop().Sugar()), mock
}

// asIdentity attaches verified claims to the request.
func asIdentity(r *http.Request, email string) *http.Request {
	return r.WithContext(auth.WithIdentity(r.Context(), auth.Identity{
		Email:      email,
		GivenName:  "Test",
		FamilyName: "User",
	}))
}

// doJSON runs one request through the given router and decodes the
// envelope.
func doJSON(t *testing.T, h http.Handler, method, target, body string, email string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if email != "" {
		req = asIdentity(req, email)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return rec, out
}

// httptestNewRequest builds a bare request for endpoints that answer
// outside the JSON envelope.
func httptestNewRequest(t *testing.T, method, target string) *http.Request {
	t.Helper()
	return httptest.NewRequest(method, target, nil)
}

// serveRaw runs one request and returns the raw recorder.
func serveRaw(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// expectRole queues the role lookup the secured gate performs.
func expectRole(mock sqlmock.Sqlmock, email string, role int) {
	mock.ExpectQuery("SELECT `role_id` FROM `user` WHERE `email` = \\? LIMIT 1").
		WithArgs(email).
		WillReturnRows(sqlmock.NewRows([]string{"role_id"}).AddRow(role))
}
