package api

import (
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertFAQWordsCreateAndUpdate(t *testing.T) {
	srv, mock := newTestServer(t)

	// Create path: update misses, insert runs.
	expectRole(mock, "exec@example.org", 3)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `faq` SET `question` = \\?, `answer` = \\? WHERE `faq_id` = \\?").
		WithArgs("Q", "A", int64(-1)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO `faq` \\(`question`, `answer`\\) VALUES \\(\\?, \\?\\)").
		WithArgs("Q", "A").
		WillReturnResult(sqlmock.NewResult(4, 1))
	mock.ExpectCommit()

	// Update path: update matches.
	expectRole(mock, "exec@example.org", 3)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `faq` SET `question` = \\? WHERE `faq_id` = \\?").
		WithArgs("Q2", int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	r := chi.NewRouter()
	r.Post("/faq", srv.secured(srv.upsertFAQ))
	r.Put("/faq/{id}", srv.secured(srv.upsertFAQ))

	rec, out := doJSON(t, r, http.MethodPost, "/faq",
		`{"question": "Q", "answer": "A"}`, "exec@example.org")
	require.Equal(t, http.StatusOK, rec.Code, "body: %v", out)
	assert.Equal(t, "Created FAQ successfully.", out["message"])

	rec, out = doJSON(t, r, http.MethodPut, "/faq/4",
		`{"question": "Q2"}`, "exec@example.org")
	require.Equal(t, http.StatusOK, rec.Code, "body: %v", out)
	assert.Equal(t, "Updated FAQ successfully.", out["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertFAQRejectsEmptyPayload(t *testing.T) {
	srv, mock := newTestServer(t)
	expectRole(mock, "exec@example.org", 3)

	r := chi.NewRouter()
	r.Post("/faq", srv.secured(srv.upsertFAQ))

	rec, out := doJSON(t, r, http.MethodPost, "/faq",
		`{"irrelevant": true}`, "exec@example.org")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No recognized fields to update.", out["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAllMailListsCollapsesMembers(t *testing.T) {
	srv, mock := newTestServer(t)

	mock.ExpectQuery("FROM `vw_user_mail_list`").
		WillReturnRows(sqlmock.NewRows([]string{
			"mail_list_id", "display_name", "description",
			"first_name", "last_name", "email",
		}).AddRow(1, "General", "Monthly updates", "Pat", "Test", "pat@example.org").
			AddRow(1, "General", "Monthly updates", "Sam", "Test", "sam@example.org").
			AddRow(2, "Execs", "Board only", "Pat", "Test", "pat@example.org"))

	r := chi.NewRouter()
	r.Get("/mail-list", srv.public(srv.getAllMailLists))

	rec, out := doJSON(t, r, http.MethodGet, "/mail-list", "", "")
	require.Equal(t, http.StatusOK, rec.Code, "body: %v", out)

	lists := out["data"].([]any)
	require.Len(t, lists, 2)
	general := lists[0].(map[string]any)
	assert.Equal(t, "General", general["display_name"])
	assert.Len(t, general["members"], 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMailListSignupProvisionsUnknownEmail(t *testing.T) {
	srv, mock := newTestServer(t)

	mock.ExpectExec("INSERT IGNORE INTO `user` \\(`email`\\) VALUES \\(\\?\\)").
		WithArgs("new@example.org").
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectExec("INSERT IGNORE INTO `user_mail_list`").
		WithArgs(int64(1), "new@example.org").
		WillReturnResult(sqlmock.NewResult(12, 1))

	r := chi.NewRouter()
	r.Post("/mail-list/signup/{id}", srv.public(srv.mailListSignup))

	rec, out := doJSON(t, r, http.MethodPost, "/mail-list/signup/1",
		`{"email": "new@example.org"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, "body: %v", out)
	assert.Equal(t, "Signed up for mail list successfully.", out["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMailListSignupRequiresEmail(t *testing.T) {
	srv, mock := newTestServer(t)

	r := chi.NewRouter()
	r.Post("/mail-list/signup/{id}", srv.public(srv.mailListSignup))

	rec, out := doJSON(t, r, http.MethodPost, "/mail-list/signup/1", `{}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No email provided.", out["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestShiftSignupRequiresShifts(t *testing.T) {
	srv, mock := newTestServer(t)

	mock.ExpectQuery("SELECT `user_id` FROM `user` WHERE `email` = \\?").
		WithArgs("vol@example.org").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(7))

	r := chi.NewRouter()
	r.Post("/signup", srv.securedSelf(srv.shiftSignup))

	rec, out := doJSON(t, r, http.MethodPost, "/signup",
		`{"shifts": []}`, "vol@example.org")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No shifts selected.", out["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestShiftSignupBulkInserts(t *testing.T) {
	srv, mock := newTestServer(t)

	mock.ExpectQuery("SELECT `user_id` FROM `user` WHERE `email` = \\?").
		WithArgs("vol@example.org").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(7))
	mock.ExpectExec("INSERT INTO `user_shift` \\(`user_id`, `shift_id`, `add_info`\\) VALUES \\(\\?, \\?, \\?\\), \\(\\?, \\?, \\?\\)").
		WillReturnResult(sqlmock.NewResult(30, 2))

	r := chi.NewRouter()
	r.Post("/signup", srv.securedSelf(srv.shiftSignup))

	rec, out := doJSON(t, r, http.MethodPost, "/signup",
		`{"shifts": [6, 7], "add_info": "vegetarian"}`, "vol@example.org")
	require.Equal(t, http.StatusOK, rec.Code, "body: %v", out)
	assert.Equal(t, "Signed up successfully.", out["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRandomHeaderRedirects(t *testing.T) {
	srv, mock := newTestServer(t)

	mock.ExpectQuery("SELECT `link` FROM `header` ORDER BY RAND\\(\\) LIMIT 1").
		WillReturnRows(sqlmock.NewRows([]string{"link"}).
			AddRow("https://cdn.test/header-images/fall.jpg"))

	r := chi.NewRouter()
	r.Get("/header/random", srv.public(srv.getRandomHeader))

	req := httptestNewRequest(t, http.MethodGet, "/header/random")
	rec := serveRaw(r, req)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://cdn.test/header-images/fall.jpg", rec.Header().Get("Location"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRandomHeaderEmptyTable(t *testing.T) {
	srv, mock := newTestServer(t)

	mock.ExpectQuery("SELECT `link` FROM `header` ORDER BY RAND\\(\\) LIMIT 1").
		WillReturnRows(sqlmock.NewRows([]string{"link"}))

	r := chi.NewRouter()
	r.Get("/header/random", srv.public(srv.getRandomHeader))

	req := httptestNewRequest(t, http.MethodGet, "/header/random")
	rec := serveRaw(r, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
