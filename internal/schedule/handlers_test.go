package schedule

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daritana-backend/internal/auth"
)

// A minimal driver backing the handler tests: every UPDATE ...
// RETURNING yields one fixed stored row, every other statement
// succeeds with no rows. Enough to exercise the HTTP layer without a
// live PostgreSQL.

var (
	storedProjectID = "p-305"
	storedCreatedAt = time.Date(2026, time.January, 15, 8, 0, 0, 0, time.UTC)
)

type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) { return &stubConn{}, nil }

type stubConn struct{}

func (*stubConn) Prepare(query string) (driver.Stmt, error) { return &stubStmt{query: query}, nil }
func (*stubConn) Close() error                              { return nil }
func (*stubConn) Begin() (driver.Tx, error)                 { return nil, driver.ErrSkip }

type stubStmt struct{ query string }

func (*stubStmt) Close() error  { return nil }
func (*stubStmt) NumInput() int { return -1 }

func (*stubStmt) Exec([]driver.Value) (driver.Result, error) {
	return driver.RowsAffected(1), nil
}

func (s *stubStmt) Query([]driver.Value) (driver.Rows, error) {
	if strings.Contains(s.query, "RETURNING project_id, created_at") {
		return &stubRows{
			cols: []string{"project_id", "created_at"},
			vals: [][]driver.Value{{storedProjectID, storedCreatedAt}},
		}, nil
	}
	return &stubRows{}, nil
}

type stubRows struct {
	cols []string
	vals [][]driver.Value
	i    int
}

func (r *stubRows) Columns() []string { return r.cols }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.i >= len(r.vals) {
		return io.EOF
	}
	copy(dest, r.vals[r.i])
	r.i++
	return nil
}

func init() {
	sql.Register("schedulestub", stubDriver{})
}

func openStubDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("schedulestub", "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func authedRequest(t *testing.T, secret []byte, method, target string, body string) *http.Request {
	t.Helper()
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	token, err := auth.GenerateToken(secret, 1, 7)
	require.NoError(t, err)
	r.Header.Set("Authorization", "Bearer "+token)
	r.Header.Set("Content-Type", "application/json")
	return r
}

func TestUpdateTimelineHandler_EchoesStoredRow(t *testing.T) {
	dbx := openStubDB(t)
	store := NewStore(dbx)
	secret := []byte("test-secret")

	handler := auth.New(secret).Wrap(UpdateTimelineHandler(dbx, store))

	// The client sends a spoofed project_id and no created_at; the
	// response must carry the stored values, not the request's.
	body := `{
		"id": "t-1",
		"project_id": "spoofed",
		"name": "Structural frame",
		"start_date": "2026-03-02T00:00:00Z",
		"end_date": "2026-03-09T00:00:00Z"
	}`
	w := httptest.NewRecorder()
	handler(w, authedRequest(t, secret, http.MethodPut, "/timelines", body))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got TimelineTask
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "t-1", got.ID)
	assert.Equal(t, storedProjectID, got.ProjectID)
	assert.Equal(t, storedCreatedAt, got.CreatedAt.UTC())
}

func TestUpdateTimelineHandler_RejectsMissingToken(t *testing.T) {
	dbx := openStubDB(t)
	store := NewStore(dbx)

	handler := auth.New([]byte("test-secret")).Wrap(UpdateTimelineHandler(dbx, store))

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodPut, "/timelines", strings.NewReader("{}")))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
