package router

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/deppfellow/event-api/internal/config"
	"github.com/deppfellow/event-api/internal/database"
	"github.com/deppfellow/event-api/internal/errs"
	"github.com/deppfellow/event-api/internal/handler"
	"github.com/deppfellow/event-api/internal/model"
	"github.com/deppfellow/event-api/internal/repository"
	"github.com/deppfellow/event-api/internal/server"
	"github.com/deppfellow/event-api/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const insertEventSQL = `INSERT INTO "events" ("title","details","maximum_attendees","slug") VALUES ($1,$2,$3,$4) RETURNING "id"`

// slugArg matches a slug stamped within the test's lifetime.
type slugArg struct {
	after time.Time
}

func (a slugArg) Match(v driver.Value) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	stamped, err := time.Parse(model.SlugLayout, s)
	return err == nil && !stamped.Before(a.after.Truncate(time.Millisecond))
}

func newTestRouter(t *testing.T) (*echo.Echo, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	orm, err := database.OpenORM(sqlDB)
	require.NoError(t, err)

	logger := zerolog.Nop()
	cfg := config.DefaultConfig()
	cfg.Primary.Env = "test"

	s := &server.Server{Config: cfg, Logger: &logger, DB: &database.Database{ORM: orm}}

	repos := repository.NewRepositories(s)
	services := service.NewServices(s, repos)
	handlers := handler.NewHandlers(s, services)

	return NewRouter(s, handlers), mock
}

func do(r *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCreateEvent_NullOptionals(t *testing.T) {
	r, mock := newTestRouter(t)
	start := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(insertEventSQL)).
		WithArgs("Conf", nil, nil, slugArg{after: start}).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("4f1c2a7e-9a56-4c1b-8f5e-2d3b6a7c8d90"))

	rec := do(r, http.MethodPost, "/events", `{"title":"Conf","details":null,"maximumAttendees":null}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"eventID":"4f1c2a7e-9a56-4c1b-8f5e-2d3b6a7c8d90"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateEvent_RejectedWithoutWriting(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{name: "short title", body: `{"title":"Abc","details":"x","maximumAttendees":10}`, wantField: "title"},
		{name: "negative attendees", body: `{"title":"Workshop","details":"intro","maximumAttendees":-5}`, wantField: "maximumAttendees"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, mock := newTestRouter(t)

			rec := do(r, http.MethodPost, "/events", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body errs.HTTPError
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.Len(t, body.Errors, 1)
			assert.Equal(t, tt.wantField, body.Errors[0].Field)

			// No expectations were set: any INSERT would have failed this.
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCreateEvent_WholeNumberNotation(t *testing.T) {
	r, mock := newTestRouter(t)

	mock.ExpectQuery(regexp.QuoteMeta(insertEventSQL)).
		WithArgs("Workshop", nil, 10, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("id-1"))

	rec := do(r, http.MethodPost, "/events", `{"title":"Workshop","details":null,"maximumAttendees":1e1}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"eventID":"id-1"}`, rec.Body.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateEvent_IdenticalRequestsCreateTwoEvents(t *testing.T) {
	r, mock := newTestRouter(t)
	body := `{"title":"Workshop","details":"intro","maximumAttendees":10}`

	for _, id := range []string{"id-1", "id-2"} {
		mock.ExpectQuery(regexp.QuoteMeta(insertEventSQL)).
			WithArgs("Workshop", "intro", 10, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(id))
	}

	first := do(r, http.MethodPost, "/events", body)
	second := do(r, http.MethodPost, "/events", body)

	assert.JSONEq(t, `{"eventID":"id-1"}`, first.Body.String())
	assert.JSONEq(t, `{"eventID":"id-2"}`, second.Body.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateEvent_StorageUnavailable(t *testing.T) {
	r, mock := newTestRouter(t)

	mock.ExpectQuery(regexp.QuoteMeta(insertEventSQL)).
		WillReturnError(errors.New("connection reset by peer"))

	rec := do(r, http.MethodPost, "/events", `{"title":"Conf"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body errs.HTTPError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INTERNAL_SERVER_ERROR", body.Code)
}

func TestUnknownRoute(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := do(r, http.MethodGet, "/nope", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Route not found")
}

func TestStatus(t *testing.T) {
	r, mock := newTestRouter(t)
	mock.ExpectPing()

	rec := do(r, http.MethodGet, "/status", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
	require.NoError(t, mock.ExpectationsWereMet())
}
