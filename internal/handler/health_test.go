package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/deppfellow/event-api/internal/database"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckHealth(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		wantStatus int
		wantState  string
	}{
		{name: "healthy", wantStatus: http.StatusOK, wantState: "healthy"},
		{name: "database down", pingErr: errors.New("connection refused"), wantStatus: http.StatusServiceUnavailable, wantState: "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
			require.NoError(t, err)
			t.Cleanup(func() { _ = sqlDB.Close() })

			orm, err := database.OpenORM(sqlDB)
			require.NoError(t, err)

			s := newTestServer()
			s.DB = &database.Database{ORM: orm}

			mock.ExpectPing().WillReturnError(tt.pingErr)

			rec := httptest.NewRecorder()
			c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/status", nil), rec)

			require.NoError(t, NewHealthHandler(s).CheckHealth(c))
			assert.Equal(t, tt.wantStatus, rec.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantState, body["status"])
			assert.Equal(t, "test", body["environment"])

			checks := body["checks"].(map[string]any)
			assert.Equal(t, tt.wantState, checks["database"].(map[string]any)["status"])
			assert.NotContains(t, checks["database"], "error")
			assert.NotContains(t, rec.Body.String(), "connection refused")
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
