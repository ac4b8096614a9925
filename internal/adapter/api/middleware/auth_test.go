package middleware

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/user/rtc-event-log/internal/domain/mocks"
)

func TestAuth(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		header         string
		value          string
		repoErr        error
		expectedStatus int
	}{
		{
			name:           "Valid Key In Header",
			header:         APIKeyHeader,
			value:          "good-key",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Valid Key As Bearer Token",
			header:         "Authorization",
			value:          "Bearer good-key",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Missing Key",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Invalid Key",
			header:         APIKeyHeader,
			value:          "bad-key",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Repository Error",
			header:         APIKeyHeader,
			value:          "good-key",
			repoErr:        errors.New("db unreachable"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mocks.MockAPIKeyRepository{
				ValidKeys: map[string]bool{"good-key": true},
				Err:       tt.repoErr,
			}

			var reachedNext bool
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				reachedNext = true
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/events", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rr := httptest.NewRecorder()

			Auth(repo, logger)(next).ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, rr.Code)
			}
			if wantNext := tt.expectedStatus == http.StatusOK; reachedNext != wantNext {
				t.Errorf("next handler reached = %v, want %v", reachedNext, wantNext)
			}
		})
	}
}
