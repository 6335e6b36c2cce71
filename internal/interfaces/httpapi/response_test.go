package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/mlb-predictions/internal/usecase"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()

	var body errorBody
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	return body
}

func TestWriteError_InvalidInput(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("%w: date must be YYYY-MM-DD", usecase.ErrInvalidInput))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	body := decodeError(t, rec)
	if body.Status != "INVALID_ARGUMENT" || body.Error == "" {
		t.Fatalf("unexpected error body: %+v", body)
	}
}

func TestWriteError_StatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "not found", err: fmt.Errorf("%w: game=1", usecase.ErrNotFound), want: http.StatusNotFound},
		{name: "dependency", err: fmt.Errorf("%w: circuit open", usecase.ErrDependencyUnavailable), want: http.StatusServiceUnavailable},
		{name: "unexpected", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(context.Background(), rec, tt.err)
			if rec.Code != tt.want {
				t.Fatalf("expected status %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestWriteError_InternalCarriesMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, errors.New("get games for 2025-04-16: context canceled"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
	body := decodeError(t, rec)
	if body.Error != "get games for 2025-04-16: context canceled" || body.Status != "INTERNAL" {
		t.Fatalf("unexpected error body: %+v", body)
	}
}

func TestWriteInternalError_GenericMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	writeInternalError(context.Background(), rec)

	if body := decodeError(t, rec); body.Error != internalErrorMessage {
		t.Fatalf("expected generic message, got %q", body.Error)
	}
}

func TestWriteErrorMessage_FixedText(t *testing.T) {
	rec := httptest.NewRecorder()
	writeErrorMessage(context.Background(), rec, fmt.Errorf("%w: bad type", usecase.ErrInvalidInput), invalidPredictionTypeMessage)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	if body := decodeError(t, rec); body.Error != "Invalid prediction type" {
		t.Fatalf("unexpected message %q", body.Error)
	}
}
