package respond

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	JSON(rr, http.StatusOK, map[string]int{"total": 3})

	if rr.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("unexpected content type %q", ct)
	}
	if !strings.Contains(rr.Body.String(), `"total":3`) {
		t.Errorf("unexpected body %q", rr.Body.String())
	}
}

func TestJSON_NilBody(t *testing.T) {
	rr := httptest.NewRecorder()
	JSON(rr, http.StatusNoContent, nil)

	if rr.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", rr.Body.String())
	}
}

func TestError(t *testing.T) {
	rr := httptest.NewRecorder()
	Error(rr, http.StatusBadRequest, errors.New("invalid date"))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "invalid date") {
		t.Errorf("unexpected body %q", rr.Body.String())
	}
}

func TestSafeError_PassesValidationMessages(t *testing.T) {
	rr := httptest.NewRecorder()
	SafeError(rr, http.StatusBadRequest, errors.New("start_date is required"))

	if !strings.Contains(rr.Body.String(), "start_date is required") {
		t.Errorf("validation message should pass through, got %q", rr.Body.String())
	}
}

func TestSafeError_MasksInternalDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	SafeError(rr, http.StatusInternalServerError, errors.New("dial tcp 10.0.0.3:5432: connection refused"))

	body := rr.Body.String()
	if strings.Contains(body, "10.0.0.3") {
		t.Errorf("internal detail leaked: %q", body)
	}
	if !strings.Contains(body, "internal server error") {
		t.Errorf("expected generic message, got %q", body)
	}
}

func TestSafeError_500NeverEchoes(t *testing.T) {
	rr := httptest.NewRecorder()
	SafeError(rr, http.StatusInternalServerError, errors.New("token is invalid"))

	if strings.Contains(rr.Body.String(), "token") {
		t.Errorf("5xx must not echo the error, got %q", rr.Body.String())
	}
}

func TestSafeError_NilError(t *testing.T) {
	rr := httptest.NewRecorder()
	SafeError(rr, http.StatusInternalServerError, nil)

	if rr.Body.Len() != 0 {
		t.Errorf("expected no body for nil error, got %q", rr.Body.String())
	}
}
