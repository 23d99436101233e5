package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/viratpk18/Employee-Task-Manager-BE/middleware"
	"github.com/viratpk18/Employee-Task-Manager-BE/services"
	"github.com/viratpk18/Employee-Task-Manager-BE/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func requestAs(t *testing.T, method, target, body, role string) *http.Request {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	claims := &utils.Claims{UserID: primitive.NewObjectID().Hex(), Email: "caller@example.com", Role: role}
	return req.WithContext(middleware.WithClaims(req.Context(), claims))
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	return body
}

// TestCreateTask_EmployeeForbidden verifies the role gate rejects non-admin
// callers before any payload handling.
func TestCreateTask_EmployeeForbidden(t *testing.T) {
	h := NewTaskHandler(nil)

	rec := httptest.NewRecorder()
	h.CreateTask(rec, requestAs(t, http.MethodPost, "/api/tasks", `{"title":"x"}`, "employee"))

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
	if body := decodeEnvelope(t, rec); body["success"] != false {
		t.Errorf("success = %v, want false", body["success"])
	}
}

func TestDeleteTask_EmployeeForbidden(t *testing.T) {
	h := NewTaskHandler(nil)

	rec := httptest.NewRecorder()
	h.DeleteTask(rec, requestAs(t, http.MethodDelete, "/api/tasks/abc", "", "employee"))

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

// TestListTasks_NoClaims verifies a request that somehow lacks context claims
// is treated as unauthenticated.
func TestListTasks_NoClaims(t *testing.T) {
	h := NewTaskHandler(nil)

	rec := httptest.NewRecorder()
	h.ListTasks(rec, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestGetTask_InvalidID(t *testing.T) {
	h := NewTaskHandler(nil)

	req := requestAs(t, http.MethodGet, "/api/tasks/not-hex", "", "admin")
	rec := httptest.NewRecorder()
	h.GetTask(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestCreateTask_InvalidPriority(t *testing.T) {
	h := NewTaskHandler(nil)

	body := `{"title":"x","assignedTo":"6565a0000000000000000001","deadline":"2024-06-01T00:00:00Z","priority":"extreme"}`
	rec := httptest.NewRecorder()
	h.CreateTask(rec, requestAs(t, http.MethodPost, "/api/tasks", body, "admin"))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestWriteServiceErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{services.ErrNotFound, http.StatusNotFound},
		{services.ErrForbidden, http.StatusForbidden},
		{&services.ValidationError{Message: "bad input"}, http.StatusBadRequest},
		{errors.New("mongo exploded"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		writeServiceError(rec, tt.err)
		if rec.Code != tt.want {
			t.Errorf("writeServiceError(%v) status = %d, want %d", tt.err, rec.Code, tt.want)
		}
	}
}

// TestWriteServiceError_HidesInternals verifies unexpected errors never leak
// their cause into the response body.
func TestWriteServiceError_HidesInternals(t *testing.T) {
	rec := httptest.NewRecorder()
	writeServiceError(rec, errors.New("connection string mongodb://secret"))

	if strings.Contains(rec.Body.String(), "mongodb://secret") {
		t.Error("internal error detail leaked into the response body")
	}
}
