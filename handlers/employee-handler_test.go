package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestListEmployees_EmployeeForbidden(t *testing.T) {
	h := NewEmployeeHandler(nil)

	rec := httptest.NewRecorder()
	h.ListEmployees(rec, requestAs(t, http.MethodGet, "/api/employees", "", "employee"))

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestEmployeeStats_EmployeeForbidden(t *testing.T) {
	h := NewEmployeeHandler(nil)

	rec := httptest.NewRecorder()
	h.GetEmployeeStats(rec, requestAs(t, http.MethodGet, "/api/employees/stats/overview", "", "employee"))

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestCreateEmployee_ValidationFailure(t *testing.T) {
	h := NewEmployeeHandler(nil)

	// Password below the minimum length.
	body := `{"name":"Ana","email":"ana@example.com","password":"short"}`
	rec := httptest.NewRecorder()
	h.CreateEmployee(rec, requestAs(t, http.MethodPost, "/api/employees", body, "admin"))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestUpdateEmployee_InvalidID(t *testing.T) {
	h := NewEmployeeHandler(nil)

	rec := httptest.NewRecorder()
	h.UpdateEmployee(rec, requestAs(t, http.MethodPut, "/api/employees/nope", "", "admin"))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestDeleteEmployee_NoClaims(t *testing.T) {
	h := NewEmployeeHandler(nil)

	rec := httptest.NewRecorder()
	h.DeleteEmployee(rec, httptest.NewRequest(http.MethodDelete, "/api/employees/abc", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
