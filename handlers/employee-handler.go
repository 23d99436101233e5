package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/viratpk18/Employee-Task-Manager-BE/services"
	"github.com/viratpk18/Employee-Task-Manager-BE/utils"

	"github.com/gorilla/mux"
)

type EmployeeHandler struct {
	service *services.EmployeeService
}

func NewEmployeeHandler(service *services.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{service: service}
}

func (h *EmployeeHandler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	query := r.URL.Query()
	filters := services.EmployeeFilters{
		Search:     query.Get("search"),
		Department: query.Get("department"),
		Page:       queryInt(r, "page"),
		Limit:      queryInt(r, "limit"),
	}

	page, err := h.service.ListEmployees(r.Context(), filters)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteList(w, len(page.Employees), page.Total, page.Pages, page.CurrentPage, page.Employees)
}

func (h *EmployeeHandler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireCaller(w, r); !ok {
		return
	}

	userID, err := pathObjectID(mux.Vars(r), "id")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid employee ID format")
		return
	}

	detail, err := h.service.GetEmployee(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, "", detail)
}

type createEmployeeRequest struct {
	Name       string   `json:"name" validate:"required"`
	Email      string   `json:"email" validate:"required,email"`
	Password   string   `json:"password" validate:"required,min=8"`
	Department string   `json:"department"`
	Position   string   `json:"position"`
	Phone      string   `json:"phone"`
	Address    string   `json:"address"`
	Skills     []string `json:"skills"`
}

func (h *EmployeeHandler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	var req createEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.Validate.Struct(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	detail, err := h.service.CreateEmployee(r.Context(), services.CreateEmployeeInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Department: req.Department,
		Position:   req.Position,
		Phone:      req.Phone,
		Address:    req.Address,
		Skills:     req.Skills,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusCreated, "Employee created successfully", detail)
}

type updateEmployeeRequest struct {
	Name       *string `json:"name"`
	Department *string `json:"department"`
	IsActive   *bool   `json:"isActive"`

	Position          *string   `json:"position"`
	Phone             *string   `json:"phone"`
	Address           *string   `json:"address"`
	Skills            *[]string `json:"skills"`
	PerformanceRating *float64  `json:"performanceRating" validate:"omitempty,gte=0,lte=5"`
}

func (h *EmployeeHandler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	userID, err := pathObjectID(mux.Vars(r), "id")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid employee ID format")
		return
	}

	var req updateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.Validate.Struct(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	detail, err := h.service.UpdateEmployee(r.Context(), userID, services.EmployeeUpdate{
		Name:              req.Name,
		Department:        req.Department,
		IsActive:          req.IsActive,
		Position:          req.Position,
		Phone:             req.Phone,
		Address:           req.Address,
		Skills:            req.Skills,
		PerformanceRating: req.PerformanceRating,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, "Employee updated successfully", detail)
}

func (h *EmployeeHandler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	userID, err := pathObjectID(mux.Vars(r), "id")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid employee ID format")
		return
	}

	if err := h.service.DeleteEmployee(r.Context(), userID); err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, "Employee deleted successfully", nil)
}

func (h *EmployeeHandler) GetEmployeeStats(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	stats, err := h.service.GetEmployeeStats(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, "", stats)
}
