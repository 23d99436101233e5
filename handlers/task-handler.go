package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/viratpk18/Employee-Task-Manager-BE/models"
	"github.com/viratpk18/Employee-Task-Manager-BE/services"
	"github.com/viratpk18/Employee-Task-Manager-BE/utils"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskHandler struct {
	service *services.TaskService
}

func NewTaskHandler(service *services.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	c, ok := requireCaller(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	filters := services.TaskFilters{
		Status:     query.Get("status"),
		Priority:   query.Get("priority"),
		AssignedTo: query.Get("assignedTo"),
		Search:     query.Get("search"),
		Page:       queryInt(r, "page"),
		Limit:      queryInt(r, "limit"),
	}

	page, err := h.service.ListTasks(r.Context(), c.ID, c.Role, filters)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteList(w, len(page.Tasks), page.Total, page.Pages, page.CurrentPage, page.Tasks)
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	c, ok := requireCaller(w, r)
	if !ok {
		return
	}

	taskID, err := pathObjectID(mux.Vars(r), "id")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid task ID format")
		return
	}

	task, err := h.service.GetTask(r.Context(), taskID, c.ID, c.Role)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, "", task)
}

type createTaskRequest struct {
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description"`
	AssignedTo  string     `json:"assignedTo" validate:"required"`
	Priority    string     `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Deadline    time.Time  `json:"deadline" validate:"required"`
	StartDate   *time.Time `json:"startDate"`
	Tags        []string   `json:"tags"`
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	c, ok := requireAdmin(w, r)
	if !ok {
		return
	}

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.Validate.Struct(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	assignedTo, err := primitive.ObjectIDFromHex(req.AssignedTo)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid assignedTo ID format")
		return
	}

	task, err := h.service.CreateTask(r.Context(), c.ID, services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  assignedTo,
		Priority:    models.TaskPriority(req.Priority),
		Deadline:    req.Deadline,
		StartDate:   req.StartDate,
		Tags:        req.Tags,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusCreated, "Task created successfully", task)
}

type updateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	AssignedTo  *string    `json:"assignedTo"`
	Priority    *string    `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Status      *string    `json:"status" validate:"omitempty,oneof=pending in-progress completed cancelled"`
	StartDate   *time.Time `json:"startDate"`
	Deadline    *time.Time `json:"deadline"`
	Tags        *[]string  `json:"tags"`
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	c, ok := requireCaller(w, r)
	if !ok {
		return
	}

	taskID, err := pathObjectID(mux.Vars(r), "id")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid task ID format")
		return
	}

	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.Validate.Struct(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	upd := services.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   req.StartDate,
		Deadline:    req.Deadline,
		Tags:        req.Tags,
	}
	if req.AssignedTo != nil {
		assignedTo, err := primitive.ObjectIDFromHex(*req.AssignedTo)
		if err != nil {
			utils.WriteError(w, http.StatusBadRequest, "Invalid assignedTo ID format")
			return
		}
		upd.AssignedTo = &assignedTo
	}
	if req.Priority != nil {
		priority := models.TaskPriority(*req.Priority)
		upd.Priority = &priority
	}
	if req.Status != nil {
		status := models.TaskStatus(*req.Status)
		upd.Status = &status
	}

	task, err := h.service.UpdateTask(r.Context(), taskID, c.ID, c.Role, upd)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, "Task updated successfully", task)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	taskID, err := pathObjectID(mux.Vars(r), "id")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid task ID format")
		return
	}

	if err := h.service.DeleteTask(r.Context(), taskID); err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, "Task deleted successfully", nil)
}

type addCommentRequest struct {
	Text string `json:"text" validate:"required"`
}

// AddComment appends a comment as the caller. Any authenticated user may
// comment on any task.
// TODO: restrict to the assignee and admins once the product decision lands.
func (h *TaskHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	c, ok := requireCaller(w, r)
	if !ok {
		return
	}

	taskID, err := pathObjectID(mux.Vars(r), "id")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid task ID format")
		return
	}

	var req addCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.Validate.Struct(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	comment, err := h.service.AddComment(r.Context(), taskID, c.ID, req.Text)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusCreated, "Comment added successfully", comment)
}

func (h *TaskHandler) GetTaskStats(w http.ResponseWriter, r *http.Request) {
	c, ok := requireCaller(w, r)
	if !ok {
		return
	}

	stats, err := h.service.GetTaskStats(r.Context(), c.ID, c.Role)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, "", stats)
}

func (h *TaskHandler) GetCalendarTasks(w http.ResponseWriter, r *http.Request) {
	c, ok := requireCaller(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	tasks, err := h.service.CalendarTasks(r.Context(), c.ID, c.Role, query.Get("startDate"), query.Get("endDate"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, "", tasks)
}
