package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"orgstructure/internal/apperror"
	"orgstructure/internal/service"
)

type Handler struct {
	service service.Manager
	logger  *zap.Logger
}

func NewHandler(svc service.Manager, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		service: svc,
		logger:  logger,
	}
}

type RouterOptions struct {
	// Metrics is optional; when nil no instrumentation or scrape route is added.
	Metrics     *Metrics
	MetricsPath string
}

// NewRouter registers the API routes. Request ids and access logs are added by
// WithRequestLogging around the returned router, since mux middlewares skip
// unmatched requests.
func NewRouter(h *Handler, opts RouterOptions) *mux.Router {
	router := mux.NewRouter()
	var notFound, notAllowed http.Handler
	notFound = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "", "route not found")
	})
	notAllowed = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "", "method not allowed")
	})
	if opts.Metrics != nil {
		notFound = opts.Metrics.Middleware(notFound)
		notAllowed = opts.Metrics.Middleware(notAllowed)
	}
	router.NotFoundHandler = notFound
	router.MethodNotAllowedHandler = notAllowed

	router.HandleFunc("/healthcheck", healthcheck).Methods(http.MethodGet)
	if opts.Metrics != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.Handle(path, opts.Metrics.Handler()).Methods(http.MethodGet)
	}

	router.HandleFunc("/departments", h.handleCreateDepartment).Methods(http.MethodPost)
	router.HandleFunc("/departments/{id}", h.handleGetDepartment).Methods(http.MethodGet)
	router.HandleFunc("/departments/{id}", h.handleUpdateDepartment).Methods(http.MethodPatch)
	router.HandleFunc("/departments/{id}", h.handleDeleteDepartment).Methods(http.MethodDelete)
	router.HandleFunc("/departments/{id}/employees", h.handleCreateEmployee).Methods(http.MethodPost)
	router.HandleFunc("/employees/{id}", h.handleGetEmployee).Methods(http.MethodGet)

	if opts.Metrics != nil {
		router.Use(opts.Metrics.Middleware)
	}
	return router
}

func (h *Handler) handleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	var req createDepartmentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, apperror.CodeValidation, err.Error())
		return
	}

	department, err := h.service.CreateDepartment(r.Context(), service.CreateDepartmentInput{
		Name:     req.Name,
		ParentID: req.ParentID,
	})
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, department)
}

func (h *Handler) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	departmentID, ok := pathID(w, r, "invalid department id")
	if !ok {
		return
	}

	var req createEmployeeRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, apperror.CodeValidation, err.Error())
		return
	}

	hiredAt, err := parseDate(req.HiredAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, apperror.CodeValidation, err.Error())
		return
	}

	employee, err := h.service.CreateEmployee(r.Context(), departmentID, service.CreateEmployeeInput{
		FullName: req.FullName,
		Position: req.Position,
		HiredAt:  hiredAt,
	})
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, employee)
}

func (h *Handler) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := pathID(w, r, "invalid employee id")
	if !ok {
		return
	}

	employee, err := h.service.GetEmployee(r.Context(), employeeID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, employee)
}

func (h *Handler) handleGetDepartment(w http.ResponseWriter, r *http.Request) {
	departmentID, ok := pathID(w, r, "invalid department id")
	if !ok {
		return
	}

	options, err := parseGetDepartmentOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, apperror.CodeValidation, err.Error())
		return
	}

	response, err := h.service.GetDepartment(r.Context(), departmentID, options)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *Handler) handleUpdateDepartment(w http.ResponseWriter, r *http.Request) {
	departmentID, ok := pathID(w, r, "invalid department id")
	if !ok {
		return
	}

	var req updateDepartmentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, apperror.CodeValidation, err.Error())
		return
	}

	updatedDepartment, err := h.service.UpdateDepartment(r.Context(), departmentID, service.UpdateDepartmentInput{
		Name:        req.Name,
		ParentIDSet: req.ParentID.Set,
		ParentID:    req.ParentID.Value,
	})
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updatedDepartment)
}

func (h *Handler) handleDeleteDepartment(w http.ResponseWriter, r *http.Request) {
	departmentID, ok := pathID(w, r, "invalid department id")
	if !ok {
		return
	}

	query := r.URL.Query()
	mode := parseDeleteMode(query.Get("mode"))
	reassignToDepartmentID, err := parseOptionalReassignDepartmentID(query.Get("reassign_to_department_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, apperror.CodeValidation, err.Error())
		return
	}

	if err := h.service.DeleteDepartment(r.Context(), departmentID, mode, reassignToDepartmentID); err != nil {
		h.respondWithError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func pathID(w http.ResponseWriter, r *http.Request, message string) (uint, bool) {
	id, err := parseUintID(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, apperror.CodeValidation, message)
		return 0, false
	}
	return id, true
}

func (h *Handler) respondWithError(w http.ResponseWriter, err error) {
	code := apperror.GetCode(err)
	switch code {
	case apperror.CodeValidation, apperror.CodeInvariant:
		writeError(w, http.StatusBadRequest, code, err.Error())
	case apperror.CodeNotFound:
		writeError(w, http.StatusNotFound, code, err.Error())
	case apperror.CodeConflict:
		writeError(w, http.StatusConflict, code, err.Error())
	default:
		h.logger.Error("unexpected error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, apperror.CodeInternal, "internal server error")
	}
}

type errorResponse struct {
	Error string        `json:"error"`
	Code  apperror.Code `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code apperror.Code, message string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}
