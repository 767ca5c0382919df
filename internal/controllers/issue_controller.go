package controllers

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/dtos"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/models"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/repositories"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/services"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

type IssueController struct {
	issues      *services.IssueService
	technicians *services.TechnicianService
	validate    *validator.Validate
}

func NewIssueController(issues *services.IssueService, technicians *services.TechnicianService) *IssueController {
	return &IssueController{issues: issues, technicians: technicians, validate: NewValidator()}
}

// POST /api/v1/issues
func (c *IssueController) CreateIssueHandler(w http.ResponseWriter, r *http.Request) {
	tenantID, err := getUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	var req dtos.CreateIssueRequest
	if !decodeAndValidate(w, r, c.validate, &req) {
		return
	}
	issue, err := c.issues.Create(r.Context(), tenantID, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, issue)
}

// GET /api/v1/issues/me
func (c *IssueController) ListMyIssuesHandler(w http.ResponseWriter, r *http.Request) {
	tenantID, err := getUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	list, err := c.issues.ListForTenant(r.Context(), tenantID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// GET /api/v1/issues?status=
func (c *IssueController) ListIssuesHandler(w http.ResponseWriter, r *http.Request) {
	var status *models.IssueStatus
	if s := r.URL.Query().Get("status"); s != "" {
		st := models.IssueStatus(s)
		status = &st
	}
	list, err := c.issues.List(r.Context(), status)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// POST /api/v1/issues/{id}/assign
func (c *IssueController) AssignIssueHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "AssignIssueHandler")

	adminID, err := getUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	issueID, err := pathUUID(r, "id")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	var req dtos.AssignIssueRequest
	if !decodeAndValidate(w, r, c.validate, &req) {
		return
	}

	issue, err := c.issues.Assign(r.Context(), adminID, issueID, req.TechnicianID)
	if err != nil {
		logger.WithError(err).Warn("Assignment refused")
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, issue)
}

// POST /api/v1/issues/{id}/resolve
func (c *IssueController) ResolveIssueHandler(w http.ResponseWriter, r *http.Request) {
	adminID, err := getUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	issueID, err := pathUUID(r, "id")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	issue, err := c.issues.Resolve(r.Context(), adminID, issueID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, issue)
}

// POST /api/v1/technicians
func (c *IssueController) CreateTechnicianHandler(w http.ResponseWriter, r *http.Request) {
	adminID, err := getUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	var req dtos.CreateTechnicianRequest
	if !decodeAndValidate(w, r, c.validate, &req) {
		return
	}
	tech, err := c.technicians.Create(r.Context(), adminID, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, tech)
}

// GET /api/v1/technicians?specialty=&status=
func (c *IssueController) ListTechniciansHandler(w http.ResponseWriter, r *http.Request) {
	var filter repositories.TechnicianFilter
	q := r.URL.Query()
	if s := q.Get("specialty"); s != "" {
		cat := models.IssueCategory(s)
		filter.Specialty = &cat
	}
	if s := q.Get("status"); s != "" {
		st := models.AssignmentStatus(s)
		filter.Status = &st
	}
	list, err := c.technicians.List(r.Context(), filter)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// DELETE /api/v1/technicians/{id}
func (c *IssueController) DeleteTechnicianHandler(w http.ResponseWriter, r *http.Request) {
	adminID, err := getUserID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	if err := c.technicians.Delete(r.Context(), adminID, id); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
