package router

import (
	"net/http"

	"github.com/OpenNSW/landedcost/internal/trade/model"
	"github.com/OpenNSW/landedcost/internal/trade/service"
)

type ComplianceRouter struct {
	requirements *service.ComplianceService
}

func NewComplianceRouter(requirements *service.ComplianceService) *ComplianceRouter {
	return &ComplianceRouter{requirements: requirements}
}

// HandleCreateRequirement handles POST /api/compliance-requirements
func (cr *ComplianceRouter) HandleCreateRequirement(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req model.ComplianceRequirementDTO
	if err := bindJSON(w, r, &req); err != nil {
		writeServiceError(w, r, "create compliance requirement", err)
		return
	}

	requirement, err := cr.requirements.Create(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, r, "create compliance requirement", err)
		return
	}
	writeJSON(w, http.StatusCreated, requirement)
}

// HandleGetRequirements handles GET /api/compliance-requirements
// Optional Query Filters: hsCode, country, offset, limit
func (cr *ComplianceRouter) HandleGetRequirements(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	page, err := parseListFilter(r)
	if err != nil {
		writeServiceError(w, r, "list compliance requirements", err)
		return
	}
	filter := model.ComplianceFilter{ListFilter: page}
	if hsCode := r.URL.Query().Get("hsCode"); hsCode != "" {
		filter.HSCode = &hsCode
	}
	if country := r.URL.Query().Get("country"); country != "" {
		filter.Country = &country
	}

	requirements, err := cr.requirements.List(r.Context(), userID, filter)
	if err != nil {
		writeServiceError(w, r, "list compliance requirements", err)
		return
	}
	writeJSON(w, http.StatusOK, requirements)
}

// HandleGetRequirement handles GET /api/compliance-requirements/{id}
func (cr *ComplianceRouter) HandleGetRequirement(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := parseID(r, "id")
	if err != nil {
		writeServiceError(w, r, "get compliance requirement", err)
		return
	}

	requirement, err := cr.requirements.GetByID(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, r, "get compliance requirement", err)
		return
	}
	writeJSON(w, http.StatusOK, requirement)
}

// HandleUpdateRequirement handles PUT /api/compliance-requirements/{id}
func (cr *ComplianceRouter) HandleUpdateRequirement(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := parseID(r, "id")
	if err != nil {
		writeServiceError(w, r, "update compliance requirement", err)
		return
	}
	var req model.ComplianceRequirementDTO
	if err := bindJSON(w, r, &req); err != nil {
		writeServiceError(w, r, "update compliance requirement", err)
		return
	}

	requirement, err := cr.requirements.Update(r.Context(), userID, id, &req)
	if err != nil {
		writeServiceError(w, r, "update compliance requirement", err)
		return
	}
	writeJSON(w, http.StatusOK, requirement)
}

// HandleDeleteRequirement handles DELETE /api/compliance-requirements/{id}
func (cr *ComplianceRouter) HandleDeleteRequirement(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := parseID(r, "id")
	if err != nil {
		writeServiceError(w, r, "delete compliance requirement", err)
		return
	}

	if err := cr.requirements.Delete(r.Context(), userID, id); err != nil {
		writeServiceError(w, r, "delete compliance requirement", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
