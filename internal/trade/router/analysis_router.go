package router

import (
	"log/slog"
	"net/http"

	"github.com/OpenNSW/landedcost/internal/trade/model"
	"github.com/OpenNSW/landedcost/internal/trade/service"
)

type AnalysisRouter struct {
	analyses *service.AnalysisService
}

func NewAnalysisRouter(analyses *service.AnalysisService) *AnalysisRouter {
	return &AnalysisRouter{analyses: analyses}
}

// HandleCreateAnalysis handles POST /api/analyses
func (ar *AnalysisRouter) HandleCreateAnalysis(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req model.CreateAnalysisDTO
	if err := bindJSON(w, r, &req); err != nil {
		writeServiceError(w, r, "create analysis", err)
		return
	}

	analysis, err := ar.analyses.Create(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, r, "create analysis", err)
		return
	}

	slog.InfoContext(r.Context(), "analysis created",
		"analysisID", analysis.ID,
		"userID", userID,
		"totalCost", analysis.TotalCost,
		"isEstimate", analysis.IsEstimate)
	writeJSON(w, http.StatusCreated, analysis)
}

// HandleGetAnalyses handles GET /api/analyses?offset={offset}&limit={limit}
func (ar *AnalysisRouter) HandleGetAnalyses(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	filter, err := parseListFilter(r)
	if err != nil {
		writeServiceError(w, r, "list analyses", err)
		return
	}

	analyses, err := ar.analyses.List(r.Context(), userID, filter)
	if err != nil {
		writeServiceError(w, r, "list analyses", err)
		return
	}
	writeJSON(w, http.StatusOK, analyses)
}

// HandleGetAnalysis handles GET /api/analyses/{id}
func (ar *AnalysisRouter) HandleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := parseID(r, "id")
	if err != nil {
		writeServiceError(w, r, "get analysis", err)
		return
	}

	analysis, err := ar.analyses.GetByID(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, r, "get analysis", err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

// HandleDeleteAnalysis handles DELETE /api/analyses/{id}
func (ar *AnalysisRouter) HandleDeleteAnalysis(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := parseID(r, "id")
	if err != nil {
		writeServiceError(w, r, "delete analysis", err)
		return
	}

	if err := ar.analyses.Delete(r.Context(), userID, id); err != nil {
		writeServiceError(w, r, "delete analysis", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleGetDrawback handles GET /api/analyses/{id}/drawback
func (ar *AnalysisRouter) HandleGetDrawback(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := parseID(r, "id")
	if err != nil {
		writeServiceError(w, r, "compute drawback", err)
		return
	}

	drawback, err := ar.analyses.Drawback(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, r, "compute drawback", err)
		return
	}
	writeJSON(w, http.StatusOK, drawback)
}
