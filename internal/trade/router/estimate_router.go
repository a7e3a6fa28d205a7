package router

import (
	"net/http"

	"github.com/OpenNSW/landedcost/internal/trade/model"
	"github.com/OpenNSW/landedcost/internal/trade/service"
)

// EstimateRouter serves the public, unsaved estimate endpoints.
type EstimateRouter struct {
	analyses *service.AnalysisService
	hsCodes  *service.HSCodeService
	tariffs  *service.TariffService
}

func NewEstimateRouter(analyses *service.AnalysisService, hsCodes *service.HSCodeService, tariffs *service.TariffService) *EstimateRouter {
	return &EstimateRouter{analyses: analyses, hsCodes: hsCodes, tariffs: tariffs}
}

// HandleGetHSCodes handles GET /api/hscodes
// Optional Query Filters: hsCodeStartsWith, category, offset, limit
func (er *EstimateRouter) HandleGetHSCodes(w http.ResponseWriter, r *http.Request) {
	page, err := parseListFilter(r)
	if err != nil {
		writeServiceError(w, r, "list hs codes", err)
		return
	}
	filter := model.HSCodeFilter{ListFilter: page}
	if hsCodeStartsWith := r.URL.Query().Get("hsCodeStartsWith"); hsCodeStartsWith != "" {
		filter.HSCodeStartsWith = &hsCodeStartsWith
	}
	if category := r.URL.Query().Get("category"); category != "" {
		filter.Category = &category
	}

	hsCodes, err := er.hsCodes.GetAllHSCodes(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, "list hs codes", err)
		return
	}
	writeJSON(w, http.StatusOK, hsCodes)
}

// HandleGetRates handles GET /api/rates and returns the active rate table.
func (er *EstimateRouter) HandleGetRates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, er.analyses.Estimator().Table())
}

// HandleEstimate handles POST /api/estimate
func (er *EstimateRouter) HandleEstimate(w http.ResponseWriter, r *http.Request) {
	var req model.ShipmentDTO
	if err := bindJSON(w, r, &req); err != nil {
		writeServiceError(w, r, "estimate landed cost", err)
		return
	}

	result, err := er.analyses.Estimate(r.Context(), req.ToInput())
	if err != nil {
		writeServiceError(w, r, "estimate landed cost", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleCompare handles POST /api/estimate/compare
func (er *EstimateRouter) HandleCompare(w http.ResponseWriter, r *http.Request) {
	var req model.ShipmentDTO
	if err := bindJSON(w, r, &req); err != nil {
		writeServiceError(w, r, "compare shipping methods", err)
		return
	}

	comparisons, err := er.analyses.Compare(r.Context(), req.ToInput())
	if err != nil {
		writeServiceError(w, r, "compare shipping methods", err)
		return
	}
	writeJSON(w, http.StatusOK, comparisons)
}

// HandleGetTariff handles GET /api/tariff/{hsCode}?origin=&destination=
func (er *EstimateRouter) HandleGetTariff(w http.ResponseWriter, r *http.Request) {
	hsCode := r.PathValue("hsCode")
	origin := r.URL.Query().Get("origin")
	destination := r.URL.Query().Get("destination")

	tariff, err := er.tariffs.Lookup(r.Context(), hsCode, origin, destination)
	if err != nil {
		writeServiceError(w, r, "look up tariff", err)
		return
	}
	writeJSON(w, http.StatusOK, tariff)
}
