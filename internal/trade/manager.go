// Package trade wires the landed-cost services to their HTTP routers.
package trade

import (
	"context"
	"net/http"

	"gorm.io/gorm"

	"github.com/OpenNSW/landedcost/internal/estimator"
	"github.com/OpenNSW/landedcost/internal/events"
	"github.com/OpenNSW/landedcost/internal/lookup"
	"github.com/OpenNSW/landedcost/internal/trade/router"
	"github.com/OpenNSW/landedcost/internal/trade/service"
)

// Manager owns the trade services and routers.
type Manager struct {
	hsCodeService     *service.HSCodeService
	analysisService   *service.AnalysisService
	productService    *service.ProductService
	complianceService *service.ComplianceService
	tariffService     *service.TariffService
	estimateRouter    *router.EstimateRouter
	analysisRouter    *router.AnalysisRouter
	productRouter     *router.ProductRouter
	complianceRouter  *router.ComplianceRouter
}

// NewManager builds every trade service on db. quoter supplies live rates for estimates;
// tariffs backs the direct tariff endpoint.
func NewManager(db *gorm.DB, est *estimator.Estimator, quoter service.Quoter, tariffs lookup.TariffSource, publisher events.Publisher) *Manager {
	hsCodeService := service.NewHSCodeService(db)
	analysisService := service.NewAnalysisService(db, est, quoter, hsCodeService, publisher)
	productService := service.NewProductService(db)
	complianceService := service.NewComplianceService(db)
	tariffService := service.NewTariffService(tariffs)

	return &Manager{
		hsCodeService:     hsCodeService,
		analysisService:   analysisService,
		productService:    productService,
		complianceService: complianceService,
		tariffService:     tariffService,
		estimateRouter:    router.NewEstimateRouter(analysisService, hsCodeService, tariffService),
		analysisRouter:    router.NewAnalysisRouter(analysisService),
		productRouter:     router.NewProductRouter(productService),
		complianceRouter:  router.NewComplianceRouter(complianceService),
	}
}

// AnalysisService exposes the analysis service to other components such as reports.
func (m *Manager) AnalysisService() *service.AnalysisService {
	return m.analysisService
}

// SeedHSCodes loads the bundled HS code classifications.
func (m *Manager) SeedHSCodes(ctx context.Context) error {
	return m.hsCodeService.SeedDefaults(ctx)
}

// RegisterRoutes mounts the public routes directly and wraps the per-user routes with protect.
func (m *Manager) RegisterRoutes(mux *http.ServeMux, protect func(http.Handler) http.Handler) {
	er := m.estimateRouter
	mux.HandleFunc("GET /api/hscodes", er.HandleGetHSCodes)
	mux.HandleFunc("GET /api/rates", er.HandleGetRates)
	mux.HandleFunc("POST /api/estimate", er.HandleEstimate)
	mux.HandleFunc("POST /api/estimate/compare", er.HandleCompare)
	mux.HandleFunc("GET /api/tariff/{hsCode}", er.HandleGetTariff)

	handle := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, protect(h))
	}

	ar := m.analysisRouter
	handle("POST /api/analyses", ar.HandleCreateAnalysis)
	handle("GET /api/analyses", ar.HandleGetAnalyses)
	handle("GET /api/analyses/{id}", ar.HandleGetAnalysis)
	handle("DELETE /api/analyses/{id}", ar.HandleDeleteAnalysis)
	handle("GET /api/analyses/{id}/drawback", ar.HandleGetDrawback)

	pr := m.productRouter
	handle("POST /api/products", pr.HandleCreateProduct)
	handle("GET /api/products", pr.HandleGetProducts)
	handle("GET /api/products/{id}", pr.HandleGetProduct)
	handle("PUT /api/products/{id}", pr.HandleUpdateProduct)
	handle("DELETE /api/products/{id}", pr.HandleDeleteProduct)

	cr := m.complianceRouter
	handle("POST /api/compliance-requirements", cr.HandleCreateRequirement)
	handle("GET /api/compliance-requirements", cr.HandleGetRequirements)
	handle("GET /api/compliance-requirements/{id}", cr.HandleGetRequirement)
	handle("PUT /api/compliance-requirements/{id}", cr.HandleUpdateRequirement)
	handle("DELETE /api/compliance-requirements/{id}", cr.HandleDeleteRequirement)
}
