package router

import (
	"net/http"

	"github.com/OpenNSW/landedcost/internal/trade/model"
	"github.com/OpenNSW/landedcost/internal/trade/service"
)

type ProductRouter struct {
	products *service.ProductService
}

func NewProductRouter(products *service.ProductService) *ProductRouter {
	return &ProductRouter{products: products}
}

// HandleCreateProduct handles POST /api/products
func (pr *ProductRouter) HandleCreateProduct(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req model.ProductDTO
	if err := bindJSON(w, r, &req); err != nil {
		writeServiceError(w, r, "create product", err)
		return
	}

	product, err := pr.products.Create(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, r, "create product", err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

// HandleGetProducts handles GET /api/products?offset={offset}&limit={limit}
func (pr *ProductRouter) HandleGetProducts(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	filter, err := parseListFilter(r)
	if err != nil {
		writeServiceError(w, r, "list products", err)
		return
	}

	products, err := pr.products.List(r.Context(), userID, filter)
	if err != nil {
		writeServiceError(w, r, "list products", err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// HandleGetProduct handles GET /api/products/{id}
func (pr *ProductRouter) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := parseID(r, "id")
	if err != nil {
		writeServiceError(w, r, "get product", err)
		return
	}

	product, err := pr.products.GetByID(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, r, "get product", err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// HandleUpdateProduct handles PUT /api/products/{id}
func (pr *ProductRouter) HandleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := parseID(r, "id")
	if err != nil {
		writeServiceError(w, r, "update product", err)
		return
	}
	var req model.ProductDTO
	if err := bindJSON(w, r, &req); err != nil {
		writeServiceError(w, r, "update product", err)
		return
	}

	product, err := pr.products.Update(r.Context(), userID, id, &req)
	if err != nil {
		writeServiceError(w, r, "update product", err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// HandleDeleteProduct handles DELETE /api/products/{id}
func (pr *ProductRouter) HandleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := parseID(r, "id")
	if err != nil {
		writeServiceError(w, r, "delete product", err)
		return
	}

	if err := pr.products.Delete(r.Context(), userID, id); err != nil {
		writeServiceError(w, r, "delete product", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
