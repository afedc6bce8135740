package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dukerupert/bywater/internal/auth"
	"github.com/dukerupert/bywater/internal/list"
	"github.com/dukerupert/bywater/internal/model"
)

type ProductHandler struct {
	service *list.Service
	logger  *slog.Logger
}

func NewProductHandler(service *list.Service, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{service: service, logger: logger}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.Products(auth.HouseholdID(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if products == nil {
		products = []model.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	product, err := h.service.CreateProduct(auth.HouseholdID(r.Context()), req.Name)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) Rename(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	product, err := h.service.RenameProduct(auth.HouseholdID(r.Context()), id, req.Name)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.service.DeleteProduct(auth.HouseholdID(r.Context()), id); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductIDs []int64 `json:"product_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	products, err := h.service.ReorderProducts(auth.HouseholdID(r.Context()), req.ProductIDs)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if products == nil {
		products = []model.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}
