package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dukerupert/bywater/internal/auth"
	"github.com/dukerupert/bywater/internal/list"
	"github.com/dukerupert/bywater/internal/model"
)

type ShoppingHandler struct {
	service *list.Service
	logger  *slog.Logger
}

func NewShoppingHandler(service *list.Service, logger *slog.Logger) *ShoppingHandler {
	return &ShoppingHandler{service: service, logger: logger}
}

func (h *ShoppingHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.Items(auth.HouseholdID(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if items == nil {
		items = []model.ShoppingItemDetail{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ShoppingHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID  int64  `json:"product_id"`
		CustomName string `json:"custom_name"`
		Quantity   string `json:"quantity"`
		Note       string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	item, err := h.service.AddToList(auth.HouseholdID(r.Context()), list.AddToListRequest{
		ProductID:  req.ProductID,
		CustomName: req.CustomName,
		Quantity:   req.Quantity,
		Note:       req.Note,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *ShoppingHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req struct {
		Quantity *string `json:"quantity"`
		Note     *string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	item, err := h.service.UpdateItem(auth.HouseholdID(r.Context()), id, req.Quantity, req.Note)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *ShoppingHandler) Check(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req struct {
		Checked bool `json:"is_checked"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	item, err := h.service.CheckItem(auth.HouseholdID(r.Context()), id, req.Checked)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *ShoppingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.service.RemoveItem(auth.HouseholdID(r.Context()), id); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ShoppingHandler) Clear(w http.ResponseWriter, r *http.Request) {
	var req struct {
		KeepUnchecked bool `json:"keep_unchecked"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	count, err := h.service.ClearList(auth.HouseholdID(r.Context()), req.KeepUnchecked)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"cleared": count})
}
