package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jmorrow/larder/internal/models"
	"github.com/jmorrow/larder/internal/services"
	"github.com/jmorrow/larder/pkg/apierror"
	"github.com/jmorrow/larder/pkg/response"
)

type ItemHandler struct {
	itemService *services.ItemService
}

func NewItemHandler(itemService *services.ItemService) *ItemHandler {
	return &ItemHandler{itemService: itemService}
}

type itemRequest struct {
	Name             string     `json:"name"`
	Category         string     `json:"category"`
	CurrentStock     int        `json:"current_stock"`
	SafetyStock      int        `json:"safety_stock"`
	Unit             string     `json:"unit"`
	ExpirationDate   *time.Time `json:"expiration_date"`
	IsPeriodic       bool       `json:"is_periodic"`
	ReplacementCycle *int       `json:"replacement_cycle"`
	LastReplaced     *time.Time `json:"last_replaced"`
}

// List returns every item of the list with its derived stock status.
func (handler *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listID")

	statuses, err := handler.itemService.StatusForList(r.Context(), listID, time.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, statuses)
}

func (handler *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listID")

	var request itemRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	if request.Name == "" {
		response.Error(w, apierror.BadRequest("item name is required"))
		return
	}

	item, err := handler.itemService.Create(r.Context(), models.Item{
		ListID:           listID,
		Name:             request.Name,
		Category:         models.ItemCategory(request.Category),
		CurrentStock:     request.CurrentStock,
		SafetyStock:      request.SafetyStock,
		Unit:             request.Unit,
		ExpirationDate:   request.ExpirationDate,
		IsPeriodic:       request.IsPeriodic,
		ReplacementCycle: request.ReplacementCycle,
		LastReplaced:     request.LastReplaced,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, item)
}

func (handler *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listID")
	itemID := chi.URLParam(r, "itemID")

	var request itemRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	if request.Name == "" {
		response.Error(w, apierror.BadRequest("item name is required"))
		return
	}

	item, err := handler.itemService.Update(r.Context(), listID, models.Item{
		ID:               itemID,
		Name:             request.Name,
		Category:         models.ItemCategory(request.Category),
		CurrentStock:     request.CurrentStock,
		SafetyStock:      request.SafetyStock,
		Unit:             request.Unit,
		ExpirationDate:   request.ExpirationDate,
		IsPeriodic:       request.IsPeriodic,
		ReplacementCycle: request.ReplacementCycle,
		LastReplaced:     request.LastReplaced,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, item)
}

func (handler *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listID")
	itemID := chi.URLParam(r, "itemID")

	if err := handler.itemService.Delete(r.Context(), listID, itemID); err != nil {
		writeError(w, r, err)
		return
	}
	response.NoContent(w)
}

// AdjustStock applies a signed delta to the item's stock count. The
// store clamps the result at zero.
func (handler *ItemHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listID")
	itemID := chi.URLParam(r, "itemID")

	var request struct {
		Delta int `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	if request.Delta == 0 {
		response.Error(w, apierror.BadRequest("delta must be non-zero"))
		return
	}

	status, err := handler.itemService.AdjustStock(r.Context(), listID, itemID, request.Delta)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, status)
}

// MarkReplaced restarts a periodic item's replacement cycle from today.
func (handler *ItemHandler) MarkReplaced(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listID")
	itemID := chi.URLParam(r, "itemID")

	status, err := handler.itemService.MarkReplaced(r.Context(), listID, itemID, time.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, status)
}
