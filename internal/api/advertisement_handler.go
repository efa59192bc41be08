package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mellihq/melli-ads/internal/api/respond"
	"github.com/mellihq/melli-ads/internal/api/validate"
	"github.com/mellihq/melli-ads/internal/model"
	"github.com/mellihq/melli-ads/internal/services"
)

// AdvertisementHandler is the HTTP transport for advertisement CRUD.
type AdvertisementHandler struct {
	svc *services.AdvertisementService
}

func NewAdvertisementHandler(svc *services.AdvertisementService) *AdvertisementHandler {
	return &AdvertisementHandler{svc: svc}
}

// Create POST /advertisements
func (h *AdvertisementHandler) Create(w http.ResponseWriter, r *http.Request) {
	var p validate.AdvertisementPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if errs := validate.CreateAdvertisement(p); errs != nil {
		respond.WriteValidationErrors(w, errs)
		return
	}

	ad := &model.Advertisement{
		Title:        *p.Title,
		Description:  *p.Description,
		Content:      *p.Content,
		Category:     p.Category,
		Location:     p.Location,
		Price:        p.Price,
		ContactEmail: p.ContactEmail,
		ContactPhone: p.ContactPhone,
		Tags:         p.Tags,
		IsActive:     true,
		ExpiresAt:    p.ExpiresAt,
	}
	if p.IsActive != nil {
		ad.IsActive = *p.IsActive
	}

	out, err := h.svc.Create(r.Context(), ad)
	if err != nil {
		respond.WriteInternalError(w, "Failed to create advertisement")
		return
	}
	respond.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Advertisement created successfully",
		"data":    out,
	})
}

// Show GET /advertisements/{id} — only active-eligible records are visible.
func (h *AdvertisementHandler) Show(w http.ResponseWriter, r *http.Request) {
	ad, err := h.svc.GetPublic(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			respond.WriteNotFound(w, "Advertisement not found")
			return
		}
		respond.WriteInternalError(w, "Failed to fetch advertisement")
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    ad,
	})
}

// Update PUT /advertisements/{id}
func (h *AdvertisementHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	// Existence first: an unknown id reads as 404 even with an invalid body.
	if _, err := h.svc.Get(r.Context(), id); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			respond.WriteNotFound(w, "Advertisement not found")
			return
		}
		respond.WriteInternalError(w, "Failed to fetch advertisement")
		return
	}

	var p validate.AdvertisementPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if errs := validate.UpdateAdvertisement(p); errs != nil {
		respond.WriteValidationErrors(w, errs)
		return
	}

	out, err := h.svc.Update(r.Context(), id, model.AdvertisementUpdate{
		Title:        p.Title,
		Description:  p.Description,
		Content:      p.Content,
		Category:     p.Category,
		Location:     p.Location,
		Price:        p.Price,
		ContactEmail: p.ContactEmail,
		ContactPhone: p.ContactPhone,
		Tags:         p.Tags,
		IsActive:     p.IsActive,
		ExpiresAt:    p.ExpiresAt,
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			respond.WriteNotFound(w, "Advertisement not found")
			return
		}
		respond.WriteInternalError(w, "Failed to update advertisement")
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Advertisement updated successfully",
		"data":    out,
	})
}

// Delete DELETE /advertisements/{id}
func (h *AdvertisementHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			respond.WriteNotFound(w, "Advertisement not found")
			return
		}
		respond.WriteInternalError(w, "Failed to delete advertisement")
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Advertisement deleted successfully",
	})
}
