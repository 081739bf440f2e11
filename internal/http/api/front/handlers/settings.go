package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/InvoiceDrafter/internal/schema"
)

// SettingsHandler serves the bank, address and system settings pages.
type SettingsHandler struct {
	pipeline Pipeline
}

// NewSettingsHandler constructs a SettingsHandler.
func NewSettingsHandler(pipeline Pipeline) *SettingsHandler {
	return &SettingsHandler{pipeline: pipeline}
}

// GetBank returns the bank settings page.
func (h *SettingsHandler) GetBank(c *gin.Context) {
	respondView(c, h.pipeline.LoadBankProfile)
}

// PutBank validates and stores the bank details.
func (h *SettingsHandler) PutBank(c *gin.Context) {
	respondSave(c, h.pipeline.SaveBankProfile)
}

// GetAddress returns the address settings page.
func (h *SettingsHandler) GetAddress(c *gin.Context) {
	respondView(c, h.pipeline.LoadAddressProfile)
}

// PutAddress validates and stores the beneficiary address.
func (h *SettingsHandler) PutAddress(c *gin.Context) {
	respondSave(c, h.pipeline.SaveAddressProfile)
}

// GetSystem returns the system settings page.
func (h *SettingsHandler) GetSystem(c *gin.Context) {
	respondView(c, h.pipeline.LoadSystemPreferences)
}

// PutSystem validates and stores the system preferences.
func (h *SettingsHandler) PutSystem(c *gin.Context) {
	respondSave(c, h.pipeline.SaveSystemPreferences)
}

func respondView[V any](c *gin.Context, load func(context.Context) (V, error)) {
	view, err := load(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func respondSave[T any](c *gin.Context, save func(context.Context, T) (T, error)) {
	var body T
	if !bindBody(c, &body) {
		return
	}
	saved, err := save(c.Request.Context(), body)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "record": saved})
}

// ListStates returns the Brazilian federative units offered by the address form.
func ListStates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"options": schema.BrazilianStates()})
}

// ListAccountTypes returns the account types offered by the bank form.
func ListAccountTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"options": schema.AccountTypes()})
}
