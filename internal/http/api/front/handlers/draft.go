package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/InvoiceDrafter/internal/schema"
)

// DraftHandler serves the invoice page.
type DraftHandler struct {
	pipeline Pipeline
}

// NewDraftHandler constructs a DraftHandler.
func NewDraftHandler(pipeline Pipeline) *DraftHandler {
	return &DraftHandler{pipeline: pipeline}
}

// Show assembles a fresh draft with its defaults, profiles and next filename.
func (h *DraftHandler) Show(c *gin.Context) {
	view, err := h.pipeline.LoadDraft(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Save finalizes the submitted draft and advances the sequence.
func (h *DraftHandler) Save(c *gin.Context) {
	var body schema.InvoiceDraft
	if !bindBody(c, &body) {
		return
	}
	saved, err := h.pipeline.SaveInvoice(c.Request.Context(), body)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// Sequence returns the counter value the next invoice will use.
func (h *DraftHandler) Sequence(c *gin.Context) {
	current, err := h.pipeline.CurrentSequence(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"current": current})
}
