package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/InvoiceDrafter/internal/draft"
	"github.com/router-for-me/InvoiceDrafter/internal/schema"
	"github.com/router-for-me/InvoiceDrafter/internal/settings"
	log "github.com/sirupsen/logrus"
)

// Pipeline is the draft pipeline surface the handlers call.
type Pipeline interface {
	LoadDraft(ctx context.Context) (draft.DraftView, error)
	SaveInvoice(ctx context.Context, d schema.InvoiceDraft) (draft.SavedInvoice, error)
	CurrentSequence(ctx context.Context) (int64, error)
	LoadBankProfile(ctx context.Context) (draft.ProfileView[schema.BankProfile], error)
	LoadAddressProfile(ctx context.Context) (draft.ProfileView[schema.AddressProfile], error)
	LoadSystemPreferences(ctx context.Context) (draft.ProfileView[schema.SystemPreferences], error)
	SaveBankProfile(ctx context.Context, p schema.BankProfile) (schema.BankProfile, error)
	SaveAddressProfile(ctx context.Context, p schema.AddressProfile) (schema.AddressProfile, error)
	SaveSystemPreferences(ctx context.Context, p schema.SystemPreferences) (schema.SystemPreferences, error)
}

// respondError maps pipeline errors onto status codes.
func respondError(c *gin.Context, err error) {
	var errValidation *schema.ValidationError
	switch {
	case errors.As(err, &errValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": errValidation.Fields})
	case errors.Is(err, settings.ErrStoreUnavailable), errors.Is(err, settings.ErrClosed):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "settings store unavailable"})
	case errors.Is(err, settings.ErrPersistFailed):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
	case errors.Is(err, draft.ErrExportFailed):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
	case errors.Is(err, settings.ErrMalformedValue):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stored settings are unreadable"})
	default:
		log.WithError(err).Error("bridge: unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// bindBody decodes the JSON body into dst, answering 400 when it cannot.
func bindBody(c *gin.Context, dst any) bool {
	if errBind := c.ShouldBindJSON(dst); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return false
	}
	return true
}
