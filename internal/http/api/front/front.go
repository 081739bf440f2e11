package front

import (
	"github.com/gin-gonic/gin"
	"github.com/router-for-me/InvoiceDrafter/internal/http/api/front/handlers"
)

// RegisterFrontRoutes registers the invoice and settings page routes.
func RegisterFrontRoutes(r *gin.Engine, pipeline handlers.Pipeline) {
	if r == nil || pipeline == nil {
		return
	}

	front := r.Group("/v0")

	draftHandler := handlers.NewDraftHandler(pipeline)
	front.GET("/draft", draftHandler.Show)
	front.POST("/invoices", draftHandler.Save)
	front.GET("/sequence", draftHandler.Sequence)

	settingsHandler := handlers.NewSettingsHandler(pipeline)
	front.GET("/settings/bank", settingsHandler.GetBank)
	front.PUT("/settings/bank", settingsHandler.PutBank)
	front.GET("/settings/address", settingsHandler.GetAddress)
	front.PUT("/settings/address", settingsHandler.PutAddress)
	front.GET("/settings/system", settingsHandler.GetSystem)
	front.PUT("/settings/system", settingsHandler.PutSystem)

	front.GET("/options/states", handlers.ListStates)
	front.GET("/options/account-types", handlers.ListAccountTypes)
}
