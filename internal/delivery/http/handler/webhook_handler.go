package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	domainDevice "eld-compliance/internal/domain/device"
	"eld-compliance/internal/ingestion"
	"eld-compliance/internal/logger"
	"eld-compliance/pkg/utils"
)

type WebhookHandler struct {
	ingestor *ingestion.Ingestor
}

func NewWebhookHandler(ingestor *ingestion.Ingestor) *WebhookHandler {
	return &WebhookHandler{ingestor: ingestor}
}

func (h *WebhookHandler) RegisterRoutes(router *gin.RouterGroup) {
	webhooks := router.Group("/webhooks")
	{
		webhooks.POST("/:provider/:company_id", h.Receive)
	}
}

// Receive accepts one signed provider delivery. The body is read raw
// before any parsing: the signature covers the exact bytes sent.
func (h *WebhookHandler) Receive(c *gin.Context) {
	provider := domainDevice.Provider(c.Param("provider"))
	if !provider.Valid() || provider == domainDevice.ProviderMobileApp {
		utils.ErrorResponse(c, http.StatusNotFound, "unknown provider")
		return
	}

	companyID, err := uuid.Parse(c.Param("company_id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid company ID")
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Failed to read request body")
		return
	}

	signature := c.GetHeader(ingestion.HeaderFor(provider))

	result, err := h.ingestor.HandleWebhook(c.Request.Context(), provider, companyID, body, signature)
	if err != nil {
		logger.Warn("webhook rejected",
			zap.String("provider", string(provider)),
			zap.Error(err),
		)
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Webhook processed", gin.H{
		"processed":     result.Processed,
		"logs_stored":   result.Summary.LogsStored,
		"pings_stored":  result.Summary.PingsStored,
		"events_stored": result.Summary.EventsStored,
		"dropped":       result.Summary.Dropped,
		"unmapped":      result.Summary.Unmapped,
	})
}
