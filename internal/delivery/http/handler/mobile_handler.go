package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"eld-compliance/internal/ingestion"
	"eld-compliance/internal/middleware"
	deviceUsecase "eld-compliance/internal/usecase/device"
	"eld-compliance/pkg/utils"
)

// MobileHandler serves the first-party driver app: registration plus the
// offline-queue sync endpoints. Sync bodies are canonical batches, so all
// three endpoints share one ingestion path; the split exists so the app
// can flush queues independently.
type MobileHandler struct {
	devices  *deviceUsecase.Service
	ingestor *ingestion.Ingestor
}

func NewMobileHandler(devices *deviceUsecase.Service, ingestor *ingestion.Ingestor) *MobileHandler {
	return &MobileHandler{devices: devices, ingestor: ingestor}
}

// RegisterRoutes wires the sync endpoints, authenticated by device token.
func (h *MobileHandler) RegisterRoutes(router *gin.RouterGroup) {
	sync := router.Group("/mobile/sync")
	sync.Use(middleware.DeviceAuthMiddleware(h.devices))
	{
		sync.POST("/logs", h.Sync)
		sync.POST("/locations", h.Sync)
		sync.POST("/events", h.Sync)
	}
}

// RegisterProtectedRoutes wires registration, which issues sync tokens
// and therefore requires a fleet-manager JWT rather than a device token.
func (h *MobileHandler) RegisterProtectedRoutes(router *gin.RouterGroup) {
	router.POST("/mobile/register", h.Register)
}

func (h *MobileHandler) Register(c *gin.Context) {
	var req deviceUsecase.RegisterDeviceRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.devices.RegisterMobileDevice(c.Request.Context(), middleware.CompanyID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Device registered successfully", resp)
}

func (h *MobileHandler) Sync(c *gin.Context) {
	dev, ok := middleware.AuthenticatedDevice(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Device authentication required")
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Failed to read request body")
		return
	}

	result, err := h.ingestor.HandleMobileBatch(c.Request.Context(), dev, body)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, result.Summarize(), gin.H{
		"processed":     result.Processed,
		"logs_stored":   result.Summary.LogsStored,
		"pings_stored":  result.Summary.PingsStored,
		"events_stored": result.Summary.EventsStored,
		"dropped":       result.Summary.Dropped,
		"unmapped":      result.Summary.Unmapped,
	})
}
