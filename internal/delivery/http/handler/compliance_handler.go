package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"eld-compliance/internal/ingestion"
	"eld-compliance/internal/middleware"
	complianceUsecase "eld-compliance/internal/usecase/compliance"
	"eld-compliance/pkg/utils"
)

type ComplianceHandler struct {
	service   *complianceUsecase.Service
	ingestor  *ingestion.Ingestor
	processor *ingestion.Processor
}

func NewComplianceHandler(service *complianceUsecase.Service, ingestor *ingestion.Ingestor, processor *ingestion.Processor) *ComplianceHandler {
	return &ComplianceHandler{
		service:   service,
		ingestor:  ingestor,
		processor: processor,
	}
}

func (h *ComplianceHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/drivers/:id/hos", h.GetDriverHOS)

	events := router.Group("/compliance-events")
	{
		events.GET("", h.ListEvents)
		events.POST("/:id/resolve", h.ResolveEvent)
	}

	router.GET("/duty-logs/unassigned", h.ListUnassignedLogs)
	router.GET("/ingest/metrics", h.IngestMetrics)
}

// GetDriverHOS returns the driver's computed hours-of-service state.
// ?at= accepts an RFC 3339 instant for historical queries; cycle_days and
// cycle_max_hours override the carrier's configured cycle together.
func (h *ComplianceHandler) GetDriverHOS(c *gin.Context) {
	driverID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid driver ID")
		return
	}

	query := &complianceUsecase.HOSQuery{}

	if raw := c.Query("at"); raw != "" {
		at, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid 'at' timestamp, expected RFC 3339")
			return
		}
		query.At = &at
	}

	rawDays := c.Query("cycle_days")
	rawHours := c.Query("cycle_max_hours")
	if (rawDays == "") != (rawHours == "") {
		utils.ErrorResponse(c, http.StatusBadRequest, "cycle_days and cycle_max_hours must be set together")
		return
	}
	if rawDays != "" {
		days, err := strconv.Atoi(rawDays)
		if err != nil || days <= 0 {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid cycle_days")
			return
		}
		hours, err := strconv.ParseFloat(rawHours, 64)
		if err != nil || hours <= 0 {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid cycle_max_hours")
			return
		}
		query.CycleDays = &days
		query.CycleMaxHours = &hours
	}

	resp, err := h.service.GetDriverHOS(c.Request.Context(), middleware.CompanyID(c), driverID, query)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "HOS state computed", resp)
}

func (h *ComplianceHandler) ListEvents(c *gin.Context) {
	var filter complianceUsecase.EventFilterRequest

	if err := c.ShouldBindQuery(&filter); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	resp, err := h.service.ListEvents(c.Request.Context(), middleware.CompanyID(c), &filter)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Compliance events retrieved", resp)
}

func (h *ComplianceHandler) ResolveEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid event ID")
		return
	}

	var req complianceUsecase.ResolveEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.service.ResolveEvent(c.Request.Context(), middleware.CompanyID(c), eventID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Compliance event resolved", resp)
}

func (h *ComplianceHandler) ListUnassignedLogs(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	resp, err := h.service.ListUnassignedLogs(c.Request.Context(), middleware.CompanyID(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Unassigned duty logs retrieved", resp)
}

// IngestMetrics exposes counters for both ingestion paths: the webhook
// request path and the streaming location pipeline.
func (h *ComplianceHandler) IngestMetrics(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Ingest metrics", gin.H{
		"webhook":   h.ingestor.Metrics(),
		"streaming": h.processor.Metrics(),
	})
}
