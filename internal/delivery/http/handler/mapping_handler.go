package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"eld-compliance/internal/middleware"
	mappingUsecase "eld-compliance/internal/usecase/mapping"
	"eld-compliance/pkg/utils"
)

type MappingHandler struct {
	service *mappingUsecase.Service
}

func NewMappingHandler(service *mappingUsecase.Service) *MappingHandler {
	return &MappingHandler{service: service}
}

func (h *MappingHandler) RegisterRoutes(router *gin.RouterGroup) {
	mappings := router.Group("/driver-mappings")
	{
		mappings.POST("", h.CreateMapping)
		mappings.GET("", h.ListMappings)
		mappings.DELETE("/:id", h.DeactivateMapping)
	}
	router.GET("/devices/:id/driver-mappings", h.ListMappingsForDevice)
}

func (h *MappingHandler) CreateMapping(c *gin.Context) {
	var req mappingUsecase.CreateMappingRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.service.CreateMapping(c.Request.Context(), middleware.CompanyID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Driver mapping created", resp)
}

func (h *MappingHandler) ListMappings(c *gin.Context) {
	resp, err := h.service.ListMappings(c.Request.Context(), middleware.CompanyID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Driver mappings retrieved", resp)
}

func (h *MappingHandler) ListMappingsForDevice(c *gin.Context) {
	deviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid device ID")
		return
	}

	resp, err := h.service.ListMappingsForDevice(c.Request.Context(), middleware.CompanyID(c), deviceID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Driver mappings retrieved", resp)
}

func (h *MappingHandler) DeactivateMapping(c *gin.Context) {
	mappingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid mapping ID")
		return
	}

	if err := h.service.DeactivateMapping(c.Request.Context(), middleware.CompanyID(c), mappingID); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Driver mapping deactivated", nil)
}
