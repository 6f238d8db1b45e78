package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainCompliance "eld-compliance/internal/domain/compliance"
	domainDevice "eld-compliance/internal/domain/device"
	domainDriver "eld-compliance/internal/domain/driver"
	appErrors "eld-compliance/pkg/errors"
	"eld-compliance/pkg/utils"
)

// respondError maps domain errors onto HTTP statuses. Unknown errors are
// deliberately opaque: internals never leak to callers.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, appErrors.ErrInvalidSignature),
		errors.Is(err, appErrors.ErrUnauthenticated),
		errors.Is(err, appErrors.ErrInvalidToken):
		utils.ErrorResponse(c, http.StatusUnauthorized, err.Error())

	case errors.Is(err, appErrors.ErrUnknownProvider),
		errors.Is(err, appErrors.ErrEmptyBatch),
		errors.Is(err, appErrors.ErrNoValidRecords),
		errors.Is(err, appErrors.ErrInvalidTimeWindow),
		errors.Is(err, domainDriver.ErrMappingExists),
		errors.Is(err, domainCompliance.ErrAlreadyResolved):
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())

	case errors.Is(err, appErrors.ErrDeviceNotFound),
		errors.Is(err, domainDevice.ErrDeviceNotFound),
		errors.Is(err, domainDriver.ErrMappingNotFound),
		errors.Is(err, domainCompliance.ErrEventNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, err.Error())

	default:
		var appErr *appErrors.AppError
		if errors.As(err, &appErr) {
			utils.ErrorResponse(c, http.StatusBadRequest, appErr.Message)
			return
		}
		utils.ErrorResponse(c, http.StatusInternalServerError, "internal server error")
	}
}
