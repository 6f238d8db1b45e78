package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainDevice "eld-compliance/internal/domain/device"
	deviceUsecase "eld-compliance/internal/usecase/device"
	"eld-compliance/pkg/utils"
)

const deviceContextKey = "authenticatedDevice"

// DeviceAuthMiddleware authenticates mobile sync calls. The app sends its
// device id in X-Device-ID and the sync token issued at registration as a
// bearer credential; the token is checked against the stored hash.
func DeviceAuthMiddleware(devices *deviceUsecase.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		deviceID, err := uuid.Parse(c.GetHeader("X-Device-ID"))
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, "X-Device-ID header required")
			c.Abort()
			return
		}

		authHeader := c.GetHeader("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid authorization header format")
			c.Abort()
			return
		}

		dev, err := devices.Authenticate(c.Request.Context(), deviceID, parts[1])
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Device authentication failed")
			c.Abort()
			return
		}

		c.Set(deviceContextKey, dev)
		c.Next()
	}
}

// AuthenticatedDevice returns the device resolved by DeviceAuthMiddleware.
func AuthenticatedDevice(c *gin.Context) (*domainDevice.Device, bool) {
	v, exists := c.Get(deviceContextKey)
	if !exists {
		return nil, false
	}
	dev, ok := v.(*domainDevice.Device)
	return dev, ok
}
