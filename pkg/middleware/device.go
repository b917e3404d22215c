package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/utafrali/storefront/pkg/logger"
)

const deviceIDKey contextKeyType = "device_id"

// DeviceIDHeader is the header carrying the device identifier for
// device-scoped state such as the recently-viewed cache.
const DeviceIDHeader = "X-Device-ID"

// maxDeviceIDLength bounds the identifier so it can safely be used as a
// storage key (redis key, file name).
const maxDeviceIDLength = 128

// RequireDeviceID middleware extracts the device ID header and injects it
// into context. Device identity is independent of authentication state.
func RequireDeviceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deviceID := r.Header.Get(DeviceIDHeader)
		if deviceID == "" || len(deviceID) > maxDeviceIDLength {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]string{
					"code":    "INVALID_INPUT",
					"message": DeviceIDHeader + " header is required",
				},
			})
			return
		}

		ctx := context.WithValue(r.Context(), deviceIDKey, deviceID)
		ctx = logger.WithDeviceID(ctx, deviceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// DeviceIDFromContext returns the device ID, or "" if absent.
func DeviceIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(deviceIDKey).(string); ok {
		return id
	}
	return ""
}
