package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/vitohq/docintel/internal/tenant"
)

// TenantContext resolves the tenant and integration from request
// headers. Full authentication lives in front of this service; this is
// only the interface boundary the pipeline needs for scoping.
func TenantContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID := r.Header.Get("X-Tenant-ID")
		if tenantID == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "X-Tenant-ID header required"})
			return
		}

		ctx := tenant.WithTenant(r.Context(), tenantID)
		if integrationID := r.Header.Get("X-Integration-ID"); integrationID != "" {
			ctx = tenant.WithIntegration(ctx, integrationID)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
