package tenant

import "context"

type contextKey string

const (
	tenantKey      contextKey = "tenant"
	integrationKey contextKey = "integration"
)

// WithTenant attaches the tenant id to the request context. Every
// persistence and storage call downstream is scoped by it.
func WithTenant(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, tenantKey, tenantID)
}

func IDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(tenantKey).(string)
	return id
}

func WithIntegration(ctx context.Context, integrationID string) context.Context {
	return context.WithValue(ctx, integrationKey, integrationID)
}

func IntegrationFromContext(ctx context.Context) string {
	id, _ := ctx.Value(integrationKey).(string)
	return id
}
