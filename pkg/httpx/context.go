package httpx

import "context"

type ctxKey string

const (
	CtxKeyUserID   ctxKey = "user_id"
	CtxKeyFamilyID ctxKey = "family_id"
	CtxKeyScopes   ctxKey = "scopes"
)

// FamilyIDFromContext returns the tenant the authenticated caller acts for.
func FamilyIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyFamilyID).(string); ok {
		return v
	}
	return ""
}

// UserIDFromContext returns the subject of the verified bearer token.
func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyUserID).(string); ok {
		return v
	}
	return ""
}

func scopesFromCtx(ctx context.Context) []string {
	if v, ok := ctx.Value(CtxKeyScopes).([]string); ok {
		return v
	}
	return nil
}
