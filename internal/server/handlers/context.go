package handlers

import "context"

type contextKey string

// OwnerKey ключ для хранения владельца зон (subject токена) в контексте
const OwnerKey contextKey = "owner"

// WithOwner возвращает контекст с владельцем
func WithOwner(ctx context.Context, owner string) context.Context {
	return context.WithValue(ctx, OwnerKey, owner)
}

// GetOwnerFromContext извлекает владельца из контекста
func GetOwnerFromContext(ctx context.Context) (string, bool) {
	owner, ok := ctx.Value(OwnerKey).(string)
	return owner, ok && owner != ""
}
