package api

import (
	"context"
)

type keyType string

const sessionIDKey keyType = "sessionID"

// ctxWithSessionID adds the admin token's session id to the context
func ctxWithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// ctxGetSessionID retrieves the admin session id, empty outside admin routes
func ctxGetSessionID(ctx context.Context) string {
	sessionID, _ := ctx.Value(sessionIDKey).(string)
	return sessionID
}
