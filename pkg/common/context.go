package common

import (
	"context"

	"scholar-backend/domain/permissions"
)

// ContextKey represents a context key type
type ContextKey string

// Context keys
const (
	ContextKeyActor     ContextKey = "actor"
	ContextKeyRequestID ContextKey = "request_id"
)

// WithActor adds the authenticated actor to context
func WithActor(ctx context.Context, actor permissions.Actor) context.Context {
	return context.WithValue(ctx, ContextKeyActor, actor)
}

// GetActor extracts the authenticated actor from context. A missing actor
// yields the zero value, which every authorization gate rejects.
func GetActor(ctx context.Context) permissions.Actor {
	if actor, ok := ctx.Value(ContextKeyActor).(permissions.Actor); ok {
		return actor
	}
	return permissions.Actor{}
}

// WithRequestID adds request ID to context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// GetRequestID extracts request ID from context
func GetRequestID(ctx context.Context) (string, bool) {
	requestID, ok := ctx.Value(ContextKeyRequestID).(string)
	return requestID, ok
}
