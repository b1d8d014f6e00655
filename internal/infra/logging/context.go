// Package logging wraps log/slog with a handler that lifts request-scoped
// correlation IDs out of context.Context, so call sites thread a context
// through a pipeline stage instead of repeating request_id/session_id at
// every log call.
package logging

import (
	"context"
	"log/slog"
)

type contextKey int

const (
	requestIDKey contextKey = iota
	userDocumentIDKey
	sessionIDKey
	conversationIDKey
)

// WithRequestID returns a context carrying a request ID for logging.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// WithUserDocumentID returns a context carrying a user document ID for logging.
func WithUserDocumentID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userDocumentIDKey, id)
}

// WithSessionID returns a context carrying a session ID for logging.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey, id)
}

// WithConversationID returns a context carrying a conversation ID for logging.
func WithConversationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, conversationIDKey, id)
}

// ContextHandler decorates an slog.Handler, injecting correlation fields
// pulled from context.Context as structured attributes on every record.
type ContextHandler struct {
	slog.Handler
}

// NewContextHandler wraps an existing handler.
func NewContextHandler(next slog.Handler) *ContextHandler {
	return &ContextHandler{Handler: next}
}

// Handle adds any correlation IDs present on ctx to the record before
// delegating to the wrapped handler.
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		r.AddAttrs(slog.String("request_id", v))
	}
	if v, ok := ctx.Value(userDocumentIDKey).(string); ok && v != "" {
		r.AddAttrs(slog.String("user_document_id", v))
	}
	if v, ok := ctx.Value(sessionIDKey).(string); ok && v != "" {
		r.AddAttrs(slog.String("session_id", v))
	}
	if v, ok := ctx.Value(conversationIDKey).(string); ok && v != "" {
		r.AddAttrs(slog.String("conversation_id", v))
	}
	return h.Handler.Handle(ctx, r)
}

// WithAttrs preserves the ContextHandler wrapper across slog.Logger.With.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

// WithGroup preserves the ContextHandler wrapper across slog.Logger.WithGroup.
func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithGroup(name)}
}
