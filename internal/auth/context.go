package auth

import (
	"context"

	"google.golang.org/grpc/metadata"
)

type ctxKey string

const (
	customerIDKey ctxKey = "customer_id"
	languageKey   ctxKey = "language"
	requestIDKey  ctxKey = "request_id"
)

// WithCustomerID stores the authenticated customer. An empty id means anonymous.
func WithCustomerID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, customerIDKey, id)
}

func WithLanguage(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, languageKey, lang)
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// GetCustomerID returns the customer set by the interceptor, falling back to incoming
// metadata. Anonymous requests yield "".
func GetCustomerID(ctx context.Context) string {
	if val, ok := ctx.Value(customerIDKey).(string); ok {
		return val
	}
	return fromMetadata(ctx, "x-customer-id")
}

func GetLanguage(ctx context.Context) string {
	if val, ok := ctx.Value(languageKey).(string); ok && val != "" {
		return val
	}
	if val := fromMetadata(ctx, "accept-language"); val != "" {
		return val
	}
	return "en"
}

func GetRequestID(ctx context.Context) string {
	if val, ok := ctx.Value(requestIDKey).(string); ok {
		return val
	}
	return fromMetadata(ctx, "x-request-id")
}

func fromMetadata(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if val := md.Get(key); len(val) > 0 {
		return val[0]
	}
	return ""
}
