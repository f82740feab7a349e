package auth

import (
	"context"
	"testing"

	"google.golang.org/grpc/metadata"
)

func TestGetCustomerID(t *testing.T) {
	if got := GetCustomerID(context.Background()); got != "" {
		t.Errorf("anonymous = %q, want empty", got)
	}

	md := metadata.Pairs("x-customer-id", "cust-1")
	ctx := metadata.NewIncomingContext(context.Background(), md)
	if got := GetCustomerID(ctx); got != "cust-1" {
		t.Errorf("from metadata = %q, want cust-1", got)
	}

	ctx = WithCustomerID(ctx, "cust-2")
	if got := GetCustomerID(ctx); got != "cust-2" {
		t.Errorf("from context = %q, want cust-2", got)
	}
}

func TestGetLanguageDefaultsToEnglish(t *testing.T) {
	if got := GetLanguage(context.Background()); got != "en" {
		t.Errorf("GetLanguage() = %q, want en", got)
	}
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("accept-language", "id"))
	if got := GetLanguage(ctx); got != "id" {
		t.Errorf("GetLanguage() = %q, want id", got)
	}
}
