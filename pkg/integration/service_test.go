package integration

import (
	"context"
	"errors"
	"testing"
)

func TestCreateValidation(t *testing.T) {
	svc := NewService(nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, "tenant-1", CreateInput{
		Name:        "no provider",
		Credentials: map[string]interface{}{"access_token": "x"},
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for missing provider, got %v", err)
	}

	_, err = svc.Create(ctx, "tenant-1", CreateInput{
		Provider: "google_ads",
		Name:     "no credentials",
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for missing credentials, got %v", err)
	}

	_, err = svc.Create(ctx, "tenant-1", CreateInput{
		Provider:    "   ",
		Credentials: map[string]interface{}{"access_token": "x"},
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for blank provider, got %v", err)
	}
}
