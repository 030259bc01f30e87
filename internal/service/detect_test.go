package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/mealcraft/mealcraft-api/internal/config"
	"github.com/mealcraft/mealcraft-api/internal/testutil"
)

// jpegBytes is a minimal payload with a valid JPEG magic number.
var jpegBytes = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46}

func newTestDetectionService(mock *testutil.MockVisionProvider) *DetectionService {
	return NewDetectionService(&config.Config{}, mock)
}

func TestDetectFromImage_Success(t *testing.T) {
	mock := &testutil.MockVisionProvider{
		DetectIngredientsFunc: func(ctx context.Context, imageData []byte) (string, error) {
			return `["tomato", "onion", "basil"]`, nil
		},
	}
	svc := newTestDetectionService(mock)

	names, err := svc.DetectFromImage(context.Background(), 1, "fridge.jpg", "image/jpeg", jpegBytes)
	if err != nil {
		t.Fatalf("DetectFromImage returned error: %v", err)
	}
	if len(names) != 3 || names[0] != "tomato" || names[1] != "onion" || names[2] != "basil" {
		t.Errorf("unexpected ingredient list: %v", names)
	}
}

func TestDetectFromImage_RejectsNonImageBeforeProviderCall(t *testing.T) {
	called := false
	mock := &testutil.MockVisionProvider{
		DetectIngredientsFunc: func(ctx context.Context, imageData []byte) (string, error) {
			called = true
			return "[]", nil
		},
	}
	svc := newTestDetectionService(mock)

	_, err := svc.DetectFromImage(context.Background(), 1, "notes.txt", "text/plain", []byte("just text"))
	if !errors.Is(err, ErrNotAnImage) {
		t.Fatalf("expected ErrNotAnImage, got %v", err)
	}

	// An image content type with non-image bytes is rejected too.
	_, err = svc.DetectFromImage(context.Background(), 1, "fake.jpg", "image/jpeg", []byte("just text"))
	if !errors.Is(err, ErrNotAnImage) {
		t.Fatalf("expected ErrNotAnImage for spoofed content type, got %v", err)
	}

	if called {
		t.Error("vision provider must not be called for non-image payloads")
	}
}

func TestDetectFromImage_NonFoodImage(t *testing.T) {
	mock := &testutil.MockVisionProvider{
		DetectIngredientsFunc: func(ctx context.Context, imageData []byte) (string, error) {
			return "This appears to be a vehicle, not food.", nil
		},
	}
	svc := newTestDetectionService(mock)

	_, err := svc.DetectFromImage(context.Background(), 1, "car.jpg", "image/jpeg", jpegBytes)
	if !errors.Is(err, ErrNonFoodImage) {
		t.Fatalf("expected ErrNonFoodImage, got %v", err)
	}
}

func TestDetectFromImage_FiltersNonFoodEntries(t *testing.T) {
	mock := &testutil.MockVisionProvider{
		DetectIngredientsFunc: func(ctx context.Context, imageData []byte) (string, error) {
			return `["Tomato", "person in background", "tomato", "CHEESE"]`, nil
		},
	}
	svc := newTestDetectionService(mock)

	names, err := svc.DetectFromImage(context.Background(), 1, "fridge.jpg", "image/jpeg", jpegBytes)
	if err != nil {
		t.Fatalf("DetectFromImage returned error: %v", err)
	}
	// Lowercased, deduped, person/background entry dropped.
	if len(names) != 2 || names[0] != "tomato" || names[1] != "cheese" {
		t.Errorf("unexpected ingredient list: %v", names)
	}
}

func TestDetectFromImage_AllEntriesFiltered(t *testing.T) {
	mock := &testutil.MockVisionProvider{
		DetectIngredientsFunc: func(ctx context.Context, imageData []byte) (string, error) {
			return `["person", "background blur"]`, nil
		},
	}
	svc := newTestDetectionService(mock)

	_, err := svc.DetectFromImage(context.Background(), 1, "selfie.jpg", "image/jpeg", jpegBytes)
	if !errors.Is(err, ErrNoIngredientsDetected) {
		t.Fatalf("expected ErrNoIngredientsDetected, got %v", err)
	}
}

func TestDetectFromImage_ProviderError(t *testing.T) {
	mock := &testutil.MockVisionProvider{
		DetectIngredientsFunc: func(ctx context.Context, imageData []byte) (string, error) {
			return "", fmt.Errorf("anthropic API error: overloaded")
		},
	}
	svc := newTestDetectionService(mock)

	_, err := svc.DetectFromImage(context.Background(), 1, "fridge.jpg", "image/jpeg", jpegBytes)
	if err == nil {
		t.Fatal("expected error from provider failure")
	}
}

func TestParseDetectionResponse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			"direct json array",
			`["egg", "milk"]`,
			[]string{"egg", "milk"},
		},
		{
			"fenced json array",
			"```json\n[\"egg\", \"milk\"]\n```",
			[]string{"egg", "milk"},
		},
		{
			"array embedded in prose",
			`The ingredients I can see are: ["egg", "milk"] among others.`,
			[]string{"egg", "milk"},
		},
		{
			"bulleted lines",
			"- egg\n- milk\n* cheese",
			[]string{"egg", "milk", "cheese"},
		},
		{
			"numbered lines",
			"1. egg\n2. milk",
			[]string{"egg", "milk"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDetectionResponse(tt.raw)
			if err != nil {
				t.Fatalf("parseDetectionResponse returned error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("entry %d: got %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseDetectionResponse_Empty(t *testing.T) {
	_, err := parseDetectionResponse("   \n  ")
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}
