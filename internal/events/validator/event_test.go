package validator

import (
	"strings"
	"testing"
	"time"

	"eventbook/pkg/logger"
	"eventbook/pkg/model"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:   "error",
		Format:  logger.FormatJSON,
		Service: "test",
	})
}

func validEvent() *model.Event {
	return &model.Event{
		Name:        "Go Conference",
		Description: "A full day of talks",
		Date:        time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		Time:        "18:00",
		Venue:       "Convention Center",
		Category:    "Tech",
		Location:    "Berlin",
		Price:       25,
		SeatLimit:   100,
	}
}

func TestValidateCreate(t *testing.T) {
	v := NewEventValidator(testLogger())

	tests := []struct {
		name      string
		mutate    func(e *model.Event)
		wantError string
	}{
		{
			name:   "valid event",
			mutate: func(e *model.Event) {},
		},
		{
			name:   "free event",
			mutate: func(e *model.Event) { e.Price = 0 },
		},
		{
			name:      "missing name",
			mutate:    func(e *model.Event) { e.Name = "" },
			wantError: "Name is required",
		},
		{
			name:      "name too short",
			mutate:    func(e *model.Event) { e.Name = "x" },
			wantError: "Name must be at least 2 characters",
		},
		{
			name:      "missing date",
			mutate:    func(e *model.Event) { e.Date = time.Time{} },
			wantError: "Date is required",
		},
		{
			name:      "missing venue",
			mutate:    func(e *model.Event) { e.Venue = "" },
			wantError: "Venue is required",
		},
		{
			name:      "negative price",
			mutate:    func(e *model.Event) { e.Price = -1 },
			wantError: "Price",
		},
		{
			name:      "zero seat limit",
			mutate:    func(e *model.Event) { e.SeatLimit = 0 },
			wantError: "SeatLimit is required",
		},
		{
			name:      "negative seat limit",
			mutate:    func(e *model.Event) { e.SeatLimit = -5 },
			wantError: "SeatLimit must be greater than 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := validEvent()
			tt.mutate(event)

			err := v.ValidateCreate(event)
			if tt.wantError == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantError)
			}
			if !strings.Contains(err.Error(), tt.wantError) {
				t.Errorf("expected error containing %q, got %q", tt.wantError, err.Error())
			}
		})
	}
}

func TestValidateUpdate(t *testing.T) {
	v := NewEventValidator(testLogger())

	t.Run("empty update is valid", func(t *testing.T) {
		if err := v.ValidateUpdate(&model.EventUpdate{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("partial update is valid", func(t *testing.T) {
		price := 30.0
		if err := v.ValidateUpdate(&model.EventUpdate{Name: "New Name", Price: &price}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("negative price rejected", func(t *testing.T) {
		price := -3.0
		if err := v.ValidateUpdate(&model.EventUpdate{Price: &price}); err == nil {
			t.Fatal("expected error for negative price")
		}
	})

	t.Run("zero seat limit rejected", func(t *testing.T) {
		limit := int64(0)
		if err := v.ValidateUpdate(&model.EventUpdate{SeatLimit: &limit}); err == nil {
			t.Fatal("expected error for zero seat limit")
		}
	})

	t.Run("short name rejected", func(t *testing.T) {
		if err := v.ValidateUpdate(&model.EventUpdate{Name: "x"}); err == nil {
			t.Fatal("expected error for one-character name")
		}
	})
}
