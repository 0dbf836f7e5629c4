package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestNewTask(t *testing.T) {
	task, err := NewTask("t", "d", 1)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if task.Title != "t" || task.Description != "d" || task.OwnerID != 1 {
		t.Errorf("Unexpected task %+v", task)
	}

	if _, err := NewTask("title", "", 1); err != nil {
		t.Errorf("Expected empty description to be accepted, got %v", err)
	}
}

func TestTaskValidate(t *testing.T) {
	tests := []struct {
		name    string
		task    Task
		wantErr error
	}{
		{"missing owner", Task{Title: "t"}, ErrInvalidID},
		{"negative owner", Task{Title: "t", OwnerID: -3}, ErrInvalidID},
		{"empty title", Task{OwnerID: 1}, ErrEmptyContent},
		{"long title", Task{Title: strings.Repeat("x", MaxTitleLength+1), OwnerID: 1}, ErrContentTooLong},
		{
			"long description",
			Task{Title: "t", Description: strings.Repeat("x", MaxDescriptionLength+1), OwnerID: 1},
			ErrContentTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.task.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
			if !errors.Is(err, ErrValidation) {
				t.Errorf("Expected error to wrap ErrValidation, got %v", err)
			}
		})
	}
}

func TestPageNormalize(t *testing.T) {
	tests := []struct {
		in   Page
		want Page
	}{
		{Page{}, Page{Skip: 0, Limit: DefaultPageLimit}},
		{Page{Skip: -5, Limit: 3}, Page{Skip: 0, Limit: 3}},
		{Page{Skip: 20, Limit: 1000}, Page{Skip: 20, Limit: MaxPageLimit}},
		{DefaultPage(), Page{Skip: 0, Limit: 10}},
	}

	for _, tt := range tests {
		if got := tt.in.Normalize(); got != tt.want {
			t.Errorf("Normalize(%+v) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}
