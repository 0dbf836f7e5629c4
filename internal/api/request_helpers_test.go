package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zapzatron/ToDo-List-API/internal/api/shared"
	"github.com/Zapzatron/ToDo-List-API/internal/domain"
)

func requestWithParam(name, value string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(name, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestGetPathID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   string
		want    int64
		wantErr bool
	}{
		{"valid", "42", 42, false},
		{"max int64", "9223372036854775807", 9223372036854775807, false},
		{"missing", "", 0, true},
		{"not a number", "abc", 0, true},
		{"zero", "0", 0, true},
		{"negative", "-1", 0, true},
		{"overflow", "9223372036854775808", 0, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := getPathID(requestWithParam(TaskIDParam, tt.value), TaskIDParam)
			if tt.wantErr {
				assert.True(t, domain.IsValidationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetPage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		query   string
		want    domain.Page
		wantErr bool
	}{
		{"", domain.Page{Skip: 0, Limit: domain.DefaultPageLimit}, false},
		{"?skip=5&limit=20", domain.Page{Skip: 5, Limit: 20}, false},
		{"?limit=1000", domain.Page{Skip: 0, Limit: domain.MaxPageLimit}, false},
		{"?skip=-1", domain.Page{}, true},
		{"?limit=0", domain.Page{}, true},
		{"?skip=x", domain.Page{}, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.query, func(t *testing.T) {
			t.Parallel()
			page, err := getPage(httptest.NewRequest(http.MethodPost, "/tasks/read_tasks"+tt.query, nil))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, page)
		})
	}
}

func TestGetActorFromContext(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	_, ok := getActorFromContext(req)
	assert.False(t, ok)

	actor := domain.Actor{ID: 3, Username: "carol"}
	req = req.WithContext(shared.WithActor(req.Context(), actor))
	got, ok := getActorFromContext(req)
	assert.True(t, ok)
	assert.Equal(t, actor, got)
}
