package httpx_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ghuser/auctionhouse/pkg/httpx"
)

func TestParsePage(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    httpx.Page
		wantErr bool
	}{
		{"defaults", "", httpx.Page{Limit: httpx.DefaultPageLimit}, false},
		{"explicit", "?limit=10&offset=20", httpx.Page{Limit: 10, Offset: 20}, false},
		{"zero limit uses default", "?limit=0", httpx.Page{Limit: httpx.DefaultPageLimit}, false},
		{"clamped limit", "?limit=1000", httpx.Page{Limit: httpx.MaxPageLimit}, false},
		{"negative limit", "?limit=-1", httpx.Page{}, true},
		{"negative offset", "?offset=-5", httpx.Page{}, true},
		{"non numeric", "?limit=abc", httpx.Page{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/auctions"+tt.query, http.NoBody)
			got, err := httpx.ParsePage(r)
			if tt.wantErr {
				if !errors.Is(err, httpx.ErrInvalidPagination) {
					t.Fatalf("expected ErrInvalidPagination, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}
