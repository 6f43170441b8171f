package errhttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	auctiondomain "github.com/ghuser/auctionhouse/services/auction/domain"
	userdomain "github.com/ghuser/auctionhouse/services/user/domain"
)

func TestWriteError_StatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"ErrAuctionNotFound", auctiondomain.ErrAuctionNotFound, http.StatusNotFound},
		{"ErrUserNotFound", userdomain.ErrUserNotFound, http.StatusNotFound},
		{"ErrInvalidAuction", fmt.Errorf("%w: closing time must be in the future", auctiondomain.ErrInvalidAuction), http.StatusUnprocessableEntity},
		{"ErrInvalidAmount", auctiondomain.ErrInvalidAmount, http.StatusUnprocessableEntity},
		{"ErrInvalidUser", userdomain.ErrInvalidUser, http.StatusUnprocessableEntity},
		{"ErrAuctionClosed", fmt.Errorf("place bid: %w", auctiondomain.ErrAuctionClosed), http.StatusConflict},
		{"BidTooLowError", &auctiondomain.BidTooLowError{CurrentBid: decimal.NewFromInt(15)}, http.StatusConflict},
		{"ErrSelfBid", auctiondomain.ErrSelfBid, http.StatusForbidden},
		{"ErrConflict", auctiondomain.ErrConflict, http.StatusConflict},
		{"ErrStoreUnavailable", auctiondomain.ErrStoreUnavailable, http.StatusServiceUnavailable},
		{"ErrUserAlreadyExists", userdomain.ErrUserAlreadyExists, http.StatusConflict},
		{"ErrInvalidCredentials", userdomain.ErrInvalidCredentials, http.StatusUnauthorized},
		{"unknown error", errors.New("something unexpected"), http.StatusInternalServerError},
		{"generic wrapped error", fmt.Errorf("context: %w", errors.New("db down")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.err)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func TestWriteError_BidTooLowBody(t *testing.T) {
	w := httptest.NewRecorder()
	err := fmt.Errorf("place bid: %w", &auctiondomain.BidTooLowError{CurrentBid: decimal.RequireFromString("15")})
	WriteError(w, err)

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response body is not valid JSON: %v", err)
	}
	if body["current_bid"] != 15.0 {
		t.Fatalf("expected current_bid 15, got %v", body["current_bid"])
	}
	if body["error"] != "bid must be higher than the current bid (15.00)" {
		t.Fatalf("unexpected error message %v", body["error"])
	}
}

func TestWriteError_RetryableBody(t *testing.T) {
	for _, err := range []error{auctiondomain.ErrConflict, auctiondomain.ErrStoreUnavailable} {
		w := httptest.NewRecorder()
		WriteError(w, err)

		var body map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("response body is not valid JSON: %v", err)
		}
		if body["retryable"] != true {
			t.Fatalf("expected retryable=true for %v, got %v", err, body)
		}
	}
}

func TestWriteError_HidesInternalErrorsInProduction(t *testing.T) {
	Production = true
	defer func() { Production = false }()

	w := httptest.NewRecorder()
	WriteError(w, errors.New("pq: relation does not exist"))

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response body is not valid JSON: %v", err)
	}
	if body["error"] != http.StatusText(http.StatusInternalServerError) {
		t.Fatalf("internal error leaked: %q", body["error"])
	}

	w = httptest.NewRecorder()
	WriteError(w, auctiondomain.ErrSelfBid)
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response body is not valid JSON: %v", err)
	}
	if body["error"] != auctiondomain.ErrSelfBid.Error() {
		t.Fatalf("client error should be shown, got %q", body["error"])
	}
}

func TestWriteError_ContentType(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, auctiondomain.ErrAuctionNotFound)

	ct := w.Header().Get("Content-Type")
	if ct == "" {
		t.Fatal("Content-Type header not set")
	}
}
