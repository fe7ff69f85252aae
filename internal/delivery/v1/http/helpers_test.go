package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToHTTPResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"validation", e.Wrap("op", e.NewValidationError("Name is required")), http.StatusBadRequest, "Name is required"},
		{"stock", e.Wrap("op", e.NewStockError("Mouse", 1)), http.StatusBadRequest, "Not enough stock for Mouse. Available: 1"},
		{"unauthenticated", e.ErrInvalidToken, http.StatusUnauthorized, "Invalid or expired token"},
		{"forbidden", e.Wrap("op", e.ErrAccessDenied), http.StatusForbidden, "Access denied"},
		{"not found", e.Wrap("op", e.ErrOrderNotFound), http.StatusNotFound, "Order not found"},
		{"joined", errors.Join(e.ErrInvalidJSON, errors.New("unexpected EOF")), http.StatusBadRequest, "Invalid JSON body"},
		{"internal", errors.New("pq: connection reset"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			code, msg := ToHTTPResponse(tt.err)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}

func TestPriceToCents(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    int64
		wantErr error
	}{
		{"0", 0, nil},
		{"10", 1000, nil},
		{"599.99", 59999, nil},
		{"10.50", 1050, nil},
		{"10.500", 1050, nil},
		{"10.505", 0, e.ErrPricePrecision},
		{"-1", 0, e.ErrInvalidPrice},
		{"1000000000.01", 0, e.ErrInvalidPrice},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := priceToCents(decimal.RequireFromString(tt.in))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPriceMarshalsAsNumber(t *testing.T) {
	t.Parallel()

	out, err := json.Marshal(CartResponse{Items: []CartItemResponse{}, Total: Price(2500)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[],"total":25.00}`, string(out))
	assert.Contains(t, string(out), `"total":25.00`)
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	decode := func(body string) error {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		var req RegisterRequest
		return decodeJSON(httptest.NewRecorder(), r, &req)
	}

	require.NoError(t, decode(`{"email":"a@b.c","password":"secret","name":"A","extra":1}`))

	err := decode(``)
	assert.ErrorIs(t, err, e.ErrInvalidJSON)

	err = decode(`{"email":`)
	assert.ErrorIs(t, err, e.ErrInvalidJSON)

	err = decode(`{"email":"not-an-email"}`)
	_, msg := ToHTTPResponse(err)
	assert.Equal(t, "email must be a valid email", msg)

	err = decode(`{"name":"` + strings.Repeat("x", 256) + `"}`)
	_, msg = ToHTTPResponse(err)
	assert.Equal(t, "name must be at most 255 characters", msg)

	err = decode(`{"name":"` + strings.Repeat("x", maxJSONBodySize) + `"}`)
	_, msg = ToHTTPResponse(err)
	assert.Equal(t, "Request body too large", msg)
}

func TestDecodeJSONQuantityCaps(t *testing.T) {
	t.Parallel()

	decode := func(body string, dst any) error {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		return decodeJSON(httptest.NewRecorder(), r, dst)
	}

	require.NoError(t, decode(`{"stock":1000000}`, &ProductRequest{}))
	require.NoError(t, decode(`{"quantity":1000000}`, &UpdateCartItemRequest{}))

	err := decode(`{"stock":9223372036854775807}`, &ProductRequest{})
	_, msg := ToHTTPResponse(err)
	assert.Equal(t, "stock must be less than or equal to 1000000", msg)

	err = decode(`{"quantity":2147483648}`, &AddCartItemRequest{})
	_, msg = ToHTTPResponse(err)
	assert.Equal(t, "quantity must be less than or equal to 1000000", msg)

	err = decode(`{"quantity":1000001}`, &UpdateCartItemRequest{})
	_, msg = ToHTTPResponse(err)
	assert.Equal(t, "quantity must be less than or equal to 1000000", msg)
}
