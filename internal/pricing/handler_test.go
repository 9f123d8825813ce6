package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleanline/opsdesk/internal/platform/httpx"
)

type stubBackend struct {
	mu     sync.Mutex
	orders map[string]Order
	saved  []PriceUpdate
	err    error
	groups []int
}

func (s *stubBackend) FetchOrder(ctx context.Context, orderID string, customerGroupID int) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups = append(s.groups, customerGroupID)
	if s.err != nil {
		return Order{}, s.err
	}
	order, ok := s.orders[orderID]
	if !ok {
		return Order{}, fmt.Errorf("order %s: %w", orderID, httpx.ErrNotFound)
	}
	return order, nil
}

func (s *stubBackend) SavePrice(ctx context.Context, update PriceUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, update)
	return nil
}

func newTestRouter(backend *stubBackend) http.Handler {
	r := chi.NewRouter()
	r.Route("/pricing", NewHandler(nil, NewService(backend, TaxExclusive, nil)).MountRoutes)
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestCalculateEndpoint(t *testing.T) {
	router := newTestRouter(&stubBackend{})
	body := `{"lines":[
		{"sku":"DET-5L","quantity":"2","unit_price":"100","cost_price":"50","rrp":"110","percent_discount":""},
		{"sku":"MOP","quantity":1,"unit_price":"12.5abc","cost_price":11,"rrp":null,"percent_discount":0}
	]}`
	rr := do(t, router, http.MethodPost, "/pricing/calculate", body)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var quote Quote
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &quote))
	require.Len(t, quote.Lines, 2)
	assert.Equal(t, HighlightEqualPrice, quote.Lines[0].Highlight)
	assert.Equal(t, "0.00%", quote.Lines[0].Display.AccumulatedDiscount)
	assert.Equal(t, 12.5, quote.Lines[1].UnitPrice)
	assert.Equal(t, HighlightLowGPP, quote.Lines[1].Highlight)
	assert.Equal(t, "N/A", quote.Lines[1].Display.AccumulatedDiscount)
	assert.Equal(t, 212.5, quote.Summary.SubtotalExGST)
	assert.Equal(t, "$212.50", quote.Display.SubtotalExGST)
}

func TestCalculateEndpointCommitClamps(t *testing.T) {
	router := newTestRouter(&stubBackend{})
	body := `{"commit":true,"lines":[{"unit_price":"40","percent_discount":"150"}]}`
	rr := do(t, router, http.MethodPost, "/pricing/calculate", body)
	require.Equal(t, http.StatusOK, rr.Code)

	var quote Quote
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &quote))
	assert.Equal(t, 100.0, quote.Lines[0].PercentDiscount)
	assert.Equal(t, "0.000", quote.Lines[0].Display.UnitPriceDiscounted)
}

func TestCalculateEndpointRejectsEmptyLines(t *testing.T) {
	router := newTestRouter(&stubBackend{})
	rr := do(t, router, http.MethodPost, "/pricing/calculate", `{"lines":[]}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))

	rr = do(t, router, http.MethodPost, "/pricing/calculate", `{"rows":[]}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestOrderEndpoint(t *testing.T) {
	backend := &stubBackend{orders: map[string]Order{
		"SO-77": {ID: "SO-77", CustomerID: "C-10", Lines: []Input{
			{SKU: "DET-5L", Quantity: 3, UnitPrice: 20, CostPrice: 10, RRP: 33},
		}},
	}}
	router := newTestRouter(backend)

	rr := do(t, router, http.MethodGet, "/pricing/orders/SO-77?customer_group=4", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var quote Quote
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &quote))
	assert.Equal(t, "SO-77", quote.OrderID)
	assert.Equal(t, "C-10", quote.CustomerID)
	require.Len(t, quote.Lines, 1)
	assert.Equal(t, 60.0, quote.Lines[0].TotalExGST)
	assert.Equal(t, HighlightLowerPrice, quote.Lines[0].Highlight)
	assert.Equal(t, []int{4}, backend.groups)

	rr = do(t, router, http.MethodGet, "/pricing/orders/SO-404", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, router, http.MethodGet, "/pricing/orders/SO-77?customer_group=-1", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestOrderEndpointBackendUnavailable(t *testing.T) {
	backend := &stubBackend{err: fmt.Errorf("dial: %w", httpx.ErrUnavailable)}
	rr := do(t, newTestRouter(backend), http.MethodGet, "/pricing/orders/SO-1", "")
	assert.Equal(t, http.StatusBadGateway, rr.Code)
}

func TestSavePriceEndpoint(t *testing.T) {
	backend := &stubBackend{}
	router := newTestRouter(backend)

	body := `{"sku":"DET-5L","unit_price":"50","cost_price":"30","rrp":"66","percent_discount":"-5"}`
	rr := do(t, router, http.MethodPost, "/pricing/customers/C-10/prices", body)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var line PricedLine
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &line))
	assert.Equal(t, 0.0, line.PercentDiscount)
	assert.Equal(t, 50.0, line.UnitPriceDiscounted)
	require.Len(t, backend.saved, 1)
	assert.Equal(t, PriceUpdate{CustomerID: "C-10", SKU: "DET-5L", Price: 50}, backend.saved[0])

	rr = do(t, router, http.MethodPost, "/pricing/customers/C-10/prices", `{"unit_price":"50"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Len(t, backend.saved, 1)
}

func TestSavePriceBackendFailure(t *testing.T) {
	backend := &stubBackend{err: errors.New("boom")}
	rr := do(t, newTestRouter(backend), http.MethodPost, "/pricing/customers/C-1/prices", `{"sku":"X","unit_price":"5"}`)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
