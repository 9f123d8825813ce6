package pricing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrValidation wraps request validation failures.
var ErrValidation = errors.New("invalid pricing request")

// Order is a sales order as returned by the order backend.
type Order struct {
	ID              string  `json:"id"`
	CustomerID      string  `json:"customer_id"`
	CustomerGroupID int     `json:"customer_group_id"`
	Lines           []Input `json:"lines"`
}

// PriceUpdate is a committed customer price sent back to the order backend.
type PriceUpdate struct {
	CustomerID string  `json:"customer_id"`
	SKU        string  `json:"sku"`
	Price      float64 `json:"price"`
}

// OrderBackend reads orders and stores customer prices.
type OrderBackend interface {
	FetchOrder(ctx context.Context, orderID string, customerGroupID int) (Order, error)
	SavePrice(ctx context.Context, update PriceUpdate) error
}

// LineRequest is one editable table row. Fields are lenient numbers so that
// half-typed form values degrade to zero.
type LineRequest struct {
	SKU             string `json:"sku" validate:"max=64"`
	Quantity        Number `json:"quantity"`
	UnitPrice       Number `json:"unit_price"`
	CostPrice       Number `json:"cost_price"`
	RRP             Number `json:"rrp"`
	PercentDiscount Number `json:"percent_discount"`
}

// Input converts the request row into calculator input.
func (r LineRequest) Input() Input {
	return Input{
		SKU:             strings.TrimSpace(r.SKU),
		Quantity:        r.Quantity.Float(),
		UnitPrice:       r.UnitPrice.Float(),
		CostPrice:       r.CostPrice.Float(),
		RRP:             r.RRP.Float(),
		PercentDiscount: r.PercentDiscount.Float(),
	}
}

// CalculateRequest recomputes a set of rows.
type CalculateRequest struct {
	TaxInclusive bool          `json:"tax_inclusive"`
	Commit       bool          `json:"commit"`
	Lines        []LineRequest `json:"lines" validate:"min=1,max=500,dive"`
}

// SavePriceRequest commits a discounted price for one SKU.
type SavePriceRequest struct {
	SKU             string `json:"sku" validate:"required,max=64"`
	UnitPrice       Number `json:"unit_price"`
	CostPrice       Number `json:"cost_price"`
	RRP             Number `json:"rrp"`
	PercentDiscount Number `json:"percent_discount"`
}

// PricedLine is a computed line with its display strings.
type PricedLine struct {
	Line
	Display LineDisplay `json:"display"`
}

// SummaryDisplay carries formatted order totals.
type SummaryDisplay struct {
	SubtotalExGST string `json:"subtotal_ex_gst"`
	GST           string `json:"gst"`
	TotalIncGST   string `json:"total_inc_gst"`
	GPPExGST      string `json:"gpp_ex_gst"`
}

// Quote is the priced view of a set of lines.
type Quote struct {
	OrderID    string         `json:"order_id,omitempty"`
	CustomerID string         `json:"customer_id,omitempty"`
	Lines      []PricedLine   `json:"lines"`
	Summary    Summary        `json:"summary"`
	Display    SummaryDisplay `json:"display"`
}

// SaveRecorder counts saved customer prices.
type SaveRecorder interface {
	RecordSavedPrice(highlight string)
}

// Service prices ad-hoc rows and backend orders.
type Service struct {
	backend  OrderBackend
	tax      TaxModel
	validate *validator.Validate
	logger   *slog.Logger
	recorder SaveRecorder
}

// NewService constructs the pricing service. Backend orders are priced with
// the given tax model.
func NewService(backend OrderBackend, tax TaxModel, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{backend: backend, tax: tax, validate: validator.New(), logger: logger}
}

// WithRecorder attaches a metrics recorder for saved prices.
func (s *Service) WithRecorder(r SaveRecorder) *Service {
	s.recorder = r
	return s
}

// Calculate prices posted rows.
func (s *Service) Calculate(req CalculateRequest) (Quote, error) {
	if err := s.validate.Struct(req); err != nil {
		return Quote{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	tax := TaxExclusive
	if req.TaxInclusive {
		tax = TaxInclusive
	}
	lines := make([]Line, 0, len(req.Lines))
	for _, row := range req.Lines {
		if req.Commit {
			lines = append(lines, Commit(row.Input(), tax))
			continue
		}
		lines = append(lines, Compute(row.Input(), tax))
	}
	return buildQuote(lines), nil
}

// Order fetches an order for a customer group and prices every line.
func (s *Service) Order(ctx context.Context, orderID string, customerGroupID int) (Quote, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return Quote{}, fmt.Errorf("%w: order id required", ErrValidation)
	}
	if customerGroupID < 0 {
		return Quote{}, fmt.Errorf("%w: customer group must not be negative", ErrValidation)
	}
	if s.backend == nil {
		return Quote{}, errors.New("pricing: order backend not configured")
	}
	order, err := s.backend.FetchOrder(ctx, orderID, customerGroupID)
	if err != nil {
		return Quote{}, fmt.Errorf("fetch order %s: %w", orderID, err)
	}
	quote := buildQuote(ComputeAll(order.Lines, s.tax))
	quote.OrderID = order.ID
	quote.CustomerID = order.CustomerID
	return quote, nil
}

// SavePrice commits a discounted price for a customer and sends it to the
// backend. The committed line is returned.
func (s *Service) SavePrice(ctx context.Context, customerID string, req SavePriceRequest) (PricedLine, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return PricedLine{}, fmt.Errorf("%w: customer id required", ErrValidation)
	}
	if err := s.validate.Struct(req); err != nil {
		return PricedLine{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if s.backend == nil {
		return PricedLine{}, errors.New("pricing: order backend not configured")
	}
	line := Commit(Input{
		SKU:             strings.TrimSpace(req.SKU),
		Quantity:        1,
		UnitPrice:       req.UnitPrice.Float(),
		CostPrice:       req.CostPrice.Float(),
		RRP:             req.RRP.Float(),
		PercentDiscount: req.PercentDiscount.Float(),
	}, s.tax)
	update := PriceUpdate{CustomerID: customerID, SKU: line.SKU, Price: line.UnitPriceDiscounted}
	if err := s.backend.SavePrice(ctx, update); err != nil {
		return PricedLine{}, fmt.Errorf("save price %s for %s: %w", line.SKU, customerID, err)
	}
	if s.recorder != nil {
		s.recorder.RecordSavedPrice(string(line.Highlight))
	}
	s.logger.Info("customer price saved",
		slog.String("customer_id", customerID),
		slog.String("sku", line.SKU),
		slog.Float64("price", line.UnitPriceDiscounted),
		slog.String("highlight", string(line.Highlight)))
	return PricedLine{Line: line, Display: line.Display()}, nil
}

func buildQuote(lines []Line) Quote {
	priced := make([]PricedLine, 0, len(lines))
	for _, l := range lines {
		priced = append(priced, PricedLine{Line: l, Display: l.Display()})
	}
	summary := Summarize(lines)
	return Quote{
		Lines:   priced,
		Summary: summary,
		Display: SummaryDisplay{
			SubtotalExGST: FormatMoney(summary.SubtotalExGST),
			GST:           FormatMoney(summary.GST),
			TotalIncGST:   FormatMoney(summary.TotalIncGST),
			GPPExGST:      FormatPercent(summary.GPPExGST, 2),
		},
	}
}
