package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/maisydat/sheetbridge/internal/attribution"
	"github.com/maisydat/sheetbridge/internal/records"
	"github.com/maisydat/sheetbridge/pkg/db/models"
	"github.com/maisydat/sheetbridge/pkg/errors"
	"github.com/maisydat/sheetbridge/pkg/logger"
	"github.com/maisydat/sheetbridge/pkg/metrics"
	"github.com/maisydat/sheetbridge/pkg/sheets"
)

const (
	timestampLayout = "2006-01-02 15:04:05"
	originOrder     = "order"

	// Settings row holding the destination sheet for order exports.
	exportSettingsID = models.MappingScopeOrder
)

// Sink appends one aligned row to a spreadsheet.
type Sink interface {
	AppendRow(ctx context.Context, spreadsheetID, sheetName string, keys []string, fields map[string]string) sheets.Result
}

// SettingsRepository reads the export destination settings.
type SettingsRepository interface {
	GetSettings(ctx context.Context, formID string) (*models.FormSettings, error)
}

// Service exports completed orders to the configured sheet, once per order.
type Service interface {
	ExportCompleted(ctx context.Context, input ExportInput) ExportOutcome
}

type service struct {
	settings SettingsRepository
	mappings MappingRepository
	flags    ExportFlags
	sink     Sink
	metrics  *metrics.SinkMetrics
	logger   *logger.Logger
	now      func() time.Time
}

// ExportInput is one order-completed event with its resolved attribution.
type ExportInput struct {
	Order       Order
	Attribution attribution.HiddenFields
}

// ExportOutcome reports what happened to the order row.
type ExportOutcome struct {
	Delivered bool   `json:"delivered"`
	Duplicate bool   `json:"duplicate"`
	Message   string `json:"message"`
}

// NewService wires order export dependencies.
func NewService(settings SettingsRepository, mappings MappingRepository, flags ExportFlags, sink Sink, sinkMetrics *metrics.SinkMetrics, logg *logger.Logger) (Service, error) {
	if settings == nil {
		return nil, errors.New(errors.CodeDependency, "order settings repository required")
	}
	if mappings == nil {
		return nil, errors.New(errors.CodeDependency, "order mapping repository required")
	}
	if flags == nil {
		return nil, errors.New(errors.CodeDependency, "order export flags required")
	}
	if sink == nil {
		return nil, errors.New(errors.CodeDependency, "sheet sink required")
	}
	if logg == nil {
		return nil, errors.New(errors.CodeDependency, "orders logger required")
	}
	return &service{
		settings: settings,
		mappings: mappings,
		flags:    flags,
		sink:     sink,
		metrics:  sinkMetrics,
		logger:   logg,
		now:      time.Now,
	}, nil
}

func (s *service) ExportCompleted(ctx context.Context, input ExportInput) ExportOutcome {
	orderID := input.Order.IDString()
	ctx = s.logger.WithOrderID(ctx, orderID)

	if s.flags.AlreadyExported(ctx, orderID) {
		return ExportOutcome{Duplicate: true, Message: "order already exported"}
	}

	settings, err := s.settings.GetSettings(ctx, exportSettingsID)
	if err != nil {
		s.logger.Warn(ctx, fmt.Sprintf("order export settings lookup failed: %v", err))
		return ExportOutcome{Message: "export settings unavailable"}
	}
	if settings == nil || !settings.Enabled || settings.SpreadsheetID == "" {
		return ExportOutcome{Message: "order export not configured"}
	}

	mappings, err := s.mappings.ListMappings(ctx, models.MappingScopeOrder)
	if err != nil {
		s.logger.Warn(ctx, fmt.Sprintf("order field mappings lookup failed: %v", err))
		return ExportOutcome{Message: "field mappings unavailable"}
	}
	if len(mappings) == 0 {
		return ExportOutcome{Message: "no field mapping configured"}
	}

	rec := s.buildRecord(input, mappings)

	ctx = s.logger.WithSpreadsheetID(ctx, settings.SpreadsheetID)

	start := s.now()
	result := s.sink.AppendRow(ctx, settings.SpreadsheetID, settings.SheetName, rec.Keys(), rec.Map())
	s.metrics.ObserveDuration(originOrder, time.Since(start))

	if !result.Success {
		s.metrics.IncFailure(originOrder)
		s.logger.Warn(ctx, "order row not delivered: "+result.Message)
		return ExportOutcome{Message: result.Message}
	}

	// The flag is only set after a confirmed append so a sink failure
	// leaves the order eligible for the next completion event.
	s.flags.MarkExported(ctx, orderID)
	s.metrics.IncSuccess(originOrder)
	s.logger.Info(ctx, "order row appended")
	return ExportOutcome{Delivered: true, Message: result.Message}
}

// buildRecord lays out the row: mapped order fields in mapping order, then
// the shared metadata columns for keys the mapping left absent or empty.
func (s *service) buildRecord(input ExportInput, mappings []models.FieldMapping) *records.Record {
	rec := records.New()
	for _, m := range mappings {
		value := input.Order.FieldValue(m.SourceField)
		if value == "" {
			continue
		}
		rec.Set(m.Destination, value)
	}

	metadata := []records.Field{
		{Key: "submit-time", Value: s.now().Format(timestampLayout)},
		{Key: attribution.FieldCustomerSource, Value: input.Attribution.CustomerSource},
		{Key: attribution.FieldOrderLink, Value: input.Attribution.OrderLink},
		{Key: attribution.FieldBuyLink, Value: input.Attribution.BuyLink},
		{Key: "source", Value: "woocommerce"},
		{Key: "order_id", Value: input.Order.IDString()},
	}
	for _, m := range metadata {
		if existing, ok := rec.Get(m.Key); ok && existing != "" {
			continue
		}
		rec.Set(m.Key, m.Value)
	}
	return rec
}
