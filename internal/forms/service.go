package forms

import (
	"context"
	"fmt"
	"time"

	"github.com/maisydat/sheetbridge/internal/attribution"
	"github.com/maisydat/sheetbridge/internal/records"
	"github.com/maisydat/sheetbridge/pkg/errors"
	"github.com/maisydat/sheetbridge/pkg/logger"
	"github.com/maisydat/sheetbridge/pkg/metrics"
	"github.com/maisydat/sheetbridge/pkg/sheets"
)

const (
	timestampLayout = "2006-01-02 15:04:05"
	originForm      = "form"
)

// Sink appends one aligned row to a spreadsheet.
type Sink interface {
	AppendRow(ctx context.Context, spreadsheetID, sheetName string, keys []string, fields map[string]string) sheets.Result
}

// Service handles form submissions: assemble the row, enrich it with
// attribution metadata, and forward it to the configured sheet.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) SubmitOutcome
}

type service struct {
	repo    Repository
	sink    Sink
	metrics *metrics.SinkMetrics
	logger  *logger.Logger
	now     func() time.Time
}

// SubmitInput is one submission event with its resolved attribution values.
type SubmitInput struct {
	FormID      string
	Fields      map[string]any
	Attribution attribution.HiddenFields
	SubmitterIP string
}

// SubmitOutcome reports what happened to the row. The submission itself
// always succeeds; Delivered only describes the sink side.
type SubmitOutcome struct {
	Delivered bool   `json:"delivered"`
	Message   string `json:"message"`
}

// NewService wires form submission dependencies.
func NewService(repo Repository, sink Sink, sinkMetrics *metrics.SinkMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, errors.New(errors.CodeDependency, "forms repository required")
	}
	if sink == nil {
		return nil, errors.New(errors.CodeDependency, "sheet sink required")
	}
	if logg == nil {
		return nil, errors.New(errors.CodeDependency, "forms logger required")
	}
	return &service{
		repo:    repo,
		sink:    sink,
		metrics: sinkMetrics,
		logger:  logg,
		now:     time.Now,
	}, nil
}

func (s *service) Submit(ctx context.Context, input SubmitInput) SubmitOutcome {
	ctx = s.logger.WithFormID(ctx, input.FormID)

	settings, err := s.repo.GetSettings(ctx, input.FormID)
	if err != nil {
		// A settings read failure must not fail the submission.
		s.logger.Warn(ctx, fmt.Sprintf("form settings lookup failed: %v", err))
		return SubmitOutcome{Message: "export settings unavailable"}
	}
	if settings == nil || !settings.Enabled || settings.SpreadsheetID == "" {
		return SubmitOutcome{Message: "form not configured for export"}
	}

	meta := []records.Field{
		{Key: "submit-time", Value: s.now().Format(timestampLayout)},
		{Key: attribution.FieldCustomerSource, Value: input.Attribution.CustomerSource},
		{Key: attribution.FieldOrderLink, Value: input.Attribution.OrderLink},
		{Key: attribution.FieldBuyLink, Value: input.Attribution.BuyLink},
	}
	if input.SubmitterIP != "" {
		meta = append(meta, records.Field{Key: "submitter-ip", Value: input.SubmitterIP})
	}
	rec := records.Assemble(input.Fields, meta)

	ctx = s.logger.WithSpreadsheetID(ctx, settings.SpreadsheetID)

	start := s.now()
	result := s.sink.AppendRow(ctx, settings.SpreadsheetID, settings.SheetName, rec.Keys(), rec.Map())
	s.metrics.ObserveDuration(originForm, time.Since(start))

	if !result.Success {
		s.metrics.IncFailure(originForm)
		s.logger.Warn(ctx, "submission row not delivered: "+result.Message)
		return SubmitOutcome{Message: result.Message}
	}

	s.metrics.IncSuccess(originForm)
	s.logger.Info(ctx, "submission row appended")
	return SubmitOutcome{Delivered: true, Message: result.Message}
}
