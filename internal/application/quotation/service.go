// Package quotation is the application service behind POST /quotes: it loads
// the catalog, runs the quotation engine, and fans out the side effects
// (metrics, audit event, export record).
package quotation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/VitaQuote/internal/application/export"
	"github.com/turtacn/VitaQuote/internal/domain/catalog"
	"github.com/turtacn/VitaQuote/internal/domain/quote"
	"github.com/turtacn/VitaQuote/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/VitaQuote/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/VitaQuote/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/VitaQuote/pkg/errors"
)

// RowSource supplies the catalog snapshot for one computation; satisfied by
// both the Redis read-through cache and the bare repository.
type RowSource interface {
	Rows(ctx context.Context) ([]catalog.Row, error)
}

// EventPublisher publishes the quote.computed audit event; satisfied by
// kafka.Producer.
type EventPublisher interface {
	PublishQuoteComputed(ctx context.Context, ev kafka.QuoteComputedEvent) error
}

// Response is one computed quotation with its identity attached.
type Response struct {
	QuoteID     string       `json:"quote_id"`
	ComputedAt  time.Time    `json:"computed_at"`
	Result      quote.Result `json:"result"`
	GroupsSeen  int          `json:"groups_seen"`
	Ineligible  int          `json:"ineligible_groups"`
}

// Service computes quotations.
type Service struct {
	rows      RowSource
	publisher EventPublisher
	metrics   *prometheus.Metrics
	log       logging.Logger
	now       func() time.Time
}

// NewService builds the quotation service.  publisher and metrics may be nil;
// the computation itself never depends on them.
func NewService(rows RowSource, publisher EventPublisher, metrics *prometheus.Metrics, log logging.Logger) *Service {
	return &Service{
		rows:      rows,
		publisher: publisher,
		metrics:   metrics,
		log:       log,
		now:       time.Now,
	}
}

func validate(req quote.Request) error {
	if len(req.Ages) == 0 {
		return errors.New(errors.ErrCodeQuoteInvalidAges, "at least one beneficiary age is required")
	}
	for _, age := range req.Ages {
		if age < 0 {
			return errors.New(errors.ErrCodeQuoteInvalidAges, "ages must be non-negative")
		}
	}
	if req.MaxPrice.Cmp(req.MinPrice) < 0 {
		return errors.New(errors.ErrCodeQuoteInvalidRange, "max_price is below min_price")
	}
	return nil
}

// ComputeQuotes runs one quotation for the named operator.
//
// The audit event is best effort: a broker outage is logged and counted but
// the caller still gets their quotes.
func (s *Service) ComputeQuotes(ctx context.Context, username string, req quote.Request) (*Response, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	rows, err := s.rows.Rows(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New(errors.ErrCodeCatalogEmpty, "no price catalog has been imported")
	}

	started := s.now()
	result, stats := quote.ComputeWithStats(rows, req)
	elapsed := s.now().Sub(started)

	resp := &Response{
		QuoteID:    uuid.NewString(),
		ComputedAt: started.UTC(),
		Result:     result,
		GroupsSeen: stats.GroupsConsidered,
		Ineligible: stats.GroupsIneligible,
	}

	if s.metrics != nil {
		s.metrics.ObserveQuoteComputation(stats.GroupsPriced, stats.GroupsIneligible, elapsed)
	}

	s.publishEvent(ctx, username, req, resp)

	s.log.Info("quotation computed",
		logging.String("quote_id", resp.QuoteID),
		logging.String("username", username),
		logging.Int("current", len(result.Current)),
		logging.Int("expired", len(result.Expired)),
		logging.Duration("elapsed", elapsed),
	)
	return resp, nil
}

func (s *Service) publishEvent(ctx context.Context, username string, req quote.Request, resp *Response) {
	if s.publisher == nil {
		return
	}
	ev := kafka.QuoteComputedEvent{
		QuoteID:      resp.QuoteID,
		Username:     username,
		Ages:         req.Ages,
		CurrentCount: len(resp.Result.Current),
		ExpiredCount: len(resp.Result.Expired),
		ComputedAt:   resp.ComputedAt,
	}
	if err := s.publisher.PublishQuoteComputed(ctx, ev); err != nil {
		if s.metrics != nil {
			s.metrics.EventPublishErrors.Inc()
		}
		s.log.Warn("failed to publish quote event",
			logging.String("quote_id", resp.QuoteID),
			logging.Err(err),
		)
	}
}

// BuildRecord flattens a response into the export document.
func BuildRecord(username string, req quote.Request, resp *Response) export.Record {
	return export.Record{
		QuoteID:     resp.QuoteID,
		Username:    username,
		GeneratedAt: resp.ComputedAt,
		Ages:        req.Ages,
		MinPrice:    req.MinPrice.StringFixed(2),
		MaxPrice:    req.MaxPrice.StringFixed(2),
		Current:     resp.Result.Current,
		Expired:     resp.Result.Expired,
	}
}
