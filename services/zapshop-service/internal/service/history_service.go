package service

import (
	"context"
	"strings"
	"time"

	apperrors "github.com/quangdang46/zapshop/shared/errors"
	"github.com/quangdang46/zapshop/shared/logging"
	"github.com/quangdang46/zapshop/shared/metrics"

	"github.com/quangdang46/zapshop/services/zapshop-service/internal/domain"
)

// Defaults applied to prize and merch history, which are short lists.
const (
	shortHistoryLimit    = 100
	shortHistoryPageSize = 100
)

// HistoryService reads an account's shop activity from the event stream.
// It keeps no state between calls; concurrent use is safe as long as the
// EventSource is.
type HistoryService struct {
	source   domain.EventSource
	contract string
	metrics  *metrics.Metrics
	logger   *logging.Logger
}

func NewHistoryService(source domain.EventSource, contract string, m *metrics.Metrics, logger *logging.Logger) *HistoryService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &HistoryService{
		source:   source,
		contract: contract,
		metrics:  m,
		logger:   logger,
	}
}

// FetchPage walks the cursor chain of eventType and returns, in upstream
// order, at most opts.Limit rows whose event.data.user matches account
// case-insensitively.
//
// It stops when the limit is reached, when the server returns no next cursor,
// or when a page comes back empty. A cancelled ctx yields an ABORTED error and
// no partial result.
func (s *HistoryService) FetchPage(ctx context.Context, eventType, account string, opts domain.FetchOptions) ([]domain.EventEnvelope, error) {
	opts = opts.WithDefaults(domain.DefaultFetchLimit, domain.DefaultFetchPageSize)
	if account == "" {
		return nil, apperrors.InvalidInput("account", "must not be empty")
	}

	start := time.Now()
	event := shortEventName(eventType)
	collected := make([]domain.EventEnvelope, 0)
	cursor := ""
	pages := 0

	for len(collected) < opts.Limit {
		if err := ctx.Err(); err != nil {
			return nil, apperrors.Aborted(err)
		}

		page, err := s.source.EventsPage(ctx, eventType, min(opts.PageSize, opts.Limit-len(collected)), cursor)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, apperrors.Aborted(ctxErr)
			}
			return nil, err
		}
		pages++

		matched := 0
		for _, row := range page.Data {
			if row.BelongsTo(account) {
				collected = append(collected, row)
				matched++
			}
		}
		s.metrics.RecordPage(event, matched)

		if page.NextCursor == "" || len(page.Data) == 0 {
			break
		}
		cursor = page.NextCursor
	}

	// A page can match more rows than requested when the server ignores limit.
	if len(collected) > opts.Limit {
		collected = collected[:opts.Limit]
	}

	s.logger.WithContext(ctx).Performance("fetch_events", time.Since(start), map[string]interface{}{
		"event":   event,
		"pages":   pages,
		"records": len(collected),
	})
	return collected, nil
}

// CrateHistory returns the account's crate purchases.
func (s *HistoryService) CrateHistory(ctx context.Context, account string, opts domain.FetchOptions) ([]domain.CratePurchase, error) {
	rows, err := s.FetchPage(ctx, domain.EventType(s.contract, domain.EventCratePurchased), account, opts)
	if err != nil {
		return nil, err
	}
	return MapCratePurchases(rows)
}

// RaffleHistory returns one record per raffle ticket bought by the account.
func (s *HistoryService) RaffleHistory(ctx context.Context, account string, opts domain.FetchOptions) ([]domain.RafflePurchase, error) {
	rows, err := s.FetchPage(ctx, domain.EventType(s.contract, domain.EventRafflesPurchased), account, opts)
	if err != nil {
		return nil, err
	}
	return MapRafflePurchases(rows)
}

func (s *HistoryService) PrizeClaimHistory(ctx context.Context, account string, opts domain.FetchOptions) ([]domain.PrizeClaim, error) {
	opts = opts.WithDefaults(shortHistoryLimit, shortHistoryPageSize)
	rows, err := s.FetchPage(ctx, domain.EventType(s.contract, domain.EventCratePrizeClaimed), account, opts)
	if err != nil {
		return nil, err
	}
	return MapPrizeClaims(rows)
}

func (s *HistoryService) MerchHistory(ctx context.Context, account string, opts domain.FetchOptions) ([]domain.MerchPurchase, error) {
	opts = opts.WithDefaults(shortHistoryLimit, shortHistoryPageSize)
	rows, err := s.FetchPage(ctx, domain.EventType(s.contract, domain.EventMerchPurchased), account, opts)
	if err != nil {
		return nil, err
	}
	return MapMerchPurchases(rows)
}

func shortEventName(eventType string) string {
	if i := strings.LastIndex(eventType, "::"); i >= 0 {
		return eventType[i+2:]
	}
	return eventType
}
