package service

import (
	"context"
	"fmt"
	"time"

	"github.com/quangdang46/zapshop/shared/logging"

	"github.com/quangdang46/zapshop/services/zapshop-service/internal/domain"
)

// LimitViews is the subset of ViewService a limit check reads.
type LimitViews interface {
	DailyPurchases(ctx context.Context, account string, at time.Time) (domain.Object, error)
	Config(ctx context.Context) (domain.Object, error)
	UserMerchQuantity(ctx context.Context, account string, merchTypeID uint64) (domain.Object, error)
}

type crateTier struct {
	name       string
	counterKey string
	capKey     string
}

var crateTiers = map[int]crateTier{
	1: {name: "Bronze", counterKey: "bronze", capKey: "bronze_user_cap_per_day"},
	2: {name: "Silver", counterKey: "silver", capKey: "silver_user_cap_per_day"},
	3: {name: "Gold", counterKey: "gold", capKey: "gold_user_cap_per_day"},
}

// LimitService estimates whether a purchase would pass the shop's daily and
// per-season caps. The contract is authoritative: when the estimate cannot
// be computed the purchase is allowed.
type LimitService struct {
	views  LimitViews
	now    func() time.Time
	logger *logging.Logger
}

func NewLimitService(views LimitViews, logger *logging.Logger) *LimitService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &LimitService{views: views, now: time.Now, logger: logger}
}

// Check never fails; lookup errors produce the optimistic result.
func (s *LimitService) Check(ctx context.Context, account string, req domain.LimitRequest) domain.LimitResult {
	log := s.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"item":     string(req.Item),
		"quantity": req.Quantity,
	})

	daily, err := s.views.DailyPurchases(ctx, account, s.now())
	if err != nil {
		log.WithError(err).Warn("daily purchases lookup failed")
		return unverifiedLimit()
	}
	cfg, err := s.views.Config(ctx)
	if err != nil {
		log.WithError(err).Warn("config lookup failed")
		return unverifiedLimit()
	}

	switch req.Item {
	case domain.ItemCrate:
		return checkCrateLimit(daily, cfg, req)
	case domain.ItemRaffle:
		purchased := daily.Int64("raffles")
		return domain.LimitResult{
			CanBuy:    true,
			Remaining: -1,
			Limit:     -1,
			Purchased: purchased,
			Message:   fmt.Sprintf("You've purchased %d raffle ticket(s) today. (No daily limit configured)", purchased),
		}
	case domain.ItemMerch:
		return s.checkMerchLimit(ctx, account, req, log)
	default:
		return domain.LimitResult{Message: "Invalid item type"}
	}
}

func checkCrateLimit(daily, cfg domain.Object, req domain.LimitRequest) domain.LimitResult {
	if req.Tier == 0 {
		return domain.LimitResult{Message: "Tier is required for crate purchases"}
	}
	tier, ok := crateTiers[req.Tier]
	if !ok {
		return domain.LimitResult{Message: "Invalid tier. Must be 1 (Bronze), 2 (Silver), or 3 (Gold)"}
	}

	purchased := daily.Int64(tier.counterKey)
	limit := cfg.Int64(tier.capKey)
	remaining := limit - purchased
	res := domain.LimitResult{
		CanBuy:    remaining >= req.Quantity,
		Remaining: remaining,
		Limit:     limit,
		Purchased: purchased,
	}
	if res.CanBuy {
		res.Message = fmt.Sprintf("You can buy %d %s crate(s). %d remaining today.", req.Quantity, tier.name, remaining)
		return res
	}
	tail := "No more available today."
	if remaining > 0 {
		tail = fmt.Sprintf("Only %d remaining.", remaining)
	}
	res.Message = fmt.Sprintf("Daily limit reached for %s crates. You've purchased %d/%d today. %s", tier.name, purchased, limit, tail)
	return res
}

// Merch is capped at one per type per season rather than per day.
func (s *LimitService) checkMerchLimit(ctx context.Context, account string, req domain.LimitRequest, log *logging.Logger) domain.LimitResult {
	if req.MerchTypeID == nil {
		return domain.LimitResult{Message: "Merch type ID is required"}
	}

	available := domain.LimitResult{
		CanBuy:    true,
		Remaining: 1,
		Limit:     1,
		Message:   "You can buy this merchandise. Limit: 1 per season.",
	}

	held, err := s.views.UserMerchQuantity(ctx, account, *req.MerchTypeID)
	if err != nil {
		// Accounts that never bought this type have no record to read.
		log.WithError(err).Debug("merch quantity lookup failed")
		return available
	}
	owned := held.Int64("quantity")
	if owned > 0 {
		return domain.LimitResult{
			CanBuy:    false,
			Remaining: 0,
			Limit:     1,
			Purchased: owned,
			Message:   "You already own this merchandise type. Limit: 1 per season.",
		}
	}
	available.Purchased = owned
	return available
}

func unverifiedLimit() domain.LimitResult {
	return domain.LimitResult{
		CanBuy:    true,
		Remaining: -1,
		Limit:     -1,
		Purchased: -1,
		Message:   "Could not verify daily limit. Purchase will be attempted.",
	}
}
