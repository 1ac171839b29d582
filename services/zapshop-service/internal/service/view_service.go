package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/quangdang46/zapshop/shared/errors"
	"github.com/quangdang46/zapshop/shared/logging"
	"github.com/quangdang46/zapshop/shared/metrics"
	"github.com/quangdang46/zapshop/shared/redis"

	"github.com/quangdang46/zapshop/services/zapshop-service/internal/domain"
	"github.com/quangdang46/zapshop/services/zapshop-service/internal/infrastructure/rpc"
)

// View functions of the shop module.
const (
	viewZapBalance        = "get_zap_balance"
	viewUserInitiated     = "check_user_initiated"
	viewUserCrateDetails  = "get_user_crate_details"
	viewCrateOpened       = "check_crate_opened"
	viewPrizeAllotted     = "get_prize_alloted"
	viewAllMerchDetails   = "get_all_merch_details"
	viewUserMerchQuantity = "get_user_merch_quantity"
	viewConfigCopy        = "get_config_copy"
	viewUserCrateLimit    = "get_user_crate_limit_daily"
	viewUserInventoryFull = "get_user_inventory_full"
)

// cachedViews are the account-independent views served through the cache.
var cachedViews = []string{viewConfigCopy, viewAllMerchDetails}

// ViewService wraps the shop's read-only functions and flattens their
// results. Only account-independent results (config, merch catalog) are
// cached, and only when a cache is configured.
type ViewService struct {
	caller   domain.ViewCaller
	cache    domain.ViewCache
	contract string
	metrics  *metrics.Metrics
	logger   *logging.Logger
}

type ViewOption func(*ViewService)

func WithViewCache(cache domain.ViewCache) ViewOption {
	return func(s *ViewService) { s.cache = cache }
}

func WithViewMetrics(m *metrics.Metrics) ViewOption {
	return func(s *ViewService) { s.metrics = m }
}

func WithViewLogger(l *logging.Logger) ViewOption {
	return func(s *ViewService) { s.logger = l }
}

func NewViewService(caller domain.ViewCaller, contract string, opts ...ViewOption) *ViewService {
	s := &ViewService{
		caller:   caller,
		contract: contract,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ZapBalance returns the account's ZAP balance as decimal text.
func (s *ViewService) ZapBalance(ctx context.Context, account string) (string, error) {
	raw, err := s.call(ctx, viewZapBalance, account)
	if err != nil {
		return "", err
	}
	v, err := rpc.NormalizeScalar(raw)
	if err != nil {
		return "", err
	}
	return decimalText(v), nil
}

// UserInitiated decodes the (bool, u64) tuple. Transport and HTTP failures
// are returned; a result of the wrong shape reads as not initiated with a
// zero balance.
func (s *ViewService) UserInitiated(ctx context.Context, account string) (domain.UserStatus, error) {
	notInitiated := domain.UserStatus{Initiated: false, ZapBalance: "0"}

	raw, err := s.call(ctx, viewUserInitiated, account)
	if err != nil {
		return notInitiated, err
	}
	tuple, err := rpc.NormalizeTuple(raw)
	if err != nil || len(tuple) < 2 {
		s.logger.WithContext(ctx).WithField("result", string(raw)).Warn("unexpected check_user_initiated result")
		return notInitiated, nil
	}
	return domain.UserStatus{
		Initiated:  truthy(tuple[0]),
		ZapBalance: decimalText(tuple[1]),
	}, nil
}

// CrateDetails returns one crate owned by account. A response without a
// result is an error.
func (s *ViewService) CrateDetails(ctx context.Context, account string, crateID uint64) (domain.Object, error) {
	raw, err := s.call(ctx, viewUserCrateDetails, account, strconv.FormatUint(crateID, 10))
	if err != nil {
		return nil, err
	}
	if isNull(raw) {
		return nil, apperrors.ViewFailure(viewUserCrateDetails, "no result returned").
			WithDetails("crate_id", crateID)
	}
	return rpc.NormalizeObject(raw)
}

func (s *ViewService) CrateOpened(ctx context.Context, account string, crateID uint64) (bool, error) {
	raw, err := s.call(ctx, viewCrateOpened, account, strconv.FormatUint(crateID, 10))
	if err != nil {
		return false, err
	}
	v, err := rpc.NormalizeScalar(raw)
	if err != nil {
		return false, err
	}
	return truthy(v), nil
}

// PrizeAllotted returns the prize amount allotted to a crate, "0" when none.
func (s *ViewService) PrizeAllotted(ctx context.Context, account string, crateID uint64) (string, error) {
	raw, err := s.call(ctx, viewPrizeAllotted, account, strconv.FormatUint(crateID, 10))
	if err != nil {
		return "", err
	}
	v, err := rpc.NormalizeScalar(raw)
	if err != nil {
		return "", err
	}
	return decimalText(v), nil
}

// AllMerchDetails returns the merch catalog.
func (s *ViewService) AllMerchDetails(ctx context.Context) ([]domain.Object, error) {
	raw, err := s.cachedCall(ctx, viewAllMerchDetails)
	if err != nil {
		return nil, err
	}
	return rpc.NormalizeList(raw)
}

// UserMerchQuantity returns the owned-quantity record for one merch type;
// its "quantity" field is what limit checks read.
func (s *ViewService) UserMerchQuantity(ctx context.Context, account string, merchTypeID uint64) (domain.Object, error) {
	raw, err := s.call(ctx, viewUserMerchQuantity, account, strconv.FormatUint(merchTypeID, 10))
	if err != nil {
		return nil, err
	}
	return rpc.NormalizeObject(raw)
}

// Config returns the shop configuration, including per-tier daily caps.
func (s *ViewService) Config(ctx context.Context) (domain.Object, error) {
	raw, err := s.cachedCall(ctx, viewConfigCopy)
	if err != nil {
		return nil, err
	}
	return rpc.NormalizeObject(raw)
}

// DailyPurchases returns the account's purchase counters for the day
// containing at.
func (s *ViewService) DailyPurchases(ctx context.Context, account string, at time.Time) (domain.Object, error) {
	raw, err := s.call(ctx, viewUserCrateLimit, account, strconv.FormatInt(at.Unix(), 10))
	if err != nil {
		return nil, err
	}
	return rpc.NormalizeObject(raw)
}

func (s *ViewService) InventoryFull(ctx context.Context, account string) (domain.Object, error) {
	raw, err := s.call(ctx, viewUserInventoryFull, account)
	if err != nil {
		return nil, err
	}
	return rpc.NormalizeObject(raw)
}

func (s *ViewService) call(ctx context.Context, function string, args ...string) (json.RawMessage, error) {
	if len(args) > 0 && args[0] == "" {
		return nil, apperrors.InvalidInput("account", "must not be empty")
	}
	callArgs := make([]interface{}, len(args))
	for i, a := range args {
		callArgs[i] = a
	}
	return s.caller.View(ctx, domain.FunctionID(s.contract, function), nil, callArgs)
}

// cachedCall serves account-independent views through the cache. Cache
// errors never fail the call.
// Invalidate drops every cached view result so the next read goes to the
// chain. It is a no-op without a cache.
func (s *ViewService) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	keys := make([]string, 0, len(cachedViews))
	for _, function := range cachedViews {
		keys = append(keys, redis.ViewKey(s.contract, function))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("invalidate view cache: %w", err)
	}
	s.logger.WithContext(ctx).WithField("keys", len(keys)).Debug("view cache invalidated")
	return nil
}

func (s *ViewService) cachedCall(ctx context.Context, function string) (json.RawMessage, error) {
	if s.cache == nil {
		return s.call(ctx, function)
	}

	key := redis.ViewKey(s.contract, function)
	log := s.logger.WithContext(ctx).WithField("key", key)

	cached, ok, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		log.WithError(err).Warn("view cache read failed")
	case ok:
		s.metrics.RecordCache(function, true)
		return json.RawMessage(cached), nil
	}
	s.metrics.RecordCache(function, false)

	raw, err := s.call(ctx, function)
	if err != nil {
		return nil, err
	}
	stored := raw
	if len(stored) == 0 {
		stored = json.RawMessage("null")
	}
	if err := s.cache.Set(ctx, key, stored); err != nil {
		log.WithError(err).Warn("view cache write failed")
	}
	return raw, nil
}

func isNull(raw json.RawMessage) bool {
	t := strings.TrimSpace(string(raw))
	return t == "" || t == "null"
}

// truthy accepts the encodings nodes use for a Move bool.
func truthy(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true" || t == "1"
	case json.Number:
		return t.String() == "1"
	default:
		return false
	}
}

func decimalText(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return "0"
	case string:
		if t == "" {
			return "0"
		}
		return t
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
