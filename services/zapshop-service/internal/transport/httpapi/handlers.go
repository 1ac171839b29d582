package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/quangdang46/zapshop/shared/errors"
	"github.com/quangdang46/zapshop/shared/logging"
	"github.com/quangdang46/zapshop/shared/metrics"
	"github.com/quangdang46/zapshop/shared/monitoring"

	"github.com/quangdang46/zapshop/services/zapshop-service/internal/domain"
)

// HistoryReader is the slice of service.HistoryService the API serves.
type HistoryReader interface {
	CrateHistory(ctx context.Context, account string, opts domain.FetchOptions) ([]domain.CratePurchase, error)
	RaffleHistory(ctx context.Context, account string, opts domain.FetchOptions) ([]domain.RafflePurchase, error)
	PrizeClaimHistory(ctx context.Context, account string, opts domain.FetchOptions) ([]domain.PrizeClaim, error)
	MerchHistory(ctx context.Context, account string, opts domain.FetchOptions) ([]domain.MerchPurchase, error)
	Summary(ctx context.Context, account string) (domain.SpendSummary, error)
}

// ShopReader serves the account-independent views.
type ShopReader interface {
	Config(ctx context.Context) (domain.Object, error)
	AllMerchDetails(ctx context.Context) ([]domain.Object, error)
}

type LimitChecker interface {
	Check(ctx context.Context, account string, req domain.LimitRequest) domain.LimitResult
}

// HealthCheck is probed by /healthz; a non-nil error marks the named dependency down.
type HealthCheck func(ctx context.Context) error

type Handler struct {
	history HistoryReader
	shop    ShopReader
	limits  LimitChecker
	checks  map[string]HealthCheck
	metrics *metrics.Metrics
	logger  *logging.Logger
}

func NewHandler(history HistoryReader, shop ShopReader, limits LimitChecker, m *metrics.Metrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{
		history: history,
		shop:    shop,
		limits:  limits,
		checks:  make(map[string]HealthCheck),
		metrics: m,
		logger:  logger,
	}
}

// AddHealthCheck registers a dependency probe for /healthz.
func (h *Handler) AddHealthCheck(name string, check HealthCheck) {
	h.checks[name] = check
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	accounts := r.Group("/accounts/:account")
	{
		accounts.GET("/crates", h.GetCrates)
		accounts.GET("/raffles", h.GetRaffles)
		accounts.GET("/prizes", h.GetPrizeClaims)
		accounts.GET("/merch", h.GetMerchPurchases)
		accounts.GET("/summary", h.GetSummary)
		accounts.GET("/limits", h.GetLimits)
	}
	r.GET("/config", h.GetConfig)
	r.GET("/merch", h.GetMerchCatalog)
}

func (h *Handler) GetCrates(c *gin.Context) {
	account, opts, ok := h.historyParams(c)
	if !ok {
		return
	}
	records, err := h.history.CrateHistory(c.Request.Context(), account, opts)
	h.respond(c, gin.H{"account": account, "crates": records}, err)
}

func (h *Handler) GetRaffles(c *gin.Context) {
	account, opts, ok := h.historyParams(c)
	if !ok {
		return
	}
	records, err := h.history.RaffleHistory(c.Request.Context(), account, opts)
	h.respond(c, gin.H{"account": account, "raffles": records}, err)
}

func (h *Handler) GetPrizeClaims(c *gin.Context) {
	account, opts, ok := h.historyParams(c)
	if !ok {
		return
	}
	records, err := h.history.PrizeClaimHistory(c.Request.Context(), account, opts)
	h.respond(c, gin.H{"account": account, "prizes": records}, err)
}

func (h *Handler) GetMerchPurchases(c *gin.Context) {
	account, opts, ok := h.historyParams(c)
	if !ok {
		return
	}
	records, err := h.history.MerchHistory(c.Request.Context(), account, opts)
	h.respond(c, gin.H{"account": account, "merch": records}, err)
}

func (h *Handler) GetSummary(c *gin.Context) {
	account, ok := h.account(c)
	if !ok {
		return
	}
	summary, err := h.history.Summary(c.Request.Context(), account)
	h.respond(c, summary, err)
}

// GetLimits answers ?item=crate|raffle|merch&quantity=N[&tier=T][&merch_type=M].
func (h *Handler) GetLimits(c *gin.Context) {
	account, ok := h.account(c)
	if !ok {
		return
	}

	req := domain.LimitRequest{Item: domain.ItemType(c.Query("item"))}
	switch req.Item {
	case domain.ItemCrate, domain.ItemRaffle, domain.ItemMerch:
	default:
		h.fail(c, apperrors.InvalidInput("item", "must be crate, raffle or merch"))
		return
	}

	quantity, err := intQuery(c, "quantity", 1)
	if err != nil {
		h.fail(c, err)
		return
	}
	req.Quantity = int64(quantity)

	tier, err := intQuery(c, "tier", 0)
	if err != nil {
		h.fail(c, err)
		return
	}
	req.Tier = tier

	if raw := c.Query("merch_type"); raw != "" {
		id, perr := strconv.ParseUint(raw, 10, 64)
		if perr != nil {
			h.fail(c, apperrors.InvalidInput("merch_type", "must be an unsigned integer"))
			return
		}
		req.MerchTypeID = &id
	}

	c.JSON(http.StatusOK, h.limits.Check(c.Request.Context(), account, req))
}

func (h *Handler) GetConfig(c *gin.Context) {
	cfg, err := h.shop.Config(c.Request.Context())
	h.respond(c, cfg, err)
}

func (h *Handler) GetMerchCatalog(c *gin.Context) {
	items, err := h.shop.AllMerchDetails(c.Request.Context())
	h.respond(c, gin.H{"merch": items}, err)
}

// Health reports 503 when any registered dependency check fails.
func (h *Handler) Health(c *gin.Context) {
	status := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(c.Request.Context()); err != nil {
			deps[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	c.JSON(status, gin.H{"status": state, "dependencies": deps})
}

func (h *Handler) account(c *gin.Context) (string, bool) {
	account := c.Param("account")
	if err := domain.ValidateAddress(account); err != nil {
		h.fail(c, apperrors.InvalidInput("account", err.Error()))
		return "", false
	}
	return account, true
}

func (h *Handler) historyParams(c *gin.Context) (string, domain.FetchOptions, bool) {
	account, ok := h.account(c)
	if !ok {
		return "", domain.FetchOptions{}, false
	}
	limit, err := intQuery(c, "limit", 0)
	if err != nil {
		h.fail(c, err)
		return "", domain.FetchOptions{}, false
	}
	pageSize, err := intQuery(c, "page_size", 0)
	if err != nil {
		h.fail(c, err)
		return "", domain.FetchOptions{}, false
	}
	return account, domain.FetchOptions{Limit: limit, PageSize: pageSize}, true
}

func intQuery(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, apperrors.InvalidInput(name, "must be a non-negative integer")
	}
	return v, nil
}

func (h *Handler) respond(c *gin.Context, body interface{}, err error) {
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, body)
}

func (h *Handler) fail(c *gin.Context, err error) {
	appErr := apperrors.Handle(err)
	h.metrics.RecordError(string(appErr.Type))

	log := h.logger.WithContext(c.Request.Context()).WithError(err)
	if appErr.StatusCode >= http.StatusInternalServerError {
		log.Error("request failed")
		monitoring.CaptureError(err, map[string]string{
			"route": c.FullPath(),
			"code":  appErr.Code,
		}, map[string]interface{}{
			"request_id": logging.GetRequestID(c.Request.Context()),
		})
	} else {
		log.Warn("request rejected")
	}

	c.AbortWithStatusJSON(appErr.StatusCode, gin.H{"error": gin.H{
		"type":    appErr.Type,
		"code":    appErr.Code,
		"message": appErr.Message,
		"details": appErr.Details,
	}})
}
