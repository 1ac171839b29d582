package wallet

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/quangdang46/zapshop/shared/errors"
	"github.com/quangdang46/zapshop/shared/logging"
	"github.com/quangdang46/zapshop/shared/resilience"

	"github.com/quangdang46/zapshop/services/zapshop-service/internal/domain"
)

// ErrNotInstalled is returned by a Locator while no provider is present yet.
var ErrNotInstalled = errors.New("wallet provider not installed")

// Locator looks up the wallet provider once. It returns ErrNotInstalled when
// the wallet has not (yet) been injected.
type Locator func(ctx context.Context) (domain.WalletProvider, error)

// DetectConfig bounds how long detection keeps looking.
type DetectConfig struct {
	Attempts     int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

func DefaultDetectConfig() DetectConfig {
	return DetectConfig{
		Attempts:     6,
		InitialDelay: 250 * time.Millisecond,
		MaxDelay:     2 * time.Second,
	}
}

// WaitForProvider retries locate with backoff until a provider shows up or the
// attempts run out. It returns WALLET_UNAVAILABLE on failure.
func WaitForProvider(ctx context.Context, locate Locator, cfg DetectConfig, logger *logging.Logger) (domain.WalletProvider, error) {
	if locate == nil {
		return nil, apperrors.WalletUnavailable()
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	var provider domain.WalletProvider
	retryCfg := resilience.DefaultRetryConfig()
	retryCfg.MaxAttempts = cfg.Attempts
	retryCfg.InitialDelay = cfg.InitialDelay
	retryCfg.MaxDelay = cfg.MaxDelay
	retryCfg.RetryableErrors = func(err error) bool {
		return errors.Is(err, ErrNotInstalled)
	}
	retryCfg.OnRetry = func(attempt int, delay time.Duration, _ error) {
		logger.WithFields(map[string]interface{}{
			"attempt": attempt,
			"delay":   delay.String(),
		}).Debug("wallet provider not found yet")
	}

	err := resilience.RetryWithConfig(ctx, retryCfg, func(ctx context.Context) error {
		p, err := locate(ctx)
		if err != nil {
			return err
		}
		if p == nil {
			return ErrNotInstalled
		}
		provider = p
		return nil
	})
	if err != nil {
		return nil, apperrors.WalletUnavailable().WithCause(err)
	}
	return provider, nil
}
