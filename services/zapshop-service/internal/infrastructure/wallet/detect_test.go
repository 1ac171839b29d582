package wallet_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/quangdang46/zapshop/shared/errors"

	"github.com/quangdang46/zapshop/services/zapshop-service/internal/domain"
	"github.com/quangdang46/zapshop/services/zapshop-service/internal/infrastructure/wallet"
	"github.com/quangdang46/zapshop/services/zapshop-service/internal/mocks"
)

func fastDetect(attempts int) wallet.DetectConfig {
	return wallet.DetectConfig{Attempts: attempts, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func TestWaitForProvider_AppearsLate(t *testing.T) {
	p := mocks.NewMockWalletProvider(gomock.NewController(t))
	calls := 0
	locate := func(context.Context) (domain.WalletProvider, error) {
		calls++
		if calls < 3 {
			return nil, wallet.ErrNotInstalled
		}
		return p, nil
	}

	got, err := wallet.WaitForProvider(context.Background(), locate, fastDetect(5), nil)
	require.NoError(t, err)
	assert.Same(t, p, got)
	assert.Equal(t, 3, calls)
}

func TestWaitForProvider_GivesUp(t *testing.T) {
	calls := 0
	locate := func(context.Context) (domain.WalletProvider, error) {
		calls++
		return nil, nil
	}

	_, err := wallet.WaitForProvider(context.Background(), locate, fastDetect(4), nil)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeWalletUnavailable))
	assert.ErrorIs(t, err, wallet.ErrNotInstalled)
	assert.Equal(t, 4, calls)
}

func TestWaitForProvider_OtherErrorsStopImmediately(t *testing.T) {
	calls := 0
	broken := errors.New("extension crashed")
	locate := func(context.Context) (domain.WalletProvider, error) {
		calls++
		return nil, broken
	}

	_, err := wallet.WaitForProvider(context.Background(), locate, fastDetect(4), nil)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeWalletUnavailable))
	assert.Equal(t, 1, calls)
}

func TestWaitForProvider_NilLocator(t *testing.T) {
	_, err := wallet.WaitForProvider(context.Background(), nil, fastDetect(1), nil)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeWalletUnavailable))
}
