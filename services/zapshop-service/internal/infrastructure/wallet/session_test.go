package wallet_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/quangdang46/zapshop/shared/errors"

	"github.com/quangdang46/zapshop/services/zapshop-service/internal/domain"
	"github.com/quangdang46/zapshop/services/zapshop-service/internal/infrastructure/wallet"
	"github.com/quangdang46/zapshop/services/zapshop-service/internal/mocks"
)

const (
	account  = "0xabc"
	account2 = "0xdef"
	chainID  = "6"
)

// handlers captures the notification callbacks a session registers.
type handlers struct {
	fns          map[domain.WalletEvent]func(interface{})
	unsubscribed int
}

func expectSubscriptions(p *mocks.MockWalletProvider) *handlers {
	h := &handlers{fns: map[domain.WalletEvent]func(interface{}){}}
	p.EXPECT().On(gomock.Any(), gomock.Any()).Times(3).
		DoAndReturn(func(ev domain.WalletEvent, fn func(interface{})) func() {
			h.fns[ev] = fn
			return func() { h.unsubscribed++ }
		})
	return h
}

func connected(t *testing.T) (*wallet.Session, *mocks.MockWalletProvider, *handlers) {
	ctrl := gomock.NewController(t)
	p := mocks.NewMockWalletProvider(ctrl)

	p.EXPECT().Connect(gomock.Any(), chainID).Return([]string{account}, nil)
	p.EXPECT().ChainID(gomock.Any()).Return(chainID, nil)
	p.EXPECT().Balance(gomock.Any(), account).Return(&domain.WalletBalance{Formatted: "12.5", Unit: "SUPRA"}, nil)
	h := expectSubscriptions(p)

	s := wallet.NewSession(p, chainID, nil)
	_, err := s.Connect(context.Background())
	require.NoError(t, err)
	return s, p, h
}

func TestSession_Connect(t *testing.T) {
	s, _, h := connected(t)

	st := s.State()
	assert.True(t, st.Connected)
	assert.Equal(t, account, st.Account)
	assert.Equal(t, chainID, st.ChainID)
	assert.Equal(t, "12.5", st.Balance.Formatted)
	assert.True(t, s.OnExpectedNetwork())
	assert.Len(t, h.fns, 3)
}

func TestSession_ConnectWithoutAccounts(t *testing.T) {
	ctrl := gomock.NewController(t)
	p := mocks.NewMockWalletProvider(ctrl)
	p.EXPECT().Connect(gomock.Any(), chainID).Return([]string{}, nil)

	_, err := wallet.NewSession(p, chainID, nil).Connect(context.Background())
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypePrecondition))
}

func TestSession_NoProvider(t *testing.T) {
	s := wallet.NewSession(nil, chainID, nil)

	_, err := s.Connect(context.Background())
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeWalletUnavailable))
	_, err = s.Resume(context.Background())
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeWalletUnavailable))
	assert.NoError(t, s.Disconnect(context.Background()))
}

func TestSession_ConnectToleratesChainAndBalanceFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	p := mocks.NewMockWalletProvider(ctrl)
	p.EXPECT().Connect(gomock.Any(), chainID).Return([]string{account}, nil)
	p.EXPECT().ChainID(gomock.Any()).Return("", errors.New("locked"))
	p.EXPECT().Balance(gomock.Any(), account).Return(nil, errors.New("locked"))
	expectSubscriptions(p)

	s := wallet.NewSession(p, chainID, nil)
	st, err := s.Connect(context.Background())
	require.NoError(t, err)
	assert.True(t, st.Connected)
	assert.Nil(t, st.Balance)
	assert.False(t, s.OnExpectedNetwork())
}

func TestSession_AccountChanged(t *testing.T) {
	s, p, h := connected(t)
	p.EXPECT().Balance(gomock.Any(), account2).Return(&domain.WalletBalance{Formatted: "3", Unit: "SUPRA"}, nil)

	var seen []wallet.State
	s.OnChange(func(st wallet.State) { seen = append(seen, st) })

	h.fns[domain.WalletAccountChanged]([]interface{}{account2})

	st := s.State()
	assert.Equal(t, account2, st.Account)
	assert.Equal(t, "3", st.Balance.Formatted)
	require.Len(t, seen, 2)
	assert.Nil(t, seen[0].Balance, "balance is cleared before the refresh")
}

func TestSession_AccountChangedToNoneDisconnects(t *testing.T) {
	s, p, h := connected(t)
	p.EXPECT().Disconnect(gomock.Any()).Return(nil)

	h.fns[domain.WalletAccountChanged]([]string{})

	assert.Equal(t, wallet.State{}, s.State())
	assert.Equal(t, 3, h.unsubscribed)
}

func TestSession_NetworkChanged(t *testing.T) {
	s, p, h := connected(t)
	p.EXPECT().Balance(gomock.Any(), account).Return(&domain.WalletBalance{Formatted: "1"}, nil).Times(2)

	h.fns[domain.WalletNetworkChanged](map[string]interface{}{"chainId": "8"})
	assert.Equal(t, "8", s.State().ChainID)
	assert.False(t, s.OnExpectedNetwork())

	h.fns[domain.WalletNetworkChanged](chainID)
	assert.True(t, s.OnExpectedNetwork())
}

func TestSession_DisconnectClearsStateOnProviderError(t *testing.T) {
	s, p, h := connected(t)
	p.EXPECT().Disconnect(gomock.Any()).Return(errors.New("already gone"))

	err := s.Disconnect(context.Background())
	assert.Error(t, err)
	assert.Equal(t, wallet.State{}, s.State())
	assert.Equal(t, 3, h.unsubscribed)
}

func TestSession_DisconnectNotification(t *testing.T) {
	s, p, h := connected(t)
	p.EXPECT().Disconnect(gomock.Any()).Return(nil)

	h.fns[domain.WalletDisconnected](nil)
	assert.False(t, s.State().Connected)
}

func TestSession_Resume(t *testing.T) {
	ctrl := gomock.NewController(t)
	p := mocks.NewMockWalletProvider(ctrl)
	p.EXPECT().Account(gomock.Any()).Return(nil, nil)

	ok, err := wallet.NewSession(p, chainID, nil).Resume(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	p.EXPECT().Account(gomock.Any()).Return([]string{account}, nil)
	p.EXPECT().ChainID(gomock.Any()).Return(chainID, nil)
	p.EXPECT().Balance(gomock.Any(), account).Return(&domain.WalletBalance{Formatted: "0"}, nil)
	expectSubscriptions(p)

	s := wallet.NewSession(p, chainID, nil)
	ok, err = s.Resume(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, account, s.State().Account)
}
