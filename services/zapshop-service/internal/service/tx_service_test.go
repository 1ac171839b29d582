package service_test

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
	"github.com/quangdang46/zapshop/services/zapshop-service/internal/mocks"
	"github.com/quangdang46/zapshop/services/zapshop-service/internal/service"
)

// 1700000000.5s; expiries round up to 1700000001.
var fixedNow = time.Unix(1700000000, 500_000_000)

type stubInitiation struct {
	status domain.UserStatus
	err    error
	calls  int
}

func (s *stubInitiation) UserInitiated(context.Context, string) (domain.UserStatus, error) {
	s.calls++
	return s.status, s.err
}

// pricedWallet is a provider that can also quote gas.
type pricedWallet struct {
	*mocks.MockWalletProvider
	*mocks.MockGasPricer
}

func u64(v uint64) *uint64 { return &v }

// expectSubmit records the raw transaction request and answers with hash.
func expectSubmit(wallet *mocks.MockWalletProvider, got *domain.RawTransactionRequest, hash string) {
	gomock.InOrder(
		wallet.EXPECT().CreateRawTransactionData(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req domain.RawTransactionRequest) (string, error) {
				*got = req
				return "0xrawdata", nil
			}),
		wallet.EXPECT().SendTransaction(gomock.Any(), domain.SendTransactionRequest{
			Data:    "0xrawdata",
			From:    alice,
			To:      testContract,
			ChainID: "",
			Value:   "",
			Options: domain.SendOptions{WaitForTransaction: true},
		}).Return(hash, nil),
	)
}

func newTxService(provider domain.WalletProvider, users service.InitiationChecker) *service.TxService {
	return service.NewTxService(provider, users, testContract,
		service.WithClock(func() time.Time { return fixedNow }))
}

func TestTxService_BuyCrates(t *testing.T) {
	ctrl := gomock.NewController(t)
	wallet := mocks.NewMockWalletProvider(ctrl)

	var req domain.RawTransactionRequest
	expectSubmit(wallet, &req, "0xhash")

	hash, err := newTxService(wallet, nil).BuyCrates(context.Background(), alice, 2, 11, 3)
	require.NoError(t, err)
	assert.Equal(t, "0xhash", hash)

	assert.Equal(t, domain.RawTransactionRequest{
		Sender:         alice,
		SequenceNumber: 0,
		ModuleAddress:  testContract,
		ModuleName:     "zap_shop_v1",
		Function:       "buy_crates",
		TypeArguments:  []string{},
		Arguments:      [][]byte{{2}, {11}, {3}},
		Options:        domain.TxOptions{TxExpiryTime: 1700000001 + 60},
	}, req)
}

func TestTxService_SingleU64Entries(t *testing.T) {
	tests := []struct {
		name     string
		function string
		call     func(*service.TxService) (string, error)
	}{
		{"open crate", "open_crate", func(s *service.TxService) (string, error) {
			return s.OpenCrate(context.Background(), alice, 258)
		}},
		{"claim prize", "claim_crate_prize", func(s *service.TxService) (string, error) {
			return s.ClaimCratePrize(context.Background(), alice, 258)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			wallet := mocks.NewMockWalletProvider(ctrl)
			var req domain.RawTransactionRequest
			expectSubmit(wallet, &req, "0x"+tt.function)

			hash, err := tt.call(newTxService(wallet, nil))
			require.NoError(t, err)
			assert.Equal(t, "0x"+tt.function, hash)
			assert.Equal(t, tt.function, req.Function)
			assert.Equal(t, [][]byte{{2, 1, 0, 0, 0, 0, 0, 0}}, req.Arguments)
			assert.Equal(t, int64(1700000061), req.Options.TxExpiryTime)
			assert.Nil(t, req.Options.GasUnitPrice)
			assert.Nil(t, req.Options.MaxGas)
		})
	}
}

func TestTxService_BuyMerch(t *testing.T) {
	ctrl := gomock.NewController(t)
	wallet := mocks.NewMockWalletProvider(ctrl)
	var req domain.RawTransactionRequest
	expectSubmit(wallet, &req, "0xmerch")

	_, err := newTxService(wallet, nil).BuyMerch(context.Background(), alice, 4, 1)
	require.NoError(t, err)
	assert.Equal(t, "buy_merch", req.Function)
	assert.Equal(t, [][]byte{{4, 0, 0, 0, 0, 0, 0, 0}, {1, 0, 0, 0, 0, 0, 0, 0}}, req.Arguments)
}

func TestTxService_BuyRaffles_DefaultGasPrice(t *testing.T) {
	ctrl := gomock.NewController(t)
	wallet := mocks.NewMockWalletProvider(ctrl)
	var req domain.RawTransactionRequest
	expectSubmit(wallet, &req, "0xraffles")

	_, err := newTxService(wallet, nil).BuyRaffles(context.Background(), alice, 10, 1)
	require.NoError(t, err)

	assert.Equal(t, "buy_raffles", req.Function)
	assert.Equal(t, [][]byte{{10, 0, 0, 0, 0, 0, 0, 0}, {1}}, req.Arguments)
	assert.Equal(t, domain.TxOptions{
		TxExpiryTime: 1700000001 + 120,
		GasUnitPrice: u64(12_000),
		MaxGas:       u64(120_000),
	}, req.Options)
}

func TestTxService_BuyRaffles_QuotedGasPrice(t *testing.T) {
	ctrl := gomock.NewController(t)
	wallet := pricedWallet{mocks.NewMockWalletProvider(ctrl), mocks.NewMockGasPricer(ctrl)}
	wallet.MockGasPricer.EXPECT().GasPrice(gomock.Any()).Return(uint64(333), nil)
	var req domain.RawTransactionRequest
	expectSubmit(wallet.MockWalletProvider, &req, "0xraffles")

	_, err := newTxService(wallet, nil).BuyRaffles(context.Background(), alice, 500, 2)
	require.NoError(t, err)
	// floor(333 * 1.2)
	assert.Equal(t, u64(399), req.Options.GasUnitPrice)
	assert.Equal(t, u64(680_000), req.Options.MaxGas)
}

func TestTxService_BuyRaffles_QuoteFailureFallsBack(t *testing.T) {
	ctrl := gomock.NewController(t)
	wallet := pricedWallet{mocks.NewMockWalletProvider(ctrl), mocks.NewMockGasPricer(ctrl)}
	wallet.MockGasPricer.EXPECT().GasPrice(gomock.Any()).Return(uint64(0), errors.New("unsupported"))
	var req domain.RawTransactionRequest
	expectSubmit(wallet.MockWalletProvider, &req, "0xraffles")

	_, err := newTxService(wallet, nil).BuyRaffles(context.Background(), alice, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, u64(12_000), req.Options.GasUnitPrice)
}

func TestRaffleMaxGas(t *testing.T) {
	assert.Equal(t, uint64(120_000), service.RaffleMaxGas(0))
	assert.Equal(t, uint64(120_000), service.RaffleMaxGas(33))
	assert.Equal(t, uint64(120_800), service.RaffleMaxGas(34))
	assert.Equal(t, uint64(1_280_000), service.RaffleMaxGas(1000))
	assert.Equal(t, uint64(2_000_000), service.RaffleMaxGas(1600))
	assert.Equal(t, uint64(2_000_000), service.RaffleMaxGas(1<<63))
}

func TestTxService_RegisterUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	wallet := mocks.NewMockWalletProvider(ctrl)
	users := &stubInitiation{status: domain.UserStatus{Initiated: true, ZapBalance: "10"}}
	var req domain.RawTransactionRequest
	expectSubmit(wallet, &req, "0xregistered")

	hash, err := newTxService(wallet, users).RegisterUser(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, "0xregistered", hash)
	assert.Equal(t, "register_user", req.Function)
	assert.Empty(t, req.Arguments)
	assert.NotNil(t, req.Arguments)
	assert.Equal(t, domain.TxOptions{
		TxExpiryTime: 1700000121,
		GasUnitPrice: u64(12_000),
		MaxGas:       u64(200_000),
	}, req.Options)
}

func TestTxService_RegisterUser_RequiresInitiation(t *testing.T) {
	ctrl := gomock.NewController(t)
	wallet := mocks.NewMockWalletProvider(ctrl)
	users := &stubInitiation{status: domain.UserStatus{Initiated: false, ZapBalance: "0"}}

	_, err := newTxService(wallet, users).RegisterUser(context.Background(), alice)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypePrecondition))
	assert.Contains(t, err.Error(), "User not initiated")
}

func TestTxService_NoWallet(t *testing.T) {
	users := &stubInitiation{status: domain.UserStatus{Initiated: true}}
	svc := newTxService(nil, users)
	ctx := context.Background()

	calls := map[string]func() (string, error){
		"register":    func() (string, error) { return svc.RegisterUser(ctx, alice) },
		"raffles":     func() (string, error) { return svc.BuyRaffles(ctx, alice, 1, 1) },
		"crates":      func() (string, error) { return svc.BuyCrates(ctx, alice, 1, 1, 1) },
		"open crate":  func() (string, error) { return svc.OpenCrate(ctx, alice, 1) },
		"merch":       func() (string, error) { return svc.BuyMerch(ctx, alice, 1, 1) },
		"claim prize": func() (string, error) { return svc.ClaimCratePrize(ctx, alice, 1) },
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			_, err := call()
			assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeWalletUnavailable))
		})
	}
	assert.Zero(t, users.calls, "initiation must not be checked without a wallet")
}

func TestTxService_RejectsOutOfRangeArguments(t *testing.T) {
	ctrl := gomock.NewController(t)
	wallet := mocks.NewMockWalletProvider(ctrl)
	svc := newTxService(wallet, nil)
	ctx := context.Background()

	_, err := svc.BuyCrates(ctx, alice, 1, 1, 256)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidInput))

	_, err = svc.OpenCrate(ctx, alice, -1)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidInput))

	_, err = svc.BuyRaffles(ctx, alice, 1, 300)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidInput))
}

func TestTxService_WalletRejection(t *testing.T) {
	ctrl := gomock.NewController(t)
	wallet := mocks.NewMockWalletProvider(ctrl)
	rejected := errors.New("user rejected the request")
	wallet.EXPECT().CreateRawTransactionData(gomock.Any(), gomock.Any()).Return("", rejected)

	_, err := newTxService(wallet, nil).OpenCrate(context.Background(), alice, 1)
	assert.ErrorIs(t, err, rejected)
}
