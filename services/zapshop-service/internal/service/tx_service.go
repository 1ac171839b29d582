package service

import (
	"context"
	"time"

	apperrors "github.com/quangdang46/zapshop/shared/errors"
	"github.com/quangdang46/zapshop/shared/logging"
	"github.com/quangdang46/zapshop/shared/metrics"

	"github.com/quangdang46/zapshop/services/zapshop-service/internal/domain"
	"github.com/quangdang46/zapshop/services/zapshop-service/internal/infrastructure/bcs"
)

// Entry functions of the shop module.
const (
	fnRegisterUser    = "register_user"
	fnBuyRaffles      = "buy_raffles"
	fnBuyCrates       = "buy_crates"
	fnOpenCrate       = "open_crate"
	fnBuyMerch        = "buy_merch"
	fnClaimCratePrize = "claim_crate_prize"
)

const (
	DefaultGasUnitPrice uint64 = 10_000

	registerMaxGas uint64 = 200_000

	raffleBaseGas      uint64 = 80_000
	raffleGasPerTicket uint64 = 1_200
	raffleMinGas       uint64 = 120_000
	raffleMaxGas       uint64 = 2_000_000

	shortExpiry = 60 * time.Second
	longExpiry  = 120 * time.Second
)

// InitiationChecker reports whether an account has been set up on chain.
type InitiationChecker interface {
	UserInitiated(ctx context.Context, account string) (domain.UserStatus, error)
}

// TxService builds and submits shop entry-function calls through the
// connected wallet. Each call returns the transaction hash the wallet
// reports once the transaction is included.
type TxService struct {
	provider domain.WalletProvider
	users    InitiationChecker
	contract string
	now      func() time.Time
	metrics  *metrics.Metrics
	logger   *logging.Logger
}

type TxOption func(*TxService)

func WithClock(now func() time.Time) TxOption {
	return func(s *TxService) { s.now = now }
}

func WithTxMetrics(m *metrics.Metrics) TxOption {
	return func(s *TxService) { s.metrics = m }
}

func WithTxLogger(l *logging.Logger) TxOption {
	return func(s *TxService) { s.logger = l }
}

// NewTxService accepts a nil provider; every submission then fails with
// WALLET_UNAVAILABLE.
func NewTxService(provider domain.WalletProvider, users InitiationChecker, contract string, opts ...TxOption) *TxService {
	s := &TxService{
		provider: provider,
		users:    users,
		contract: contract,
		now:      time.Now,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterUser creates the account's shop resources. The account must
// already be initiated.
func (s *TxService) RegisterUser(ctx context.Context, account string) (string, error) {
	if s.provider == nil {
		return "", apperrors.WalletUnavailable()
	}
	status, err := s.users.UserInitiated(ctx, account)
	if err != nil {
		return "", err
	}
	if !status.Initiated {
		return "", apperrors.New(apperrors.ErrorTypePrecondition, "USER_NOT_INITIATED",
			"User not initiated. Please contact admin to initiate your account first. "+
				"Your account needs to be added via user_init_zap_snapshot before you can register.")
	}

	price := s.gasUnitPrice(ctx)
	maxGas := registerMaxGas
	return s.submit(ctx, account, fnRegisterUser, nil, domain.TxOptions{
		TxExpiryTime: s.expiry(longExpiry),
		GasUnitPrice: &price,
		MaxGas:       &maxGas,
	})
}

// BuyRaffles buys quantity tickets of raffle type typeID.
func (s *TxService) BuyRaffles(ctx context.Context, account string, quantity, typeID int64) (string, error) {
	if s.provider == nil {
		return "", apperrors.WalletUnavailable()
	}
	args, err := encodeArgs(
		func() ([]byte, error) { return bcs.CheckedU64("quantity", quantity) },
		func() ([]byte, error) { return bcs.CheckedU8("type_id", typeID) },
	)
	if err != nil {
		return "", err
	}

	price := s.gasUnitPrice(ctx)
	maxGas := RaffleMaxGas(uint64(quantity))
	return s.submit(ctx, account, fnBuyRaffles, args, domain.TxOptions{
		TxExpiryTime: s.expiry(longExpiry),
		GasUnitPrice: &price,
		MaxGas:       &maxGas,
	})
}

// BuyCrates buys quantity crates of tier for the given month slot.
func (s *TxService) BuyCrates(ctx context.Context, account string, tier, monthSlot, quantity int64) (string, error) {
	if s.provider == nil {
		return "", apperrors.WalletUnavailable()
	}
	args, err := encodeArgs(
		func() ([]byte, error) { return bcs.CheckedU8("tier", tier) },
		func() ([]byte, error) { return bcs.CheckedU8("month_slot", monthSlot) },
		func() ([]byte, error) { return bcs.CheckedU8("quantity", quantity) },
	)
	if err != nil {
		return "", err
	}
	return s.submit(ctx, account, fnBuyCrates, args, domain.TxOptions{TxExpiryTime: s.expiry(shortExpiry)})
}

func (s *TxService) OpenCrate(ctx context.Context, account string, crateID int64) (string, error) {
	return s.singleU64(ctx, account, fnOpenCrate, "crate_id", crateID)
}

func (s *TxService) BuyMerch(ctx context.Context, account string, merchTypeID, quantity int64) (string, error) {
	if s.provider == nil {
		return "", apperrors.WalletUnavailable()
	}
	args, err := encodeArgs(
		func() ([]byte, error) { return bcs.CheckedU64("merch_type_id", merchTypeID) },
		func() ([]byte, error) { return bcs.CheckedU64("quantity", quantity) },
	)
	if err != nil {
		return "", err
	}
	return s.submit(ctx, account, fnBuyMerch, args, domain.TxOptions{TxExpiryTime: s.expiry(shortExpiry)})
}

func (s *TxService) ClaimCratePrize(ctx context.Context, account string, crateID int64) (string, error) {
	return s.singleU64(ctx, account, fnClaimCratePrize, "crate_id", crateID)
}

// RaffleMaxGas is the gas ceiling for buying quantity tickets:
// 80000 + 1200 per ticket, clamped to [120000, 2000000].
func RaffleMaxGas(quantity uint64) uint64 {
	if quantity > (raffleMaxGas-raffleBaseGas)/raffleGasPerTicket {
		return raffleMaxGas
	}
	gas := raffleBaseGas + raffleGasPerTicket*quantity
	return max(raffleMinGas, min(gas, raffleMaxGas))
}

func (s *TxService) singleU64(ctx context.Context, account, function, name string, v int64) (string, error) {
	if s.provider == nil {
		return "", apperrors.WalletUnavailable()
	}
	args, err := encodeArgs(func() ([]byte, error) { return bcs.CheckedU64(name, v) })
	if err != nil {
		return "", err
	}
	return s.submit(ctx, account, function, args, domain.TxOptions{TxExpiryTime: s.expiry(shortExpiry)})
}

func (s *TxService) submit(ctx context.Context, account, function string, args [][]byte, opts domain.TxOptions) (hash string, err error) {
	if account == "" {
		return "", apperrors.InvalidInput("account", "must not be empty")
	}
	if args == nil {
		args = [][]byte{}
	}

	log := s.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"function": function,
		"account":  account,
	})
	start := time.Now()
	defer func() {
		s.metrics.RecordTransaction(function, err)
		if err != nil {
			log.WithError(err).Error("transaction failed")
			return
		}
		log.Performance("submit_transaction", time.Since(start), map[string]interface{}{"tx_hash": hash})
	}()

	data, err := s.provider.CreateRawTransactionData(ctx, domain.RawTransactionRequest{
		Sender:         account,
		SequenceNumber: 0,
		ModuleAddress:  s.contract,
		ModuleName:     domain.ModuleName,
		Function:       function,
		TypeArguments:  []string{},
		Arguments:      args,
		Options:        opts,
	})
	if err != nil {
		return "", err
	}

	return s.provider.SendTransaction(ctx, domain.SendTransactionRequest{
		Data:    data,
		From:    account,
		To:      s.contract,
		ChainID: "",
		Value:   "",
		Options: domain.SendOptions{WaitForTransaction: true},
	})
}

// gasUnitPrice asks the provider for a quote when it can give one and adds
// 20% headroom. Quote failures fall back to the default price.
func (s *TxService) gasUnitPrice(ctx context.Context) uint64 {
	price := DefaultGasUnitPrice
	if pricer, ok := s.provider.(domain.GasPricer); ok {
		quoted, err := pricer.GasPrice(ctx)
		switch {
		case err != nil:
			s.logger.WithContext(ctx).WithError(err).Debug("gas price quote failed")
		case quoted > 0:
			price = quoted
		}
	}
	return price * 6 / 5
}

// expiry is now rounded up to the next whole second, plus ttl.
func (s *TxService) expiry(ttl time.Duration) int64 {
	now := s.now()
	secs := now.Unix()
	if now.Nanosecond() > 0 {
		secs++
	}
	return secs + int64(ttl/time.Second)
}

func encodeArgs(encoders ...func() ([]byte, error)) ([][]byte, error) {
	out := make([][]byte, 0, len(encoders))
	for _, enc := range encoders {
		b, err := enc()
		if err != nil {
			return nil, apperrors.New(apperrors.ErrorTypeInvalidInput, "INVALID_ARGUMENT", err.Error())
		}
		out = append(out, b)
	}
	return out, nil
}
