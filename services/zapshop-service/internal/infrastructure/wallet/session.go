package wallet

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/quangdang46/zapshop/shared/errors"
	"github.com/quangdang46/zapshop/shared/logging"

	"github.com/quangdang46/zapshop/services/zapshop-service/internal/domain"
)

// State is a snapshot of the connected wallet.
type State struct {
	Connected bool
	Account   string
	Balance   *domain.WalletBalance
	ChainID   string
}

// Session tracks one wallet connection and follows the provider's account,
// network and disconnect notifications.
type Session struct {
	provider        domain.WalletProvider
	expectedChainID string
	logger          *logging.Logger
	refreshTimeout  time.Duration

	mu        sync.RWMutex
	state     State
	unsubs    []func()
	listeners []func(State)
}

func NewSession(provider domain.WalletProvider, expectedChainID string, logger *logging.Logger) *Session {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Session{
		provider:        provider,
		expectedChainID: expectedChainID,
		logger:          logger,
		refreshTimeout:  10 * time.Second,
	}
}

// OnChange registers fn to be called after every state change.
func (s *Session) OnChange(fn func(State)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// OnExpectedNetwork reports whether the wallet is on the configured chain.
func (s *Session) OnExpectedNetwork() bool {
	st := s.State()
	return st.ChainID != "" && st.ChainID == s.expectedChainID
}

// Connect requests account access and loads chain id and balance. Chain id
// and balance failures are logged, not returned.
func (s *Session) Connect(ctx context.Context) (State, error) {
	if s.provider == nil {
		return State{}, apperrors.WalletUnavailable()
	}
	accounts, err := s.provider.Connect(ctx, s.expectedChainID)
	if err != nil {
		return State{}, err
	}
	if len(accounts) == 0 {
		return State{}, apperrors.New(apperrors.ErrorTypePrecondition, "NO_ACCOUNTS", "No accounts found")
	}
	s.attach(ctx, accounts[0])
	return s.State(), nil
}

// Resume picks up an existing approval without prompting. It returns false
// when the wallet has no approved account.
func (s *Session) Resume(ctx context.Context) (bool, error) {
	if s.provider == nil {
		return false, apperrors.WalletUnavailable()
	}
	accounts, err := s.provider.Account(ctx)
	if err != nil || len(accounts) == 0 {
		return false, nil
	}
	s.attach(ctx, accounts[0])
	return true, nil
}

// Disconnect clears local state even when the provider call fails.
func (s *Session) Disconnect(ctx context.Context) error {
	var err error
	if s.provider != nil {
		if err = s.provider.Disconnect(ctx); err != nil {
			s.logger.WithError(err).Warn("wallet disconnect failed")
		}
	}
	s.reset()
	return err
}

// RefreshBalance reloads the balance of the current account.
func (s *Session) RefreshBalance(ctx context.Context) error {
	account := s.State().Account
	if s.provider == nil || account == "" {
		return nil
	}
	bal, err := s.provider.Balance(ctx, account)
	if err != nil {
		s.logger.WithError(err).Warn("failed to fetch wallet balance")
		return err
	}
	s.update(func(st *State) { st.Balance = bal })
	return nil
}

func (s *Session) attach(ctx context.Context, account string) {
	s.update(func(st *State) {
		st.Connected = true
		st.Account = account
	})

	if chainID, err := s.provider.ChainID(ctx); err != nil {
		s.logger.WithError(err).Warn("failed to get chain id")
	} else {
		s.update(func(st *State) { st.ChainID = chainID })
	}
	_ = s.RefreshBalance(ctx)

	s.subscribe()
}

func (s *Session) subscribe() {
	s.mu.Lock()
	already := len(s.unsubs) > 0
	s.mu.Unlock()
	if already {
		return
	}

	unsubs := []func(){
		s.provider.On(domain.WalletAccountChanged, s.handleAccountChanged),
		s.provider.On(domain.WalletNetworkChanged, s.handleNetworkChanged),
		s.provider.On(domain.WalletDisconnected, func(interface{}) { s.handleDisconnect() }),
	}

	s.mu.Lock()
	s.unsubs = unsubs
	s.mu.Unlock()
}

func (s *Session) handleAccountChanged(payload interface{}) {
	accounts := toStrings(payload)
	if len(accounts) == 0 {
		s.handleDisconnect()
		return
	}
	s.update(func(st *State) {
		st.Account = accounts[0]
		st.Balance = nil
	})
	s.refreshAfterEvent()
}

func (s *Session) handleNetworkChanged(payload interface{}) {
	chainID := ""
	switch t := payload.(type) {
	case string:
		chainID = t
	case map[string]interface{}:
		if v, ok := t["chainId"].(string); ok {
			chainID = v
		}
	}
	s.update(func(st *State) { st.ChainID = chainID })
	s.refreshAfterEvent()
}

func (s *Session) handleDisconnect() {
	ctx, cancel := context.WithTimeout(context.Background(), s.refreshTimeout)
	defer cancel()
	_ = s.Disconnect(ctx)
}

func (s *Session) refreshAfterEvent() {
	ctx, cancel := context.WithTimeout(context.Background(), s.refreshTimeout)
	defer cancel()
	_ = s.RefreshBalance(ctx)
}

func (s *Session) reset() {
	s.mu.Lock()
	unsubs := s.unsubs
	s.unsubs = nil
	s.mu.Unlock()
	for _, u := range unsubs {
		if u != nil {
			u()
		}
	}
	s.update(func(st *State) { *st = State{} })
}

func (s *Session) update(fn func(*State)) {
	s.mu.Lock()
	fn(&s.state)
	snapshot := s.state
	listeners := append([]func(State){}, s.listeners...)
	s.mu.Unlock()

	for _, l := range listeners {
		l(snapshot)
	}
}

func toStrings(payload interface{}) []string {
	switch t := payload.(type) {
	case []string:
		return t
	case string:
		if t == "" {
			return nil
		}
		return []string{t}
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, v := range t {
			if s, ok := v.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
