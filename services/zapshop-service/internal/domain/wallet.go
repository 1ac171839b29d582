package domain

import "context"

// WalletEvent names a provider notification.
type WalletEvent string

const (
	WalletAccountChanged WalletEvent = "accountChanged"
	WalletNetworkChanged WalletEvent = "networkChanged"
	WalletDisconnected   WalletEvent = "disconnect"
)

// WalletBalance is what the provider reports for the connected account.
type WalletBalance struct {
	Formatted string `json:"formatted_balance"`
	Unit      string `json:"display_unit"`
}

// TxOptions are the optional payload arguments of a raw transaction.
type TxOptions struct {
	// TxExpiryTime is a unix timestamp in seconds.
	TxExpiryTime int64   `json:"txExpiryTime"`
	GasUnitPrice *uint64 `json:"gasUnitPrice,omitempty"`
	MaxGas       *uint64 `json:"maxGas,omitempty"`
}

// RawTransactionRequest is the input of CreateRawTransactionData.
type RawTransactionRequest struct {
	Sender string
	// SequenceNumber 0 lets the wallet pick the next sequence.
	SequenceNumber uint64
	ModuleAddress  string
	ModuleName     string
	Function       string
	TypeArguments  []string
	// Arguments are BCS-encoded.
	Arguments [][]byte
	Options   TxOptions
}

type SendOptions struct {
	WaitForTransaction bool `json:"waitForTransaction"`
}

// SendTransactionRequest wraps raw transaction data for submission.
type SendTransactionRequest struct {
	Data    string      `json:"data"`
	From    string      `json:"from"`
	To      string      `json:"to"`
	ChainID string      `json:"chainId"`
	Value   string      `json:"value"`
	Options SendOptions `json:"options"`
}

//go:generate mockgen -source=wallet.go -destination=../mocks/mock_wallet.go -package=mocks

// WalletProvider is the browser-extension style wallet the shop signs with.
type WalletProvider interface {
	// Connect asks the wallet for access on chainID and returns the approved accounts.
	Connect(ctx context.Context, chainID string) ([]string, error)
	Disconnect(ctx context.Context) error
	// Account returns the already-approved accounts, if any.
	Account(ctx context.Context) ([]string, error)
	Balance(ctx context.Context, account string) (*WalletBalance, error)
	ChainID(ctx context.Context) (string, error)
	CreateRawTransactionData(ctx context.Context, req RawTransactionRequest) (string, error)
	SendTransaction(ctx context.Context, req SendTransactionRequest) (string, error)
	// On subscribes to a notification and returns an unsubscribe func.
	On(event WalletEvent, handler func(payload interface{})) func()
}

// GasPricer is implemented by providers that can quote a gas unit price.
type GasPricer interface {
	GasPrice(ctx context.Context) (uint64, error)
}
