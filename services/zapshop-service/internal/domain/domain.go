package domain

import (
	"context"
	"encoding/json"
	"strings"
)

// ModuleName is the Move module every shop function and event lives in.
const ModuleName = "zap_shop_v1"

// EventName is the short name of a shop event.
type EventName string

const (
	EventCratePurchased    EventName = "CratePurchased"
	EventRafflesPurchased  EventName = "RafflesPurchased"
	EventCratePrizeClaimed EventName = "CratePrizeClaimed"
	EventMerchPurchased    EventName = "MerchPurchased"
)

// EventType builds the fully qualified type `<contract>::zap_shop_v1::<name>`.
func EventType(contract string, name EventName) string {
	return contract + "::" + ModuleName + "::" + string(name)
}

// FunctionID builds the fully qualified entry or view function id.
func FunctionID(contract, function string) string {
	return contract + "::" + ModuleName + "::" + function
}

// EventEnvelope is one row of the /events stream.
type EventEnvelope struct {
	Event           EventBody `json:"event"`
	TransactionHash string    `json:"transaction_hash"`
	BlockHeight     Uint      `json:"block_height"`
}

// EventBody holds the event payload undecoded; its shape depends on the event type.
type EventBody struct {
	Type string          `json:"type,omitempty"`
	Data json.RawMessage `json:"data"`
}

// User returns event.data.user, or "" when the payload has none.
func (e EventEnvelope) User() string {
	if len(e.Event.Data) == 0 {
		return ""
	}
	var probe struct {
		User string `json:"user"`
	}
	if err := json.Unmarshal(e.Event.Data, &probe); err != nil {
		return ""
	}
	return probe.User
}

// BelongsTo reports whether the event was emitted for account, ignoring hex case.
func (e EventEnvelope) BelongsTo(account string) bool {
	user := e.User()
	return user != "" && strings.EqualFold(user, account)
}

// DecodeData unmarshals event.data into v.
func (e EventEnvelope) DecodeData(v interface{}) error {
	if len(e.Event.Data) == 0 {
		return json.Unmarshal([]byte("{}"), v)
	}
	return json.Unmarshal(e.Event.Data, v)
}

// EventPage is a single /events response.
type EventPage struct {
	Data []EventEnvelope
	// NextCursor is empty when the stream is exhausted.
	NextCursor string
}

// FetchOptions bounds one history fetch.
type FetchOptions struct {
	Limit    int
	PageSize int
}

const (
	DefaultFetchLimit    = 200
	DefaultFetchPageSize = 100
)

// WithDefaults fills zero or negative fields.
func (o FetchOptions) WithDefaults(limit, pageSize int) FetchOptions {
	if o.Limit <= 0 {
		o.Limit = limit
	}
	if o.PageSize <= 0 {
		o.PageSize = pageSize
	}
	return o
}

// Object is a decoded Move struct returned by a view call.
type Object map[string]interface{}

// Interfaces

type EventSource interface {
	// EventsPage fetches one page of eventType starting at cursor ("" for the first page).
	EventsPage(ctx context.Context, eventType string, limit int, cursor string) (*EventPage, error)
}

type ViewCaller interface {
	// View calls a view function and returns the raw `result` member.
	View(ctx context.Context, function string, typeArgs []string, args []interface{}) (json.RawMessage, error)
}

type ViewCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}
