package domain

// CratePurchase is one CratePurchased event for the account.
type CratePurchase struct {
	User            string `json:"user"`
	CrateID         string `json:"crate_id"`
	Tier            int    `json:"tier"`
	MonthSlot       int    `json:"month_slot"`
	PaidZap         string `json:"paid_zap"`
	Timestamp       uint64 `json:"timestamp"`
	TransactionHash string `json:"transaction_hash"`
	BlockHeight     uint64 `json:"block_height"`
}

// RafflePurchase is one ticket. A RafflesPurchased event with n ids yields n
// of these, identical except for RaffleID.
type RafflePurchase struct {
	User            string `json:"user"`
	RaffleID        string `json:"raffle_id"`
	RaffleTypeID    int    `json:"raffle_type_id"`
	PaidZap         string `json:"paid_zap"`
	Timestamp       uint64 `json:"timestamp"`
	TransactionHash string `json:"transaction_hash"`
	BlockHeight     uint64 `json:"block_height"`
}

type PrizeClaim struct {
	User               string `json:"user"`
	CrateID            string `json:"crate_id"`
	PrizeAmountClaimed string `json:"prize_amount_claimed"`
	Timestamp          uint64 `json:"timestamp"`
	TransactionHash    string `json:"transaction_hash"`
	BlockHeight        uint64 `json:"block_height"`
}

type MerchPurchase struct {
	User            string `json:"user"`
	MerchID         string `json:"merch_id"`
	MerchTypeID     int    `json:"merch_type_id"`
	Quantity        int    `json:"quantity"`
	Timestamp       uint64 `json:"timestamp"`
	TransactionHash string `json:"transaction_hash"`
	BlockHeight     uint64 `json:"block_height"`
}

// SpendSummary totals ZAP paid by an account across crate and raffle purchases.
type SpendSummary struct {
	Account        string `json:"account"`
	CrateCount     int    `json:"crate_count"`
	RaffleTickets  int    `json:"raffle_tickets"`
	CrateZap       string `json:"crate_zap"`
	RaffleZap      string `json:"raffle_zap"`
	TotalZap       string `json:"total_zap"`
	PrizeClaims    int    `json:"prize_claims"`
	PrizeClaimed   string `json:"prize_claimed"`
	MerchPurchases int    `json:"merch_purchases"`
}

// UserStatus is the decoded check_user_initiated tuple.
type UserStatus struct {
	Initiated  bool   `json:"initiated"`
	ZapBalance string `json:"zap_balance"`
}

// Purchasable item kinds for limit checks.
type ItemType string

const (
	ItemCrate  ItemType = "crate"
	ItemRaffle ItemType = "raffle"
	ItemMerch  ItemType = "merch"
)

// LimitRequest describes an intended purchase.
type LimitRequest struct {
	Item     ItemType
	Quantity int64
	// Tier is 1 (bronze), 2 (silver) or 3 (gold); crates only.
	Tier int
	// MerchTypeID is required for merch.
	MerchTypeID *uint64
}

// LimitResult is advisory; the contract makes the final decision.
type LimitResult struct {
	CanBuy    bool   `json:"can_buy"`
	Remaining int64  `json:"remaining"`
	Limit     int64  `json:"limit"`
	Purchased int64  `json:"purchased"`
	Message   string `json:"message"`
}
