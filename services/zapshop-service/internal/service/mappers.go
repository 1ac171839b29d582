package service

import (
	"fmt"

	apperrors "github.com/quangdang46/zapshop/shared/errors"

	"github.com/quangdang46/zapshop/services/zapshop-service/internal/domain"
)

// Event payloads as emitted by the shop module. Numbers may arrive as JSON
// strings or numbers.

type cratePurchasedData struct {
	User      string           `json:"user"`
	CrateID   domain.NumString `json:"crate_id"`
	Tier      domain.Uint      `json:"tier"`
	MonthSlot domain.Uint      `json:"month_slot"`
	PaidZap   domain.NumString `json:"paid_zap"`
	Timestamp domain.Uint      `json:"timestamp"`
}

type rafflesPurchasedData struct {
	User         string             `json:"user"`
	RaffleIDs    []domain.NumString `json:"raffle_ids"`
	RaffleTypeID domain.Uint        `json:"raffle_type_id"`
	PaidZap      domain.NumString   `json:"paid_zap"`
	Timestamp    domain.Uint        `json:"timestamp"`
}

type cratePrizeClaimedData struct {
	User    string           `json:"user"`
	CrateID domain.NumString `json:"crate_id"`
	// Older module versions emitted prize_amount_claimed.
	PrizeSupraClaimed  domain.NumString `json:"prize_supra_claimed"`
	PrizeAmountClaimed domain.NumString `json:"prize_amount_claimed"`
	Timestamp          domain.Uint      `json:"timestamp"`
}

type merchPurchasedData struct {
	User        string           `json:"user"`
	MerchID     domain.NumString `json:"merch_id"`
	MerchTypeID domain.Uint      `json:"merch_type_id"`
	Quantity    domain.Uint      `json:"quantity"`
	Timestamp   domain.Uint      `json:"timestamp"`
}

func MapCratePurchases(rows []domain.EventEnvelope) ([]domain.CratePurchase, error) {
	out := make([]domain.CratePurchase, 0, len(rows))
	for i, row := range rows {
		var d cratePurchasedData
		if err := row.DecodeData(&d); err != nil {
			return nil, badPayload(domain.EventCratePurchased, i, err)
		}
		out = append(out, domain.CratePurchase{
			User:            d.User,
			CrateID:         string(d.CrateID),
			Tier:            int(d.Tier),
			MonthSlot:       int(d.MonthSlot),
			PaidZap:         string(d.PaidZap),
			Timestamp:       uint64(d.Timestamp),
			TransactionHash: row.TransactionHash,
			BlockHeight:     uint64(row.BlockHeight),
		})
	}
	return out, nil
}

// MapRafflePurchases emits one record per entry of raffle_ids. An event with
// no ids contributes nothing.
func MapRafflePurchases(rows []domain.EventEnvelope) ([]domain.RafflePurchase, error) {
	out := make([]domain.RafflePurchase, 0, len(rows))
	for i, row := range rows {
		var d rafflesPurchasedData
		if err := row.DecodeData(&d); err != nil {
			return nil, badPayload(domain.EventRafflesPurchased, i, err)
		}
		for _, id := range d.RaffleIDs {
			out = append(out, domain.RafflePurchase{
				User:            d.User,
				RaffleID:        string(id),
				RaffleTypeID:    int(d.RaffleTypeID),
				PaidZap:         string(d.PaidZap),
				Timestamp:       uint64(d.Timestamp),
				TransactionHash: row.TransactionHash,
				BlockHeight:     uint64(row.BlockHeight),
			})
		}
	}
	return out, nil
}

func MapPrizeClaims(rows []domain.EventEnvelope) ([]domain.PrizeClaim, error) {
	out := make([]domain.PrizeClaim, 0, len(rows))
	for i, row := range rows {
		var d cratePrizeClaimedData
		if err := row.DecodeData(&d); err != nil {
			return nil, badPayload(domain.EventCratePrizeClaimed, i, err)
		}
		amount := d.PrizeSupraClaimed
		if amount == "" {
			amount = d.PrizeAmountClaimed
		}
		out = append(out, domain.PrizeClaim{
			User:               d.User,
			CrateID:            string(d.CrateID),
			PrizeAmountClaimed: string(amount),
			Timestamp:          uint64(d.Timestamp),
			TransactionHash:    row.TransactionHash,
			BlockHeight:        uint64(row.BlockHeight),
		})
	}
	return out, nil
}

func MapMerchPurchases(rows []domain.EventEnvelope) ([]domain.MerchPurchase, error) {
	out := make([]domain.MerchPurchase, 0, len(rows))
	for i, row := range rows {
		var d merchPurchasedData
		if err := row.DecodeData(&d); err != nil {
			return nil, badPayload(domain.EventMerchPurchased, i, err)
		}
		out = append(out, domain.MerchPurchase{
			User:            d.User,
			MerchID:         string(d.MerchID),
			MerchTypeID:     int(d.MerchTypeID),
			Quantity:        int(d.Quantity),
			Timestamp:       uint64(d.Timestamp),
			TransactionHash: row.TransactionHash,
			BlockHeight:     uint64(row.BlockHeight),
		})
	}
	return out, nil
}

func badPayload(event domain.EventName, index int, err error) error {
	return apperrors.MalformedResponse(fmt.Sprintf("%s event %d", event, index), err)
}
