package service_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/quangdang46/zapshop/shared/errors"

	"github.com/quangdang46/zapshop/services/zapshop-service/internal/domain"
	"github.com/quangdang46/zapshop/services/zapshop-service/internal/service"
)

func TestMapRafflePurchases_FansOutPerTicket(t *testing.T) {
	row := envelope(t, "0xraffle", map[string]interface{}{
		"user":           alice,
		"raffle_ids":     []interface{}{"10", 11, "12"},
		"raffle_type_id": "2",
		"paid_zap":       "600",
		"timestamp":      1700000123,
	})
	row.BlockHeight = 42

	got, err := service.MapRafflePurchases([]domain.EventEnvelope{row})
	require.NoError(t, err)
	require.Len(t, got, 3)

	for i, id := range []string{"10", "11", "12"} {
		assert.Equal(t, domain.RafflePurchase{
			User:            alice,
			RaffleID:        id,
			RaffleTypeID:    2,
			PaidZap:         "600",
			Timestamp:       1700000123,
			TransactionHash: "0xraffle",
			BlockHeight:     42,
		}, got[i])
	}
}

func TestMapRafflePurchases_NoTicketsNoRecords(t *testing.T) {
	rows := []domain.EventEnvelope{
		envelope(t, "0x1", map[string]interface{}{"user": alice, "raffle_ids": []string{}}),
		envelope(t, "0x2", map[string]interface{}{"user": alice}),
	}

	got, err := service.MapRafflePurchases(rows)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMapPrizeClaims_AmountField(t *testing.T) {
	rows := []domain.EventEnvelope{
		envelope(t, "0x1", map[string]interface{}{"user": alice, "crate_id": "1", "prize_supra_claimed": "500"}),
		envelope(t, "0x2", map[string]interface{}{"user": alice, "crate_id": "2", "prize_amount_claimed": "700"}),
		envelope(t, "0x3", map[string]interface{}{
			"user": alice, "crate_id": "3", "prize_supra_claimed": "900", "prize_amount_claimed": "1",
		}),
		envelope(t, "0x4", map[string]interface{}{"user": alice, "crate_id": "4"}),
	}

	got, err := service.MapPrizeClaims(rows)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, "500", got[0].PrizeAmountClaimed)
	assert.Equal(t, "700", got[1].PrizeAmountClaimed)
	assert.Equal(t, "900", got[2].PrizeAmountClaimed)
	assert.Equal(t, "", got[3].PrizeAmountClaimed)
}

func TestMapMerchPurchases(t *testing.T) {
	got, err := service.MapMerchPurchases([]domain.EventEnvelope{
		envelope(t, "0xm", map[string]interface{}{
			"user": alice, "merch_id": 9, "merch_type_id": "4", "quantity": "1", "timestamp": "77",
		}),
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.MerchPurchase{
		User:            alice,
		MerchID:         "9",
		MerchTypeID:     4,
		Quantity:        1,
		Timestamp:       77,
		TransactionHash: "0xm",
	}, got[0])
}

func TestMapCratePurchases_KeepsLargeAmountsExact(t *testing.T) {
	row := domain.EventEnvelope{Event: domain.EventBody{
		Data: json.RawMessage(`{"user":"0xa","crate_id":"18446744073709551615","paid_zap":123456789012345678901234567890}`),
	}}

	got, err := service.MapCratePurchases([]domain.EventEnvelope{row})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "18446744073709551615", got[0].CrateID)
	assert.Equal(t, "123456789012345678901234567890", got[0].PaidZap)
}

func TestMapCratePurchases_BadPayload(t *testing.T) {
	row := domain.EventEnvelope{Event: domain.EventBody{Data: json.RawMessage(`{"tier":"gold"}`)}}

	_, err := service.MapCratePurchases([]domain.EventEnvelope{row})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeMalformedResponse))
}

func TestSummarizeSpend_CountsRaffleEventOnce(t *testing.T) {
	raffles := []domain.RafflePurchase{
		{RaffleID: "1", RaffleTypeID: 1, PaidZap: "300", Timestamp: 5, TransactionHash: "0xa"},
		{RaffleID: "2", RaffleTypeID: 1, PaidZap: "300", Timestamp: 5, TransactionHash: "0xa"},
		{RaffleID: "3", RaffleTypeID: 1, PaidZap: "300", Timestamp: 5, TransactionHash: "0xa"},
		{RaffleID: "4", RaffleTypeID: 2, PaidZap: "50", Timestamp: 9, TransactionHash: "0xb"},
	}
	crates := []domain.CratePurchase{
		{PaidZap: "18446744073709551615"},
		{PaidZap: "1"},
	}

	got, err := service.SummarizeSpend(alice, crates, raffles, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, got.RaffleTickets)
	assert.Equal(t, "350", got.RaffleZap)
	// Exceeds u64; the sum must not wrap.
	assert.Equal(t, "18446744073709551616", got.CrateZap)
	assert.Equal(t, "18446744073709551966", got.TotalZap)
	assert.Equal(t, "0", got.PrizeClaimed)
}

func TestSummarizeSpend_RejectsNonDecimalAmount(t *testing.T) {
	_, err := service.SummarizeSpend(alice, []domain.CratePurchase{{PaidZap: "0x10"}}, nil, nil, nil)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeMalformedResponse))
}
