package main

import (
	"encoding/json"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"

	"github.com/quangdang46/zapshop/services/zapshop-service/internal/domain"
)

func TestObjectRows_SortedByKey(t *testing.T) {
	rows := objectRows(domain.Object{"silver": "2", "bronze": json.Number("1")})

	assert.Equal(t, pterm.TableData{
		{"Field", "Value"},
		{"bronze", "1"},
		{"silver", "2"},
	}, rows)
}

func TestObjectListRows_UnionOfColumns(t *testing.T) {
	rows := objectListRows([]domain.Object{
		{"id": "1", "name": "cap"},
		{"id": "2", "stock": json.Number("7")},
	})

	assert.Equal(t, pterm.TableData{
		{"id", "name", "stock"},
		{"1", "cap", ""},
		{"2", "", "7"},
	}, rows)
}

func TestRaffleRows(t *testing.T) {
	rows := raffleRows([]domain.RafflePurchase{
		{RaffleID: "11", RaffleTypeID: 2, PaidZap: "50", Timestamp: 1700000000, TransactionHash: "0xt"},
	})

	assert.Len(t, rows, 2)
	assert.Equal(t, []string{"11", "2", "50", "2023-11-14T22:13:20Z", "0xt"}, rows[1])
}

func TestUnixTime(t *testing.T) {
	assert.Equal(t, "-", unixTime(0))
	assert.Equal(t, "1970-01-01T00:00:01Z", unixTime(1))
}
