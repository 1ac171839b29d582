package main

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/pterm/pterm"

	sharedconfig "github.com/quangdang46/zapshop/shared/config"

	"github.com/quangdang46/zapshop/services/zapshop-service/internal/domain"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

// render prints v as JSON, or as a table built from rows when the output is table.
func render(v interface{}, rows func() pterm.TableData) error {
	if flags.Output == outputJSON {
		out, err := sharedconfig.ToJSON(v)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	}

	data := rows()
	if len(data) <= 1 {
		pterm.Info.Println("no records")
		return nil
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func unixTime(ts uint64) string {
	if ts == 0 {
		return "-"
	}
	return time.Unix(int64(ts), 0).UTC().Format(time.RFC3339)
}

func crateRows(records []domain.CratePurchase) pterm.TableData {
	data := pterm.TableData{{"Crate", "Tier", "Month", "Paid ZAP", "Time", "Tx"}}
	for _, r := range records {
		data = append(data, []string{
			r.CrateID, strconv.Itoa(r.Tier), strconv.Itoa(r.MonthSlot), r.PaidZap, unixTime(r.Timestamp), r.TransactionHash,
		})
	}
	return data
}

func raffleRows(records []domain.RafflePurchase) pterm.TableData {
	data := pterm.TableData{{"Raffle", "Type", "Paid ZAP", "Time", "Tx"}}
	for _, r := range records {
		data = append(data, []string{
			r.RaffleID, strconv.Itoa(r.RaffleTypeID), r.PaidZap, unixTime(r.Timestamp), r.TransactionHash,
		})
	}
	return data
}

func prizeRows(records []domain.PrizeClaim) pterm.TableData {
	data := pterm.TableData{{"Crate", "Prize", "Time", "Tx"}}
	for _, r := range records {
		data = append(data, []string{r.CrateID, r.PrizeAmountClaimed, unixTime(r.Timestamp), r.TransactionHash})
	}
	return data
}

func merchRows(records []domain.MerchPurchase) pterm.TableData {
	data := pterm.TableData{{"Merch", "Type", "Qty", "Time", "Tx"}}
	for _, r := range records {
		data = append(data, []string{
			r.MerchID, strconv.Itoa(r.MerchTypeID), strconv.Itoa(r.Quantity), unixTime(r.Timestamp), r.TransactionHash,
		})
	}
	return data
}

// objectRows lists an Object's fields in key order.
func objectRows(obj domain.Object) pterm.TableData {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	data := pterm.TableData{{"Field", "Value"}}
	for _, k := range keys {
		data = append(data, []string{k, fmt.Sprint(obj[k])})
	}
	return data
}

// objectListRows uses the union of all keys as columns.
func objectListRows(objs []domain.Object) pterm.TableData {
	seen := map[string]bool{}
	var cols []string
	for _, o := range objs {
		for k := range o {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	sort.Strings(cols)

	data := pterm.TableData{cols}
	for _, o := range objs {
		row := make([]string, len(cols))
		for i, c := range cols {
			if v, ok := o[c]; ok {
				row[i] = fmt.Sprint(v)
			}
		}
		data = append(data, row)
	}
	return data
}

func summaryRows(s domain.SpendSummary) pterm.TableData {
	return pterm.TableData{
		{"Metric", "Value"},
		{"Account", s.Account},
		{"Crates bought", strconv.Itoa(s.CrateCount)},
		{"Crate ZAP", s.CrateZap},
		{"Raffle tickets", strconv.Itoa(s.RaffleTickets)},
		{"Raffle ZAP", s.RaffleZap},
		{"Total ZAP", s.TotalZap},
		{"Prize claims", strconv.Itoa(s.PrizeClaims)},
		{"Prize claimed", s.PrizeClaimed},
		{"Merch purchases", strconv.Itoa(s.MerchPurchases)},
	}
}
