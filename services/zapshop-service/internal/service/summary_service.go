package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/quangdang46/zapshop/shared/errors"

	"github.com/quangdang46/zapshop/services/zapshop-service/internal/domain"
)

// Summary fetches all four histories concurrently and totals them. The
// first failing fetch cancels the others.
func (s *HistoryService) Summary(ctx context.Context, account string) (domain.SpendSummary, error) {
	var (
		crates  []domain.CratePurchase
		raffles []domain.RafflePurchase
		prizes  []domain.PrizeClaim
		merch   []domain.MerchPurchase
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		crates, err = s.CrateHistory(gctx, account, domain.FetchOptions{})
		return err
	})
	g.Go(func() (err error) {
		raffles, err = s.RaffleHistory(gctx, account, domain.FetchOptions{})
		return err
	})
	g.Go(func() (err error) {
		prizes, err = s.PrizeClaimHistory(gctx, account, domain.FetchOptions{})
		return err
	})
	g.Go(func() (err error) {
		merch, err = s.MerchHistory(gctx, account, domain.FetchOptions{})
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.SpendSummary{}, err
	}

	return SummarizeSpend(account, crates, raffles, prizes, merch)
}

// SummarizeSpend totals ZAP spent on crates and raffles and ZAP won from
// prizes. Amounts are u64 on chain but the sums are carried in 256 bits.
// Raffle records fanned out of one event share its paid_zap, which is counted
// once.
func SummarizeSpend(account string, crates []domain.CratePurchase, raffles []domain.RafflePurchase,
	prizes []domain.PrizeClaim, merch []domain.MerchPurchase) (domain.SpendSummary, error) {
	crateZap := new(uint256.Int)
	for _, c := range crates {
		if err := addAmount(crateZap, c.PaidZap, "paid_zap"); err != nil {
			return domain.SpendSummary{}, err
		}
	}

	raffleZap := new(uint256.Int)
	seen := make(map[string]struct{}, len(raffles))
	for _, r := range raffles {
		key := fmt.Sprintf("%s|%d|%d|%s", r.TransactionHash, r.RaffleTypeID, r.Timestamp, r.PaidZap)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if err := addAmount(raffleZap, r.PaidZap, "paid_zap"); err != nil {
			return domain.SpendSummary{}, err
		}
	}

	claimed := new(uint256.Int)
	for _, p := range prizes {
		if err := addAmount(claimed, p.PrizeAmountClaimed, "prize_amount_claimed"); err != nil {
			return domain.SpendSummary{}, err
		}
	}

	total := new(uint256.Int).Add(crateZap, raffleZap)
	return domain.SpendSummary{
		Account:        account,
		CrateCount:     len(crates),
		RaffleTickets:  len(raffles),
		CrateZap:       crateZap.Dec(),
		RaffleZap:      raffleZap.Dec(),
		TotalZap:       total.Dec(),
		PrizeClaims:    len(prizes),
		PrizeClaimed:   claimed.Dec(),
		MerchPurchases: len(merch),
	}, nil
}

// addAmount adds a decimal amount to sum. Empty amounts count as zero.
func addAmount(sum *uint256.Int, amount, field string) error {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil
	}
	v, err := uint256.FromDecimal(amount)
	if err != nil {
		return apperrors.MalformedResponse(field, err).WithDetails("value", amount)
	}
	if _, overflow := sum.AddOverflow(sum, v); overflow {
		return apperrors.Internal(field + " total overflows 256 bits")
	}
	return nil
}
