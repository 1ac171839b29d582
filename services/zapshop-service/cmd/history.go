package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	apperrors "github.com/quangdang46/zapshop/shared/errors"

	"github.com/quangdang46/zapshop/services/zapshop-service/internal/domain"
)

var historyFlags struct {
	Account  string
	Limit    int
	PageSize int
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Purchase and claim history of one account",
}

var historyCratesCmd = &cobra.Command{
	Use:   "crates",
	Short: "Crates bought by the account",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := shop.rpcContext(cmd.Context())
		defer cancel()
		records, err := shop.history.CrateHistory(ctx, historyFlags.Account, historyOptions())
		if err != nil {
			return err
		}
		return render(records, func() pterm.TableData { return crateRows(records) })
	},
}

var historyRafflesCmd = &cobra.Command{
	Use:   "raffles",
	Short: "Raffle tickets bought by the account, one row per ticket",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := shop.rpcContext(cmd.Context())
		defer cancel()
		records, err := shop.history.RaffleHistory(ctx, historyFlags.Account, historyOptions())
		if err != nil {
			return err
		}
		return render(records, func() pterm.TableData { return raffleRows(records) })
	},
}

var historyPrizesCmd = &cobra.Command{
	Use:   "prizes",
	Short: "Crate prizes claimed by the account",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := shop.rpcContext(cmd.Context())
		defer cancel()
		records, err := shop.history.PrizeClaimHistory(ctx, historyFlags.Account, historyOptions())
		if err != nil {
			return err
		}
		return render(records, func() pterm.TableData { return prizeRows(records) })
	},
}

var historyMerchCmd = &cobra.Command{
	Use:   "merch",
	Short: "Merch bought by the account",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := shop.rpcContext(cmd.Context())
		defer cancel()
		records, err := shop.history.MerchHistory(ctx, historyFlags.Account, historyOptions())
		if err != nil {
			return err
		}
		return render(records, func() pterm.TableData { return merchRows(records) })
	},
}

var summaryAccount string

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Total ZAP spent and items received by an account",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := domain.ValidateAddress(summaryAccount); err != nil {
			return apperrors.InvalidInput("account", err.Error())
		}
		ctx, cancel := shop.rpcContext(cmd.Context())
		defer cancel()
		summary, err := shop.history.Summary(ctx, summaryAccount)
		if err != nil {
			return err
		}
		return render(summary, func() pterm.TableData { return summaryRows(summary) })
	},
}

func historyOptions() domain.FetchOptions {
	return domain.FetchOptions{Limit: historyFlags.Limit, PageSize: historyFlags.PageSize}
}

func init() {
	historyCmd.PersistentFlags().StringVar(&historyFlags.Account, "account", "", "account address (0x...)")
	historyCmd.PersistentFlags().IntVar(&historyFlags.Limit, "limit", 0, "maximum records to return (default per event)")
	historyCmd.PersistentFlags().IntVar(&historyFlags.PageSize, "page-size", 0, "events requested per page (default 100)")
	_ = historyCmd.MarkPersistentFlagRequired("account")

	historyCmd.AddCommand(historyCratesCmd, historyRafflesCmd, historyPrizesCmd, historyMerchCmd)

	summaryCmd.Flags().StringVar(&summaryAccount, "account", "", "account address (0x...)")
	_ = summaryCmd.MarkFlagRequired("account")
}
