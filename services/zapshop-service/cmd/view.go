package main

import (
	"context"
	"strconv"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/quangdang46/zapshop/services/zapshop-service/internal/domain"
)

var viewFlags struct {
	Account   string
	CrateID   uint64
	MerchType uint64
	At        int64
	Refresh   bool
}

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Call zap_shop_v1 view functions",
}

// accountView wraps a view that needs --account.
func accountView(use, short string, run func(cmd *cobra.Command) error) *cobra.Command {
	c := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd)
		},
	}
	c.Flags().StringVar(&viewFlags.Account, "account", "", "account address (0x...)")
	_ = c.MarkFlagRequired("account")
	return c
}

func keyValue(key, value string) pterm.TableData {
	return pterm.TableData{{"Field", "Value"}, {key, value}}
}

var viewBalanceCmd = accountView("balance", "ZAP balance held by the shop for the account", func(cmd *cobra.Command) error {
	ctx, cancel := shop.rpcContext(cmd.Context())
	defer cancel()
	balance, err := shop.views.ZapBalance(ctx, viewFlags.Account)
	if err != nil {
		return err
	}
	return render(map[string]string{"zap_balance": balance}, func() pterm.TableData {
		return keyValue("zap_balance", balance)
	})
})

var viewInitiatedCmd = accountView("initiated", "Whether the account was initiated by an admin", func(cmd *cobra.Command) error {
	ctx, cancel := shop.rpcContext(cmd.Context())
	defer cancel()
	status, err := shop.views.UserInitiated(ctx, viewFlags.Account)
	if err != nil {
		return err
	}
	return render(status, func() pterm.TableData {
		return pterm.TableData{
			{"Field", "Value"},
			{"initiated", strconv.FormatBool(status.Initiated)},
			{"zap_balance", status.ZapBalance},
		}
	})
})

var viewInventoryCmd = accountView("inventory", "Inventory capacity of the account", func(cmd *cobra.Command) error {
	ctx, cancel := shop.rpcContext(cmd.Context())
	defer cancel()
	inv, err := shop.views.InventoryFull(ctx, viewFlags.Account)
	if err != nil {
		return err
	}
	return render(inv, func() pterm.TableData { return objectRows(inv) })
})

var viewDailyCmd = accountView("daily", "Purchases counted against today's caps", func(cmd *cobra.Command) error {
	at := time.Now()
	if viewFlags.At > 0 {
		at = time.Unix(viewFlags.At, 0)
	}
	ctx, cancel := shop.rpcContext(cmd.Context())
	defer cancel()
	daily, err := shop.views.DailyPurchases(ctx, viewFlags.Account, at)
	if err != nil {
		return err
	}
	return render(daily, func() pterm.TableData { return objectRows(daily) })
})

var viewCrateCmd = accountView("crate", "Details of one crate owned by the account", func(cmd *cobra.Command) error {
	ctx, cancel := shop.rpcContext(cmd.Context())
	defer cancel()
	details, err := shop.views.CrateDetails(ctx, viewFlags.Account, viewFlags.CrateID)
	if err != nil {
		return err
	}
	opened, err := shop.views.CrateOpened(ctx, viewFlags.Account, viewFlags.CrateID)
	if err != nil {
		return err
	}
	prize, err := shop.views.PrizeAllotted(ctx, viewFlags.Account, viewFlags.CrateID)
	if err != nil {
		return err
	}

	out := domain.Object{}
	for k, v := range details {
		out[k] = v
	}
	out["opened"] = opened
	out["prize_allotted"] = prize
	return render(out, func() pterm.TableData { return objectRows(out) })
})

var viewMerchQuantityCmd = accountView("merch-quantity", "Merch of one type bought by the account this season", func(cmd *cobra.Command) error {
	ctx, cancel := shop.rpcContext(cmd.Context())
	defer cancel()
	qty, err := shop.views.UserMerchQuantity(ctx, viewFlags.Account, viewFlags.MerchType)
	if err != nil {
		return err
	}
	return render(qty, func() pterm.TableData { return objectRows(qty) })
})

var viewConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Shop configuration (prices, caps, season)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := shop.rpcContext(cmd.Context())
		defer cancel()
		if err := refreshViews(ctx); err != nil {
			return err
		}
		cfg, err := shop.views.Config(ctx)
		if err != nil {
			return err
		}
		return render(cfg, func() pterm.TableData { return objectRows(cfg) })
	},
}

var viewMerchCmd = &cobra.Command{
	Use:   "merch",
	Short: "Merch catalog",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := shop.rpcContext(cmd.Context())
		defer cancel()
		if err := refreshViews(ctx); err != nil {
			return err
		}
		items, err := shop.views.AllMerchDetails(ctx)
		if err != nil {
			return err
		}
		return render(items, func() pterm.TableData { return objectListRows(items) })
	},
}

// refreshViews drops cached config and catalog entries when --refresh is set.
func refreshViews(ctx context.Context) error {
	if !viewFlags.Refresh {
		return nil
	}
	return shop.views.Invalidate(ctx)
}

func init() {
	for _, c := range []*cobra.Command{viewConfigCmd, viewMerchCmd} {
		c.Flags().BoolVar(&viewFlags.Refresh, "refresh", false, "bypass the view cache for this read")
	}
	viewDailyCmd.Flags().Int64Var(&viewFlags.At, "at", 0, "unix time to evaluate (default now)")
	viewCrateCmd.Flags().Uint64Var(&viewFlags.CrateID, "id", 0, "crate id")
	_ = viewCrateCmd.MarkFlagRequired("id")
	viewMerchQuantityCmd.Flags().Uint64Var(&viewFlags.MerchType, "merch-type", 0, "merch type id")
	_ = viewMerchQuantityCmd.MarkFlagRequired("merch-type")

	viewCmd.AddCommand(
		viewBalanceCmd,
		viewInitiatedCmd,
		viewInventoryCmd,
		viewDailyCmd,
		viewCrateCmd,
		viewMerchQuantityCmd,
		viewConfigCmd,
		viewMerchCmd,
	)
}
