package main

import (
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	apperrors "github.com/quangdang46/zapshop/shared/errors"

	"github.com/quangdang46/zapshop/services/zapshop-service/internal/domain"
)

var limitsFlags struct {
	Account   string
	Item      string
	Quantity  int64
	Tier      int
	MerchType int64
}

var limitsCmd = &cobra.Command{
	Use:   "limits",
	Short: "Check whether a purchase fits today's limits",
	Long:  "Advisory only: the contract makes the final decision when the transaction lands.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		req := domain.LimitRequest{
			Item:     domain.ItemType(limitsFlags.Item),
			Quantity: limitsFlags.Quantity,
			Tier:     limitsFlags.Tier,
		}
		switch req.Item {
		case domain.ItemCrate, domain.ItemRaffle, domain.ItemMerch:
		default:
			return apperrors.InvalidInput("item", "must be crate, raffle or merch")
		}
		if limitsFlags.MerchType >= 0 {
			id := uint64(limitsFlags.MerchType)
			req.MerchTypeID = &id
		}

		ctx, cancel := shop.rpcContext(cmd.Context())
		defer cancel()
		result := shop.limits.Check(ctx, limitsFlags.Account, req)

		if flags.Output == outputTable {
			if result.CanBuy {
				pterm.Success.Println(result.Message)
			} else {
				pterm.Warning.Println(result.Message)
			}
		}
		return render(result, func() pterm.TableData {
			return pterm.TableData{
				{"Can buy", "Purchased", "Limit", "Remaining"},
				{
					strconv.FormatBool(result.CanBuy),
					strconv.FormatInt(result.Purchased, 10),
					strconv.FormatInt(result.Limit, 10),
					strconv.FormatInt(result.Remaining, 10),
				},
			}
		})
	},
}

func init() {
	limitsCmd.Flags().StringVar(&limitsFlags.Account, "account", "", "account address (0x...)")
	limitsCmd.Flags().StringVar(&limitsFlags.Item, "item", "", "crate|raffle|merch")
	limitsCmd.Flags().Int64Var(&limitsFlags.Quantity, "quantity", 1, "items to buy")
	limitsCmd.Flags().IntVar(&limitsFlags.Tier, "tier", 0, "crate tier: 1 bronze, 2 silver, 3 gold")
	limitsCmd.Flags().Int64Var(&limitsFlags.MerchType, "merch-type", -1, "merch type id (merch only)")
	_ = limitsCmd.MarkFlagRequired("account")
	_ = limitsCmd.MarkFlagRequired("item")
}
