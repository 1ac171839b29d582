package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	apperrors "github.com/quangdang46/zapshop/shared/errors"
	"github.com/quangdang46/zapshop/shared/monitoring"
)

type globalFlags struct {
	Output  string
	NoColor bool
}

var (
	flags globalFlags
	shop  *app
)

var rootCmd = &cobra.Command{
	Use:           "zapshop",
	Short:         "Read the ZAP shop contract on Supra",
	Long:          "zapshop reads purchase history, shop views and advisory purchase limits from the zap_shop_v1 contract, and can serve them over HTTP.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		switch flags.Output {
		case outputTable, outputJSON:
		default:
			return apperrors.InvalidInput("output", "must be table or json")
		}
		if flags.NoColor {
			pterm.DisableColor()
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		shop = a
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		if shop != nil {
			shop.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flags.Output, "output", "o", outputTable, "output format: table|json")
	rootCmd.PersistentFlags().BoolVar(&flags.NoColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(limitsCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}

	// PersistentPostRun is skipped when a command fails.
	appErr := apperrors.Handle(err)
	if shop != nil {
		if appErr.StatusCode >= http.StatusInternalServerError {
			shop.metrics.RecordError(string(appErr.Type))
			monitoring.CaptureError(err, map[string]string{"code": appErr.Code}, nil)
		}
		shop.Close()
	}
	pterm.Error.Println(fmt.Sprintf("%s: %s", appErr.Code, appErr.Message))
	os.Exit(1)
}
