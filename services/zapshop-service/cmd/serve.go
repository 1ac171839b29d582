package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	sharedtls "github.com/quangdang46/zapshop/shared/tls"

	"github.com/quangdang46/zapshop/services/zapshop-service/internal/config"
	"github.com/quangdang46/zapshop/services/zapshop-service/internal/transport/httpapi"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve history, views and limits over HTTP",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if shop.cfg.Environment != config.Development {
			gin.SetMode(gin.ReleaseMode)
		}
		addr := serveAddr
		if addr == "" {
			addr = shop.cfg.HTTP.Addr
		}

		h := httpapi.NewHandler(shop.history, shop.views, shop.limits, shop.metrics, shop.logger)
		if shop.redis != nil {
			h.AddHealthCheck("redis", shop.redis.HealthCheck)
		}
		router := httpapi.NewRouter(h, httpapi.RouterConfig{
			RequestTimeout: shop.cfg.Timeouts.HTTP,
			Metrics:        shop.metrics,
			Logger:         shop.logger,
			Panics:         shop.panics,
		})

		srv := &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		if shop.cfg.HTTP.TLS.Enabled() {
			tlsCfg, err := sharedtls.ServerConfig(shop.cfg.HTTP.TLS)
			if err != nil {
				return err
			}
			srv.TLSConfig = tlsCfg
		}

		errCh := make(chan error, 1)
		shop.panics.SafeGo("http-server", func() {
			shop.logger.Infof("listening on %s (tls=%t)", addr, srv.TLSConfig != nil)
			var err error
			if srv.TLSConfig != nil {
				// Certificates are already loaded into TLSConfig.
				err = srv.ListenAndServeTLS("", "")
			} else {
				err = srv.ListenAndServe()
			}
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		})

		select {
		case err := <-errCh:
			return err
		case <-cmd.Context().Done():
		}

		shop.logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default HTTP_ADDR or :8080)")
}
