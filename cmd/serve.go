// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/speedrun-tools/seedticket/api/handlers"
	"github.com/speedrun-tools/seedticket/internal/audit"
	"github.com/speedrun-tools/seedticket/internal/category"
	"github.com/speedrun-tools/seedticket/internal/issuance"
	"github.com/speedrun-tools/seedticket/internal/ratelimit"
	"github.com/speedrun-tools/seedticket/internal/secrets"
	"github.com/speedrun-tools/seedticket/internal/ticket"
	"github.com/speedrun-tools/seedticket/internal/throttle"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the seed-ticketing HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := rootCmdLoadConfig(cmd); err != nil {
		return err
	}

	key := secrets.LoadPrivateKey()
	salt := secrets.LoadSalt()

	reg, err := category.Load(category.LoadOptions{
		SeedDir: serverCfg.Ticketing.SeedDir,
		LD50:    serverCfg.Ticketing.LD50,
	})
	if err != nil {
		slog.Error("Error loading category archives", "err", err)
		return err
	}
	slog.Info("Loaded categories", "count", reg.Len(), "total_seeds", reg.Total())

	store, err := audit.Open(serverCfg.DB.Type, serverCfg.DB.DSN)
	if err != nil {
		slog.Error("Error opening audit store", "err", err)
		return err
	}

	engine := &issuance.Engine{
		Registry: reg,
		Throttle: &throttle.Throttle{
			TmpDir:      serverCfg.Ticketing.TmpDir,
			Key:         key,
			Salt:        salt,
			LockTimeout: serverCfg.Ticketing.LockTimeout,
		},
		Key:          key,
		Salt:         salt,
		Blocks:       ticket.Blocks(serverCfg.Ticketing.Blocks),
		LiveTime:     serverCfg.Ticketing.LiveTime,
		DeadTime:     serverCfg.Ticketing.DeadTime,
		ForgeSuccess: serverCfg.Ticketing.ForgeSuccess,
	}

	srv := &handlers.Server{Engine: engine, Audit: store}
	limiter := ratelimit.New(serverCfg.HTTP.RateLimitRPS, serverCfg.HTTP.RateLimitBurs)

	httpServer := &http.Server{
		Addr:    serverCfg.HTTP.ListenAddress(),
		Handler: srv.Routes(limiter),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("Shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(ctx)
	case err := <-errCh:
		slog.Error("Error serving HTTP", "err", err)
		return err
	}
}
