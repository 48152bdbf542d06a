// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"go.smppd.dev/smpp/admin"
	"go.smppd.dev/smpp/logging"
	"go.smppd.dev/smpp/server"
	"go.smppd.dev/smpp/session"
)

func main() {
	opts := getCLIArgs()
	logging.SetLogLevel(opts.LogLevel)

	cfg, err := loadConfig(opts)
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go trapSignals(cancel)

	smppServer := server.NewServer(cfg, session.NewCredentialsAuthenticator(cfg.Credentials))
	if err := smppServer.Listen(); err != nil {
		log.WithError(err).Fatal("SMPP server failed to listen")
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return smppServer.Serve(groupCtx)
	})

	if cfg.AdminAddress != "" {
		adminServer := admin.NewServer(cfg.AdminAddress, smppServer.Sessions())
		if err := adminServer.Listen(); err != nil {
			log.WithError(err).Fatal("Admin API failed to listen")
		}
		group.Go(func() error {
			return adminServer.Serve(groupCtx)
		})
	}

	if err := group.Wait(); err != nil && err != context.Canceled {
		log.WithError(err).Fatal("smppd exited with error")
	}
	log.Info("smppd stopped")
}

func trapSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigs
	log.WithField("signal", sig.String()).Info("Received signal, shutting down")
	cancel()
}
