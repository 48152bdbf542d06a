// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	log "github.com/sirupsen/logrus"

	"go.smppd.dev/smpp/config"
)

type options struct {
	ConfigFile  string        `long:"config" description:"path to a TOML configuration file"`
	LogLevel    string        `long:"log-level" default:"info" description:"log level"`
	Listen      string        `long:"listen" description:"SMPP listen address, overrides listen_address"`
	Admin       string        `long:"admin" description:"admin API listen address, overrides admin_address"`
	BindTimeout time.Duration `long:"bind-timeout" description:"how long a connection may stay unbound, overrides bind_timeout"`
}

func getCLIArgs() options {
	opts, err := parseArgs(os.Args)
	if err != nil {
		log.WithError(err).Fatal("Failed to parse command line arguments:", os.Args)
	}
	return opts
}

func parseArgs(args []string) (options, error) {
	var opts options
	parser := flags.NewParser(&opts, flags.IgnoreUnknown)
	_, err := parser.ParseArgs(args)
	return opts, err
}

// loadConfig layers defaults, the optional file and then explicit flags
func loadConfig(opts options) (config.Config, error) {
	cfg := config.DefaultConfig()
	if opts.ConfigFile != "" {
		var err error
		if cfg, err = config.LoadFile(opts.ConfigFile); err != nil {
			return config.Config{}, err
		}
	}

	if opts.Listen != "" {
		cfg.ListenAddress = opts.Listen
	}
	if opts.Admin != "" {
		cfg.AdminAddress = opts.Admin
	}
	if opts.BindTimeout != 0 {
		cfg.BindTimeout = opts.BindTimeout
	}

	return cfg, cfg.Validate()
}
