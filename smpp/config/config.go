// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"go.smppd.dev/smpp/pdu"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("config: invalid")

// Credential is one ESME allowed to bind.
type Credential struct {
	SystemID string `toml:"system_id"`
	Password string `toml:"password"`
}

// Config is the server configuration.
type Config struct {
	ListenAddress string
	AdminAddress  string
	// SystemID is sent back in every positive bind_resp.
	SystemID string
	// BindTimeout bounds how long a fresh connection may stay unbound.
	BindTimeout time.Duration
	// ReadTimeout closes a session that sends nothing for this long; zero disables it.
	ReadTimeout  time.Duration
	MaxPDULength uint32
	Credentials  []Credential
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		ListenAddress: "0.0.0.0:2775",
		AdminAddress:  "127.0.0.1:8080",
		SystemID:      "smppd",
		BindTimeout:   5 * time.Second,
		ReadTimeout:   60 * time.Second,
		MaxPDULength:  pdu.DefaultMaxLength,
	}
}

// Validate checks the fields the server cannot run without.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ListenAddress) == "" {
		return fmt.Errorf("%w: missing listen_address", ErrInvalidConfig)
	}
	if c.SystemID == "" || len(c.SystemID) > 15 {
		return fmt.Errorf("%w: system_id must be 1 to 15 characters", ErrInvalidConfig)
	}
	if c.BindTimeout <= 0 {
		return fmt.Errorf("%w: bind_timeout must be positive", ErrInvalidConfig)
	}
	if c.ReadTimeout < 0 {
		return fmt.Errorf("%w: read_timeout must not be negative", ErrInvalidConfig)
	}
	if c.MaxPDULength < pdu.HeaderLength {
		return fmt.Errorf("%w: max_pdu_length below header length", ErrInvalidConfig)
	}
	seen := make(map[string]struct{}, len(c.Credentials))
	for i, cred := range c.Credentials {
		if strings.TrimSpace(cred.SystemID) == "" {
			return fmt.Errorf("%w: credentials[%d] missing system_id", ErrInvalidConfig, i)
		}
		if _, dup := seen[cred.SystemID]; dup {
			return fmt.Errorf("%w: credentials[%d] duplicates system_id %q", ErrInvalidConfig, i, cred.SystemID)
		}
		seen[cred.SystemID] = struct{}{}
	}
	return nil
}

type fileConfig struct {
	ListenAddress string       `toml:"listen_address"`
	AdminAddress  string       `toml:"admin_address"`
	SystemID      string       `toml:"system_id"`
	BindTimeout   string       `toml:"bind_timeout"`
	ReadTimeout   string       `toml:"read_timeout"`
	MaxPDULength  uint32       `toml:"max_pdu_length"`
	Credentials   []Credential `toml:"credentials"`
}

// LoadFile overlays the keys present in the TOML file at path onto
// DefaultConfig.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	if meta.IsDefined("listen_address") {
		cfg.ListenAddress = strings.TrimSpace(raw.ListenAddress)
	}

	if meta.IsDefined("admin_address") {
		cfg.AdminAddress = strings.TrimSpace(raw.AdminAddress)
	}

	if meta.IsDefined("system_id") {
		cfg.SystemID = strings.TrimSpace(raw.SystemID)
	}

	if meta.IsDefined("bind_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.BindTimeout))
		if err != nil {
			return Config{}, fmt.Errorf("parse bind_timeout: %w", err)
		}
		cfg.BindTimeout = d
	}

	if meta.IsDefined("read_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.ReadTimeout))
		if err != nil {
			return Config{}, fmt.Errorf("parse read_timeout: %w", err)
		}
		cfg.ReadTimeout = d
	}

	if meta.IsDefined("max_pdu_length") {
		cfg.MaxPDULength = raw.MaxPDULength
	}

	if meta.IsDefined("credentials") {
		cfg.Credentials = raw.Credentials
	}

	return cfg, cfg.Validate()
}
