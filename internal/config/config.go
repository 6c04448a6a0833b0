// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

// Package config holds the seedticket server's typed configuration,
// decoded from viper (flags, environment, and an optional YAML file)
// via mapstructure, following the teacher's FDOServerConfig pattern.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// LogConfig controls the slog/devlog handler.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// HTTPConfig configures the issuer/verifier HTTP surface (A4).
type HTTPConfig struct {
	IP            string `mapstructure:"ip"`
	Port          string `mapstructure:"port"`
	RateLimitRPS  int    `mapstructure:"rate_limit_rps"`
	RateLimitBurs int    `mapstructure:"rate_limit_burst"`
}

// ListenAddress returns the concatenated IP:Port address for listening.
func (h *HTTPConfig) ListenAddress() string {
	return h.IP + ":" + h.Port
}

func (h *HTTPConfig) validate() error {
	if h.IP == "" {
		return errors.New("the server's HTTP IP address is required")
	}
	if h.Port == "" {
		return errors.New("the server's HTTP port is required")
	}
	if h.RateLimitRPS <= 0 {
		return errors.New("http.rate_limit_rps must be > 0")
	}
	if h.RateLimitBurs <= 0 {
		return errors.New("http.rate_limit_burst must be > 0")
	}
	return nil
}

// DatabaseConfig configures the audit/metrics store (A5).
type DatabaseConfig struct {
	Type string `mapstructure:"type"`
	DSN  string `mapstructure:"dsn"`
}

func (dc *DatabaseConfig) validate() error {
	if dc.DSN == "" {
		return errors.New("database configuration error: dsn is required")
	}
	dc.Type = strings.ToLower(dc.Type)
	if dc.Type != "sqlite" && dc.Type != "postgres" {
		return fmt.Errorf("unsupported database type: %s (must be 'sqlite' or 'postgres')", dc.Type)
	}
	return nil
}

// TicketingConfig holds the ticket engine's process-wide constants of
// spec.md §3.
type TicketingConfig struct {
	SeedDir      string        `mapstructure:"seed_dir"`
	TmpDir       string        `mapstructure:"tmp_dir"`
	LiveTime     time.Duration `mapstructure:"live_time"`
	DeadTime     time.Duration `mapstructure:"dead_time"`
	LD50         time.Duration `mapstructure:"ld50"`
	ForgeSuccess float64       `mapstructure:"forge_success"`
	Blocks       int           `mapstructure:"blocks"`
	LockTimeout  time.Duration `mapstructure:"lock_timeout"`
}

func (tc *TicketingConfig) validate() error {
	if tc.SeedDir == "" {
		return errors.New("ticketing.seed_dir is required")
	}
	if info, err := os.Stat(tc.SeedDir); err != nil || !info.IsDir() {
		return fmt.Errorf("ticketing.seed_dir %q is not an accessible directory", tc.SeedDir)
	}
	if tc.TmpDir == "" {
		return errors.New("ticketing.tmp_dir is required")
	}
	if info, err := os.Stat(tc.TmpDir); err != nil || !info.IsDir() {
		return fmt.Errorf("ticketing.tmp_dir %q is not an accessible directory", tc.TmpDir)
	}
	if tc.Blocks != 1 && tc.Blocks != 2 {
		return fmt.Errorf("ticketing.blocks must be 1 or 2, got %d", tc.Blocks)
	}
	if tc.LiveTime <= 0 {
		return errors.New("ticketing.live_time must be > 0")
	}
	if tc.DeadTime <= tc.LiveTime {
		return errors.New("ticketing.dead_time must be greater than live_time")
	}
	if tc.LD50 <= 0 {
		return errors.New("ticketing.ld50 must be > 0")
	}
	if tc.ForgeSuccess <= 0 || tc.ForgeSuccess >= 1 {
		return errors.New("ticketing.forge_success must be in (0, 1)")
	}
	if tc.LockTimeout <= 0 {
		return errors.New("ticketing.lock_timeout must be > 0")
	}
	return nil
}

// ServerConfig is the top-level configuration structure, decoded by
// viper's Unmarshal into mapstructure tags exactly as the teacher's
// FDOServerConfig is.
type ServerConfig struct {
	Log       LogConfig       `mapstructure:"log"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	DB        DatabaseConfig  `mapstructure:"db"`
	Ticketing TicketingConfig `mapstructure:"ticketing"`
}

// Validate runs every sub-section's validation pass, failing boot
// loudly on the first problem found (spec.md §7 Configuration error
// class).
func (c *ServerConfig) Validate() error {
	if err := c.HTTP.validate(); err != nil {
		return err
	}
	if err := c.DB.validate(); err != nil {
		return err
	}
	if err := c.Ticketing.validate(); err != nil {
		return err
	}
	return nil
}
