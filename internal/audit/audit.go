// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

// Package audit is the operational event store of SPEC_FULL.md §4.12:
// a gorm model recording issuance/verification outcomes for
// GET /metrics/categories, opened against sqlite or postgres exactly
// as the teacher's DatabaseConfig.getState selects a driver. It never
// stores a seed or ticket value.
package audit

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Operation classifies which API call produced the event.
type Operation string

const (
	OpIssue  Operation = "issue"
	OpVerify Operation = "verify"
)

// Outcome is the recorded classification of the operation.
type Outcome string

const (
	OutcomeOK      Outcome = "ok"
	OutcomeLive    Outcome = "live"
	OutcomeDead    Outcome = "dead"
	OutcomeInvalid Outcome = "invalid"
	OutcomeError   Outcome = "error"
)

// Event is one row recorded per API call. It deliberately carries no
// seed or ticket field.
type Event struct {
	ID             uint `gorm:"primarykey"`
	Timestamp      time.Time
	Operation      Operation `gorm:"index"`
	CategoryNumber uint8     `gorm:"index"`
	Outcome        Outcome   `gorm:"index"`
	DurationMicros int64
}

// Store wraps the gorm database handle.
type Store struct {
	db *gorm.DB
}

// Open connects to dbType ("sqlite" or "postgres") using dsn and
// migrates the Event table, mirroring the teacher's
// DatabaseConfig.getState dispatch.
func Open(dbType, dsn string) (*Store, error) {
	var dialector gorm.Dialector
	switch dbType {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("audit: unsupported database type %q", dbType)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("audit: opening database: %w", err)
	}
	if err := db.AutoMigrate(&Event{}); err != nil {
		return nil, fmt.Errorf("audit: migrating schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Record writes one event, fire-and-forget: a write failure is logged
// but never propagated, since audit logging must never fail the
// request it describes (SPEC_FULL.md §4.12).
func (s *Store) Record(op Operation, category byte, outcome Outcome, duration time.Duration) {
	if s == nil {
		return
	}
	event := Event{
		Timestamp:      time.Now().UTC(),
		Operation:      op,
		CategoryNumber: category,
		Outcome:        outcome,
		DurationMicros: duration.Microseconds(),
	}
	if err := s.db.Create(&event).Error; err != nil {
		slog.Error("audit: failed to record event", "operation", op, "category", category, "error", err)
	}
}

// CategorySummary is one row of GET /metrics/categories.
type CategorySummary struct {
	CategoryNumber uint8   `json:"category"`
	Outcome        Outcome `json:"outcome"`
	Count          int64   `json:"count"`
}

// Summarize returns per-category, per-outcome event counts.
func (s *Store) Summarize() ([]CategorySummary, error) {
	var rows []CategorySummary
	err := s.db.Model(&Event{}).
		Select("category_number, outcome, count(*) as count").
		Group("category_number, outcome").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("audit: summarizing events: %w", err)
	}
	return rows, nil
}
