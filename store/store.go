// Package store persists SPC configurations and violation history keyed
// by parameter identifier.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/machshop/spc"
	"github.com/machshop/spc/pkg/rules"
)

// ErrNotFound indicates no configuration exists for the parameter
var ErrNotFound = errors.New("configuration not found")

// ViolationRecord is a persisted rule violation.  Records get a fresh id
// on every analysis call; deduplication across overlapping windows is the
// caller's concern.
type ViolationRecord struct {
	ID          string          `json:"id"`
	ParameterID string          `json:"parameterId"`
	Rule        int             `json:"ruleNumber"`
	Severity    rules.Severity  `json:"severity"`
	Indices     []int           `json:"dataPointIndices"`
	Description string          `json:"description"`
	Sensitivity rules.Sensitivity `json:"sensitivity"`
	RecordedAt  time.Time       `json:"recordedAt"`
}

// NewRecords wraps scan output into persistable records stamped with a
// fresh id and the analysis time
func NewRecords(parameterID string, sens rules.Sensitivity, at time.Time, violations []rules.Violation) []ViolationRecord {
	out := make([]ViolationRecord, 0, len(violations))
	for _, v := range violations {
		out = append(out, ViolationRecord{
			ID:          uuid.NewString(),
			ParameterID: parameterID,
			Rule:        v.Rule,
			Severity:    v.Severity,
			Indices:     v.Indices,
			Description: v.Description,
			Sensitivity: sens,
			RecordedAt:  at,
		})
	}
	return out
}

// Store is the persistence boundary for configurations and violation
// history.  Concurrent writers per parameter are serialized by the
// implementation.
type Store interface {
	SaveConfig(ctx context.Context, cfg *spc.Config) error
	GetConfig(ctx context.Context, parameterID string) (*spc.Config, error)
	Deactivate(ctx context.Context, parameterID string) error
	SaveViolations(ctx context.Context, records []ViolationRecord) error
	RecentViolations(ctx context.Context, parameterID string, limit int) ([]ViolationRecord, error)
}
