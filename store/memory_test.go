package store

import (
	"context"
	"testing"
	"time"

	"github.com/machshop/spc"
	"github.com/machshop/spc/pkg/rules"
	"github.com/stretchr/testify/assert"
)

func TestMemoryConfigRoundtrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	cfg, errs := spc.NewConfig("param-001", spc.USL(12), spc.LSL(8))
	assert.Empty(t, errs)
	assert.NoError(t, m.SaveConfig(ctx, cfg))

	got, err := m.GetConfig(ctx, "param-001")
	assert.NoError(t, err)
	assert.Equal(t, cfg, got)

	// mutations of the returned copy do not leak into the store
	got.Active = false
	again, err := m.GetConfig(ctx, "param-001")
	assert.NoError(t, err)
	assert.True(t, again.Active)
}

func TestMemoryGetMissing(t *testing.T) {
	m := NewMemory()
	_, err := m.GetConfig(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryDeactivate(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	cfg, _ := spc.NewConfig("param-002")
	assert.NoError(t, m.SaveConfig(ctx, cfg))

	assert.NoError(t, m.Deactivate(ctx, "param-002"))
	got, err := m.GetConfig(ctx, "param-002")
	assert.NoError(t, err)
	assert.False(t, got.Active)

	assert.ErrorIs(t, m.Deactivate(ctx, "missing"), ErrNotFound)
}

func TestMemoryViolations(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	early := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	late := early.Add(time.Hour)
	recs := NewRecords("param-003", rules.Normal, early, []rules.Violation{
		{Rule: 1, Severity: rules.Critical, Indices: []int{3}, Description: "spike"},
	})
	recs = append(recs, NewRecords("param-003", rules.Normal, late, []rules.Violation{
		{Rule: 2, Severity: rules.Warning, Indices: []int{0, 1, 2}, Description: "run"},
	})...)
	assert.NoError(t, m.SaveViolations(ctx, recs))

	got, err := m.RecentViolations(ctx, "param-003", 10)
	assert.NoError(t, err)
	assert.Len(t, got, 2)
	// most recent first
	assert.Equal(t, 2, got[0].Rule)
	assert.NotEmpty(t, got[0].ID)
	assert.NotEqual(t, got[0].ID, got[1].ID)

	one, err := m.RecentViolations(ctx, "param-003", 1)
	assert.NoError(t, err)
	assert.Len(t, one, 1)
}

func TestNewRecords(t *testing.T) {
	at := time.Now()
	recs := NewRecords("p", rules.Strict, at, []rules.Violation{
		{Rule: 5, Severity: rules.Warning, Indices: []int{1, 3}, Description: "two of three"},
	})
	assert.Len(t, recs, 1)
	assert.Equal(t, "p", recs[0].ParameterID)
	assert.Equal(t, rules.Strict, recs[0].Sensitivity)
	assert.Equal(t, at, recs[0].RecordedAt)
	assert.Equal(t, []int{1, 3}, recs[0].Indices)
}
