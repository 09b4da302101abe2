package dbsync

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/fieldops/handler/internal/store"
	"github.com/fieldops/handler/observability"
)

// Push merges client mutations into the canonical store and returns the
// total row count applied.
//
// Rows without their key fields are skipped without error. Writes are
// per-row with no cross-row atomicity; a failure partway leaves earlier
// rows durably applied, which is safe to retry because every write is
// idempotent by key. One ledger row per client is written after the
// batch, recording this push.
func (r *Reconciler) Push(ctx context.Context, clientID string, changes Changes) (int, error) {
	if clientID == "" {
		return 0, ErrMissingClientID
	}
	now := r.now()
	applied := 0

	for _, row := range changes[TableRecon] {
		item := r.reconFromRow(row, now)
		if item == nil {
			continue
		}
		if err := r.store.ReplaceRecon(ctx, item); err != nil {
			return applied, fmt.Errorf("apply recon %s: %w", item.ID, err)
		}
		applied++
	}
	for _, row := range changes[TableModules] {
		m := r.moduleFromRow(row, now)
		if m == nil {
			continue
		}
		if err := r.store.ReplaceModule(ctx, m); err != nil {
			return applied, fmt.Errorf("apply module %s: %w", m.ID, err)
		}
		applied++
	}
	for _, row := range changes[TableModuleSources] {
		ms := r.moduleSourceFromRow(row, now)
		if ms == nil {
			continue
		}
		if err := r.store.UpsertModuleSource(ctx, ms); err != nil {
			return applied, fmt.Errorf("apply module source %s/%s: %w", ms.ModuleID, ms.ReconID, err)
		}
		applied++
	}
	for _, row := range changes[TableFeedback] {
		f := r.feedbackFromRow(row, now)
		if f == nil {
			continue
		}
		if err := r.store.ReplaceFeedback(ctx, f); err != nil {
			return applied, fmt.Errorf("apply feedback %s: %w", f.ID, err)
		}
		applied++
	}

	ledger := &store.SyncLedgerEntry{ClientID: clientID, LastPushAt: now, LastPushCount: applied}
	if err := r.store.ReplaceLedger(ctx, ledger); err != nil {
		return applied, fmt.Errorf("write ledger for %s: %w", clientID, err)
	}

	if r.events != nil {
		r.events.LogEvent(ctx, observability.BusinessEvent{
			EventType:   "sync_pushed",
			ServiceName: "dbsync",
			EntityType:  "client",
			EntityID:    clientID,
			Action:      "push",
			Success:     true,
		})
	}
	r.logger.Info("sync push applied", "client_id", clientID, "applied", applied)
	return applied, nil
}

// Row field accessors. Client rows are loosely typed JSON; absent and
// mistyped fields degrade to defaults rather than erroring.

func rowString(row map[string]any, key string) string {
	s, _ := row[key].(string)
	return s
}

func rowStringDefault(row map[string]any, key, dflt string) string {
	if s, ok := row[key].(string); ok && s != "" {
		return s
	}
	return dflt
}

func rowScore(row map[string]any, key string, dflt float64) float64 {
	v, ok := row[key].(float64)
	if !ok || math.IsNaN(v) {
		return dflt
	}
	return math.Max(0, math.Min(1, v))
}

func rowInt(row map[string]any, key string, min, max, dflt int) int {
	v, ok := row[key].(float64)
	if !ok {
		return dflt
	}
	n := int(v)
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

func rowVibe(row map[string]any) *string {
	if s, ok := row["vibe"].(string); ok && s != "" {
		return &s
	}
	return nil
}

// rowJSON normalizes a field that may arrive pre-serialized or as a
// native structure into the store's serialized form.
func rowJSON(row map[string]any, key, dflt string) string {
	v, ok := row[key]
	if !ok || v == nil {
		return dflt
	}
	if s, ok := v.(string); ok {
		if json.Valid([]byte(s)) {
			return s
		}
		return dflt
	}
	data, err := json.Marshal(v)
	if err != nil {
		return dflt
	}
	return string(data)
}
