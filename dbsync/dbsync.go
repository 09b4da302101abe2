// Package dbsync reconciles offline client edits with the canonical
// store.
//
// Clients mutate local copies while disconnected, then Push their
// changed rows and Pull everything created since their last watermark.
// Every push write is an unconditional replace by primary key: last
// write wins, with no version or clock comparison. Pushing an older row
// can overwrite a newer one. That trade keeps every write idempotent,
// so a client may safely retry a whole push after any failure.
//
// Pull filters on created_at, so a row that was updated (not created)
// after a client's watermark is not redelivered. The updated_at column
// is maintained on every write so the watermark can move there later.
package dbsync

import (
	"errors"
	"log/slog"

	"github.com/fieldops/handler/internal/store"
	"github.com/fieldops/handler/observability"
)

// ErrMissingClientID is returned when a push carries no client id.
var ErrMissingClientID = errors.New("dbsync: missing client_id")

// Pull limits.
const (
	DefaultPullLimit = 200
	MaxPullLimit     = 500
)

// Synced table names. Push accepts all four; pull serves the first
// three (module_sources travels only client to server).
const (
	TableRecon         = "recon_items"
	TableModules       = "modules"
	TableModuleSources = "module_sources"
	TableFeedback      = "feedback"
)

// Changes maps table name to pushed rows. Unknown table names are
// ignored, which keeps old servers compatible with newer clients.
type Changes map[string][]map[string]any

// PullResult is a delta for one client to apply locally. ServerTS is
// the watermark to use as the next since.
type PullResult struct {
	Since    string         `json:"since"`
	ServerTS string         `json:"server_ts"`
	Changes  map[string]any `json:"changes"`
}

// Reconciler applies client pushes and serves pull deltas.
type Reconciler struct {
	store  *store.Store
	logger *slog.Logger
	events *observability.EventLogger
	now    func() string
}

// Option customizes a Reconciler.
type Option func(*Reconciler)

// WithClock overrides the timestamp source.
func WithClock(now func() string) Option {
	return func(r *Reconciler) { r.now = now }
}

// WithEventLogger attaches a business event logger.
func WithEventLogger(ev *observability.EventLogger) Option {
	return func(r *Reconciler) { r.events = ev }
}

// New creates a Reconciler.
func New(st *store.Store, logger *slog.Logger, opts ...Option) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Reconciler{
		store:  st,
		logger: logger,
		now:    store.NowStamp,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}
