// Package quest turns raw field notes into validated quest modules.
//
// The ingestion pipeline fetches or accepts recon text, asks the
// extraction oracle for candidate modules, gates each candidate through
// the validator and persists the survivors. Companions in this package
// cover listing, feedback and quest composition; offline reconciliation
// lives in the dbsync package.
package quest

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fieldops/handler/idgen"
	"github.com/fieldops/handler/internal/store"
	"github.com/fieldops/handler/observability"
	"github.com/fieldops/handler/oracle"
	"github.com/fieldops/handler/quest/internal/fetch"
)

// String maxima applied before persisting. Oversize input is truncated,
// never rejected.
const (
	maxTitleLen     = 120
	maxSummaryLen   = 400
	maxLocationLen  = 240
	maxNotesLen     = 900
	maxReconTitle   = 160
	maxSourceURL    = 2000
	maxFeedbackKind = 40
	maxTargetIDLen  = 80
	maxFeedbackNote = 1000

	// oracleTextCap bounds how much recon text the oracle sees. Longer
	// input is silently truncated, not rejected.
	oracleTextCap = 24000

	// maxRecommended bounds the oracle's follow-up suggestions.
	maxRecommended = 8

	provenanceNote = "Derived from recon"
)

// Default set-valued fields for candidates that omit them.
var (
	defaultWeatherFit  = []string{"auto"}
	defaultDurationFit = []string{"60m"}
	defaultRangeFit    = []string{"short-drive"}
)

// Service is the quest handler orchestrator.
type Service struct {
	store     *store.Store
	oracle    oracle.Oracle
	fetcher   *fetch.Fetcher
	logger    *slog.Logger
	events    *observability.EventLogger
	validator *Validator
	scorer    *Scorer
	newID     func() string
	now       func() string
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithIDGenerator overrides ID generation.
func WithIDGenerator(gen idgen.Generator) ServiceOption {
	return func(s *Service) { s.newID = gen }
}

// WithClock overrides the timestamp source.
func WithClock(now func() string) ServiceOption {
	return func(s *Service) { s.now = now }
}

// WithEventLogger attaches a business event logger.
func WithEventLogger(ev *observability.EventLogger) ServiceOption {
	return func(s *Service) { s.events = ev }
}

// New creates a quest Service.
func New(db *sql.DB, orc oracle.Oracle, cfg *Config, logger *slog.Logger, opts ...ServiceOption) *Service {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		store:     store.NewStore(db),
		oracle:    orc,
		fetcher:   fetch.New(cfg.Fetch.FetcherConfig()),
		logger:    logger,
		validator: NewValidator(),
		scorer:    NewScorer(),
		newID:     idgen.New,
		now:       store.NowStamp,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Store exposes the underlying store for the sync reconciler.
func (s *Service) Store() *store.Store {
	return s.store
}

// Ingest runs the full pipeline on one recon input.
//
// The oracle is consulted before anything is written: an oracle failure
// persists nothing. After that point writes are per-row with no
// rollback, which is safe to retry because every write is idempotent
// by key.
func (s *Service) Ingest(ctx context.Context, in IngestInput) (*IngestResult, error) {
	reconID := s.newID()
	createdAt := s.now()

	reconType := strings.ToLower(in.Type)
	if reconType == "" {
		reconType = "text"
	}
	title := truncate(in.Title, maxReconTitle)
	sourceURL := truncate(in.URL, maxSourceURL)

	text := in.Text
	if reconType == "url" {
		if sourceURL == "" {
			return nil, ErrMissingURL
		}
		res, err := s.fetcher.Fetch(ctx, sourceURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
		}
		text = res.Text
		if title == "" {
			title = truncate(res.Title, maxReconTitle)
		}
	}
	if len(strings.TrimSpace(text)) < 10 {
		return nil, ErrInsufficientText
	}

	ext, err := s.extract(ctx, text)
	if err != nil {
		return nil, err
	}

	recon := &store.ReconItem{
		ID:           reconID,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
		Type:         reconType,
		Title:        title,
		SourceURL:    sourceURL,
		RawText:      text,
		ParseStatus:  "parsed",
		QualityScore: ext.QualityScore,
		QualityNotes: ext.QualityNotes,
	}
	if err := s.store.InsertRecon(ctx, recon); err != nil {
		return nil, fmt.Errorf("persist recon: %w", err)
	}

	created := 0
	for i, raw := range ext.Modules {
		c, err := DecodeCandidate(raw)
		if err != nil {
			s.logger.Debug("candidate dropped", "recon_id", reconID, "index", i, "reason", err)
			continue
		}
		if err := s.validator.Check(c); err != nil {
			s.logger.Debug("candidate rejected", "recon_id", reconID, "index", i, "reason", err)
			continue
		}
		if err := s.admitModule(ctx, reconID, createdAt, c); err != nil {
			return nil, err
		}
		created++
	}

	total, err := s.store.CountModules(ctx)
	if err != nil {
		return nil, err
	}

	s.logEvent(ctx, "recon_ingested", "recon", reconID, "ingest", created > 0 || len(ext.Modules) == 0)
	s.logger.Info("recon ingested",
		"recon_id", reconID,
		"type", reconType,
		"candidates", len(ext.Modules),
		"modules_created", created,
		"quality_score", ext.QualityScore)

	return &IngestResult{
		ReconID:        reconID,
		ModulesCreated: created,
		ReconStatus: ReconStatus{
			Assessment:   Label(ext.QualityScore),
			QualityScore: ext.QualityScore,
			QualityNotes: ext.QualityNotes,
			Season: Season{
				ModulesTotal: total,
				Target:       s.scorer.Target,
				ReadinessPct: s.scorer.ReadinessPct(total),
			},
			RecommendedRecon: ext.RecommendedRecon,
		},
	}, nil
}

// extraction is a normalized oracle response.
type extraction struct {
	QualityScore     float64
	QualityNotes     string
	RecommendedRecon []string
	Modules          []any
}

// extract calls the oracle and normalizes its output. Scores are
// clamped, notes truncated, suggestions capped; a missing modules list
// becomes empty rather than an error.
func (s *Service) extract(ctx context.Context, text string) (*extraction, error) {
	out, err := s.oracle.CompleteJSON(ctx, oracle.ExtractionPrompt(truncate(text, oracleTextCap)))
	if err != nil {
		return nil, err
	}

	ext := &extraction{QualityScore: 0.5}
	if score, ok := out["quality_score"].(float64); ok {
		ext.QualityScore = clamp01(score, 0.5)
	}
	if notes, ok := out["quality_notes"].(string); ok {
		ext.QualityNotes = truncate(notes, maxNotesLen)
	}
	if recs, ok := out["recommended_recon"].([]any); ok {
		for _, r := range recs {
			if rs, ok := r.(string); ok {
				ext.RecommendedRecon = append(ext.RecommendedRecon, rs)
			}
			if len(ext.RecommendedRecon) == maxRecommended {
				break
			}
		}
	}
	if mods, ok := out["modules"].([]any); ok {
		ext.Modules = mods
	}
	return ext, nil
}

// admitModule persists a validated candidate and its provenance link.
func (s *Service) admitModule(ctx context.Context, reconID, createdAt string, c *Candidate) error {
	m := &store.Module{
		ID:           s.newID(),
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
		Title:        truncate(c.Title, maxTitleLen),
		Summary:      truncate(c.Summary, maxSummaryLen),
		TagsJSON:     encodeStrings(c.Tags, nil),
		Vibe:         c.Vibe,
		WeatherJSON:  encodeStrings(c.WeatherFit, defaultWeatherFit),
		DurationJSON: encodeStrings(c.DurationFit, defaultDurationFit),
		RangeJSON:    encodeStrings(c.RangeFit, defaultRangeFit),
		LocationHint: truncate(c.LocationHint, maxLocationLen),
		Confidence:   0.6,
		PayloadJSON:  encodePayload(c.Payload),
	}
	if c.Confidence != nil {
		m.Confidence = clamp01(*c.Confidence, 0.6)
	}
	link := &store.ModuleSource{
		ModuleID:  m.ID,
		ReconID:   reconID,
		Note:      provenanceNote,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	if err := s.store.InsertModuleWithSource(ctx, m, link); err != nil {
		return fmt.Errorf("persist module: %w", err)
	}
	return nil
}

// ReconList is the list-recon response.
type ReconList struct {
	Items       []*store.ReconSummary `json:"items"`
	ModuleCount int                   `json:"module_count"`
}

// ListRecon returns recent recon summaries plus the current module count.
func (s *Service) ListRecon(ctx context.Context, limit int) (*ReconList, error) {
	limit = clampLimit(limit, 1, 200, 50)
	items, err := s.store.ListRecon(ctx, limit)
	if err != nil {
		return nil, err
	}
	count, err := s.store.CountModules(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*store.ReconSummary{}
	}
	return &ReconList{Items: items, ModuleCount: count}, nil
}

// ListModules returns modules ranked by confidence then recency, with
// an optional case-insensitive tag filter applied after the fetch.
func (s *Service) ListModules(ctx context.Context, limit int, tag string) ([]*ModuleView, error) {
	limit = clampLimit(limit, 1, 200, 80)
	rows, err := s.store.ListModules(ctx, limit)
	if err != nil {
		return nil, err
	}

	views := make([]*ModuleView, 0, len(rows))
	for _, m := range rows {
		views = append(views, decodeModule(m))
	}

	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return views, nil
	}
	filtered := make([]*ModuleView, 0, len(views))
	for _, v := range views {
		for _, t := range v.Tags {
			if strings.ToLower(t) == tag {
				filtered = append(filtered, v)
				break
			}
		}
	}
	return filtered, nil
}

// AddFeedback records a feedback submission and returns its ID.
func (s *Service) AddFeedback(ctx context.Context, in FeedbackInput) (string, error) {
	now := s.now()
	kind := in.Kind
	if kind == "" {
		kind = "general"
	}
	rating := 3
	if in.Rating != nil {
		rating = clampRating(*in.Rating)
	}
	f := &store.FeedbackRecord{
		ID:        s.newID(),
		CreatedAt: now,
		UpdatedAt: now,
		Kind:      truncate(kind, maxFeedbackKind),
		TargetID:  truncate(in.TargetID, maxTargetIDLen),
		Rating:    rating,
		Note:      truncate(in.Note, maxFeedbackNote),
		Action:    "none",
	}
	if err := s.store.InsertFeedback(ctx, f); err != nil {
		return "", fmt.Errorf("persist feedback: %w", err)
	}
	s.logEvent(ctx, "feedback_added", "feedback", f.ID, "create", true)
	return f.ID, nil
}

func (s *Service) logEvent(ctx context.Context, eventType, entityType, entityID, action string, success bool) {
	if s.events == nil {
		return
	}
	s.events.LogEvent(ctx, observability.BusinessEvent{
		EventType:   eventType,
		ServiceName: "quest",
		EntityType:  entityType,
		EntityID:    entityID,
		Action:      action,
		Success:     success,
	})
}
