package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/scenedraw/internal/core/domain"
	"github.com/samirrijal/scenedraw/internal/core/ports"
	"github.com/samirrijal/scenedraw/internal/pkg/metrics"
)

var tracer = otel.Tracer("github.com/samirrijal/scenedraw/internal/core/usecases")

const defaultDraftTTL = 24 * time.Hour

// SessionOptions configures new sessions.
type SessionOptions struct {
	// SeedDefault starts new scenes from DefaultSceneConfig instead of an empty record.
	SeedDefault bool
	DraftTTL    time.Duration
	// Location is used to display timestamps.
	Location *time.Location
}

// SessionService keeps the live editing sessions and connects them to
// storage, the draft cache, the event bus and the import dispatcher. cache,
// publisher and dispatcher are optional.
type SessionService struct {
	scenes     ports.SceneRepository
	cache      ports.CacheService
	publisher  ports.EventPublisher
	dispatcher ports.ImportDispatcher
	newView    func(id string) ports.View
	opts       SessionOptions
	now        func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session

	// writes serializes read-modify-write cycles on a stored scene.
	writes sceneLocks
}

// sceneLocks hands out one mutex per scene id, dropped when unused.
type sceneLocks struct {
	mu    sync.Mutex
	locks map[string]*sceneLock
}

type sceneLock struct {
	sync.Mutex
	refs int
}

func (l *sceneLocks) lock(id string) (unlock func()) {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*sceneLock)
	}
	sl, ok := l.locks[id]
	if !ok {
		sl = &sceneLock{}
		l.locks[id] = sl
	}
	sl.refs++
	l.mu.Unlock()

	sl.Lock()
	return func() {
		sl.Unlock()
		l.mu.Lock()
		sl.refs--
		if sl.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

// NewSessionService creates a SessionService. newView builds the view a new
// session renders into.
func NewSessionService(
	scenes ports.SceneRepository,
	cache ports.CacheService,
	publisher ports.EventPublisher,
	dispatcher ports.ImportDispatcher,
	newView func(id string) ports.View,
	opts SessionOptions,
) *SessionService {
	if opts.DraftTTL <= 0 {
		opts.DraftTTL = defaultDraftTTL
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &SessionService{
		scenes:     scenes,
		cache:      cache,
		publisher:  publisher,
		dispatcher: dispatcher,
		newView:    newView,
		opts:       opts,
		now:        time.Now,
		sessions:   make(map[string]*Session),
	}
}

// Create starts a session on a new scene.
func (s *SessionService) Create(ctx context.Context) (*Session, error) {
	var cfg *domain.SceneConfig
	if s.opts.SeedDefault {
		cfg = DefaultSceneConfig()
	}
	sess := s.start(uuid.NewString(), cfg)
	s.saveDraft(ctx, sess)
	slog.Info("session created", "scene_id", sess.ID())
	return sess, nil
}

// Open returns the live session of a scene, resuming it from its draft or its
// last save when it is not live.
func (s *SessionService) Open(ctx context.Context, id string) (*Session, error) {
	if sess, err := s.Get(id); err == nil {
		return sess, nil
	}

	if cfg, ok := s.loadDraft(ctx, id); ok {
		slog.Info("session resumed", "scene_id", id, "source", "draft")
		return s.start(id, cfg), nil
	}

	stored, err := s.scenes.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("open scene %s: %w", id, err)
	}
	cfg, err := DecodeRecord(stored.Record)
	if err != nil {
		return nil, fmt.Errorf("open scene %s: %w", id, err)
	}
	slog.Info("session resumed", "scene_id", id, "source", "store")
	return s.start(id, cfg), nil
}

// start registers a session for id unless another caller already did.
func (s *SessionService) start(id string, cfg *domain.SceneConfig) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[id]; ok {
		return sess
	}
	sess := NewSession(id, cfg, s.newView(id), s.opts.Location)
	sess.onCapture = func(kind string) {
		metrics.CapturesCompleted.WithLabelValues(kind).Inc()
		slog.Debug("capture completed", "scene_id", id, "kind", kind)
	}
	s.sessions[id] = sess
	metrics.ActiveSessions.Inc()
	return sess
}

// Get returns a live session.
func (s *SessionService) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return sess, nil
}

// Close ends a session. Its draft stays in the cache until it expires.
func (s *SessionService) Close(ctx context.Context, id string) error {
	sess, err := s.remove(id)
	if err != nil {
		return err
	}
	s.saveDraft(ctx, sess)
	slog.Info("session closed", "scene_id", id)
	return nil
}

// Discard ends a session and drops its draft. The saved scene, if any, is kept.
func (s *SessionService) Discard(ctx context.Context, id string) error {
	if _, err := s.remove(id); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, draftKey(id)); err != nil {
			slog.Warn("delete draft failed", "scene_id", id, "error", err)
		}
	}
	slog.Info("session discarded", "scene_id", id)
	return nil
}

func (s *SessionService) remove(id string) (*Session, error) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	metrics.ActiveSessions.Dec()
	return sess, nil
}

// Do runs fn on a live session and refreshes its draft if fn changed it.
func (s *SessionService) Do(ctx context.Context, id string, fn func(*Session) error) error {
	sess, err := s.Get(id)
	if err != nil {
		return err
	}
	before := sess.Revision()
	err = fn(sess)
	if sess.Revision() != before {
		s.saveDraft(ctx, sess)
	}
	return err
}

// Save stamps and stores the record of a live session, announces it and
// starts its import. It returns the file to offer for download.
func (s *SessionService) Save(ctx context.Context, id string) (*domain.SavedScene, error) {
	ctx, span := tracer.Start(ctx, "SessionService.Save")
	defer span.End()
	span.SetAttributes(attribute.String("scene.id", id))

	sess, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	unlock := s.writes.lock(id)
	defer unlock()

	savedAt := s.now().UTC()
	saved, err := sess.Save(savedAt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	stored := &domain.StoredScene{
		ID:      id,
		Title:   saved.Title,
		SavedAt: savedAt,
		Record:  saved.Data,
	}
	if err := s.scenes.Save(ctx, stored); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("store scene %s: %w", id, err)
	}
	metrics.RecordsSaved.Inc()

	if s.publisher != nil {
		if err := s.publisher.PublishSceneSaved(ctx, stored); err != nil {
			slog.Warn("publish scene saved failed", "scene_id", id, "error", err)
		}
	}
	if s.dispatcher != nil {
		if err := s.dispatcher.DispatchImport(ctx, stored); err != nil {
			slog.Warn("dispatch import failed", "scene_id", id, "error", err)
		}
	}
	s.saveDraft(ctx, sess)

	slog.Info("scene saved", "scene_id", id, "filename", saved.Filename)
	return saved, nil
}

// Load merges a record into a live session.
func (s *SessionService) Load(ctx context.Context, id string, data []byte) error {
	ctx, span := tracer.Start(ctx, "SessionService.Load")
	defer span.End()
	span.SetAttributes(attribute.String("scene.id", id), attribute.Int("record.bytes", len(data)))

	err := s.Do(ctx, id, func(sess *Session) error { return sess.Load(data) })
	switch {
	case err == nil:
		metrics.RecordsLoaded.WithLabelValues("ok").Inc()
	case errors.Is(err, domain.ErrMalformedRecord):
		metrics.RecordsLoaded.WithLabelValues("malformed").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// ListSaved returns one page of saved scenes and the total count.
func (s *SessionService) ListSaved(ctx context.Context, offset, limit int) ([]domain.StoredScene, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.scenes.List(ctx, offset, limit)
}

// GetSaved returns a saved scene.
func (s *SessionService) GetSaved(ctx context.Context, id string) (*domain.StoredScene, error) {
	return s.scenes.Get(ctx, id)
}

// ReportRunStatus applies a pipeline report to the live session of the scene,
// if any, and to its saved record.
func (s *SessionService) ReportRunStatus(ctx context.Context, report *domain.RunStatusReport) error {
	err := s.reportRunStatus(ctx, report)
	switch {
	case err == nil:
		metrics.RunStatusReports.WithLabelValues("ok").Inc()
	case errors.Is(err, domain.ErrSceneNotFound):
		metrics.RunStatusReports.WithLabelValues("unknown_scene").Inc()
	default:
		metrics.RunStatusReports.WithLabelValues("error").Inc()
	}
	return err
}

func (s *SessionService) reportRunStatus(ctx context.Context, report *domain.RunStatusReport) error {
	unlock := s.writes.lock(report.SceneID)
	defer unlock()

	live := false
	if sess, err := s.Get(report.SceneID); err == nil {
		live = true
		sess.ApplyRunStatus(report.Status)
		s.saveDraft(ctx, sess)
	}

	stored, err := s.scenes.Get(ctx, report.SceneID)
	if err != nil {
		if errors.Is(err, domain.ErrSceneNotFound) && live {
			return nil
		}
		return fmt.Errorf("run status for %s: %w", report.SceneID, err)
	}
	cfg, err := DecodeRecord(stored.Record)
	if err != nil {
		return fmt.Errorf("run status for %s: %w", report.SceneID, err)
	}
	cfg.Status = report.Status.Clone()
	data, err := EncodeRecord(cfg)
	if err != nil {
		return err
	}
	stored.Record = data
	if err := s.scenes.Save(ctx, stored); err != nil {
		return fmt.Errorf("run status for %s: %w", report.SceneID, err)
	}
	slog.Info("run status applied", "scene_id", report.SceneID, "live", live)
	return nil
}

// Count returns the number of live sessions.
func (s *SessionService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func draftKey(id string) string {
	return "scene:draft:" + id
}

func (s *SessionService) loadDraft(ctx context.Context, id string) (*domain.SceneConfig, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, err := s.cache.Get(ctx, draftKey(id))
	if err != nil {
		metrics.CacheMisses.WithLabelValues("draft").Inc()
		return nil, false
	}
	cfg, err := DecodeRecord(data)
	if err != nil {
		slog.Warn("discarding unreadable draft", "scene_id", id, "error", err)
		metrics.CacheMisses.WithLabelValues("draft").Inc()
		return nil, false
	}
	metrics.CacheHits.WithLabelValues("draft").Inc()
	return cfg, true
}

func (s *SessionService) saveDraft(ctx context.Context, sess *Session) {
	if s.cache == nil {
		return
	}
	data, err := sess.draft()
	if err != nil {
		slog.Warn("encode draft failed", "scene_id", sess.ID(), "error", err)
		return
	}
	if err := s.cache.Set(ctx, draftKey(sess.ID()), data, int(s.opts.DraftTTL/time.Second)); err != nil {
		slog.Warn("store draft failed", "scene_id", sess.ID(), "error", err)
	}
}
