// Package content owns the site's content document: loading it from a
// key-value backend, applying mutations, persisting after each one and
// notifying subscribers.
package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/asaidimu/go-events"
	"go.uber.org/zap"

	"vitrine/kv"
	"vitrine/models"
)

var (
	ErrNotFound         = errors.New("content: not found")
	ErrCategoryNotFound = errors.New("content: skill category not found")
	ErrCategoryExists   = errors.New("content: skill category already exists")
	ErrInvalidDocument  = errors.New("content: invalid document")
	ErrInvalidPatch     = errors.New("content: invalid patch")
)

const changeTopic = "content.changed"

// Op names the mutation that produced a Change.
type Op string

const (
	OpAddProject       Op = "project.add"
	OpUpdateProject    Op = "project.update"
	OpDeleteProject    Op = "project.delete"
	OpReorderProjects  Op = "project.reorder"
	OpAddCategory      Op = "skill.category.add"
	OpDeleteCategory   Op = "skill.category.delete"
	OpAddSkill         Op = "skill.add"
	OpUpdateSkill      Op = "skill.update"
	OpDeleteSkill      Op = "skill.delete"
	OpMoveSkill        Op = "skill.move"
	OpAddBlogPost      Op = "blog.add"
	OpUpdateBlogPost   Op = "blog.update"
	OpDeleteBlogPost   Op = "blog.delete"
	OpUpdatePage       Op = "page.update"
	OpUpdateNavigation Op = "navigation.update"
	OpUpdateSettings   Op = "settings.update"
	OpImport           Op = "document.import"
	OpReset            Op = "document.reset"
)

// Change is delivered to subscribers after every committed mutation.
type Change struct {
	Op       Op        `json:"op"`
	Revision uint64    `json:"revision"`
	At       time.Time `json:"at"`
}

// Store holds the content document. Mutations are serialized by a mutex and
// each one is followed by a full-document write to the backend.
type Store struct {
	mu       sync.RWMutex
	doc      *models.Document
	revision uint64
	lastID   int64

	backend kv.Backend
	key     string
	timeout time.Duration
	logger  *zap.Logger
	bus     *events.TypedEventBus[Change]
	now     func() time.Time
}

type Option func(*Store)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithKey changes the backend key the document is stored under.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTimeout bounds each backend call.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New creates a store on top of backend and loads the persisted document.
// A missing or unreadable document falls back to Default.
func New(backend kv.Backend, opts ...Option) (*Store, error) {
	if backend == nil {
		return nil, errors.New("content: nil backend")
	}

	bus, err := events.NewTypedEventBus[Change](events.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("could not initialize event bus: %w", err)
	}

	s := &Store{
		backend: backend,
		key:     DefaultKey,
		timeout: 5 * time.Second,
		logger:  zap.NewNop(),
		bus:     bus,
		now: func() time.Time {
			return time.Now().UTC().Truncate(time.Millisecond)
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.load()
	return s, nil
}

func (s *Store) load() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	data, err := s.backend.Get(ctx, s.key)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		s.logger.Info("no persisted content, using defaults", zap.String("key", s.key))
		s.doc = Default()
	case err != nil:
		s.logger.Warn("failed to read persisted content, using defaults", zap.String("key", s.key), zap.Error(err))
		s.doc = Default()
	default:
		doc, err := decodeDocument(data)
		if err != nil {
			s.logger.Warn("failed to decode persisted content, using defaults", zap.String("key", s.key), zap.Error(err))
			doc = Default()
		}
		s.doc = doc
	}
	s.lastID = maxID(s.doc)
}

func maxID(doc *models.Document) int64 {
	var id int64
	for _, p := range doc.Projects {
		if p.ID > id {
			id = p.ID
		}
	}
	for _, p := range doc.BlogPosts {
		if p.ID > id {
			id = p.ID
		}
	}
	return id
}

// nextIDLocked returns a millisecond timestamp id, bumped past every id the
// store has handed out or loaded.
func (s *Store) nextIDLocked(now time.Time) int64 {
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// mutate applies fn to a copy of the document. When fn succeeds the copy
// replaces the document, is persisted and a Change is published.
func (s *Store) mutate(op Op, fn func(next *models.Document) error) error {
	s.mu.Lock()
	next := s.doc.Clone()
	if err := fn(next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.doc = next
	s.revision++
	change := Change{Op: op, Revision: s.revision, At: s.now()}
	s.persistLocked(op)
	s.mu.Unlock()

	s.publish(change)
	return nil
}

// persistLocked writes the whole document. Failures are logged and the
// in-memory document is kept.
func (s *Store) persistLocked(op Op) {
	data, err := json.Marshal(s.doc)
	if err != nil {
		s.logger.Error("failed to serialize content", zap.String("op", string(op)), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.backend.Set(ctx, s.key, data); err != nil {
		s.logger.Error("failed to persist content", zap.String("op", string(op)), zap.Error(err))
		return
	}
	s.logger.Debug("content persisted", zap.String("op", string(op)), zap.Int("bytes", len(data)))
}

func (s *Store) publish(change Change) {
	s.bus.Emit(changeTopic, change)
}

// Subscribe registers fn for every Change. The returned function removes it.
func (s *Store) Subscribe(fn func(Change)) (unsubscribe func()) {
	return s.bus.Subscribe(changeTopic, func(_ context.Context, c Change) error {
		fn(c)
		return nil
	})
}

// Document returns a deep copy of the current document.
func (s *Store) Document() *models.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone()
}

// Revision counts committed mutations since the store was created.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

func (s *Store) read(fn func(doc *models.Document)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.doc)
}
