package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// ErrNoRemote is returned by Reconcile when no remote table is configured.
var ErrNoRemote = errors.New("remote table not configured")

const defaultRemoteTimeout = 15 * time.Second

// ProjectStore owns the session's project list.
//
// Every mutation is applied to memory and written to the local cache before
// the method returns. The matching remote call runs in the background, is
// attempted once, and its failure is only logged: local state is never rolled
// back. Remote calls for the same record may complete out of order.
type ProjectStore struct {
	remote        RemoteTable
	cache         LocalCache
	logger        zerolog.Logger
	newID         func() string
	seed          []models.Project
	remoteTimeout time.Duration
	baseCtx       context.Context

	mu        sync.Mutex
	projects  []models.Project
	revisions map[string]uint64 // local id -> count of local edits
	listeners map[int]func([]models.Project)
	nextSub   int
	version   uint64

	notifyMu  sync.Mutex
	delivered uint64

	loading  atomic.Bool
	group    singleflight.Group
	inflight sync.WaitGroup
}

// Option configures a ProjectStore.
type Option func(*ProjectStore)

func WithLogger(logger zerolog.Logger) Option {
	return func(s *ProjectStore) {
		s.logger = logger
	}
}

// WithSeed sets the projects used when neither the remote table nor the cache
// has anything to offer.
func WithSeed(projects []models.Project) Option {
	return func(s *ProjectStore) {
		s.seed = projects
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(s *ProjectStore) {
		s.newID = newID
	}
}

// WithRemoteTimeout bounds every remote call. Zero disables the deadline.
func WithRemoteTimeout(d time.Duration) Option {
	return func(s *ProjectStore) {
		s.remoteTimeout = d
	}
}

// WithContext sets the parent context of background remote calls.
func WithContext(ctx context.Context) Option {
	return func(s *ProjectStore) {
		s.baseCtx = ctx
	}
}

// New creates a store. remote may be nil when the site runs without a
// database; the store then works from the cache alone.
func New(remote RemoteTable, cache LocalCache, opts ...Option) *ProjectStore {
	s := &ProjectStore{
		remote:        remote,
		cache:         cache,
		logger:        log.With().Str("component", "projectStore").Logger(),
		newID:         uuid.NewString,
		remoteTimeout: defaultRemoteTimeout,
		baseCtx:       context.Background(),
		projects:      []models.Project{},
		revisions:     make(map[string]uint64),
		listeners:     make(map[int]func([]models.Project)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.loading.Store(true)
	return s
}

// Loading is true until the first Load has resolved.
func (s *ProjectStore) Loading() bool {
	return s.loading.Load()
}

// Load fills the list from the remote table, newest first, and mirrors it to
// the cache. If the remote table is missing or fails, the cached list is used
// instead, then the seed, then an empty list. Concurrent calls share one load.
func (s *ProjectStore) Load(ctx context.Context) {
	s.group.Do("load", func() (any, error) {
		s.load(ctx)
		return nil, nil
	})
}

func (s *ProjectStore) load(ctx context.Context) {
	defer s.loading.Store(false)

	cached, cacheOK, cacheErr := s.readCache()

	if s.remote != nil {
		rows, err := s.remote.Select(ctx)
		if err == nil {
			known := make(map[string]string, len(cached))
			for _, p := range cached {
				if p.RemoteID != nil {
					known[*p.RemoteID] = p.LocalID
				}
			}
			projects := make([]models.Project, 0, len(rows))
			for _, row := range rows {
				projects = append(projects, models.FromRow(row, localIDFor(row, known)))
			}
			s.replace(projects, true)
			s.logger.Info().Int("count", len(projects)).Msg("loaded projects from remote table")
			return
		}
		s.logger.Warn().Err(err).Msg("remote load failed, falling back to local cache")
	}

	// An unreadable cache may still hold the durable list; leave it alone.
	persist := cacheErr == nil
	switch {
	case cacheOK:
		s.replace(cached, true)
		s.logger.Info().Int("count", len(cached)).Msg("loaded projects from local cache")
	case s.seed != nil:
		seed := make([]models.Project, 0, len(s.seed))
		for _, p := range s.seed {
			seed = append(seed, p.Clone())
		}
		s.replace(seed, persist)
		s.logger.Info().Int("count", len(seed)).Msg("seeded demo projects")
	default:
		s.replace([]models.Project{}, persist)
	}
}

// Reconcile re-reads the remote table and makes it authoritative for every
// record it has confirmed. Records that were never confirmed stay, after the
// remote ones. Local ids of known records are kept.
func (s *ProjectStore) Reconcile(ctx context.Context) error {
	if s.remote == nil {
		return ErrNoRemote
	}
	_, err, _ := s.group.Do("reconcile", func() (any, error) {
		rows, err := s.remote.Select(ctx)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		known := make(map[string]string, len(s.projects))
		var localOnly []models.Project
		for _, p := range s.projects {
			if p.RemoteID != nil {
				known[*p.RemoteID] = p.LocalID
			} else {
				localOnly = append(localOnly, p)
			}
		}
		projects := make([]models.Project, 0, len(rows)+len(localOnly))
		for _, row := range rows {
			projects = append(projects, models.FromRow(row, localIDFor(row, known)))
		}
		projects = append(projects, localOnly...)
		s.projects = projects
		s.persistLocked()
		update := s.publishLocked()
		s.mu.Unlock()

		s.notify(update)
		s.logger.Info().Int("remote", len(rows)).Int("localOnly", len(localOnly)).Msg("reconciled projects")
		return nil, nil
	})
	return err
}

// RunReconciler calls Reconcile every interval until ctx is done.
func (s *ProjectStore) RunReconciler(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Reconcile(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("periodic reconcile failed")
			}
		}
	}
}

// Projects returns a copy of the current list.
func (s *ProjectStore) Projects() []models.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Get returns the project named by id, local id first, then remote id.
func (s *ProjectStore) Get(id string) (models.Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.resolveLocked(id)
	if i < 0 {
		return models.Project{}, false
	}
	return s.projects[i].Clone(), true
}

// Subscribe registers fn to receive a snapshot after every change to the
// list. Snapshots are shared between subscribers and must not be modified.
// fn runs while other notifications wait, so it must not call back into the
// store's mutating methods.
func (s *ProjectStore) Subscribe(fn func([]models.Project)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Create appends a new project built from in and inserts it remotely in the
// background. Title and description are expected to be validated by the
// caller.
func (s *ProjectStore) Create(in models.NewProjectInput) models.Project {
	project := models.Project{
		Title:       in.Title,
		Description: in.Description,
		ImageURL:    strings.TrimSpace(in.ImageURL),
		GithubLink:  in.GithubLink,
		HostedLink:  in.HostedLink,
		Tags:        models.ParseTags(in.Tags),
		IsFeatured:  in.IsFeatured,
	}
	if project.ImageURL == "" {
		project.ImageURL = models.DefaultImageURL
	}

	s.mu.Lock()
	project.LocalID = s.freshIDLocked()
	s.projects = append(s.projects, project)
	revision := s.touchLocked(project.LocalID)
	s.persistLocked()
	update := s.publishLocked()
	s.mu.Unlock()

	s.notify(update)

	if s.remote != nil {
		row := models.ToRow(project)
		s.goRemote(func(ctx context.Context) {
			s.confirmInsert(ctx, project.LocalID, revision, row)
		})
	}
	return project.Clone()
}

// confirmInsert inserts row and attaches the assigned id to the record. If the
// record changed locally in the meantime, its local fields are kept and sent
// along in one update, since those edits could not reach the remote table
// without an id.
func (s *ProjectStore) confirmInsert(ctx context.Context, localID string, revision uint64, row models.ProjectRow) {
	logger := s.logger.With().Str("localId", localID).Logger()

	inserted, err := s.remote.Insert(ctx, &row)
	if err != nil {
		logger.Error().Err(err).Msg("remote insert failed, keeping local project")
		return
	}
	confirmed := models.FromRow(*inserted, localID)
	remoteID := *confirmed.RemoteID

	s.mu.Lock()
	i := s.indexLocked(localID)
	if i < 0 {
		s.mu.Unlock()
		logger.Warn().Str("remoteId", remoteID).Msg("project deleted before insert was confirmed, removing remote row")
		if err := s.remote.Delete(ctx, remoteID); err != nil {
			logger.Error().Err(err).Str("remoteId", remoteID).Msg("remote delete of orphaned row failed")
		}
		return
	}

	var followUp *models.ProjectPatch
	if s.revisions[localID] != revision {
		current := s.projects[i]
		current.RemoteID = confirmed.RemoteID
		current.CreatedAt = confirmed.CreatedAt
		confirmed = current
		patch := models.FullPatch(current)
		followUp = &patch
	}
	s.projects[i] = confirmed

	// A reconcile that ran while the insert was in flight may already hold
	// this row under its remote id.
	for j := len(s.projects) - 1; j >= 0; j-- {
		p := s.projects[j]
		if j != i && p.RemoteID != nil && *p.RemoteID == remoteID {
			s.projects = append(s.projects[:j], s.projects[j+1:]...)
		}
	}

	s.persistLocked()
	update := s.publishLocked()
	s.mu.Unlock()

	s.notify(update)
	logger.Debug().Str("remoteId", remoteID).Msg("remote insert confirmed")

	if followUp != nil {
		s.pushUpdate(ctx, remoteID, *followUp)
	}
}

// Update merges patch into the project named by id. It reports false when no
// project matches.
func (s *ProjectStore) Update(id string, patch models.ProjectPatch) bool {
	return s.mutate(id, "update", func(p *models.Project) models.ProjectPatch {
		patch.Apply(p)
		return patch
	})
}

// ToggleFeatured flips IsFeatured of the project named by id. The current
// value is read under the store lock, so back-to-back toggles cancel out.
func (s *ProjectStore) ToggleFeatured(id string) bool {
	return s.mutate(id, "toggleFeatured", func(p *models.Project) models.ProjectPatch {
		p.IsFeatured = !p.IsFeatured
		featured := p.IsFeatured
		return models.ProjectPatch{IsFeatured: &featured}
	})
}

func (s *ProjectStore) mutate(id, op string, apply func(*models.Project) models.ProjectPatch) bool {
	s.mu.Lock()
	i := s.resolveLocked(id)
	if i < 0 {
		s.mu.Unlock()
		s.logger.Debug().Str("id", id).Str("op", op).Msg("no project with id, ignoring")
		return false
	}
	patch := apply(&s.projects[i])
	s.touchLocked(s.projects[i].LocalID)
	var remoteID string
	if s.projects[i].RemoteID != nil {
		remoteID = *s.projects[i].RemoteID
	}
	s.persistLocked()
	update := s.publishLocked()
	s.mu.Unlock()

	s.notify(update)

	if s.remote != nil && remoteID != "" && !patch.IsEmpty() {
		s.goRemote(func(ctx context.Context) {
			s.pushUpdate(ctx, remoteID, patch)
		})
	}
	return true
}

func (s *ProjectStore) pushUpdate(ctx context.Context, remoteID string, patch models.ProjectPatch) {
	columns, err := models.ColumnPatch(patch.Fields())
	if err != nil {
		s.logger.Error().Err(err).Str("remoteId", remoteID).Msg("cannot translate patch")
		return
	}
	if err := s.remote.Update(ctx, remoteID, columns); err != nil {
		s.logger.Error().Err(err).Str("remoteId", remoteID).Msg("remote update failed, keeping local changes")
	}
}

// Delete removes the project named by id. The remote row is deleted in the
// background when the project was ever confirmed remotely.
func (s *ProjectStore) Delete(id string) bool {
	s.mu.Lock()
	i := s.resolveLocked(id)
	if i < 0 {
		s.mu.Unlock()
		s.logger.Debug().Str("id", id).Str("op", "delete").Msg("no project with id, ignoring")
		return false
	}
	removed := s.projects[i]
	s.projects = append(s.projects[:i], s.projects[i+1:]...)
	delete(s.revisions, removed.LocalID)
	s.persistLocked()
	update := s.publishLocked()
	s.mu.Unlock()

	s.notify(update)

	if s.remote != nil && removed.RemoteID != nil {
		remoteID := *removed.RemoteID
		s.goRemote(func(ctx context.Context) {
			if err := s.remote.Delete(ctx, remoteID); err != nil {
				s.logger.Error().Err(err).Str("remoteId", remoteID).Msg("remote delete failed")
			}
		})
	}
	return true
}

// Wait blocks until every background remote call has returned.
func (s *ProjectStore) Wait() {
	s.inflight.Wait()
}

func (s *ProjectStore) goRemote(call func(ctx context.Context)) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		ctx := s.baseCtx
		if s.remoteTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.remoteTimeout)
			defer cancel()
		}
		call(ctx)
	}()
}

// replace installs the loaded list. Records created or edited since the
// store was built are kept after it and win over loaded copies with the same
// local or remote id.
func (s *ProjectStore) replace(loaded []models.Project, persist bool) {
	s.mu.Lock()
	var touched []models.Project
	touchedLocal := make(map[string]bool)
	touchedRemote := make(map[string]bool)
	revisions := make(map[string]uint64)
	for _, p := range s.projects {
		revision := s.revisions[p.LocalID]
		if revision == 0 {
			continue
		}
		touched = append(touched, p)
		touchedLocal[p.LocalID] = true
		if p.RemoteID != nil {
			touchedRemote[*p.RemoteID] = true
		}
		revisions[p.LocalID] = revision
	}

	projects := make([]models.Project, 0, len(loaded)+len(touched))
	for _, p := range loaded {
		if touchedLocal[p.LocalID] || (p.RemoteID != nil && touchedRemote[*p.RemoteID]) {
			continue
		}
		projects = append(projects, p)
	}
	s.projects = append(projects, touched...)
	s.revisions = revisions
	if persist {
		s.persistLocked()
	}
	update := s.publishLocked()
	s.mu.Unlock()
	s.notify(update)
}

// readCache parses the cached list. A missing key reports false and malformed
// content yields an empty list. A failed read is returned as an error.
func (s *ProjectStore) readCache() ([]models.Project, bool, error) {
	if s.cache == nil {
		return nil, false, nil
	}
	raw, ok, err := s.cache.Get(ProjectsCacheKey)
	if err != nil {
		s.logger.Warn().Err(err).Msg("reading project cache failed")
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	var cached []models.Project
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		s.logger.Warn().Err(err).Msg("project cache is malformed, starting empty")
		return []models.Project{}, true, nil
	}

	seen := make(map[string]bool, len(cached))
	projects := make([]models.Project, 0, len(cached))
	for _, p := range cached {
		if p.LocalID == "" || seen[p.LocalID] {
			p.LocalID = s.newID()
		}
		seen[p.LocalID] = true
		p.Tags = models.NormalizeTags(p.Tags)
		projects = append(projects, p)
	}
	return projects, true, nil
}

func (s *ProjectStore) persistLocked() {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(s.projects)
	if err != nil {
		s.logger.Error().Err(err).Msg("encoding project cache failed")
		return
	}
	if err := s.cache.Set(ProjectsCacheKey, string(data)); err != nil {
		s.logger.Error().Err(err).Msg("writing project cache failed")
	}
}

func (s *ProjectStore) snapshotLocked() []models.Project {
	out := make([]models.Project, len(s.projects))
	for i, p := range s.projects {
		out[i] = p.Clone()
	}
	return out
}

// change is a snapshot of the list tagged with the version it was taken at.
type change struct {
	version  uint64
	projects []models.Project
}

func (s *ProjectStore) publishLocked() change {
	s.version++
	return change{version: s.version, projects: s.snapshotLocked()}
}

// notify hands c to every listener unless a newer version was already
// delivered. Deliveries are serialized so listeners never go back in time.
func (s *ProjectStore) notify(c change) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	if c.version <= s.delivered {
		return
	}
	s.delivered = c.version

	s.mu.Lock()
	listeners := make([]func([]models.Project), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(c.projects)
	}
}

// resolveLocked finds id among local ids first, then among remote ids.
func (s *ProjectStore) resolveLocked(id string) int {
	if id == "" {
		return -1
	}
	if i := s.indexLocked(id); i >= 0 {
		return i
	}
	for i, p := range s.projects {
		if p.RemoteID != nil && *p.RemoteID == id {
			return i
		}
	}
	return -1
}

func (s *ProjectStore) indexLocked(localID string) int {
	for i, p := range s.projects {
		if p.LocalID == localID {
			return i
		}
	}
	return -1
}

func (s *ProjectStore) freshIDLocked() string {
	for {
		id := s.newID()
		if id != "" && s.resolveLocked(id) < 0 {
			return id
		}
	}
}

func (s *ProjectStore) touchLocked(localID string) uint64 {
	s.revisions[localID]++
	return s.revisions[localID]
}

// localIDFor keeps the local id a remote row already had, and otherwise uses
// the remote id, which cannot collide with generated ids.
func localIDFor(row models.ProjectRow, known map[string]string) string {
	remoteID := row.ID.String()
	if localID, ok := known[remoteID]; ok {
		return localID
	}
	return remoteID
}
