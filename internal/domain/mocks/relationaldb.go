package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ersonp/diagnostics-tracker/internal/domain/entities"
	"github.com/ersonp/diagnostics-tracker/internal/domain/ports"
)

// RelationalDB is an in-memory mock implementation of ports.RelationalDB.
// RunInTx snapshots the state and restores it when fn fails.
type RelationalDB struct {
	mu sync.Mutex

	Startups map[string]*entities.Startup
	Reviews  []*entities.ReviewRecord
	Audit    []entities.AuditEntry
	Versions []entities.MetricVersion

	// Err fails every call. The specific errors fail a single operation.
	Err             error
	SaveReviewErr   error
	UpdateReviewErr error
	ApplyErr        error
	SaveVersionErr  error
	LogAuditErr     error
	ListStartupsErr error

	// Call tracking
	SaveReviewCallCount   int
	UpdateReviewCallCount int
	ApplyCallCount        int
	TxCallCount           int
	RolledBack            int
}

// NewRelationalDB creates a new mock RelationalDB seeded with startups.
func NewRelationalDB(startups ...entities.Startup) *RelationalDB {
	m := &RelationalDB{Startups: make(map[string]*entities.Startup)}
	for i := range startups {
		s := startups[i]
		m.Startups[s.ID] = &s
	}
	return m
}

// EnsureSchema creates the database schema if it doesn't exist.
func (m *RelationalDB) EnsureSchema(_ context.Context) error {
	return m.Err
}

// Close closes the database connection.
func (m *RelationalDB) Close() error {
	return nil
}

type snapshot struct {
	startups map[string]entities.Startup
	reviews  []entities.ReviewRecord
	audit    []entities.AuditEntry
	versions []entities.MetricVersion
}

func (m *RelationalDB) snapshot() snapshot {
	s := snapshot{startups: make(map[string]entities.Startup, len(m.Startups))}
	for id, st := range m.Startups {
		s.startups[id] = *st
	}
	for _, r := range m.Reviews {
		s.reviews = append(s.reviews, *r)
	}
	s.audit = append(s.audit, m.Audit...)
	s.versions = append(s.versions, m.Versions...)
	return s
}

func (m *RelationalDB) restore(s snapshot) {
	m.Startups = make(map[string]*entities.Startup, len(s.startups))
	for id := range s.startups {
		st := s.startups[id]
		m.Startups[id] = &st
	}
	m.Reviews = m.Reviews[:0]
	for i := range s.reviews {
		r := s.reviews[i]
		m.Reviews = append(m.Reviews, &r)
	}
	m.Audit = s.audit
	m.Versions = s.versions
}

// RunInTx runs fn and rolls back all mock state if it fails.
func (m *RelationalDB) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	m.TxCallCount++
	snap := m.snapshot()
	m.mu.Unlock()

	if err := fn(ctx); err != nil {
		m.mu.Lock()
		m.restore(snap)
		m.RolledBack++
		m.mu.Unlock()
		return err
	}
	return nil
}

// Startup registry methods.

// ListStartups returns every startup ordered by name.
func (m *RelationalDB) ListStartups(_ context.Context) ([]entities.Startup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if m.ListStartupsErr != nil {
		return nil, m.ListStartupsErr
	}
	result := make([]entities.Startup, 0, len(m.Startups))
	for _, s := range m.Startups {
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// FindStartup returns a startup by ID.
func (m *RelationalDB) FindStartup(_ context.Context, id string) (*entities.Startup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	s, ok := m.Startups[id]
	if !ok {
		return nil, entities.NotFoundf("startup %s not found", id)
	}
	cp := *s
	return &cp, nil
}

// CurrentValue returns the snapshot value of one field.
func (m *RelationalDB) CurrentValue(ctx context.Context, startupID string, field entities.Field) (entities.Value, error) {
	s, err := m.FindStartup(ctx, startupID)
	if err != nil {
		return entities.NullValue(), err
	}
	return s.CurrentValue(field), nil
}

// ApplyApprovedChange writes a value into the startup record.
func (m *RelationalDB) ApplyApprovedChange(_ context.Context, startupID string, field entities.Field, value entities.Value) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ApplyCallCount++
	if m.Err != nil {
		return m.Err
	}
	if m.ApplyErr != nil {
		return m.ApplyErr
	}
	s, ok := m.Startups[startupID]
	if !ok {
		return entities.NotFoundf("startup %s not found", startupID)
	}
	return s.Apply(field, value, time.Now().UTC())
}

// SaveStartup inserts or replaces a startup.
func (m *RelationalDB) SaveStartup(_ context.Context, startup *entities.Startup) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	cp := *startup
	m.Startups[startup.ID] = &cp
	return nil
}

// Review store methods.

// SaveReview inserts a review record.
func (m *RelationalDB) SaveReview(_ context.Context, record *entities.ReviewRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveReviewCallCount++
	if m.Err != nil {
		return m.Err
	}
	if m.SaveReviewErr != nil {
		return m.SaveReviewErr
	}
	cp := *record
	m.Reviews = append(m.Reviews, &cp)
	return nil
}

// UpdateReviewDecision persists a decision if the stored record is pending.
func (m *RelationalDB) UpdateReviewDecision(_ context.Context, record *entities.ReviewRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateReviewCallCount++
	if m.Err != nil {
		return m.Err
	}
	if m.UpdateReviewErr != nil {
		return m.UpdateReviewErr
	}
	for i, r := range m.Reviews {
		if r.ID != record.ID {
			continue
		}
		if r.Status != entities.StatusPending {
			return entities.Conflictf("review %s is already %s", r.ID, r.Status)
		}
		cp := *record
		m.Reviews[i] = &cp
		return nil
	}
	return entities.NotFoundf("review %s not found", record.ID)
}

// FindReview returns a record by ID.
func (m *RelationalDB) FindReview(_ context.Context, id string) (*entities.ReviewRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, r := range m.Reviews {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, entities.NotFoundf("review %s not found", id)
}

// ListReviews returns records in insertion order.
func (m *RelationalDB) ListReviews(_ context.Context, filter ports.ReviewFilter) ([]entities.ReviewRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var result []entities.ReviewRecord
	for _, r := range m.Reviews {
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if filter.StartupID != "" && r.StartupID != filter.StartupID {
			continue
		}
		result = append(result, *r)
		if filter.Limit > 0 && len(result) == filter.Limit {
			break
		}
	}
	return result, nil
}

// CountReviewsByStatus returns the number of records per status.
func (m *RelationalDB) CountReviewsByStatus(_ context.Context) (map[entities.ReviewStatus]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	counts := make(map[entities.ReviewStatus]int)
	for _, r := range m.Reviews {
		counts[r.Status]++
	}
	return counts, nil
}

// Audit and history methods.

// LogAudit appends an audit entry.
func (m *RelationalDB) LogAudit(_ context.Context, entry *entities.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if m.LogAuditErr != nil {
		return m.LogAuditErr
	}
	entry.ID = int64(len(m.Audit) + 1)
	m.Audit = append(m.Audit, *entry)
	return nil
}

// ListAudit returns entries for a review, newest first.
func (m *RelationalDB) ListAudit(_ context.Context, reviewID string, limit int) ([]entities.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var result []entities.AuditEntry
	for i := len(m.Audit) - 1; i >= 0; i-- {
		if reviewID != "" && m.Audit[i].ReviewID != reviewID {
			continue
		}
		result = append(result, m.Audit[i])
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

// SaveMetricVersion appends a version numbered per (startup, field).
func (m *RelationalDB) SaveMetricVersion(_ context.Context, version *entities.MetricVersion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if m.SaveVersionErr != nil {
		return m.SaveVersionErr
	}
	n := 0
	for _, v := range m.Versions {
		if v.StartupID == version.StartupID && v.Field == version.Field {
			n++
		}
	}
	version.Version = n + 1
	m.Versions = append(m.Versions, *version)
	return nil
}

// ListMetricVersions returns versions for a startup, newest first.
func (m *RelationalDB) ListMetricVersions(_ context.Context, startupID string) ([]entities.MetricVersion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var result []entities.MetricVersion
	for i := len(m.Versions) - 1; i >= 0; i-- {
		if m.Versions[i].StartupID == startupID {
			result = append(result, m.Versions[i])
		}
	}
	return result, nil
}
