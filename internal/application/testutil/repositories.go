// Package testutil provides in-memory implementations of the domain
// repositories and collaborators for application-layer tests.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shadowiq/shadowiq/internal/domain/audit"
	"github.com/shadowiq/shadowiq/internal/domain/downloadtoken"
	"github.com/shadowiq/shadowiq/internal/domain/identity"
	"github.com/shadowiq/shadowiq/internal/domain/project"
	"github.com/shadowiq/shadowiq/internal/shared/errors"
)

// MockIdentityRepository is an in-memory identity.Repository.
type MockIdentityRepository struct {
	mu         sync.RWMutex
	identities map[string]*identity.Identity

	CreateErr     error
	GetErr        error
	TouchErr      error
	SaveCredErr   error
	TouchCalls    int
	ConsumeCalled int
}

func NewMockIdentityRepository() *MockIdentityRepository {
	return &MockIdentityRepository{identities: make(map[string]*identity.Identity)}
}

// Add stores i as if it had been created earlier.
func (m *MockIdentityRepository) Add(i *identity.Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.identities[i.ID()] = cloneIdentity(i)
}

// Stored returns the persisted copy of an identity.
func (m *MockIdentityRepository) Stored(id string) *identity.Identity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i, ok := m.identities[id]; ok {
		return cloneIdentity(i)
	}
	return nil
}

func (m *MockIdentityRepository) Create(ctx context.Context, i *identity.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	for _, existing := range m.identities {
		if existing.AliasKey() == i.AliasKey() {
			return errors.NewConflictError("alias already taken")
		}
	}
	m.identities[i.ID()] = cloneIdentity(i)
	return nil
}

func (m *MockIdentityRepository) GetByID(ctx context.Context, id string) (*identity.Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	if i, ok := m.identities[id]; ok {
		return cloneIdentity(i), nil
	}
	return nil, nil
}

func (m *MockIdentityRepository) GetByIDs(ctx context.Context, ids []string) ([]*identity.Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*identity.Identity
	for _, id := range ids {
		if i, ok := m.identities[id]; ok {
			out = append(out, cloneIdentity(i))
		}
	}
	return out, nil
}

func (m *MockIdentityRepository) GetByAlias(ctx context.Context, alias string) (*identity.Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	key := identity.NormalizeAlias(alias)
	for _, i := range m.identities {
		if i.AliasKey() == key {
			return cloneIdentity(i), nil
		}
	}
	return nil, nil
}

func (m *MockIdentityRepository) GetByCredentialHash(ctx context.Context, hash string) (*identity.Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	for _, i := range m.identities {
		if h := i.CredentialHash(); h != nil && *h == hash {
			return cloneIdentity(i), nil
		}
	}
	return nil, nil
}

func (m *MockIdentityRepository) SaveCredential(ctx context.Context, i *identity.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveCredErr != nil {
		return m.SaveCredErr
	}
	m.identities[i.ID()] = cloneIdentity(i)
	return nil
}

func (m *MockIdentityRepository) ConsumeCredential(ctx context.Context, id, hash string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ConsumeCalled++
	i, ok := m.identities[id]
	if !ok || i.CredentialHash() == nil || *i.CredentialHash() != hash || i.CredentialExpired(now) {
		return false, nil
	}
	i.ConsumeCredential(now)
	return true, nil
}

func (m *MockIdentityRepository) UpdateRoles(ctx context.Context, i *identity.Identity) error {
	return m.overwrite(i)
}

func (m *MockIdentityRepository) TouchLastSeen(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TouchCalls++
	if m.TouchErr != nil {
		return m.TouchErr
	}
	if i, ok := m.identities[id]; ok {
		i.Touch(at)
	}
	return nil
}

func (m *MockIdentityRepository) List(ctx context.Context, filter identity.ListFilter) ([]*identity.Identity, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*identity.Identity
	for _, i := range m.identities {
		if filter.Role != nil && i.Role() != *filter.Role {
			continue
		}
		out = append(out, cloneIdentity(i))
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Alias() < out[b].Alias() })
	return out, int64(len(out)), nil
}

func (m *MockIdentityRepository) overwrite(i *identity.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.identities[i.ID()]; !ok {
		return errors.NewNotFoundError("identity not found")
	}
	m.identities[i.ID()] = cloneIdentity(i)
	return nil
}

func cloneIdentity(i *identity.Identity) *identity.Identity {
	c := *i
	return &c
}

// MockProjectRepository is an in-memory project.Repository with optimistic
// versioning.
type MockProjectRepository struct {
	mu       sync.RWMutex
	projects map[string]*project.Project

	GetErr      error
	UpdateErr   error
	UpdateCalls int
	// BeforeUpdate runs inside Update before the version check; tests use it
	// to simulate a concurrent writer.
	BeforeUpdate func(stored *project.Project)
}

func NewMockProjectRepository() *MockProjectRepository {
	return &MockProjectRepository{projects: make(map[string]*project.Project)}
}

func (m *MockProjectRepository) Add(p *project.Project) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[p.ID()] = cloneProject(p)
}

// Stored returns the persisted copy of a project.
func (m *MockProjectRepository) Stored(id string) *project.Project {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.projects[id]; ok {
		return cloneProject(p)
	}
	return nil
}

func (m *MockProjectRepository) Create(ctx context.Context, p *project.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.projects {
		if existing.Code() == p.Code() {
			return errors.NewConflictError("project code already exists")
		}
	}
	m.projects[p.ID()] = cloneProject(p)
	return nil
}

func (m *MockProjectRepository) GetByID(ctx context.Context, id string) (*project.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	if p, ok := m.projects[id]; ok {
		return cloneProject(p), nil
	}
	return nil, nil
}

func (m *MockProjectRepository) GetByCode(ctx context.Context, code string) (*project.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	for _, p := range m.projects {
		if p.Code() == code {
			return cloneProject(p), nil
		}
	}
	return nil, nil
}

func (m *MockProjectRepository) Update(ctx context.Context, p *project.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateCalls++
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	stored, ok := m.projects[p.ID()]
	if !ok {
		return errors.NewNotFoundError("project not found")
	}
	if m.BeforeUpdate != nil {
		m.BeforeUpdate(stored)
	}
	if stored.Version() != p.Version() {
		return errors.NewConflictError("project was modified concurrently")
	}
	p.SetVersion(p.Version() + 1)
	m.projects[p.ID()] = cloneProject(p)
	return nil
}

func (m *MockProjectRepository) List(ctx context.Context, filter project.ListFilter) ([]*project.Project, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*project.Project
	for _, p := range m.projects {
		if filter.ClientID != nil && p.ClientID() != *filter.ClientID {
			continue
		}
		if filter.AnalystID != nil && !p.IsAssignedTo(*filter.AnalystID) {
			continue
		}
		if filter.Status != nil && p.Status() != *filter.Status {
			continue
		}
		out = append(out, cloneProject(p))
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Code() < out[b].Code() })
	return out, int64(len(out)), nil
}

func cloneProject(p *project.Project) *project.Project {
	c := *p
	return &c
}

// MockAuditRepository is an in-memory audit.Repository.
type MockAuditRepository struct {
	mu      sync.RWMutex
	entries []*audit.Entry

	AppendErr error
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

func (m *MockAuditRepository) Append(ctx context.Context, e *audit.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AppendErr != nil {
		return m.AppendErr
	}
	m.entries = append(m.entries, e)
	return nil
}

func (m *MockAuditRepository) List(ctx context.Context, filter audit.ListFilter) ([]*audit.Entry, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*audit.Entry
	for _, e := range m.entries {
		if filter.Action != nil && e.Action() != *filter.Action {
			continue
		}
		if filter.ProjectID != nil && (e.ProjectID() == nil || *e.ProjectID() != *filter.ProjectID) {
			continue
		}
		if filter.IdentityID != nil && (e.IdentityID() == nil || *e.IdentityID() != *filter.IdentityID) {
			continue
		}
		out = append(out, e)
	}
	return out, int64(len(out)), nil
}

// Entries returns every appended entry in order.
func (m *MockAuditRepository) Entries() []*audit.Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*audit.Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// WithAction returns the entries tagged action.
func (m *MockAuditRepository) WithAction(action audit.Action) []*audit.Entry {
	var out []*audit.Entry
	for _, e := range m.Entries() {
		if e.Action() == action {
			out = append(out, e)
		}
	}
	return out
}

// MockDownloadTokenRepository is an in-memory downloadtoken.Repository.
type MockDownloadTokenRepository struct {
	mu     sync.Mutex
	tokens map[string]*downloadtoken.Token
}

func NewMockDownloadTokenRepository() *MockDownloadTokenRepository {
	return &MockDownloadTokenRepository{tokens: make(map[string]*downloadtoken.Token)}
}

func (m *MockDownloadTokenRepository) Create(ctx context.Context, t *downloadtoken.Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[t.ID()] = t
	return nil
}

func (m *MockDownloadTokenRepository) GetByHash(ctx context.Context, hash string) (*downloadtoken.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tokens {
		if t.TokenHash() == hash {
			c := *t
			return &c, nil
		}
	}
	return nil, nil
}

func (m *MockDownloadTokenRepository) MarkUsed(ctx context.Context, id string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[id]
	if !ok || t.UsedAt() != nil {
		return false, nil
	}
	m.tokens[id] = downloadtoken.ReconstructToken(t.ID(), t.DeliverableID(), t.TokenHash(), t.OneTime(), t.ExpiresAt(), &at, t.CreatedBy(), t.CreatedAt())
	return true, nil
}

// MockFileRepository is an in-memory project.FileRepository.
type MockFileRepository struct {
	mu    sync.Mutex
	files []*project.ProjectFile
}

func NewMockFileRepository() *MockFileRepository {
	return &MockFileRepository{}
}

func (m *MockFileRepository) Create(ctx context.Context, f *project.ProjectFile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files = append(m.files, f)
	return nil
}

func (m *MockFileRepository) GetByID(ctx context.Context, id string) (*project.ProjectFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.files {
		if f.ID == id {
			return f, nil
		}
	}
	return nil, nil
}

func (m *MockFileRepository) ListByProject(ctx context.Context, projectID string) ([]*project.ProjectFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*project.ProjectFile
	for _, f := range m.files {
		if f.ProjectID == projectID {
			out = append(out, f)
		}
	}
	return out, nil
}

// MockDeliverableRepository is an in-memory project.DeliverableRepository.
type MockDeliverableRepository struct {
	mu           sync.Mutex
	deliverables []*project.Deliverable
}

func NewMockDeliverableRepository() *MockDeliverableRepository {
	return &MockDeliverableRepository{}
}

func (m *MockDeliverableRepository) Create(ctx context.Context, d *project.Deliverable) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deliverables = append(m.deliverables, d)
	return nil
}

func (m *MockDeliverableRepository) GetByID(ctx context.Context, id string) (*project.Deliverable, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.deliverables {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, nil
}

func (m *MockDeliverableRepository) ListByProject(ctx context.Context, projectID string) ([]*project.Deliverable, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*project.Deliverable
	for _, d := range m.deliverables {
		if d.ProjectID == projectID {
			out = append(out, d)
		}
	}
	return out, nil
}

// MockMessageRepository is an in-memory project.MessageRepository.
type MockMessageRepository struct {
	mu       sync.Mutex
	messages []*project.Message
}

func NewMockMessageRepository() *MockMessageRepository {
	return &MockMessageRepository{}
}

func (m *MockMessageRepository) Create(ctx context.Context, msg *project.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return nil
}

func (m *MockMessageRepository) ListByProject(ctx context.Context, projectID string) ([]*project.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*project.Message
	for _, msg := range m.messages {
		if msg.ProjectID == projectID {
			c := *msg
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *MockMessageRepository) MarkReadFor(ctx context.Context, projectID, readerID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, msg := range m.messages {
		if msg.ProjectID == projectID && msg.SenderID != readerID && !msg.IsRead {
			msg.IsRead = true
			n++
		}
	}
	return n, nil
}
