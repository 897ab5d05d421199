package testutil

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shadowiq/shadowiq/internal/application/files/objectstorage"
	"github.com/shadowiq/shadowiq/internal/application/payment/paymentgateway"
	"github.com/shadowiq/shadowiq/internal/domain/identity"
	"github.com/shadowiq/shadowiq/internal/shared/errors"
)

// FixedClock is a settable clock.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFixedClock(now time.Time) *FixedClock {
	return &FixedClock{now: now.UTC()}
}

func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FixedClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now.UTC()
}

func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// MockTransactor runs fn directly and counts invocations.
type MockTransactor struct {
	Calls int
}

func (m *MockTransactor) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.Calls++
	return fn(ctx)
}

// MockSessionStore is an in-memory identity.SessionStore.
type MockSessionStore struct {
	mu       sync.Mutex
	sessions map[string]map[string]string

	GetErr error
}

func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{sessions: make(map[string]map[string]string)}
}

func (m *MockSessionStore) Get(ctx context.Context, sessionID, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return "", false, m.GetErr
	}
	v, ok := m.sessions[sessionID][key]
	return v, ok, nil
}

func (m *MockSessionStore) Set(ctx context.Context, sessionID, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessions[sessionID] == nil {
		m.sessions[sessionID] = make(map[string]string)
	}
	m.sessions[sessionID][key] = value
	return nil
}

func (m *MockSessionStore) Pop(ctx context.Context, sessionID, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.sessions[sessionID][key]
	if ok {
		delete(m.sessions[sessionID], key)
	}
	return v, ok, nil
}

func (m *MockSessionStore) Destroy(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

// Count returns the number of live sessions.
func (m *MockSessionStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

var _ identity.SessionStore = (*MockSessionStore)(nil)

// SequenceTokens issues predictable tokens "tok-1", "tok-2", ... hashed with
// SHA-256.
type SequenceTokens struct {
	mu sync.Mutex
	n  int

	Err error
}

func (s *SequenceTokens) Generate() (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return "", "", s.Err
	}
	s.n++
	plain := fmt.Sprintf("tok-%d", s.n)
	return plain, s.Hash(plain), nil
}

func (s *SequenceTokens) Hash(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

// SentMail is a message captured by MockMailer.
type SentMail struct {
	To      string
	Subject string
	Body    string
}

// MockMailer records every message.
type MockMailer struct {
	mu   sync.Mutex
	Sent []SentMail

	Err error
}

func (m *MockMailer) Send(ctx context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, SentMail{To: to, Subject: subject, Body: body})
	return nil
}

// StaticRoleAuthorizer grants operations from a fixed table. Admin inherits
// every analyst grant.
type StaticRoleAuthorizer struct {
	Grants map[string][]identity.Role
	Err    error
}

// DefaultRoleAuthorizer mirrors the shipped policy catalog.
func DefaultRoleAuthorizer() *StaticRoleAuthorizer {
	return &StaticRoleAuthorizer{Grants: map[string][]identity.Role{
		"project.submit":  {identity.RoleClient},
		"project.assign":  {identity.RoleAdmin},
		"project.reject":  {identity.RoleAdmin},
		"dispute.resolve": {identity.RoleAdmin},
		"payment.release": {identity.RoleAdmin},
		"payment.refund":  {identity.RoleAdmin},
		"audit.read":      {identity.RoleAdmin},
		"identity.list":   {identity.RoleAdmin},
		"dashboard.view":  {identity.RoleClient, identity.RoleAnalyst},
	}}
}

func (s *StaticRoleAuthorizer) Authorize(role identity.Role, operation string) (bool, error) {
	if s.Err != nil {
		return false, s.Err
	}
	for _, granted := range s.Grants[operation] {
		if granted == role || (role == identity.RoleAdmin && granted == identity.RoleAnalyst) {
			return true, nil
		}
	}
	return false, nil
}

func (s *StaticRoleAuthorizer) RequiredRoles(operation string) []string {
	var out []string
	for _, r := range s.Grants[operation] {
		out = append(out, r.String())
	}
	return out
}

// MockPaymentGateway is a func-field payment gateway. Unset funcs succeed
// with deterministic ids.
type MockPaymentGateway struct {
	mu sync.Mutex

	CreateIntentFunc    func(ctx context.Context, req paymentgateway.CreateIntentRequest) (*paymentgateway.Intent, error)
	GetIntentStatusFunc func(ctx context.Context, intentID string) (string, error)
	TransferFunc        func(ctx context.Context, req paymentgateway.TransferRequest) (string, error)
	RefundFunc          func(ctx context.Context, intentID string, metadata map[string]string) (string, error)
	ParseWebhookFunc    func(req *http.Request, payload []byte) (*paymentgateway.WebhookEvent, bool, error)

	Transfers []paymentgateway.TransferRequest
	Refunds   []string
}

func (m *MockPaymentGateway) CreateIntent(ctx context.Context, req paymentgateway.CreateIntentRequest) (*paymentgateway.Intent, error) {
	if m.CreateIntentFunc != nil {
		return m.CreateIntentFunc(ctx, req)
	}
	return &paymentgateway.Intent{ID: "pi_test", ClientSecret: "pi_test_secret", Status: paymentgateway.IntentRequiresPaymentMethod}, nil
}

func (m *MockPaymentGateway) GetIntentStatus(ctx context.Context, intentID string) (string, error) {
	if m.GetIntentStatusFunc != nil {
		return m.GetIntentStatusFunc(ctx, intentID)
	}
	return paymentgateway.IntentSucceeded, nil
}

func (m *MockPaymentGateway) Transfer(ctx context.Context, req paymentgateway.TransferRequest) (string, error) {
	m.mu.Lock()
	m.Transfers = append(m.Transfers, req)
	m.mu.Unlock()
	if m.TransferFunc != nil {
		return m.TransferFunc(ctx, req)
	}
	return "tr_test", nil
}

func (m *MockPaymentGateway) Refund(ctx context.Context, intentID string, metadata map[string]string) (string, error) {
	m.mu.Lock()
	m.Refunds = append(m.Refunds, intentID)
	m.mu.Unlock()
	if m.RefundFunc != nil {
		return m.RefundFunc(ctx, intentID, metadata)
	}
	return "re_test", nil
}

func (m *MockPaymentGateway) ParseWebhook(req *http.Request, payload []byte) (*paymentgateway.WebhookEvent, bool, error) {
	if m.ParseWebhookFunc != nil {
		return m.ParseWebhookFunc(req, payload)
	}
	return nil, false, nil
}

// MockObjectStorage keeps object metadata in memory.
type MockObjectStorage struct {
	mu      sync.Mutex
	objects map[string]*objectstorage.ObjectInfo

	PresignErr error
	HeadErr    error
	Deleted    []string
}

func NewMockObjectStorage() *MockObjectStorage {
	return &MockObjectStorage{objects: make(map[string]*objectstorage.ObjectInfo)}
}

// Put registers an object as if a client had uploaded it.
func (m *MockObjectStorage) Put(key string, size int64, contentType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = &objectstorage.ObjectInfo{Key: key, Size: size, ContentType: contentType}
}

func (m *MockObjectStorage) PresignUpload(ctx context.Context, req objectstorage.UploadRequest) (*objectstorage.PresignedURL, error) {
	if m.PresignErr != nil {
		return nil, m.PresignErr
	}
	return &objectstorage.PresignedURL{
		URL:       "https://storage.test/" + req.Key + "?op=put",
		Method:    http.MethodPut,
		Headers:   map[string]string{"Content-Type": req.ContentType},
		ExpiresAt: time.Now().Add(req.TTL),
	}, nil
}

func (m *MockObjectStorage) PresignDownload(ctx context.Context, key, fileName string, ttl time.Duration) (*objectstorage.PresignedURL, error) {
	if m.PresignErr != nil {
		return nil, m.PresignErr
	}
	return &objectstorage.PresignedURL{
		URL:       "https://storage.test/" + key + "?op=get",
		Method:    http.MethodGet,
		ExpiresAt: time.Now().Add(ttl),
	}, nil
}

func (m *MockObjectStorage) Head(ctx context.Context, key string) (*objectstorage.ObjectInfo, error) {
	if m.HeadErr != nil {
		return nil, m.HeadErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	info, ok := m.objects[key]
	if !ok {
		return nil, errors.NewNotFoundError("object not found")
	}
	c := *info
	return &c, nil
}

func (m *MockObjectStorage) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	m.Deleted = append(m.Deleted, key)
	return nil
}

// MockVirusScanner flags keys containing "infected".
type MockVirusScanner struct {
	Err error
}

func (m MockVirusScanner) Scan(ctx context.Context, key string) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	return !strings.Contains(key, "infected"), nil
}
