package application

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-auth-lifecycle/internal/domain/entity"
	repo "github.com/oksasatya/go-auth-lifecycle/internal/domain/repository"
	"github.com/oksasatya/go-auth-lifecycle/pkg/helpers"
)

type memStore struct {
	mu     sync.Mutex
	users  []*entity.User
	nextID int

	findErr    error
	insertErr  error
	failureErr error
	updateErr  error
	// forceAffected overrides the affected row count of UpdatePassword.
	forceAffected *int64

	finds, inserts, activations, failures, successes, updates int
}

func (m *memStore) add(u entity.User) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	if u.ID == "" {
		u.ID = "u-" + strconv.Itoa(m.nextID)
	}
	m.users = append(m.users, &u)
	return u.ID
}

func (m *memStore) byID(id string) *entity.User {
	for _, u := range m.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (m *memStore) byIdentifier(id string) *entity.User {
	for _, u := range m.users {
		if u.Username == id || u.Email == id {
			return u
		}
	}
	return nil
}

func (m *memStore) FindByUsernameOrEmail(_ context.Context, username, email string, withPassword bool) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finds++
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, u := range m.users {
		if u.Username == username || u.Email == email {
			cp := *u
			if !withPassword {
				cp.Password = ""
			}
			return &cp, nil
		}
	}
	return nil, repo.ErrUserNotFound
}

func (m *memStore) Insert(_ context.Context, username, email, hash string) (string, error) {
	m.mu.Lock()
	m.inserts++
	if m.insertErr != nil {
		m.mu.Unlock()
		return "", m.insertErr
	}
	for _, u := range m.users {
		if u.Username == username || u.Email == email {
			m.mu.Unlock()
			return "", repo.ErrDuplicateUser
		}
	}
	m.mu.Unlock()
	return m.add(entity.User{Username: username, Email: email, Password: hash}), nil
}

func (m *memStore) Activate(_ context.Context, id string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activations++
	u := m.byID(id)
	if u == nil || u.Active {
		return 0, nil
	}
	u.Active = true
	return 1, nil
}

func (m *memStore) RecordLoginSuccess(_ context.Context, identifier string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.successes++
	u := m.byIdentifier(identifier)
	if u == nil {
		return repo.ErrUserNotFound
	}
	u.Attempts = 0
	u.LastAttempt = nil
	u.LastLogin = &at
	return nil
}

func (m *memStore) RecordLoginFailure(_ context.Context, identifier string, at time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures++
	if m.failureErr != nil {
		return 0, m.failureErr
	}
	u := m.byIdentifier(identifier)
	if u == nil {
		return 0, repo.ErrUserNotFound
	}
	u.Attempts++
	u.LastAttempt = &at
	return u.Attempts, nil
}

func (m *memStore) UpdatePassword(_ context.Context, id, hash string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates++
	if m.updateErr != nil {
		return 0, m.updateErr
	}
	if m.forceAffected != nil {
		return *m.forceAffected, nil
	}
	u := m.byID(id)
	if u == nil {
		return 0, nil
	}
	u.Password = hash
	return 1, nil
}

func (m *memStore) user(id string) entity.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.byID(id)
}

// fakeHasher stores "hash:"+plain and counts comparisons.
type fakeHasher struct {
	compares   int
	compareErr error
	hashErr    error
}

func (h *fakeHasher) Hash(plain string) (string, error) {
	if h.hashErr != nil {
		return "", h.hashErr
	}
	return "hash:" + plain, nil
}

func (h *fakeHasher) Compare(hash, plain string) (bool, error) {
	h.compares++
	if h.compareErr != nil {
		return false, h.compareErr
	}
	return hash == "hash:"+plain, nil
}

type sentLink struct{ username, email, token string }

type fakeNotifier struct {
	activations []sentLink
	recoveries  []sentLink
	err         error
}

func (n *fakeNotifier) SendActivation(_ context.Context, username, email, token string) error {
	if n.err != nil {
		return n.err
	}
	n.activations = append(n.activations, sentLink{username, email, token})
	return nil
}

func (n *fakeNotifier) SendRecovery(_ context.Context, username, email, token string) error {
	if n.err != nil {
		return n.err
	}
	n.recoveries = append(n.recoveries, sentLink{username, email, token})
	return nil
}

type fakeAudit struct{ events []AuditEvent }

func (a *fakeAudit) Record(_ context.Context, ev AuditEvent) { a.events = append(a.events, ev) }

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time           { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type harness struct {
	svc      *Service
	store    *memStore
	hasher   *fakeHasher
	tokens   *helpers.TokenManager
	notifier *fakeNotifier
	audit    *fakeAudit
	clock    *testClock
	slept    []time.Duration
}

var errStore = errors.New("connection refused")

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		store:    &memStore{},
		hasher:   &fakeHasher{},
		notifier: &fakeNotifier{},
		audit:    &fakeAudit{},
		clock:    &testClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
	}
	tm, err := helpers.NewHMACTokenManager("test-secret", "auth", 24*time.Hour, helpers.WithClock(h.clock.Now))
	require.NoError(t, err)
	h.tokens = tm

	base := []Option{
		WithClock(h.clock.Now),
		WithSleep(func(d time.Duration) { h.slept = append(h.slept, d) }),
		WithAuditSink(h.audit),
	}
	h.svc = NewService(h.store, h.hasher, h.tokens, h.notifier, helpers.NewDiscardLogger(), append(base, opts...)...)
	return h
}

// activeUser seeds an active account whose password is "right".
func (h *harness) activeUser() string {
	return h.store.add(entity.User{Username: "foo", Email: "foo@bar.com", Password: "hash:right", Active: true})
}

func (h *harness) pendingUser() string {
	return h.store.add(entity.User{Username: "foo", Email: "foo@bar.com", Password: "hash:right"})
}

func (h *harness) actionToken(t *testing.T, id, email string) string {
	t.Helper()
	tok, err := h.tokens.IssueAction(helpers.ActionPayload{ID: id, Email: email})
	require.NoError(t, err)
	return tok
}
