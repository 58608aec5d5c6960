package otpAuth

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

var testSecret = []byte("test-secret-0123456789abcdef")

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// memStore is a mutex-guarded UserStore. Update holds the lock across mutate,
// which gives the atomicity real stores provide with transactions.
type memStore struct {
	mu      sync.Mutex
	byID    map[string]UserRecord
	byEmail map[string]string
	seq     int
	failAll error
}

func newMemStore() *memStore {
	return &memStore{
		byID:    make(map[string]UserRecord),
		byEmail: make(map[string]string),
	}
}

func (s *memStore) FindByEmail(_ context.Context, email string) (UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll != nil {
		return UserRecord{}, s.failAll
	}
	id, ok := s.byEmail[email]
	if !ok {
		return UserRecord{}, ErrUserNotFound
	}
	return s.byID[id], nil
}

func (s *memStore) FindByID(_ context.Context, id string) (UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll != nil {
		return UserRecord{}, s.failAll
	}
	u, ok := s.byID[id]
	if !ok {
		return UserRecord{}, ErrUserNotFound
	}
	return u, nil
}

func (s *memStore) Create(_ context.Context, in CreateUserInput) (UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll != nil {
		return UserRecord{}, s.failAll
	}
	if _, ok := s.byEmail[in.Email]; ok {
		return UserRecord{}, ErrAccountExists
	}
	s.seq++
	u := UserRecord{
		UserID:       fmt.Sprintf("u%d", s.seq),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
	}
	s.byID[u.UserID] = u
	s.byEmail[u.Email] = u.UserID
	return u, nil
}

func (s *memStore) Update(_ context.Context, id string, mutate func(*UserRecord) error) (UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll != nil {
		return UserRecord{}, s.failAll
	}
	u, ok := s.byID[id]
	if !ok {
		return UserRecord{}, ErrUserNotFound
	}
	if err := mutate(&u); err != nil {
		return UserRecord{}, err
	}
	s.byID[id] = u
	return u, nil
}

func (s *memStore) get(t *testing.T, id string) UserRecord {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		t.Fatalf("user %s not in store", id)
	}
	return u
}

func (s *memStore) remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.byID[id]
	delete(s.byEmail, u.Email)
	delete(s.byID, id)
}

type sentMail struct {
	To, Subject, Body string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
	ch   chan sentMail
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{ch: make(chan sentMail, 64)}
}

func (n *recordingNotifier) Send(_ context.Context, to, subject, body string) error {
	n.mu.Lock()
	err := n.err
	n.sent = append(n.sent, sentMail{To: to, Subject: subject, Body: body})
	n.mu.Unlock()
	n.ch <- sentMail{To: to, Subject: subject, Body: body}
	return err
}

func (n *recordingNotifier) next(t *testing.T) sentMail {
	t.Helper()
	select {
	case m := <-n.ch:
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification")
		return sentMail{}
	}
}

var sixDigits = regexp.MustCompile(`\b\d{6}\b`)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.JWT.Secret = append([]byte(nil), testSecret...)
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	return cfg
}

type testEnv struct {
	engine   *Engine
	store    *memStore
	clock    *testClock
	notifier *recordingNotifier
}

func newTestEnv(t *testing.T, mutate ...func(*Config)) *testEnv {
	t.Helper()
	cfg := testConfig()
	for _, m := range mutate {
		m(&cfg)
	}

	env := &testEnv{
		store:    newMemStore(),
		clock:    newTestClock(),
		notifier: newRecordingNotifier(),
	}
	engine, err := New().
		WithConfig(cfg).
		WithUserStore(env.store).
		WithNotifier(env.notifier).
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))).
		WithClock(env.clock.Now).
		Build()
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}
	t.Cleanup(engine.Close)
	env.engine = engine
	return env
}

func (env *testEnv) register(t *testing.T, name, email, password string) *AuthResult {
	t.Helper()
	res, err := env.engine.Register(context.Background(), RegisterRequest{Name: name, Email: email, Password: password})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return res
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}
