package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/sharewall/backend/internal/model"
	"github.com/sharewall/backend/internal/repository"
	"github.com/sharewall/backend/internal/storage"
)

// ---------------------------------------------------------------------------
// memShareRepo: in-memory ShareRepository with serial ids
// ---------------------------------------------------------------------------

type memShareRepo struct {
	mu        sync.Mutex
	nextID    int64
	rows      map[int64]*model.Share
	insertErr error
	listErr   error
	deleteErr error
	lastOpts  model.ShareListOptions
}

func newMemShareRepo() *memShareRepo {
	return &memShareRepo{rows: make(map[int64]*model.Share)}
}

func (r *memShareRepo) Insert(ctx context.Context, s *model.Share) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	r.nextID++
	s.ID = r.nextID
	s.Published = false
	s.CreatedAt = time.Now()
	cp := *s
	r.rows[s.ID] = &cp
	return nil
}

func (r *memShareRepo) GetByID(ctx context.Context, id int64) (*model.Share, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *memShareRepo) List(ctx context.Context, opts model.ShareListOptions) ([]*model.Share, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastOpts = opts
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*model.Share
	for _, s := range r.rows {
		if opts.Filter == model.FilterPublishedOnly && !s.Published {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (r *memShareRepo) SetPublished(ctx context.Context, id int64, published bool) (*model.Share, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	s.Published = published
	cp := *s
	return &cp, nil
}

func (r *memShareRepo) Delete(ctx context.Context, id int64) (*model.Share, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return nil, r.deleteErr
	}
	s, ok := r.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	delete(r.rows, id)
	return s, nil
}

func (r *memShareRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

// ---------------------------------------------------------------------------
// memStorage: in-memory Storage
// ---------------------------------------------------------------------------

type memStorage struct {
	mu        sync.Mutex
	objects   map[string][]byte
	saveErr   error
	deleteErr error
	deleted   []string
}

func newMemStorage() *memStorage {
	return &memStorage{objects: make(map[string][]byte)}
}

func (s *memStorage) Save(ctx context.Context, key string, data io.Reader, contentType string) (storage.Object, error) {
	if s.saveErr != nil {
		return storage.Object{}, s.saveErr
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return storage.Object{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = b
	return storage.Object{URL: "/uploads/" + key, Handle: key}, nil
}

func (s *memStorage) Delete(ctx context.Context, handle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, handle)
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.objects, handle)
	return nil
}

func (s *memStorage) has(handle string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[handle]
	return ok
}

// ---------------------------------------------------------------------------
// recordingNotifier
// ---------------------------------------------------------------------------

type recordingNotifier struct {
	mu     sync.Mutex
	events []model.FeedEvent
}

func (n *recordingNotifier) Notify(ev model.FeedEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

// ---------------------------------------------------------------------------
// mockContactRepository: function-field stub
// ---------------------------------------------------------------------------

type mockContactRepository struct {
	insertFunc func(ctx context.Context, c *model.Contact) error
	listFunc   func(ctx context.Context) ([]*model.Contact, error)
	deleteFunc func(ctx context.Context, id int64) error
}

func (m *mockContactRepository) Insert(ctx context.Context, c *model.Contact) error {
	if m.insertFunc != nil {
		return m.insertFunc(ctx, c)
	}
	return nil
}

func (m *mockContactRepository) List(ctx context.Context) ([]*model.Contact, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, nil
}

func (m *mockContactRepository) Delete(ctx context.Context, id int64) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

// ---------------------------------------------------------------------------
// mockAdminRepository
// ---------------------------------------------------------------------------

type mockAdminRepository struct {
	admins    map[string]*model.Admin
	findErr   error
	upsertErr error
}

func newMockAdminRepository() *mockAdminRepository {
	return &mockAdminRepository{admins: make(map[string]*model.Admin)}
}

func (m *mockAdminRepository) FindByUsername(ctx context.Context, username string) (*model.Admin, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	a, ok := m.admins[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return a, nil
}

func (m *mockAdminRepository) Upsert(ctx context.Context, username, passwordHash string) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.admins[username] = &model.Admin{Username: username, PasswordHash: passwordHash}
	return nil
}

var errDB = errors.New("db unavailable")
