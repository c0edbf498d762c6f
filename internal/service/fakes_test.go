package service

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prperemyshlev/autoimport/internal/domain"
	"github.com/prperemyshlev/autoimport/internal/repository"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*domain.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}

	user.ID = uuid.New().String()
	if user.Role == "" {
		user.Role = domain.RoleUser
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) UpdateLastLogin(_ context.Context, userID string) (time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return time.Time{}, repository.ErrNotFound
	}
	now := time.Now()
	u.LastLoginAt = &now
	return now, nil
}

func (r *fakeUserRepo) SetActive(_ context.Context, userID string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.IsActive = active
	return nil
}

func (r *fakeUserRepo) add(u *domain.User) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	r.users[u.ID] = u
	return u
}

type fakeTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*domain.RefreshToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: map[string]*domain.RefreshToken{}}
}

func (r *fakeTokenRepo) Create(_ context.Context, token *domain.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tokens[token.TokenHash]; ok {
		return repository.ErrDuplicateToken
	}
	token.ID = uuid.New().String()
	token.CreatedAt = time.Now()
	cp := *token
	r.tokens[token.TokenHash] = &cp
	return nil
}

func (r *fakeTokenRepo) GetByTokenHash(_ context.Context, tokenHash string) (*domain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tokens[tokenHash]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTokenRepo) DeleteByTokenHash(_ context.Context, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tokens[tokenHash]; !ok {
		return repository.ErrNotFound
	}
	delete(r.tokens, tokenHash)
	return nil
}

func (r *fakeTokenRepo) DeleteByUserID(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for hash, t := range r.tokens {
		if t.UserID == userID {
			delete(r.tokens, hash)
			n++
		}
	}
	return n, nil
}

func (r *fakeTokenRepo) DeleteExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	now := time.Now()
	for hash, t := range r.tokens {
		if t.IsExpired(now) {
			delete(r.tokens, hash)
			n++
		}
	}
	return n, nil
}

func (r *fakeTokenRepo) count(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, t := range r.tokens {
		if t.UserID == userID {
			n++
		}
	}
	return n
}

func (r *fakeTokenRepo) expire(tokenHash string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tokens[tokenHash].ExpiresAt = time.Now().Add(-time.Minute)
}

type fakeOrderRepo struct {
	mu      sync.Mutex
	orders  map[string]*domain.Order
	history map[string][]*domain.OrderStatusHistory
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders:  map[string]*domain.Order{},
		history: map[string][]*domain.OrderStatusHistory{},
	}
}

func (r *fakeOrderRepo) Create(_ context.Context, order *domain.Order, initial *domain.OrderStatusHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, o := range r.orders {
		if o.OrderNumber == order.OrderNumber || o.TrackingCode == order.TrackingCode {
			return repository.ErrDuplicateOrder
		}
	}

	order.ID = uuid.New().String()
	order.UpdatedAt = order.CreatedAt
	initial.ID = uuid.New().String()
	initial.OrderID = order.ID

	cp := *order
	cp.History = nil
	r.orders[order.ID] = &cp
	h := *initial
	r.history[order.ID] = []*domain.OrderStatusHistory{&h}

	order.History = []*domain.OrderStatusHistory{initial}
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepo) GetByTrackingCode(_ context.Context, code string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, o := range r.orders {
		if o.TrackingCode == code {
			cp := *o
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeOrderRepo) List(_ context.Context, filter repository.OrderListFilter) ([]*domain.Order, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var all []*domain.Order
	for _, o := range r.orders {
		if filter.UserID == "" || o.UserID == filter.UserID {
			cp := *o
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := len(all)
	if filter.Offset >= total {
		return []*domain.Order{}, total, nil
	}
	end := filter.Offset + filter.Limit
	if end > total {
		end = total
	}
	return all[filter.Offset:end], total, nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, entry *domain.OrderStatusHistory, guard repository.StatusGuard) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[entry.OrderID]
	if !ok {
		return repository.ErrNotFound
	}
	if guard != nil {
		if err := guard(o.Status); err != nil {
			return err
		}
	}

	entry.CreatedAt = time.Now().UTC()
	o.Status = entry.Status
	o.CurrentStage = entry.Stage
	o.UpdatedAt = entry.CreatedAt

	entry.ID = uuid.New().String()
	h := *entry
	r.history[o.ID] = append(r.history[o.ID], &h)
	return nil
}

func (r *fakeOrderRepo) GetHistory(_ context.Context, orderID string) ([]*domain.OrderStatusHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*domain.OrderStatusHistory, 0, len(r.history[orderID]))
	for _, h := range r.history[orderID] {
		cp := *h
		out = append(out, &cp)
	}
	return out, nil
}

// memCache keeps JSON payloads in a map, mirroring RedisCache semantics
type memCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{items: map[string][]byte{}}
}

func (c *memCache) Get(_ context.Context, key string, dest any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.items[key]
	if !ok {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

func (c *memCache) Set(_ context.Context, key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := json.Marshal(value)
	if err == nil {
		c.items[key] = data
	}
}

func (c *memCache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
}

func (c *memCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.items[key]
	return ok
}

type recordingPublisher struct {
	mu        sync.Mutex
	events    []StatusChangedEvent
	err       error
	onPublish func(StatusChangedEvent)
}

func (p *recordingPublisher) PublishStatusChanged(_ context.Context, event StatusChangedEvent) error {
	if p.onPublish != nil {
		p.onPublish(event)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}
