package notify

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Notification is an in-app notification for a tenant user.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	TenantID  string    `json:"tenant_id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// Storage persists in-app notifications.
type Storage interface {
	Create(ctx context.Context, n Notification) error
	List(ctx context.Context, tenantID string, userID uuid.UUID, limit int) ([]Notification, error)
	MarkRead(ctx context.Context, tenantID string, userID uuid.UUID, ids ...uuid.UUID) error
}

// memoryStorage is the default in-process store, used when no Redis URL
// is configured.
type memoryStorage struct {
	mu    sync.RWMutex
	items map[string][]Notification // keyed by tenantID/userID
}

// NewMemoryStorage creates an in-memory notification store.
func NewMemoryStorage() Storage {
	return &memoryStorage{items: make(map[string][]Notification)}
}

func storageKey(tenantID string, userID uuid.UUID) string {
	return tenantID + "/" + userID.String()
}

func (m *memoryStorage) Create(_ context.Context, n Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := storageKey(n.TenantID, n.UserID)
	m.items[key] = append(m.items[key], n)
	return nil
}

func (m *memoryStorage) List(_ context.Context, tenantID string, userID uuid.UUID, limit int) ([]Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := m.items[storageKey(tenantID, userID)]
	out := make([]Notification, len(items))
	copy(out, items)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryStorage) MarkRead(_ context.Context, tenantID string, userID uuid.UUID, ids ...uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := m.items[storageKey(tenantID, userID)]
	for i := range items {
		for _, id := range ids {
			if items[i].ID == id {
				items[i].Read = true
			}
		}
	}
	return nil
}
