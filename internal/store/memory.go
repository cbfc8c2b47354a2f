package store

import (
	"context"
	"errors"
	"sync"

	"github.com/PratikDhanave/device-info-service/internal/models"
)

// MemoryStore keeps both collections in process memory.
// It backs STORE_DRIVER=memory and the tests.
type MemoryStore struct {
	mu      sync.RWMutex
	users   []models.User
	devices []models.DeviceInfo
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// AddUser seeds the users collection. The service itself never calls it.
func (m *MemoryStore) AddUser(u models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = append(m.users, u)
}

// LatestUserEmailByIP returns the email of the user with the greatest
// timestamp at ip, which may be nil.
func (m *MemoryStore) LatestUserEmailByIP(ctx context.Context, ip string) (*string, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest *models.User
	for i := range m.users {
		u := &m.users[i]
		if u.IPAddress == nil || *u.IPAddress != ip {
			continue
		}
		if latest == nil || u.Timestamp.After(latest.Timestamp) {
			latest = u
		}
	}
	if latest == nil {
		return nil, false, nil
	}
	return cloneString(latest.Email), true, nil
}

// InsertDeviceInfoIfAbsent checks and inserts under one lock, so identical
// concurrent submissions store a single record.
func (m *MemoryStore) InsertDeviceInfoIfAbsent(ctx context.Context, rec models.DeviceInfo) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if rec.ID == "" {
		return false, errors.New("device info id required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.devices {
		if sameTuple(existing, rec) {
			return false, nil
		}
	}
	m.devices = append(m.devices, cloneDeviceInfo(rec))
	return true, nil
}

// ListDeviceInfos returns copies, so callers may modify the result freely.
func (m *MemoryStore) ListDeviceInfos(ctx context.Context) ([]models.DeviceInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.DeviceInfo, len(m.devices))
	for i, d := range m.devices {
		out[i] = cloneDeviceInfo(d)
	}
	return out, nil
}

// Ping only reports a done context; memory is always reachable.
func (m *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close is a no-op.
func (m *MemoryStore) Close() {}

func sameTuple(a, b models.DeviceInfo) bool {
	return equalNullable(a.Email, b.Email) &&
		equalNullable(a.Browser, b.Browser) &&
		equalNullable(a.OS, b.OS) &&
		equalNullable(a.DeviceType, b.DeviceType) &&
		equalNullable(a.IPAddress, b.IPAddress)
}

// null equals null, matching the tuple_hash index in Postgres.
func equalNullable(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func cloneDeviceInfo(d models.DeviceInfo) models.DeviceInfo {
	d.Email = cloneString(d.Email)
	d.Browser = cloneString(d.Browser)
	d.OS = cloneString(d.OS)
	d.DeviceType = cloneString(d.DeviceType)
	d.IPAddress = cloneString(d.IPAddress)
	return d
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
