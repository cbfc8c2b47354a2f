package devices_test

import (
	"context"
	"sync/atomic"

	"github.com/PratikDhanave/device-info-service/internal/models"
	"github.com/PratikDhanave/device-info-service/internal/store"
)

func ptr(s string) *string {
	return &s
}

// failingStore wraps a MemoryStore and injects errors per operation.
type failingStore struct {
	*store.MemoryStore
	lookupErr error
	insertErr error
	listErr   error
	lookups   atomic.Int64
}

func newFailingStore() *failingStore {
	return &failingStore{MemoryStore: store.NewMemoryStore()}
}

func (f *failingStore) LatestUserEmailByIP(ctx context.Context, ip string) (*string, bool, error) {
	f.lookups.Add(1)
	if f.lookupErr != nil {
		return nil, false, f.lookupErr
	}
	return f.MemoryStore.LatestUserEmailByIP(ctx, ip)
}

func (f *failingStore) InsertDeviceInfoIfAbsent(ctx context.Context, rec models.DeviceInfo) (bool, error) {
	if f.insertErr != nil {
		return false, f.insertErr
	}
	return f.MemoryStore.InsertDeviceInfoIfAbsent(ctx, rec)
}

func (f *failingStore) ListDeviceInfos(ctx context.Context) ([]models.DeviceInfo, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.MemoryStore.ListDeviceInfos(ctx)
}
