package consumer_test

import (
	"context"
	"sync"
	"time"

	"healthpulse-engine/internal/consumer"
)

// fakeKVStore 仅用于单元测试（内存 KV + TTL）
type fakeKVStore struct {
	mu   sync.Mutex
	data map[string]fakeKVItem
}

type fakeKVItem struct {
	value   string
	expires time.Time // zero = no ttl
}

func newFakeKVStore() *fakeKVStore {
	return &fakeKVStore{
		data: make(map[string]fakeKVItem),
	}
}

func (f *fakeKVStore) getLocked(key string) (fakeKVItem, bool) {
	item, ok := f.data[key]
	if !ok {
		return fakeKVItem{}, false
	}
	if !item.expires.IsZero() && time.Now().After(item.expires) {
		delete(f.data, key)
		return fakeKVItem{}, false
	}
	return item, true
}

func (f *fakeKVStore) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	item, ok := f.getLocked(key)
	if !ok {
		return "", consumer.ErrCacheMiss
	}
	return item.value, nil
}

func (f *fakeKVStore) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	f.data[key] = fakeKVItem{value: value, expires: exp}
	return nil
}

func (f *fakeKVStore) SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.getLocked(key); ok {
		return false, nil
	}
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	f.data[key] = fakeKVItem{value: value, expires: exp}
	return true, nil
}

func (f *fakeKVStore) DelIfValue(ctx context.Context, key string, value string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	item, ok := f.getLocked(key)
	if !ok || item.value != value {
		return false, nil
	}
	delete(f.data, key)
	return true, nil
}
