package store

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"
)

// Memory is an in-process Client used by tests and dry runs. All operations,
// including Batch, run under a single mutex, which trivially satisfies the
// atomicity contract.
type Memory struct {
	mu      sync.Mutex
	strings map[string]string
	hashes  map[string]map[string]int64
	zsets   map[string]map[string]float64
	sets    map[string]map[string]struct{}
	lists   map[string][]string
	expiry  map[string]time.Time

	now func() time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		strings: make(map[string]string),
		hashes:  make(map[string]map[string]int64),
		zsets:   make(map[string]map[string]float64),
		sets:    make(map[string]map[string]struct{}),
		lists:   make(map[string][]string),
		expiry:  make(map[string]time.Time),
		now:     time.Now,
	}
}

// SetNowFunc overrides the clock used for expiry checks. Test hook.
func (m *Memory) SetNowFunc(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// expired reports and reaps a key whose TTL has passed. Caller holds mu.
func (m *Memory) expired(key string) bool {
	deadline, ok := m.expiry[key]
	if !ok || m.now().Before(deadline) {
		return false
	}
	delete(m.strings, key)
	delete(m.hashes, key)
	delete(m.zsets, key)
	delete(m.sets, key)
	delete(m.lists, key)
	delete(m.expiry, key)
	return true
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.expired(key) {
		return "", ErrNotFound
	}
	val, ok := m.strings[key]
	if !ok {
		return "", ErrNotFound
	}
	return val, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setLocked(key, value)
	return nil
}

func (m *Memory) setLocked(key, value string) {
	m.strings[key] = value
	delete(m.expiry, key)
}

func (m *Memory) HGet(_ context.Context, key, field string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.expired(key) {
		return "", ErrNotFound
	}
	h, ok := m.hashes[key]
	if !ok {
		return "", ErrNotFound
	}
	val, ok := h[field]
	if !ok {
		return "", ErrNotFound
	}
	return formatInt(val), nil
}

func (m *Memory) HIncrBy(_ context.Context, key, field string, delta int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expired(key)
	return m.hIncrByLocked(key, field, delta), nil
}

func (m *Memory) hIncrByLocked(key, field string, delta int64) int64 {
	h, ok := m.hashes[key]
	if !ok {
		h = make(map[string]int64)
		m.hashes[key] = h
	}
	h[field] += delta
	return h[field]
}

func (m *Memory) ZIncrBy(_ context.Context, key string, delta float64, member string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expired(key)
	return m.zIncrByLocked(key, delta, member), nil
}

func (m *Memory) zIncrByLocked(key string, delta float64, member string) float64 {
	z, ok := m.zsets[key]
	if !ok {
		z = make(map[string]float64)
		m.zsets[key] = z
	}
	z[member] += delta
	return z[member]
}

// sortedMembers returns zset members ordered by descending score, ties by
// member id. Caller holds mu.
func (m *Memory) sortedMembers(key string) []Member {
	z := m.zsets[key]
	members := make([]Member, 0, len(z))
	for id, score := range z {
		members = append(members, Member{ID: id, Score: score})
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].Score != members[j].Score {
			return members[i].Score > members[j].Score
		}
		return members[i].ID < members[j].ID
	})
	return members
}

func (m *Memory) ZRevRangeWithScores(_ context.Context, key string, start, stop int64) ([]Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.expired(key) {
		return nil, nil
	}
	members := m.sortedMembers(key)
	n := int64(len(members))
	if stop < 0 {
		stop = n + stop
	}
	if start < 0 {
		start = n + start
	}
	if start < 0 {
		start = 0
	}
	if start >= n || stop < start {
		return nil, nil
	}
	if stop >= n {
		stop = n - 1
	}
	return members[start : stop+1], nil
}

func (m *Memory) ZRevRank(_ context.Context, key, member string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.expired(key) {
		return 0, ErrNotFound
	}
	for i, entry := range m.sortedMembers(key) {
		if entry.ID == member {
			return int64(i), nil
		}
	}
	return 0, ErrNotFound
}

func (m *Memory) ZCard(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.expired(key) {
		return 0, nil
	}
	return int64(len(m.zsets[key])), nil
}

func (m *Memory) SAdd(_ context.Context, key, member string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expired(key)
	m.sAddLocked(key, member)
	return nil
}

func (m *Memory) sAddLocked(key, member string) {
	s, ok := m.sets[key]
	if !ok {
		s = make(map[string]struct{})
		m.sets[key] = s
	}
	s[member] = struct{}{}
}

func (m *Memory) SIsMember(_ context.Context, key, member string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.expired(key) {
		return false, nil
	}
	_, ok := m.sets[key][member]
	return ok, nil
}

func (m *Memory) LPush(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expired(key)
	m.lPushLocked(key, value)
	return nil
}

func (m *Memory) lPushLocked(key, value string) {
	m.lists[key] = append([]string{value}, m.lists[key]...)
}

func (m *Memory) LTrim(_ context.Context, key string, start, stop int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expired(key)
	m.lTrimLocked(key, start, stop)
	return nil
}

func (m *Memory) lTrimLocked(key string, start, stop int64) {
	list := m.lists[key]
	n := int64(len(list))
	if stop < 0 {
		stop = n + stop
	}
	if start < 0 {
		start = n + start
	}
	if start < 0 {
		start = 0
	}
	if start >= n || stop < start {
		delete(m.lists, key)
		return
	}
	if stop >= n {
		stop = n - 1
	}
	m.lists[key] = list[start : stop+1]
}

func (m *Memory) LRange(_ context.Context, key string, start, stop int64) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.expired(key) {
		return nil, nil
	}
	list := m.lists[key]
	n := int64(len(list))
	if stop < 0 {
		stop = n + stop
	}
	if start < 0 {
		start = n + start
	}
	if start < 0 {
		start = 0
	}
	if start >= n || stop < start {
		return nil, nil
	}
	if stop >= n {
		stop = n - 1
	}
	out := make([]string, stop-start+1)
	copy(out, list[start:stop+1])
	return out, nil
}

func (m *Memory) Expire(_ context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expireLocked(key, ttl)
	return nil
}

func (m *Memory) expireLocked(key string, ttl time.Duration) {
	m.expiry[key] = m.now().Add(ttl)
}

// Batch applies all ops under one lock acquisition.
func (m *Memory) Batch(_ context.Context, ops []Op) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, op := range ops {
		switch op.Kind {
		case OpKindSet:
			m.setLocked(op.Key, op.Value)
		case OpKindHIncrBy:
			m.hIncrByLocked(op.Key, op.Field, op.Delta)
		case OpKindZIncrBy:
			m.zIncrByLocked(op.Key, op.Score, op.Member)
		case OpKindSAdd:
			m.sAddLocked(op.Key, op.Member)
		case OpKindLPush:
			m.lPushLocked(op.Key, op.Value)
		case OpKindLTrim:
			m.lTrimLocked(op.Key, op.Start, op.Stop)
		case OpKindExpire:
			m.expireLocked(op.Key, op.TTL)
		}
	}

	BatchesTotal.Inc()
	BatchOpsTotal.Add(float64(len(ops)))
	return nil
}

// Close is a no-op for the in-memory store.
func (m *Memory) Close() error {
	return nil
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}
