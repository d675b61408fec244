// Package store abstracts the atomic key-value store backing reward
// accounting. The contract mirrors the Redis command set the scoring engine
// needs, plus a pipelined Batch that executes a sequence of writes as one
// atomic unit.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates the requested key, field, or member does not exist.
var ErrNotFound = errors.New("store: not found")

// Member is a sorted-set member with its score.
type Member struct {
	ID    string
	Score float64
}

// Client is the store contract consumed by the scoring and pipeline layers.
type Client interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error

	HGet(ctx context.Context, key, field string) (string, error)
	HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error)

	ZIncrBy(ctx context.Context, key string, delta float64, member string) (float64, error)
	ZRevRangeWithScores(ctx context.Context, key string, start, stop int64) ([]Member, error)
	ZRevRank(ctx context.Context, key, member string) (int64, error)
	ZCard(ctx context.Context, key string) (int64, error)

	SAdd(ctx context.Context, key, member string) error
	SIsMember(ctx context.Context, key, member string) (bool, error)

	LPush(ctx context.Context, key, value string) error
	LTrim(ctx context.Context, key string, start, stop int64) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)

	Expire(ctx context.Context, key string, ttl time.Duration) error

	// Batch executes ops as a single atomic unit: either all ops apply or
	// none do. Op order within the batch is preserved.
	Batch(ctx context.Context, ops []Op) error

	Close() error
}

// OpKind discriminates batch operations.
type OpKind int

const (
	OpKindSet OpKind = iota
	OpKindHIncrBy
	OpKindZIncrBy
	OpKindSAdd
	OpKindLPush
	OpKindLTrim
	OpKindExpire
)

// Op is a single write inside a Batch.
type Op struct {
	Kind   OpKind
	Key    string
	Field  string
	Member string
	Value  string
	Delta  int64
	Score  float64
	Start  int64
	Stop   int64
	TTL    time.Duration
}

// SetOp builds a plain key set.
func SetOp(key, value string) Op {
	return Op{Kind: OpKindSet, Key: key, Value: value}
}

// HIncrByOp builds a hash-field increment.
func HIncrByOp(key, field string, delta int64) Op {
	return Op{Kind: OpKindHIncrBy, Key: key, Field: field, Delta: delta}
}

// ZIncrByOp builds a sorted-set member increment.
func ZIncrByOp(key string, score float64, member string) Op {
	return Op{Kind: OpKindZIncrBy, Key: key, Score: score, Member: member}
}

// SAddOp builds a set-membership add.
func SAddOp(key, member string) Op {
	return Op{Kind: OpKindSAdd, Key: key, Member: member}
}

// LPushOp builds a list head push.
func LPushOp(key, value string) Op {
	return Op{Kind: OpKindLPush, Key: key, Value: value}
}

// LTrimOp builds a list trim to [start, stop].
func LTrimOp(key string, start, stop int64) Op {
	return Op{Kind: OpKindLTrim, Key: key, Start: start, Stop: stop}
}

// ExpireOp builds an expiry set/refresh on a key.
func ExpireOp(key string, ttl time.Duration) Op {
	return Op{Kind: OpKindExpire, Key: key, TTL: ttl}
}
