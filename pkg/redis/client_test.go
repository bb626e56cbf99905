package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type fakeCommands struct {
	counts  map[string]int64
	expires map[string]time.Duration
	incrErr error
	expErr  error
}

func newFakeCommands() *fakeCommands {
	return &fakeCommands{
		counts:  make(map[string]int64),
		expires: make(map[string]time.Duration),
	}
}

func (f *fakeCommands) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (f *fakeCommands) Incr(_ context.Context, key string) *redis.IntCmd {
	if f.incrErr != nil {
		return redis.NewIntResult(0, f.incrErr)
	}
	f.counts[key]++
	return redis.NewIntResult(f.counts[key], nil)
}

func (f *fakeCommands) Expire(_ context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	if f.expErr != nil {
		return redis.NewBoolResult(false, f.expErr)
	}
	f.expires[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func TestIncrWithTTLStampsWindowOnce(t *testing.T) {
	fake := newFakeCommands()
	client := &Client{cmds: fake}

	count, err := client.IncrWithTTL(context.Background(), "rl:ip:login:1.2.3.4", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected first increment to return 1, got %d", count)
	}
	if ttl := fake.expires["rl:ip:login:1.2.3.4"]; ttl != time.Minute {
		t.Fatalf("expected 1m ttl stamped, got %v", ttl)
	}

	count, err = client.IncrWithTTL(context.Background(), "rl:ip:login:1.2.3.4", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected second increment to return 2, got %d", count)
	}
	if len(fake.expires) != 1 {
		t.Fatalf("ttl must only be stamped on key creation")
	}
}

func TestIncrWithTTLSkipsExpireForZeroTTL(t *testing.T) {
	fake := newFakeCommands()
	client := &Client{cmds: fake}

	if _, err := client.IncrWithTTL(context.Background(), "counter", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fake.expires) != 0 {
		t.Fatalf("expire must not run when no ttl requested")
	}
}

func TestIncrWithTTLPropagatesErrors(t *testing.T) {
	fake := newFakeCommands()
	fake.incrErr = errors.New("connection reset")
	client := &Client{cmds: fake}

	if _, err := client.IncrWithTTL(context.Background(), "k", time.Second); err == nil {
		t.Fatal("expected incr error to surface")
	}

	fake = newFakeCommands()
	fake.expErr = errors.New("connection reset")
	client = &Client{cmds: fake}

	count, err := client.IncrWithTTL(context.Background(), "k", time.Second)
	if err == nil {
		t.Fatal("expected expire error to surface")
	}
	if count != 1 {
		t.Fatalf("count should still report the increment, got %d", count)
	}
}
