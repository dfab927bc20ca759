package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestHelper(t *testing.T) (*CacheHelper, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCacheHelper(client, "course:"), mr
}

type cachedCourse struct {
	ID   uint   `json:"id"`
	Slug string `json:"slug"`
}

func TestCacheHelper_SetGet(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	in := cachedCourse{ID: 7, Slug: "figma-basics"}
	if err := helper.Set(ctx, "slug:figma-basics", in, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var out cachedCourse
	if err := helper.Get(ctx, "slug:figma-basics", &out); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if out != in {
		t.Errorf("got %+v, want %+v", out, in)
	}
}

func TestCacheHelper_GetMiss(t *testing.T) {
	helper, _ := newTestHelper(t)

	var out cachedCourse
	if err := helper.Get(context.Background(), "slug:missing", &out); !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("err = %v, want ErrCacheNotFound", err)
	}
}

func TestCacheHelper_InvalidatePattern(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	for _, key := range []string{"slug:a", "slug:b", "category:1"} {
		if err := helper.Set(ctx, key, cachedCourse{ID: 1}, time.Minute); err != nil {
			t.Fatalf("Set %s: %v", key, err)
		}
	}

	if err := helper.InvalidatePattern(ctx, "slug:*"); err != nil {
		t.Fatalf("InvalidatePattern: %v", err)
	}

	for _, key := range []string{"slug:a", "slug:b"} {
		if ok, _ := helper.Exists(ctx, key); ok {
			t.Errorf("key %s should be gone", key)
		}
	}
	if ok, _ := helper.Exists(ctx, "category:1"); !ok {
		t.Error("unrelated key was invalidated")
	}
}

func TestCacheHelper_CacheOrExecute(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return cachedCourse{ID: 3, Slug: "go-for-backends"}, nil
	}

	var out cachedCourse
	if err := helper.CacheOrExecute(ctx, "slug:go-for-backends", &out, time.Minute, fetch); err != nil {
		t.Fatalf("CacheOrExecute: %v", err)
	}
	if calls != 1 {
		t.Fatalf("fetch calls = %d, want 1", calls)
	}
	if out.ID != 3 {
		t.Errorf("got %+v", out)
	}

	// The async set races the second read; wait for the key to land.
	deadline := time.Now().Add(2 * time.Second)
	for {
		if ok, _ := helper.Exists(ctx, "slug:go-for-backends"); ok || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	var again cachedCourse
	if err := helper.CacheOrExecute(ctx, "slug:go-for-backends", &again, time.Minute, fetch); err != nil {
		t.Fatalf("second CacheOrExecute: %v", err)
	}
	if calls != 1 {
		t.Errorf("fetch calls = %d, want 1 (second read should hit cache)", calls)
	}
}

func TestCacheHelper_GracefulDegradation(t *testing.T) {
	helper := NewCacheHelper(nil, "course:")
	ctx := context.Background()

	if err := helper.Set(ctx, "k", cachedCourse{}, time.Minute); err != nil {
		t.Errorf("Set with nil client: %v", err)
	}

	calls := 0
	var out cachedCourse
	err := helper.CacheOrExecute(ctx, "k", &out, time.Minute, func() (interface{}, error) {
		calls++
		return cachedCourse{ID: 9}, nil
	})
	if err != nil {
		t.Fatalf("CacheOrExecute with nil client: %v", err)
	}
	if calls != 1 || out.ID != 9 {
		t.Errorf("fetch not used (calls=%d, out=%+v)", calls, out)
	}
}
