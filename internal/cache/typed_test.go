package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type testRecord struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func TestTypedCacheRoundTrip(t *testing.T) {
	backend := NewSimpleMemoryCache(time.Minute)
	defer func() { _ = backend.Close() }()
	tc := NewTypedCache[testRecord](backend, time.Minute)
	ctx := context.Background()

	if _, ok := tc.Get(ctx, "r1"); ok {
		t.Error("Get on empty cache reported a hit")
	}

	want := testRecord{ID: 7, Name: "chess club"}
	if err := tc.Set(ctx, "r1", &want); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok := tc.Get(ctx, "r1")
	if !ok {
		t.Fatal("Get missed after Set")
	}
	if *got != want {
		t.Errorf("Get = %+v, want %+v", *got, want)
	}
}

func TestTypedCacheGetOrSet(t *testing.T) {
	backend := NewSimpleMemoryCache(time.Minute)
	defer func() { _ = backend.Close() }()
	tc := NewTypedCache[testRecord](backend, time.Minute)
	ctx := context.Background()

	calls := 0
	load := func() (*testRecord, error) {
		calls++
		return &testRecord{ID: 1, Name: "loaded"}, nil
	}

	first, err := tc.GetOrSet(ctx, "k", load)
	if err != nil {
		t.Fatalf("GetOrSet: %v", err)
	}
	second, err := tc.GetOrSet(ctx, "k", load)
	if err != nil {
		t.Fatalf("GetOrSet second call: %v", err)
	}

	if calls != 1 {
		t.Errorf("loader ran %d times, want 1", calls)
	}
	if first.Name != second.Name {
		t.Errorf("values differ: %+v vs %+v", first, second)
	}
}

func TestTypedCacheGetOrSetError(t *testing.T) {
	backend := NewSimpleMemoryCache(time.Minute)
	defer func() { _ = backend.Close() }()
	tc := NewTypedCache[testRecord](backend, time.Minute)
	ctx := context.Background()

	wantErr := errors.New("load failed")
	_, err := tc.GetOrSet(ctx, "k", func() (*testRecord, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("GetOrSet err = %v, want %v", err, wantErr)
	}
	if tc.Has(ctx, "k") {
		t.Error("failed load was cached")
	}
}
