package store

import (
	"path/filepath"
	"testing"
)

type payload struct {
	Value string `json:"value"`
	N     int    `json:"n"`
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "cache.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_PutGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	b := s.Bucket("wiki")

	if err := b.Put("Jane Doe", payload{Value: "bio", N: 7}); err != nil {
		t.Fatalf("put: %v", err)
	}

	var got payload
	ok, err := b.Get("Jane Doe", &got)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatal("expected a hit")
	}
	if got.Value != "bio" || got.N != 7 {
		t.Errorf("got %+v", got)
	}
}

func TestStore_MissAndContains(t *testing.T) {
	s := openTestStore(t)
	b := s.Bucket("wiki")

	var got payload
	ok, err := b.Get("missing", &got)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Error("expected a miss")
	}

	if err := b.Put("present", payload{Value: "x"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if ok, err := b.Contains("present"); err != nil || !ok {
		t.Errorf("contains present: ok=%v err=%v", ok, err)
	}
	if ok, err := b.Contains("missing"); err != nil || ok {
		t.Errorf("contains missing: ok=%v err=%v", ok, err)
	}
}

func TestStore_PutOverwrites(t *testing.T) {
	s := openTestStore(t)
	b := s.Bucket("enhance")

	if err := b.Put("key", payload{Value: "first"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := b.Put("key", payload{Value: "second"}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	var got payload
	if _, err := b.Get("key", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Value != "second" {
		t.Errorf("got %q", got.Value)
	}
}

func TestStore_BucketsIsolated(t *testing.T) {
	s := openTestStore(t)
	a, b := s.Bucket("wiki"), s.Bucket("enhance")

	if err := a.Put("shared-key", payload{Value: "from wiki"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	var got payload
	ok, err := b.Get("shared-key", &got)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Error("buckets must not share keys")
	}
}

func TestMemory_Cache(t *testing.T) {
	m := NewMemory()

	if err := m.Put("k", payload{Value: "v"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	var got payload
	ok, err := m.Get("k", &got)
	if err != nil || !ok || got.Value != "v" {
		t.Errorf("get: ok=%v err=%v got=%+v", ok, err, got)
	}
	if ok, _ := m.Contains("k"); !ok {
		t.Error("contains should see the key")
	}
	if ok, _ := m.Contains("other"); ok {
		t.Error("unexpected key")
	}
	if m.Len() != 1 {
		t.Errorf("len: %d", m.Len())
	}
}
