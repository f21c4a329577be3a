package memory

import (
	"context"
	"testing"
)

func TestBackendRoundTripAndPrefixKeys(t *testing.T) {
	ctx := context.Background()
	b := New()

	if err := b.Set(ctx, "mdr_quotes", []byte(`[]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := b.Set(ctx, "other", []byte(`1`)); err != nil {
		t.Fatalf("set: %v", err)
	}

	v, ok, err := b.Get(ctx, "mdr_quotes")
	if err != nil || !ok || string(v) != "[]" {
		t.Fatalf("expected [] found, got %q ok=%v err=%v", v, ok, err)
	}

	keys, _ := b.Keys(ctx, "mdr_")
	if len(keys) != 1 || keys[0] != "mdr_quotes" {
		t.Fatalf("expected [mdr_quotes], got %v", keys)
	}

	if err := b.Delete(ctx, "mdr_quotes"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := b.Get(ctx, "mdr_quotes"); ok {
		t.Fatalf("expected key to be gone")
	}
}

func TestBackendCopiesValues(t *testing.T) {
	ctx := context.Background()
	b := New()
	in := []byte("abc")
	_ = b.Set(ctx, "k", in)
	in[0] = 'z'

	v, _, _ := b.Get(ctx, "k")
	if string(v) != "abc" {
		t.Fatalf("expected stored value to be isolated, got %q", v)
	}
}
