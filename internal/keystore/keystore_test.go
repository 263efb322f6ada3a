package keystore

import (
	"bytes"
	"context"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	if got, err := store.Get(ctx, EntryToken); err != nil || got != nil {
		t.Fatalf("Get of missing entry = (%v, %v), want (nil, nil)", got, err)
	}

	want := []byte("bearer-credential")
	if err := store.Set(ctx, EntryToken, want); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := store.Get(ctx, EntryToken)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Get = %q, want %q", got, want)
	}

	if err := store.Delete(ctx, EntryToken); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(ctx, EntryToken); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if got, err := store.Get(ctx, EntryToken); err != nil || got != nil {
		t.Errorf("Get after delete = (%v, %v), want (nil, nil)", got, err)
	}
}

func TestFileStoreRejectsBadNames(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	for _, name := range []string{"", ".", "..", "a/b", `a\b`} {
		if err := store.Set(ctx, name, []byte("x")); err == nil {
			t.Errorf("Set(%q) succeeded, want error", name)
		}
	}
}

func TestEncryptedStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	inner, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	store, err := NewEncryptedStore(ctx, inner, "local-passcode")
	if err != nil {
		t.Fatalf("NewEncryptedStore: %v", err)
	}

	want := []byte(`{"id":"u1"}`)
	if err := store.Set(ctx, EntryUser, want); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// The inner store must never see the plaintext.
	raw, err := inner.Get(ctx, EntryUser)
	if err != nil {
		t.Fatalf("inner Get: %v", err)
	}
	if bytes.Contains(raw, []byte("u1")) {
		t.Error("inner store holds plaintext")
	}

	got, err := store.Get(ctx, EntryUser)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Get = %q, want %q", got, want)
	}
}

func TestEncryptedStoreWrongPasscode(t *testing.T) {
	ctx := context.Background()
	inner, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	store, err := NewEncryptedStore(ctx, inner, "correct")
	if err != nil {
		t.Fatalf("NewEncryptedStore: %v", err)
	}
	if err := store.Set(ctx, EntryToken, []byte("secret")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// Same salt, different passcode: unseal must fail, not return junk.
	other, err := NewEncryptedStore(ctx, inner, "wrong")
	if err != nil {
		t.Fatalf("NewEncryptedStore(wrong): %v", err)
	}
	if _, err := other.Get(ctx, EntryToken); err == nil {
		t.Error("Get with wrong passcode succeeded, want error")
	}
}

func TestEncryptedStoreCorruptBlob(t *testing.T) {
	ctx := context.Background()
	inner, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	store, err := NewEncryptedStore(ctx, inner, "passcode")
	if err != nil {
		t.Fatalf("NewEncryptedStore: %v", err)
	}

	if err := inner.Set(ctx, EntryToken, []byte{1, 2, 3}); err != nil {
		t.Fatalf("inner Set: %v", err)
	}
	if _, err := store.Get(ctx, EntryToken); err == nil {
		t.Error("Get of corrupt blob succeeded, want error")
	}
}
