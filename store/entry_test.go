package store

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	now := time.Now()
	payload := []byte("some payload")

	raw := encodeEntry(payload, now, time.Minute)
	h, body, err := decodeEntry(raw)
	if err != nil {
		t.Fatalf("decodeEntry: %v", err)
	}
	if !bytes.Equal(body, payload) {
		t.Fatalf("payload mismatch: got %q, want %q", body, payload)
	}
	if h.createdAt != now.UnixNano() {
		t.Fatalf("createdAt: got %d, want %d", h.createdAt, now.UnixNano())
	}
	if want := now.Add(time.Minute).UnixNano(); h.expiresAt != want {
		t.Fatalf("expiresAt: got %d, want %d", h.expiresAt, want)
	}
}

func TestEncodeDecode_EmptyPayload(t *testing.T) {
	raw := encodeEntry(nil, time.Now(), 0)
	h, body, err := decodeEntry(raw)
	if err != nil {
		t.Fatalf("decodeEntry: %v", err)
	}
	if len(body) != 0 {
		t.Fatalf("expected empty payload, got %d bytes", len(body))
	}
	if h.expiresAt != 0 {
		t.Fatalf("expected no expiration, got %d", h.expiresAt)
	}
}

func TestHeader_Expired(t *testing.T) {
	now := time.Now()

	// ttl <= 0 never expires, no matter how much time passes.
	raw := encodeEntry(nil, now, 0)
	h, _, _ := decodeEntry(raw)
	if h.expired(now.Add(1000 * time.Hour)) {
		t.Fatal("entry without expiration reported expired")
	}

	raw = encodeEntry(nil, now, 50*time.Millisecond)
	h, _, _ = decodeEntry(raw)
	if h.expired(now) {
		t.Fatal("fresh entry reported expired")
	}
	if !h.expired(now.Add(50 * time.Millisecond)) {
		t.Fatal("entry not expired exactly at its deadline")
	}
	if !h.expired(now.Add(time.Second)) {
		t.Fatal("entry not expired past its deadline")
	}
}

func TestDecode_ShortHeader(t *testing.T) {
	_, _, err := decodeEntry([]byte{entryVersion, 1, 2, 3})
	if !errors.Is(err, errShortHeader) {
		t.Fatalf("expected errShortHeader, got %v", err)
	}
}

func TestDecode_UnknownVersion(t *testing.T) {
	raw := encodeEntry([]byte("x"), time.Now(), 0)
	raw[0] = 99
	_, _, err := decodeEntry(raw)
	if !errors.Is(err, errUnknownVersion) {
		t.Fatalf("expected errUnknownVersion, got %v", err)
	}
}

func TestDecode_TruncatedPayload(t *testing.T) {
	raw := encodeEntry([]byte("full payload"), time.Now(), 0)
	_, _, err := decodeEntry(raw[:len(raw)-3])
	if !errors.Is(err, errTruncated) {
		t.Fatalf("expected errTruncated, got %v", err)
	}
}
