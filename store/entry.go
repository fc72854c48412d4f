package store

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// On-disk entry layout, big-endian:
//
//	[version:1][created_at:8][expires_at:8][length:4][payload]
//
// Timestamps are Unix nanoseconds. An expires_at of zero means the entry
// never expires.
const (
	entryVersion = 1
	headerSize   = 1 + 8 + 8 + 4
)

var (
	errShortHeader    = errors.New("entry shorter than header")
	errUnknownVersion = errors.New("unknown entry version")
	errTruncated      = errors.New("entry payload truncated")
)

// Entry is one decoded cache entry.
type Entry struct {
	Payload   []byte
	CreatedAt time.Time

	// ExpiresAt is the absolute expiration. The zero time means the entry
	// never expires.
	ExpiresAt time.Time
}

// header is the fixed-size prefix of an entry file.
type header struct {
	createdAt int64
	expiresAt int64
	length    uint32
}

// expired reports whether the entry is past its expiration at now.
func (h header) expired(now time.Time) bool {
	return h.expiresAt != 0 && now.UnixNano() >= h.expiresAt
}

// encodeEntry frames payload with an expiration header. A ttl > 0 stamps an
// absolute expiration; ttl <= 0 means no expiration.
func encodeEntry(payload []byte, now time.Time, ttl time.Duration) []byte {
	buf := make([]byte, headerSize+len(payload))
	buf[0] = entryVersion
	binary.BigEndian.PutUint64(buf[1:9], uint64(now.UnixNano()))
	var exp int64
	if ttl > 0 {
		exp = now.Add(ttl).UnixNano()
	}
	binary.BigEndian.PutUint64(buf[9:17], uint64(exp))
	binary.BigEndian.PutUint32(buf[17:21], uint32(len(payload)))
	copy(buf[headerSize:], payload)
	return buf
}

// decodeHeader parses the fixed-size prefix of an entry.
func decodeHeader(b []byte) (header, error) {
	if len(b) < headerSize {
		return header{}, errShortHeader
	}
	if b[0] != entryVersion {
		return header{}, fmt.Errorf("%w: %d", errUnknownVersion, b[0])
	}
	return header{
		createdAt: int64(binary.BigEndian.Uint64(b[1:9])),
		expiresAt: int64(binary.BigEndian.Uint64(b[9:17])),
		length:    binary.BigEndian.Uint32(b[17:21]),
	}, nil
}

// decodeEntry splits a raw entry file into header and payload, verifying the
// recorded payload length.
func decodeEntry(b []byte) (header, []byte, error) {
	h, err := decodeHeader(b)
	if err != nil {
		return header{}, nil, err
	}
	body := b[headerSize:]
	if uint32(len(body)) < h.length {
		return header{}, nil, errTruncated
	}
	return h, body[:h.length], nil
}

// entry converts a decoded header and payload into the exported form.
func (h header) entry(payload []byte) Entry {
	e := Entry{
		Payload:   payload,
		CreatedAt: time.Unix(0, h.createdAt),
	}
	if h.expiresAt != 0 {
		e.ExpiresAt = time.Unix(0, h.expiresAt)
	}
	return e
}

// readHeader reads just the fixed-size header of an entry file, without
// loading the payload.
func readHeader(path string) (header, error) {
	f, err := os.Open(path)
	if err != nil {
		return header{}, err
	}
	defer f.Close()

	var buf [headerSize]byte
	if _, err := io.ReadFull(f, buf[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return header{}, errShortHeader
		}
		return header{}, err
	}
	return decodeHeader(buf[:])
}
