// Package id generates request identifiers for the hub.
//
// Identifiers are ULIDs: lexicographically sortable by creation time, so
// access-log lines carrying them order naturally. Request ids carry the
// "req_" prefix to keep them recognizable in logs and response headers.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// RequestID identifies an HTTP request to the control plane
type RequestID string

// RequestPrefix marks request ids.
const RequestPrefix = "req"

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex // Protects entropy reader
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator whose ids increase strictly even
// within the same millisecond.
func NewGenerator() *Generator {
	return &Generator{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate())
}

// NewRequestID generates a new request ID
func NewRequestID() RequestID {
	return RequestID(Default().GenerateWithPrefix(RequestPrefix))
}

func (id RequestID) String() string { return string(id) }

// ParseRequestID accepts a request id supplied by a client, such as a
// bridge page forwarding its own X-Request-ID. Anything other than a
// well-formed "req_<ULID>" is rejected.
func ParseRequestID(s string) (RequestID, bool) {
	rest, ok := strings.CutPrefix(s, RequestPrefix+"_")
	if !ok {
		return "", false
	}
	if _, err := ulid.ParseStrict(rest); err != nil {
		return "", false
	}
	return RequestID(s), true
}
