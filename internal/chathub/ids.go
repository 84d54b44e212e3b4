package chathub

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// IDSource issues invite and message ids. Ids only need to be unique
// for the lifetime of the process, not unguessable: a monotonic
// sequence guarantees uniqueness, the timestamp and UUID-derived
// suffix keep ids distinct across restarts.
type IDSource struct {
	seq atomic.Uint64
}

func NewIDSource() *IDSource {
	return &IDSource{}
}

// Next returns a fresh id with the given kind prefix, e.g. "inv" or
// "msg".
func (g *IDSource) Next(kind string) string {
	suffix := uuid.NewString()[:8]
	return fmt.Sprintf("%s_%d_%d_%s", kind, time.Now().UnixMilli(), g.seq.Add(1), suffix)
}
