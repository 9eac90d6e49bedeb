package recorder

import (
	"context"
	"sync"

	"github.com/secmon-lab/warden/pkg/domain/model"
	"github.com/secmon-lab/warden/pkg/domain/types"
)

// DefaultCapacity is the bounded context window per conversation.
const DefaultCapacity = 100

// EvictFunc is notified for every message trimmed out of a ring, so the
// media cache can drop ciphertext that no longer backs any context.
type EvictFunc func(ctx context.Context, messageID types.MessageID)

// Recorder keeps a bounded ring of recent messages per conversation. It is
// used only to build the immutable context snapshot attached to a
// moderation action at creation time; it holds no per-action state.
type Recorder struct {
	capacity int
	onEvict  EvictFunc

	mu    sync.Mutex
	rings map[types.ChannelID][]model.ContextMessage
}

// Option is a functional option for recorder configuration
type Option func(*Recorder)

// WithCapacity overrides the per-conversation window size.
func WithCapacity(n int) Option {
	return func(r *Recorder) {
		if n > 0 {
			r.capacity = n
		}
	}
}

// WithEvictFunc registers the trim notification callback.
func WithEvictFunc(f EvictFunc) Option {
	return func(r *Recorder) {
		r.onEvict = f
	}
}

// New creates a Recorder.
func New(opts ...Option) *Recorder {
	r := &Recorder{
		capacity: DefaultCapacity,
		rings:    make(map[types.ChannelID][]model.ContextMessage),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Observe appends a normalized record to the message's conversation ring,
// trimming to capacity and reporting anything trimmed to the evict callback.
func (r *Recorder) Observe(ctx context.Context, msg *model.Message) {
	var evicted []types.MessageID

	r.mu.Lock()
	ring := append(r.rings[msg.ChannelID], msg.ToContext())
	for len(ring) > r.capacity {
		evicted = append(evicted, ring[0].MessageID)
		ring = ring[1:]
	}
	r.rings[msg.ChannelID] = ring
	r.mu.Unlock()

	if r.onEvict != nil {
		for _, id := range evicted {
			r.onEvict(ctx, id)
		}
	}
}

// Window returns up to count entries centered on the target message, or the
// most recent count entries if the target is no longer present. The target,
// when present, is always included.
func (r *Recorder) Window(channelID types.ChannelID, around types.MessageID, count int) []model.ContextMessage {
	r.mu.Lock()
	defer r.mu.Unlock()

	ring := r.rings[channelID]
	if len(ring) == 0 || count <= 0 {
		return nil
	}

	center := -1
	for i, m := range ring {
		if m.MessageID == around {
			center = i
			break
		}
	}

	var lo, hi int
	if center < 0 {
		// Target already trimmed (or foreign): fall back to the tail.
		lo = len(ring) - count
		hi = len(ring)
	} else {
		lo = center - count/2
		hi = lo + count
		if hi > len(ring) {
			lo -= hi - len(ring)
			hi = len(ring)
		}
	}
	if lo < 0 {
		lo = 0
		hi = count
		if hi > len(ring) {
			hi = len(ring)
		}
	}

	out := make([]model.ContextMessage, hi-lo)
	copy(out, ring[lo:hi])
	return out
}
