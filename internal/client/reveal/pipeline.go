// Package reveal paces the display of streamed text. Fragments arrive in
// bursts from the producer; the pipeline queues their characters and
// releases one per tick, so the answer appears at a steady rate.
package reveal

import (
	"context"
	"sync"
	"time"
)

// DefaultInterval is the pause between two revealed characters.
const DefaultInterval = 14 * time.Millisecond

// Pipeline is a FIFO of runes filled by Push and drained by Run. It is
// single-use: one producer, one Run.
type Pipeline struct {
	mu             sync.Mutex
	revealed       []rune
	pending        []rune
	lastSeen       int
	producerActive bool

	interval time.Duration
	onReveal func(text string)
}

// New returns a pipeline whose producer is active. onReveal receives the
// text revealed so far after every tick that revealed a character; it may
// be nil.
func New(interval time.Duration, onReveal func(text string)) *Pipeline {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Pipeline{
		interval:       interval,
		onReveal:       onReveal,
		producerActive: true,
	}
}

// Push accepts the producer's cumulative text and queues the characters
// not seen before. It never blocks and never drops characters.
func (p *Pipeline) Push(cumulative string) {
	runes := []rune(cumulative)

	p.mu.Lock()
	defer p.mu.Unlock()

	if len(runes) <= p.lastSeen {
		return
	}
	p.pending = append(p.pending, runes[p.lastSeen:]...)
	p.lastSeen = len(runes)
}

// Close marks the producer as finished. Queued characters are still
// revealed.
func (p *Pipeline) Close() {
	p.mu.Lock()
	p.producerActive = false
	p.mu.Unlock()
}

// step reveals at most one character. It reports the revealed text, whether
// a character was revealed and whether more ticks are needed.
func (p *Pipeline) step() (text string, revealed bool, more bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.pending) > 0 {
		p.revealed = append(p.revealed, p.pending[0])
		p.pending = p.pending[1:]
		revealed = true
	}
	return string(p.revealed), revealed, p.producerActive || len(p.pending) > 0
}

// Revealed returns the text shown so far.
func (p *Pipeline) Revealed() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return string(p.revealed)
}

// Run drains the queue, one character per interval, until the producer
// is closed and the queue is empty, then returns the final text.
//
// If ctx ends first Run stops at once and returns ctx.Err(); nothing is
// revealed afterwards and the text is not final.
func (p *Pipeline) Run(ctx context.Context) (string, error) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}

		// A tick may race with cancellation.
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		text, revealed, more := p.step()
		if revealed && p.onReveal != nil {
			p.onReveal(text)
		}
		if !more {
			return text, nil
		}
	}
}
