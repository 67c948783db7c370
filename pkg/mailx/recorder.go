package mailx

import (
	"context"
	"sync"
)

// Recorder is a Mailer that captures messages in memory. Tests use it to
// assert on dispatched mail; setting Err simulates provider failures.
type Recorder struct {
	mu   sync.Mutex
	sent []Message

	// Err, when set, is returned by every Send without recording.
	Err error
}

func (r *Recorder) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return r.Err
	}
	r.sent = append(r.sent, msg)
	return nil
}

// Sent returns a copy of all recorded messages.
func (r *Recorder) Sent() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Message, len(r.sent))
	copy(out, r.sent)
	return out
}

// Reset clears recorded messages and any configured error.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sent = nil
	r.Err = nil
}
