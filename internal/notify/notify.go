// Package notify delivers email and SMS notices without blocking the caller.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"busbooking/internal/utils"
)

type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

type Message struct {
	Channel     Channel `json:"channel"`
	Destination string  `json:"destination"`
	Subject     string  `json:"subject,omitempty"`
	Body        string  `json:"body"`
}

// Sender performs one delivery attempt.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Dispatcher routes messages to a per-channel sender in a background
// goroutine. Send errors are logged and dropped.
type Dispatcher struct {
	senders map[Channel]Sender
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewDispatcher(timeout time.Duration, senders map[Channel]Sender) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	copied := make(map[Channel]Sender, len(senders))
	for ch, s := range senders {
		copied[ch] = s
	}
	return &Dispatcher{senders: copied, timeout: timeout}
}

// Notify returns immediately. The request id is carried over but the request's
// cancellation is not, so a finished request does not abort delivery.
func (d *Dispatcher) Notify(ctx context.Context, msg Message) {
	reqID := utils.RequestIDFrom(ctx)
	sender, ok := d.senders[msg.Channel]
	if !ok {
		utils.LogEvent(reqID, "notify", "skip", fmt.Sprintf("no sender for channel=%s", msg.Channel))
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		sendCtx, cancel := context.WithTimeout(utils.WithRequestID(context.Background(), reqID), d.timeout)
		defer cancel()
		if err := sender.Send(sendCtx, msg); err != nil {
			utils.LogEvent(reqID, "notify", "send_failed", fmt.Sprintf("channel=%s to=%s err=%v", msg.Channel, mask(msg.Destination), err))
			return
		}
		utils.LogEvent(reqID, "notify", "sent", fmt.Sprintf("channel=%s to=%s", msg.Channel, mask(msg.Destination)))
	}()
}

// Wait blocks until in-flight sends finish or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func mask(dest string) string {
	if len(dest) <= 4 {
		return "****"
	}
	return "****" + dest[len(dest)-4:]
}
