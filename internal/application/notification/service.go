package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-phone-auth/internal/pkg/redact"
	"golang.org/x/time/rate"
)

// MessageFormat is the SMS body sent with a verification code.
const MessageFormat = "Your verification code: %s"

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

// Options tunes the dispatcher. Zero values fall back to defaults.
type Options struct {
	Workers       int
	QueueSize     int
	RatePerSecond float64 // <= 0 means unlimited
	SendTimeout   time.Duration
}

type job struct {
	phone string
	code  string
}

// Dispatcher delivers verification codes in the background. Send never
// blocks and never reports delivery failures; those are only logged.
type Dispatcher struct {
	sender      smsSender
	limiter     *rate.Limiter
	sendTimeout time.Duration
	jobs        chan job
	wg          sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(sender smsSender, opts Options) *Dispatcher {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = 64
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = 10 * time.Second
	}
	limit := rate.Inf
	burst := opts.Workers
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
		if burst < 1 {
			burst = 1
		}
	}
	d := &Dispatcher{
		sender:      sender,
		limiter:     rate.NewLimiter(limit, burst),
		sendTimeout: opts.SendTimeout,
		jobs:        make(chan job, opts.QueueSize),
	}
	d.wg.Add(opts.Workers)
	for i := 0; i < opts.Workers; i++ {
		go d.work()
	}
	return d
}

// Send queues a code for delivery to phone. When the queue is full or the
// dispatcher is closed the code is dropped with a warning.
func (d *Dispatcher) Send(phone, code string) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		slog.Warn("sms dropped, dispatcher closed", "to", redact.Phone(phone))
		return
	}
	select {
	case d.jobs <- job{phone: phone, code: code}:
	default:
		slog.Warn("sms dropped, queue full", "to", redact.Phone(phone))
	}
}

// Close stops accepting codes and waits for queued ones to be sent or for
// ctx to end, whichever comes first.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.jobs)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("drain sms queue: %w", ctx.Err())
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for j := range d.jobs {
		d.deliver(j)
	}
}

func (d *Dispatcher) deliver(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
	defer cancel()
	if err := d.limiter.Wait(ctx); err != nil {
		slog.Warn("sms not sent, rate wait aborted", "to", redact.Phone(j.phone), "err", err)
		return
	}
	err := d.sender.SendSMS(ctx, j.phone, fmt.Sprintf(MessageFormat, j.code))
	switch {
	case err == nil:
		slog.Debug("sms sent", "to", redact.Phone(j.phone))
	case errors.Is(err, context.DeadlineExceeded):
		slog.Warn("sms send timed out", "to", redact.Phone(j.phone), "timeout", d.sendTimeout)
	default:
		slog.Warn("sms send failed", "to", redact.Phone(j.phone), "err", err)
	}
}
