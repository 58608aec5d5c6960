package mailq

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// SendFunc delivers a message. Errors are passed to the OnError hook.
type SendFunc func(ctx context.Context, msg Message) error

// Config controls queue size and delivery behavior.
type Config struct {
	BufferSize  int
	DropIfFull  bool
	SendTimeout time.Duration

	// OnError is called from the worker goroutine after a failed send.
	OnError func(msg Message, err error)
	// OnSent is called from the worker goroutine after a successful send.
	OnSent func(msg Message)
}

// Dispatcher owns the queue and its worker.
type Dispatcher struct {
	cfg       Config
	send      SendFunc
	ch        chan Message
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	failed    atomic.Uint64
	closeOnce sync.Once

	// mu is held shared by senders and exclusively by Close, so no message
	// can enter ch once the worker has been told to drain.
	mu     sync.RWMutex
	closed bool
}

// New starts a dispatcher that delivers through send.
func New(cfg Config, send SendFunc) *Dispatcher {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}

	d := &Dispatcher{
		cfg:  cfg,
		send: send,
		ch:   make(chan Message, cfg.BufferSize),
		done: make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case msg := <-d.ch:
			d.deliver(msg)
		case <-d.done:
			for {
				select {
				case msg := <-d.ch:
					d.deliver(msg)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) deliver(msg Message) {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.SendTimeout)
	defer cancel()

	if err := d.send(ctx, msg); err != nil {
		d.failed.Add(1)
		if d.cfg.OnError != nil {
			d.cfg.OnError(msg, err)
		}
		return
	}
	if d.cfg.OnSent != nil {
		d.cfg.OnSent(msg)
	}
}

// Enqueue queues msg for delivery. It reports false when the message was
// dropped because the queue is full, closed, or ctx ended first. A message
// accepted before Close is always delivered or handed to OnError.
func (d *Dispatcher) Enqueue(ctx context.Context, msg Message) bool {
	if d == nil {
		return false
	}
	if ctx == nil {
		ctx = context.Background()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return false
	}

	if d.cfg.DropIfFull {
		select {
		case d.ch <- msg:
			return true
		default:
			d.dropped.Add(1)
			return false
		}
	}

	select {
	case d.ch <- msg:
		return true
	case <-ctx.Done():
		d.dropped.Add(1)
		return false
	}
}

// Close stops the dispatcher after draining queued messages. It is safe to
// call more than once.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.done)
		d.mu.Unlock()
		d.wg.Wait()
	})
}

// Dropped returns the number of messages never queued.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

// Failed returns the number of messages whose send returned an error.
func (d *Dispatcher) Failed() uint64 {
	if d == nil {
		return 0
	}
	return d.failed.Load()
}
