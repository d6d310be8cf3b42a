package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// UnreadCounter reports the caller's unread notification count.
type UnreadCounter interface {
	UnreadCount(ctx context.Context) (int, error)
}

// PollerConfig controls the polling cadence.
type PollerConfig struct {
	Interval time.Duration
	Timeout  time.Duration
}

// Poller keeps a local unread-notification counter in sync with the server
// by polling on a fixed interval. Between polls the counter can be nudged
// optimistically, like when the user opens a notification, so the prompt
// badge does not lag a full interval behind.
type Poller struct {
	counter  UnreadCounter
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
	onChange func(int)

	mu    sync.Mutex
	count int

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// NewPoller constructs a stopped Poller. onChange, when non-nil, is invoked
// after every count change, including optimistic ones.
func NewPoller(counter UnreadCounter, cfg PollerConfig, logger *slog.Logger, onChange func(int)) *Poller {
	if counter == nil {
		panic("notify: NewPoller requires a counter")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Poller{
		counter:  counter,
		interval: cfg.Interval,
		timeout:  cfg.Timeout,
		logger:   logger,
		onChange: onChange,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Start launches the polling loop. The first poll happens immediately.
func (p *Poller) Start() {
	go p.loop()
}

// Shutdown stops the loop and waits for it to exit.
func (p *Poller) Shutdown(ctx context.Context) error {
	p.once.Do(p.cancel)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.done:
		return nil
	}
}

// Count returns the current unread count.
func (p *Poller) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}

// MarkRead optimistically decrements the counter ahead of the next poll.
func (p *Poller) MarkRead() {
	p.adjust(-1)
}

// Bump optimistically increments the counter ahead of the next poll.
func (p *Poller) Bump() {
	p.adjust(1)
}

func (p *Poller) adjust(delta int) {
	p.mu.Lock()
	next := p.count + delta
	if next < 0 {
		next = 0
	}
	changed := next != p.count
	p.count = next
	p.mu.Unlock()

	if changed && p.onChange != nil {
		p.onChange(next)
	}
}

// Refresh polls once outside the regular cadence, used right after login.
func (p *Poller) Refresh(ctx context.Context) {
	p.poll(ctx)
}

func (p *Poller) loop() {
	defer close(p.done)

	p.poll(p.ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.poll(p.ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	count, err := p.counter.UnreadCount(ctx)
	if err != nil {
		// Transient poll failures keep the last known count.
		p.logger.Debug("unread count poll failed", "error", err)
		return
	}

	p.mu.Lock()
	changed := count != p.count
	p.count = count
	p.mu.Unlock()

	if changed && p.onChange != nil {
		p.onChange(count)
	}
}
