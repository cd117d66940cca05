// Package carriersync keeps the server-side carrier selection in step with
// the checkout form. Every change is debounced per shipping instance and an
// identical payload is never sent twice in a row.
package carriersync

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"sync"
	"time"

	shipdomain "github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/domain"
)

// DefaultQuietPeriod is how long an instance must stay unchanged before its
// selection is dispatched.
const DefaultQuietPeriod = 300 * time.Millisecond

var instanceSuffix = regexp.MustCompile(`:([0-9]+)$`)

// Payload is one save request for a shipping instance.
type Payload struct {
	Instance   shipdomain.InstanceID
	Carrier    string
	CustomText string
}

func (p Payload) empty() bool {
	return p.Carrier == "" && p.CustomText == ""
}

// Sender dispatches a payload to the save action.
type Sender interface {
	Send(ctx context.Context, payload Payload) error
}

// Timer is a cancellable scheduled callback.
type Timer interface {
	Stop() bool
}

// Scheduler runs fn once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

type instanceState struct {
	carrier     string
	customText  string
	timer       Timer
	generation  uint64
	lastPayload *Payload
	inFlight    bool
}

// Client is the per-checkout sync controller. It is safe for concurrent use.
type Client struct {
	mu        sync.Mutex
	sender    Sender
	scheduler Scheduler
	quiet     time.Duration
	logger    *slog.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	states    map[shipdomain.InstanceID]*instanceState
	visible   map[shipdomain.InstanceID]bool
}

type Option func(*Client)

// WithScheduler replaces the timer source, mainly for tests.
func WithScheduler(s Scheduler) Option {
	return func(c *Client) {
		if s != nil {
			c.scheduler = s
		}
	}
}

func WithQuietPeriod(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.quiet = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New builds a client dispatching through sender.
func New(sender Sender, opts ...Option) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		sender:    sender,
		scheduler: realScheduler{},
		quiet:     DefaultQuietPeriod,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		ctx:       ctx,
		cancel:    cancel,
		states:    map[shipdomain.InstanceID]*instanceState{},
		visible:   map[shipdomain.InstanceID]bool{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// SelectorChanged records a new carrier choice and schedules a save.
func (c *Client) SelectorChanged(id shipdomain.InstanceID, carrier string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.state(id)
	st.carrier = carrier
	c.schedule(id, st)
}

// CustomTextChanged records new free text and schedules a save.
func (c *Client) CustomTextChanged(id shipdomain.InstanceID, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.state(id)
	st.customText = text
	c.schedule(id, st)
}

// ShippingMethodChanged recomputes visibility from the checked rate ids and
// schedules a save for every visible instance that already holds a value.
func (c *Client) ShippingMethodChanged(checked []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateVisibility(checked)
	for id := range c.visible {
		st, ok := c.states[id]
		if !ok || (st.carrier == "" && st.customText == "") {
			continue
		}
		c.schedule(id, st)
	}
}

// RatesRendered recomputes visibility after the rate list was re-rendered.
func (c *Client) RatesRendered(checked []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateVisibility(checked)
}

// Visible reports whether the selector of the instance should be shown.
func (c *Client) Visible(id shipdomain.InstanceID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible[id]
}

// CustomFieldVisible reports whether the free-text input should be shown.
func (c *Client) CustomFieldVisible(id shipdomain.InstanceID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.states[id]
	return ok && st.carrier == shipdomain.CustomCarrier
}

// Pending reports whether a save is scheduled for the instance.
func (c *Client) Pending(id shipdomain.InstanceID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.states[id]
	return ok && st.timer != nil
}

// Close cancels pending timers and any dispatch in progress.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, st := range c.states {
		if st.timer != nil {
			st.timer.Stop()
			st.timer = nil
		}
		st.generation++
	}
	c.cancel()
}

// VisibleInstances extracts instance ids from checked rate ids.
func VisibleInstances(checked []string) []shipdomain.InstanceID {
	var ids []shipdomain.InstanceID
	for _, rateID := range checked {
		m := instanceSuffix.FindStringSubmatch(rateID)
		if m == nil {
			continue
		}
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil || n <= 0 {
			continue
		}
		ids = append(ids, shipdomain.InstanceID(n))
	}
	return ids
}

func (c *Client) updateVisibility(checked []string) {
	visible := map[shipdomain.InstanceID]bool{}
	for _, id := range VisibleInstances(checked) {
		visible[id] = true
	}
	c.visible = visible
}

func (c *Client) state(id shipdomain.InstanceID) *instanceState {
	st, ok := c.states[id]
	if !ok {
		st = &instanceState{}
		c.states[id] = st
	}
	return st
}

// schedule must be called with c.mu held. The payload is captured now; a
// newer event replaces the pending timer.
func (c *Client) schedule(id shipdomain.InstanceID, st *instanceState) {
	payload := Payload{Instance: id, Carrier: st.carrier, CustomText: st.customText}
	if st.timer != nil {
		st.timer.Stop()
		st.timer = nil
	}
	st.generation++
	if payload.empty() {
		return
	}
	gen := st.generation
	st.timer = c.scheduler.AfterFunc(c.quiet, func() { c.fire(id, gen, payload) })
}

func (c *Client) fire(id shipdomain.InstanceID, gen uint64, payload Payload) {
	c.mu.Lock()
	st, ok := c.states[id]
	if !ok || st.generation != gen {
		c.mu.Unlock()
		return
	}
	st.timer = nil
	if st.lastPayload != nil && *st.lastPayload == payload {
		c.mu.Unlock()
		c.logger.LogAttrs(c.ctx, slog.LevelDebug, "carrier save skipped, payload unchanged",
			slog.Int64("instance.id", int64(id)))
		return
	}
	sent := payload
	st.lastPayload = &sent
	st.inFlight = true
	ctx := c.ctx
	c.mu.Unlock()

	err := c.sender.Send(ctx, payload)

	c.mu.Lock()
	st.inFlight = false
	if err != nil && st.lastPayload != nil && *st.lastPayload == payload {
		st.lastPayload = nil
	}
	c.mu.Unlock()

	if err != nil {
		c.logger.LogAttrs(ctx, slog.LevelWarn, "carrier save failed",
			slog.Int64("instance.id", int64(id)),
			slog.String("error", err.Error()))
		return
	}
	c.logger.LogAttrs(ctx, slog.LevelDebug, "carrier save dispatched",
		slog.Int64("instance.id", int64(id)))
}

// InFlight reports whether a save for the instance is being dispatched.
func (c *Client) InFlight(id shipdomain.InstanceID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.states[id]
	return ok && st.inFlight
}
