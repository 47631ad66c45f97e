package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Forkful/MealNudge/internal/messaging"
	"github.com/Forkful/MealNudge/internal/models"
	"github.com/Forkful/MealNudge/internal/store"
)

// DefaultMaxDelivered bounds the delivered list retained in memory.
const DefaultMaxDelivered = 50

// Opts holds configuration options for the local center.
type Opts struct {
	Grant        bool
	MaxDelivered int
	Clock        func() time.Time
}

// Option defines a configuration option for the local center.
type Option func(*Opts)

// WithAuthorizationGrant sets the answer the simulated permission prompt
// gives. This stands in for the platform dialog in a headless deployment.
func WithAuthorizationGrant(grant bool) Option {
	return func(o *Opts) { o.Grant = grant }
}

// WithMaxDelivered bounds the delivered list.
func WithMaxDelivered(n int) Option {
	return func(o *Opts) { o.MaxDelivered = n }
}

// WithClock injects a time source for tests.
func WithClock(clock func() time.Time) Option {
	return func(o *Opts) { o.Clock = clock }
}

// armed tracks one scheduled timer for a pending request. gen identifies
// the arming that created the timer, so a callback that lost the race
// against a replacement Submit can tell it is stale.
type armed struct {
	timer  *time.Timer
	fireAt time.Time
	gen    uint64
}

// LocalCenter is a timer-backed Center. Pending requests are persisted
// through the store so a restart can re-arm them; delivered notifications
// are kept in memory only.
type LocalCenter struct {
	repo    store.Store
	sink    messaging.Service
	levelFn LevelFunc
	clock   func() time.Time
	grant   bool
	maxDel  int

	mu        sync.Mutex
	pending   map[string]models.NotificationRequest
	timers    map[string]*armed
	delivered []models.DeliveredNotification
	genSeq    uint64
	stopped   bool
}

// NewLocalCenter creates a local delivery center presenting through the
// given sink. levelFn resolves the interruption level at fire time.
func NewLocalCenter(repo store.Store, sink messaging.Service, levelFn LevelFunc, opts ...Option) *LocalCenter {
	cfg := Opts{MaxDelivered: DefaultMaxDelivered, Clock: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.MaxDelivered <= 0 {
		cfg.MaxDelivered = DefaultMaxDelivered
	}
	if levelFn == nil {
		levelFn = func(time.Time) models.InterruptionLevel { return models.InterruptionActive }
	}
	return &LocalCenter{
		repo:    repo,
		sink:    sink,
		levelFn: levelFn,
		clock:   cfg.Clock,
		grant:   cfg.Grant,
		maxDel:  cfg.MaxDelivered,
		pending: make(map[string]models.NotificationRequest),
		timers:  make(map[string]*armed),
	}
}

// RequestAuthorization answers the permission prompt from configuration.
func (c *LocalCenter) RequestAuthorization(ctx context.Context) (models.AuthorizationState, error) {
	if c.grant {
		slog.Info("LocalCenter.RequestAuthorization: granted")
		return models.AuthorizationAuthorized, nil
	}
	slog.Info("LocalCenter.RequestAuthorization: denied")
	return models.AuthorizationDenied, nil
}

// Submit arms a timer for the request's next fire time and persists it as
// pending. A request with the same identifier replaces the existing one.
func (c *LocalCenter) Submit(req models.NotificationRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return fmt.Errorf("notification center is stopped")
	}

	now := c.clock()
	fireAt, ok := req.Trigger.NextFire(now)
	if !ok {
		return fmt.Errorf("trigger for %s has no future fire time", req.Identifier)
	}

	if err := c.repo.UpsertPending(req); err != nil {
		// Keep going: the in-memory timer still fires, only restart
		// durability is lost.
		slog.Error("LocalCenter.Submit: failed to persist pending request", "error", err, "identifier", req.Identifier)
	}

	c.armLocked(req, fireAt, now)
	slog.Debug("LocalCenter.Submit: request armed", "identifier", req.Identifier, "fire_at", fireAt, "kind", req.Trigger.Kind)
	return nil
}

// armLocked replaces any existing timer for the identifier. Callers hold mu.
func (c *LocalCenter) armLocked(req models.NotificationRequest, fireAt, now time.Time) {
	if existing, ok := c.timers[req.Identifier]; ok {
		existing.timer.Stop()
	}
	c.pending[req.Identifier] = req

	identifier := req.Identifier
	delay := fireAt.Sub(now)
	if delay < 0 {
		delay = 0
	}
	c.genSeq++
	gen := c.genSeq
	c.timers[identifier] = &armed{
		timer:  time.AfterFunc(delay, func() { c.fire(identifier, gen) }),
		fireAt: fireAt,
		gen:    gen,
	}
}

// fire delivers a pending request and either re-arms (repeating triggers)
// or retires it. gen guards against a callback that was already running
// when a replacement Submit re-armed the identifier: Stop cannot recall
// such a callback, so it would otherwise deliver the new request at the
// old fire instant.
func (c *LocalCenter) fire(identifier string, gen uint64) {
	c.mu.Lock()
	entry, live := c.timers[identifier]
	if !live || entry.gen != gen {
		c.mu.Unlock()
		slog.Debug("LocalCenter.fire: stale timer callback ignored", "identifier", identifier)
		return
	}
	req, ok := c.pending[identifier]
	if !ok || c.stopped {
		c.mu.Unlock()
		return
	}

	now := c.clock()
	level := c.levelFn(now)

	c.delivered = append([]models.DeliveredNotification{{
		Identifier:  identifier,
		Content:     req.Content,
		Level:       level,
		DeliveredAt: now,
	}}, c.delivered...)
	if len(c.delivered) > c.maxDel {
		c.delivered = c.delivered[:c.maxDel]
	}

	if req.Trigger.Repeats() {
		if next, ok := req.Trigger.NextFire(now); ok {
			c.armLocked(req, next, now)
		}
	} else {
		delete(c.pending, identifier)
		delete(c.timers, identifier)
		if err := c.repo.DeletePending(identifier); err != nil {
			slog.Error("LocalCenter.fire: failed to retire pending request", "error", err, "identifier", identifier)
		}
	}
	c.mu.Unlock()

	if err := c.sink.Present(context.Background(), req.Content, level); err != nil {
		slog.Error("LocalCenter.fire: presentation failed", "error", err, "identifier", identifier, "level", level)
		return
	}
	slog.Info("LocalCenter.fire: notification delivered", "identifier", identifier, "level", level)
}

// RemovePending cancels pending requests by identifier.
func (c *LocalCenter) RemovePending(identifiers ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, identifier := range identifiers {
		if entry, ok := c.timers[identifier]; ok {
			entry.timer.Stop()
			delete(c.timers, identifier)
		}
		if _, ok := c.pending[identifier]; ok {
			delete(c.pending, identifier)
			slog.Debug("LocalCenter.RemovePending: request removed", "identifier", identifier)
		}
		if err := c.repo.DeletePending(identifier); err != nil {
			slog.Error("LocalCenter.RemovePending: store delete failed", "error", err, "identifier", identifier)
		}
	}
}

// RemoveDelivered scrubs delivered notifications by identifier.
func (c *LocalCenter) RemoveDelivered(identifiers ...string) {
	drop := make(map[string]bool, len(identifiers))
	for _, identifier := range identifiers {
		drop[identifier] = true
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.delivered[:0]
	for _, d := range c.delivered {
		if !drop[d.Identifier] {
			kept = append(kept, d)
		}
	}
	c.delivered = kept
}

// Pending returns a snapshot of the pending set ordered by identifier.
func (c *LocalCenter) Pending() []models.NotificationRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.NotificationRequest, 0, len(c.pending))
	for _, req := range c.pending {
		out = append(out, req)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identifier < out[j].Identifier })
	return out
}

// Delivered returns a snapshot of the delivered list, newest first.
func (c *LocalCenter) Delivered() []models.DeliveredNotification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.DeliveredNotification, len(c.delivered))
	copy(out, c.delivered)
	return out
}

// Restore re-arms persisted pending requests after a restart. One-shots
// whose fire time has passed are dropped, not delivered late.
func (c *LocalCenter) Restore() error {
	reqs, err := c.repo.ListPending()
	if err != nil {
		return fmt.Errorf("failed to load pending requests: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.clock()
	restored, stale := 0, 0
	for _, req := range reqs {
		fireAt, ok := req.Trigger.NextFire(now)
		if !ok {
			stale++
			slog.Info("LocalCenter.Restore: dropping stale one-shot", "identifier", req.Identifier)
			if err := c.repo.DeletePending(req.Identifier); err != nil {
				slog.Error("LocalCenter.Restore: failed to drop stale request", "error", err, "identifier", req.Identifier)
			}
			continue
		}
		c.armLocked(req, fireAt, now)
		restored++
	}
	slog.Info("LocalCenter.Restore: pending set restored", "restored", restored, "stale", stale)
	return nil
}

// Stop cancels all timers. Pending requests stay persisted for the next
// Restore.
func (c *LocalCenter) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
	for identifier, entry := range c.timers {
		entry.timer.Stop()
		delete(c.timers, identifier)
	}
	slog.Info("LocalCenter.Stop: all timers stopped")
}
