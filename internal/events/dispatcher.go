package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/charlesng35/collegehub/pkg/logger"
	"github.com/charlesng35/collegehub/pkg/metrics"
)

// Handler reacts to a published event. Returned errors are logged, never propagated to the publisher.
type Handler func(ctx context.Context, evt Event) error

// ErrDuplicateBinding is returned when a binding name is subscribed twice for the same event.
var ErrDuplicateBinding = errors.New("events: binding already registered")

type binding struct {
	name    string
	handler Handler
}

// Dispatcher runs bindings synchronously in the publisher's goroutine.
type Dispatcher struct {
	mu       sync.RWMutex
	bindings map[string][]binding
	now      func() time.Time
	log      *zap.Logger
}

// NewDispatcher constructs an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		bindings: make(map[string][]binding),
		now:      time.Now,
		log:      logger.WithModule("events"),
	}
}

// Subscribe attaches handler to the named event under a unique binding name.
func (d *Dispatcher) Subscribe(event, name string, handler Handler) error {
	event = strings.TrimSpace(event)
	name = strings.TrimSpace(name)
	if event == "" || name == "" {
		return errors.New("events: event and binding name are required")
	}
	if handler == nil {
		return errors.New("events: handler is required")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, existing := range d.bindings[event] {
		if existing.name == name {
			return fmt.Errorf("%w: %s/%s", ErrDuplicateBinding, event, name)
		}
	}
	d.bindings[event] = append(d.bindings[event], binding{name: name, handler: handler})
	return nil
}

// Bindings reports how many handlers are attached to event.
func (d *Dispatcher) Bindings(event string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.bindings[event])
}

// Publish runs every binding of the event in registration order.
// Handler errors and panics are logged so the committed write is never undone by a side effect.
func (d *Dispatcher) Publish(ctx context.Context, name string, payload any) {
	if ctx == nil {
		ctx = context.Background()
	}

	d.mu.RLock()
	handlers := append([]binding(nil), d.bindings[name]...)
	d.mu.RUnlock()

	evt := Event{Name: name, Payload: payload, Occurred: d.now().UTC()}
	for _, b := range handlers {
		d.run(ctx, b, evt)
	}
}

func (d *Dispatcher) run(ctx context.Context, b binding, evt Event) {
	defer func() {
		if rec := recover(); rec != nil {
			metrics.EventDeliveries.WithLabelValues(evt.Name, "panic").Inc()
			d.log.Error("event binding panicked",
				zap.String("event", evt.Name),
				zap.String("binding", b.name),
				zap.Any("panic", rec),
			)
		}
	}()

	if err := b.handler(ctx, evt); err != nil {
		metrics.EventDeliveries.WithLabelValues(evt.Name, "error").Inc()
		d.log.Warn("event binding failed",
			zap.String("event", evt.Name),
			zap.String("binding", b.name),
			zap.Error(err),
		)
		return
	}
	metrics.EventDeliveries.WithLabelValues(evt.Name, "ok").Inc()
}
