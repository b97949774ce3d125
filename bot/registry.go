package bot

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Registry owns a set of named controllers so a command surface can start,
// inspect, and stop bots without holding live references.
type Registry struct {
	mu   sync.Mutex
	bots map[string]*entry
}

type entry struct {
	ctl    *Controller
	cancel context.CancelFunc
	done   chan struct{}
}

func NewRegistry() *Registry {
	return &Registry{bots: make(map[string]*entry)}
}

// Start launches the controller's loop under a child context. The name must
// be unused.
func (r *Registry) Start(ctx context.Context, name string, ctl *Controller) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bots[name]; ok {
		return fmt.Errorf("bot %q already running", name)
	}

	runCtx, cancel := context.WithCancel(ctx)
	e := &entry{ctl: ctl, cancel: cancel, done: make(chan struct{})}
	r.bots[name] = e

	go func() {
		defer close(e.done)
		ctl.Run(runCtx)
	}()
	return nil
}

// Status returns the named bot's snapshot.
func (r *Registry) Status(name string) (Status, error) {
	r.mu.Lock()
	e, ok := r.bots[name]
	r.mu.Unlock()
	if !ok {
		return Status{}, fmt.Errorf("no bot %q", name)
	}
	return e.ctl.Status(), nil
}

// Names lists the running bots in stable order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.bots))
	for name := range r.bots {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stop cancels the named bot and waits for its loop to finish.
func (r *Registry) Stop(name string) error {
	r.mu.Lock()
	e, ok := r.bots[name]
	if ok {
		delete(r.bots, name)
	}
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("no bot %q", name)
	}

	e.cancel()
	<-e.done
	return nil
}

// StopAll cancels every bot and waits for all loops to finish.
func (r *Registry) StopAll() {
	r.mu.Lock()
	entries := make([]*entry, 0, len(r.bots))
	for name, e := range r.bots {
		entries = append(entries, e)
		delete(r.bots, name)
	}
	r.mu.Unlock()

	for _, e := range entries {
		e.cancel()
	}
	for _, e := range entries {
		<-e.done
	}
}
