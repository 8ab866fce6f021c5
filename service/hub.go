package service

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"go.uber.org/zap"
)

// Hub owns registered services and drives their lifecycle in dependency order
type Hub struct {
	mu       sync.Mutex
	logger   *zap.Logger
	services map[string]Service
	order    []string // Dependencies first, resolved on InitAll
	inited   []string // Initialized so far, the set Stop is owed to
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		logger:   logger.Named("hub"),
		services: make(map[string]Service),
	}
}

// Register adds svc, names must be unique
func (h *Hub) Register(svc Service) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	name := svc.Name()
	if _, dup := h.services[name]; dup {
		return fmt.Errorf("service already registered: %s", name)
	}
	h.services[name] = svc
	h.order = nil
	return nil
}

// Names lists registered services alphabetically
func (h *Hub) Names() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	names := make([]string, 0, len(h.services))
	for name := range h.services {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// InitAll initializes every service after its dependencies
// A failure stops the already initialized services in reverse order
func (h *Hub) InitAll() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.order == nil {
		order, err := h.resolve()
		if err != nil {
			return err
		}
		h.order = order
	}

	h.inited = nil
	for _, name := range h.order {
		if err := h.services[name].Init(); err != nil {
			h.stopReverse(h.inited)
			h.inited = nil
			return fmt.Errorf("service %s init failed: %w", name, err)
		}
		h.inited = append(h.inited, name)
		h.logger.Debug("service initialized", zap.String("service", name))
	}
	return nil
}

// StartAll starts services in init order
// A failure stops every initialized service, started or not
func (h *Hub) StartAll() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, name := range h.order {
		if err := h.services[name].Start(); err != nil {
			h.stopReverse(h.inited)
			h.inited = nil
			return fmt.Errorf("service %s start failed: %w", name, err)
		}
		h.logger.Debug("service started", zap.String("service", name))
	}
	return nil
}

// StopAll stops initialized services in reverse order and waits until ctx expires
// On expiry the remaining stops keep running detached and ctx.Err() is returned
func (h *Hub) StopAll(ctx context.Context) error {
	h.mu.Lock()
	names := h.inited
	h.inited = nil
	h.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- h.stopReverse(names) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		h.logger.Warn("service shutdown timed out, detaching", zap.Error(ctx.Err()))
		return ctx.Err()
	}
}

func (h *Hub) stopReverse(names []string) error {
	var errs []error
	for _, name := range slices.Backward(names) {
		if err := h.services[name].Stop(); err != nil {
			h.logger.Warn("service stop failed", zap.String("service", name), zap.Error(err))
			errs = append(errs, fmt.Errorf("service %s stop: %w", name, err))
			continue
		}
		h.logger.Debug("service stopped", zap.String("service", name))
	}
	return errors.Join(errs...)
}

// resolve orders services depth-first so each follows its dependencies
// Roots and dependencies are visited alphabetically for a stable order
func (h *Hub) resolve() ([]string, error) {
	const (
		unseen = iota
		visiting
		done
	)
	mark := make(map[string]int, len(h.services))
	order := make([]string, 0, len(h.services))

	var visit func(name string) error
	visit = func(name string) error {
		switch mark[name] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("circular dependency detected at service %s", name)
		}
		mark[name] = visiting

		deps := slices.Clone(h.services[name].Dependencies())
		slices.Sort(deps)
		for _, dep := range deps {
			if _, ok := h.services[dep]; !ok {
				return fmt.Errorf("service %s depends on unregistered service: %s", name, dep)
			}
			if err := visit(dep); err != nil {
				return err
			}
		}
		mark[name] = done
		order = append(order, name)
		return nil
	}

	for _, name := range slices.Sorted(maps.Keys(h.services)) {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return order, nil
}
