// Package mocks provides an in-memory tracer for tests.
package mocks

import (
	"context"
	"sync"
	"tutorhub/infras/otel"
)

type tracer struct{}

func NewOtel() otel.Otel {
	return tracer{}
}

func (tracer) NewScope(ctx context.Context, _, _ string) (context.Context, otel.Scope) {
	return ctx, NewScope()
}

func (tracer) Shutdown(context.Context) error {
	return nil
}

// Scope keeps what was traced so tests can assert on it.
type Scope struct {
	mu         sync.Mutex
	Ended      bool
	Errors     []error
	Events     []string
	Attributes map[string]any
}

func NewScope() *Scope {
	return &Scope{Attributes: map[string]any{}}
}

func (s *Scope) End() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Ended = true
}

func (s *Scope) TraceError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Errors = append(s.Errors, err)
}

func (s *Scope) TraceIfError(err error) {
	if err != nil {
		s.TraceError(err)
	}
}

func (s *Scope) AddEvent(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Events = append(s.Events, name)
}

func (s *Scope) SetAttribute(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Attributes[key] = value
}

func (s *Scope) SetAttributes(attributes map[string]any) {
	for key, value := range attributes {
		s.SetAttribute(key, value)
	}
}
