package mocks

import (
	"spacebook/infras/otel"
	"sync"
)

// Span is what a recording scope saw before it ended.
type Span struct {
	Name       string
	Events     []string
	Attributes map[string]any
	Errors     []error
	Ended      bool
}

// Recorder keeps the spans opened through a recording tracer, in start order.
type Recorder struct {
	mu    sync.Mutex
	spans []*Span
}

func (r *Recorder) start(name string) otel.Scope {
	r.mu.Lock()
	defer r.mu.Unlock()

	span := &Span{Name: name, Attributes: map[string]any{}}
	r.spans = append(r.spans, span)

	return &scopeImpl{recorder: r, span: span}
}

// Spans returns copies of the recorded spans.
func (r *Recorder) Spans() []Span {
	r.mu.Lock()
	defer r.mu.Unlock()

	spans := make([]Span, 0, len(r.spans))
	for _, span := range r.spans {
		spans = append(spans, *span)
	}

	return spans
}

// Errors returns every error traced on the named span.
func (r *Recorder) Errors(name string) []error {
	var errs []error

	for _, span := range r.Spans() {
		if span.Name == name {
			errs = append(errs, span.Errors...)
		}
	}

	return errs
}

type scopeImpl struct {
	recorder *Recorder
	span     *Span
}

func (s *scopeImpl) record(fn func(span *Span)) {
	if s.recorder == nil {
		return
	}

	s.recorder.mu.Lock()
	defer s.recorder.mu.Unlock()

	fn(s.span)
}

func (s *scopeImpl) AddEvent(name string) {
	s.record(func(span *Span) { span.Events = append(span.Events, name) })
}

func (s *scopeImpl) End() {
	s.record(func(span *Span) { span.Ended = true })
}

func (s *scopeImpl) SetAttribute(key string, value any) {
	s.record(func(span *Span) { span.Attributes[key] = value })
}

func (s *scopeImpl) SetAttributes(attributes map[string]any) {
	s.record(func(span *Span) {
		for key, value := range attributes {
			span.Attributes[key] = value
		}
	})
}

func (s *scopeImpl) TraceError(err error) {
	s.record(func(span *Span) { span.Errors = append(span.Errors, err) })
}

func (s *scopeImpl) TraceIfError(err error) {
	if err != nil {
		s.TraceError(err)
	}
}

// NewScope returns a scope that drops everything.
func NewScope() otel.Scope {
	return &scopeImpl{}
}
