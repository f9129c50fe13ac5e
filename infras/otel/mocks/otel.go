package mocks

import (
	"context"
	"spacebook/infras/otel"
)

type otelImpl struct {
	recorder *Recorder
}

func (o *otelImpl) NewScope(ctx context.Context, _, spanName string) (context.Context, otel.Scope) {
	if o.recorder == nil {
		return ctx, NewScope()
	}

	return ctx, o.recorder.start(spanName)
}

func (o *otelImpl) Shutdown(_ context.Context) error {
	return nil
}

// NewOtel returns a tracer that drops everything.
func NewOtel() otel.Otel {
	return &otelImpl{}
}

// NewRecordingOtel returns a tracer whose spans can be inspected through the Recorder.
func NewRecordingOtel() (otel.Otel, *Recorder) {
	recorder := &Recorder{}

	return &otelImpl{recorder: recorder}, recorder
}
