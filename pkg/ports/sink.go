package ports

import (
	"context"

	"github.com/aretw0/flowbuilder/pkg/domain"
)

// FlowSink receives the complete flow after every successful save.
// The chatbot manager implements it so a running chat runtime picks up graph edits without a reload.
type FlowSink interface {
	UpdateFlow(ctx context.Context, flow domain.Flow) error
}

// FlowSinkFunc adapts a function to FlowSink.
type FlowSinkFunc func(ctx context.Context, flow domain.Flow) error

func (f FlowSinkFunc) UpdateFlow(ctx context.Context, flow domain.Flow) error {
	return f(ctx, flow)
}

// Notifier surfaces transient, user-facing notices.
type Notifier interface {
	Notify(n domain.Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(n domain.Notice)

func (f NotifierFunc) Notify(n domain.Notice) {
	f(n)
}
