package bridge

import (
	"github.com/bft-labs/framebridge/internal/app"
	"github.com/bft-labs/framebridge/internal/domain"
)

// State is the lifecycle state of a Bridge.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	StateCrashed
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateCrashed:
		return "crashed"
	default:
		return "unknown"
	}
}

// StateChangeEvent reports a lifecycle transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// FrameRejectedEvent reports a frame dropped by CRC validation.
type FrameRejectedEvent struct {
	Frame  []byte
	Reason string
}

// PublishSuccessEvent reports a frame acknowledged by Kafka.
type PublishSuccessEvent struct {
	Placement Placement
	Size      int
}

// PublishErrorEvent reports a frame Kafka failed to accept.
type PublishErrorEvent struct {
	Error error
	Size  int
}

// EventHandler receives bridge notifications.
type EventHandler interface {
	OnStateChange(event StateChangeEvent)
	OnFrameRejected(event FrameRejectedEvent)
	OnPublishSuccess(event PublishSuccessEvent)
	OnPublishError(event PublishErrorEvent)
}

// BaseEventHandler implements EventHandler with no-ops. Embed it to
// override only the events of interest.
type BaseEventHandler struct{}

func (BaseEventHandler) OnStateChange(StateChangeEvent)       {}
func (BaseEventHandler) OnFrameRejected(FrameRejectedEvent)   {}
func (BaseEventHandler) OnPublishSuccess(PublishSuccessEvent) {}
func (BaseEventHandler) OnPublishError(PublishErrorEvent)     {}

// eventEmitterWrapper adapts EventHandler to the internal emitter interfaces.
type eventEmitterWrapper struct {
	handler EventHandler
}

func (e *eventEmitterWrapper) OnStateChange(previous, current app.State, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{
		Previous: convertState(previous),
		Current:  convertState(current),
		Reason:   reason,
	})
}

func (e *eventEmitterWrapper) OnFrameRejected(frame domain.Frame, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnFrameRejected(FrameRejectedEvent{Frame: frame, Reason: reason})
}

func (e *eventEmitterWrapper) OnPublishSuccess(placement domain.Placement, size int) {
	if e.handler == nil {
		return
	}
	e.handler.OnPublishSuccess(PublishSuccessEvent{Placement: placement, Size: size})
}

func (e *eventEmitterWrapper) OnPublishError(err error, size int) {
	if e.handler == nil {
		return
	}
	e.handler.OnPublishError(PublishErrorEvent{Error: err, Size: size})
}

func convertState(s app.State) State {
	switch s {
	case app.StateStopped:
		return StateStopped
	case app.StateStarting:
		return StateStarting
	case app.StateRunning:
		return StateRunning
	case app.StateStopping:
		return StateStopping
	case app.StateCrashed:
		return StateCrashed
	default:
		return StateStopped
	}
}
