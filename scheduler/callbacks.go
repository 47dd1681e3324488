package scheduler

import (
	"context"
	"fmt"
)

// CallbackType defines the points in a sweep where callbacks run.
type CallbackType string

const (
	// CallbackBeforeResume runs before a task is resumed.
	CallbackBeforeResume CallbackType = "before_resume"

	// CallbackAfterResume runs after Resume returned, with its error (if any).
	CallbackAfterResume CallbackType = "after_resume"

	// CallbackOnSweep runs once a sweep has finished.
	CallbackOnSweep CallbackType = "on_sweep"
)

// CallbackContext describes the scheduling step a callback observes.
//
// The scheduler builds a fresh CallbackContext for each step and the manager
// fills in CallbackType before the callbacks of that type run. Callbacks of
// the same type share the value, so one may annotate it for the next.
type CallbackContext struct {
	CallbackType CallbackType

	// TaskID is the task being resumed; -1 for OnSweep.
	TaskID int

	// Sweep is the 1-based number of the sweep in progress.
	Sweep int

	// Resumed counts resumes performed so far in this sweep.
	Resumed int

	// Err is the error returned by Resume (AfterResume only).
	Err error
}

// Callback is a hook executed synchronously by the scheduler.
//
// Callbacks run on the scheduler's goroutine between resumes, so no task
// body is running while they execute and they may safely inspect the
// coroutine runtime (for example Runtime.IsActive). They must not call
// Resume themselves.
//
// A non-nil error aborts Run: the remaining callbacks of that type are
// skipped and Run returns the error wrapped with the callback type.
type Callback interface {
	Type() CallbackType
	Execute(ctx context.Context, callbackCtx *CallbackContext) error
}

// FunctionCallback adapts a function to the Callback interface.
type FunctionCallback struct {
	callbackType CallbackType
	fn           func(ctx context.Context, callbackCtx *CallbackContext) error
}

// NewFunctionCallback creates a callback of the given type backed by fn.
func NewFunctionCallback(
	callbackType CallbackType,
	fn func(ctx context.Context, callbackCtx *CallbackContext) error,
) *FunctionCallback {
	return &FunctionCallback{
		callbackType: callbackType,
		fn:           fn,
	}
}

// Type implements Callback.
func (c *FunctionCallback) Type() CallbackType {
	return c.callbackType
}

// Execute implements Callback.
func (c *FunctionCallback) Execute(ctx context.Context, callbackCtx *CallbackContext) error {
	return c.fn(ctx, callbackCtx)
}

// CallbackManager keeps callbacks grouped by type in registration order.
//
// Registration is not synchronized; register everything before Run starts.
// A nil *CallbackManager is valid and executes nothing, so callers can pass
// an unset Options.Callbacks straight through.
type CallbackManager struct {
	callbacks map[CallbackType][]Callback
}

// NewCallbackManager returns an empty manager.
func NewCallbackManager() *CallbackManager {
	return &CallbackManager{
		callbacks: make(map[CallbackType][]Callback),
	}
}

// RegisterCallback appends a callback for its type.
func (cm *CallbackManager) RegisterCallback(callback Callback) {
	callbackType := callback.Type()
	cm.callbacks[callbackType] = append(cm.callbacks[callbackType], callback)
}

// ExecuteCallbacks runs all callbacks registered for callbackType, stopping
// at the first error.
func (cm *CallbackManager) ExecuteCallbacks(
	ctx context.Context,
	callbackType CallbackType,
	callbackCtx *CallbackContext,
) error {
	if cm == nil {
		return nil
	}

	callbacks, exists := cm.callbacks[callbackType]
	if !exists {
		return nil
	}

	callbackCtx.CallbackType = callbackType
	for _, callback := range callbacks {
		if err := callback.Execute(ctx, callbackCtx); err != nil {
			return fmt.Errorf("%s callback: %w", callbackType, err)
		}
	}

	return nil
}

// LoggingCallback writes a one-line description of each step it observes.
type LoggingCallback struct {
	callbackType CallbackType
	logger       func(message string)
}

// NewLoggingCallback creates a LoggingCallback for callbackType.
func NewLoggingCallback(callbackType CallbackType, logger func(message string)) *LoggingCallback {
	return &LoggingCallback{
		callbackType: callbackType,
		logger:       logger,
	}
}

// Type implements Callback.
func (c *LoggingCallback) Type() CallbackType {
	return c.callbackType
}

// Execute implements Callback.
func (c *LoggingCallback) Execute(ctx context.Context, callbackCtx *CallbackContext) error {
	if c.logger != nil {
		c.logger(fmt.Sprintf("[%s] sweep=%d task=%d resumed=%d",
			c.callbackType, callbackCtx.Sweep, callbackCtx.TaskID, callbackCtx.Resumed))
	}
	return nil
}
