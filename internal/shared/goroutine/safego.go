// Package goroutine launches background work whose failure, including a
// panic, is reported back to the caller instead of crashing the process.
package goroutine

import (
	"fmt"
	"runtime/debug"

	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

// PanicError is returned in place of the result of a task that panicked.
type PanicError struct {
	Task  string
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("%s panicked: %v", e.Task, e.Value)
}

// Go runs fn in a new goroutine. The returned channel receives fn's result
// exactly once; a panic is logged with its stack and delivered as a
// *PanicError. The channel is buffered so an unread result never blocks.
func Go(log logger.Interface, task string, fn func() error) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Errorw("background task panicked",
					"task", task,
					"panic", fmt.Sprintf("%v", r),
					"stack", string(debug.Stack()),
				)
				done <- &PanicError{Task: task, Value: r}
			}
		}()
		done <- fn()
	}()
	return done
}
