package client

import (
	"fmt"
)

// TransportError is any failure talking to the backend: a refused
// connection, a broken event stream, or a non-2xx response. When the server
// provided diagnostic text it is surfaced in Message.
type TransportError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ExecutionError is reported over the event stream when a node raised an
// exception while executing a queued prompt.
type ExecutionError struct {
	PromptID         string
	NodeID           string
	NodeType         string
	ExceptionType    string
	ExceptionMessage string
	Traceback        []string
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execution failed at node %s (%s): %s - %s",
		e.NodeID, e.NodeType, e.ExceptionType, e.ExceptionMessage)
}
