package errors

// OverloadedError is returned by the admission gate when the queue has
// crossed its high watermark.
type OverloadedError struct {
	ErrorMsg string
}

func (m *OverloadedError) Error() string {
	return m.ErrorMsg
}

// QueueFullError is returned when the queue hit hard capacity between the
// watermark check and the enqueue.
type QueueFullError struct {
	ErrorMsg string
}

func (m *QueueFullError) Error() string {
	return m.ErrorMsg
}

// TimeoutError is set on a request whose deadline elapsed before a result
// was dispatched.
type TimeoutError struct {
	ErrorMsg string
}

func (m *TimeoutError) Error() string {
	return m.ErrorMsg
}

// ModelError wraps a failed batch-predict call. Every request of the
// affected batch carries the same cause.
type ModelError struct {
	ErrorMsg string
	Cause    error
}

func (m *ModelError) Error() string {
	if m.Cause != nil {
		return m.ErrorMsg + ": " + m.Cause.Error()
	}
	return m.ErrorMsg
}

func (m *ModelError) Unwrap() error {
	return m.Cause
}

// ShutdownError is set on requests drained from the queue while the
// pipeline is stopping.
type ShutdownError struct {
	ErrorMsg string
}

func (m *ShutdownError) Error() string {
	return m.ErrorMsg
}

// BadRequestError covers malformed transport payloads.
type BadRequestError struct {
	ErrorMsg string
}

func (m *BadRequestError) Error() string {
	return m.ErrorMsg
}
