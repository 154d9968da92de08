// Package loadable models a value that arrives asynchronously.
package loadable

type Status int

const (
	Loading Status = iota
	Ready
	Failed
)

func (s Status) String() string {
	switch s {
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "loading"
	}
}

// Loadable is Loading, Ready(value) or Failed(err). The zero value is Loading,
// so callers can branch on Status before anything has arrived.
type Loadable[T any] struct {
	status Status
	value  T
	err    error
}

func Of[T any](v T) Loadable[T] { return Loadable[T]{status: Ready, value: v} }

func Fail[T any](err error) Loadable[T] { return Loadable[T]{status: Failed, err: err} }

// From is Of(v) when err is nil and Fail(err) otherwise.
func From[T any](v T, err error) Loadable[T] {
	if err != nil {
		return Fail[T](err)
	}
	return Of(v)
}

func (l Loadable[T]) Status() Status { return l.status }

// Get returns the value and whether it is Ready.
func (l Loadable[T]) Get() (T, bool) {
	if l.status != Ready {
		var zero T
		return zero, false
	}
	return l.value, true
}

func (l Loadable[T]) Err() error { return l.err }
