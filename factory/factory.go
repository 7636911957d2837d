// Package factory builds test data from a template, with a sequence number so that every
// record can be made unique.
//
//	widgets := factory.New(func(n int) sampleapp.Widget {
//		return sampleapp.Widget{Name: fmt.Sprintf("widget %d", n)}
//	}).WithPersist(store.CreateWidget)
//
//	attrs := widgets.AttributesFor(func(w *sampleapp.Widget) { w.Name = "" })
//	saved, err := widgets.Create()
package factory

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// ErrNoPersist is returned by Create for a factory that was not given a persist function.
var ErrNoPersist = errors.New("factory has no persist function")

// Factory produces values of type T.
type Factory[T any] struct {
	build   func(n int) T
	persist func(T) (T, error)
	seq     *int64
}

// New creates a factory. The build function receives a sequence number starting at 1.
func New[T any](build func(n int) T) *Factory[T] {
	return &Factory[T]{build: build, seq: new(int64)}
}

// WithPersist returns a copy of the factory that saves the values made by Create. The copy
// shares the sequence of the original.
func (f *Factory[T]) WithPersist(persist func(T) (T, error)) *Factory[T] {
	return &Factory[T]{build: f.build, persist: persist, seq: f.seq}
}

// Sequence returns the last sequence number used.
func (f *Factory[T]) Sequence() int {
	return int(atomic.LoadInt64(f.seq))
}

// AttributesFor builds a value without saving it. The overrides are applied in order.
func (f *Factory[T]) AttributesFor(overrides ...func(*T)) T {
	n := int(atomic.AddInt64(f.seq, 1))
	value := f.build(n)
	for _, o := range overrides {
		o(&value)
	}
	return value
}

// Create builds a value and saves it, returning the saved value.
func (f *Factory[T]) Create(overrides ...func(*T)) (T, error) {
	if f.persist == nil {
		var zero T
		return zero, ErrNoPersist
	}
	return f.persist(f.AttributesFor(overrides...))
}

// CreateList creates count values with the same overrides.
func (f *Factory[T]) CreateList(count int, overrides ...func(*T)) ([]T, error) {
	ret := make([]T, 0, count)
	for i := 0; i < count; i++ {
		value, err := f.Create(overrides...)
		if err != nil {
			return ret, fmt.Errorf("creating item %d of %d: %w", i+1, count, err)
		}
		ret = append(ret, value)
	}
	return ret, nil
}
