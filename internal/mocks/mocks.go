// Package mocks provides configurable test doubles for decodex.Transformation
// and decodex.Recognizer, tracking call counts and history the way tests
// throughout this codebase expect to assert against.
package mocks

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vantyr/decodex"
)

// Transformation is a configurable decodex.Transformation double: it
// returns a fixed TransformationResult (or error), optionally after a
// delay, and records every call for later assertion.
type Transformation struct {
	t          *testing.T
	descriptor decodex.TransformationDescriptor

	callCount int64
	mu        sync.Mutex
	lastInput string
	returnVal decodex.TransformationResult
	returnErr error
	delay     time.Duration
	panicMsg  string
}

// NewTransformation builds a Transformation double named name.
func NewTransformation(t *testing.T, name string) *Transformation {
	return &Transformation{
		t:          t,
		descriptor: decodex.NewDescriptor(name, 0.5, "mock transformation", ""),
	}
}

// WithReturn configures the fixed result and error future Apply calls
// return.
func (m *Transformation) WithReturn(val decodex.TransformationResult, err error) *Transformation {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.returnVal = val
	m.returnErr = err
	return m
}

// WithDelay configures Apply to block for d (or until ctx is cancelled)
// before returning, useful for exercising the deadline timer.
func (m *Transformation) WithDelay(d time.Duration) *Transformation {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
	return m
}

// WithPanic configures Apply to panic with msg. Apply does not recover the
// panic; it reaches Apply's caller.
func (m *Transformation) WithPanic(msg string) *Transformation {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.panicMsg = msg
	return m
}

// Descriptor implements decodex.Transformation.
func (m *Transformation) Descriptor() decodex.TransformationDescriptor { return m.descriptor }

// Apply implements decodex.Transformation.
func (m *Transformation) Apply(ctx context.Context, text string, recognizer decodex.Recognizer) (decodex.TransformationResult, error) {
	atomic.AddInt64(&m.callCount, 1)

	m.mu.Lock()
	m.lastInput = text
	delay := m.delay
	val := m.returnVal
	err := m.returnErr
	panicMsg := m.panicMsg
	m.mu.Unlock()

	if panicMsg != "" {
		panic(panicMsg)
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return decodex.TransformationResult{}, ctx.Err()
		}
	}
	return val, err
}

// CallCount returns the number of times Apply has been called.
func (m *Transformation) CallCount() int { return int(atomic.LoadInt64(&m.callCount)) }

// LastInput returns the text passed to the most recent Apply call.
func (m *Transformation) LastInput() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastInput
}

// Recognizer is a configurable decodex.Recognizer double.
type Recognizer struct {
	name string

	callCount int64
	mu        sync.Mutex
	lastInput string
	returnVal decodex.RecognitionResult
	returnErr error
}

// NewRecognizer builds a Recognizer double named name.
func NewRecognizer(name string) *Recognizer { return &Recognizer{name: name} }

// WithReturn configures the fixed result and error future Recognize calls
// return.
func (m *Recognizer) WithReturn(val decodex.RecognitionResult, err error) *Recognizer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.returnVal = val
	m.returnErr = err
	return m
}

// Name implements decodex.Recognizer.
func (m *Recognizer) Name() string { return m.name }

// Recognize implements decodex.Recognizer.
func (m *Recognizer) Recognize(ctx context.Context, text string) (decodex.RecognitionResult, error) {
	atomic.AddInt64(&m.callCount, 1)
	m.mu.Lock()
	m.lastInput = text
	val, err := m.returnVal, m.returnErr
	m.mu.Unlock()
	return val, err
}

// CallCount returns the number of times Recognize has been called.
func (m *Recognizer) CallCount() int { return int(atomic.LoadInt64(&m.callCount)) }

// AssertCalled verifies that mock was called exactly n times.
func AssertCalled(t *testing.T, name string, actual, expected int) {
	t.Helper()
	if actual != expected {
		t.Errorf("expected %s to be called %d times, was called %d times", name, expected, actual)
	}
}
