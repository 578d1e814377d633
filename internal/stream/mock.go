package stream

import (
	"context"
	"errors"
)

var errUnconfigured = errors.New("unconfigured mock call")

// NewClientMock creates a new ClientMock instance.
func NewClientMock(options ...ClientMockOption) *ClientMock {
	mock := &ClientMock{}

	for _, option := range options {
		option(mock)
	}

	return mock
}

// ClientMockOption is a function type that may configure a ClientMock
// instance.
type ClientMockOption func(*ClientMock)

// WithWrite returns a ClientMockOption that configures a ClientMock to call fn
// when Write is called.
func WithWrite(fn writeFunc) ClientMockOption {
	return func(mock *ClientMock) { mock.write = fn }
}

// WithRead returns a ClientMockOption that configures a ClientMock to call fn
// when Read is called.
func WithRead(fn readFunc) ClientMockOption {
	return func(mock *ClientMock) { mock.read = fn }
}

type (
	writeFunc func(context.Context, []byte) error
	readFunc  func(context.Context) (*Message, error)
)

// ClientMock provides an implementation for mock stream.Client interactions.
// This is typically used for unit-testing.
type ClientMock struct {
	write writeFunc
	read  readFunc
}

// Write calls the function configured with WithWrite.
func (mock ClientMock) Write(ctx context.Context, b []byte) error {
	if mock.write == nil {
		return errUnconfigured
	}
	return mock.write(ctx, b)
}

// Read calls the function configured with WithRead.
func (mock ClientMock) Read(ctx context.Context) (*Message, error) {
	if mock.read == nil {
		return nil, errUnconfigured
	}
	return mock.read(ctx)
}
