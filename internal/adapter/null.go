package adapter

import "context"

// NullAdapter is a no-op input adapter used in tests and when no front end is
// configured.
type NullAdapter struct{}

func NewNullAdapter() *NullAdapter {
	return &NullAdapter{}
}

func (n *NullAdapter) Name() string {
	return "null"
}

func (n *NullAdapter) Start(_ context.Context) error {
	return nil
}

func (n *NullAdapter) Stop(_ context.Context) error {
	return nil
}
