package llmHandlers

import (
	"context"
	"io"
)

// BoundedClient caps the number of in-flight calls to the wrapped client.
type BoundedClient struct {
	inner Client
	slots chan struct{}
}

func NewBoundedClient(inner Client, maxConcurrent int) *BoundedClient {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &BoundedClient{
		inner: inner,
		slots: make(chan struct{}, maxConcurrent),
	}
}

func (b *BoundedClient) Chat(ctx context.Context, systemMessage string, messages []Message) (string, error) {
	select {
	case b.slots <- struct{}{}:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	defer func() { <-b.slots }()

	return b.inner.Chat(ctx, systemMessage, messages)
}

// Close releases the wrapped client's connection when it holds one.
func (b *BoundedClient) Close() error {
	if closer, ok := b.inner.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
