package io

import (
	"context"
	"io"
)

// Keyboard is the interrupt source for key presses. It reads raw bytes
// from Input, one key per byte.
type Keyboard struct {
	Input io.Reader
}

// Keys returns a channel of key presses. The channel is closed at end of
// input, on a read error, or when ctx is done.
//
// A blocked Read is not interrupted by ctx; the goroutine exits on the
// next byte or end of input.
func (kb *Keyboard) Keys(ctx context.Context) <-chan byte {
	keys := make(chan byte, 16)

	go func() {
		defer close(keys)

		if kb.Input == nil {
			return
		}

		var one [1]byte
		for {
			n, err := kb.Input.Read(one[:])
			if n == 1 {
				select {
				case keys <- one[0]:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()

	return keys
}
