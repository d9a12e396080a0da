// Package pagination exposes a materialized result list in fixed-size batches
// that can be resumed across independent requests.
package pagination

import "errors"

var ErrInvalidBatchSize = errors.New("batch size must be positive")

// Cursor is a point-in-time snapshot of a result list plus the index of the
// next item to emit. It is a value: advancing returns a new cursor and never
// mutates the receiver, so a session can keep the old one if delivery fails.
type Cursor[T any] struct {
	items     []T
	next      int
	batchSize int
}

// Batch is one step of a cursor. Remaining is the number of items still
// unread after this batch; zero means the cursor is exhausted.
type Batch[T any] struct {
	Items     []T
	Remaining int
}

func New[T any](items []T, batchSize int) (Cursor[T], error) {
	if batchSize < 1 {
		return Cursor[T]{}, ErrInvalidBatchSize
	}
	return Cursor[T]{items: items, batchSize: batchSize}, nil
}

// NextBatch returns up to batchSize items starting where the previous call
// stopped. Calling it on an exhausted cursor yields an empty batch with
// Remaining == 0.
func NextBatch[T any](c Cursor[T]) (Batch[T], Cursor[T]) {
	end := min(c.next+c.batchSize, len(c.items))
	batch := Batch[T]{
		Items:     c.items[c.next:end:end],
		Remaining: len(c.items) - end,
	}
	c.next = end
	return batch, c
}

func (c Cursor[T]) Len() int { return len(c.items) }

func (c Cursor[T]) Remaining() int { return len(c.items) - c.next }

func (c Cursor[T]) Exhausted() bool { return c.next >= len(c.items) }

func (c Cursor[T]) BatchSize() int { return c.batchSize }
