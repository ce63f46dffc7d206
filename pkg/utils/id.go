package utils

import (
	"sync/atomic"
	"time"
)

var lastID atomic.Int64

// NextMessageID returns a timestamp-derived message id (nanoseconds).
// Rapid successive calls can observe the same clock reading, so the id is
// bumped past the previous one to stay strictly increasing within a
// process.
func NextMessageID() int64 {
	for {
		id := time.Now().UTC().UnixNano()
		last := lastID.Load()
		if id <= last {
			id = last + 1
		}
		if lastID.CompareAndSwap(last, id) {
			return id
		}
	}
}
