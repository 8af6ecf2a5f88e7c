package core

import (
	"fmt"
	"sync/atomic"
)

// IDGen hands out identifiers that are unique within the process.
type IDGen interface {
	NextID() uint64
}

// CounterIDGen is an IDGen backed by an atomic counter so that trees can be
// built from several goroutines.
type CounterIDGen struct {
	counter atomic.Uint64
}

func (s *CounterIDGen) NextID() uint64 {
	return s.counter.Add(1)
}

// Label renders an id with a class prefix, eg "_t12".
func Label(class string, id uint64) string {
	return fmt.Sprintf("%s%d", class, id)
}
