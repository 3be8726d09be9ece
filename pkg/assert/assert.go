package assert

import (
	"fmt"
	"sync/atomic"
)

// depth guards the default-instance constructors against init cycles: a
// constructor that indirectly re-enters itself would otherwise recurse
// forever before panicking with a useless stack.
var depth int32

const maxDepth = 64

// NotCircular panics when default-instance construction recurses suspiciously deep.
func NotCircular() {
	if atomic.AddInt32(&depth, 1) > maxDepth {
		panic("circular default-instance construction detected")
	}
	atomic.AddInt32(&depth, -1)
}

// NotNil panics when v is nil.
func NotNil(v interface{}) {
	if v == nil {
		panic(fmt.Sprintf("assert: unexpected nil value %T", v))
	}
}
