package heap

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// LowStaticArrays selects the allocator for static (uncounted) instances.
// When true they come from the low arena, otherwise from the general
// uncounted arena. Read once per allocation; flip only at startup.
var LowStaticArrays = true

// Per-class pools for refcounted allocations. A var initializer so it
// runs after the class tables it depends on, whatever the file order.
var classPools = buildClassPools()

func buildClassPools() []sync.Pool {
	pools := make([]sync.Pool, len(classSizes))
	for i := range pools {
		size := classSizes[i]
		pools[i].New = func() any {
			buf := make([]byte, size)
			return &buf
		}
	}
	return pools
}

// AllocIndex returns a buffer of exactly Index2Size(idx) bytes from the
// class pool. Contents are unspecified; callers stamp every field they
// read back.
func AllocIndex(idx uint8) []byte {
	if int(idx) >= len(classPools) {
		panic(fmt.Sprintf("heap: invalid size class %d", idx))
	}
	return *classPools[idx].Get().(*[]byte)
}

// FreeIndex returns a buffer to its class pool. The buffer must have
// come from AllocIndex with the same class.
func FreeIndex(buf []byte, idx uint8) {
	if len(buf) != Index2Size(idx) {
		panic(fmt.Sprintf("heap: freeing %d bytes into class %d (%d bytes)",
			len(buf), idx, Index2Size(idx)))
	}
	classPools[idx].Put(&buf)
}

var (
	lowStaticBytes       atomic.Uint64
	uncountedStaticBytes atomic.Uint64
)

// StaticAlloc allocates a buffer that outlives any single request. It is
// never returned to a pool; FreeIndex must not see it.
func StaticAlloc(size int) []byte {
	if LowStaticArrays {
		lowStaticBytes.Add(uint64(size))
	} else {
		uncountedStaticBytes.Add(uint64(size))
	}
	return make([]byte, size)
}

// StaticStats reports bytes handed out by each static allocator.
func StaticStats() (low, uncounted uint64) {
	return lowStaticBytes.Load(), uncountedStaticBytes.Load()
}
