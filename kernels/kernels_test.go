package kernels_test

import "github.com/apache/arrow/go/v17/arrow/memory"

func testAllocator() memory.Allocator {
	return memory.NewGoAllocator()
}
