package pressure

import "runtime"

// maxParallelism caps row/column-strip worker counts at the host's CPU
// count, grounded on systems/resource_field.go's updateCapacity
// (runtime.NumCPU() + sync.WaitGroup row partitioning).
func maxParallelism() int {
	n := runtime.NumCPU()
	if n < 1 {
		return 1
	}
	return n
}
