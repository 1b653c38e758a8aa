package driven

import "time"

// Metrics receives instrumentation events from the core.
// The exposition format is up to the implementation.
type Metrics interface {
	// IncRequests counts one chat request.
	IncRequests()

	// ObserveLatency records the duration of a successful chat request.
	ObserveLatency(d time.Duration)

	// ObserveModelLoad records how long the base model took to become ready.
	ObserveModelLoad(d time.Duration)

	// SetMemoryUsage records the resident memory of the process.
	SetMemoryUsage(bytes uint64)
}

// MemoryProbe reads the memory usage of the running process.
type MemoryProbe interface {
	// ResidentBytes returns the resident set size in bytes.
	ResidentBytes() (uint64, error)
}
