package framecache

import "github.com/llehouerou/flipbook/internal/anim"

// Capacity heuristics. The fractions are empirical: stay well under the
// machine's absolute footprint while also respecting current pressure.
const (
	// DefaultBytesPerFrame is assumed when no reference frame has been
	// decoded yet.
	DefaultBytesPerFrame = 1024

	// TotalMemoryFraction caps the buffer budget against total RAM.
	TotalMemoryFraction = 0.2

	// FreeMemoryFraction caps the buffer budget against free RAM.
	FreeMemoryFraction = 0.6
)

// Capacity computes how many decoded frames the buffer may hold.
//
// The per-frame footprint comes from the reference frame's row bytes and
// height. The byte budget is maxBytes when explicitly configured (> 0),
// otherwise min(totalMemory*0.2, freeMemory*0.6). The result is always
// at least 1.
func Capacity(reference anim.Frame, maxBytes, totalMemory, freeMemory uint64) int {
	bytesPerFrame := uint64(DefaultBytesPerFrame)
	if reference != nil {
		if n := uint64(reference.RowBytes()) * uint64(reference.Height()); n > 0 {
			bytesPerFrame = n
		}
	}

	budget := maxBytes
	if budget == 0 {
		total := uint64(float64(totalMemory) * TotalMemoryFraction)
		free := uint64(float64(freeMemory) * FreeMemoryFraction)
		budget = min(total, free)
	}

	count := int(budget / bytesPerFrame)
	if count < 1 {
		count = 1
	}
	return count
}
