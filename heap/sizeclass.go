package heap

import "fmt"

const (
	// LgQuantum is the log2 of the allocation quantum. No class is
	// smaller than one quantum and all class sizes are quantum-aligned.
	LgQuantum = 4

	// Quantum is the minimum allocation granule in bytes.
	Quantum = 1 << LgQuantum

	// ClassesPerDoubling is how many size classes each power-of-two
	// interval above 4*Quantum is split into.
	ClassesPerDoubling = 4

	// MaxSmallSize is the largest size served by a size class.
	MaxSmallSize = 1 << 16
)

// Built as package-level var initializers, not init funcs: consumers in
// other files (the class pools) depend on these tables, and var
// initialization is dependency-ordered while init funcs run in file
// order.
var (
	// classSizes maps class index to class size in bytes; sizeToIdx maps
	// (size-1)/Quantum back to the class index.
	classSizes = buildClassSizes()
	sizeToIdx  = buildSizeToIdx(classSizes)
)

func buildClassSizes() []int {
	var sizes []int
	// Quantum-spaced classes first: 16, 32, 48, 64.
	for sz := Quantum; sz <= Quantum*ClassesPerDoubling; sz += Quantum {
		sizes = append(sizes, sz)
	}
	// Then four classes per doubling: 80, 96, 112, 128, 160, ...
	for base := Quantum * ClassesPerDoubling; base < MaxSmallSize; base *= 2 {
		delta := base / ClassesPerDoubling
		for i := 1; i <= ClassesPerDoubling; i++ {
			sizes = append(sizes, base+i*delta)
		}
	}
	return sizes
}

func buildSizeToIdx(sizes []int) []uint8 {
	table := make([]uint8, MaxSmallSize/Quantum)
	idx := 0
	for q := range table {
		sz := (q + 1) * Quantum
		for sizes[idx] < sz {
			idx++
		}
		table[q] = uint8(idx)
	}
	return table
}

// NumSizeClasses returns the number of small size classes.
func NumSizeClasses() int {
	return len(classSizes)
}

// Size2Index returns the size class serving an allocation of the given
// byte size. Sizes beyond MaxSmallSize are a programming error here:
// nothing in this runtime allocates large struct dicts.
func Size2Index(size int) uint8 {
	if size <= 0 || size > MaxSmallSize {
		panic(fmt.Sprintf("heap: no size class for %d bytes", size))
	}
	return sizeToIdx[(size-1)>>LgQuantum]
}

// Index2Size returns the allocation size of a size class.
func Index2Size(idx uint8) int {
	if int(idx) >= len(classSizes) {
		panic(fmt.Sprintf("heap: invalid size class %d", idx))
	}
	return classSizes[idx]
}
