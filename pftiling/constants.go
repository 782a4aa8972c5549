package pftiling

const (
	// never try more than this many panels of a single size on one axis
	MAX_COUNT_PER_SIZE = 30
	// a tiling may overshoot the wall by one gap plus this much, to absorb float error
	FIT_TOLERANCE = 0.01
	// coverages closer than this are considered equal when ranking
	COVERAGE_TOLERANCE = 0.003
	// number of ranked solutions returned per axis
	MAX_SOLUTIONS = 12
)
