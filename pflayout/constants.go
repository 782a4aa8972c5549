package pflayout

const (
	// only the best few solutions per axis are combined
	MAX_AXIS_CANDIDATES = 6
	MAX_OPTIONS         = 15
)
