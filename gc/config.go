package gc

// Config holds the tunables named in spec §6 and §9. It is small and
// dependency-free on purpose: the YAML-driven loader lives in the
// separate gcconfig package and produces one of these.
type Config struct {
	// ParanoidAllocation poisons freed/coalesced freelist interiors with
	// -1 words to trap use-after-free (spec §4.6 step 5, §9 "Paranoia
	// mode").
	ParanoidAllocation bool

	// TrimGranularity is the boundary newspace is rounded up to before
	// the unused tail of the reserved window is released (spec §4.8
	// step 11). Spec default: 2 MiB.
	TrimGranularity uintptr

	// MinFreeBlocksHeadroom is the floor memory-expansion-remaining is
	// never allowed to drop below (spec §4.8 step 12). Spec default: 256.
	MinFreeBlocksHeadroom int64
}

// DefaultConfig returns the spec's literal defaults.
func DefaultConfig() Config {
	return Config{
		ParanoidAllocation:     false,
		TrimGranularity:        2 << 20,
		MinFreeBlocksHeadroom:  256,
	}
}
