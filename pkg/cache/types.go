package cache

// Config holds fitness cache configuration
type Config struct {
	MaxSize int `json:"max_size" yaml:"max_size"` // Maximum number of genomes kept
}

// DefaultConfig returns a default cache configuration
func DefaultConfig() Config {
	return Config{MaxSize: 4096}
}

// Stats represents cache statistics
type Stats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
	Size      int   `json:"size"`
	MaxSize   int   `json:"max_size"`
}

// HitRate is hits over lookups, 0 before the first lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
