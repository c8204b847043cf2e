package core

// RuntimeConfig contains configuration passed to a game session at start.
type RuntimeConfig struct {
	ScreenW   int   // Terminal width in characters
	ScreenH   int   // Terminal height in characters
	FrameRate int   // Presentation frames per second (default 24)
	Seed      int64 // RNG seed for deterministic simulation
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:   80,
		ScreenH:   24,
		FrameRate: 24,
		Seed:      0, // 0 means use current time in platform layer
	}
}
