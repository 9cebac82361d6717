package engine

type ApplicationConfig struct {
	// The application name handed to the backend.
	Name string
	// Size of the main camera target in pixels.
	StartWidth  int
	StartHeight int
	// Number of frames Run renders before returning, 0 renders until Stop.
	FrameCount uint64
	// Frame pacing for Run; 0 renders as fast as possible.
	TargetFrameSeconds float64
}
