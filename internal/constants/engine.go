package constants

import "time"

const (
	// DefaultEngineURL is where the engine serves its settings endpoint.
	DefaultEngineURL = "http://localhost:8000/"

	// DefaultEngineTimeout bounds each request to the engine.
	DefaultEngineTimeout = 5 * time.Second

	// DefaultStubAddr is the listen address of the stand-in engine.
	DefaultStubAddr = ":8000"

	// EnvPrefix prefixes environment overrides, e.g. ENGINECTL_ENGINE_URL.
	EnvPrefix = "ENGINECTL"
)
