package core

import (
	"errors"
)

var (
	// ErrConfiguration is returned while building the pipeline; it is never recovered.
	ErrConfiguration = errors.New("invalid pipeline configuration")
	// ErrCullingFailed means the camera has no usable culling volume and is skipped for the frame.
	ErrCullingFailed = errors.New("culling parameters unavailable")
	// ErrResourceExhausted aborts the whole frame.
	ErrResourceExhausted = errors.New("gpu resource allocation failed")
	ErrInvalidHandle     = errors.New("invalid handle")
	ErrNotInitialized    = errors.New("system not initialized")
	ErrUnknown           = errors.New("unknown")
)
