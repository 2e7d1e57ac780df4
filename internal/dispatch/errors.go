package dispatch

import "errors"

var (
	// ErrMissingCredential is returned when no API key is available from the
	// environment file or the process environment.
	ErrMissingCredential = errors.New(APIKeyEnv + " not found")
	// ErrBackendCall wraps every failure raised by the backend or its transport.
	ErrBackendCall = errors.New("gemini API call failed")
)
