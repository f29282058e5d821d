// Package api provides the HTTP server for enrolling and verifying speakers.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":7860")
	ListenAddr string
}
