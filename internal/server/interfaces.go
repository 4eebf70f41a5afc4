package server

// Server is the lifecycle contract for the sync API server.
//
// RunServer blocks until a shutdown signal arrives or the listener fails;
// Shutdown drains in-flight requests within the configured timeout.
type Server interface {
	RunServer()
	Shutdown()
}
