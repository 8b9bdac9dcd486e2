// Package lookup defines the alarm lookup collaborator used by the flow engine.
//
// Catalog is the built-in simulated backend; the gRPC client in
// internal/api/grpc/lookup talks to a remote one. Both report failures as
// ErrNotFound or ErrUnavailable so the engine does not care which is wired.
package lookup
