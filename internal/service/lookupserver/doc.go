// Package lookupserver serves the simulated alarm catalog over gRPC.
package lookupserver
