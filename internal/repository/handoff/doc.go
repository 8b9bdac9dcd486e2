// Package handoff persists the last found alarm so the detail page can read
// it after the widget navigates away.
//
// Records are encoded as protobuf JSON of a flat string struct. The
// FileRepository keeps one file per key in a directory; the RedisRepository
// stores the same payload under a key with a TTL.
package handoff
