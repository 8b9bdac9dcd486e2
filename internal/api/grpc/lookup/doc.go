// Package lookup exposes the alarm lookup service over gRPC and provides the
// matching client.
//
// Requests and responses are google.protobuf.Struct messages: the request
// carries alarm_id and element, the response carries the record fields.
// NotFound travels as codes.NotFound; every other failure is Unavailable.
package lookup
