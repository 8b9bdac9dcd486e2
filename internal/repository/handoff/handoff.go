package handoff

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/alarm-chat/internal/domain/alarm"
)

// Repository stores and loads hand-off records by key.
type Repository interface {
	Save(ctx context.Context, key string, record *alarm.Record) error
	Load(ctx context.Context, key string) (*alarm.Record, error)
}

// ErrNotFound is returned when nothing is stored under the key.
var ErrNotFound = errors.New("hand-off record not found")

// Key scopes base to a session. An empty session keeps the shared key.
func Key(base, sessionID string) string {
	if sessionID == "" {
		return base
	}

	return base + ":" + sessionID
}

// encode renders the record as protobuf JSON.
func encode(record *alarm.Record) ([]byte, error) {
	fields := record.Fields()
	values := make(map[string]any, len(fields))

	for k, v := range fields {
		values[k] = v
	}

	payload, err := structpb.NewStruct(values)
	if err != nil {
		return nil, fmt.Errorf("build hand-off payload: %w", err)
	}

	data, err := protojson.MarshalOptions{EmitUnpopulated: true}.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode hand-off payload: %w", err)
	}

	return data, nil
}

// decode parses a payload produced by encode.
func decode(data []byte) (*alarm.Record, error) {
	var payload structpb.Struct
	if err := protojson.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode hand-off payload: %w", err)
	}

	fields := make(map[string]string, len(payload.GetFields()))
	for k, v := range payload.GetFields() {
		fields[k] = v.GetStringValue()
	}

	record, err := alarm.FromFields(fields)
	if err != nil {
		return nil, fmt.Errorf("decode hand-off payload: %w", err)
	}

	return record, nil
}
