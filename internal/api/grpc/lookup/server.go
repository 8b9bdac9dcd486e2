package lookup

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	lookupsvc "github.com/oshokin/alarm-chat/internal/lookup"
	"github.com/oshokin/alarm-chat/internal/logger"
)

// Server implements AlarmLookupService on top of a lookup service.
type Server struct {
	// service resolves the alarms.
	service lookupsvc.Service
}

// NewServer wires service into a gRPC handler.
func NewServer(service lookupsvc.Service) *Server {
	return &Server{
		service: service,
	}
}

// Lookup resolves the alarm named in req.
func (s *Server) Lookup(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	alarmID := strings.TrimSpace(req.GetFields()[requestAlarmID].GetStringValue())
	element := strings.TrimSpace(req.GetFields()[requestElement].GetStringValue())

	record, err := s.service.Lookup(ctx, alarmID, element)
	if err != nil {
		if errors.Is(err, lookupsvc.ErrNotFound) {
			return nil, status.Errorf(codes.NotFound, "alarm %q not found", alarmID)
		}

		logger.ErrorKV(ctx, "Alarm lookup failed", "alarm_id", alarmID, "element", element, "error", err)

		return nil, status.Error(codes.Unavailable, "alarm lookup unavailable")
	}

	if record == nil {
		return nil, status.Errorf(codes.NotFound, "alarm %q not found", alarmID)
	}

	fields := record.Fields()
	values := make(map[string]any, len(fields))

	for k, v := range fields {
		values[k] = v
	}

	response, err := structpb.NewStruct(values)
	if err != nil {
		return nil, status.Error(codes.Internal, "unable to encode alarm record")
	}

	return response, nil
}
