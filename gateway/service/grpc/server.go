package grpc

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	core "safetyhub/gateway/service/core"
	"safetyhub/storage/store"
)

// ServiceName is the fully-qualified gRPC service name
const ServiceName = "safetyhub.v1.Safety"

// Server exposes the Service over gRPC. Requests and responses are
// google.protobuf.Struct values using the same field names as the HTTP API.
type Server struct {
	svc    *core.Service
	logger *log.Logger
}

// NewServer creates a new gRPC Server instance
func NewServer(s *core.Service, l *log.Logger) *Server {
	return &Server{svc: s, logger: l}
}

// Register attaches the service to a grpc.Server
func (s *Server) Register(gs *grpc.Server) {
	gs.RegisterService(&serviceDesc, s)
}

// FullMethod returns the wire path for a method name, e.g. "/safetyhub.v1.Safety/Scan"
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// Scan runs the awareness matcher
func (s *Server) Scan(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	text, err := requireString(req, "text")
	if err != nil {
		return nil, err
	}
	res := s.svc.Scan(text)
	return newStruct(map[string]interface{}{"alerts": toList(res.Alerts)})
}

// CheckMisinformation runs the misinformation matcher
func (s *Server) CheckMisinformation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	text, err := requireString(req, "text")
	if err != nil {
		return nil, err
	}
	res := s.svc.CheckMisinformation(text)
	return newStruct(map[string]interface{}{
		"misinfo_detected": res.Detected,
		"keywords":         toList(res.Keywords),
	})
}

// Encrypt seals text under the process key
func (s *Server) Encrypt(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	text, err := requireString(req, "text")
	if err != nil {
		return nil, err
	}
	token, err := s.svc.Encrypt(text)
	if err != nil {
		s.logger.Printf("gRPC Server: Encrypt failed: %v", err)
		return nil, status.Error(codes.Internal, "encryption failed")
	}
	return newStruct(map[string]interface{}{"encrypted": token})
}

// Hash fingerprints text
func (s *Server) Hash(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	text, err := requireString(req, "text")
	if err != nil {
		return nil, err
	}
	return newStruct(map[string]interface{}{"hash": s.svc.Hash(text)})
}

// Summarize shortens text
func (s *Server) Summarize(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	text, err := requireString(req, "text")
	if err != nil {
		return nil, err
	}
	return newStruct(map[string]interface{}{"summary": s.svc.Summarize(text)})
}

// Rephrase tidies text
func (s *Server) Rephrase(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	text, err := requireString(req, "text")
	if err != nil {
		return nil, err
	}
	return newStruct(map[string]interface{}{"rephrased": s.svc.Rephrase(text)})
}

// SaveLog appends a log entry; the request carries "text" and "type"
func (s *Server) SaveLog(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	text, err := requireString(req, "text")
	if err != nil {
		return nil, err
	}
	category, err := requireString(req, "type")
	if err != nil {
		return nil, err
	}
	if err := s.svc.SaveLog(ctx, text, category); err != nil {
		s.logger.Printf("gRPC Server: SaveLog failed: %v", err)
		return nil, status.Error(codes.Internal, "failed to save log entry")
	}
	return newStruct(map[string]interface{}{"status": core.SaveStatus})
}

// ListLogs returns {"logs": [{"text","category"}, ...]}
func (s *Server) ListLogs(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	entries, err := s.svc.Logs(ctx)
	if err != nil {
		s.logger.Printf("gRPC Server: ListLogs failed: %v", err)
		if errors.Is(err, store.ErrCorruptLog) {
			return nil, status.Error(codes.DataLoss, store.ErrCorruptLog.Error())
		}
		return nil, status.Error(codes.Internal, "failed to read logs")
	}
	logs := make([]interface{}, len(entries))
	for i, e := range entries {
		logs[i] = map[string]interface{}{"text": e.Text, "category": e.Category}
	}
	return newStruct(map[string]interface{}{"logs": logs})
}

func requireString(req *structpb.Struct, field string) (string, error) {
	v, ok := req.GetFields()[field]
	if !ok {
		return "", status.Errorf(codes.InvalidArgument, "missing required field %q", field)
	}
	sv, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", status.Errorf(codes.InvalidArgument, "field %q must be a string", field)
	}
	return sv.StringValue, nil
}

func toList(items []string) []interface{} {
	out := make([]interface{}, len(items))
	for i, s := range items {
		out[i] = s
	}
	return out
}

func newStruct(m map[string]interface{}) (*structpb.Struct, error) {
	st, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("failed to build response: %v", err))
	}
	return st, nil
}

// LoggingInterceptor logs every unary call with its status code and duration
func LoggingInterceptor(logger *log.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Printf("gRPC %s -> %s (%v)", info.FullMethod, status.Code(err), time.Since(start))
		return resp, err
	}
}
