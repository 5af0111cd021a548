// ============================================================================
// codasai - Deep-Link Code Guide Viewer
// ============================================================================
//
// Package:     rpc
// Description: gRPC service that dispatches deep links in server-side
//              viewer sessions
// Author:      Mike Stoffels
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package rpc

import (
	"context"
	"encoding/json"

	"github.com/msto63/codasai/internal/viewer/session"
	"github.com/msto63/codasai/pkg/core/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	// ServiceName is the fully qualified gRPC service name
	ServiceName = "codasai.viewer.v1.Viewer"
	// DispatchMethod is the full method name of Dispatch
	DispatchMethod = "/" + ServiceName + "/Dispatch"
	// SessionHeader selects the server-side session
	SessionHeader = "x-session-id"
)

// ViewerServer is the server API for the Viewer service
type ViewerServer interface {
	// Dispatch runs a link and returns {session_id, outcome, view}
	Dispatch(ctx context.Context, link *wrapperspb.StringValue) (*structpb.Struct, error)
}

// ServiceDesc describes the Viewer service. The messages are protobuf
// well-known types, so no generated code is needed.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ViewerServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Dispatch",
			Handler:    dispatchHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "codasai/viewer/v1/viewer.proto",
}

// RegisterViewerServer registers srv on s
func RegisterViewerServer(s grpc.ServiceRegistrar, srv ViewerServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func dispatchHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ViewerServer).Dispatch(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: DispatchMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ViewerServer).Dispatch(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// Service implements ViewerServer on top of a session manager
type Service struct {
	sessions *session.Manager
	logger   *logging.Logger
}

// NewService creates the Viewer service
func NewService(sessions *session.Manager) *Service {
	return &Service{
		sessions: sessions,
		logger:   logging.New("viewer-rpc"),
	}
}

// Dispatch runs the link in the session named by the x-session-id header. A
// new session is created when the header is absent.
func (s *Service) Dispatch(ctx context.Context, link *wrapperspb.StringValue) (*structpb.Struct, error) {
	sess, err := s.sessions.Get(sessionID(ctx))
	if err != nil {
		s.logger.Error("session creation failed", "error", err)
		return nil, status.Error(codes.Internal, "failed to create session")
	}
	if err := grpc.SetHeader(ctx, metadata.Pairs(SessionHeader, sess.ID())); err != nil {
		s.logger.Warn("session header not sent", "session", sess.ID(), "error", err)
	}

	view, outcome := sess.Dispatch(ctx, link.GetValue())

	resp, err := toStruct(Result{SessionID: sess.ID(), Outcome: outcome.String(), View: view})
	if err != nil {
		s.logger.Error("response encoding failed", "error", err)
		return nil, status.Error(codes.Internal, "failed to encode view")
	}
	return resp, nil
}

// Result is the decoded Dispatch response
type Result struct {
	SessionID string       `json:"session_id"`
	Outcome   string       `json:"outcome"`
	View      session.View `json:"view"`
}

func sessionID(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(SessionHeader); len(values) > 0 {
		return values[0]
	}
	return ""
}

func toStruct(v interface{}) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}
