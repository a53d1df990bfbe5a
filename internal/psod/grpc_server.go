package psod

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/GoSim-25-26J-441/swarm-core/pkg/logger"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// SwarmServiceName is the fully qualified gRPC service name. Requests and
// responses are google.protobuf.Struct values carrying the same JSON shapes
// as the HTTP API.
const SwarmServiceName = "swarm.v1.SwarmService"

// SwarmServiceServer is the server API for SwarmService.
type SwarmServiceServer interface {
	CreateRun(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetRun(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListRuns(context.Context, *structpb.Struct) (*structpb.Struct, error)
	StopRun(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var swarmServiceDesc = grpc.ServiceDesc{
	ServiceName: SwarmServiceName,
	HandlerType: (*SwarmServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateRun", Handler: unaryHandler("CreateRun", SwarmServiceServer.CreateRun)},
		{MethodName: "GetRun", Handler: unaryHandler("GetRun", SwarmServiceServer.GetRun)},
		{MethodName: "ListRuns", Handler: unaryHandler("ListRuns", SwarmServiceServer.ListRuns)},
		{MethodName: "StopRun", Handler: unaryHandler("StopRun", SwarmServiceServer.StopRun)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "swarm/v1/swarm.proto",
}

// RegisterSwarmServiceServer registers srv on s.
func RegisterSwarmServiceServer(s grpc.ServiceRegistrar, srv SwarmServiceServer) {
	s.RegisterService(&swarmServiceDesc, srv)
}

type unaryMethod func(SwarmServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(name string, call unaryMethod) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	fullMethod := "/" + SwarmServiceName + "/" + name
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(SwarmServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(SwarmServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// SwarmGRPCServer implements SwarmServiceServer on top of a RunStore and
// RunExecutor.
type SwarmGRPCServer struct {
	store    *RunStore
	Executor *RunExecutor
}

func NewSwarmGRPCServer(store *RunStore, executor *RunExecutor) *SwarmGRPCServer {
	return &SwarmGRPCServer{
		store:    store,
		Executor: executor,
	}
}

type createRunRequest struct {
	RunID string    `json:"run_id,omitempty"`
	Input *RunInput `json:"input"`
}

type runIDRequest struct {
	RunID string `json:"run_id"`
}

type listRunsRequest struct {
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
	Status models.RunStatus `json:"status"`
}

type runResponse struct {
	Run *models.Run `json:"run"`
}

type listRunsResponse struct {
	Runs []*models.Run `json:"runs"`
}

func (s *SwarmGRPCServer) CreateRun(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req createRunRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if req.Input == nil {
		req.Input = &RunInput{}
	}

	rec, err := s.Executor.Submit(req.RunID, req.Input)
	if err != nil {
		return nil, grpcError(err)
	}
	logger.Info("run created (gRPC)", "run_id", rec.Run.ID)
	return toStruct(runResponse{Run: rec.Run})
}

func (s *SwarmGRPCServer) GetRun(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	runID, err := requireRunID(in)
	if err != nil {
		return nil, err
	}
	rec, ok := s.store.Get(runID)
	if !ok {
		return nil, status.Error(codes.NotFound, "run not found")
	}
	return toStruct(runResponse{Run: rec.Run})
}

func (s *SwarmGRPCServer) ListRuns(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req listRunsRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if req.Limit > maxListLimit {
		req.Limit = maxListLimit
	}
	recs := s.store.List(req.Limit, max(req.Offset, 0), req.Status)
	runs := make([]*models.Run, 0, len(recs))
	for _, rec := range recs {
		runs = append(runs, rec.Run)
	}
	return toStruct(listRunsResponse{Runs: runs})
}

func (s *SwarmGRPCServer) StopRun(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	runID, err := requireRunID(in)
	if err != nil {
		return nil, err
	}
	updated, err := s.Executor.Stop(runID)
	if err != nil {
		return nil, grpcError(err)
	}
	logger.Info("run cancelled (gRPC)", "run_id", runID)
	return toStruct(runResponse{Run: updated.Run})
}

func requireRunID(in *structpb.Struct) (string, error) {
	var req runIDRequest
	if err := fromStruct(in, &req); err != nil {
		return "", status.Error(codes.InvalidArgument, err.Error())
	}
	if req.RunID == "" {
		return "", status.Error(codes.InvalidArgument, ErrRunIDMissing.Error())
	}
	return req.RunID, nil
}

func grpcError(err error) error {
	switch {
	case errors.Is(err, ErrRunNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrRunIDMissing):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ErrRunExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, ErrRunTerminal):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, ErrTooManyRuns):
		return status.Error(codes.ResourceExhausted, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// SwarmServiceClient is a typed client for SwarmService.
type SwarmServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewSwarmServiceClient(cc grpc.ClientConnInterface) *SwarmServiceClient {
	return &SwarmServiceClient{cc: cc}
}

func (c *SwarmServiceClient) CreateRun(ctx context.Context, runID string, input *RunInput, opts ...grpc.CallOption) (*models.Run, error) {
	var resp runResponse
	if err := c.invoke(ctx, "CreateRun", createRunRequest{RunID: runID, Input: input}, &resp, opts...); err != nil {
		return nil, err
	}
	return resp.Run, nil
}

func (c *SwarmServiceClient) GetRun(ctx context.Context, runID string, opts ...grpc.CallOption) (*models.Run, error) {
	var resp runResponse
	if err := c.invoke(ctx, "GetRun", runIDRequest{RunID: runID}, &resp, opts...); err != nil {
		return nil, err
	}
	return resp.Run, nil
}

func (c *SwarmServiceClient) ListRuns(ctx context.Context, limit, offset int, st models.RunStatus, opts ...grpc.CallOption) ([]*models.Run, error) {
	var resp listRunsResponse
	req := listRunsRequest{Limit: limit, Offset: offset, Status: st}
	if err := c.invoke(ctx, "ListRuns", req, &resp, opts...); err != nil {
		return nil, err
	}
	return resp.Runs, nil
}

func (c *SwarmServiceClient) StopRun(ctx context.Context, runID string, opts ...grpc.CallOption) (*models.Run, error) {
	var resp runResponse
	if err := c.invoke(ctx, "StopRun", runIDRequest{RunID: runID}, &resp, opts...); err != nil {
		return nil, err
	}
	return resp.Run, nil
}

func (c *SwarmServiceClient) invoke(ctx context.Context, method string, req, resp any, opts ...grpc.CallOption) error {
	in, err := toStruct(req)
	if err != nil {
		return err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+SwarmServiceName+"/"+method, in, out, opts...); err != nil {
		return err
	}
	return fromStruct(out, resp)
}

func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode: %v", err))
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode: %v", err))
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode: %v", err))
	}
	return s, nil
}

func fromStruct(s *structpb.Struct, v any) error {
	data, err := json.Marshal(s.AsMap())
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
