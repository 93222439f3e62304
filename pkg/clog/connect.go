package clog

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/proto"
)

type connectConfig struct {
	filter func(spec connect.Spec) bool
}

type ConnectOption func(*connectConfig)

func WithConnectFilter(filter func(connect.Spec) bool) ConnectOption {
	return func(cfg *connectConfig) {
		cfg.filter = filter
	}
}

// DefaultConnectHealthCheckFilter drops the unary health probe that load
// balancers hit every few seconds.
func DefaultConnectHealthCheckFilter(spec connect.Spec) bool {
	return spec.Procedure != "/grpc.health.v1.Health/Check"
}

type slogConnectInterceptor struct {
	cfg connectConfig
}

// NewSlogConnectInterceptor logs one line per finished connect call at a level
// derived from the returned code.
func NewSlogConnectInterceptor(opts ...ConnectOption) connect.Interceptor {
	var cfg connectConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return &slogConnectInterceptor{cfg: cfg}
}

func (s *slogConnectInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		var resp connect.AnyResponse
		err := s.observe(ctx, req.Spec(), req.HTTPMethod(), func(ctx context.Context) error {
			var err error
			resp, err = next(ctx, req)
			return err
		})
		return resp, err
	}
}

func (s *slogConnectInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

func (s *slogConnectInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return func(ctx context.Context, conn connect.StreamingHandlerConn) error {
		return s.observe(ctx, conn.Spec(), "", func(ctx context.Context) error {
			slog.DebugContext(ctx, "stream opened")
			return next(ctx, conn)
		})
	}
}

func (s *slogConnectInterceptor) observe(ctx context.Context, spec connect.Spec, method string, call func(context.Context) error) error {
	start := time.Now()
	ctx = ContextWithSlog(ctx)
	attrs := map[string]any{
		"procedure":   spec.Procedure,
		"stream_type": spec.StreamType.String(),
	}
	if method != "" {
		attrs["method"] = method
	}
	AddAttributes(ctx, attrs)

	err := call(ctx)
	if s.cfg.filter != nil && !s.cfg.filter(spec) {
		return err
	}

	if err == nil {
		AddAttributes(ctx, map[string]any{"code": "ok", "duration": time.Since(start)})
		slog.InfoContext(ctx, "finished")
		return err
	}
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		connectErr = connect.NewError(connect.CodeUnknown, err)
	}
	AddAttributes(ctx, map[string]any{"code": connectErr.Code().String(), "duration": time.Since(start)})
	if details := decodeDetails(ctx, connectErr); len(details) > 0 {
		AddAttribute(ctx, "err_details", details)
	}
	slog.Log(ctx, ConnectCodeToLevel(connectErr.Code()).Level(), connectErr.Message())
	return err
}

func decodeDetails(ctx context.Context, connectErr *connect.Error) []proto.Message {
	var details []proto.Message
	for _, d := range connectErr.Details() {
		v, err := d.Value()
		if err != nil {
			slog.WarnContext(ctx, "undecodable error detail", "type", d.Type(), ErrorAttributeKey, err)
			continue
		}
		details = append(details, v)
	}
	return details
}
