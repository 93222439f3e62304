package cerr

import (
	"context"

	"connectrpc.com/connect"
)

// errorConverter rewrites handler errors into connect errors on the way out.
// Client-side streams are passed through untouched.
type errorConverter struct{}

// NewConvertConnectErrorInterceptor makes connect handlers answer with the
// code, message, details and Retry-After hint carried by *Error.
func NewConvertConnectErrorInterceptor() connect.Interceptor {
	return errorConverter{}
}

func (errorConverter) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		resp, err := next(ctx, req)
		if err != nil {
			return nil, ExtractConnectError(ctx, err)
		}
		return resp, nil
	}
}

func (errorConverter) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

func (errorConverter) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return func(ctx context.Context, conn connect.StreamingHandlerConn) error {
		if err := next(ctx, conn); err != nil {
			return ExtractConnectError(ctx, err)
		}
		return nil
	}
}
