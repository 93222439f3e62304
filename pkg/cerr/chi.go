package cerr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kazz187/housekeeping/pkg/clog"
)

// reply is what a handler leaves behind for NewConvertConnectErrorChiMiddleware
// to write. Handlers never touch the ResponseWriter themselves.
type reply struct {
	status int
	body   any
	err    error
}

type replyKey struct{}

func replyFrom(ctx context.Context) *reply {
	r, _ := ctx.Value(replyKey{}).(*reply)
	return r
}

func SetJSONResponse(ctx context.Context, response any) {
	SetJSONResponseWithStatus(ctx, 0, response)
}

// SetJSONResponseWithStatus is SetJSONResponse with an explicit success status, e.g. 201.
func SetJSONResponseWithStatus(ctx context.Context, status int, response any) {
	if r := replyFrom(ctx); r != nil {
		r.status, r.body, r.err = status, response, nil
	}
}

// SetJSONError replaces any response set earlier in the request.
func SetJSONError(ctx context.Context, err error) {
	if r := replyFrom(ctx); r != nil {
		r.err = err
	}
}

func SetNewJSONError(ctx context.Context, code Code, msg string, err error) {
	SetJSONError(ctx, NewError(code, msg, err))
}

// NewConvertConnectErrorChiMiddleware renders whatever the handler set: the
// response as JSON, an *Error as {code,message,details} with its HTTP status,
// or 204 when neither was set.
func NewConvertConnectErrorChiMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			rep := &reply{}
			ctx := context.WithValue(r.Context(), replyKey{}, rep)
			next.ServeHTTP(rw, r.WithContext(ctx))
			rep.write(ctx, rw)
		})
	}
}

type httpError struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

func (rep *reply) write(ctx context.Context, rw http.ResponseWriter) {
	if rep.err != nil {
		writeError(ctx, rw, classify(ctx, rep.err))
		return
	}
	if rep.body == nil && rep.status == 0 {
		rw.WriteHeader(http.StatusNoContent)
		return
	}
	data, err := encode(rep.body)
	if err != nil {
		writeError(ctx, rw, NewError(Internal, "server error", err))
		return
	}
	status := rep.status
	if status == 0 {
		status = http.StatusOK
	}
	send(ctx, rw, status, data)
}

// classify turns any handler error into an *Error, recording the cause on the
// request log line.
func classify(ctx context.Context, err error) *Error {
	if errors.Is(err, context.Canceled) {
		return NewError(Canceled, "connection closed", err)
	}
	clog.AddError(ctx, err)
	var e *Error
	if !errors.As(err, &e) {
		return NewError(Unknown, "unknown error", err)
	}
	if e.Stack != "" {
		clog.AddStack(ctx, e.Stack)
	}
	return e
}

func writeError(ctx context.Context, rw http.ResponseWriter, e *Error) {
	data, err := encode(httpError{Code: e.Code.String(), Message: e.Msg, Details: e.DetailMessages()})
	if err != nil {
		data = []byte(`{"code":"Internal","message":"server error"}` + "\n")
		e.Err = errors.Join(e.Err, err)
		clog.AddError(ctx, e)
	}
	if v := e.retryAfterHeader(); v != "" {
		rw.Header().Set("Retry-After", v)
	}
	send(ctx, rw, e.Code.HTTPCode(), data)
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(true)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func send(ctx context.Context, rw http.ResponseWriter, status int, data []byte) {
	rw.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.WriteHeader(status)
	if _, err := rw.Write(data); err != nil {
		clog.AddError(ctx, NewError(Internal, "server error", err))
	}
}
