package cerr

import (
	"net/http"
	"time"

	"connectrpc.com/connect"
)

//go:generate go tool stringer -type=Code -output=code_string.go code.go
type Code int

const (
	OK                 = Code(0)
	Canceled           = Code(1)
	Unknown            = Code(2)
	InvalidArgument    = Code(3)
	DeadlineExceeded   = Code(4)
	NotFound           = Code(5)
	AlreadyExists      = Code(6)
	PermissionDenied   = Code(7)
	ResourceExhausted  = Code(8)
	FailedPrecondition = Code(9)
	Aborted            = Code(10)
	OutOfRange         = Code(11)
	Unimplemented      = Code(12)
	Internal           = Code(13)
	Unavailable        = Code(14)
	DataLoss           = Code(15)
	Unauthenticated    = Code(16)
)

// Housekeeping error kinds. Callers match them with IsCode.
const (
	InvalidInput      = InvalidArgument
	InvalidTransition = FailedPrecondition
	StaffUnavailable  = ResourceExhausted
	Busy              = Aborted
)

type mapping struct {
	connect    connect.Code
	http       int
	retryAfter time.Duration
}

// Canceled maps to nginx's 499 since net/http has no constant for it.
var mappings = map[Code]mapping{
	OK:                 {0, http.StatusOK, 0},
	Canceled:           {connect.CodeCanceled, 499, 0},
	Unknown:            {connect.CodeUnknown, http.StatusInternalServerError, 0},
	InvalidArgument:    {connect.CodeInvalidArgument, http.StatusBadRequest, 0},
	DeadlineExceeded:   {connect.CodeDeadlineExceeded, http.StatusGatewayTimeout, time.Second},
	NotFound:           {connect.CodeNotFound, http.StatusNotFound, 0},
	AlreadyExists:      {connect.CodeAlreadyExists, http.StatusConflict, 0},
	PermissionDenied:   {connect.CodePermissionDenied, http.StatusForbidden, 0},
	ResourceExhausted:  {connect.CodeResourceExhausted, http.StatusTooManyRequests, 0},
	FailedPrecondition: {connect.CodeFailedPrecondition, http.StatusPreconditionFailed, 0},
	Aborted:            {connect.CodeAborted, http.StatusConflict, time.Second},
	OutOfRange:         {connect.CodeOutOfRange, http.StatusBadRequest, 0},
	Unimplemented:      {connect.CodeUnimplemented, http.StatusNotImplemented, 0},
	Internal:           {connect.CodeInternal, http.StatusInternalServerError, 0},
	Unavailable:        {connect.CodeUnavailable, http.StatusServiceUnavailable, 5 * time.Second},
	DataLoss:           {connect.CodeDataLoss, http.StatusInternalServerError, 0},
	Unauthenticated:    {connect.CodeUnauthenticated, http.StatusUnauthorized, 0},
}

func (c Code) ConnectCode() connect.Code {
	if m, ok := mappings[c]; ok {
		return m.connect
	}
	return connect.CodeUnknown
}

func (c Code) HTTPCode() int {
	if m, ok := mappings[c]; ok {
		return m.http
	}
	return http.StatusInternalServerError
}

// RetryAfter is how long a caller should wait before repeating a request that
// failed with c. Zero means repeating it unchanged will fail again: a
// StaffUnavailable rejection only clears once the staff member's state moves.
func (c Code) RetryAfter() time.Duration {
	return mappings[c].retryAfter
}

// ParseCode is the inverse of Code.String. Unknown names map to Unknown.
func ParseCode(name string) Code {
	for c := OK; c <= Unauthenticated; c++ {
		if c.String() == name {
			return c
		}
	}
	return Unknown
}
