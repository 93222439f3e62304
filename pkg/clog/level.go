package clog

import (
	"log/slog"
	"net/http"

	"connectrpc.com/connect"
)

type Level int

const (
	LevelDebug Level = iota + 1
	LevelInfo
	LevelWarn
	LevelError
)

// Level converts to the slog level of the same name. Unset levels log as errors.
func (l Level) Level() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	}
	return slog.LevelError
}

// HTTPStatusToLevel maps a response status to an access log level. Client
// disconnects (499) and capacity rejections (429) are routine for the engine
// and stay at info.
func HTTPStatusToLevel(status int) Level {
	switch {
	case status == 499, status == http.StatusTooManyRequests:
		return LevelInfo
	case status >= 100 && status < 400:
		return LevelInfo
	case status >= 400 && status < 500:
		return LevelWarn
	}
	return LevelError
}

// Codes that point at a server fault. Everything else, including lost races,
// staff on break and a busy engine, is part of normal task flow.
var errorCodes = map[connect.Code]bool{
	connect.CodeUnknown:       true,
	connect.CodeUnimplemented: true,
	connect.CodeInternal:      true,
	connect.CodeUnavailable:   true,
	connect.CodeDataLoss:      true,
}

// ConnectCodeToLevel picks the log level for a failure code.
func ConnectCodeToLevel(code connect.Code) Level {
	if code == 0 || code > connect.CodeUnauthenticated || errorCodes[code] {
		return LevelError
	}
	return LevelInfo
}
