package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/kazz187/housekeeping/pkg/cerr"
)

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return cerr.NewError(cerr.InvalidInput, "request body is required", err)
		}
		return cerr.NewError(cerr.InvalidInput, "malformed request body", err)
	}
	return nil
}

// pageParams reads page and pageSize. Missing values are zero, which the
// query layer treats as the first page and the default size.
func pageParams(r *http.Request) (page, size int, err error) {
	if page, err = intParam(r, "page"); err != nil {
		return 0, 0, err
	}
	if size, err = intParam(r, "pageSize"); err != nil {
		return 0, 0, err
	}
	return page, size, nil
}

func intParam(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, cerr.NewError(cerr.InvalidInput, fmt.Sprintf("%s must be an integer", name), err)
	}
	return n, nil
}

func boolParam(r *http.Request, name string) (bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, cerr.NewError(cerr.InvalidInput, fmt.Sprintf("%s must be a boolean", name), err)
	}
	return b, nil
}
