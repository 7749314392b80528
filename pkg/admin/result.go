package admin

import (
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Result status values. These mirror the envelope understood by existing
// platform tooling, so serialized results stay interchangeable with it.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result is the outcome of one admin operation against one platform
// instance. Every operation produces exactly one of two variants: a success
// carrying the parsed JSON response body, or a failure carrying a
// human-readable description. Operations never return a Go error; callers
// branch on OK.
type Result struct {
	Status string
	Data   any    // parsed response body, set on success only
	Err    string // failure description, set on failure only
}

// Success wraps a parsed response body in a successful Result.
func Success(body any) Result {
	return Result{Status: StatusSuccess, Data: body}
}

// Failure converts an error into a failed Result.
func Failure(err error) Result {
	return Result{Status: StatusError, Err: err.Error()}
}

// OK reports whether the operation succeeded.
func (r Result) OK() bool {
	return r.Status == StatusSuccess
}

// DecodeData decodes the response body into out, typically a struct with
// mapstructure tags matching the instance's JSON field names. Numeric JSON
// values arrive as float64 and are converted to the target field type.
func (r Result) DecodeData(out any) error {
	if !r.OK() {
		return fmt.Errorf("cannot decode failed result: %s", r.Err)
	}
	return mapstructure.Decode(r.Data, out)
}

// MarshalJSON renders the two variants as the stable wire envelope:
// {"status":"success","data":...} or {"status":"error","error":"..."}.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.OK() {
		return json.Marshal(struct {
			Status string `json:"status"`
			Data   any    `json:"data"`
		}{Status: r.Status, Data: r.Data})
	}
	return json.Marshal(struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	}{Status: StatusError, Error: r.Err})
}
