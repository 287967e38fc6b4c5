package api

import (
	"encoding/json"
	"fmt"
)

// Result is the uniform outcome of a facade call: either Data or Err is
// set, never both, never neither. A transport failure and a business error
// signaled inside a 2xx body are indistinguishable here — cache operations
// handle both the same way.
type Result struct {
	Data json.RawMessage
	Err  string
}

// OK reports whether the call produced a success payload.
func (r Result) OK() bool {
	return r.Err == ""
}

// Decode unmarshals the success payload into out. Calling Decode on an
// error result is a caller bug and returns the error message.
func (r Result) Decode(out any) error {
	if !r.OK() {
		return fmt.Errorf("cannot decode error result: %s", r.Err)
	}
	if err := json.Unmarshal(r.Data, out); err != nil {
		return fmt.Errorf("decoding response payload: %w", err)
	}
	return nil
}

func okResult(data json.RawMessage) Result {
	return Result{Data: data}
}

func errResult(format string, args ...any) Result {
	return Result{Err: fmt.Sprintf(format, args...)}
}
