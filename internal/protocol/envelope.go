package protocol

import "encoding/json"

// Request is the JSON-RPC envelope Payme posts to the merchant callback.
// All four fields are required; ID correlates the response and is echoed
// back verbatim, whatever JSON type the caller used.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	ID      json.RawMessage `json:"id"`
}

// Valid reports whether every required envelope field is present.
func (r *Request) Valid() bool {
	return r.JSONRPC != "" && r.Method != "" && len(r.Params) > 0 && len(r.ID) > 0
}

// Response carries exactly one of Result or Error.
type Response struct {
	Result any    `json:"result,omitempty"`
	Error  *Error `json:"error,omitempty"`
	ID     any    `json:"id"`
}

func OK(id any, result any) *Response {
	return &Response{Result: result, ID: id}
}

func Fail(id any, err *Error) *Response {
	return &Response{Error: err, ID: id}
}
