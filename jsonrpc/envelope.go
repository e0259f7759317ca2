package jsonrpc

import jsoniter "github.com/json-iterator/go"

// Error is the error object of a response.
type Error struct {
	Code    int                 `json:"code"`
	Message string              `json:"message"`
	Data    jsoniter.RawMessage `json:"data,omitempty"`
}

// Envelope is a shallow view of any JSON-RPC 2.0 message. Params, result and error data
// are left undecoded.
type Envelope struct {
	JSONRPC string              `json:"jsonrpc"`
	ID      *ID                 `json:"id,omitempty"`
	Method  string              `json:"method,omitempty"`
	Params  jsoniter.RawMessage `json:"params,omitempty"`
	Result  jsoniter.RawMessage `json:"result,omitempty"`
	Error   *Error              `json:"error,omitempty"`
}

// Peek decodes the envelope of a payload. The payload isn't retained.
func Peek(payload []byte) (env Envelope, err error) {
	err = json.Unmarshal(payload, &env)
	return env, err
}

func (e Envelope) IsRequest() bool {
	return len(e.Method) > 0 && e.ID != nil
}

func (e Envelope) IsNotification() bool {
	return len(e.Method) > 0 && e.ID == nil
}

// IsResponse reports whether the message has no method but an id, a result or an error.
// A null result decodes into nil, so the id alone is enough.
func (e Envelope) IsResponse() bool {
	return len(e.Method) == 0 && (e.ID != nil || e.Result != nil || e.Error != nil)
}
