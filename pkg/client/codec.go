package client

import "encoding/json"

// Encoder serializes a caller-supplied problem into the JSON payload sent
// as a submission's "data" field.
type Encoder func(problem interface{}) (json.RawMessage, error)

// Decoder deserializes a settled problem's "answer" field into the value
// returned to the caller.
type Decoder func(answer json.RawMessage) (interface{}, error)

// identityEncode marshals problem as-is. It is the default codec: the
// solver service accepts arbitrary JSON problem documents, and most callers
// already hold their problem in the wire shape the service expects.
func identityEncode(problem interface{}) (json.RawMessage, error) {
	if raw, ok := problem.(json.RawMessage); ok {
		return raw, nil
	}
	return json.Marshal(problem)
}

// identityDecode returns answer unchanged as a json.RawMessage.
func identityDecode(answer json.RawMessage) (interface{}, error) {
	return answer, nil
}
