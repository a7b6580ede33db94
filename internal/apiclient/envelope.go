package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Envelope is a parsed success body. The payload may sit under a top-level
// data key or at the top level itself.
type Envelope struct {
	raw []byte
}

func parseEnvelope(body []byte) (*Envelope, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return &Envelope{raw: []byte("{}")}, nil
	}
	if !gjson.ValidBytes(trimmed) {
		return nil, fmt.Errorf("response body is not valid JSON")
	}
	return &Envelope{raw: trimmed}, nil
}

// Raw returns the body as received.
func (e *Envelope) Raw() []byte { return e.raw }

// Get looks up a gjson path in the body.
func (e *Envelope) Get(path string) gjson.Result { return gjson.GetBytes(e.raw, path) }

// Data returns the data wrapper when present, otherwise the whole body.
func (e *Envelope) Data() gjson.Result {
	if d := e.Get("data"); d.Exists() {
		return d
	}
	return gjson.ParseBytes(e.raw)
}

func (e *Envelope) Message() string { return e.Get("message").String() }

func (e *Envelope) StatusCode() int { return int(e.Get("statusCode").Int()) }

// Success is true unless the body says otherwise.
func (e *Envelope) Success() bool {
	if s := e.Get("success"); s.Exists() {
		return s.Bool()
	}
	return true
}

// Decode unmarshals the whole body into v.
func (e *Envelope) Decode(v any) error { return json.Unmarshal(e.raw, v) }

// DecodeData unmarshals the payload (see Data) into v.
func (e *Envelope) DecodeData(v any) error { return json.Unmarshal([]byte(e.Data().Raw), v) }

// DecodeInto decodes the whole envelope into a T.
func DecodeInto[T any](env *Envelope) (T, error) {
	var out T
	if env == nil {
		return out, fmt.Errorf("nil envelope")
	}
	err := env.Decode(&out)
	return out, err
}

// DecodeDataInto decodes the envelope payload into a T.
func DecodeDataInto[T any](env *Envelope) (T, error) {
	var out T
	if env == nil {
		return out, fmt.Errorf("nil envelope")
	}
	err := env.DecodeData(&out)
	return out, err
}

// DecodePath unmarshals the value at a gjson path into v.
func (e *Envelope) DecodePath(path string, v any) error {
	r := e.Get(path)
	if !r.Exists() {
		return fmt.Errorf("path %q not found", path)
	}
	return json.Unmarshal([]byte(r.Raw), v)
}
