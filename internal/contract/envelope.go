package contract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// Envelope is one status/data wrapper around the payload.
type Envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

const envelopeSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["status", "data"],
  "properties": {
    "status": {"type": "string"},
    "data": {"type": "object"}
  }
}`

var envelopeSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(envelopeSchemaJSON))
})

// ShapeError reports a payload that does not match the expected contract.
type ShapeError struct {
	What     string
	Problems []string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("malformed %s: %s", e.What, strings.Join(e.Problems, "; "))
}

// ParseEnvelope checks raw against the envelope schema and returns the
// wrapper with its data left undecoded.
func ParseEnvelope(raw []byte) (Envelope, error) {
	schema, err := envelopeSchema()
	if err != nil {
		return Envelope{}, fmt.Errorf("loading envelope schema: %w", err)
	}

	res, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return Envelope{}, &ShapeError{What: "envelope", Problems: []string{err.Error()}}
	}
	if !res.Valid() {
		problems := make([]string, 0, len(res.Errors()))
		for _, desc := range res.Errors() {
			field := desc.Field()
			if field == "" {
				field = "(root)"
			}
			problems = append(problems, fmt.Sprintf("%s: %s", field, desc.Description()))
		}
		return Envelope{}, &ShapeError{What: "envelope", Problems: problems}
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, &ShapeError{What: "envelope", Problems: []string{err.Error()}}
	}
	return env, nil
}

// ParseResult decodes the innermost payload and validates it.
func ParseResult(raw []byte) (Result, error) {
	var r Result
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&r); err != nil {
		return Result{}, &ShapeError{What: "result", Problems: []string{err.Error()}}
	}

	if err := validateStruct(r); err != nil {
		var verr *ValidationError
		if !errors.As(err, &verr) {
			return Result{}, err
		}
		problems := make([]string, len(verr.Fields))
		for i, f := range verr.Fields {
			problems[i] = fmt.Sprintf("%s: %s", f.Field, f.Rule)
		}
		return Result{}, &ShapeError{What: "result", Problems: problems}
	}
	return r, nil
}
