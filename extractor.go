package textops

import (
	"bytes"
	"encoding/json"
	"maps"
	"reflect"

	validator "github.com/santhosh-tekuri/jsonschema/v6"
)

// Extractor decodes JSON request bodies into T with two validation layers: the JSON
// Schema reflected from T, then Validatable if T implements it. The HTTP server
// builds one per request type.
type Extractor[T any] struct {
	schemaMap map[string]any
	compiled  *validator.Schema
}

// NewExtractor creates an Extractor for type T. When strict is true every property
// is required and unknown properties are rejected at every level.
func NewExtractor[T any](strict bool) (*Extractor[T], error) {
	schemaMap, compiled, err := generateSchema[T](strict)
	if err != nil {
		return nil, err
	}
	return &Extractor[T]{
		schemaMap: schemaMap,
		compiled:  compiled,
	}, nil
}

// Schema returns a shallow copy of the JSON Schema (top-level keys only).
// Nested maps are shared; callers must not mutate them.
func (e *Extractor[T]) Schema() map[string]any {
	return maps.Clone(e.schemaMap)
}

// ParseAndValidate decodes body into T. Invalid JSON and failures of either
// validation layer are returned as *ClientError.
func (e *Extractor[T]) ParseAndValidate(body []byte) (T, error) {
	var zero T
	inst, err := validator.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return zero, wrapJSONParseError(err)
	}
	if err := validateAgainstSchema(e.compiled, inst); err != nil {
		return zero, err
	}
	var args T
	if err := json.Unmarshal(body, &args); err != nil {
		return zero, wrapJSONParseError(err)
	}
	if err := runCustomValidation(args); err != nil {
		if IsClientError(err) {
			return zero, err
		}
		return zero, &ClientError{Reason: err.Error(), Err: ErrValidation}
	}
	return args, nil
}

// runCustomValidation calls Validate on args, or on &args when only the pointer
// implements Validatable. Validate is never called twice.
func runCustomValidation[T any](args T) error {
	if err := validateCustom(any(args)); err != nil {
		return err
	}
	if _, ok := any(args).(Validatable); ok {
		return nil
	}
	typ := reflect.TypeOf(args)
	if typ == nil || typ.Kind() == reflect.Pointer {
		return nil
	}
	return validateCustom(any(&args))
}
