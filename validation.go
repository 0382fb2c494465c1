package textops

// Validatable is implemented by request structs that need checks beyond the schema.
// Called after schema validation and unmarshaling.
type Validatable interface {
	Validate() error
}

// schemaValidator validates a decoded JSON instance. *jsonschema.Schema implements it.
type schemaValidator interface {
	Validate(v any) error
}

// validateAgainstSchema runs the schema layer on an already decoded value.
func validateAgainstSchema(validate schemaValidator, v any) error {
	if err := validate.Validate(v); err != nil {
		return &ClientError{Reason: err.Error(), Err: ErrValidation}
	}
	return nil
}

// validateCustom runs the Validatable layer if args implements it.
func validateCustom(args any) error {
	if v, ok := args.(Validatable); ok {
		return v.Validate()
	}
	return nil
}
