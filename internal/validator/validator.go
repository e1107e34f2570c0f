// Package validator provides a custom Validator type for accumulating
// field-level validation errors and reporting the first one as a
// ValidationError.
package validator

// Validator holds a map of field names to their validation error messages.
// A Validator with an empty Errors map is considered valid.
type Validator struct {
	Errors map[string]string
	order  []string
}

// New creates and returns a fresh, empty Validator.
func New() *Validator {
	return &Validator{Errors: make(map[string]string)}
}

// Valid returns true if the Errors map contains no entries.
func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

// AddError records key as failing with the given message.
// If key already has an error it is not overwritten, so the first
// failure for a field is always the one that is reported.
func (v *Validator) AddError(key, message string) {
	if _, exists := v.Errors[key]; !exists {
		v.Errors[key] = message
		v.order = append(v.order, key)
	}
}

// Check adds an error for key with message only when ok is false.
// Use this as a single-line guard:
//
//	v.Check(title != "", "title", "title required")
func (v *Validator) Check(ok bool, key, message string) {
	if !ok {
		v.AddError(key, message)
	}
}

// Err returns nil when the Validator is valid. Otherwise it returns a
// *ValidationError describing the first failure recorded.
func (v *Validator) Err() error {
	if v.Valid() {
		return nil
	}
	key := v.order[0]
	return &ValidationError{Field: key, Message: v.Errors[key], Fields: v.Errors}
}

// Between reports whether lo <= value <= hi.
func Between(value, lo, hi float64) bool {
	return value >= lo && value <= hi
}

// ValidationError is returned when input breaks a business rule.
// Message is safe to show to API clients.
type ValidationError struct {
	Field   string
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	return e.Message
}
