package validation

import validatorv10 "github.com/go-playground/validator/v10"

// New returns a configured validator. Cross-field checks that need store
// data (declared total vs computed total) live in the orders package, not
// here; this layer only enforces request shape.
func New() *validatorv10.Validate {
	return validatorv10.New()
}
