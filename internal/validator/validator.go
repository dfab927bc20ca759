package validator

// Validator is the struct validation entry point handed to services. It
// wraps the business validator so services can either run plain struct
// tag validation or reach the richer business checks.
type Validator struct {
	business *BusinessValidator
}

func NewValidator() *Validator {
	return &Validator{business: NewBusinessValidator()}
}

// Validate runs struct tag validation and returns nil or ValidationErrors.
func (v *Validator) Validate(s interface{}) error {
	if errs := v.business.Validate(s); len(errs) > 0 {
		return errs
	}
	return nil
}

// GetBusinessValidator exposes the business rule checks.
func (v *Validator) GetBusinessValidator() *BusinessValidator {
	return v.business
}
