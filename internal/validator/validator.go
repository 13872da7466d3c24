package validator

// Validator is the shared entry point handed to services and handlers.
type Validator struct {
	business *BusinessValidator
}

func New() *Validator {
	return &Validator{
		business: NewBusinessValidator(),
	}
}

// Validate runs struct-tag and business-rule validation; returns nil on success.
func (v *Validator) Validate(s interface{}) error {
	if errs := v.business.Validate(s); len(errs) > 0 {
		return errs
	}
	return nil
}

// GetBusinessValidator exposes the underlying business validator.
func (v *Validator) GetBusinessValidator() *BusinessValidator {
	return v.business
}
