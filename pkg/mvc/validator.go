package mvc

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/toyz/axonmvc/pkg/property"
)

var defaultValidate = validator.New(validator.WithRequiredStructEnabled())

// ValidatorFactory builds the validator the property mapper runs over a
// controller's arguments.
type ValidatorFactory func(args *Arguments) property.Validator

// ArgumentsValidator checks required arguments and each argument's
// validation rule.
type ArgumentsValidator struct {
	arguments *Arguments
	validate  *validator.Validate
}

// NewArgumentsValidator creates a validator bound to args
func NewArgumentsValidator(args *Arguments) property.Validator {
	return &ArgumentsValidator{
		arguments: args,
		validate:  defaultValidate,
	}
}

// Validate ignores target and validates the bound arguments
func (v *ArgumentsValidator) Validate(_ any) []property.PropertyError {
	var errs []property.PropertyError
	for _, arg := range v.arguments.All() {
		if !arg.IsSet() {
			if arg.IsRequired() && arg.DefaultValue() == nil {
				errs = append(errs, property.PropertyError{Property: arg.Name(), Err: ErrArgumentRequired})
			}
			continue
		}
		if rule := arg.Validation(); rule != "" {
			if err := v.check(arg, rule); err != nil {
				errs = append(errs, property.PropertyError{Property: arg.Name(), Err: err})
			}
		}
	}
	return errs
}

func (v *ArgumentsValidator) check(arg *Argument, rule string) (err error) {
	// the validator panics on unknown rule tags
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("invalid validation rule %q for argument %q: %v", rule, arg.Name(), r)
		}
	}()

	err = v.validate.Var(arg.Value(), rule)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return &ArgumentValidationError{
			Argument: arg.Name(),
			Rule:     fieldErrs[0].Tag(),
			Param:    fieldErrs[0].Param(),
		}
	}
	return err
}
