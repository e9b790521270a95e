package assignment

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ngcde/assignment-tracker/pkg/cerr"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields under their wire names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	// Date and Timestamp flatten to their string form so "required" rejects
	// the zero value.
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		switch t := field.Interface().(type) {
		case Date:
			return t.String()
		case Timestamp:
			return t.String()
		}
		return nil
	}, Date{}, Timestamp{})

	mustRegister(v, "engineer", enumRule(Engineers()))
	mustRegister(v, "priority", enumRule(Priorities()))
	mustRegister(v, "status", enumRule(Statuses()))
	mustRegister(v, "category", enumRule(Categories()))
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("failed to register %q validation: %v", tag, err))
	}
}

func enumRule[T ~string](allowed []T) validator.Func {
	set := make(map[string]struct{}, len(allowed))
	for _, v := range allowed {
		set[string(v)] = struct{}{}
	}
	return func(fl validator.FieldLevel) bool {
		_, ok := set[fl.Field().String()]
		return ok
	}
}

// ValidateRecord checks a full record against the schema: required fields
// present, enumeration values valid, numeric ranges respected.
func ValidateRecord(a *Assignment) error {
	return wrapValidationError(validate.Struct(a))
}

func validateCreate(req *CreateRequest) error {
	return wrapValidationError(validate.Struct(req))
}

func wrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return cerr.NewError(cerr.Invalid, fieldMessage(verrs[0]), err)
	}
	return cerr.NewError(cerr.Invalid, err.Error(), err)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "engineer":
		return fmt.Sprintf("%s must be one of the chief engineer roles", fe.Field())
	case "priority":
		return fmt.Sprintf("%s must be one of Low, Medium, High, Critical", fe.Field())
	case "status":
		return fmt.Sprintf("%s is not a valid status", fe.Field())
	case "category":
		return fmt.Sprintf("%s is not a valid category", fe.Field())
	case "min", "max":
		return fmt.Sprintf("%s is out of range", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
