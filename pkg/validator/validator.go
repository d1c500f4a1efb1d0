package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	registerOnce sync.Once
	location     = time.UTC
	timeType     = reflect.TypeOf(time.Time{})
)

// SetLocation sets the zone used to decide what "today" is.
func SetLocation(loc *time.Location) {
	if loc != nil {
		location = loc
	}
}

// Register installs json field naming and the custom tags on gin's validator engine.
// It is safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		configure(v)
	})
}

// New returns a standalone validator configured like gin's, reading `binding` tags.
func New() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	configure(v)
	return v
}

func configure(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	if err := v.RegisterValidation("notfuture", notFuture); err != nil {
		panic(err)
	}
}

// notFuture accepts dates up to and including today. Any type convertible to
// time.Time is supported so domain date types validate too.
func notFuture(fl validator.FieldLevel) bool {
	field := fl.Field()
	if !field.Type().ConvertibleTo(timeType) {
		return false
	}
	t := field.Convert(timeType).Interface().(time.Time)
	if t.IsZero() {
		return true
	}
	now := time.Now().In(location)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return !day.After(today)
}

// FieldErrors turns validation failures into a json-field keyed message map.
// It returns nil when err is not a validation error.
func FieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, exists := out[fe.Field()]; exists {
			continue
		}
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		if isString {
			return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "gte":
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "oneof":
		return fmt.Sprintf("%q is not a valid choice.", fmt.Sprint(fe.Value()))
	case "notfuture":
		return "Date cannot be in the future."
	default:
		return fmt.Sprintf("Invalid value (%s).", fe.Tag())
	}
}
