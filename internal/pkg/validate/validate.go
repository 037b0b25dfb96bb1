package validate

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	fullNameRe = regexp.MustCompile(`^[a-zA-Z\s]{3,}$`)
	pinRe      = regexp.MustCompile(`^\d{6,8}$`)
)

// v is the package-level singleton validator. Custom tags are registered in
// init before the first call to Struct.
var v = validator.New()

func init() {
	// Report fields by their JSON name so messages match the request body.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("fullname", func(fl validator.FieldLevel) bool {
		return fullNameRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("pin", func(fl validator.FieldLevel) bool {
		return pinRe.MatchString(fl.Field().String())
	})
}

var tagMessages = map[string]string{
	"fullname": "must be at least 3 characters long and contain only alphabets",
	"pin":      "must be 6 to 8 digits",
	"email":    "must be a valid email",
	"eqfield":  "does not match",
	"required": "is required",
	"numeric":  "must contain digits only",
	"len":      "has the wrong length",
	"gt":       "must be greater than zero",
}

// Struct validates the given struct using its validate tags.
// Returns a human-readable error string or nil.
func Struct(s interface{}) error {
	if err := v.Struct(s); err != nil {
		ve, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		var msgs []string
		for _, fe := range ve {
			if msg, ok := tagMessages[fe.Tag()]; ok {
				msgs = append(msgs, fmt.Sprintf("%s %s", fe.Field(), msg))
				continue
			}
			msgs = append(msgs, fmt.Sprintf("field '%s' failed '%s'", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}
	return nil
}
