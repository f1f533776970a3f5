package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var v = validator.New(validator.WithRequiredStructEnabled())

// Struct validates a struct against its validate tags and returns a single
// readable error listing every failed field.
func Struct(s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}

	fields := make([]string, 0, len(errs))
	for _, fe := range errs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}

	return fmt.Errorf("invalid fields: %s", strings.Join(fields, ", "))
}
