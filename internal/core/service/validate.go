package service

import (
	"errors"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/yndnr/authclient/internal/core/domain"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func formValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report fields by their wire name so they match server field errors.
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// validateForm checks v before any request is sent. It returns nil or a
// Validation AuthError naming the offending fields.
func validateForm(v any) *domain.AuthError {
	err := formValidator().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		ae := domain.Validation(0, domain.MsgMissingFields, nil)
		ae.Cause = err
		return ae
	}

	var missing []string
	invalid := map[string]string{}
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			missing = append(missing, fe.Field())
		case "oneof":
			invalid[fe.Field()] = domain.MsgRoleInvalid
		default:
			invalid[fe.Field()] = domain.MsgInvalidRequest
		}
	}
	sort.Strings(missing)

	msg := domain.MsgMissingFields
	if len(missing) == 0 {
		msg = domain.MsgInvalidRequest
	}
	ae := domain.Validation(0, msg, missing)
	for k, v := range invalid {
		ae.Fields[k] = v
	}
	return ae
}
