package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"user-admin-console/internal/domain"
)

type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// FormValues are the raw values typed into the user form.
type FormValues struct {
	Username string        `json:"username"`
	Email    string        `json:"email"`
	Name     string        `json:"name"`
	Password string        `json:"password"`
	Role     domain.Role   `json:"role"`
	Status   domain.Status `json:"status"`
}

type createInput struct {
	Username string `json:"username" validate:"min=3,max=50"`
	Email    string `json:"email"    validate:"required,email"`
	Name     string `json:"name"     validate:"min=2,max=100"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role"     validate:"required,oneof=admin user manager"`
}

// An empty password in edit mode means "unchanged" and is never checked.
type editInput struct {
	Username string `json:"username" validate:"min=3,max=50"`
	Email    string `json:"email"    validate:"required,email"`
	Name     string `json:"name"     validate:"min=2,max=100"`
	Password string `json:"password" validate:"omitempty,min=8"`
	Role     string `json:"role"     validate:"required,oneof=admin user manager"`
	Status   string `json:"status"   validate:"required,oneof=active inactive pending"`
}

// updateInput checks a partial update; nil fields were not sent and are skipped.
type updateInput struct {
	Username *string        `json:"username" validate:"omitnil,min=3,max=50"`
	Email    *string        `json:"email"    validate:"omitnil,email"`
	Name     *string        `json:"name"     validate:"omitnil,min=2,max=100"`
	Password *string        `json:"password" validate:"omitnil,min=8"`
	Role     *domain.Role   `json:"role"     validate:"omitnil,oneof=admin user manager"`
	Status   *domain.Status `json:"status"   validate:"omitnil,oneof=active inactive pending"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	return v
}

// Errors maps a form field to a human readable violation.
type Errors map[string]string

func (e Errors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	return "validation failed: " + e.Summary()
}

// Summary joins the messages in field order, e.g. for a response body.
func (e Errors) Summary() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, e[f])
	}
	return strings.Join(parts, "; ")
}

// Field returns the message for one field, "" when it passed.
func (e Errors) Field(name string) string { return e[name] }

// AsErrors extracts field errors from err.
func AsErrors(err error) (Errors, bool) {
	var fe Errors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// Validate checks every field of v for the given mode and returns nil or Errors.
func Validate(mode Mode, v FormValues) error {
	var in any
	switch mode {
	case ModeCreate:
		in = &createInput{
			Username: v.Username, Email: v.Email, Name: v.Name,
			Password: v.Password, Role: string(v.Role),
		}
	case ModeEdit:
		in = &editInput{
			Username: v.Username, Email: v.Email, Name: v.Name,
			Password: v.Password, Role: string(v.Role), Status: string(v.Status),
		}
	default:
		return fmt.Errorf("unknown form mode %q", mode)
	}

	return check(in)
}

// ValidateUpdate applies the form rules to the fields of a partial update that were sent.
func ValidateUpdate(in domain.UserUpdateData) error {
	in = in.Normalize()
	return check(&updateInput{
		Username: in.Username, Email: in.Email, Name: in.Name,
		Password: in.Password, Role: in.Role, Status: in.Status,
	})
}

func check(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := Errors{}
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		switch field {
		case "role":
			return "role must be selected"
		case "status":
			return "status must be selected"
		}
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "email":
		return "email must be a valid email address"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	}
	return field + " is invalid"
}
