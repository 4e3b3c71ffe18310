package greeting

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"greeting-card-go/internal/model"
)

var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Input carries the user supplied fields of a greeting
type Input struct {
	SenderName    string `json:"senderName" validate:"required"`
	SenderEmail   string `json:"senderEmail" validate:"required,emailshape"`
	RecipientName string `json:"recipientName" validate:"required"`
	Message       string `json:"message" validate:"required"`
	Occasion      string `json:"occasion" validate:"omitempty,occasion"`
}

// Normalize trims every field and lowercases the email
func (in Input) Normalize() Input {
	return Input{
		SenderName:    strings.TrimSpace(in.SenderName),
		SenderEmail:   strings.ToLower(strings.TrimSpace(in.SenderEmail)),
		RecipientName: strings.TrimSpace(in.RecipientName),
		Message:       strings.TrimSpace(in.Message),
		Occasion:      strings.TrimSpace(in.Occasion),
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(v, "emailshape", func(fl validator.FieldLevel) bool {
		return emailShape.MatchString(fl.Field().String())
	})
	mustRegister(v, "occasion", func(fl validator.FieldLevel) bool {
		return model.Occasion(fl.Field().String()).Valid()
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// Validate checks a normalized input and reports every violation at once
func Validate(in Input) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	verr := &ValidationError{}
	for _, fe := range fieldErrs {
		verr.Violations = append(verr.Violations, Violation{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: violationMessage(fe),
		})
	}
	return verr
}

func violationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "emailshape":
		return "Invalid email address"
	case "occasion":
		names := make([]string, len(model.Occasions))
		for i, o := range model.Occasions {
			names[i] = string(o)
		}
		return fmt.Sprintf("occasion must be one of: %s", strings.Join(names, ", "))
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
