package coach

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/comitanigiacomo/kanso-rise/internal/core/domain"
)

// ErrInvalidResponse matches every *ParseError via errors.Is.
var ErrInvalidResponse = errors.New("invalid response")

type ParseErrorKind string

const (
	KindDecode     ParseErrorKind = "decode"
	KindValidation ParseErrorKind = "validation"
)

// ParseError reports model output that is not usable: either it is not JSON
// of the expected shape, or a field breaks a rule.
type ParseError struct {
	Kind   ParseErrorKind
	Field  string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrInvalidResponse, e.Reason)
	}
	return fmt.Sprintf("%s: %s %s", ErrInvalidResponse, e.Field, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrInvalidResponse }

var (
	openingFence = regexp.MustCompile("^```[A-Za-z0-9_+-]*[ \t]*\r?\n?")
	closingFence = regexp.MustCompile("\r?\n?```$")
)

// stripCodeFence removes one markdown fence pair wrapping the whole text.
// Fences elsewhere are left in place for the decoder to reject.
func stripCodeFence(text string) string {
	cleaned := strings.TrimSpace(text)
	loc := openingFence.FindStringIndex(cleaned)
	if loc == nil {
		return cleaned
	}
	cleaned = cleaned[loc[1]:]
	return closingFence.ReplaceAllString(cleaned, "")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// integral accepts 1.0 and 1e0 as well as 1.
	_ = v.RegisterValidation("integral", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return f == math.Trunc(f) && math.Abs(f) <= math.MaxInt32
	})
	return v
}

type habitStepPayload struct {
	Step  string   `json:"step" validate:"required"`
	Order *float64 `json:"order" validate:"required,integral"`
}

type habitStackPayload struct {
	HabitStack []habitStepPayload `json:"habitStack" validate:"required,min=3,max=7,dive"`
	Rationale  *string            `json:"rationale" validate:"required"`
}

type reflectionPayload struct {
	Summary       string   `json:"summary" validate:"required"`
	Insights      []string `json:"insights" validate:"required"`
	Suggestions   []string `json:"suggestions" validate:"required"`
	Encouragement string   `json:"encouragement" validate:"required"`
}

// ParseHabitStackResponse decodes a habit stack suggestion. Any broken field
// fails the whole parse.
func ParseHabitStackResponse(text string) (*domain.HabitStackResponse, error) {
	var payload habitStackPayload
	if err := decode(text, &payload); err != nil {
		return nil, err
	}

	resp := &domain.HabitStackResponse{
		HabitStack: make([]domain.HabitStep, 0, len(payload.HabitStack)),
		Rationale:  *payload.Rationale,
	}
	for _, s := range payload.HabitStack {
		resp.HabitStack = append(resp.HabitStack, domain.HabitStep{Step: s.Step, Order: int(*s.Order)})
	}

	return resp, nil
}

func ParseWeeklyReflectionResponse(text string) (*domain.WeeklyReflectionResponse, error) {
	var payload reflectionPayload
	if err := decode(text, &payload); err != nil {
		return nil, err
	}

	return &domain.WeeklyReflectionResponse{
		Summary:       payload.Summary,
		Insights:      payload.Insights,
		Suggestions:   payload.Suggestions,
		Encouragement: payload.Encouragement,
	}, nil
}

func decode(text string, payload any) error {
	if err := json.Unmarshal([]byte(stripCodeFence(text)), payload); err != nil {
		return decodeError(err)
	}

	if err := validate.Struct(payload); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return validationError(fieldErrs[0])
		}
		return &ParseError{Kind: KindValidation, Reason: err.Error(), Err: err}
	}

	return nil
}

func decodeError(err error) *ParseError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "response"
		}
		return &ParseError{
			Kind:   KindDecode,
			Field:  field,
			Reason: fmt.Sprintf("must be %s (got %s)", jsonKind(typeErr.Type), typeErr.Value),
			Err:    err,
		}
	}

	return &ParseError{Kind: KindDecode, Reason: "not valid JSON: " + err.Error(), Err: err}
}

func validationError(fe validator.FieldError) *ParseError {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	var reason string
	switch {
	case fe.Tag() == "integral":
		reason = "must be an integer"
	case fe.Tag() == "min" || fe.Tag() == "max":
		reason = fmt.Sprintf("must have %d-%d items (got %d)",
			domain.MinHabitStackSize, domain.MaxHabitStackSize, reflect.ValueOf(fe.Value()).Len())
	case fe.Kind() == reflect.Slice:
		reason = "must be an array"
	case fe.Kind() == reflect.String:
		reason = "must be a non-empty string"
	case fe.Kind() == reflect.Ptr && fe.Type().Elem().Kind() == reflect.String:
		reason = "must be a string"
	case fe.Kind() == reflect.Ptr:
		reason = "must be a number"
	default:
		reason = "failed on the '" + fe.Tag() + "' rule"
	}

	return &ParseError{Kind: KindValidation, Field: field, Reason: reason, Err: fe}
}

func jsonKind(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Slice:
		return "an array"
	case reflect.String:
		return "a string"
	case reflect.Int, reflect.Int64:
		return "an integer"
	case reflect.Float64:
		return "a number"
	case reflect.Struct, reflect.Map:
		return "an object"
	}
	return t.String()
}
