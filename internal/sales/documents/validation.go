package documents

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/odyssey-crm/internal/billing/totals"
	"github.com/odyssey-erp/odyssey-crm/internal/platform/httpx"
)

// ValidationError lists request fields that failed validation, keyed by their
// JSON path.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	return fmt.Sprintf("%s: %s", httpx.ErrValidation, strings.Join(keys, ", "))
}

func (e *ValidationError) Unwrap() error {
	return httpx.ErrValidation
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateRequest checks the request shape and the rules struct tags cannot
// express. Dates are returned parsed when valid.
func validateRequest(v *validator.Validate, req DocumentRequest) (issue, due time.Time, err error) {
	fields := make(map[string]string)
	if verr := v.Struct(req); verr != nil {
		errs, ok := verr.(validator.ValidationErrors)
		if !ok {
			return issue, due, verr
		}
		for _, fe := range errs {
			fields[fieldPath(fe.Namespace())] = describe(fe)
		}
	}

	if _, bad := fields["issue_date"]; !bad {
		issue, _ = time.Parse(dateLayout, req.IssueDate)
	}
	if _, bad := fields["due_date"]; !bad {
		due, _ = time.Parse(dateLayout, req.DueDate)
	}
	if !issue.IsZero() && !due.IsZero() && due.Before(issue) {
		fields["due_date"] = "must not be before issue_date"
	}
	if req.Discount.Type == totals.DiscountPercentage && req.Discount.Value.Float64() > 100 {
		fields["discount.value"] = "must be at most 100 for a percentage discount"
	}

	if len(fields) > 0 {
		return issue, due, &ValidationError{Fields: fields}
	}
	return issue, due, nil
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must contain at least " + fe.Param() + " item(s)"
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "len":
		return "must be exactly " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "datetime":
		return "must be a date formatted as YYYY-MM-DD"
	case "email":
		return "must be a valid email address"
	default:
		return fe.Error()
	}
}
