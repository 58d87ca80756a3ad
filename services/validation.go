package services

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/evea/evea_backend/apperrors"
	"github.com/evea/evea_backend/models"
	"github.com/evea/evea_backend/utils"
)

var (
	panPattern     = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	ifscPattern    = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
	gstinPattern   = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)
	pincodePattern = regexp.MustCompile(`^[1-9][0-9]{5}$`)
)

const (
	minPasswordLength = 8
	// bcrypt ignores everything past 72 bytes
	maxPasswordLength = 72
)

var ruleMessages = map[string]string{
	"required":  "is required",
	"email":     "must be a valid email address",
	"phone10":   "must be a 10 digit phone number",
	"pan":       "must match the PAN format ABCDE1234F",
	"ifsc":      "must match the IFSC format ABCD0123456",
	"gstin":     "must be a valid GSTIN",
	"pincode":   "must be a 6 digit pincode",
	"category":  "must be a supported vendor category",
	"eventtype": "must be a supported event type",
	"url":       "must be a valid URL",
	"numeric":   "must contain digits only",
	"oneof":     "has an unsupported value",
	"eqfield":   "does not match",
	"gt":        "must be greater than zero",
	"gte":       "must not be negative",
	"capacity":  "minimum must not exceed maximum",
	"unique":    "must not contain duplicates",
}

// Validator wraps go-playground/validator with the registration rules
// and reports failures as apperrors.ValidationError keyed by JSON path.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("pan", matches(panPattern))
	_ = v.RegisterValidation("ifsc", matches(ifscPattern))
	_ = v.RegisterValidation("gstin", matches(gstinPattern))
	_ = v.RegisterValidation("pincode", matches(pincodePattern))
	_ = v.RegisterValidation("phone10", func(fl validator.FieldLevel) bool {
		_, err := utils.NormalizePhone(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return models.VendorCategory(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("eventtype", func(fl validator.FieldLevel) bool {
		return models.EventType(fl.Field().String()).IsValid()
	})

	v.RegisterStructValidation(credentialsRules, models.Credentials{})
	v.RegisterStructValidation(guestCapacityRules, models.GuestCapacity{})

	return &Validator{validate: v}
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

func credentialsRules(sl validator.StructLevel) {
	c := sl.Current().Interface().(models.Credentials)
	switch c.AuthMethod {
	case models.AuthMethodLocal:
		if len(c.Password) < minPasswordLength || len(c.Password) > maxPasswordLength {
			sl.ReportError(c.Password, "password", "Password", "password", "")
		} else if c.ConfirmPassword != c.Password {
			sl.ReportError(c.ConfirmPassword, "confirmPassword", "ConfirmPassword", "eqfield", "password")
		}
	case models.AuthMethodGoogle:
		if c.GoogleIDToken == "" {
			sl.ReportError(c.GoogleIDToken, "googleIdToken", "GoogleIDToken", "required", "")
		}
	}
}

func guestCapacityRules(sl validator.StructLevel) {
	g := sl.Current().Interface().(models.GuestCapacity)
	if g.Min > 0 && g.Max > 0 && g.Min > g.Max {
		sl.ReportError(g.Min, "min", "Min", "capacity", "")
	}
}

// Struct validates s and returns nil or a *apperrors.ValidationError.
// prefix replaces the top-level struct name in field paths.
func (v *Validator) Struct(prefix string, s interface{}) error {
	fields := v.Fields(prefix, s)
	if len(fields) == 0 {
		return nil
	}
	return &apperrors.ValidationError{Fields: fields}
}

// Fields returns every failing field of s so callers can merge several checks
func (v *Validator) Fields(prefix string, s interface{}) []apperrors.FieldError {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []apperrors.FieldError{{Field: prefix, Rule: "invalid", Message: err.Error()}}
	}

	out := make([]apperrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, apperrors.FieldError{
			Field:   fieldPath(prefix, fe.Namespace()),
			Rule:    fe.Tag(),
			Message: describe(fe.Tag(), fe.Param()),
		})
	}
	return out
}

// Var validates a single value against tag
func (v *Validator) Var(field string, value interface{}, tag string) []apperrors.FieldError {
	err := v.validate.Var(value, tag)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return []apperrors.FieldError{{Field: field, Rule: "invalid", Message: err.Error()}}
	}
	return []apperrors.FieldError{{Field: field, Rule: verrs[0].Tag(), Message: describe(verrs[0].Tag(), verrs[0].Param())}}
}

// fieldPath drops the root struct name that the validator puts in front of every namespace
func fieldPath(prefix, namespace string) string {
	var rest string
	if idx := strings.Index(namespace, "."); idx >= 0 {
		rest = namespace[idx+1:]
	}
	switch {
	case prefix == "":
		return rest
	case rest == "":
		return prefix
	default:
		return prefix + "." + rest
	}
}

func describe(tag, param string) string {
	switch tag {
	case "min":
		return "must have at least " + param + " characters or items"
	case "max":
		return "must have at most " + param + " characters or items"
	case "password":
		return "must be between 8 and 72 characters"
	case "lte":
		return "must be at most " + param
	}
	if msg, ok := ruleMessages[tag]; ok {
		return msg
	}
	return "is invalid"
}

func fieldError(field, rule string) apperrors.FieldError {
	return apperrors.FieldError{Field: field, Rule: rule, Message: describe(rule, "")}
}

func validationError(fields ...apperrors.FieldError) error {
	if len(fields) == 0 {
		return nil
	}
	return &apperrors.ValidationError{Fields: fields}
}
