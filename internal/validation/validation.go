// Package validation содержит проверку формата входных данных.
//
// Проверки выполняются до любой записи в хранилище; результатом является
// карта "поле -> причина", чтобы вызывающая сторона могла назвать
// конкретное поле с ошибкой.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	hashRe       = regexp.MustCompile(`^[A-Za-z0-9]{32,33}$`)
	extRefRe     = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	productRefRe = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
	emailRe      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	currencyRe   = regexp.MustCompile(`^[A-Z]{3}$`)
	alphaNameRe  = regexp.MustCompile(`^[A-Za-z]+$`)
)

// Errors — набор ошибок валидации: имя поля -> причина.
type Errors map[string]string

// Error собирает все ошибки в одну строку с детерминированным порядком полей.
func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return strings.Join(parts, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Имена полей в ошибках берутся из json-тегов.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	rules := map[string]*regexp.Regexp{
		"idemhash":    hashRe,
		"extref":      extRefRe,
		"productref":  productRefRe,
		"email_basic": emailRe,
		"currency3":   currencyRe,
		"alphaname":   alphaNameRe,
	}
	for tag, re := range rules {
		re := re
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return re.MatchString(fl.Field().String())
		})
	}

	return v
}

// Struct проверяет структуру по тегам validate и возвращает карту ошибок.
// Возвращает nil, если все проверки прошли.
func Struct(s any) Errors {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Errors{"payload": err.Error()}
	}

	res := Errors{}
	for _, fe := range verrs {
		res[fieldName(fe)] = reason(fe)
	}
	return res
}

func fieldName(fe validator.FieldError) string {
	// Namespace вида "req.items[0].quantity" без имени корневой структуры.
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "idemhash":
		return "must be 32-33 alphanumeric characters"
	case "extref":
		return "may contain only letters, digits, '-' and '_'"
	case "productref":
		return "may contain only letters, digits and '-'"
	case "email_basic":
		return "invalid email address"
	case "currency3":
		return "must be a 3-letter uppercase code"
	case "alphaname":
		return "may contain only letters"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "is invalid"
	}
}

// IsHash сообщает, является ли строка корректным токеном идемпотентности.
func IsHash(s string) bool {
	return hashRe.MatchString(s)
}

// IsExternalRef сообщает, является ли строка корректным внешним идентификатором.
func IsExternalRef(s string) bool {
	return extRefRe.MatchString(s)
}

// IsProductRef сообщает, является ли строка корректной ссылкой на товар.
func IsProductRef(s string) bool {
	return productRefRe.MatchString(s)
}

// NormalizeEnum приводит значение перечисления к канонической форме:
// обрезает пробелы и понижает регистр.
func NormalizeEnum(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDateTime разбирает дату-время в одном из поддерживаемых форматов.
func ParseDateTime(s string) (time.Time, error) {
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid datetime %q, use ISO8601 (e.g. 2025-07-20T00:00:00Z)", s)
}
