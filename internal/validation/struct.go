package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/okalab/okalab-backend/internal/pkg/apperror"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// Validator общий экземпляр с правилами для денежных полей.
func Validator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
		_ = validate.RegisterValidation("money", validateMoney)
		_ = validate.RegisterValidation("percent", validatePercent)
	})
	return validate
}

// Struct проверяет структуру по тегам validate и возвращает VALIDATION_ERROR.
func Struct(v interface{}) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.Wrap(err, apperror.ErrCodeValidation, "некорректные данные")
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return apperror.New(apperror.ErrCodeValidation, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := toSnake(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s обязательно", field)
	case "min", "gte":
		return fmt.Sprintf("%s должно быть не меньше %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s должно быть не больше %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s должно быть одним из: %s", field, fe.Param())
	case "money":
		return fmt.Sprintf("%s должно быть неотрицательной суммой с точностью до копеек", field)
	case "percent":
		return fmt.Sprintf("%s должно быть от 0 до 100", field)
	}
	return fmt.Sprintf("%s некорректно", field)
}

// decimalValue отдаёт валидатору строковое представление суммы.
func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.String()
	}
	return nil
}

func validateMoney(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return !d.IsNegative() && d.Equal(d.Round(2))
}

func validatePercent(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return !d.IsNegative() && d.LessThanOrEqual(decimal.NewFromInt(100))
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
