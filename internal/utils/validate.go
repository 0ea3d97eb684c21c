package utils

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate проверяет структуру запроса по тегам validate и
// возвращает сообщение о первом ошибочном поле
func Validate(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return fmt.Errorf("поле %s обязательно", fe.Field())
		case "email":
			return fmt.Errorf("поле %s должно содержать email", fe.Field())
		case "min":
			return fmt.Errorf("поле %s слишком короткое (минимум %s)", fe.Field(), fe.Param())
		case "max":
			return fmt.Errorf("поле %s слишком длинное (максимум %s)", fe.Field(), fe.Param())
		case "oneof":
			return fmt.Errorf("поле %s должно быть одним из: %s", fe.Field(), fe.Param())
		case "uuid":
			return fmt.Errorf("поле %s должно быть UUID", fe.Field())
		default:
			return fmt.Errorf("поле %s некорректно", fe.Field())
		}
	}
	return err
}
