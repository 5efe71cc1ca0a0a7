// Package validation содержит функции валидации входных данных.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/mmeshcher/shop-pos/internal/model"
)

// ErrInvalid это общий вид ошибок валидации. Проверяется через errors.Is.
var ErrInvalid = errors.New("invalid input")

// MinPasswordLength это минимальная длина нового пароля.
const MinPasswordLength = 6

// Error описывает ошибку валидации конкретного поля.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap позволяет сопоставлять ошибку с ErrInvalid.
func (e *Error) Unwrap() error {
	return ErrInvalid
}

// New создаёт ошибку валидации поля.
func New(field, message string) *Error {
	return &Error{Field: field, Message: message}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

var messages = map[string]string{
	"ProductInput.Name":     "Product name is required.",
	"ProductInput.Price":    "Enter a valid price.",
	"ProductInput.Quantity": "Enter a valid quantity.",
	"UserInput.Name":        "Name is required.",
	"UserInput.Username":    "Username is required.",
	"UserInput.Password":    "Password is required.",
	"UserInput.Role":        "Role must be admin or staff.",
}

func check(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		first := verrs[0]
		msg, ok := messages[first.StructNamespace()]
		if !ok {
			msg = fmt.Sprintf("%s is invalid", first.Field())
		}
		return New(first.Field(), msg)
	}
	return fmt.Errorf("%w: %v", ErrInvalid, err)
}

// Product нормализует и проверяет данные товара: непустое имя, цена больше нуля,
// неотрицательное количество.
func Product(in *model.ProductInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	return check(in)
}

// User нормализует и проверяет данные пользователя.
func User(in *model.UserInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Username = strings.TrimSpace(in.Username)
	if err := check(in); err != nil {
		return err
	}
	if strings.TrimSpace(in.Password) == "" {
		return New("password", messages["UserInput.Password"])
	}
	return nil
}

// Credentials проверяет, что логин и пароль заданы.
func Credentials(username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return New("credentials", "Username and password are required.")
	}
	return nil
}

// NewPassword проверяет новый пароль и его подтверждение.
func NewPassword(next, confirm string) error {
	if len(next) < MinPasswordLength {
		return New("next", fmt.Sprintf("New password must be at least %d characters.", MinPasswordLength))
	}
	if next != confirm {
		return New("confirm", "Passwords do not match.")
	}
	return nil
}

// Sale проверяет количество и способ оплаты продажи.
func Sale(quantitySold int, method model.PaymentMethod) error {
	if quantitySold < 1 {
		return New("quantitySold", "Quantity must be at least 1.")
	}
	if !method.Valid() {
		return New("paymentMethod", "Payment method must be cash or momo.")
	}
	return nil
}
