package finance

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/backoffice/financeiro/internal/domain/shared"
	"github.com/backoffice/financeiro/internal/domain/shared/valueobject"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Use JSON tag names for field names in errors
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateInput checks in against its validate tags. The first failing
// field is returned as a *shared.ValidationError.
func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return shared.NewValidationError(fe.Field(), validationMessage(fe))
	}
	return fmt.Errorf("validate input: %w", err)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "campo obrigatório"
	case "datetime":
		return "data inválida, use AAAA-MM-DD"
	case "oneof":
		return "deve ser um de: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		if fe.Kind() == reflect.String {
			return "deve ter ao menos " + fe.Param() + " caracteres"
		}
		return "deve ser no mínimo " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return "deve ter no máximo " + fe.Param() + " caracteres"
		}
		return "deve ser no máximo " + fe.Param()
	case "email":
		return "e-mail inválido"
	case "hexcolor":
		return "cor inválida"
	default:
		return "valor inválido"
	}
}

// parseAmount parses a typed currency amount that must be positive
func parseAmount(field, typed string) (decimal.Decimal, error) {
	amount := valueobject.ParseCurrency(typed)
	if !amount.IsPositive() {
		return decimal.Zero, shared.NewValidationError(field, "valor deve ser maior que zero")
	}
	return amount, nil
}

// optionalID renders an optional id as a column value
func optionalID(id *string) any {
	if id == nil {
		return nil
	}
	return *id
}

func optionalInt(n *int) any {
	if n == nil {
		return nil
	}
	return *n
}

func optionalDate(date string) any {
	if date == "" {
		return nil
	}
	return date
}

// checkInstallments rejects a current installment past the total
func checkInstallments(current, total *int) error {
	if current != nil && total != nil && *current > *total {
		return shared.NewValidationError("parcela_atual", "parcela atual maior que o total de parcelas")
	}
	return nil
}
