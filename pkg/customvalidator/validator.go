package customvalidator

import (
	"github.com/go-playground/validator/v10"

	"rental-system/internal/workflow"
)

// RegisterCustomValidations регистрирует доменные правила валидации
// в переданном экземпляре валидатора.
func RegisterCustomValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("order_status", isKnownOrderStatus); err != nil {
		return err
	}
	if err := v.RegisterValidation("workflow_role", isKnownRole); err != nil {
		return err
	}
	if err := v.RegisterValidation("device_type", isKnownDeviceType); err != nil {
		return err
	}
	return nil
}

func isKnownOrderStatus(fl validator.FieldLevel) bool {
	return workflow.OrderStatus(fl.Field().String()).IsValid()
}

func isKnownRole(fl validator.FieldLevel) bool {
	return workflow.Role(fl.Field().String()).IsValid()
}

func isKnownDeviceType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "", "mobile", "desktop", "tablet":
		return true
	}
	return false
}
