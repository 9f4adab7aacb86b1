// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	monthKeyRegex = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)
	isoDateRegex  = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])-(0[1-9]|[12]\d|3[01])$`)
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("frequency", validateFrequency)
		_ = v.RegisterValidation("kind", validateKind)
		_ = v.RegisterValidation("income_source", validateIncomeSource)
		_ = v.RegisterValidation("delete_mode", validateDeleteMode)
		_ = v.RegisterValidation("propagation", validatePropagation)
		_ = v.RegisterValidation("amount_type", validateAmountType)
		_ = v.RegisterValidation("month_key", validateMonthKey)
		_ = v.RegisterValidation("iso_date", validateISODate)
		_ = v.RegisterValidation("anchor_day", validateAnchorDay)
	}
}

func validateFrequency(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "Weekly", "Bi-Weekly", "Semi-Monthly", "Monthly", "Bi-Monthly":
		return true
	}
	return false
}

func validateKind(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "income", "expense":
		return true
	}
	return false
}

func validateIncomeSource(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "Paycheck", "Recurring", "Misc/One time":
		return true
	}
	return false
}

func validateDeleteMode(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "current", "future", "all":
		return true
	}
	return false
}

func validatePropagation(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "current", "all":
		return true
	}
	return false
}

func validateAmountType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "percent", "flat":
		return true
	}
	return false
}

func validateMonthKey(fl validator.FieldLevel) bool {
	return monthKeyRegex.MatchString(fl.Field().String())
}

func validateISODate(fl validator.FieldLevel) bool {
	return isoDateRegex.MatchString(fl.Field().String())
}

func validateAnchorDay(fl validator.FieldLevel) bool {
	day := fl.Field().Int()
	return day >= 1 && day <= 31
}
