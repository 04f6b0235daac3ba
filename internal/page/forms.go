package page

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/opencollective/frontend/internal/domain"
)

// OrderForm is the checkout form. Pre-filled values from the URL are used
// for fields the form leaves empty.
type OrderForm struct {
	FormID        string `form:"formId" json:"formId"`
	Quantity      int    `form:"quantity" json:"quantity" binding:"omitempty,min=1,max=1000"`
	Interval      string `form:"interval" json:"interval" binding:"omitempty,interval"`
	TotalAmount   int    `form:"totalAmount" json:"totalAmount" binding:"omitempty,min=0"`
	PublicMessage string `form:"publicMessage" json:"publicMessage" binding:"max=255"`
	Email         string `form:"email" json:"email" binding:"omitempty,email"`
	FirstName     string `form:"firstName" json:"firstName" binding:"max=128"`
	LastName      string `form:"lastName" json:"lastName" binding:"max=128"`

	// PaymentMethod is the raw payment method as the browser sent it. Only
	// the allow-listed fields reach the API.
	PaymentMethod map[string]interface{} `form:"-" json:"paymentMethod"`
}

// BindMap fills map fields from bracketed form keys like paymentMethod[uuid]
func (f *OrderForm) BindMap(get func(key string) map[string]string) {
	if len(f.PaymentMethod) > 0 {
		return
	}
	fields := get("paymentMethod")
	if len(fields) == 0 {
		return
	}
	f.PaymentMethod = make(map[string]interface{}, len(fields))
	for k, v := range fields {
		f.PaymentMethod[k] = v
	}
}

// EventForm is the create/edit event form
type EventForm struct {
	FormID          string `form:"formId" json:"formId"`
	Name            string `form:"name" json:"name" binding:"required,max=255"`
	Slug            string `form:"slug" json:"slug" binding:"omitempty,max=255"`
	Description     string `form:"description" json:"description" binding:"max=255"`
	LongDescription string `form:"longDescription" json:"longDescription"`
	StartsAt        string `form:"startsAt" json:"startsAt" binding:"required"`
	EndsAt          string `form:"endsAt" json:"endsAt"`
	Timezone        string `form:"timezone" json:"timezone" binding:"omitempty,timezone"`
	LocationName    string `form:"locationName" json:"locationName"`
	LocationAddress string `form:"locationAddress" json:"locationAddress"`
}

// MapBinder is implemented by forms carrying nested maps
type MapBinder interface {
	BindMap(get func(key string) map[string]string)
}

// RegisterValidations adds the custom validation tags used by the forms
func RegisterValidations(v *validator.Validate) error {
	return v.RegisterValidation("interval", validateInterval)
}

// validateInterval accepts what ParseInterval understands: month(ly),
// year(ly), or none
func validateInterval(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	if s == "" || strings.EqualFold(s, "none") {
		return true
	}
	return domain.ParseInterval(s) != domain.IntervalNone
}

// ValidationMessage turns a binding failure into the message shown in the
// error banner
func ValidationMessage(err error) string {
	if err == nil {
		return ""
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return "Invalid form submission"
	}
	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "interval":
		return fmt.Sprintf("%s must be month or year", field)
	case "timezone":
		return fmt.Sprintf("%s must be a valid time zone", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
