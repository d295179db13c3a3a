package checkout

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/go-playground/validator/v10"
)

// CustomerInfo is the delivery form. Note is optional.
type CustomerInfo struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone" validate:"required"`
	City    string `json:"city" validate:"required"`
	Address string `json:"address" validate:"required"`
	Note    string `json:"note"`
}

// Trimmed returns a copy with surrounding whitespace removed.
func (c CustomerInfo) Trimmed() CustomerInfo {
	return CustomerInfo{
		Name:    strings.TrimSpace(c.Name),
		Phone:   strings.TrimSpace(c.Phone),
		City:    strings.TrimSpace(c.City),
		Address: strings.TrimSpace(c.Address),
		Note:    strings.TrimSpace(c.Note),
	}
}

// ShippingAddress joins the street address and the city.
func (c CustomerInfo) ShippingAddress() string {
	return c.Address + ", " + c.City
}

// Profile is the authenticated customer as stored by the storefront.
type Profile struct {
	ID      *int64 `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	City    string `json:"city"`
	Address string `json:"address"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// Validate checks the required fields after trimming. The error carries
// {field: message} details.
func (c CustomerInfo) Validate() error {
	err := validate.Struct(c.Trimmed())
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
	}
	details := make(map[string]string, len(errs))
	fields := make([]string, 0, len(errs))
	for _, fieldErr := range errs {
		details[fieldErr.Field()] = "is required"
		fields = append(fields, fieldErr.Field())
	}
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("missing required fields: %s", strings.Join(fields, ", "))).WithDetails(details)
}

// Form is the checkout form state. It may be torn down while a submission is in
// flight; after Detach, updates and resets are ignored.
type Form struct {
	mu       sync.Mutex
	info     CustomerInfo
	detached bool
}

func NewForm(info CustomerInfo) *Form {
	return &Form{info: info}
}

func (f *Form) Info() CustomerInfo {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.info
}

func (f *Form) Set(info CustomerInfo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.detached {
		return
	}
	f.info = info
}

// Prefill copies profile values into fields the customer left empty.
func (f *Form) Prefill(p *Profile) {
	if p == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.detached {
		return
	}
	fillEmpty(&f.info.Name, p.Name)
	fillEmpty(&f.info.Phone, p.Phone)
	fillEmpty(&f.info.City, p.City)
	fillEmpty(&f.info.Address, p.Address)
}

// ResetTransient clears per-order fields.
func (f *Form) ResetTransient() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.detached {
		return
	}
	f.info.Note = ""
}

func (f *Form) Detach() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detached = true
}

func (f *Form) Detached() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.detached
}

func fillEmpty(dst *string, value string) {
	if strings.TrimSpace(*dst) == "" {
		*dst = strings.TrimSpace(value)
	}
}
