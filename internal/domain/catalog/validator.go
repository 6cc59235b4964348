package catalog

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/shared"
)

// ValidationError reports a normalized record that failed schema validation.
// Such records are dropped and counted, never partially persisted.
type ValidationError struct {
	SKU    string
	Fields []string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	sku := e.SKU
	if sku == "" {
		sku = "<no sku>"
	}
	return fmt.Sprintf("invalid record %s: missing or invalid %s", sku, strings.Join(e.Fields, ", "))
}

// Unwrap lets errors.Is(err, shared.ErrInvalidInput) match
func (e *ValidationError) Unwrap() error {
	return shared.ErrInvalidInput
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func schemaValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the required fields of a normalized product (sku, name,
// brand, supplier) and the non-negative inventory invariant.
func Validate(p *UnifiedProduct) error {
	if p == nil {
		return &ValidationError{Fields: []string{"product"}}
	}
	return toValidationError(p.SKU, schemaValidator().Struct(p))
}

// ValidateVariant checks a normalized variant before it is persisted
func ValidateVariant(v *ProductVariant) error {
	if v == nil {
		return &ValidationError{Fields: []string{"variant"}}
	}
	return toValidationError(v.SKU, schemaValidator().Struct(v))
}

func toValidationError(sku string, err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{SKU: sku, Fields: []string{err.Error()}}
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, strings.ToLower(fe.Field()))
	}
	return &ValidationError{SKU: sku, Fields: fields}
}
