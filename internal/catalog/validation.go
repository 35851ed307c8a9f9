package catalog

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/omnimarket/omnimarket/internal/units"
)

func (s *Service) validate(p Product) error {
	if err := s.validator.Struct(p); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			fields := make([]string, 0, len(fieldErrs))
			for _, fieldErr := range fieldErrs {
				fields = append(fields, fmt.Sprintf("%s %s", fieldErr.Field(), fieldErr.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidProduct, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidProduct, err)
	}
	if p.BasePrice.IsNegative() {
		return fmt.Errorf("%w: basePrice must be >= 0", ErrInvalidProduct)
	}
	return units.Validate(p.BaseUnit, p.Conversions)
}
