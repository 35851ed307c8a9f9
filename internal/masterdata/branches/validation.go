package branches

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

func (s *Service) validate(b Branch) error {
	err := s.validator.Struct(b)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("%w: %v", ErrInvalidBranch, err)
	}
	fields := make([]string, 0, len(fieldErrs))
	for _, fieldErr := range fieldErrs {
		fields = append(fields, strings.ToLower(fieldErr.Field()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidBranch, strings.Join(fields, ", "))
}
