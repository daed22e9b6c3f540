package taxes

import (
	"fmt"
	"strings"

	"github.com/odyssey-erp/odyssey-crm/internal/masterdata/shared"
)

func (s *Service) validate(t Tax) error {
	if strings.TrimSpace(t.Code) == "" {
		return fmt.Errorf("%w: tax code is required", shared.ErrValidation)
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: tax name is required", shared.ErrValidation)
	}
	if t.Rate < 0 || t.Rate > 100 {
		return fmt.Errorf("%w: tax rate must be between 0 and 100", shared.ErrValidation)
	}
	return nil
}
