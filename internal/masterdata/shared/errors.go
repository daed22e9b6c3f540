package shared

import (
	"fmt"

	"github.com/odyssey-erp/odyssey-crm/internal/platform/httpx"
)

var (
	ErrNotFound   = httpx.ErrNotFound
	ErrDuplicate  = httpx.ErrDuplicate
	ErrValidation = httpx.ErrValidation
	ErrInvalidID  = fmt.Errorf("%w: invalid ID", httpx.ErrValidation)
)
