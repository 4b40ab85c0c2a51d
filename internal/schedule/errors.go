package schedule

import "errors"

var (
	ErrInvalidView      = errors.New("invalid calendar view")
	ErrInvalidDirection = errors.New("invalid navigation direction")
	ErrUnknownField     = errors.New("unknown booking field")
	ErrFieldType        = errors.New("invalid value for booking field")
	ErrCostIndex        = errors.New("cost item index out of range")
	ErrInvalidDraft     = errors.New("booking draft failed validation")
	ErrPersistence      = errors.New("failed to save booking")
)
