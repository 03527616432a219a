package checkout

import (
	"fmt"

	"popup-checkout/internal/domain"
)

var (
	ErrNoPassesSelected    = fmt.Errorf("%w: select at least one pass to continue", domain.ErrValidation)
	ErrStepUnavailable     = fmt.Errorf("%w: step is not available", domain.ErrValidation)
	ErrUnknownStep         = fmt.Errorf("%w: unknown step", domain.ErrValidation)
	ErrTerminalStep        = fmt.Errorf("%w: checkout already completed", domain.ErrValidation)
	ErrSuccessNeedsPayment = fmt.Errorf("%w: success requires a completed payment", domain.ErrValidation)
	ErrInvalidPromoFormat  = fmt.Errorf("%w: invalid promo code format", domain.ErrValidation)
	ErrPatronBelowMinimum  = fmt.Errorf("%w: contribution is below the minimum", domain.ErrValidation)
	ErrInvalidAmount       = fmt.Errorf("%w: amount must be a whole non-negative number", domain.ErrValidation)
	ErrUnknownProduct      = fmt.Errorf("%w: product is not offered", domain.ErrValidation)
	ErrUnknownItemKind     = fmt.Errorf("%w: unknown item kind", domain.ErrValidation)
)
