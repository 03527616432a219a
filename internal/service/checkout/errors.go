package checkout

import (
	"errors"
	"fmt"

	"popup-checkout/internal/domain"
)

var (
	// ErrUnrecognizedPaymentStatus means the oracle answered with a payment
	// status this service does not know how to complete.
	ErrUnrecognizedPaymentStatus = errors.New("unrecognized payment status")
	// ErrSubmitInProgress rejects a second submission while one is running.
	ErrSubmitInProgress = errors.New("payment submission already in progress")
	// ErrCheckoutChanged means the cart was edited while its payment was being
	// created; the payment is not applied and the order has to be submitted again.
	ErrCheckoutChanged = errors.New("checkout changed while the payment was being created")

	ErrNotAtConfirm           = fmt.Errorf("%w: review the order on the confirm step before paying", domain.ErrValidation)
	ErrApplicationNotAccepted = fmt.Errorf("%w: application is not accepted", domain.ErrValidation)
	ErrApplicationNoAttendees = fmt.Errorf("%w: application has no attendees", domain.ErrValidation)
	ErrInvalidReturnURL       = fmt.Errorf("%w: invalid return url", domain.ErrValidation)
)
