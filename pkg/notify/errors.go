package notify

import "errors"

var (
	// ErrDeliveryFailed indicates a notification could not be delivered.
	ErrDeliveryFailed = errors.New("notification delivery failed")

	// ErrNoRecipient indicates the recipient could not be resolved to a user.
	ErrNoRecipient = errors.New("notification recipient could not be resolved")
)
