package domain

import "errors"

// Error kinds reported by the booking core. Callers wrap them with details
// and match with errors.Is.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrItemNotFound      = errors.New("item not found")
	ErrItemNotAvailable  = errors.New("item is not available")
	ErrTemporal          = errors.New("booking end must be after its start")
	ErrSelfBooking       = errors.New("item owner cannot book own item")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrIllegalTransition = errors.New("cannot change status once approved")
	ErrForbidden         = errors.New("no permission for booking")
	ErrUnknownState      = errors.New("unknown state")
)
