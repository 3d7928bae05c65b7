package service

import "errors"

var (
	// ErrInvalidRequest is returned when request data is invalid or incomplete
	ErrInvalidRequest = errors.New("invalid request")

	// ErrRestaurantNotFound is returned when a restaurant cannot be found
	ErrRestaurantNotFound = errors.New("restaurant not found")

	// ErrDiscountRuleNotFound is returned when a discount rule cannot be found
	ErrDiscountRuleNotFound = errors.New("discount rule not found")

	// ErrBookingNotFound is returned when a booking cannot be found
	ErrBookingNotFound = errors.New("booking not found")

	// ErrInvalidTimeWindow is returned when a rule's time_start is not before time_end
	ErrInvalidTimeWindow = errors.New("time_start must be before time_end")

	// ErrInvalidDateRange is returned when a rule's valid_from is after valid_to
	ErrInvalidDateRange = errors.New("valid_from must not be after valid_to")

	// ErrRuleOverlap is returned when overlapping rules are rejected at write time
	ErrRuleOverlap = errors.New("discount rule overlaps an existing active rule")

	// ErrSlotFull is returned when the requested slot has no free tables
	ErrSlotFull = errors.New("slot is fully booked")

	// ErrBookingInPast is returned when the requested date and time have already passed
	ErrBookingInPast = errors.New("booking time is in the past")

	// ErrCodeConflict is returned when a generated confirmation code already exists
	ErrCodeConflict = errors.New("confirmation code already exists")

	// ErrEmptyCode is returned when QR verification gets a blank code
	ErrEmptyCode = errors.New("confirmation code is required")

	// ErrBookingAlreadyUsed is returned when a completed booking is verified again
	ErrBookingAlreadyUsed = errors.New("booking already used")

	// ErrBookingNotConfirmed is returned when verifying a cancelled or no-show booking
	ErrBookingNotConfirmed = errors.New("booking has status")

	// ErrInvalidCredentials is returned when admin login fails
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrInvalidToken is returned when an admin token cannot be verified
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrInvalidImage is returned for uploads that are not decodable images
	ErrInvalidImage = errors.New("file must be an image")

	// ErrImageTooLarge is returned for uploads above the size limit
	ErrImageTooLarge = errors.New("image is too large")

	// ErrPhotoIndex is returned when deleting a photo index that does not exist
	ErrPhotoIndex = errors.New("photo index out of range")
)
