package model

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
	StatusNoShow    BookingStatus = "no_show"
)

// Valid reports whether s is a known status.
func (s BookingStatus) Valid() bool {
	switch s {
	case StatusConfirmed, StatusCancelled, StatusCompleted, StatusNoShow:
		return true
	}
	return false
}

// Booking represents a table reservation.
type Booking struct {
	ID               int64         `json:"id"`
	RestaurantID     int64         `json:"restaurant_id"`
	RestaurantName   string        `json:"restaurant_name"`
	GuestName        string        `json:"guest_name"`
	GuestPhone       string        `json:"guest_phone"`
	GuestEmail       *string       `json:"guest_email"`
	BookingDatetime  time.Time     `json:"booking_datetime"`
	PartySize        int           `json:"party_size"`
	SpecialRequests  string        `json:"special_requests"`
	DiscountApplied  int           `json:"discount_applied"`
	Status           BookingStatus `json:"status"`
	ConfirmationCode string        `json:"confirmation_code"`
	CompletedAt      *time.Time    `json:"completed_at"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// CreateBookingRequest is the DTO for submitting a reservation.
type CreateBookingRequest struct {
	RestaurantID    int64  `json:"restaurant_id" form:"restaurant_id" validate:"required,gt=0"`
	Date            string `json:"date" form:"date" validate:"required,isodate"`
	Time            string `json:"time" form:"time" validate:"required,clock"`
	PartySize       *int   `json:"party_size" form:"party_size" validate:"required,gte=1,lte=50"`
	GuestName       string `json:"guest_name" form:"guest_name" validate:"required,notblank,max=255"`
	Phone           string `json:"phone" form:"phone" validate:"required,phone"`
	GuestEmail      string `json:"guest_email" form:"guest_email" validate:"omitempty,email,max=255"`
	SpecialRequests string `json:"special_requests" form:"special_requests" validate:"max=1000"`
}

// BookingConfirmation is returned to the guest after a successful submission.
type BookingConfirmation struct {
	ID               int64     `json:"id"`
	ConfirmationCode string    `json:"confirmation_code"`
	RestaurantName   string    `json:"restaurant_name"`
	GuestName        string    `json:"guest_name"`
	BookingDatetime  time.Time `json:"booking_datetime"`
	PartySize        int       `json:"party_size"`
	Phone            string    `json:"phone"`
	GuestEmail       *string   `json:"guest_email"`
	Discount         int       `json:"discount"`
}

// BookingFilter narrows the admin booking list.
type BookingFilter struct {
	Phone        string
	RestaurantID int64
	Status       BookingStatus
	Date         *Date
	Limit        int
}

// UpdateStatusRequest is the DTO for changing a booking's status.
type UpdateStatusRequest struct {
	Status string `json:"status" form:"status" validate:"required,bookingstatus"`
}

// VerifyCodeRequest is the DTO for QR check-in.
type VerifyCodeRequest struct {
	Code string `json:"code" form:"code" validate:"required,notblank,max=16"`
}

// VerifyResult is the outcome of a successful QR check-in.
type VerifyResult struct {
	Booking  Booking `json:"booking"`
	Discount int     `json:"discount"`
}
