package client

import "time"

// Booking statuses reported by the API.
const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
	StatusNoShow    = "no_show"
)

// Booking is a table reservation as returned by the API.
type Booking struct {
	ID               int64      `json:"id"`
	RestaurantID     int64      `json:"restaurant_id"`
	RestaurantName   string     `json:"restaurant_name"`
	GuestName        string     `json:"guest_name"`
	GuestPhone       string     `json:"guest_phone"`
	GuestEmail       *string    `json:"guest_email"`
	BookingDatetime  time.Time  `json:"booking_datetime"`
	PartySize        int        `json:"party_size"`
	SpecialRequests  string     `json:"special_requests"`
	DiscountApplied  int        `json:"discount_applied"`
	Status           string     `json:"status"`
	ConfirmationCode string     `json:"confirmation_code"`
	CompletedAt      *time.Time `json:"completed_at"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Slot is a bookable time with its discount and remaining capacity.
type Slot struct {
	Time      string `json:"time"`
	Discount  int    `json:"discount"`
	Available bool   `json:"available"`
	Capacity  int    `json:"capacity"`
	Booked    int    `json:"booked"`
}

// DiscountRule is a discount window attached to a restaurant. Dates are
// YYYY-MM-DD, times HH:MM[:SS].
type DiscountRule struct {
	ID          int64  `json:"id"`
	TimeStart   string `json:"time_start"`
	TimeEnd     string `json:"time_end"`
	Discount    int    `json:"discount"`
	Description string `json:"description"`
	ValidFrom   string `json:"valid_from"`
	ValidTo     string `json:"valid_to"`
	MaxTables   int    `json:"max_tables"`
	DayOfWeek   *int   `json:"day_of_week"`
	IsActive    bool   `json:"is_active"`
}

// Restaurant is a restaurant listing.
type Restaurant struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Rating      float64  `json:"rating"`
	AvgCheck    int      `json:"avg_check"`
	Address     string   `json:"address"`
	Phone       string   `json:"phone"`
	Cuisine     []string `json:"cuisine"`
	Description string   `json:"description"`
	Photos      []string `json:"photos"`
	IsActive    bool     `json:"is_active"`
}

// RestaurantListItem is a restaurant with the discount rules that apply today.
type RestaurantListItem struct {
	Restaurant
	Timeslots []DiscountRule `json:"timeslots"`
}

// VerifyResult is the outcome of a QR check-in.
type VerifyResult struct {
	Booking  Booking `json:"booking"`
	Discount int     `json:"discount"`
}

// Token is an admin access token.
type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type verifyRequest struct {
	Code string `json:"code"`
}
