package model

import "time"

// DashboardStats summarizes booking activity for staff.
type DashboardStats struct {
	TodayCount        int          `json:"today_count"`
	WeekCount         int          `json:"week_count"`
	TodayGuests       int          `json:"today_guests"`
	ActiveRestaurants int          `json:"active_restaurants"`
	Restaurants       []Restaurant `json:"restaurants"`
}

// Category is a restaurant category with the number of restaurants in it.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon,omitempty"`
	Count int    `json:"count"`
}

// LoginRequest is the DTO for admin login.
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required,notblank,max=64"`
	Password string `json:"password" form:"password" validate:"required,max=128"`
}

// Token is an issued admin access token.
type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
