package model

import "time"

// DiscountRule is a restaurant-configured time window and date range during
// which a percentage discount applies. MaxTables is the slot capacity; zero
// means the configured default.
type DiscountRule struct {
	ID           int64     `json:"id"`
	RestaurantID int64     `json:"restaurant_id"`
	TimeStart    string    `json:"time_start"`
	TimeEnd      string    `json:"time_end"`
	Discount     int       `json:"discount"`
	Description  string    `json:"description"`
	ValidFrom    Date      `json:"valid_from"`
	ValidTo      Date      `json:"valid_to"`
	MaxTables    int       `json:"max_tables"`
	DayOfWeek    *int      `json:"day_of_week"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// DiscountRuleRequest is the DTO for creating or replacing a discount rule.
type DiscountRuleRequest struct {
	RestaurantID int64  `json:"restaurant_id" form:"restaurant_id" validate:"required,gt=0"`
	Discount     *int   `json:"discount" form:"discount" validate:"required,gte=0,lte=100"`
	TimeStart    string `json:"time_start" form:"time_start" validate:"required,clock"`
	TimeEnd      string `json:"time_end" form:"time_end" validate:"required,clock"`
	ValidFrom    string `json:"valid_from" form:"valid_from" validate:"required,isodate"`
	ValidTo      string `json:"valid_to" form:"valid_to" validate:"required,isodate"`
	Description  string `json:"description" form:"description" validate:"max=255"`
	MaxTables    int    `json:"max_tables" form:"max_tables" validate:"gte=0,lte=1000"`
	DayOfWeek    *int   `json:"day_of_week" form:"day_of_week" validate:"omitempty,gte=0,lte=6"`
	IsActive     *bool  `json:"is_active" form:"is_active"`
}

// DefaultTimeslotRequest is the DTO for upserting a restaurant's default discount rule.
type DefaultTimeslotRequest struct {
	Discount  *int   `json:"discount" form:"discount" validate:"required,gte=0,lte=100"`
	TimeStart string `json:"time_start" form:"time_start" validate:"required,clock"`
	TimeEnd   string `json:"time_end" form:"time_end" validate:"required,clock"`
	ValidFrom string `json:"valid_from" form:"valid_from" validate:"required,isodate"`
	ValidTo   string `json:"valid_to" form:"valid_to" validate:"required,isodate"`
	MaxTables *int   `json:"max_tables" form:"max_tables" validate:"omitempty,gte=0,lte=1000"`
}
