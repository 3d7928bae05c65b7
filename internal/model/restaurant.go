package model

import "time"

// Restaurant represents a restaurant listing.
type Restaurant struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Rating      float64   `json:"rating"`
	AvgCheck    int       `json:"avg_check"`
	Address     string    `json:"address"`
	Phone       string    `json:"phone"`
	Cuisine     []string  `json:"cuisine"`
	Description string    `json:"description"`
	Photos      []string  `json:"photos"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RestaurantListItem is a restaurant enriched with the discount rules that
// apply today.
type RestaurantListItem struct {
	Restaurant
	Timeslots  []DiscountRule `json:"timeslots"`
	Popularity int            `json:"popularity"`
}

// RestaurantFilter narrows the restaurant list.
type RestaurantFilter struct {
	Category string
	Limit    int
}

// RestaurantSearch holds the search query parameters.
type RestaurantSearch struct {
	Query       string
	Cuisine     string
	Category    string
	DiscountMin *int
	AvgCheckMin *int
	AvgCheckMax *int
	Limit       int
}

// CreateRestaurantRequest is the DTO for creating a restaurant together with
// its default discount rule.
type CreateRestaurantRequest struct {
	Name        string   `json:"name" form:"name" validate:"required,notblank,max=255"`
	Category    string   `json:"category" form:"category" validate:"required,notblank,max=64"`
	Rating      *float64 `json:"rating" form:"rating" validate:"required,gte=0,lte=5"`
	AvgCheck    *int     `json:"avg_check" form:"avg_check" validate:"required,gte=0"`
	Address     string   `json:"address" form:"address" validate:"required,notblank,max=500"`
	Phone       string   `json:"phone" form:"phone" validate:"required,phone"`
	Cuisine     []string `json:"cuisine" form:"cuisine" validate:"dive,notblank,max=64"`
	Description string   `json:"description" form:"description" validate:"max=2000"`
	Discount    *int     `json:"discount" form:"discount" validate:"required,gte=0,lte=100"`
	TimeStart   string   `json:"time_start" form:"time_start" validate:"required,clock"`
	TimeEnd     string   `json:"time_end" form:"time_end" validate:"required,clock"`
}

// UpdateRestaurantRequest is the DTO for a partial restaurant update.
// Nil fields are left unchanged.
type UpdateRestaurantRequest struct {
	Name        *string   `json:"name" validate:"omitempty,notblank,max=255"`
	Category    *string   `json:"category" validate:"omitempty,notblank,max=64"`
	Rating      *float64  `json:"rating" validate:"omitempty,gte=0,lte=5"`
	AvgCheck    *int      `json:"avg_check" validate:"omitempty,gte=0"`
	Address     *string   `json:"address" validate:"omitempty,notblank,max=500"`
	Phone       *string   `json:"phone" validate:"omitempty,phone"`
	Cuisine     *[]string `json:"cuisine" validate:"omitempty,dive,notblank,max=64"`
	Description *string   `json:"description" validate:"omitempty,max=2000"`
	IsActive    *bool     `json:"is_active"`
}

// Empty reports whether the update carries no fields.
func (r UpdateRestaurantRequest) Empty() bool {
	return r.Name == nil && r.Category == nil && r.Rating == nil && r.AvgCheck == nil &&
		r.Address == nil && r.Phone == nil && r.Cuisine == nil && r.Description == nil && r.IsActive == nil
}

// PhotoUploadResult is returned after a photo is stored.
type PhotoUploadResult struct {
	PhotoURL    string   `json:"photo_url"`
	Photos      []string `json:"photos"`
	TotalPhotos int      `json:"total_photos"`
}
