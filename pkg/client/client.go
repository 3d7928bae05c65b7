// Package client is a Go client for the booking API used by guest-facing
// front ends and the staff check-in tool.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	bookingvalidator "github.com/fairyhunter13/restoboost/internal/validator"
)

// BookingForm is the guest's reservation input.
type BookingForm struct {
	RestaurantID    int64  `json:"restaurant_id" validate:"required,gt=0"`
	Date            string `json:"date" validate:"required,isodate"`
	Time            string `json:"time" validate:"required,clock"`
	PartySize       int    `json:"party_size" validate:"required,gte=1,lte=50"`
	GuestName       string `json:"guest_name" validate:"required,notblank,max=255"`
	Phone           string `json:"phone" validate:"required,phone"`
	GuestEmail      string `json:"guest_email,omitempty" validate:"omitempty,email,max=255"`
	SpecialRequests string `json:"special_requests,omitempty" validate:"max=1000"`
}

// Confirmation identifies a created booking.
type Confirmation struct {
	ID               int64  `json:"id"`
	ConfirmationCode string `json:"confirmation_code"`
}

// RedirectPath is the confirmation page a front end navigates to after a
// successful submission.
func (c Confirmation) RedirectPath() string {
	return "/booking-confirmation?id=" + strconv.FormatInt(c.ID, 10) +
		"&code=" + url.QueryEscape(c.ConfirmationCode)
}

// Client calls the booking API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	validate   *validator.Validate

	redis    redis.UniversalClient
	cacheTTL time.Duration
}

// New creates a client for baseURL. A nil httpClient uses one with a 10 s timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		validate:   bookingvalidator.New(),
	}
}

// SetToken sets the admin bearer token sent with every request.
func (c *Client) SetToken(token string) {
	c.token = token
}

// UseRedisCache enables caching of restaurant lookups for ttl.
func (c *Client) UseRedisCache(client redis.UniversalClient, ttl time.Duration) {
	c.redis = client
	c.cacheTTL = ttl
}

// SubmitBooking validates form, posts it and returns the confirmation
// exactly as issued by the server.
func (c *Client) SubmitBooking(ctx context.Context, form BookingForm) (*Confirmation, error) {
	if err := c.validate.Struct(form); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidForm, formMessage(err))
	}

	body, err := c.do(ctx, http.MethodPost, "/api/bookings", form)
	if err != nil {
		return nil, err
	}
	conf, err := decodeOne[Confirmation](body)
	if err != nil {
		return nil, &TransportError{Op: "decode booking confirmation", Err: err}
	}
	return conf, nil
}

// GetBooking fetches a booking by id.
func (c *Client) GetBooking(ctx context.Context, id int64) (*Booking, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/bookings/"+strconv.FormatInt(id, 10), nil)
	if err != nil {
		return nil, err
	}
	b, err := decodeOne[Booking](body)
	if err != nil {
		return nil, &TransportError{Op: "decode booking", Err: err}
	}
	return b, nil
}

// AvailableSlots lists the slots of a restaurant on date (YYYY-MM-DD).
func (c *Client) AvailableSlots(ctx context.Context, restaurantID int64, date string) ([]Slot, error) {
	q := url.Values{}
	q.Set("restaurant_id", strconv.FormatInt(restaurantID, 10))
	q.Set("date", date)

	body, err := c.do(ctx, http.MethodGet, "/api/bookings/available-slots?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	slots, err := decodeList[Slot](body)
	if err != nil {
		return nil, &TransportError{Op: "decode slots", Err: err}
	}
	return slots, nil
}

// Restaurants lists restaurants, optionally filtered by category.
func (c *Client) Restaurants(ctx context.Context, category string) ([]RestaurantListItem, error) {
	path := "/api/restaurants"
	if category != "" {
		path += "?category=" + url.QueryEscape(category)
	}

	var items []RestaurantListItem
	if c.readCache(ctx, path, &items) {
		return items, nil
	}

	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	items, err = decodeList[RestaurantListItem](body)
	if err != nil {
		return nil, &TransportError{Op: "decode restaurants", Err: err}
	}
	c.writeCache(ctx, path, items)
	return items, nil
}

// Restaurant fetches a single restaurant.
func (c *Client) Restaurant(ctx context.Context, id int64) (*Restaurant, error) {
	path := "/api/restaurants/" + strconv.FormatInt(id, 10)

	var cached Restaurant
	if c.readCache(ctx, path, &cached) {
		return &cached, nil
	}

	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	rest, err := decodeOne[Restaurant](body)
	if err != nil {
		return nil, &TransportError{Op: "decode restaurant", Err: err}
	}
	c.writeCache(ctx, path, rest)
	return rest, nil
}

// Login exchanges admin credentials for a token and keeps it for later calls.
func (c *Client) Login(ctx context.Context, username, password string) (*Token, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/auth/login", loginRequest{Username: username, Password: password})
	if err != nil {
		return nil, err
	}
	token, err := decodeOne[Token](body)
	if err != nil {
		return nil, &TransportError{Op: "decode token", Err: err}
	}
	c.SetToken(token.Token)
	return token, nil
}

// VerifyCode checks a guest in by confirmation code. Requires an admin token.
func (c *Client) VerifyCode(ctx context.Context, code string) (*VerifyResult, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/bookings/verify-qr", verifyRequest{Code: code})
	if err != nil {
		return nil, err
	}
	result, err := decodeOne[VerifyResult](body)
	if err != nil {
		return nil, &TransportError{Op: "decode verification", Err: err}
	}
	return result, nil
}

func (c *Client) do(ctx context.Context, method, path string, in any) ([]byte, error) {
	var reqBody io.Reader = http.NoBody
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, &TransportError{Op: "encode request", Err: err}
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, &TransportError{Op: "build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: method + " " + path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "read response", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RequestError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}
	return body, nil
}

func (c *Client) cacheKey(path string) string {
	return "restoboost:client:" + c.baseURL + path
}

func (c *Client) readCache(ctx context.Context, path string, out any) bool {
	if c.redis == nil || c.cacheTTL <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, c.cacheKey(path)).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(val, out) == nil
}

func (c *Client) writeCache(ctx context.Context, path string, val any) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, c.cacheKey(path), data, c.cacheTTL).Err(); err != nil {
		log.Debug().Err(err).Str("path", path).Msg("client cache write failed")
	}
}

// formMessage names the first invalid field of a BookingForm.
func formMessage(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		if fe.Tag() == "required" {
			return fe.Field() + " is required"
		}
		return fe.Field() + " is invalid"
	}
	return err.Error()
}
