package model

// Response is the envelope every API endpoint responds with.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OK wraps data in a successful envelope.
func OK(data any) Response {
	return Response{Success: true, Data: data}
}

// OKMessage wraps data and a human-readable message in a successful envelope.
func OKMessage(data any, message string) Response {
	return Response{Success: true, Data: data, Message: message}
}

// Fail builds an error envelope.
func Fail(msg string) Response {
	return Response{Success: false, Error: msg}
}
