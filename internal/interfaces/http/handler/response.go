package handler

import "github.com/sddportal/backend/internal/interfaces/http/dto"

// APIResponse documents the success envelope with a typed data field
type APIResponse[T any] struct {
	OK   bool      `json:"ok"`
	Data T         `json:"data,omitempty"`
	Meta *dto.Meta `json:"meta,omitempty"`
}

// ErrorResponse documents the failure envelope
type ErrorResponse struct {
	OK        bool   `json:"ok" example:"false"`
	Error     string `json:"error" example:"Upload not found"`
	Code      string `json:"code" example:"UPLOAD_NOT_FOUND"`
	RequestID string `json:"requestId,omitempty"`
}

// DeletedData is returned by delete endpoints
type DeletedData struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}
