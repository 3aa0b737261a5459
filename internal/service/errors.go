package service

import "errors"

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrPlanNotFound       = errors.New("plan not found")
	ErrExportDisabled     = errors.New("plan export is not configured")
	ErrLLMUnavailable     = errors.New("chat model unavailable")
)
