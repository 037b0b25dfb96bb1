package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
	ErrGateway      = errors.New("payment gateway error")
)

// Specific validation failures. They wrap ErrBadRequest so errors.Is(err, ErrBadRequest) holds.
var (
	ErrInvalidOtp         = fmt.Errorf("invalid OTP: %w", ErrBadRequest)
	ErrExpiredOtp         = fmt.Errorf("OTP expired: %w", ErrBadRequest)
	ErrOtpLocked          = fmt.Errorf("too many incorrect attempts, request a new OTP: %w", ErrBadRequest)
	ErrSignatureMismatch  = fmt.Errorf("invalid signature: %w", ErrBadRequest)
	ErrEmailAlreadyExists = fmt.Errorf("email already registered: %w", ErrBadRequest)
)
