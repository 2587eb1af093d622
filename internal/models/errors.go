package models

import "errors"

// Application-wide standard errors
var (
	// Common Resource/DB Errors
	ErrNotFound        = errors.New("resource not found") // General not found
	ErrSessionNotFound = errors.New("session not found")
	ErrAccountNotFound = errors.New("account not found")

	// Account & Authentication Errors
	ErrEmailAlreadyExists = errors.New("account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("unauthorized") // Authentication required or failed
	ErrForbidden          = errors.New("forbidden")    // Authenticated, but lacks permission

	// Token Errors
	ErrTokenInvalid = errors.New("token is invalid")
	ErrTokenExpired = errors.New("token has expired")

	// Progress & Event Errors
	ErrInvalidEventType = errors.New("invalid game event type")
	ErrInvalidBeatID    = errors.New("unknown narrative beat id")
	ErrInvalidBeatLine  = errors.New("narrative line must be a string or {speaker, text} object")

	// General Request/Server Errors
	ErrInternalServer = errors.New("internal server error")
	ErrBadRequest     = errors.New("bad request")
	ErrInvalidInput   = errors.New("invalid input data")
)
