package util

import "errors"

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrEmailRegistered       = errors.New("email already registered")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrNoValidRole           = errors.New("User has no valid role assigned")
	ErrPermissionDenied      = errors.New("permission denied")
	ErrNoAuthenticatedUser   = errors.New("No authenticated user found")
	ErrSessionExpired        = errors.New("session expired")
	ErrQuestionnaireNotFound = errors.New("questionnaire not found")
	ErrAlreadySubmitted      = errors.New("questionnaire already submitted")
	ErrUnknownQuestionType   = errors.New("unknown question type")
)
