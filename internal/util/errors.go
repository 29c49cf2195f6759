package util

import "errors"

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrStudentNotFound     = errors.New("unknown student")
	ErrQuestionNotFound    = errors.New("unknown question")
	ErrAlreadySubmitted    = errors.New("quiz already submitted")
	ErrQuotaExceeded       = errors.New("AI help question quota exceeded")
	ErrPromptsExhausted    = errors.New("no AI prompts left for this question")
	ErrProviderUnavailable = errors.New("AI provider unavailable")
)
