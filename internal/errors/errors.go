// Package errors provides the error types reported by responders and the
// mapping from those errors to transcript error templates.
package errors

import (
	"context"
	"errors"
	"fmt"

	"github.com/diogo/chatview/internal/models"
)

// Sentinel errors for common cases
var (
	ErrServiceFailed = errors.New("service request failed")
	ErrTimeout       = errors.New("request timed out")
	ErrSpeechFailed  = errors.New("speech recognition failed")
	ErrEmptyReply    = errors.New("empty reply")
)

// ServiceError represents a failure of the service producing replies
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	if e.Message == "" {
		return ErrServiceFailed.Error()
	}
	return fmt.Sprintf("service request failed: %s", e.Message)
}

// Is allows comparison with sentinel errors
func (e *ServiceError) Is(target error) bool {
	if target == ErrServiceFailed {
		return true
	}
	_, ok := target.(*ServiceError)
	return ok
}

// NewServiceError creates a new ServiceError
func NewServiceError(message string) *ServiceError {
	return &ServiceError{Message: message}
}

// TimeoutError represents a reply that did not arrive in time
type TimeoutError struct {
	Message string
}

func (e *TimeoutError) Error() string {
	if e.Message == "" {
		return ErrTimeout.Error()
	}
	return fmt.Sprintf("request timed out: %s", e.Message)
}

// Is allows comparison with sentinel errors
func (e *TimeoutError) Is(target error) bool {
	if target == ErrTimeout {
		return true
	}
	_, ok := target.(*TimeoutError)
	return ok
}

// NewTimeoutError creates a new TimeoutError
func NewTimeoutError(message string) *TimeoutError {
	return &TimeoutError{Message: message}
}

// SpeechError represents a speech-to-text input failure
type SpeechError struct {
	Message string
}

func (e *SpeechError) Error() string {
	if e.Message == "" {
		return ErrSpeechFailed.Error()
	}
	return fmt.Sprintf("speech recognition failed: %s", e.Message)
}

// Is allows comparison with sentinel errors
func (e *SpeechError) Is(target error) bool {
	if target == ErrSpeechFailed {
		return true
	}
	_, ok := target.(*SpeechError)
	return ok
}

// NewSpeechError creates a new SpeechError
func NewSpeechError(message string) *SpeechError {
	return &SpeechError{Message: message}
}

// IsServiceError reports whether err is a service failure
func IsServiceError(err error) bool {
	return errors.Is(err, ErrServiceFailed)
}

// IsTimeoutError reports whether err is a timeout, including context deadlines
func IsTimeoutError(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}

// IsSpeechError reports whether err is a speech input failure
func IsSpeechError(err error) bool {
	return errors.Is(err, ErrSpeechFailed)
}

// Classify maps an error to the error template type used to display it
func Classify(err error) models.ErrorType {
	switch {
	case err == nil:
		return models.ErrorTypeDefault
	case IsSpeechError(err):
		return models.ErrorTypeSpeechToText
	case IsServiceError(err), IsTimeoutError(err):
		return models.ErrorTypeService
	default:
		return models.ErrorTypeDefault
	}
}
