package errorutil

import (
	"errors"
	"fmt"
)

// Error codes surfaced by the ticket lifecycle.
const (
	CodeNotFound                   = "NOT_FOUND"
	CodePermissionDenied           = "PERMISSION_DENIED"
	CodeCreationFailed             = "CREATION_FAILED"
	CodeTranscriptGenerationFailed = "TRANSCRIPT_GENERATION_FAILED"
	CodeArchivalFailed             = "ARCHIVAL_FAILED"
	CodeDeletionFailed             = "DELETION_FAILED"
	CodeInternal                   = "INTERNAL_ERROR"
)

// DomainError standardizes application errors. Message is safe to show the
// triggering actor; Err is for logs.
type DomainError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, details map[string]any, err error) *DomainError {
	return &DomainError{Code: code, Message: message, Details: details, Err: err}
}

func NewCategoryNotFound(categoryID string, err error) error {
	return NewDomainError(CodeNotFound, "The ticket category could not be found.",
		map[string]any{"category_id": categoryID}, err)
}

func NewArchiveCategoryNotFound(categoryID string, err error) error {
	return NewDomainError(CodeNotFound, "The transcript category could not be found.",
		map[string]any{"archive_category_id": categoryID}, err)
}

func NewChannelNotFound(channelID string, err error) error {
	return NewDomainError(CodeNotFound, "This channel could not be found.",
		map[string]any{"channel_id": channelID}, err)
}

func NewPermissionDenied(message string) error {
	return NewDomainError(CodePermissionDenied, message, nil, nil)
}

func NewCreationFailed(err error) error {
	return NewDomainError(CodeCreationFailed, "An error occurred while creating your ticket. Please try again later.", nil, err)
}

func NewTranscriptGenerationFailed(channelID string, err error) error {
	return NewDomainError(CodeTranscriptGenerationFailed, "The ticket transcript could not be generated.",
		map[string]any{"channel_id": channelID}, err)
}

func NewArchivalFailed(err error) error {
	return NewDomainError(CodeArchivalFailed, "The ticket transcript could not be archived.", nil, err)
}

func NewDeletionFailed(channelID string, err error) error {
	return NewDomainError(CodeDeletionFailed, "The ticket channel could not be deleted.",
		map[string]any{"channel_id": channelID}, err)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:    CodeInternal,
		Message: "An unexpected error occurred. Please try again later.",
		Err:     err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:    CodeInternal,
		Message: "An unexpected error occurred. Please try again later.",
		Err:     err,
	}
}

// IsCode reports whether err carries the given domain code.
func IsCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}
