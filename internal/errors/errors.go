// Package errors defines the typed failures surfaced while reconciling chat
// events. Every error reports a stable Code so callers can decide whether to
// drop, log or re-deliver the event that produced it.
package errors

import (
	"errors"
	"fmt"
)

// Standard error codes for the application.
const (
	CodeUnknown                 = "UNKNOWN"
	CodeDatabase                = "DATABASE"
	CodeConfig                  = "CONFIG"
	CodeUnauthorized            = "UNAUTHORIZED"
	CodeInvalidEvent            = "INVALID_EVENT"
	CodeKeyValue                = "KEY_VALUE"
	CodeMessageNotFound         = "MESSAGE_NOT_FOUND"
	CodeUserNotFound            = "USER_NOT_FOUND"
	CodeKeywordArgumentNotFound = "KEYWORD_ARGUMENT_NOT_FOUND"
	CodeTimestampConflict       = "TIMESTAMP_CONFLICT"
)

// ApplicationError is the interface that all our custom errors implement.
type ApplicationError interface {
	error
	Code() string
	Unwrap() error
}

// Error represents a basic application error.
type Error struct {
	code    string
	message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}

	return e.message
}

func (e *Error) Code() string {
	return e.code
}

func (e *Error) Unwrap() error {
	return e.err
}

// Code returns the code of the first ApplicationError in err's chain,
// or CodeUnknown if it doesn't.
func Code(err error) string {
	var appErr ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Code()
	}

	return CodeUnknown
}

// IsEventError reports whether err is fatal to a single event only. Such
// events are consistent failures: re-delivering them yields the same error.
func IsEventError(err error) bool {
	switch Code(err) {
	case CodeInvalidEvent, CodeKeyValue, CodeMessageNotFound, CodeUserNotFound,
		CodeKeywordArgumentNotFound, CodeTimestampConflict:
		return true
	default:
		return false
	}
}

// KeyValueError reports a threaded reply whose text lacks the ": " delimiter.
type KeyValueError struct {
	Text string
}

func (e *KeyValueError) Error() string {
	return fmt.Sprintf("could not split reply %q into key and value", e.Text)
}

func (e *KeyValueError) Code() string  { return CodeKeyValue }
func (e *KeyValueError) Unwrap() error { return nil }

// MessageNotFoundError reports a reference to a top-level message that is
// not stored. Timestamp is in wire form.
type MessageNotFoundError struct {
	Timestamp string
}

func (e *MessageNotFoundError) Error() string {
	return fmt.Sprintf("message %s not found", e.Timestamp)
}

func (e *MessageNotFoundError) Code() string  { return CodeMessageNotFound }
func (e *MessageNotFoundError) Unwrap() error { return nil }

// UserNotFoundError reports a removal that names a user with no record.
type UserNotFoundError struct {
	UserID string
}

func (e *UserNotFoundError) Error() string {
	return fmt.Sprintf("user %s not found", e.UserID)
}

func (e *UserNotFoundError) Code() string  { return CodeUserNotFound }
func (e *UserNotFoundError) Unwrap() error { return nil }

// KeywordArgumentNotFoundError reports a reply removal with nothing to delete.
type KeywordArgumentNotFoundError struct {
	MessageTimestamp string
	Timestamp        string
	UserID           string
}

func (e *KeywordArgumentNotFoundError) Error() string {
	return fmt.Sprintf("keyword argument %s by user %s on message %s not found",
		e.Timestamp, e.UserID, e.MessageTimestamp)
}

func (e *KeywordArgumentNotFoundError) Code() string  { return CodeKeywordArgumentNotFound }
func (e *KeywordArgumentNotFoundError) Unwrap() error { return nil }

// TimestampConflictError reports a message instant already taken by a
// message in another channel.
type TimestampConflictError struct {
	Timestamp string
	ChannelID string
}

func (e *TimestampConflictError) Error() string {
	return fmt.Sprintf("message %s already exists outside channel %s", e.Timestamp, e.ChannelID)
}

func (e *TimestampConflictError) Code() string  { return CodeTimestampConflict }
func (e *TimestampConflictError) Unwrap() error { return nil }

// Generic wrappers sharing the base Error.

type InvalidEventError struct {
	base Error
}

func (e *InvalidEventError) Error() string {
	return e.base.Error()
}

func (e *InvalidEventError) Code() string {
	return e.base.Code()
}

func (e *InvalidEventError) Unwrap() error {
	return e.base.Unwrap()
}

// NewInvalidEventError reports a payload the reconciler cannot interpret.
func NewInvalidEventError(message string, cause error) error {
	return &InvalidEventError{
		base: Error{
			code:    CodeInvalidEvent,
			message: message,
			err:     cause,
		},
	}
}

type DatabaseError struct {
	base Error
}

func (e *DatabaseError) Error() string {
	return e.base.Error()
}

func (e *DatabaseError) Code() string {
	return e.base.Code()
}

func (e *DatabaseError) Unwrap() error {
	return e.base.Unwrap()
}

func NewDatabaseError(message string, cause error) error {
	return &DatabaseError{
		base: Error{
			code:    CodeDatabase,
			message: message,
			err:     cause,
		},
	}
}

type ConfigError struct {
	base Error
}

func (e *ConfigError) Error() string {
	return e.base.Error()
}

func (e *ConfigError) Code() string {
	return e.base.Code()
}

func (e *ConfigError) Unwrap() error {
	return e.base.Unwrap()
}

func NewConfigError(message string, cause error) error {
	return &ConfigError{
		base: Error{
			code:    CodeConfig,
			message: message,
			err:     cause,
		},
	}
}

// UnauthorizedError reports a request that failed Slack request authentication.
type UnauthorizedError struct {
	base Error
}

func (e *UnauthorizedError) Error() string {
	return e.base.Error()
}

func (e *UnauthorizedError) Code() string {
	return e.base.Code()
}

func (e *UnauthorizedError) Unwrap() error {
	return e.base.Unwrap()
}

func NewUnauthorizedError(message string, cause error) error {
	return &UnauthorizedError{
		base: Error{
			code:    CodeUnauthorized,
			message: message,
			err:     cause,
		},
	}
}
