// Copyright 2025 The Hushd Authors
// SPDX-License-Identifier: Apache-2.0

package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode represents unique error identifiers
type ErrorCode int

// Domain represents the subsystem where the error originated
type Domain string

const (
	DomainConfig    Domain = "CONFIG"
	DomainServer    Domain = "SERVER"
	DomainMonitor   Domain = "MONITOR"
	DomainDisk      Domain = "DISK"
	DomainActuator  Domain = "ACTUATOR"
	DomainLifecycle Domain = "LIFECYCLE"
	DomainMisc      Domain = "MISC"
)

type HushError struct {
	Code       ErrorCode `json:"code"`
	Domain     Domain    `json:"domain"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	HTTPStatus int       `json:"-"`

	// Metadata carries contextual key/value detail that doesn't fit the
	// standard fields: device names, ioctl status bytes, sense dumps.
	Metadata map[string]string `json:"metadata,omitempty"`

	cause error
}

func (e *HushError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s-%d] %s: %s", e.Domain, e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s-%d] %s", e.Domain, e.Code, e.Message)
}

func (e *HushError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key/value pair and returns the error for chaining.
func (e *HushError) WithMetadata(key, value string) *HushError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]string)
	}
	e.Metadata[key] = value
	return e
}

// New creates a HushError for the given code with free-form details.
func New(code ErrorCode, details string) *HushError {
	def, ok := errorDefinitions[code]
	if !ok {
		def = definition{"Unknown error", DomainMisc, http.StatusInternalServerError}
	}
	return &HushError{
		Code:       code,
		Domain:     def.domain,
		Message:    def.message,
		Details:    details,
		HTTPStatus: def.httpStatus,
	}
}

// Wrap converts err into a HushError for the given code, preserving the
// original error as the cause and its text as details.
func Wrap(err error, code ErrorCode) *HushError {
	if err == nil {
		return nil
	}
	he := New(code, err.Error())
	he.cause = err
	return he
}

// AsHushError returns the HushError in err's chain, if any.
func AsHushError(err error) (*HushError, bool) {
	var he *HushError
	if stderrors.As(err, &he) {
		return he, true
	}
	return nil, false
}
