// Copyright (c) 2024-2025 Darcy Buskermolen <darcy@dbitech.ca>
// SPDX-License-Identifier: BSD-3-Clause

package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrRefreshFailed marks every error caused by an unsuccessful token refresh.
	ErrRefreshFailed = errors.New("token refresh failed")

	// ErrNoRefreshToken is returned when a refresh is needed but none is stored.
	ErrNoRefreshToken = fmt.Errorf("%w: no refresh token stored", ErrRefreshFailed)
)

// Kind tells where a request failed.
type Kind int

const (
	// KindHTTP: the server answered with a non-2xx status.
	KindHTTP Kind = iota
	// KindNetwork: no response was received (connection, timeout, cancel).
	KindNetwork
	// KindRequest: the request could not be built and was never sent.
	KindRequest
)

func (k Kind) String() string {
	switch k {
	case KindHTTP:
		return "http"
	case KindNetwork:
		return "network"
	case KindRequest:
		return "request"
	}
	return "unknown"
}

// Error is returned for every failed call. Callers can inspect the status and
// body with errors.As.
type Error struct {
	Kind       Kind
	Method     string
	URL        string
	StatusCode int
	// Message is the server supplied message, if the body carried one.
	Message string
	Body    []byte
	Err     error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindHTTP:
		if e.Message != "" {
			return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.URL, e.StatusCode, e.Message)
		}
		return fmt.Sprintf("%s %s: HTTP %d", e.Method, e.URL, e.StatusCode)
	case KindNetwork:
		return fmt.Sprintf("%s %s: network error: %v", e.Method, e.URL, e.Err)
	default:
		return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// IsUnauthorized reports whether err carries an HTTP 401.
func IsUnauthorized(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindHTTP && e.StatusCode == http.StatusUnauthorized
}

func newHTTPError(method, url string, status int, body []byte) *Error {
	return &Error{
		Kind:       KindHTTP,
		Method:     method,
		URL:        url,
		StatusCode: status,
		Message:    serverMessage(body),
		Body:       body,
		Err:        fmt.Errorf("HTTP %d", status),
	}
}

// serverMessage pulls "message" or "error" out of a JSON error body.
func serverMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if len(body) == 0 || json.Unmarshal(body, &payload) != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}

const (
	msgNetwork      = "Network error, please check your connection"
	msgUnauthorized = "Session expired, please log in again"
)

var statusMessages = map[int]string{
	http.StatusBadRequest:          "Invalid request parameters",
	http.StatusUnauthorized:        msgUnauthorized,
	http.StatusForbidden:           "Access denied",
	http.StatusNotFound:            "Resource not found",
	http.StatusMethodNotAllowed:    "Method not allowed",
	http.StatusRequestTimeout:      "Request timed out",
	http.StatusConflict:            "Resource conflict",
	http.StatusUnprocessableEntity: "Validation failed",
	http.StatusTooManyRequests:     "Too many requests, please try again later",
	http.StatusInternalServerError: "Internal server error, please try again later",
	http.StatusBadGateway:          "Bad gateway, please try again later",
	http.StatusServiceUnavailable:  "Service unavailable, please try again later",
}

// UserMessage maps err to the text shown to the operator.
func UserMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	switch e.Kind {
	case KindNetwork:
		return msgNetwork
	case KindRequest:
		return e.Err.Error()
	}

	switch e.StatusCode {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		if e.Message != "" {
			return e.Message
		}
	}
	if msg, ok := statusMessages[e.StatusCode]; ok {
		return msg
	}
	return fmt.Sprintf("Request failed with status %d", e.StatusCode)
}
