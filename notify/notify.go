// Copyright (c) 2024-2025 Darcy Buskermolen <darcy@dbitech.ca>
// SPDX-License-Identifier: BSD-3-Clause

// Package notify carries user-facing side effects of failed API calls: error
// notifications and the redirect to the login page.
package notify

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Notifier displays an API error message to the operator. Fire-and-forget.
type Notifier interface {
	ReportAPIError(message string)
}

// Navigator sends the operator back to the login page once the session is
// unrecoverable.
type Navigator interface {
	RedirectToLogin()
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string)

func (f NotifierFunc) ReportAPIError(message string) { f(message) }

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func()

func (f NavigatorFunc) RedirectToLogin() { f() }

// LogNotifier writes notifications to a zerolog logger.
type LogNotifier struct {
	Logger *zerolog.Logger
}

func (n LogNotifier) ReportAPIError(message string) {
	logger := n.Logger
	if logger == nil {
		logger = &log.Logger
	}
	logger.Warn().Str("notification", "api_error").Msg(message)
}

// LogNavigator only records that a login redirect was requested.
type LogNavigator struct {
	LoginPath string
}

func (n LogNavigator) RedirectToLogin() {
	path := n.LoginPath
	if path == "" {
		path = "/login"
	}
	log.Warn().Str("location", path).Msg("session expired, redirecting to login")
}

// Recorder keeps every notification and redirect. Safe for concurrent use.
type Recorder struct {
	mu        sync.Mutex
	messages  []string
	redirects int
}

func (r *Recorder) ReportAPIError(message string) {
	r.mu.Lock()
	r.messages = append(r.messages, message)
	r.mu.Unlock()
}

func (r *Recorder) RedirectToLogin() {
	r.mu.Lock()
	r.redirects++
	r.mu.Unlock()
}

// Messages returns a copy of the reported messages in order.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}

// Redirects returns how many login redirects were requested.
func (r *Recorder) Redirects() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.redirects
}
