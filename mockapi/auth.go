// Copyright (c) 2024-2025 Darcy Buskermolen <darcy@dbitech.ca>
// SPDX-License-Identifier: BSD-3-Clause

package mockapi

import (
	"encoding/json"
	"net/http"
	"strings"
)

type AdminProfile struct {
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

type loginResult struct {
	TokenPair
	User AdminProfile `json:"user"`
}

func adminProfile(username string) AdminProfile {
	if username == "" {
		username = "admin"
	}
	return AdminProfile{
		ID:       "A0001",
		Username: username,
		Role:     "super_admin",
		Permissions: []string{
			"users:read", "users:write", "kyc:review", "assets:review",
			"orders:read", "orders:cancel", "config:write", "ops:read",
		},
	}
}

func (s *Service) authResponder(req *Request) *Response {
	switch {
	case hasSegment(req.Path, "/auth/login") && req.Method == http.MethodPost:
		var body struct {
			Username string `json:"username"`
		}
		_ = json.Unmarshal(req.Body, &body)
		return detail(loginResult{TokenPair: s.sessions.Issue(), User: adminProfile(body.Username)})

	case hasSegment(req.Path, "/auth/refresh") && req.Method == http.MethodPost:
		return detail(s.sessions.Issue())

	case hasSegment(req.Path, "/auth/logout"):
		if token, ok := strings.CutPrefix(req.Header.Get("Authorization"), "Bearer "); ok {
			s.sessions.Revoke(token)
		}
		return echo(req, "Logged out")

	case hasSegment(req.Path, "/auth/profile") || hasSegment(req.Path, "/auth/me"):
		return detail(adminProfile(""))
	}
	return nil
}
