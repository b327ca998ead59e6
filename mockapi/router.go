// Copyright (c) 2024-2025 Darcy Buskermolen <darcy@dbitech.ca>
// SPDX-License-Identifier: BSD-3-Clause

package mockapi

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
)

// Request is the part of an outbound call a responder looks at.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   json.RawMessage
}

// Response is a synthesized reply. Body is serialized as JSON.
type Response struct {
	Status int
	Body   any
}

// Responder answers requests for one domain. Returning nil declines the
// request and lets the next route try.
type Responder func(req *Request) *Response

// Route binds a path predicate to a responder.
type Route struct {
	Name    string
	Match   func(path string) bool
	Respond Responder
}

// Router evaluates routes top to bottom.
type Router struct {
	routes []Route
}

// NewRouter keeps routes in the order given.
func NewRouter(routes ...Route) *Router {
	return &Router{routes: routes}
}

// Names lists the route names in evaluation order.
func (r *Router) Names() []string {
	names := make([]string, len(r.routes))
	for i, rt := range r.routes {
		names[i] = rt.Name
	}
	return names
}

// Dispatch returns the first non-nil response and the name of the route that
// produced it. Unclaimed requests succeed with an empty data object.
func (r *Router) Dispatch(req *Request) (*Response, string) {
	for _, rt := range r.routes {
		if !rt.Match(req.Path) {
			continue
		}
		if resp := rt.Respond(req); resp != nil {
			if resp.Status == 0 {
				resp.Status = http.StatusOK
			}
			return resp, rt.Name
		}
	}

	log.Warn().Str("method", req.Method).Str("path", req.Path).Msg("no mock responder for request")
	return &Response{
		Status: http.StatusOK,
		Body:   result{Success: true, Data: struct{}{}},
	}, "fallback"
}

func contains(subs ...string) func(string) bool {
	return func(path string) bool {
		for _, s := range subs {
			if strings.Contains(path, s) {
				return true
			}
		}
		return false
	}
}

// segmentsAfter returns the path segments following marker, e.g.
// segmentsAfter("/api/users/U1/balances", "/users") is ["U1", "balances"].
func segmentsAfter(path, marker string) []string {
	i := strings.Index(path, marker+"/")
	if i < 0 {
		return nil
	}
	rest := strings.Trim(path[i+len(marker):], "/")
	if rest == "" {
		return nil
	}
	return strings.Split(rest, "/")
}

// hasSegment reports whether marker appears as a complete path segment
// sequence at the end of path or followed by "/".
func hasSegment(path, marker string) bool {
	return strings.HasSuffix(path, marker) || strings.Contains(path, marker+"/")
}
