// Copyright (c) 2024-2025 Darcy Buskermolen <darcy@dbitech.ca>
// SPDX-License-Identifier: BSD-3-Clause

package mockapi

import (
	"net/http"
	"net/url"
	"strings"
)

// ownerID returns the user an order-like list is scoped to, either from a
// /users/{id}/... prefix or the userId query parameter.
func ownerID(req *Request) string {
	if segs := segmentsAfter(req.Path, "/users"); len(segs) > 1 {
		return segs[0]
	}
	return req.Query.Get("userId")
}

func matches(q url.Values, key, value string) bool {
	want := q.Get(key)
	return want == "" || strings.EqualFold(want, value)
}

func (s *Service) ordersResponder(req *Request) *Response {
	switch {
	case hasSegment(req.Path, "/positions"):
		return s.positions(req)
	case hasSegment(req.Path, "/trades"):
		return s.trades(req)
	case hasSegment(req.Path, "/orders"):
		return s.orders(req)
	}
	return nil
}

func (s *Service) orders(req *Request) *Response {
	segs := segmentsAfter(req.Path, "/orders")
	if !isRead(req.Method) {
		if len(segs) > 0 && (req.Method == http.MethodDelete || segs[len(segs)-1] == "cancel") {
			return echo(req, "Order canceled")
		}
		return echo(req, "Operation successful")
	}
	if len(segs) == 0 {
		owner := ownerID(req)
		items := filter(s.fixtures.Orders, func(o Order) bool {
			return (owner == "" || o.UserID == owner) &&
				matches(req.Query, "status", o.Status) &&
				matches(req.Query, "symbol", o.Symbol) &&
				matches(req.Query, "side", o.Side)
		})
		return listOf(items, req.Query)
	}
	if o, ok := findByID(s.fixtures.Orders, segs[0], func(o Order) string { return o.ID }); ok {
		return detail(o)
	}
	return nil
}

func (s *Service) positions(req *Request) *Response {
	segs := segmentsAfter(req.Path, "/positions")
	if !isRead(req.Method) {
		if len(segs) > 0 && segs[len(segs)-1] == "close" {
			return echo(req, "Position closed")
		}
		return echo(req, "Operation successful")
	}
	if len(segs) == 0 {
		owner := ownerID(req)
		items := filter(s.fixtures.Positions, func(p Position) bool {
			return (owner == "" || p.UserID == owner) &&
				matches(req.Query, "symbol", p.Symbol) &&
				matches(req.Query, "side", p.Side) &&
				matches(req.Query, "marginMode", p.MarginMode)
		})
		return listOf(items, req.Query)
	}
	if p, ok := findByID(s.fixtures.Positions, segs[0], func(p Position) string { return p.ID }); ok {
		return detail(p)
	}
	return nil
}

func (s *Service) trades(req *Request) *Response {
	if !isRead(req.Method) {
		return nil
	}
	owner := ownerID(req)
	items := filter(s.fixtures.Trades, func(t Trade) bool {
		return (owner == "" || t.UserID == owner) &&
			matches(req.Query, "symbol", t.Symbol) &&
			matches(req.Query, "orderId", t.OrderID)
	})
	return listOf(items, req.Query)
}
