// Copyright (c) 2024-2025 Darcy Buskermolen <darcy@dbitech.ca>
// SPDX-License-Identifier: BSD-3-Clause

package mockapi

import (
	"hash/fnv"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

func (s *Service) usersResponder(req *Request) *Response {
	segs := segmentsAfter(req.Path, "/users")
	if !isRead(req.Method) {
		if len(segs) > 1 {
			switch segs[len(segs)-1] {
			case "status":
				return echo(req, "User status updated")
			case "reset-2fa":
				return echo(req, "Two-factor authentication reset")
			}
		}
		return echo(req, "User updated")
	}

	if len(segs) == 0 {
		keyword := strings.ToLower(req.Query.Get("keyword"))
		kycLevel := req.Query.Get("kycLevel")
		items := filter(s.fixtures.Users, func(u User) bool {
			return matches(req.Query, "status", u.Status) &&
				matches(req.Query, "country", u.Country) &&
				(kycLevel == "" || kycLevel == strconv.Itoa(u.KYCLevel)) &&
				(keyword == "" || strings.Contains(strings.ToLower(u.Email), keyword) ||
					strings.Contains(strings.ToLower(u.Nickname), keyword) || strings.EqualFold(u.ID, keyword))
		})
		return listOf(items, req.Query)
	}

	u, ok := findByID(s.fixtures.Users, segs[0], func(u User) string { return u.ID })
	if !ok {
		return nil
	}
	if len(segs) > 1 && segs[1] == "balances" {
		return detail(balancesFor(u.ID))
	}
	return detail(u)
}

// balancesFor derives a stable balance sheet from the user id so repeated
// calls agree without storing one per user.
func balancesFor(userID string) []Balance {
	h := fnv.New64a()
	h.Write([]byte(userID))
	seed := h.Sum64()

	out := make([]Balance, len(currencies))
	for i, cur := range currencies {
		v := int64((seed >> (i * 8)) & 0xffff)
		out[i] = Balance{
			Currency:  cur,
			Available: decimal.New(v*1000+int64(i), -4),
			Frozen:    decimal.New(v%97, -2),
		}
	}
	return out
}
