// Copyright (c) 2024-2025 Darcy Buskermolen <darcy@dbitech.ca>
// SPDX-License-Identifier: BSD-3-Clause

package mockapi

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type UserStats struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Disabled  int `json:"disabled"`
	Suspended int `json:"suspended"`
}

type Overview struct {
	Users              UserStats       `json:"users"`
	PendingKYC         int             `json:"pendingKyc"`
	PendingWithdrawals int             `json:"pendingWithdrawals"`
	OpenPositions      int             `json:"openPositions"`
	TradingVolume24h   decimal.Decimal `json:"tradingVolume24h"`
	FeeIncome24h       decimal.Decimal `json:"feeIncome24h"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

type TrendPoint struct {
	Date          string          `json:"date"`
	NewUsers      int             `json:"newUsers"`
	ActiveUsers   int             `json:"activeUsers"`
	TradingVolume decimal.Decimal `json:"tradingVolume"`
}

func isStatsPath(path string) bool {
	return strings.Contains(path, "/dashboard") || strings.HasSuffix(strings.TrimSuffix(path, "/"), "/stats")
}

func (s *Service) dashboardResponder(req *Request) *Response {
	if !isRead(req.Method) {
		return nil
	}
	path := strings.TrimSuffix(req.Path, "/")
	switch {
	case strings.HasSuffix(path, "/users/stats"):
		return plain(s.userStats())
	case strings.HasSuffix(path, "/orders/stats"):
		return plain(countBy(len(s.fixtures.Orders), func(i int) string { return s.fixtures.Orders[i].Status }))
	case strings.HasSuffix(path, "/kyc/stats"):
		return plain(countBy(len(s.fixtures.KYC), func(i int) string { return s.fixtures.KYC[i].Status }))
	case strings.HasSuffix(path, "/withdrawals/stats"):
		return plain(countBy(len(s.fixtures.Withdrawals), func(i int) string { return s.fixtures.Withdrawals[i].Status }))
	case hasSegment(path, "/dashboard/trends"):
		return plain(Items[TrendPoint]{Items: s.trends(), Total: len(s.fixtures.Reports)})
	case hasSegment(path, "/dashboard/overview"), hasSegment(path, "/dashboard/stats"), strings.HasSuffix(path, "/dashboard"):
		return plain(s.overview())
	}
	return nil
}

func (s *Service) userStats() UserStats {
	st := UserStats{Total: len(s.fixtures.Users)}
	for _, u := range s.fixtures.Users {
		switch u.Status {
		case "active":
			st.Active++
		case "disabled":
			st.Disabled++
		case "suspended":
			st.Suspended++
		}
	}
	return st
}

// countBy tallies n items by the key returned for each index, plus a total.
func countBy(n int, key func(int) string) map[string]int {
	out := map[string]int{"total": n}
	for i := 0; i < n; i++ {
		out[key(i)]++
	}
	return out
}

func (s *Service) overview() Overview {
	f := s.fixtures
	o := Overview{Users: s.userStats(), UpdatedAt: s.builtAt}
	for _, k := range f.KYC {
		if k.Status == "pending" {
			o.PendingKYC++
		}
	}
	for _, w := range f.Withdrawals {
		if w.Status == "pending" {
			o.PendingWithdrawals++
		}
	}
	o.OpenPositions = len(f.Positions)
	if len(f.Reports) > 0 {
		o.TradingVolume24h = f.Reports[0].TradingVolume
		o.FeeIncome24h = f.Reports[0].FeeIncome
	}
	return o
}

// trends lists the daily reports oldest first.
func (s *Service) trends() []TrendPoint {
	reports := s.fixtures.Reports
	out := make([]TrendPoint, 0, len(reports))
	for i := len(reports) - 1; i >= 0; i-- {
		r := reports[i]
		out = append(out, TrendPoint{
			Date:          r.Date,
			NewUsers:      r.NewUsers,
			ActiveUsers:   r.ActiveUsers,
			TradingVolume: r.TradingVolume,
		})
	}
	return out
}
