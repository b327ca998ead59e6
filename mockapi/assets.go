// Copyright (c) 2024-2025 Darcy Buskermolen <darcy@dbitech.ca>
// SPDX-License-Identifier: BSD-3-Clause

package mockapi

func (s *Service) assetsResponder(req *Request) *Response {
	f := s.fixtures
	switch {
	case hasSegment(req.Path, "/assets/deposits"):
		segs := segmentsAfter(req.Path, "/deposits")
		if !isRead(req.Method) {
			return echo(req, "Deposit updated")
		}
		if len(segs) == 0 {
			owner := ownerID(req)
			return listOf(filter(f.Deposits, func(d Deposit) bool {
				return (owner == "" || d.UserID == owner) &&
					matches(req.Query, "status", d.Status) &&
					matches(req.Query, "currency", d.Currency)
			}), req.Query)
		}
		if d, ok := findByID(f.Deposits, segs[0], func(d Deposit) string { return d.ID }); ok {
			return detail(d)
		}

	case hasSegment(req.Path, "/assets/withdrawals"):
		segs := segmentsAfter(req.Path, "/withdrawals")
		if !isRead(req.Method) {
			if len(segs) > 1 {
				switch segs[len(segs)-1] {
				case "approve":
					return echo(req, "Withdrawal approved")
				case "reject":
					return echo(req, "Withdrawal rejected")
				}
			}
			return echo(req, "Withdrawal updated")
		}
		if len(segs) == 0 {
			owner := ownerID(req)
			return listOf(filter(f.Withdrawals, func(w Withdrawal) bool {
				return (owner == "" || w.UserID == owner) &&
					matches(req.Query, "status", w.Status) &&
					matches(req.Query, "currency", w.Currency) &&
					matches(req.Query, "riskLevel", w.RiskLevel)
			}), req.Query)
		}
		if w, ok := findByID(f.Withdrawals, segs[0], func(w Withdrawal) string { return w.ID }); ok {
			return detail(w)
		}

	case hasSegment(req.Path, "/assets/wallets"):
		if !isRead(req.Method) {
			return echo(req, "Wallet updated")
		}
		return listOf(f.Wallets, req.Query)
	}
	return nil
}
