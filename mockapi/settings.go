// Copyright (c) 2024-2025 Darcy Buskermolen <darcy@dbitech.ca>
// SPDX-License-Identifier: BSD-3-Clause

package mockapi

// configResponder serves fee, margin and risk configuration. These endpoints
// answer lists as {items, total} rather than the paginated envelope.
func (s *Service) configResponder(req *Request) *Response {
	f := s.fixtures
	switch {
	case hasSegment(req.Path, "/config/fees"):
		if !isRead(req.Method) {
			return echo(req, "Fee configuration updated")
		}
		return itemsOf(f.FeeTiers)

	case hasSegment(req.Path, "/config/margin"):
		if !isRead(req.Method) {
			return echo(req, "Margin configuration updated")
		}
		return itemsOf(filter(f.MarginTiers, func(m MarginTier) bool {
			return matches(req.Query, "symbol", m.Symbol)
		}))

	case hasSegment(req.Path, "/config/risk-rules"):
		segs := segmentsAfter(req.Path, "/risk-rules")
		if !isRead(req.Method) {
			return echo(req, "Risk rule saved")
		}
		if len(segs) == 0 {
			return itemsOf(f.RiskRules)
		}
		if r, ok := findByID(f.RiskRules, segs[0], func(r RiskRule) string { return r.ID }); ok {
			return detail(r)
		}

	case hasSegment(req.Path, "/config/trading-pairs"):
		segs := segmentsAfter(req.Path, "/trading-pairs")
		if !isRead(req.Method) {
			return echo(req, "Trading pair saved")
		}
		if len(segs) == 0 {
			return listOf(filter(f.TradingPairs, func(p TradingPair) bool {
				return matches(req.Query, "status", p.Status) && matches(req.Query, "quote", p.Quote)
			}), req.Query)
		}
		if p, ok := findByID(f.TradingPairs, segs[0], func(p TradingPair) string { return p.Symbol }); ok {
			return detail(p)
		}
	}
	return nil
}
