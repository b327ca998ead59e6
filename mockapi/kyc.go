// Copyright (c) 2024-2025 Darcy Buskermolen <darcy@dbitech.ca>
// SPDX-License-Identifier: BSD-3-Clause

package mockapi

import "strconv"

func (s *Service) kycResponder(req *Request) *Response {
	if !hasSegment(req.Path, "/kyc/applications") && !hasSegment(req.Path, "/kyc") {
		return nil
	}
	segs := segmentsAfter(req.Path, "/applications")
	if !isRead(req.Method) {
		if len(segs) > 1 {
			switch segs[len(segs)-1] {
			case "approve":
				return echo(req, "KYC application approved")
			case "reject":
				return echo(req, "KYC application rejected")
			}
		}
		return echo(req, "KYC application updated")
	}
	if len(segs) == 0 {
		level := req.Query.Get("level")
		items := filter(s.fixtures.KYC, func(k KYCApplication) bool {
			return matches(req.Query, "status", k.Status) &&
				matches(req.Query, "userId", k.UserID) &&
				(level == "" || level == strconv.Itoa(k.Level))
		})
		return listOf(items, req.Query)
	}
	if k, ok := findByID(s.fixtures.KYC, segs[0], func(k KYCApplication) string { return k.ID }); ok {
		return detail(k)
	}
	return nil
}
