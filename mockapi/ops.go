// Copyright (c) 2024-2025 Darcy Buskermolen <darcy@dbitech.ca>
// SPDX-License-Identifier: BSD-3-Clause

package mockapi

func (s *Service) opsResponder(req *Request) *Response {
	f := s.fixtures
	switch {
	case hasSegment(req.Path, "/ops/audit-logs"):
		if !isRead(req.Method) {
			return nil
		}
		return listOf(filter(f.AuditLogs, func(l AuditLog) bool {
			return matches(req.Query, "operator", l.Operator) && matches(req.Query, "action", l.Action)
		}), req.Query)

	case hasSegment(req.Path, "/ops/announcements"):
		segs := segmentsAfter(req.Path, "/announcements")
		if !isRead(req.Method) {
			return echo(req, "Announcement saved")
		}
		if len(segs) == 0 {
			return listOf(filter(f.Announcements, func(a Announcement) bool {
				return matches(req.Query, "status", a.Status)
			}), req.Query)
		}
		if a, ok := findByID(f.Announcements, segs[0], func(a Announcement) string { return a.ID }); ok {
			return detail(a)
		}

	case hasSegment(req.Path, "/ops/reports"):
		if !isRead(req.Method) {
			return echo(req, "Report export queued")
		}
		return listOf(f.Reports, req.Query)
	}
	return nil
}
