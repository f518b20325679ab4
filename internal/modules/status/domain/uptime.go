package domain

import "time"

// UptimeReport represents how long the bot has been running.
type UptimeReport struct {
	Uptime time.Duration
}

// NewUptimeReport creates a new UptimeReport for the given start time.
func NewUptimeReport(startedAt, now time.Time) *UptimeReport {
	return &UptimeReport{
		Uptime: now.Sub(startedAt).Truncate(time.Second),
	}
}
