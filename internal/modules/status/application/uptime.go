package application

import (
	"time"

	"github.com/tgsonata/sonata/internal/modules/status/domain"
)

// UptimeInteractor handles the uptime use case.
type UptimeInteractor struct {
	startedAt time.Time
	now       func() time.Time
}

// NewUptimeInteractor creates a new UptimeInteractor anchored at the current time.
func NewUptimeInteractor() *UptimeInteractor {
	return &UptimeInteractor{
		startedAt: time.Now(),
		now:       time.Now,
	}
}

// Execute reports how long the bot has been running.
func (u *UptimeInteractor) Execute() *domain.UptimeReport {
	return domain.NewUptimeReport(u.startedAt, u.now())
}
