package application

import (
	"testing"
	"time"
)

func TestUptimeInteractor_Execute(t *testing.T) {
	started := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	interactor := &UptimeInteractor{
		startedAt: started,
		now:       func() time.Time { return started.Add(42 * time.Second) },
	}

	report := interactor.Execute()

	if report == nil {
		t.Fatal("expected report, got nil")
	}
	if report.Uptime != 42*time.Second {
		t.Errorf("expected uptime %v, got %v", 42*time.Second, report.Uptime)
	}
}

func TestUptimeInteractor_Execute_ReturnsNewReportEachTime(t *testing.T) {
	interactor := NewUptimeInteractor()

	report1 := interactor.Execute()
	report2 := interactor.Execute()

	if report1 == report2 {
		t.Error("expected different report instances")
	}
}
