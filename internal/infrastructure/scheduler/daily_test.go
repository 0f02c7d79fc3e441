package scheduler

import (
	"context"
	"testing"
	"time"

	"NewsCurator/internal/config"
)

func TestParseRunAt(t *testing.T) {
	hour, minute, err := parseRunAt("06:30")
	if err != nil {
		t.Fatalf("parseRunAt: %v", err)
	}
	if hour != 6 || minute != 30 {
		t.Errorf("got %02d:%02d, want 06:30", hour, minute)
	}

	if _, _, err := parseRunAt("25:00"); err == nil {
		t.Error("expected error for hour out of range")
	}
	if _, _, err := parseRunAt("soon"); err == nil {
		t.Error("expected error for malformed time")
	}
}

func TestUntilNext(t *testing.T) {
	seoul, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	now := time.Date(2025, 7, 29, 5, 0, 0, 0, seoul)
	if got := untilNext(now, 6, 30); got != 90*time.Minute {
		t.Errorf("before trigger: got %v, want 1h30m", got)
	}

	now = time.Date(2025, 7, 29, 7, 0, 0, 0, seoul)
	if got := untilNext(now, 6, 30); got != 23*time.Hour+30*time.Minute {
		t.Errorf("after trigger: got %v, want 23h30m", got)
	}

	now = time.Date(2025, 7, 29, 6, 30, 0, 0, seoul)
	if got := untilNext(now, 6, 30); got != 24*time.Hour {
		t.Errorf("at trigger: got %v, want 24h", got)
	}
}

func TestStartRejectsBadTriggerTime(t *testing.T) {
	s := NewDailyScheduler(config.SchedulerConfig{RunAt: "nope", Timezone: "Asia/Seoul"})
	if err := s.Start(context.Background(), func(time.Time) {}); err == nil {
		t.Fatal("expected error for unparsable trigger time")
	}
}
