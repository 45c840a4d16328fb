package engine

import (
	"testing"
	"time"

	"go-habit-engine/internal/domain"
)

func TestDaysSince(t *testing.T) {
	base := time.Date(2026, 8, 30, 23, 0, 0, 0, time.UTC)
	cases := []struct {
		name     string
		last     time.Time
		now      time.Time
		dayStart int
		want     int
	}{
		{"same moment", base, base, 0, 0},
		{"later same day", base.Add(-10 * time.Hour), base, 0, 0},
		{"across midnight", base, base.Add(2 * time.Hour), 0, 1},
		{"three days", base, base.AddDate(0, 0, 3), 0, 3},
		// dayStart=4 把凌晨 1 点归入前一天
		{"day start shifts boundary", base, base.Add(2 * time.Hour), 4, 0},
		{"day start crossed", base, base.Add(6 * time.Hour), 4, 1},
	}
	for _, c := range cases {
		if got := DaysSince(c.last, c.now, c.dayStart); got != c.want {
			t.Fatalf("%s: DaysSince = %d, want %d", c.name, got, c.want)
		}
	}
}

func TestRunCronSameDayNoop(t *testing.T) {
	u := newTestUser()
	if RunCron(u, u.LastCron.Add(time.Hour), DefaultRules()) {
		t.Fatalf("cron within the same day must be a no-op")
	}
}

func TestRunCronMissedDaily(t *testing.T) {
	u := newTestUser()
	missed := AddTask(u, &domain.Task{Type: domain.TaskDaily, Streak: 7})
	done := AddTask(u, &domain.Task{Type: domain.TaskDaily, Completed: true, Streak: 2})

	next := u.LastCron.AddDate(0, 0, 1)
	if !RunCron(u, next, DefaultRules()) {
		t.Fatalf("cron across a day boundary should fire")
	}

	if missed.Streak != 0 {
		t.Fatalf("missed daily should lose its streak, got %d", missed.Streak)
	}
	if missed.Value >= 0 {
		t.Fatalf("missed daily should be scored down, value = %v", missed.Value)
	}
	if u.Stats.HP >= 50 {
		t.Fatalf("missed daily should cost health, hp = %v", u.Stats.HP)
	}

	if done.Streak != 3 {
		t.Fatalf("completed daily streak = %d, want 3", done.Streak)
	}
	if done.Completed {
		t.Fatalf("completed flag should reset for the new day")
	}
	if u.LastCron != next {
		t.Fatalf("lastCron not advanced")
	}
}

func TestRunCronRespectsRepeat(t *testing.T) {
	u := newTestUser()
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC) // 周一
	u.LastCron = now.AddDate(0, 0, -1)

	// 昨天是周日，只排周一的 daily 不该受罚
	weekdayOnly := AddTask(u, &domain.Task{
		Type:   domain.TaskDaily,
		Repeat: domain.RepeatMap{"m": true},
		Streak: 5,
	})
	if !RunCron(u, now, DefaultRules()) {
		t.Fatalf("cron should fire")
	}
	if weekdayOnly.Streak != 5 || weekdayOnly.Value != 0 {
		t.Fatalf("unscheduled daily was penalized: streak=%d value=%v", weekdayOnly.Streak, weekdayOnly.Value)
	}
}

func TestRunCronClearsCompletedTodos(t *testing.T) {
	u := newTestUser()
	yesterday := u.LastCron.AddDate(0, 0, -1)
	old := AddTask(u, &domain.Task{Type: domain.TaskTodo, Completed: true, DateCompleted: &yesterday})
	open := AddTask(u, &domain.Task{Type: domain.TaskTodo})

	next := u.LastCron.AddDate(0, 0, 1)
	fresh := AddTask(u, &domain.Task{Type: domain.TaskTodo, Completed: true, DateCompleted: &next})

	if !RunCron(u, next, DefaultRules()) {
		t.Fatalf("cron should fire")
	}
	if _, ok := u.Tasks[old.ID]; ok {
		t.Fatalf("stale completed todo should be cleared")
	}
	if _, ok := u.Tasks[open.ID]; !ok {
		t.Fatalf("open todo must survive cron")
	}
	if _, ok := u.Tasks[fresh.ID]; !ok {
		t.Fatalf("todo completed today must survive until tomorrow")
	}
	n := len(u.History.Todos)
	if n == 0 || u.History.Todos[n-1].Value != 1 {
		t.Fatalf("cleared count not recorded: %+v", u.History.Todos)
	}
	checkConsistent(t, u)
}

func TestRunCronIdempotent(t *testing.T) {
	u := newTestUser()
	AddTask(u, &domain.Task{Type: domain.TaskDaily, Streak: 3})

	next := u.LastCron.AddDate(0, 0, 1)
	if !RunCron(u, next, DefaultRules()) {
		t.Fatalf("first cron should fire")
	}
	hp, streak := u.Stats.HP, u.Tasks[u.DailyIDs[0]].Streak

	if RunCron(u, next.Add(2*time.Hour), DefaultRules()) {
		t.Fatalf("second cron on the same day must be a no-op")
	}
	if u.Stats.HP != hp || u.Tasks[u.DailyIDs[0]].Streak != streak {
		t.Fatalf("repeated cron changed state")
	}
}
