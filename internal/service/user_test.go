package service

import (
	"context"
	"testing"
	"time"

	"go-habit-engine/internal/domain"
)

func TestGetUserView(t *testing.T) {
	svc, _, u := newTestService(t)
	view := svc.GetUser(u)
	if view.ToNextLevel != 150 {
		t.Fatalf("toNextLevel = %v, want 150", view.ToNextLevel)
	}
	if view.MaxHealth != 50 {
		t.Fatalf("maxHealth = %v", view.MaxHealth)
	}
	if view.User != u {
		t.Fatalf("view should wrap the aggregate")
	}
}

func TestUpdateUserAllowList(t *testing.T) {
	svc, repo, u := newTestService(t)

	_, err := svc.UpdateUser(context.Background(), u, map[string]any{
		"stats.hp":             12.5,
		"preferences.dayStart": float64(4),
		"flags.rest":           true,
		"profile.name":         "<b>Ada</b>",
		"apiToken":             "stolen",
		"auth.local.username":  "evil",
		"balance":              999.0,
		"stats.unknown":        1,
	})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if u.Stats.HP != 12.5 {
		t.Fatalf("hp = %v", u.Stats.HP)
	}
	if u.Preferences.DayStart != 4 {
		t.Fatalf("dayStart = %d", u.Preferences.DayStart)
	}
	if !u.Flags.Rest {
		t.Fatalf("flags.rest not set")
	}
	if u.Profile.Name != "Ada" {
		t.Fatalf("profile name should be sanitized, got %q", u.Profile.Name)
	}
	if u.APIToken != "tok" || u.Auth.Local.Username != "" || u.Balance != 0 {
		t.Fatalf("non-whitelisted attrs leaked through")
	}
	for _, f := range repo.lastTouched.Fields() {
		if f == "apiToken" || f == "balance" {
			t.Fatalf("touched leaked %q", f)
		}
	}
}

func TestUpdateUserWholeObject(t *testing.T) {
	svc, _, u := newTestService(t)
	_, err := svc.UpdateUser(context.Background(), u, map[string]any{
		"stats": map[string]any{"hp": 20.0, "exp": 5.0, "gp": 7.0, "lvl": 3.0},
		"tags":  []any{map[string]any{"id": "tg1", "name": "work"}},
	})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	want := domain.Stats{HP: 20, Exp: 5, GP: 7, Lvl: 3}
	if u.Stats != want {
		t.Fatalf("stats = %+v", u.Stats)
	}
	if len(u.Tags) != 1 || u.Tags[0].Name != "work" {
		t.Fatalf("tags = %+v", u.Tags)
	}
}

func TestUpdateUserTaskSubPath(t *testing.T) {
	svc, _, u := newTestService(t)
	ctx := context.Background()
	svc.CreateTask(ctx, u, &TaskInput{ID: "t1", Type: "daily"})

	_, err := svc.UpdateUser(ctx, u, map[string]any{
		"tasks.t1.streak":   float64(9),
		"tasks.t1.type":     "reward", // 类型不可改
		"tasks.ghost.value": 5.0,
	})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	task := u.Tasks["t1"]
	if task.Streak != 9 {
		t.Fatalf("streak = %d", task.Streak)
	}
	if task.Type != domain.TaskDaily {
		t.Fatalf("type changed to %s", task.Type)
	}
}

func TestUpdateUserLastCron(t *testing.T) {
	svc, _, u := newTestService(t)
	ctx := context.Background()

	_, err := svc.UpdateUser(ctx, u, map[string]any{"lastCron": "2026-08-01T00:00:00Z"})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	want := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	if !u.LastCron.Equal(want) {
		t.Fatalf("lastCron = %v", u.LastCron)
	}

	// epoch 毫秒也认
	svc.UpdateUser(ctx, u, map[string]any{"lastCron": float64(want.Add(time.Hour).UnixMilli())})
	if !u.LastCron.Equal(want.Add(time.Hour)) {
		t.Fatalf("lastCron = %v", u.LastCron)
	}
}

func TestUpdateUserNoChangesNoSave(t *testing.T) {
	svc, repo, u := newTestService(t)
	if _, err := svc.UpdateUser(context.Background(), u, map[string]any{"balance": 1.0}); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if repo.saves != 0 {
		t.Fatalf("nothing applied, nothing to save; saves = %d", repo.saves)
	}
}
