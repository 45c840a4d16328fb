package engine

import (
	"math"
	"testing"
	"time"

	"go-habit-engine/internal/domain"
)

var scoreNow = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func TestScoreUp(t *testing.T) {
	u := newTestUser()
	task := &domain.Task{ID: "h1", Type: domain.TaskHabit, Up: true}

	delta := Score(u, task, domain.DirUp, DefaultRules(), scoreNow)
	if delta <= 0 {
		t.Fatalf("up score should be positive, got %v", delta)
	}
	if math.Abs(delta-1) > 1e-9 {
		t.Fatalf("value 0 at priority ! should score exactly 1, got %v", delta)
	}
	if u.Stats.Exp != delta {
		t.Fatalf("exp = %v, want %v", u.Stats.Exp, delta)
	}
	if u.Stats.GP != delta*0.5 {
		t.Fatalf("gold should accrue at half rate, got %v", u.Stats.GP)
	}
	if task.Value != delta {
		t.Fatalf("task value should drift by delta, got %v", task.Value)
	}
	if task.Streak != 1 {
		t.Fatalf("streak = %d, want 1", task.Streak)
	}
	if len(task.History) != 1 || len(u.History.Exp) != 1 {
		t.Fatalf("habit up should record both histories")
	}
}

func TestScoreDownHitsHealth(t *testing.T) {
	u := newTestUser()
	task := &domain.Task{ID: "h1", Type: domain.TaskHabit, Down: true, Streak: 4}

	delta := Score(u, task, domain.DirDown, DefaultRules(), scoreNow)
	if delta >= 0 {
		t.Fatalf("down score should be negative, got %v", delta)
	}
	if u.Stats.HP != 50+delta {
		t.Fatalf("hp = %v, want %v", u.Stats.HP, 50+delta)
	}
	if u.Stats.Exp != 0 || u.Stats.GP != 0 {
		t.Fatalf("down score must not touch exp/gold")
	}
	if task.Streak != 0 {
		t.Fatalf("down score should reset streak, got %d", task.Streak)
	}
}

func TestScoreHealthNeverNegative(t *testing.T) {
	u := newTestUser()
	task := &domain.Task{ID: "h1", Type: domain.TaskHabit, Down: true}
	for i := 0; i < 200; i++ {
		Score(u, task, domain.DirDown, DefaultRules(), scoreNow)
		if u.Stats.HP < 0 {
			t.Fatalf("hp went negative after %d hits: %v", i+1, u.Stats.HP)
		}
	}
	if u.Stats.HP != 0 {
		t.Fatalf("hp should bottom out at 0, got %v", u.Stats.HP)
	}
}

func TestScoreUpThenDownStaysSane(t *testing.T) {
	u := newTestUser()
	task := &domain.Task{ID: "h1", Type: domain.TaskHabit, Up: true, Down: true}
	for i := 0; i < 50; i++ {
		Score(u, task, domain.DirUp, DefaultRules(), scoreNow)
		Score(u, task, domain.DirDown, DefaultRules(), scoreNow)
	}
	if math.IsNaN(task.Value) || math.IsInf(task.Value, 0) {
		t.Fatalf("value diverged: %v", task.Value)
	}
	// 钳位后的幂曲线单步增量不会超过 floor 处的幂值
	if math.Abs(task.Value) > math.Pow(deltaBase, DefaultRules().ValueFloor)*100 {
		t.Fatalf("value drifted out of bounds: %v", task.Value)
	}
}

func TestScorePriorityMultiplier(t *testing.T) {
	base := &domain.Task{Type: domain.TaskTodo}
	hard := &domain.Task{Type: domain.TaskTodo, Priority: domain.PriorityHighest}

	u1, u2 := newTestUser(), newTestUser()
	d1 := Score(u1, base, domain.DirUp, DefaultRules(), scoreNow)
	d2 := Score(u2, hard, domain.DirUp, DefaultRules(), scoreNow)
	if math.Abs(d2-d1*2) > 1e-9 {
		t.Fatalf("!!!! should double the delta: %v vs %v", d2, d1)
	}
}

func TestScoreStreakBonus(t *testing.T) {
	u1, u2 := newTestUser(), newTestUser()
	fresh := &domain.Task{Type: domain.TaskDaily}
	long := &domain.Task{Type: domain.TaskDaily, Streak: 50}

	d1 := Score(u1, fresh, domain.DirUp, DefaultRules(), scoreNow)
	d2 := Score(u2, long, domain.DirUp, DefaultRules(), scoreNow)
	if math.Abs(d2-d1*1.5) > 1e-9 {
		t.Fatalf("streak 50 should give 1.5x, got %v vs %v", d2, d1)
	}

	u3 := newTestUser()
	capped := &domain.Task{Type: domain.TaskDaily, Streak: 500}
	d3 := Score(u3, capped, domain.DirUp, DefaultRules(), scoreNow)
	if math.Abs(d3-d1*2) > 1e-9 {
		t.Fatalf("streak bonus should cap at 2x, got %v vs %v", d3, d1)
	}
}

func TestScoreRewardSpendsGold(t *testing.T) {
	u := newTestUser()
	u.Stats.GP = 100
	reward := &domain.Task{Type: domain.TaskReward, Value: 30}

	delta := Score(u, reward, domain.DirUp, DefaultRules(), scoreNow)
	if delta != -30 {
		t.Fatalf("reward delta = %v, want -30", delta)
	}
	if u.Stats.GP != 70 {
		t.Fatalf("gp = %v, want 70", u.Stats.GP)
	}
	if reward.Value != 30 {
		t.Fatalf("reward value must not drift, got %v", reward.Value)
	}

	Score(u, &domain.Task{Type: domain.TaskReward, Value: 1000}, domain.DirUp, DefaultRules(), scoreNow)
	if u.Stats.GP != 0 {
		t.Fatalf("gold should floor at 0, got %v", u.Stats.GP)
	}
}

func TestLevelCarry(t *testing.T) {
	if ToNextLevel(1) != 150 {
		t.Fatalf("ToNextLevel(1) = %v, want 150", ToNextLevel(1))
	}
	for lvl := 1; lvl < 50; lvl++ {
		if ToNextLevel(lvl+1) <= ToNextLevel(lvl) {
			t.Fatalf("curve must be monotonic at lvl %d", lvl)
		}
	}

	u := newTestUser()
	u.Stats.Exp = ToNextLevel(1) + ToNextLevel(2) + 5
	recomputeLevel(&u.Stats)
	if u.Stats.Lvl != 3 {
		t.Fatalf("lvl = %d, want 3", u.Stats.Lvl)
	}
	if u.Stats.Exp != 5 {
		t.Fatalf("residual exp = %v, want 5", u.Stats.Exp)
	}
}
