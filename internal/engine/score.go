package engine

import (
	"math"
	"time"

	"go-habit-engine/internal/domain"
)

const (
	// deltaBase 计分曲线底数：价值越高（越"好"）增量越小，越低惩罚越重
	deltaBase = 0.9747
	// goldEarnRate 金币按经验增量的折半入账
	goldEarnRate = 0.5
	// streakCap 连击加成封顶（100 次 = 双倍）
	streakCap = 100
)

// ToNextLevel 当前等级升到下一级需要的经验值，单调递增
func ToNextLevel(lvl int) float64 {
	l := float64(lvl)
	return math.Round((l*l*0.25+10*l+139.75)/10) * 10
}

// Score 对一个任务计分并把结果落到用户属性上，返回本次增量。
// 纯算术，无 I/O，也不做方向校验——那是服务层的事。
func Score(u *domain.User, t *domain.Task, dir domain.Direction, r Rules, now time.Time) float64 {
	if t.Type == domain.TaskReward {
		return buyReward(u, t)
	}

	value := clamp(t.Value, r.ValueFloor, r.ValueCeil)
	delta := math.Pow(deltaBase, value)
	if dir == domain.DirDown {
		delta = -delta
	}
	delta *= t.Priority.Multiplier()

	if t.Type == domain.TaskHabit || t.Type == domain.TaskDaily {
		if dir == domain.DirUp {
			delta *= streakBonus(t.Streak)
			t.Streak++
		} else {
			t.Streak = 0
		}
	}

	// 价值朝着本次得分方向漂移；幅度来自钳位后的幂曲线，天然递减
	t.Value += delta
	if t.Type == domain.TaskHabit {
		t.History = append(t.History, domain.Sample{Date: now, Value: t.Value})
	}

	if delta > 0 {
		u.Stats.Exp += delta
		u.Stats.GP += delta * goldEarnRate
		u.History.Exp = append(u.History.Exp, domain.Sample{Date: now, Value: u.Stats.Exp})
	} else {
		u.Stats.HP += delta
		if u.Stats.HP < 0 {
			u.Stats.HP = 0
		}
	}
	recomputeLevel(&u.Stats)
	return delta
}

func streakBonus(streak int) float64 {
	if streak > streakCap {
		streak = streakCap
	}
	if streak < 0 {
		streak = 0
	}
	return 1 + float64(streak)/100
}

// buyReward reward 计分即购买：按任务价值扣金币，不产生价值漂移
func buyReward(u *domain.User, t *domain.Task) float64 {
	u.Stats.GP -= t.Value
	if u.Stats.GP < 0 {
		u.Stats.GP = 0
	}
	return -t.Value
}

// recomputeLevel 经验进位循环：逐级扣除升级阈值
func recomputeLevel(s *domain.Stats) {
	if s.Lvl < 1 {
		s.Lvl = 1
	}
	for s.Exp >= ToNextLevel(s.Lvl) {
		s.Exp -= ToNextLevel(s.Lvl)
		s.Lvl++
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
