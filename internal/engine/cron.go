package engine

import (
	"time"

	"go-habit-engine/internal/domain"
)

// DaysSince 以用户的 dayStart（一天从几点算起）修正后的自然日差
func DaysSince(last, now time.Time, dayStart int) int {
	shift := time.Duration(dayStart) * time.Hour
	a := dayOf(last.Add(-shift))
	b := dayOf(now.Add(-shift))
	return int(b.Sub(a).Hours() / 24)
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// RunCron 每日滚动：漏掉的 daily 扣分清连击、完成的 daily 进连击并复位、
// 完成的 todo 清理出聚合。同一天内重复调用是空操作。
// 计分本身不会失败，所以这里没有部分失败路径——所有任务一遍跑完。
func RunCron(u *domain.User, now time.Time, r Rules) bool {
	if DaysSince(u.LastCron, now, u.Preferences.DayStart) <= 0 {
		return false
	}
	yesterday := now.AddDate(0, 0, -1)

	for _, id := range append(domain.StringList{}, u.DailyIDs...) {
		t := u.Tasks[id]
		if t == nil {
			continue
		}
		if t.Completed {
			t.Streak++
			t.Completed = false
			continue
		}
		// 昨天没排期就不罚
		if t.Repeat.DueOn(yesterday.Weekday()) {
			Score(u, t, domain.DirDown, r, now)
			t.Streak = 0
		}
	}

	cleared := 0
	for _, id := range append(domain.StringList{}, u.TodoIDs...) {
		t := u.Tasks[id]
		if t == nil || !t.Completed {
			continue
		}
		// 今天刚完成的留到明天再清
		if t.DateCompleted != nil && DaysSince(*t.DateCompleted, now, u.Preferences.DayStart) <= 0 {
			continue
		}
		_ = DeleteTask(u, t)
		cleared++
	}
	u.History.Todos = append(u.History.Todos, domain.Sample{Date: now, Value: float64(cleared)})

	u.LastCron = now
	return true
}
