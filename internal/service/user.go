package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go-habit-engine/internal/domain"
	"go-habit-engine/internal/engine"
	"go-habit-engine/pkg/utils"
)

// 外部可写的顶层属性白名单。不在名单里的键直接忽略，
// 不做反射式任意路径赋值。
var settableAttrs = map[string]bool{
	"achievements": true,
	"flags":        true,
	"items":        true,
	"lastCron":     true,
	"preferences":  true,
	"profile":      true,
	"stats":        true,
	"tags":         true,
	"tasks":        true,
}

// UserView 返回给客户端的用户视图，附带升级阈值和血量上限
type UserView struct {
	*domain.User
	ToNextLevel float64 `json:"toNextLevel"`
	MaxHealth   float64 `json:"maxHealth"`
}

func (s *Service) GetUser(u *domain.User) UserView {
	return UserView{
		User:        u,
		ToNextLevel: engine.ToNextLevel(u.Stats.Lvl),
		MaxHealth:   s.rules.MaxHealth,
	}
}

// UpdateUser 白名单内的属性合并，支持 "stats.hp" 这类点分子路径
func (s *Service) UpdateUser(ctx context.Context, u *domain.User, attrs map[string]any) (UserView, error) {
	touched := s.updateUser(u, attrs)
	if len(touched) > 0 {
		if err := s.users.Save(ctx, u, touched); err != nil {
			return UserView{}, err
		}
	}
	return s.GetUser(u), nil
}

func (s *Service) updateUser(u *domain.User, attrs map[string]any) domain.Touched {
	touched := domain.Touched{}
	for path, v := range attrs {
		segs := strings.Split(path, ".")
		if !settableAttrs[segs[0]] {
			continue
		}
		if setAttr(u, segs, v) {
			touched.Add(segs[0])
		}
	}
	return touched
}

// setAttr 显式逐字段赋值；返回是否真的写了东西
func setAttr(u *domain.User, segs []string, v any) bool {
	switch segs[0] {
	case "stats":
		if len(segs) == 1 {
			return recode(v, &u.Stats)
		}
		switch segs[1] {
		case "hp":
			u.Stats.HP = coerceFloat(v)
		case "exp":
			u.Stats.Exp = coerceFloat(v)
		case "gp":
			u.Stats.GP = coerceFloat(v)
		case "lvl":
			u.Stats.Lvl = int(coerceFloat(v))
		default:
			return false
		}
		return true
	case "preferences":
		if len(segs) == 1 {
			return recode(v, &u.Preferences)
		}
		switch segs[1] {
		case "dayStart":
			u.Preferences.DayStart = int(coerceFloat(v))
		case "timezoneOffset":
			u.Preferences.TimezoneOffset = int(coerceFloat(v))
		default:
			return false
		}
		return true
	case "flags":
		if len(segs) == 1 {
			return recode(v, &u.Flags)
		}
		b, _ := v.(bool)
		switch segs[1] {
		case "dropsEnabled":
			u.Flags.DropsEnabled = b
		case "itemsEnabled":
			u.Flags.ItemsEnabled = b
		case "rest":
			u.Flags.Rest = b
		default:
			return false
		}
		return true
	case "achievements":
		if len(segs) == 1 {
			return recode(v, &u.Achievements)
		}
		b, _ := v.(bool)
		switch segs[1] {
		case "originalUser":
			u.Achievements.OriginalUser = b
		case "ultimateGear":
			u.Achievements.UltimateGear = b
		default:
			return false
		}
		return true
	case "items":
		if len(segs) == 1 {
			return recode(v, &u.Items)
		}
		n := int(coerceFloat(v))
		switch segs[1] {
		case "weapon":
			u.Items.Weapon = n
		case "armor":
			u.Items.Armor = n
		case "head":
			u.Items.Head = n
		case "shield":
			u.Items.Shield = n
		default:
			return false
		}
		return true
	case "profile":
		if len(segs) == 1 {
			return recode(v, &u.Profile)
		}
		str, _ := v.(string)
		switch segs[1] {
		case "name":
			u.Profile.Name = utils.SanitizeText(str)
		case "blurb":
			u.Profile.Blurb = utils.SanitizeText(str)
		case "imageUrl":
			u.Profile.ImageURL = str
		default:
			return false
		}
		return true
	case "lastCron":
		if ts, ok := parseTime(v); ok {
			u.LastCron = ts
			return true
		}
		return false
	case "tags":
		return recode(v, &u.Tags)
	case "tasks":
		// tasks.<id>.<field>，类型和 id 不可改
		if len(segs) != 3 {
			return false
		}
		task := u.Tasks[segs[1]]
		if task == nil {
			return false
		}
		return setTaskField(task, segs[2], v)
	}
	return false
}

func setTaskField(task *domain.Task, field string, v any) bool {
	switch field {
	case "text":
		str, _ := v.(string)
		task.Text = utils.SanitizeText(str)
	case "notes":
		str, _ := v.(string)
		task.Notes = utils.SanitizeText(str)
	case "value":
		task.Value = coerceFloat(v)
	case "priority":
		str, _ := v.(string)
		task.Priority = domain.Priority(str)
	case "up":
		b, _ := v.(bool)
		task.Up = b
	case "down":
		b, _ := v.(bool)
		task.Down = b
	case "completed":
		if !task.HasCompleted() {
			return false
		}
		b, _ := v.(bool)
		task.Completed = b
	case "streak":
		task.Streak = int(coerceFloat(v))
	case "repeat":
		var r domain.RepeatMap
		if !recode(v, &r) {
			return false
		}
		task.Repeat = r
	default:
		return false
	}
	return true
}

// recode 整个子对象的赋值走一次 JSON 往返，复用字段标签
func recode(v any, dst any) bool {
	b, err := json.Marshal(v)
	if err != nil {
		return false
	}
	return json.Unmarshal(b, dst) == nil
}

func parseTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case string:
		ts, err := time.Parse(time.RFC3339, t)
		return ts, err == nil
	case float64:
		// epoch 毫秒
		return time.UnixMilli(int64(t)), true
	default:
		return time.Time{}, false
	}
}
