package engine

import (
	"fmt"
	"strings"

	"go-habit-engine/internal/domain"
)

type EquipType string

const (
	EquipWeapon EquipType = "weapon"
	EquipArmor  EquipType = "armor"
	EquipHead   EquipType = "head"
	EquipShield EquipType = "shield"
)

func ParseEquipType(input string) (EquipType, error) {
	e := EquipType(strings.TrimSpace(strings.ToLower(input)))
	switch e {
	case EquipWeapon, EquipArmor, EquipHead, EquipShield:
		return e, nil
	default:
		return "", fmt.Errorf("type must be in one of: 'weapon', 'armor', 'head', 'shield': %q", input)
	}
}

// 每件装备的逐级售价，下标 = 已有等级（即买下一级的价格）
var equipCosts = map[EquipType][]float64{
	EquipWeapon: {20, 30, 45, 65, 90, 120},
	EquipArmor:  {30, 45, 65, 90, 120, 150},
	EquipHead:   {15, 25, 40, 60, 80, 100},
	EquipShield: {20, 35, 50, 70, 90, 110},
}

func equipLevel(items *domain.Items, e EquipType) *int {
	switch e {
	case EquipArmor:
		return &items.Armor
	case EquipHead:
		return &items.Head
	case EquipShield:
		return &items.Shield
	default:
		return &items.Weapon
	}
}

// NextCost 买下一级的价格；已满级时 ok=false
func NextCost(items domain.Items, e EquipType) (float64, bool) {
	costs := equipCosts[e]
	lvl := *equipLevel(&items, e)
	if lvl < 0 || lvl >= len(costs) {
		return 0, false
	}
	return costs[lvl], true
}

// Buy 购买下一级装备，金币不足或已满级返回 false（与计分一样不产生错误）
func Buy(u *domain.User, e EquipType) bool {
	cost, ok := NextCost(u.Items, e)
	if !ok || u.Stats.GP < cost {
		return false
	}
	*equipLevel(&u.Items, e) += 1
	u.Stats.GP -= cost
	if gearMaxed(u.Items) {
		u.Achievements.UltimateGear = true
	}
	return true
}

func gearMaxed(items domain.Items) bool {
	for e, costs := range equipCosts {
		if *equipLevel(&items, e) < len(costs) {
			return false
		}
	}
	return true
}

// Revive 死亡后复活：满血、清空经验金币、掉一级、降一件最好的装备。
// 全程确定性，批量重放结果一致。
func Revive(u *domain.User, r Rules) {
	u.Stats.HP = r.MaxHealth
	u.Stats.Exp = 0
	u.Stats.GP = 0
	if u.Stats.Lvl > r.LevelFloor {
		u.Stats.Lvl--
	}
	// 按固定顺序找等级最高的一件降级
	best := EquipType("")
	bestLvl := 0
	for _, e := range []EquipType{EquipWeapon, EquipArmor, EquipHead, EquipShield} {
		if lvl := *equipLevel(&u.Items, e); lvl > bestLvl {
			best, bestLvl = e, lvl
		}
	}
	if best != "" {
		*equipLevel(&u.Items, best) -= 1
		u.Achievements.UltimateGear = false
	}
}
