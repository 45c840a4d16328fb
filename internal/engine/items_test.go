package engine

import (
	"testing"

	"go-habit-engine/internal/domain"
)

func TestParseEquipType(t *testing.T) {
	if e, err := ParseEquipType(" Weapon "); err != nil || e != EquipWeapon {
		t.Fatalf("ParseEquipType: %v %v", e, err)
	}
	if _, err := ParseEquipType("wand"); err == nil {
		t.Fatalf("unknown equip type should fail")
	}
}

func TestBuy(t *testing.T) {
	u := newTestUser()
	u.Stats.GP = 25

	if Buy(u, EquipWeapon) != true {
		t.Fatalf("20g weapon should be affordable with 25g")
	}
	if u.Items.Weapon != 1 || u.Stats.GP != 5 {
		t.Fatalf("weapon=%d gp=%v after buy", u.Items.Weapon, u.Stats.GP)
	}

	if Buy(u, EquipWeapon) {
		t.Fatalf("5g cannot afford the 30g upgrade")
	}
	if u.Items.Weapon != 1 || u.Stats.GP != 5 {
		t.Fatalf("failed buy must not mutate: weapon=%d gp=%v", u.Items.Weapon, u.Stats.GP)
	}
}

func TestBuyMaxedOut(t *testing.T) {
	u := newTestUser()
	u.Stats.GP = 10000
	u.Items = domain.Items{Weapon: 6, Armor: 6, Head: 6, Shield: 5}

	if !Buy(u, EquipShield) {
		t.Fatalf("last shield level should be buyable")
	}
	if !u.Achievements.UltimateGear {
		t.Fatalf("full gear should award ultimateGear")
	}
	if Buy(u, EquipShield) {
		t.Fatalf("maxed equipment cannot be bought again")
	}
}

func TestNextCost(t *testing.T) {
	items := domain.Items{Head: 2}
	cost, ok := NextCost(items, EquipHead)
	if !ok || cost != 40 {
		t.Fatalf("head level 2 next cost = %v %v, want 40", cost, ok)
	}
	if _, ok := NextCost(domain.Items{Weapon: 6}, EquipWeapon); ok {
		t.Fatalf("maxed weapon has no next cost")
	}
}

func TestRevive(t *testing.T) {
	u := newTestUser()
	u.Stats = domain.Stats{HP: 0, Exp: 44, GP: 12, Lvl: 5}
	u.Items = domain.Items{Weapon: 2, Armor: 3, Head: 1}
	u.Achievements.UltimateGear = true

	Revive(u, DefaultRules())
	if u.Stats.HP != 50 || u.Stats.Exp != 0 || u.Stats.GP != 0 {
		t.Fatalf("revive stats: %+v", u.Stats)
	}
	if u.Stats.Lvl != 4 {
		t.Fatalf("lvl = %d, want 4", u.Stats.Lvl)
	}
	if u.Items.Armor != 2 {
		t.Fatalf("best equipment should drop a level, armor = %d", u.Items.Armor)
	}
	if u.Items.Weapon != 2 || u.Items.Head != 1 {
		t.Fatalf("only one item may be downgraded: %+v", u.Items)
	}
	if u.Achievements.UltimateGear {
		t.Fatalf("ultimateGear should be revoked")
	}
}

func TestReviveAtFloor(t *testing.T) {
	u := newTestUser()
	u.Stats.HP = 0
	Revive(u, DefaultRules())
	if u.Stats.Lvl != 1 {
		t.Fatalf("level must not drop below 1, got %d", u.Stats.Lvl)
	}
	if u.Items != (domain.Items{}) {
		t.Fatalf("no equipment means nothing to downgrade: %+v", u.Items)
	}
}

func TestReviveDeterministic(t *testing.T) {
	mk := func() *domain.User {
		u := newTestUser()
		u.Stats = domain.Stats{HP: 0, Exp: 10, GP: 3, Lvl: 8}
		u.Items = domain.Items{Weapon: 4, Armor: 4, Shield: 2}
		return u
	}
	a, b := mk(), mk()
	Revive(a, DefaultRules())
	Revive(b, DefaultRules())
	if a.Stats != b.Stats || a.Items != b.Items {
		t.Fatalf("revive must be deterministic: %+v vs %+v", a, b)
	}
}
