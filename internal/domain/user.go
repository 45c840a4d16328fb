package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Stats 游戏属性，hp 落到 0 视为死亡
type Stats struct {
	HP  float64 `json:"hp"`
	Exp float64 `json:"exp"`
	GP  float64 `json:"gp"`
	Lvl int     `json:"lvl"`
}

type LocalAuth struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	HashedPassword string `json:"hashed_password"`
}

type AuthTimestamps struct {
	Created  time.Time `json:"created"`
	LoggedIn time.Time `json:"loggedin"`
}

type Auth struct {
	Local      LocalAuth      `json:"local"`
	Timestamps AuthTimestamps `json:"timestamps"`
}

// Items 装备等级，0 表示未购买
type Items struct {
	Weapon int `json:"weapon"`
	Armor  int `json:"armor"`
	Head   int `json:"head"`
	Shield int `json:"shield"`
}

type Preferences struct {
	DayStart       int `json:"dayStart"`
	TimezoneOffset int `json:"timezoneOffset"`
}

type Flags struct {
	DropsEnabled bool `json:"dropsEnabled"`
	ItemsEnabled bool `json:"itemsEnabled"`
	Rest         bool `json:"rest"`
}

type Achievements struct {
	OriginalUser bool `json:"originalUser"`
	UltimateGear bool `json:"ultimateGear"`
}

// History 用户级采样：经验曲线与每日 todo 清理量
type History struct {
	Exp   []Sample `json:"exp,omitempty"`
	Todos []Sample `json:"todos,omitempty"`
}

type Profile struct {
	Name     string   `json:"name,omitempty"`
	Blurb    string   `json:"blurb,omitempty"`
	ImageURL string   `json:"imageUrl,omitempty"`
	Websites []string `json:"websites,omitempty"`
}

type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// User 聚合根：四条有序 id 列表 + tasks 映射必须保持一一对应
type User struct {
	ID       string `gorm:"primaryKey;size:36" json:"id"`
	APIToken string `gorm:"size:36;index" json:"-"`
	// Username 从 Auth 冗余出来的查询列，登录用
	Username string `gorm:"uniqueIndex;size:64" json:"-"`

	Auth         Auth         `gorm:"type:json" json:"-"`
	Stats        Stats        `gorm:"type:json" json:"stats"`
	HabitIDs     StringList   `gorm:"type:json" json:"habitIds"`
	DailyIDs     StringList   `gorm:"type:json" json:"dailyIds"`
	TodoIDs      StringList   `gorm:"type:json" json:"todoIds"`
	RewardIDs    StringList   `gorm:"type:json" json:"rewardIds"`
	Tasks        TaskMap      `gorm:"type:json" json:"tasks"`
	Items        Items        `gorm:"type:json" json:"items"`
	Preferences  Preferences  `gorm:"type:json" json:"preferences"`
	Flags        Flags        `gorm:"type:json" json:"flags"`
	Achievements Achievements `gorm:"type:json" json:"achievements"`
	History      History      `gorm:"type:json" json:"history"`
	Tags         TagList      `gorm:"type:json" json:"tags"`
	Profile      Profile      `gorm:"type:json" json:"profile"`
	Balance      float64      `json:"balance"`
	LastCron     time.Time    `json:"lastCron"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

// NewUser 注册时的初始状态
func NewUser(id, apiToken string, now time.Time) *User {
	return &User{
		ID:       id,
		APIToken: apiToken,
		Stats:    Stats{HP: 50, Exp: 0, GP: 0, Lvl: 1},
		Tasks:    TaskMap{},
		LastCron: now,
	}
}

// IDList 返回某类型任务的有序 id 列表指针，便于原位修改
func (u *User) IDList(t TaskType) *StringList {
	switch t {
	case TaskDaily:
		return &u.DailyIDs
	case TaskTodo:
		return &u.TodoIDs
	case TaskReward:
		return &u.RewardIDs
	default:
		return &u.HabitIDs
	}
}

func (u *User) Dead() bool { return u.Stats.HP <= 0 }

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByToken(ctx context.Context, id, token string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context, offset, limit int) ([]User, int64, error)
	Save(ctx context.Context, u *User, touched Touched) error
	SoftDelete(ctx context.Context, id string) error
}
