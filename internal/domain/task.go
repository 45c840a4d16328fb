package domain

import (
	"fmt"
	"strings"
	"time"
)

type TaskType string

const (
	TaskHabit  TaskType = "habit"
	TaskDaily  TaskType = "daily"
	TaskTodo   TaskType = "todo"
	TaskReward TaskType = "reward"
)

func (t TaskType) IsValid() bool {
	switch t {
	case TaskHabit, TaskDaily, TaskTodo, TaskReward:
		return true
	default:
		return false
	}
}

func ParseTaskType(input string) (TaskType, error) {
	t := TaskType(strings.TrimSpace(strings.ToLower(input)))
	if !t.IsValid() {
		return "", fmt.Errorf("type must be habit, todo, daily, or reward: %q", input)
	}
	return t, nil
}

// TaskTypes 固定的展示顺序
var TaskTypes = []TaskType{TaskHabit, TaskDaily, TaskTodo, TaskReward}

type Direction string

const (
	DirUp   Direction = "up"
	DirDown Direction = "down"
)

func (d Direction) IsValid() bool { return d == DirUp || d == DirDown }

// Priority 对应客户端的 "!" 档位，影响计分倍率
type Priority string

const (
	PriorityTrivial Priority = "!"
	PriorityMedium  Priority = "!!"
	PriorityHigh    Priority = "!!!"
	PriorityHighest Priority = "!!!!"
)

func (p Priority) Multiplier() float64 {
	switch p {
	case PriorityMedium:
		return 1.25
	case PriorityHigh:
		return 1.5
	case PriorityHighest:
		return 2
	default:
		return 1
	}
}

// Sample 历史采样点（任务价值 / 用户经验）
type Sample struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// RepeatMap daily 的每周排期，键沿用客户端缩写：su m t w th f s
type RepeatMap map[string]bool

var weekdayKeys = [7]string{"su", "m", "t", "w", "th", "f", "s"}

// DueOn 为空的排期视为每天都排
func (r RepeatMap) DueOn(wd time.Weekday) bool {
	if len(r) == 0 {
		return true
	}
	return r[weekdayKeys[int(wd)]]
}

type Task struct {
	ID       string          `json:"id"`
	Type     TaskType        `json:"type"`
	Text     string          `json:"text"`
	Notes    string          `json:"notes,omitempty"`
	Tags     map[string]bool `json:"tags,omitempty"`
	Value    float64         `json:"value"`
	Priority Priority        `json:"priority,omitempty"`

	// habit
	Up   bool `json:"up,omitempty"`
	Down bool `json:"down,omitempty"`

	// daily / todo
	Completed     bool       `json:"completed,omitempty"`
	Streak        int        `json:"streak,omitempty"`
	Repeat        RepeatMap  `json:"repeat,omitempty"`
	DateCompleted *time.Time `json:"dateCompleted,omitempty"`

	History []Sample `json:"history,omitempty"`
}

// Scoreable habit 只能朝开启的方向计分，其余类型不受方向限制
func (t *Task) Scoreable(dir Direction) bool {
	if t.Type != TaskHabit {
		return true
	}
	if dir == DirUp {
		return t.Up
	}
	return t.Down
}

// HasCompleted 只有 daily/todo 携带 completed 状态
func (t *Task) HasCompleted() bool {
	return t.Type == TaskDaily || t.Type == TaskTodo
}
