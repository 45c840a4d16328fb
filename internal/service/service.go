package service

import (
	"time"

	"go.uber.org/zap"

	"go-habit-engine/internal/domain"
	"go-habit-engine/internal/engine"
)

// Service 任务引擎的应用层：单个操作自己落库，批量由 RunBatch 统一落库一次
type Service struct {
	log   *zap.Logger
	users domain.UserRepository
	rules engine.Rules
	now   func() time.Time
}

func New(log *zap.Logger, users domain.UserRepository, rules engine.Rules) *Service {
	return &Service{
		log:   log,
		users: users,
		rules: rules,
		now:   time.Now,
	}
}

// WithClock 测试用：固定时钟
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// listField 任务类型对应的有序列表属性名，也是脏字段标记
func listField(t domain.TaskType) string {
	switch t {
	case domain.TaskDaily:
		return "dailyIds"
	case domain.TaskTodo:
		return "todoIds"
	case domain.TaskReward:
		return "rewardIds"
	default:
		return "habitIds"
	}
}
