package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"go-habit-engine/internal/domain"
)

// RunBatch 顺序重放一组异构操作：后面的动作可以引用前面刚建出来的任务，
// 所以绝不并行。单个动作失败只记日志，不回滚、不中断，也不污染聚合
// （每个处理器都是先校验后改动）。跑完统一落库一次；只有落库失败才算
// 整个请求失败，按约定不向调用方透出每条动作的明细。
func (s *Service) RunBatch(ctx context.Context, u *domain.User, actions []domain.BatchAction) (UserView, error) {
	touched := domain.Touched{}
	failed := 0
	for i, a := range actions {
		if a.Empty() {
			continue
		}
		tch, err := s.applyAction(u, a)
		touched.Merge(tch)
		if err != nil {
			failed++
			s.log.Error("batch action failed",
				zap.Int("index", i),
				zap.String("op", a.Op),
				zap.String("user", u.ID),
				zap.Error(err),
			)
		}
	}
	if failed > 0 {
		s.log.Warn("batch completed with failures",
			zap.String("user", u.ID),
			zap.Int("actions", len(actions)),
			zap.Int("failed", failed),
		)
	}
	if err := s.users.Save(ctx, u, touched); err != nil {
		return UserView{}, fmt.Errorf("persist batch: %w", err)
	}
	return s.GetUser(u), nil
}

// applyAction 单条动作分发。未知 op 是空操作，不算错误。
func (s *Service) applyAction(u *domain.User, a domain.BatchAction) (domain.Touched, error) {
	switch a.Op {
	case domain.OpScore:
		in, err := decodeInput(a)
		if err != nil {
			return nil, err
		}
		_, touched, err := s.scoreTask(u, in.ID, a.Dir, in)
		return touched, err
	case domain.OpBuy:
		_, touched, err := s.buy(u, a.Type)
		return touched, err
	case domain.OpAddTask:
		in, err := decodeInput(a)
		if err != nil {
			return nil, err
		}
		_, touched, err := s.createTask(u, in)
		return touched, err
	case domain.OpDelTask:
		in, err := decodeInput(a)
		if err != nil {
			return nil, err
		}
		return s.deleteTask(u, in.ID)
	case domain.OpSortTask:
		in, err := decodeInput(a)
		if err != nil {
			return nil, err
		}
		return s.sortTask(u, in)
	case domain.OpSet:
		var attrs map[string]any
		if len(a.Data) > 0 {
			if err := json.Unmarshal(a.Data, &attrs); err != nil {
				return nil, fmt.Errorf("decode set data: %w", err)
			}
		}
		return s.updateUser(u, attrs), nil
	case domain.OpRevive:
		return s.revive(u)
	default:
		return nil, nil
	}
}

// decodeInput action.data 解析为任务输入；action 级的 type 兜底 body 里缺的
func decodeInput(a domain.BatchAction) (*TaskInput, error) {
	in := &TaskInput{}
	if len(a.Data) > 0 {
		if err := json.Unmarshal(a.Data, in); err != nil {
			return nil, fmt.Errorf("decode %s data: %w", a.Op, err)
		}
	}
	if in.Type == "" {
		in.Type = a.Type
	}
	return in, nil
}
