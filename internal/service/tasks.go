package service

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"go-habit-engine/internal/domain"
	"go-habit-engine/internal/engine"
	"go-habit-engine/pkg/utils"
)

// machineNotes 第三方计分自动建任务时带的说明
const machineNotes = "This task was created by a third-party service. " +
	"Feel free to edit, it won't harm the connection to that service. " +
	"Additionally, multiple services may piggy-back off this task."

// TaskInput 客户端提交的任务字段，指针字段区分 "没传" 和 "传了零值"
type TaskInput struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Text      *string         `json:"text"`
	Notes     *string         `json:"notes"`
	Title     *string         `json:"title"`
	Value     any             `json:"value"`
	Priority  *string         `json:"priority"`
	Up        *bool           `json:"up"`
	Down      *bool           `json:"down"`
	Completed *bool           `json:"completed"`
	Streak    *int            `json:"streak"`
	Repeat    map[string]bool `json:"repeat"`
	Tags      map[string]bool `json:"tags"`

	// sortTask 复用同一个 body
	To   *int   `json:"to"`
	From *int   `json:"from"`
	Sort string `json:"sort,omitempty"`
}

// coerceFloat 数字字段宽松解析，非数字一律回退 0
func coerceFloat(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// ScoreResult 单次计分的回执：最新属性值加本次增量
type ScoreResult struct {
	Stats domain.Stats `json:"stats"`
	Delta float64      `json:"delta"`
}

// ValidateTask 按请求方法整理任务输入：
// PUT/DELETE 要求任务已存在并做白名单合并，POST 构造新任务。
func (s *Service) ValidateTask(u *domain.User, method, id string, in *TaskInput) (*domain.Task, error) {
	if in == nil {
		in = &TaskInput{}
	}
	switch method {
	case http.MethodPut, http.MethodDelete:
		task, ok := u.Tasks[id]
		if !ok || task == nil {
			return nil, ErrTaskNotFound
		}
		if method == http.MethodPut {
			s.mergeTask(task, in)
		}
		return task, nil
	default: // POST
		typ, err := domain.ParseTaskType(in.Type)
		if err != nil {
			return nil, ErrInvalidType
		}
		task := &domain.Task{
			ID:    in.ID,
			Type:  typ,
			Value: coerceFloat(in.Value),
		}
		s.mergeTask(task, in)
		// 类型相关缺省：habit 默认双向、daily/todo 默认未完成
		switch typ {
		case domain.TaskHabit:
			if in.Up == nil {
				task.Up = true
			}
			if in.Down == nil {
				task.Down = true
			}
		case domain.TaskDaily, domain.TaskTodo:
			if in.Completed == nil {
				task.Completed = false
			}
		}
		return task, nil
	}
}

// mergeTask 白名单字段合并：只认这里列出的属性，类型和 id 永不跟着 body 走
func (s *Service) mergeTask(task *domain.Task, in *TaskInput) {
	if in.Text != nil {
		task.Text = utils.SanitizeText(*in.Text)
	}
	if in.Notes != nil {
		task.Notes = utils.SanitizeText(*in.Notes)
	}
	if in.Value != nil {
		task.Value = coerceFloat(in.Value)
	}
	if in.Priority != nil {
		task.Priority = domain.Priority(*in.Priority)
	}
	if in.Up != nil {
		task.Up = *in.Up
	}
	if in.Down != nil {
		task.Down = *in.Down
	}
	if in.Completed != nil && task.HasCompleted() {
		task.Completed = *in.Completed
	}
	if in.Streak != nil {
		task.Streak = *in.Streak
	}
	if in.Repeat != nil {
		task.Repeat = in.Repeat
	}
	if in.Tags != nil {
		task.Tags = in.Tags
	}
}

// ListTasks 按四条有序列表的顺序展开，可按类型过滤
func (s *Service) ListTasks(u *domain.User, typeFilter string) []*domain.Task {
	types := domain.TaskTypes
	if t, err := domain.ParseTaskType(typeFilter); err == nil {
		types = []domain.TaskType{t}
	}
	var out []*domain.Task
	for _, typ := range types {
		for _, id := range *u.IDList(typ) {
			if task := u.Tasks[id]; task != nil {
				out = append(out, task)
			}
		}
	}
	return out
}

func (s *Service) GetTask(u *domain.User, id string) (*domain.Task, error) {
	task, ok := u.Tasks[id]
	if !ok || task == nil {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

// CreateTask 校验后的新任务入库
func (s *Service) CreateTask(ctx context.Context, u *domain.User, in *TaskInput) (*domain.Task, error) {
	task, touched, err := s.createTask(u, in)
	if err != nil {
		return nil, err
	}
	return task, s.users.Save(ctx, u, touched)
}

func (s *Service) createTask(u *domain.User, in *TaskInput) (*domain.Task, domain.Touched, error) {
	// 带已知 id 的创建按更新处理，避免列表里出现重复 id
	if in != nil && in.ID != "" {
		if _, ok := u.Tasks[in.ID]; ok {
			task, err := s.ValidateTask(u, http.MethodPut, in.ID, in)
			if err != nil {
				return nil, nil, err
			}
			return task, domain.NewTouched("tasks"), nil
		}
	}
	task, err := s.ValidateTask(u, http.MethodPost, "", in)
	if err != nil {
		return nil, nil, err
	}
	engine.AddTask(u, task)
	return task, domain.NewTouched("tasks", listField(task.Type)), nil
}

// UpdateTask 白名单合并更新一个已存在的任务
func (s *Service) UpdateTask(ctx context.Context, u *domain.User, id string, in *TaskInput) (*domain.Task, error) {
	task, err := s.ValidateTask(u, http.MethodPut, id, in)
	if err != nil {
		return nil, err
	}
	return task, s.users.Save(ctx, u, domain.NewTouched("tasks"))
}

// DeleteTask 删除不存在的 id 是错误，不是空操作
func (s *Service) DeleteTask(ctx context.Context, u *domain.User, id string) error {
	touched, err := s.deleteTask(u, id)
	if err != nil {
		return err
	}
	return s.users.Save(ctx, u, touched)
}

func (s *Service) deleteTask(u *domain.User, id string) (domain.Touched, error) {
	if id == "" {
		return nil, ErrMissingID
	}
	task, ok := u.Tasks[id]
	if !ok || task == nil {
		return nil, ErrTaskNotFound
	}
	field := listField(task.Type)
	if err := engine.DeleteTask(u, task); err != nil {
		return nil, ErrTaskNotFound
	}
	return domain.NewTouched("tasks", field), nil
}

// SortTask 列表内移动，to/from/type 缺一不可
func (s *Service) SortTask(ctx context.Context, u *domain.User, in *TaskInput) error {
	touched, err := s.sortTask(u, in)
	if err != nil {
		return err
	}
	return s.users.Save(ctx, u, touched)
}

func (s *Service) sortTask(u *domain.User, in *TaskInput) (domain.Touched, error) {
	if in == nil || in.To == nil || in.From == nil {
		return nil, ErrInvalidSort
	}
	typ, err := domain.ParseTaskType(in.Type)
	if err != nil {
		return nil, ErrInvalidSort
	}
	if err := engine.ReorderTask(u, typ, *in.From, *in.To); err != nil {
		return nil, ErrInvalidSort
	}
	return domain.NewTouched(listField(typ)), nil
}

// ScoreTask 计分入口。未知 id 按第三方任务处理：先补建再计分。
func (s *Service) ScoreTask(ctx context.Context, u *domain.User, id string, dir domain.Direction, in *TaskInput) (*ScoreResult, error) {
	res, touched, err := s.scoreTask(u, id, dir, in)
	if err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, u, touched); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) scoreTask(u *domain.User, id string, dir domain.Direction, in *TaskInput) (*ScoreResult, domain.Touched, error) {
	if id == "" {
		return nil, nil, ErrMissingID
	}
	if !dir.IsValid() {
		return nil, nil, ErrInvalidDirection
	}
	if in == nil {
		in = &TaskInput{}
	}
	now := s.now()
	touched := domain.NewTouched("stats", "tasks", "history")

	task, ok := u.Tasks[id]
	if !ok || task == nil {
		task = s.synthesizeTask(u, id, dir, in)
		touched.Add(listField(task.Type))
	}
	if !task.Scoreable(dir) {
		return nil, nil, ErrDirectionDisabled
	}
	if task.Type == domain.TaskReward && u.Stats.GP < task.Value {
		return nil, nil, ErrNotEnoughGold
	}
	if task.HasCompleted() {
		task.Completed = dir == domain.DirUp
		if task.Completed {
			task.DateCompleted = &now
		} else {
			task.DateCompleted = nil
		}
	}
	delta := engine.Score(u, task, dir, s.rules, now)
	return &ScoreResult{Stats: u.Stats, Delta: delta}, touched, nil
}

// synthesizeTask 第三方 up/down 打到未知 id 上：默认建 habit，双向可计分
func (s *Service) synthesizeTask(u *domain.User, id string, dir domain.Direction, in *TaskInput) *domain.Task {
	typ, err := domain.ParseTaskType(in.Type)
	if err != nil {
		typ = domain.TaskHabit
	}
	text := id
	if in.Title != nil && *in.Title != "" {
		text = utils.SanitizeText(*in.Title)
	} else if in.Text != nil && *in.Text != "" {
		text = utils.SanitizeText(*in.Text)
	}
	task := &domain.Task{
		ID:    id,
		Type:  typ,
		Text:  text,
		Notes: machineNotes,
		Value: 0,
	}
	switch typ {
	case domain.TaskHabit:
		task.Up, task.Down = true, true
	case domain.TaskDaily, domain.TaskTodo:
		task.Completed = dir == domain.DirUp
	}
	return engine.AddTask(u, task)
}

// Buy 购买装备，余额不足或类型非法时不产生任何变更
func (s *Service) Buy(ctx context.Context, u *domain.User, equip string) (*domain.Items, error) {
	items, touched, err := s.buy(u, equip)
	if err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, u, touched); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Service) buy(u *domain.User, equip string) (*domain.Items, domain.Touched, error) {
	e, err := engine.ParseEquipType(equip)
	if err != nil {
		return nil, nil, err
	}
	if !engine.Buy(u, e) {
		return nil, nil, ErrNotEnoughGold
	}
	return &u.Items, domain.NewTouched("stats", "items", "achievements"), nil
}

// Revive 死亡状态下恢复，活人调用是校验错误
func (s *Service) Revive(ctx context.Context, u *domain.User) error {
	touched, err := s.revive(u)
	if err != nil {
		return err
	}
	return s.users.Save(ctx, u, touched)
}

func (s *Service) revive(u *domain.User) (domain.Touched, error) {
	if !u.Dead() {
		return nil, ErrNotDead
	}
	engine.Revive(u, s.rules)
	return domain.NewTouched("stats", "items", "achievements"), nil
}

// RunCron 每日滚动；同一天重复调用不会写库
func (s *Service) RunCron(ctx context.Context, u *domain.User) (bool, error) {
	if !engine.RunCron(u, s.now(), s.rules) {
		return false, nil
	}
	touched := domain.NewTouched("stats", "tasks", "history", "lastCron", "todoIds")
	return true, s.users.Save(ctx, u, touched)
}
