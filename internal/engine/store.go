package engine

import (
	"go-habit-engine/internal/domain"
	"go-habit-engine/pkg/utils"
)

// AddTask 写入 tasks 映射并把 id 插到对应有序列表最前面（最新优先）。
// 两个结构的写入在同一步完成，调用方拿到的聚合不会出现半挂状态。
func AddTask(u *domain.User, t *domain.Task) *domain.Task {
	if t.ID == "" {
		t.ID = utils.NewID()
	}
	if t.Type == "" {
		t.Type = domain.TaskHabit
	}
	if u.Tasks == nil {
		u.Tasks = domain.TaskMap{}
	}
	u.Tasks[t.ID] = t
	list := u.IDList(t.Type)
	*list = append(domain.StringList{t.ID}, *list...)
	return t
}

// DeleteTask 同时从 tasks 映射和有序列表移除。
// id 不在映射里是调用方错误；不在列表里则容忍（列表自会收敛）。
func DeleteTask(u *domain.User, t *domain.Task) error {
	existing, ok := u.Tasks[t.ID]
	if !ok {
		return ErrTaskNotFound
	}
	delete(u.Tasks, t.ID)
	list := u.IDList(existing.Type)
	for i, id := range *list {
		if id == t.ID {
			*list = append((*list)[:i], (*list)[i+1:]...)
			break
		}
	}
	return nil
}

// ReorderTask 列表内原位移动：抽出 from 处的 id 插到 to 处。
// 下标越界直接报错，不悄悄钳制。
func ReorderTask(u *domain.User, t domain.TaskType, from, to int) error {
	list := u.IDList(t)
	n := len(*list)
	if from < 0 || from >= n || to < 0 || to >= n {
		return ErrBadIndex
	}
	if from == to {
		return nil
	}
	id := (*list)[from]
	rest := append((*list)[:from], (*list)[from+1:]...)
	out := make(domain.StringList, 0, n)
	out = append(out, rest[:to]...)
	out = append(out, id)
	out = append(out, rest[to:]...)
	*list = out
	return nil
}
