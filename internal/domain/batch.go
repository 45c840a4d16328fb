package domain

import "encoding/json"

// 批量请求支持的操作名，未知 op 直接跳过
const (
	OpScore    = "score"
	OpBuy      = "buy"
	OpAddTask  = "addTask"
	OpDelTask  = "delTask"
	OpSortTask = "sortTask"
	OpSet      = "set"
	OpRevive   = "revive"
)

// BatchAction 客户端提交的单条操作，只在一次批量请求内存活
// Type 对 score/addTask 是任务类型，对 buy 是装备类型
type BatchAction struct {
	Op   string          `json:"op"`
	Type string          `json:"type,omitempty"`
	Dir  Direction       `json:"dir,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

func (a BatchAction) Empty() bool {
	return a.Op == "" && a.Type == "" && a.Dir == "" && len(a.Data) == 0
}
