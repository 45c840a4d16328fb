package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// 聚合根里嵌套结构一律作为 JSON 列落库，这里是共用的 Valuer/Scanner 实现

func jsonValue(v any) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func jsonScan(dst any, src any) error {
	switch s := src.(type) {
	case nil:
		return nil
	case []byte:
		if len(s) == 0 {
			return nil
		}
		return json.Unmarshal(s, dst)
	case string:
		if s == "" {
			return nil
		}
		return json.Unmarshal([]byte(s), dst)
	default:
		return fmt.Errorf("unsupported column type %T", src)
	}
}

// StringList 有序任务 id 列表（JSON 数组列）
type StringList []string

func (l StringList) Value() (driver.Value, error) { return jsonValue([]string(l)) }
func (l *StringList) Scan(src any) error          { return jsonScan(l, src) }

// TaskMap 任务 id → 任务记录（JSON 对象列）
type TaskMap map[string]*Task

func (m TaskMap) Value() (driver.Value, error) { return jsonValue(map[string]*Task(m)) }
func (m *TaskMap) Scan(src any) error          { return jsonScan(m, src) }

func (s Stats) Value() (driver.Value, error) { return jsonValue(s) }
func (s *Stats) Scan(src any) error          { return jsonScan(s, src) }

func (a Auth) Value() (driver.Value, error) { return jsonValue(a) }
func (a *Auth) Scan(src any) error          { return jsonScan(a, src) }

func (i Items) Value() (driver.Value, error) { return jsonValue(i) }
func (i *Items) Scan(src any) error          { return jsonScan(i, src) }

func (p Preferences) Value() (driver.Value, error) { return jsonValue(p) }
func (p *Preferences) Scan(src any) error          { return jsonScan(p, src) }

func (f Flags) Value() (driver.Value, error) { return jsonValue(f) }
func (f *Flags) Scan(src any) error          { return jsonScan(f, src) }

func (a Achievements) Value() (driver.Value, error) { return jsonValue(a) }
func (a *Achievements) Scan(src any) error          { return jsonScan(a, src) }

func (h History) Value() (driver.Value, error) { return jsonValue(h) }
func (h *History) Scan(src any) error          { return jsonScan(h, src) }

func (p Profile) Value() (driver.Value, error) { return jsonValue(p) }
func (p *Profile) Scan(src any) error          { return jsonScan(p, src) }

// TagList 用户自定义标签（JSON 数组列）
type TagList []Tag

func (l TagList) Value() (driver.Value, error) { return jsonValue([]Tag(l)) }
func (l *TagList) Scan(src any) error          { return jsonScan(l, src) }
