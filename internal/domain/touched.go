package domain

import "sort"

// Touched 记录一次请求里被改动的顶层属性，持久化层据此只写脏字段
type Touched map[string]struct{}

func NewTouched(fields ...string) Touched {
	t := Touched{}
	t.Add(fields...)
	return t
}

func (t Touched) Add(fields ...string) {
	for _, f := range fields {
		t[f] = struct{}{}
	}
}

func (t Touched) Merge(other Touched) {
	for f := range other {
		t[f] = struct{}{}
	}
}

func (t Touched) Has(field string) bool {
	_, ok := t[field]
	return ok
}

func (t Touched) Fields() []string {
	out := make([]string, 0, len(t))
	for f := range t {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
