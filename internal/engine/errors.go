package engine

import "errors"

var (
	// ErrTaskNotFound 任务 id 不在 tasks 映射里
	ErrTaskNotFound = errors.New("task not found")
	// ErrBadIndex 排序下标越界，调用方错误，不做钳制
	ErrBadIndex = errors.New("sort index out of range")
)
