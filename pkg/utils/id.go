package utils

import "github.com/google/uuid"

// NewID 任务和用户统一用 36 位 uuid 字符串
func NewID() string { return uuid.NewString() }
