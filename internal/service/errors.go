package service

import "errors"

// 校验类错误：操作未应用，向调用方报告
var (
	ErrMissingID         = errors.New(":id required")
	ErrInvalidDirection  = errors.New(":direction must be 'up' or 'down'")
	ErrInvalidType       = errors.New("type must be habit, todo, daily, or reward")
	ErrInvalidSort       = errors.New(":to, :from and :type required")
	ErrDirectionDisabled = errors.New("habit cannot be scored in that direction")
	ErrNotEnoughGold     = errors.New("not enough GP")
	ErrNotDead           = errors.New("cannot revive a living user")
)

// 引用类错误
var (
	ErrTaskNotFound = errors.New("no task found")
	ErrUserNotFound = errors.New("no user found")
)

// IsValidation 区分校验/引用错误与真正的持久化失败
func IsValidation(err error) bool {
	switch {
	case errors.Is(err, ErrMissingID),
		errors.Is(err, ErrInvalidDirection),
		errors.Is(err, ErrInvalidType),
		errors.Is(err, ErrInvalidSort),
		errors.Is(err, ErrDirectionDisabled),
		errors.Is(err, ErrNotEnoughGold),
		errors.Is(err, ErrNotDead):
		return true
	}
	return false
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrTaskNotFound) || errors.Is(err, ErrUserNotFound)
}
