package engine

// Rules 计分相关的全部可调参数，由配置注入，不放全局变量
type Rules struct {
	MaxHealth  float64
	ValueFloor float64 // 任务价值进入计分曲线前的下钳位
	ValueCeil  float64 // 上钳位
	LevelFloor int     // 复活后的最低等级
}

func DefaultRules() Rules {
	return Rules{
		MaxHealth:  50,
		ValueFloor: -47.27,
		ValueCeil:  21.27,
		LevelFloor: 1,
	}
}
