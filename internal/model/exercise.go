package model

// ExerciseKind 练习类型
type ExerciseKind string

const (
	// KindAssertion 断言型：学生针对固定参考实现编写测试断言
	KindAssertion ExerciseKind = "assertion"
	// KindCoding 编程型：学生针对固定隐藏测试编写实现
	KindCoding ExerciseKind = "coding"
)

// Exercise 练习定义 启动时加载，运行期间不可变
type Exercise struct {
	ID           int          `json:"id" mapstructure:"id"`
	Title        string       `json:"title" mapstructure:"title"`
	Description  string       `json:"description" mapstructure:"description"`
	Kind         ExerciseKind `json:"kind" mapstructure:"kind"`
	IsExample    bool         `json:"isExample" mapstructure:"is_example"`
	ReadOnlyCode string       `json:"readOnlyCode" mapstructure:"read_only_code"`
	BaseCode     string       `json:"baseCode" mapstructure:"base_code"`
	TestCode     string       `json:"testCode,omitempty" mapstructure:"test_code"`
}

// ExerciseStatus 面向单个学生标注后的练习视图
type ExerciseStatus struct {
	Exercise
	Completed  bool `json:"completed"`
	Accessible bool `json:"accessible"`
}
