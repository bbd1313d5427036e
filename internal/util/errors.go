package util

import "errors"

var (
	ErrInvalidStudentID    = errors.New("学号格式不正确，只允许数字")
	ErrUnauthenticated     = errors.New("login required")
	ErrExerciseNotFound    = errors.New("exercise not found")
	ErrExampleNotSubmittable = errors.New("示例练习不能提交")
	ErrExerciseLocked      = errors.New("请先完成上一个练习")
	ErrEmptyCode           = errors.New("代码不能为空")
	ErrTooFewAssertions    = errors.New("至少需要编写 3 个 console.assert 测试")
	ErrTestsFailed         = errors.New("所有测试必须通过")
	ErrTooFewPassing       = errors.New("至少需要 3 个测试通过")
	ErrStudentsOnly        = errors.New("只有学生可以提交练习")
	ErrAdminPassword       = errors.New("管理员密码错误")
)
