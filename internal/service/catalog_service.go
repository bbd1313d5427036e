package service

import (
	"os"

	"testlab_backend/internal/model"

	"github.com/spf13/viper"
)

// CatalogService 练习目录 启动时加载一次，之后只读
type CatalogService struct {
	exercises []model.Exercise
	byID      map[int]model.Exercise
}

func NewCatalogService(exercises []model.Exercise) *CatalogService {
	byID := make(map[int]model.Exercise, len(exercises))
	for _, ex := range exercises {
		byID[ex.ID] = ex
	}
	return &CatalogService{
		exercises: exercises,
		byID:      byID,
	}
}

// All 按定义顺序返回全部练习（副本）
func (s *CatalogService) All() []model.Exercise {
	return append([]model.Exercise(nil), s.exercises...)
}

func (s *CatalogService) ByID(id int) (model.Exercise, bool) {
	ex, ok := s.byID[id]
	return ex, ok
}

func (s *CatalogService) Len() int {
	return len(s.exercises)
}

// LoadCatalog 从 YAML 文件加载练习目录 文件不存在时使用内置的课程练习
func LoadCatalog(path string) ([]model.Exercise, error) {
	if path == "" {
		return defaultExercises(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return defaultExercises(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var exercises []model.Exercise
	if err := v.UnmarshalKey("exercises", &exercises); err != nil {
		return nil, err
	}
	if len(exercises) == 0 {
		return defaultExercises(), nil
	}
	return exercises, nil
}

// defaultExercises 课程自带的练习序列：一个示例、三个断言型、一个编程型
func defaultExercises() []model.Exercise {
	return []model.Exercise{
		{
			ID:          0,
			Title:       "Example - Testing a Sum Function",
			Description: "This example shows how to write tests for a function. Study it before solving the exercises.",
			Kind:        model.KindAssertion,
			IsExample:   true,
			ReadOnlyCode: `function sum(a, b) {
  return a + b;
}`,
			BaseCode: `// COMPLETE TEST EXAMPLE:
console.assert(sum(2, 3) === 5, "2 + 3 should be 5");
console.assert(sum(0, 0) === 0, "0 + 0 should be 0");
console.assert(sum(-1, 1) === 0, "-1 + 1 should be 0");
console.assert(sum(10, -5) === 5, "10 + (-5) should be 5");
console.assert(sum(1.5, 2.5) === 4, "1.5 + 2.5 should be 4");

// Invalid input test
console.assert(isNaN(sum("a", 5)), "sum with a string should return NaN");

console.log("Example: all tests executed!");`,
		},
		{
			ID:          1,
			Title:       "Exercise 1 - Email Validation Tests",
			Description: "Write thorough tests for a function that validates email addresses. The function is already implemented - focus on covering different scenarios.",
			Kind:        model.KindAssertion,
			ReadOnlyCode: `function validateEmail(email) {
  const regex = /^[^\s@]+@[^\s@]+\.[^\s@]+$/;
  return regex.test(email);
}`,
			BaseCode: `// Write your tests here using console.assert:
// Example: console.assert(validateEmail("test@example.com") === true, "a valid email should return true");

`,
		},
		{
			ID:          2,
			Title:       "Exercise 2 - Array Sorting Tests",
			Description: "Write tests for a function that sorts an array of numbers. The function is implemented - try different kinds of arrays.",
			Kind:        model.KindAssertion,
			ReadOnlyCode: `function sortArray(arr) {
  return [...arr].sort((a, b) => a - b);
}`,
			BaseCode: `// Write your tests here using console.assert:
// Example: console.assert(JSON.stringify(sortArray([3,1,2])) === JSON.stringify([1,2,3]), "array should be sorted");

`,
		},
		{
			ID:          3,
			Title:       "Exercise 3 - Calculator Tests",
			Description: "Write tests for a simple calculator with several operations. The function is implemented - cover every operation and the special cases.",
			Kind:        model.KindAssertion,
			ReadOnlyCode: `function calculator(op, a, b) {
  switch(op) {
    case '+': return a + b;
    case '-': return a - b;
    case '*': return a * b;
    case '/': return b !== 0 ? a / b : null;
    default: return null;
  }
}`,
			BaseCode: `// Write your tests here using console.assert:
// Example: console.assert(calculator('+', 5, 3) === 8, "5 + 3 should be 8");

`,
		},
		{
			ID:          4,
			Title:       "Coding - Factorial Function",
			Description: "Implement a function that computes the factorial of a number. The tests are ready - make the function pass all of them.",
			Kind:        model.KindCoding,
			TestCode: `// FIXED TESTS - DO NOT MODIFY
console.assert(factorial(0) === 1, "factorial(0) should be 1");
console.assert(factorial(1) === 1, "factorial(1) should be 1");
console.assert(factorial(5) === 120, "factorial(5) should be 120");
console.assert(factorial(3) === 6, "factorial(3) should be 6");
console.assert(factorial(4) === 24, "factorial(4) should be 24");

console.log("All tests passed!");`,
			BaseCode: `// Implement the factorial function here:
function factorial(n) {
  // Your code here

}
`,
		},
	}
}
