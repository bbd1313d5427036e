package model

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// TestOutcome 客户端上报的测试结果，规范化后的统一形式
type TestOutcome struct {
	Executed  int  `json:"executed"`
	Passed    int  `json:"passed"`
	Failed    int  `json:"failed"`
	AllPassed bool `json:"allPassed"`
}

// 旧版客户端把测试结果作为整段文本上报，形如：
//
//	Tests run: 5
//	Passed: 5
//	Failed: 0
//
// 这些标记在历史快照里仍然存在，反序列化时统一转成 TestOutcome，
// 之后的判定逻辑不再感知两种格式的区别。
const (
	legacyRunMarker     = "Tests run:"
	legacyPassedMarker  = "Passed:"
	legacyFailedMarker  = "Failed:"
	legacyZeroRunMarker = "Tests run: 0"
	legacyZeroFailed    = "Failed: 0"
)

// ParseLegacyOutcome 旧文本格式兼容解析
func ParseLegacyOutcome(raw string) TestOutcome {
	o := TestOutcome{
		Executed: legacyCount(raw, legacyRunMarker),
		Passed:   legacyCount(raw, legacyPassedMarker),
		Failed:   legacyCount(raw, legacyFailedMarker),
	}
	o.AllPassed = strings.Contains(raw, legacyZeroFailed) &&
		strings.Contains(raw, legacyPassedMarker) &&
		!strings.Contains(raw, legacyZeroRunMarker)
	return o
}

func legacyCount(raw, marker string) int {
	idx := strings.Index(raw, marker)
	if idx < 0 {
		return 0
	}
	rest := strings.TrimLeft(raw[idx+len(marker):], " ")
	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	n, _ := strconv.Atoi(rest[:end])
	return n
}

// UnmarshalJSON 同时接受结构化对象和旧版文本两种编码
func (o *TestOutcome) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*o = TestOutcome{}
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*o = ParseLegacyOutcome(raw)
		return nil
	}
	type plain TestOutcome
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*o = TestOutcome(p)
	return nil
}

// Submission 学生对某个练习的最新一次提交 同一 (学生, 练习) 只保留最新记录
type Submission struct {
	ExerciseID  int         `json:"exerciseId"`
	Code        string      `json:"code"`
	TestResults TestOutcome `json:"testResults"`
	Completed   bool        `json:"completed"`
	Timestamp   time.Time   `json:"timestamp"`
}

// SubmissionRecord 广播给管理端的提交记录（带学号）
type SubmissionRecord struct {
	StudentID string `json:"studentId"`
	Submission
}
