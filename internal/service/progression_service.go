package service

import (
	"testlab_backend/internal/model"
	"testlab_backend/internal/store"
)

// ProgressionService 练习解锁规则。纯查询，不缓存：
// 提交历史随时在变，每次调用都重新计算。
type ProgressionService struct {
	state   *store.State
	catalog *CatalogService
}

func NewProgressionService(state *store.State, catalog *CatalogService) *ProgressionService {
	return &ProgressionService{
		state:   state,
		catalog: catalog,
	}
}

// Completed 学生是否已完成某练习。历史快照里的旧文本结果在
// 反序列化时已经规范化成 TestOutcome，这里只看统一后的值。
func (p *ProgressionService) Completed(studentID string, exerciseID int) bool {
	sub, ok := p.state.Submission(studentID, exerciseID)
	if !ok {
		return false
	}
	if sub.Completed {
		return true
	}
	return sub.TestResults.AllPassed
}

// Accessible 解锁是一条严格的线性链：0 和 1 永远开放，
// 练习 N (N>=2) 仅当 N-1 已完成时开放。
func (p *ProgressionService) Accessible(studentID string, exerciseID int) bool {
	if exerciseID == 0 || exerciseID == 1 {
		return true
	}
	return p.Completed(studentID, exerciseID-1)
}

// StatusFor 给学生生成带 completed/accessible 标注的目录视图
func (p *ProgressionService) StatusFor(studentID string) []model.ExerciseStatus {
	exercises := p.catalog.All()
	out := make([]model.ExerciseStatus, 0, len(exercises))
	for _, ex := range exercises {
		out = append(out, model.ExerciseStatus{
			Exercise:   ex,
			Completed:  p.Completed(studentID, ex.ID),
			Accessible: p.Accessible(studentID, ex.ID),
		})
	}
	return out
}
