package service

import (
	"regexp"
	"time"

	"testlab_backend/internal/model"
	"testlab_backend/internal/store"
	"testlab_backend/internal/util"
)

// 断言型练习要求的最少 console.assert 数量
const minAssertions = 3

var assertPattern = regexp.MustCompile(`console\.assert\s*\(`)

// SubmissionService 提交校验与入库。校验规则按顺序执行，
// 第一个失败即返回，失败不改动任何共享状态。
//
// 注意：测试结果是客户端上报的，服务端不重新执行代码。
type SubmissionService struct {
	state       *store.State
	catalog     *CatalogService
	progression *ProgressionService
}

func NewSubmissionService(state *store.State, catalog *CatalogService, progression *ProgressionService) *SubmissionService {
	return &SubmissionService{
		state:       state,
		catalog:     catalog,
		progression: progression,
	}
}

// Submit 处理一次练习提交 成功时写入（替换旧记录）并返回存储的记录
func (s *SubmissionService) Submit(studentID string, exerciseID int, code string, outcome model.TestOutcome) (model.Submission, error) {
	exercise, ok := s.catalog.ByID(exerciseID)
	if !ok {
		return model.Submission{}, util.ErrExerciseNotFound
	}

	if exercise.IsExample {
		return model.Submission{}, util.ErrExampleNotSubmittable
	}

	if !s.progression.Accessible(studentID, exerciseID) {
		return model.Submission{}, util.ErrExerciseLocked
	}

	if code == "" {
		return model.Submission{}, util.ErrEmptyCode
	}

	switch exercise.Kind {
	case model.KindAssertion:
		if len(assertPattern.FindAllString(code, -1)) < minAssertions {
			return model.Submission{}, util.ErrTooFewAssertions
		}
		if !outcome.AllPassed || outcome.Failed > 0 {
			return model.Submission{}, util.ErrTestsFailed
		}
		if outcome.Passed < minAssertions {
			return model.Submission{}, util.ErrTooFewPassing
		}
	case model.KindCoding:
		// 编程型：测试是固定的，只要求全部通过，没有数量下限
		if !outcome.AllPassed || outcome.Failed > 0 {
			return model.Submission{}, util.ErrTestsFailed
		}
	}

	submission := model.Submission{
		ExerciseID:  exerciseID,
		Code:        code,
		TestResults: outcome,
		Completed:   outcome.AllPassed,
		Timestamp:   time.Now(),
	}
	s.state.UpsertSubmission(studentID, submission)

	return submission, nil
}
