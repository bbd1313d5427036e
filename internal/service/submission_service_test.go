package service

import (
	"testing"

	"testlab_backend/internal/model"
	"testlab_backend/internal/store"
	"testlab_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSubmission() (*store.State, *SubmissionService) {
	state := store.NewState()
	catalog := NewCatalogService(defaultExercises())
	progression := NewProgressionService(state, catalog)
	return state, NewSubmissionService(state, catalog, progression)
}

const threeAsserts = `console.assert(f(1) === 1, "a");
console.assert(f(2) === 2, "b");
console.assert(f(3) === 3, "c");`

func passing(n int) model.TestOutcome {
	return model.TestOutcome{Executed: n, Passed: n, AllPassed: true}
}

func TestSubmitValidationOrder(t *testing.T) {
	tests := []struct {
		name       string
		exerciseID int
		code       string
		outcome    model.TestOutcome
		wantErr    error
	}{
		{
			name:       "unknown exercise",
			exerciseID: 99,
			code:       threeAsserts,
			outcome:    passing(3),
			wantErr:    util.ErrExerciseNotFound,
		},
		{
			name:       "example rejected even with passing tests",
			exerciseID: 0,
			code:       threeAsserts,
			outcome:    passing(3),
			wantErr:    util.ErrExampleNotSubmittable,
		},
		{
			name:       "locked exercise",
			exerciseID: 2,
			code:       threeAsserts,
			outcome:    passing(3),
			wantErr:    util.ErrExerciseLocked,
		},
		{
			name:       "empty code",
			exerciseID: 1,
			code:       "",
			outcome:    passing(3),
			wantErr:    util.ErrEmptyCode,
		},
		{
			name:       "assertion kind with only two asserts",
			exerciseID: 1,
			code:       "console.assert(f(1) === 1);\nconsole.assert(f(2) === 2);",
			outcome:    passing(2),
			wantErr:    util.ErrTooFewAssertions,
		},
		{
			name:       "assertion kind with a failing test",
			exerciseID: 1,
			code:       threeAsserts,
			outcome:    model.TestOutcome{Executed: 3, Passed: 2, Failed: 1},
			wantErr:    util.ErrTestsFailed,
		},
		{
			name:       "assertion kind with fewer than three passing",
			exerciseID: 1,
			code:       threeAsserts,
			outcome:    model.TestOutcome{Executed: 2, Passed: 2, AllPassed: true},
			wantErr:    util.ErrTooFewPassing,
		},
		{
			name:       "assertion kind accepted",
			exerciseID: 1,
			code:       threeAsserts,
			outcome:    passing(3),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, svc := newTestSubmission()

			sub, err := svc.Submit("1001", tt.exerciseID, tt.code, tt.outcome)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				// 被拒绝的提交不留痕迹
				assert.Empty(t, state.Submissions("1001"))
				return
			}

			require.NoError(t, err)
			assert.True(t, sub.Completed)
			assert.False(t, sub.Timestamp.IsZero())

			stored, ok := state.Submission("1001", tt.exerciseID)
			require.True(t, ok)
			assert.Equal(t, tt.code, stored.Code)
		})
	}
}

// 断言空格写法 console.assert ( 也要被计入
func TestSubmitAssertionCountToleratesSpacing(t *testing.T) {
	_, svc := newTestSubmission()

	code := `console.assert (f(1) === 1);
console.assert(f(2) === 2);
console.assert  (f(3) === 3);`
	_, err := svc.Submit("1001", 1, code, passing(3))
	assert.NoError(t, err)
}

func TestSubmitCodingKindHasNoAssertionMinimum(t *testing.T) {
	state, svc := newTestSubmission()

	// 先走完 1、2、3 解锁编程型练习 4
	for id := 1; id <= 3; id++ {
		_, err := svc.Submit("1001", id, threeAsserts, passing(3))
		require.NoError(t, err)
	}

	code := `function factorial(n) {
  return n <= 1 ? 1 : n * factorial(n - 1);
}`
	sub, err := svc.Submit("1001", 4, code, model.TestOutcome{Executed: 6, Passed: 6, AllPassed: true})
	require.NoError(t, err)
	assert.True(t, sub.Completed)

	_, ok := state.Submission("1001", 4)
	assert.True(t, ok)
}

func TestSubmitCodingKindRejectsFailures(t *testing.T) {
	_, svc := newTestSubmission()

	for id := 1; id <= 3; id++ {
		_, err := svc.Submit("1001", id, threeAsserts, passing(3))
		require.NoError(t, err)
	}

	_, err := svc.Submit("1001", 4, "function factorial(n) { return 0; }",
		model.TestOutcome{Executed: 6, Passed: 5, Failed: 1})
	assert.ErrorIs(t, err, util.ErrTestsFailed)
}

func TestSubmitReplacesPreviousRecord(t *testing.T) {
	state, svc := newTestSubmission()

	_, err := svc.Submit("1001", 1, threeAsserts, passing(3))
	require.NoError(t, err)

	newer := threeAsserts + "\nconsole.assert(f(4) === 4);"
	_, err = svc.Submit("1001", 1, newer, passing(4))
	require.NoError(t, err)

	subs := state.Submissions("1001")
	require.Len(t, subs, 1)
	assert.Equal(t, newer, subs[0].Code)
	assert.Equal(t, 4, subs[0].TestResults.Passed)
}

func TestSubmitIsolatedPerStudent(t *testing.T) {
	_, svc := newTestSubmission()

	_, err := svc.Submit("1001", 1, threeAsserts, passing(3))
	require.NoError(t, err)

	// 1001 的进度不会替 1002 解锁
	_, err = svc.Submit("1002", 2, threeAsserts, passing(3))
	assert.ErrorIs(t, err, util.ErrExerciseLocked)
}
