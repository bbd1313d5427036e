package service

import (
	"fmt"
	"testing"

	"testlab_backend/internal/model"
	"testlab_backend/internal/store"

	"github.com/stretchr/testify/assert"
)

func newTestProgression() (*store.State, *ProgressionService) {
	state := store.NewState()
	catalog := NewCatalogService(defaultExercises())
	return state, NewProgressionService(state, catalog)
}

func TestAccessibleFirstTwoAlwaysOpen(t *testing.T) {
	_, prog := newTestProgression()

	assert.True(t, prog.Accessible("1001", 0))
	assert.True(t, prog.Accessible("1001", 1))
	// 没有任何提交的学生，后面的全部锁着
	assert.False(t, prog.Accessible("1001", 2))
	assert.False(t, prog.Accessible("1001", 3))
	assert.False(t, prog.Accessible("1001", 4))
}

func TestAccessibleEqualsPreviousCompleted(t *testing.T) {
	state, prog := newTestProgression()

	state.UpsertSubmission("1001", model.Submission{
		ExerciseID:  1,
		Code:        "console.assert(true);",
		TestResults: model.TestOutcome{Executed: 3, Passed: 3, AllPassed: true},
		Completed:   true,
	})

	// 链式解锁：N 的开放状态等于 N-1 的完成状态
	for id := 2; id <= 4; id++ {
		assert.Equal(t, prog.Completed("1001", id-1), prog.Accessible("1001", id),
			fmt.Sprintf("exercise %d", id))
	}
	assert.True(t, prog.Accessible("1001", 2))
	assert.False(t, prog.Accessible("1001", 3))
}

func TestCompletedVariants(t *testing.T) {
	tests := []struct {
		name string
		sub  *model.Submission
		want bool
	}{
		{name: "no submission", sub: nil, want: false},
		{
			name: "completed flag set",
			sub:  &model.Submission{ExerciseID: 1, Completed: true},
			want: true,
		},
		{
			name: "structured outcome all passed",
			sub:  &model.Submission{ExerciseID: 1, TestResults: model.TestOutcome{Passed: 3, AllPassed: true}},
			want: true,
		},
		{
			name: "structured outcome with failure",
			sub:  &model.Submission{ExerciseID: 1, TestResults: model.TestOutcome{Passed: 2, Failed: 1}},
			want: false,
		},
		{
			name: "legacy text normalized to pass",
			sub: &model.Submission{
				ExerciseID:  1,
				TestResults: model.ParseLegacyOutcome("Tests run: 3\nPassed: 3\nFailed: 0"),
			},
			want: true,
		},
		{
			name: "legacy text with zero executed",
			sub: &model.Submission{
				ExerciseID:  1,
				TestResults: model.ParseLegacyOutcome("Tests run: 0\nPassed: 0\nFailed: 0"),
			},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, prog := newTestProgression()
			if tt.sub != nil {
				state.UpsertSubmission("1001", *tt.sub)
			}
			assert.Equal(t, tt.want, prog.Completed("1001", 1))
		})
	}
}

func TestStatusForAnnotatesWholeCatalog(t *testing.T) {
	state, prog := newTestProgression()

	state.UpsertSubmission("1001", model.Submission{
		ExerciseID:  1,
		TestResults: model.TestOutcome{Passed: 3, AllPassed: true},
		Completed:   true,
	})

	statuses := prog.StatusFor("1001")
	assert.Len(t, statuses, 5)

	assert.True(t, statuses[0].Accessible)
	assert.True(t, statuses[1].Accessible)
	assert.True(t, statuses[1].Completed)
	assert.True(t, statuses[2].Accessible)
	assert.False(t, statuses[2].Completed)
	assert.False(t, statuses[3].Accessible)
}

func TestCatalogImmutableView(t *testing.T) {
	catalog := NewCatalogService(defaultExercises())

	all := catalog.All()
	all[0].Title = "mutated"

	ex, ok := catalog.ByID(0)
	assert.True(t, ok)
	assert.NotEqual(t, "mutated", ex.Title)
	assert.True(t, ex.IsExample)
}
