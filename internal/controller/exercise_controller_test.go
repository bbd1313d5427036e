package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"testlab_backend/internal/model"
	"testlab_backend/internal/service"
	"testlab_backend/internal/store"
	"testlab_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newExerciseRouter(t *testing.T) (*gin.Engine, *store.State) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	exercises, err := service.LoadCatalog("")
	require.NoError(t, err)
	catalog := service.NewCatalogService(exercises)
	state := store.NewState()
	progression := service.NewProgressionService(state, catalog)

	ctrl := NewExerciseController(catalog, progression, testConfig())
	r := gin.New()
	r.GET("/api/exercises", ctrl.List)
	r.GET("/api/exercises-status/:token", ctrl.StatusByToken)
	return r, state
}

func TestListExercises(t *testing.T) {
	r, _ := newExerciseRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/exercises", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []model.Exercise `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 5)
	assert.True(t, resp.Data[0].IsExample)
	assert.Equal(t, model.KindCoding, resp.Data[4].Kind)
}

func TestExercisesStatusByToken(t *testing.T) {
	r, state := newExerciseRouter(t)

	state.UpsertSubmission("1001", model.Submission{
		ExerciseID:  1,
		TestResults: model.TestOutcome{Passed: 3, AllPassed: true},
		Completed:   true,
	})

	token, err := util.GenerateJWT(model.RoleStudent, "1001", testSecret, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/exercises-status/"+token, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []model.ExerciseStatus `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 5)
	assert.True(t, resp.Data[1].Completed)
	assert.True(t, resp.Data[2].Accessible)
	assert.False(t, resp.Data[3].Accessible)
}

func TestExercisesStatusRejectsNonStudentToken(t *testing.T) {
	r, _ := newExerciseRouter(t)

	adminToken, err := util.GenerateJWT(model.RoleAdmin, "", testSecret, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "admin token", token: adminToken},
		{name: "garbage", token: "nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/exercises-status/"+tt.token, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusForbidden, w.Code)
		})
	}
}
