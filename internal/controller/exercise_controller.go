package controller

import (
	"net/http"

	"testlab_backend/internal/config"
	"testlab_backend/internal/model"
	"testlab_backend/internal/service"
	"testlab_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ExerciseController struct {
	Catalog     *service.CatalogService
	Progression *service.ProgressionService
	Config      *config.Config
}

func NewExerciseController(catalog *service.CatalogService, progression *service.ProgressionService, cfg *config.Config) *ExerciseController {
	return &ExerciseController{
		Catalog:     catalog,
		Progression: progression,
		Config:      cfg,
	}
}

// List godoc
// @Summary 练习目录
// @Description 按顺序返回全部练习定义
// @Tags 练习
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/exercises [get]
func (c *ExerciseController) List(ctx *gin.Context) {
	util.Success(ctx, c.Catalog.All())
}

// StatusByToken godoc
// @Summary 学生视角的练习目录
// @Description 给目录每项标注 completed/accessible，按令牌里的学号计算
// @Tags 练习
// @Produce json
// @Param token path string true "学生 JWT"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response "令牌无效"
// @Router /api/exercises-status/{token} [get]
func (c *ExerciseController) StatusByToken(ctx *gin.Context) {
	claims, err := util.ParseJWT(ctx.Param("token"), c.Config.JWT.Secret)
	if err != nil {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "invalid or expired token"})
		return
	}
	if claims.UserType != model.RoleStudent {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	util.Success(ctx, c.Progression.StatusFor(claims.StudentID))
}
