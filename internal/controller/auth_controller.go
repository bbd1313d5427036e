package controller

import (
	"net/http"

	"testlab_backend/internal/config"
	"testlab_backend/internal/model"
	"testlab_backend/internal/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type AuthController struct {
	Config *config.Config
}

func NewAuthController(cfg *config.Config) *AuthController {
	return &AuthController{Config: cfg}
}

// GenerateTokenRequest 登录请求
type GenerateTokenRequest struct {
	UserType      string `json:"userType" binding:"required,oneof=student admin"`
	StudentID     string `json:"studentId"`
	AdminPassword string `json:"adminPassword"`
}

// GenerateToken godoc
// @Summary 签发访问令牌
// @Description 学生提供纯数字学号换取 24 小时有效的 JWT；管理员走 /admin 入口
// @Tags 认证
// @Accept json
// @Produce json
// @Param body body GenerateTokenRequest true "登录信息"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response "学号格式不正确"
// @Failure 403 {object} util.Response "管理员密码错误"
// @Router /api/generate-token [post]
func (c *AuthController) GenerateToken(ctx *gin.Context) {
	var req GenerateTokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "invalid login data")
		return
	}

	switch model.Role(req.UserType) {
	case model.RoleStudent:
		if !model.ValidStudentID(req.StudentID) {
			util.BadRequest(ctx, util.ErrInvalidStudentID.Error())
			return
		}

		token, err := util.GenerateJWT(model.RoleStudent, req.StudentID, c.Config.JWT.Secret, c.Config.JWT.ExpireTime)
		if err != nil {
			util.LogInternalError(ctx, err)
			return
		}

		util.Success(ctx, gin.H{
			"token":     token,
			"studentId": req.StudentID,
		})

	case model.RoleAdmin:
		// 配置了密码哈希时才校验，保持旧部署的开放入口兼容
		if hash := c.Config.Admin.PasswordHash; hash != "" {
			if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.AdminPassword)); err != nil {
				util.Forbidden(ctx, util.ErrAdminPassword.Error())
				return
			}
		}
		util.Success(ctx, gin.H{"redirect": "/admin"})

	default:
		util.BadRequest(ctx, "invalid login data")
	}
}

// ValidateToken godoc
// @Summary 校验令牌
// @Description 校验学生令牌并返回学号
// @Tags 认证
// @Produce json
// @Param token path string true "JWT"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response "令牌无效或已过期"
// @Router /api/validate-token/{token} [get]
func (c *AuthController) ValidateToken(ctx *gin.Context) {
	claims, err := util.ParseJWT(ctx.Param("token"), c.Config.JWT.Secret)
	if err != nil {
		ctx.JSON(http.StatusForbidden, gin.H{"valid": false, "error": "invalid or expired token"})
		return
	}

	if claims.UserType != model.RoleStudent {
		ctx.JSON(http.StatusForbidden, gin.H{"valid": false, "error": "invalid token type"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"valid": true, "studentId": claims.StudentID})
}
