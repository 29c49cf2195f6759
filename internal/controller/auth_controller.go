package controller

import (
	"errors"

	"quiz_admin_backend/internal/service"
	"quiz_admin_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService  *service.AuthService
	UsageService *service.AIUsageService
	ScoreService *service.ScoreService
}

func NewAuthController(authService *service.AuthService, usageService *service.AIUsageService, scoreService *service.ScoreService) *AuthController {
	return &AuthController{
		AuthService:  authService,
		UsageService: usageService,
		ScoreService: scoreService,
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login godoc
// @Summary 学生登录
// @Description 校验学生口令，成功后初始化成绩与AI用量台账，重复登录不重置进度
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body LoginRequest true "登录信息"
// @Success 200 {object} map[string]interface{} "登录成功"
// @Failure 401 {object} util.Response "用户名或口令错误"
// @Failure 500 {object} util.Response "服务器内部错误"
// @Router /login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	student, token, err := c.AuthService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, util.ErrInvalidCredentials) {
			util.Unauthorized(ctx, "Invalid credentials")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.OK(ctx, gin.H{
		"username": student.Username,
		"token":    token,
	})
}

// GetProfile godoc
// @Summary 当前学生概览
// @Description 返回登录学生自己的AI用量与成绩
// @Tags 认证
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} util.Response
// @Router /profile [get]
func (c *AuthController) GetProfile(ctx *gin.Context) {
	claims := util.GetStudentFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx, "Unauthorized")
		return
	}

	usage, err := c.UsageService.GetUsage(ctx.Request.Context(), claims.Username)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.OK(ctx, gin.H{
		"username": claims.Username,
		"usage":    usage,
		"score":    c.ScoreService.GetScore(claims.Username),
	})
}
