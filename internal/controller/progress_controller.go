package controller

import (
	"language_gems_backend/internal/service"
	"language_gems_backend/internal/util"
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// @Summary 我的作业进度
// @Description 学生查看自己在某作业下的进度汇总
// @Tags 进度
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "作业ID"
// @Success 200 {object} util.Response
// @Router /api/assignments/{id}/progress [get]
func (c *ProgressController) GetMyProgress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	progress, err := c.ProgressService.GetProgress(ctx.Param("id"), user.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, progress)
}

// @Summary 作业完成度
// @Description 按必做主题计算完成百分比，走数据库函数并缓存
// @Tags 进度
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "作业ID"
// @Success 200 {object} util.Response
// @Router /api/assignments/{id}/completion [get]
func (c *ProgressController) GetCompletionPercentage(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	pct, err := c.ProgressService.GetCompletionPercentage(ctx.Param("id"), user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"completionPercentage": pct})
}
