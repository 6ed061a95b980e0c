package controller

import (
	"language_gems_backend/internal/service"
	"language_gems_backend/internal/util"
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AssignmentController struct {
	AssignmentService *service.AssignmentService
	ProgressService   *service.ProgressService
}

func NewAssignmentController(assignmentService *service.AssignmentService, progressService *service.ProgressService) *AssignmentController {
	return &AssignmentController{
		AssignmentService: assignmentService,
		ProgressService:   progressService,
	}
}

// @Summary 创建作业
// @Description 教师创建语法作业，必做主题列表是完成度检查的依据
// @Tags 作业
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.AssignmentRequest true "作业内容"
// @Success 201 {object} util.Response
// @Router /api/teacher/assignments [post]
func (c *AssignmentController) CreateAssignment(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.AssignmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	assignment, err := c.AssignmentService.Create(user.UserID, req)
	if err != nil {
		if errors.Is(err, util.ErrTopicNotFound) {
			util.BadRequest(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, assignment)
}

// @Summary 作业列表
// @Tags 作业
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/teacher/assignments [get]
func (c *AssignmentController) ListAssignments(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	assignments, err := c.AssignmentService.ListByTeacher(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, assignments)
}

// @Summary 作业详情
// @Tags 作业
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "作业ID"
// @Success 200 {object} util.Response
// @Router /api/assignments/{id} [get]
func (c *AssignmentController) GetAssignment(ctx *gin.Context) {
	assignment, err := c.AssignmentService.Get(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, assignment)
}

// @Summary 更新作业
// @Tags 作业
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "作业ID"
// @Param body body service.AssignmentRequest true "作业内容"
// @Success 200 {object} util.Response
// @Router /api/teacher/assignments/{id} [put]
func (c *AssignmentController) UpdateAssignment(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.AssignmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	assignment, err := c.AssignmentService.Update(user.UserID, ctx.Param("id"), req)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, assignment)
}

// @Summary 删除作业
// @Tags 作业
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "作业ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/assignments/{id} [delete]
func (c *AssignmentController) DeleteAssignment(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.AssignmentService.Delete(user.UserID, ctx.Param("id")); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"deleted": true})
}

// @Summary 作业学生进度列表
// @Description 教师查看某作业下全部学生的进度汇总
// @Tags 作业
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "作业ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/assignments/{id}/progress [get]
func (c *AssignmentController) ListAssignmentProgress(ctx *gin.Context) {
	progress, err := c.ProgressService.ListAssignmentProgress(ctx.Param("id"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, progress)
}
