package controller

import (
	"language_gems_backend/internal/model"
	"language_gems_backend/internal/service"
	"language_gems_backend/internal/util"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SessionController struct {
	SessionService *service.SessionService
}

func NewSessionController(sessionService *service.SessionService) *SessionController {
	return &SessionController{SessionService: sessionService}
}

// @Summary 开始语法会话
// @Description 开始一次练习/测试会话；同一内容已有进行中的会话时返回原会话ID
// @Tags 语法会话
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.StartSessionRequest true "会话参数"
// @Success 200 {object} util.Response
// @Router /api/grammar/sessions/start [post]
func (c *SessionController) StartSession(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.StartSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	sessionID, err := c.SessionService.StartSession(user.UserID, req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"sessionId": sessionID})
}

// @Summary 记录答题
// @Description 缓冲一条答题记录，会话结束时并入会话负载
// @Tags 语法会话
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param sessionId path string true "会话ID"
// @Param body body model.QuestionAttempt true "答题记录"
// @Success 200 {object} util.Response
// @Router /api/grammar/sessions/{sessionId}/attempts [post]
func (c *SessionController) RecordAttempt(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	sessionID := ctx.Param("sessionId")

	var attempt model.QuestionAttempt
	if err := ctx.ShouldBindJSON(&attempt); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.SessionService.RecordQuestionAttempt(user.UserID, sessionID, attempt); err != nil {
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

	util.Success(ctx, gin.H{"recorded": true})
}

// @Summary 结束语法会话
// @Description 结算会话：计算宝石/XP、写入宝石事件、更新作业进度
// @Tags 语法会话
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param sessionId path string true "会话ID"
// @Param body body service.EndSessionRequest true "完成统计"
// @Success 200 {object} util.Response
// @Router /api/grammar/sessions/{sessionId}/end [post]
func (c *SessionController) EndSession(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	sessionID := ctx.Param("sessionId")

	var req service.EndSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.SessionService.EndSession(user.UserID, sessionID, req); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		case errors.Is(err, util.ErrSessionEnded):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	session, err := c.SessionService.GetSession(sessionID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"gemsEarned": session.GemsEarned,
		"xpEarned":   session.XPEarned,
		"session":    session,
	})
}

// @Summary 会话宝石事件
// @Description 一次会话结算后产生的宝石明细
// @Tags 语法会话
// @Produce json
// @Security ApiKeyAuth
// @Param sessionId path string true "会话ID"
// @Success 200 {object} util.Response
// @Router /api/grammar/sessions/{sessionId}/gems [get]
func (c *SessionController) ListSessionGems(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	events, err := c.SessionService.ListSessionGems(user.UserID, ctx.Param("sessionId"))
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

	util.Success(ctx, events)
}

// @Summary 最近会话列表
// @Tags 语法会话
// @Produce json
// @Security ApiKeyAuth
// @Param limit query int false "条数" default(20)
// @Success 200 {object} util.Response
// @Router /api/grammar/sessions [get]
func (c *SessionController) ListSessions(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	sessions, err := c.SessionService.ListStudentSessions(user.UserID, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, sessions)
}
