package controller

import (
	"errors"
	"net/http"

	"go-catan/engine"
	"go-catan/middleware"
	"go-catan/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Controller 把 HTTP 请求转给 service.Game
type Controller struct {
	game        *service.Game
	log         *zap.Logger
	debugErrors bool
}

func New(game *service.Game, log *zap.Logger, debugErrors bool) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{game: game, log: log, debugErrors: debugErrors}
}

// StatusOf maps an engine error to the HTTP status of the response envelope.
func StatusOf(err error) int {
	switch engine.KindOf(err) {
	case engine.KindValidation:
		return http.StatusBadRequest
	case engine.KindPrecondition:
		switch {
		case errors.Is(err, engine.ErrColorTaken):
			return http.StatusConflict
		case errors.Is(err, engine.ErrNotYourTurn):
			return http.StatusForbidden
		case errors.Is(err, engine.ErrInvalidCredentials):
			return http.StatusUnauthorized
		}
		return http.StatusBadRequest
	case engine.KindNotFound:
		return http.StatusNotFound
	case engine.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (ctl *Controller) ok(c *gin.Context, fields gin.H) {
	body := gin.H{"ok": true}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

func (ctl *Controller) fail(c *gin.Context, err error) {
	body := gin.H{
		"ok":      false,
		"code":    engine.CodeOf(err),
		"message": engine.MessageOf(err),
	}
	if ctl.debugErrors {
		body["debug"] = err.Error()
	}
	c.JSON(StatusOf(err), body)
}

// bind decodes the JSON body, answering 400 on a malformed payload.
func (ctl *Controller) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		ctl.log.Debug("请求体解析失败", zap.String("path", c.FullPath()), zap.Error(err))
		ctl.fail(c, engine.Invalid("Invalid request payload"))
		return false
	}
	return true
}

func username(c *gin.Context) string {
	return middleware.Username(c)
}

func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "pong"})
}
