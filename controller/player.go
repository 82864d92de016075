package controller

import (
	"go-catan/dto"

	"github.com/gin-gonic/gin"
)

func (ctl *Controller) Join(c *gin.Context) {
	p, err := ctl.game.Join(c.Request.Context(), username(c))
	if err != nil {
		ctl.fail(c, err)
		return
	}
	ctl.ok(c, gin.H{"player": p})
}

func (ctl *Controller) SetColor(c *gin.Context) {
	var req dto.ColorRequest
	if !ctl.bind(c, &req) {
		return
	}
	p, err := ctl.game.SetColor(c.Request.Context(), username(c), req.Color)
	if err != nil {
		ctl.fail(c, err)
		return
	}
	ctl.ok(c, gin.H{"player": p})
}

func (ctl *Controller) Colors(c *gin.Context) {
	colors, err := ctl.game.Colors(c.Request.Context())
	if err != nil {
		ctl.fail(c, err)
		return
	}
	ctl.ok(c, gin.H{"colors": colors})
}

// ToggleReady 切换准备状态，人满时开局
func (ctl *Controller) ToggleReady(c *gin.Context) {
	res, err := ctl.game.ToggleReady(c.Request.Context(), username(c))
	if err != nil {
		ctl.fail(c, err)
		return
	}
	ctl.ok(c, gin.H{"player": res.Player, "started": res.Started, "game": res.Session})
}

func (ctl *Controller) Players(c *gin.Context) {
	players, err := ctl.game.Players(c.Request.Context())
	if err != nil {
		ctl.fail(c, err)
		return
	}
	ctl.ok(c, gin.H{"players": players})
}

func (ctl *Controller) Others(c *gin.Context) {
	players, err := ctl.game.Others(c.Request.Context(), username(c))
	if err != nil {
		ctl.fail(c, err)
		return
	}
	ctl.ok(c, gin.H{"players": players})
}

func (ctl *Controller) Me(c *gin.Context) {
	me, err := ctl.game.Me(c.Request.Context(), username(c))
	if err != nil {
		ctl.fail(c, err)
		return
	}
	ctl.ok(c, gin.H{"data": me})
}
