package controller

import (
	"go-catan/dto"

	"github.com/gin-gonic/gin"
)

func (ctl *Controller) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !ctl.bind(c, &req) {
		return
	}
	user, token, err := ctl.game.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		ctl.fail(c, err)
		return
	}
	ctl.ok(c, gin.H{"data": dto.AuthResponse{Token: token, User: user}})
}

func (ctl *Controller) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !ctl.bind(c, &req) {
		return
	}
	user, token, err := ctl.game.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		ctl.fail(c, err)
		return
	}
	ctl.ok(c, gin.H{"data": dto.AuthResponse{Token: token, User: user}})
}
