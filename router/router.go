package router

import (
	"time"

	"go-catan/controller"
	"go-catan/middleware"
	"go-catan/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deps 路由需要的依赖
type Deps struct {
	Controller  *controller.Controller
	WS          *ws.Handler
	Auth        middleware.TokenResolver
	Log         *zap.Logger
	CORSOrigins []string
}

func InitRouter(r *gin.Engine, d Deps) {
	r.Use(middleware.RequestID(), middleware.AccessLog(d.Log), gin.Recovery())

	// 未配置来源时允许所有域名
	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(d.CORSOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = d.CORSOrigins
	}
	r.Use(cors.New(corsCfg))

	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.JSON(405, gin.H{"ok": false, "message": "Method not allowed"})
	})

	ctl := d.Controller
	r.GET("/ping", controller.Ping)

	auth := r.Group("/auth")
	{
		auth.POST("/register", ctl.Register)
		auth.POST("/login", ctl.Login)
	}

	authed := r.Group("/", middleware.AuthMiddleware(d.Auth))

	player := authed.Group("/player")
	{
		player.POST("/join", ctl.Join)
		player.POST("/color", ctl.SetColor)
		player.GET("/colors", ctl.Colors)
		player.POST("/ready", ctl.ToggleReady)
		player.GET("/list", ctl.Players)
		player.GET("/others", ctl.Others)
		player.GET("/me", ctl.Me)
	}

	catan := authed.Group("/catan")
	{
		catan.POST("/turn", ctl.EndTurn)
		catan.POST("/dice", ctl.RollDice)
		catan.POST("/thief", ctl.MoveThief)
		catan.POST("/path", ctl.BuildPath)
		catan.POST("/town", ctl.BuildTown)
		catan.POST("/card", ctl.DrawCard)
		catan.POST("/bank-trade", ctl.BankTrade)
		catan.POST("/trade", ctl.ProposeTrade)
		catan.POST("/trade/resolve", ctl.ResolveTrade)
		catan.GET("/game", ctl.Game)
		catan.GET("/hexes", ctl.Hexes)
		catan.GET("/towns", ctl.Towns)
		catan.GET("/trades", ctl.Trades)
	}

	// WebSocket 路由，token 走查询参数
	r.GET("/ws", d.WS.HandleWebSocket)
}
