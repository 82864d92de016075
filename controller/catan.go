package controller

import (
	"go-catan/dto"
	"go-catan/engine"
	"go-catan/entities"

	"github.com/gin-gonic/gin"
)

func (ctl *Controller) EndTurn(c *gin.Context) {
	s, err := ctl.game.EndTurn(c.Request.Context(), username(c))
	if err != nil {
		ctl.fail(c, err)
		return
	}
	ctl.ok(c, gin.H{"game": s})
}

func (ctl *Controller) RollDice(c *gin.Context) {
	var req dto.DiceRequest
	// 空请求体表示由服务端掷骰
	if c.Request.ContentLength != 0 && !ctl.bind(c, &req) {
		return
	}
	out, err := ctl.game.RollDice(c.Request.Context(), username(c), req.DiceResult)
	if err != nil {
		ctl.fail(c, err)
		return
	}
	ctl.ok(c, gin.H{"dice": out.Dice, "credits": out.Credits, "withheld": out.Withheld})
}

func (ctl *Controller) MoveThief(c *gin.Context) {
	var req dto.ThiefRequest
	if !ctl.bind(c, &req) {
		return
	}
	if err := ctl.game.MoveThief(c.Request.Context(), username(c), req.HexID); err != nil {
		ctl.fail(c, err)
		return
	}
	ctl.ok(c, nil)
}

func (ctl *Controller) BuildPath(c *gin.Context) {
	var req dto.PathRequest
	if !ctl.bind(c, &req) {
		return
	}
	res, err := ctl.game.BuildRoad(c.Request.Context(), username(c), req.BuildID)
	if err != nil {
		ctl.fail(c, err)
		return
	}
	ctl.ok(c, gin.H{"player": res.Player, "longestRoad": res.LongestRoad, "tookTitle": res.TookTitle})
}

func (ctl *Controller) BuildTown(c *gin.Context) {
	var req dto.TownRequest
	if !ctl.bind(c, &req) {
		return
	}
	res, err := ctl.game.BuildTown(c.Request.Context(), username(c), req.BuildID, req.Level)
	if err != nil {
		ctl.fail(c, err)
		return
	}
	ctl.ok(c, gin.H{"player": res.Player})
}

func (ctl *Controller) DrawCard(c *gin.Context) {
	card, err := ctl.game.DrawCard(c.Request.Context(), username(c))
	if err != nil {
		ctl.fail(c, err)
		return
	}
	ctl.ok(c, gin.H{"card": gin.H{"id": card.Kind, "name": card.Name}})
}

func (ctl *Controller) BankTrade(c *gin.Context) {
	var req dto.BankTradeRequest
	if !ctl.bind(c, &req) {
		return
	}
	from, to := entities.ResourceType(req.FromID), entities.ResourceType(req.ToID)
	balance, err := ctl.game.BankTrade(c.Request.Context(), username(c), from, to)
	if err != nil {
		ctl.fail(c, err)
		return
	}
	ctl.ok(c, gin.H{"resources": balance.Amounts()})
}

// ProposeTrade 发起交易，或对对方已发起的交易给出回应
func (ctl *Controller) ProposeTrade(c *gin.Context) {
	var req dto.TradeRequest
	if !ctl.bind(c, &req) {
		return
	}
	tn, outcome, err := ctl.game.ProposeTrade(c.Request.Context(), username(c), req.ToPlayerID, req.Resources)
	if err != nil {
		ctl.fail(c, err)
		return
	}
	ctl.ok(c, gin.H{"tn": tn, "countered": outcome == engine.ProposalCountered})
}

func (ctl *Controller) ResolveTrade(c *gin.Context) {
	var req dto.ResolveTradeRequest
	if !ctl.bind(c, &req) {
		return
	}
	if err := ctl.game.ResolveTrade(c.Request.Context(), username(c), req.TradeID, *req.Accept); err != nil {
		ctl.fail(c, err)
		return
	}
	ctl.ok(c, nil)
}

func (ctl *Controller) Game(c *gin.Context) {
	v, err := ctl.game.GameState(c.Request.Context())
	if err != nil {
		ctl.fail(c, err)
		return
	}
	ctl.ok(c, gin.H{"game": v.Session, "phase": v.Phase})
}

func (ctl *Controller) Hexes(c *gin.Context) {
	hexes, err := ctl.game.Hexes(c.Request.Context())
	if err != nil {
		ctl.fail(c, err)
		return
	}
	ctl.ok(c, gin.H{"hexes": hexes})
}

func (ctl *Controller) Towns(c *gin.Context) {
	v, err := ctl.game.Towns(c.Request.Context(), username(c))
	if err != nil {
		ctl.fail(c, err)
		return
	}
	ctl.ok(c, gin.H{"towns": v.Towns, "paths": v.Paths})
}

func (ctl *Controller) Trades(c *gin.Context) {
	trades, err := ctl.game.Trades(c.Request.Context(), username(c))
	if err != nil {
		ctl.fail(c, err)
		return
	}
	ctl.ok(c, gin.H{"trades": trades})
}
