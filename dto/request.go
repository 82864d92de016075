package dto

// 请求体，json 标签给 gin 绑定用，mapstructure 解码 websocket 消息时也复用同一组标签

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ColorRequest struct {
	Color string `json:"color" binding:"required"`
}

// DiceRequest diceResult 为空时由服务端掷骰
type DiceRequest struct {
	DiceResult *int `json:"diceResult"`
}

type ThiefRequest struct {
	HexID int `json:"hexId" binding:"required"`
}

type PathRequest struct {
	BuildID int `json:"buildId" binding:"required"`
}

type TownRequest struct {
	BuildID int `json:"buildId" binding:"required"`
	Level   int `json:"level" binding:"required,oneof=1 2"`
}

type BankTradeRequest struct {
	FromID int `json:"fromId" binding:"required"`
	ToID   int `json:"toId" binding:"required"`
}

// TradeRequest selectedResourcesByUser is indexed wood, brick, sheep, wheat, ore.
type TradeRequest struct {
	ToPlayerID int64 `json:"toPlayerId" binding:"required"`
	Resources  []int `json:"selectedResourcesByUser" binding:"required"`
}

type ResolveTradeRequest struct {
	TradeID int64 `json:"tradeId" binding:"required"`
	Accept  *bool `json:"acceptTrade" binding:"required"`
}
