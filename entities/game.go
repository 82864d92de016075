package entities

import "time"

// GameSession game_match 单行
type GameSession struct {
	Turn              int   `json:"turn"`
	Round             int   `json:"round"`
	LastDiceRoll      int   `json:"lastDice"`
	MaxPlayers        int   `json:"maxPlayers"`
	LongestRoadHolder int64 `json:"longestRoadHolder"` // 0 = nobody
	LongestRoadLength int   `json:"longestRoadLength"`
}

func (s GameSession) Started() bool {
	return s.Round > 0
}

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	UserImage    string    `json:"userImage"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Player struct {
	ID             int64  `json:"id"`
	UserID         int64  `json:"userId"`
	Username       string `json:"username"`
	Color          string `json:"color"`
	IsPlaying      bool   `json:"isPlaying"`
	PlayOrder      int    `json:"playOrder"` // 0 until the roster is finalised
	Points         int    `json:"points"`
	HasLongestRoad bool   `json:"hasLongestRoad"`
	HasLargestArmy bool   `json:"hasLargestArmy"`
}

// Hexagon 地图格子
type Hexagon struct {
	ID         int          `json:"id"`
	Q          int          `json:"q"`
	R          int          `json:"r"`
	Resource   ResourceType `json:"resourceId"`
	DiceNumber *int         `json:"diceNumber"`
	Letter     string       `json:"letter"`
	IsThief    bool         `json:"isThief"`
}

// HexTown links a tile to one of its six corner slots.
type HexTown struct {
	HexID  int `json:"hexId"`
	TownID int `json:"townId"`
}

// Town 城镇槽位，Level 1 = 村庄，2 = 城市
type Town struct {
	ID       int   `json:"id"`
	X        int   `json:"x"`
	Y        int   `json:"y"`
	PlayerID int64 `json:"playerId"` // 0 = unbuilt
	Level    int   `json:"level"`
}

func (t Town) Built() bool {
	return t.PlayerID != 0
}

// Road town_conections: undirected edge between two town slots.
type Road struct {
	ID       int   `json:"id"`
	FromTown int   `json:"fromTownId"`
	ToTown   int   `json:"toTownId"`
	PlayerID int64 `json:"playerId"` // 0 = unbuilt
}

func (r Road) Built() bool {
	return r.PlayerID != 0
}

func (r Road) Touches(townID int) bool {
	return r.FromTown == townID || r.ToTown == townID
}

// TradeNotification 玩家之间的交易，ToOffer 为 nil 表示对方尚未回应
type TradeNotification struct {
	ID         int64           `json:"id"`
	FromPlayer int64           `json:"fromPlayerId"`
	ToPlayer   int64           `json:"toPlayerId"`
	FromOffer  ResourceVector  `json:"fromResources"`
	ToOffer    *ResourceVector `json:"toResources"`
	CreatedAt  time.Time       `json:"createdAt"`
}

func (t TradeNotification) Involves(playerID int64) bool {
	return t.FromPlayer == playerID || t.ToPlayer == playerID
}

// CardKind random_card.id
type CardKind int

const (
	CardKnight       CardKind = 1
	CardVictoryPoint CardKind = 2
	CardRoadBuilding CardKind = 3
	CardYearOfPlenty CardKind = 4
	CardMonopoly     CardKind = 5
)

var cardNames = map[CardKind]string{
	CardKnight:       "knight",
	CardVictoryPoint: "victory_point",
	CardRoadBuilding: "road_building",
	CardYearOfPlenty: "year_of_plenty",
	CardMonopoly:     "monopoly",
}

func (k CardKind) String() string {
	return cardNames[k]
}

// CardPool 每种发展卡的总量与已抽数量
type CardPool struct {
	Kind         CardKind `json:"id"`
	Name         string   `json:"name"`
	MaxCount     int      `json:"maxCount"`
	CurrentCount int      `json:"currentCount"`
}

func (c CardPool) Remaining() int {
	return c.MaxCount - c.CurrentCount
}

// BankEntry resources_card: Supply is the total printed, InCirculation is what players hold.
type BankEntry struct {
	Resource      ResourceType `json:"id"`
	Supply        int          `json:"supply"`
	InCirculation int          `json:"inCirculation"`
	MaxHexCount   int          `json:"maxHexCount"`
}

func (b BankEntry) Available() int {
	return b.Supply - b.InCirculation
}

// BuildingKind building.id
type BuildingKind int

const (
	BuildRoad       BuildingKind = 1
	BuildSettlement BuildingKind = 2
	BuildCity       BuildingKind = 3
	BuildCard       BuildingKind = 4
)

var buildingNames = map[BuildingKind]string{
	BuildRoad:       "road",
	BuildSettlement: "settlement",
	BuildCity:       "city",
	BuildCard:       "card",
}

func (b BuildingKind) String() string {
	return buildingNames[b]
}

// GameEvent is published after every committed mutation.
type GameEvent struct {
	Type     string         `json:"type"`
	Username string         `json:"username,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
	At       time.Time      `json:"at"`
}
