package repository

import (
	"context"

	"go-catan/entities"
)

// Store is the durable game state. WithTx runs fn in one transaction: every row fetched through a
// Lock* method stays exclusively locked until fn returns; a non-nil error rolls everything back.
// View runs fn without taking locks, for listings.
type Store interface {
	WithTx(ctx context.Context, fn func(tx Tx) error) error
	View(ctx context.Context, fn func(tx Tx) error) error
	Close() error
}

// Tx 事务内可用的读写操作
type Tx interface {
	LockSession(ctx context.Context) (entities.GameSession, error)
	UpdateSession(ctx context.Context, s entities.GameSession) error

	UserByName(ctx context.Context, username string) (entities.User, error)
	InsertUser(ctx context.Context, u entities.User) (entities.User, error)

	LockPlayerByUsername(ctx context.Context, username string) (entities.Player, error)
	LockPlayer(ctx context.Context, id int64) (entities.Player, error)
	LockPlayers(ctx context.Context) ([]entities.Player, error)
	InsertPlayer(ctx context.Context, userID int64) (entities.Player, error)
	UpdatePlayers(ctx context.Context, players ...entities.Player) error
	ColorTaken(ctx context.Context, color string, exceptPlayer int64) (bool, error)

	// LockLedgers locks the (player, resource) rows of the given players, in id order.
	LockLedgers(ctx context.Context, playerIDs ...int64) (map[int64]entities.ResourceVector, error)
	LockBank(ctx context.Context) ([]entities.BankEntry, error)
	// ApplyTransfer adds every delta to the ledgers and the total to the bank's in-circulation counters.
	ApplyTransfer(ctx context.Context, deltas map[int64]entities.ResourceVector) error

	LockHexagons(ctx context.Context) ([]entities.Hexagon, error)
	UpdateHexagons(ctx context.Context, hexes []entities.Hexagon) error
	// MoveThief clears the current thief tile and marks hexID in one statement.
	MoveThief(ctx context.Context, hexID int) error
	HexTowns(ctx context.Context) ([]entities.HexTown, error)

	LockTowns(ctx context.Context) ([]entities.Town, error)
	UpdateTown(ctx context.Context, t entities.Town) error
	LockRoads(ctx context.Context) ([]entities.Road, error)
	UpdateRoad(ctx context.Context, r entities.Road) error

	LockCardPools(ctx context.Context) ([]entities.CardPool, error)
	// IncrementCardDrawn bumps current_count unless it already reached max_count; false means no row moved.
	IncrementCardDrawn(ctx context.Context, kind entities.CardKind) (bool, error)
	AddPlayerCard(ctx context.Context, playerID int64, kind entities.CardKind) error
	PlayerCards(ctx context.Context, playerID int64) (map[entities.CardKind]int, error)

	LockTrade(ctx context.Context, id int64) (entities.TradeNotification, error)
	// LockTradeBetween returns the open notification from → to, or nil.
	LockTradeBetween(ctx context.Context, from, to int64) (*entities.TradeNotification, error)
	InsertTrade(ctx context.Context, tn entities.TradeNotification) (int64, error)
	UpdateTradeCounter(ctx context.Context, id int64, counter entities.ResourceVector) error
	DeleteTrade(ctx context.Context, id int64) (bool, error)
	TradesFor(ctx context.Context, playerID int64) ([]entities.TradeNotification, error)
}
