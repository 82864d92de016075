package engine

import (
	"errors"
	"fmt"
)

// Kind 错误分类，决定 HTTP 状态码
type Kind int

const (
	KindStorage Kind = iota
	KindValidation
	KindPrecondition
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindPrecondition:
		return "PreconditionFailed"
	case KindNotFound:
		return "NotFoundError"
	case KindConflict:
		return "ConflictError"
	default:
		return "StorageError"
	}
}

type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Code so wrapped copies with extra context still compare equal to the sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func newErr(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

var (
	ErrNotYourTurn           = newErr(KindPrecondition, "NotYourTurn", "It is not your turn")
	ErrGameNotStarted        = newErr(KindPrecondition, "GameNotStarted", "The game has not started")
	ErrGameStarted           = newErr(KindPrecondition, "GameStarted", "The game has started")
	ErrInsufficientResources = newErr(KindPrecondition, "InsufficientResources", "Not enough materials")
	ErrBuildNotAllowed       = newErr(KindPrecondition, "BuildNotAllowed", "Build not allowed here")
	ErrAlreadyBuilt          = newErr(KindPrecondition, "AlreadyBuilt", "That slot is already built")
	ErrTooCloseToTown        = newErr(KindPrecondition, "TooCloseToTown", "A neighbouring town is already built")
	ErrNotConnected          = newErr(KindPrecondition, "NotConnected", "The slot does not touch your roads or towns")
	ErrNoPiecesLeft          = newErr(KindPrecondition, "NoPiecesLeft", "No pieces of that kind left")
	ErrAlreadyRolled         = newErr(KindPrecondition, "AlreadyRolled", "Dice already rolled this turn")
	ErrNotMainPhase          = newErr(KindPrecondition, "NotMainPhase", "Only allowed after the setup rounds")
	ErrColorTaken            = newErr(KindPrecondition, "ColorTaken", "Color already taken")
	ErrNoActiveTrade         = newErr(KindPrecondition, "NoActiveTrade", "Trade has no response yet")
	ErrTradeAlreadyOpen      = newErr(KindPrecondition, "TradeAlreadyOpen", "A trade with that player is already open")
	ErrTradeNoLongerValid    = newErr(KindPrecondition, "TradeNoLongerValid", "A player no longer holds the offered resources")
	ErrTradeWithSelf         = newErr(KindPrecondition, "TradeWithSelf", "Cannot trade with yourself")
	ErrBankEmpty             = newErr(KindPrecondition, "BankEmpty", "The bank has none of that resource")
	ErrThiefMustMove         = newErr(KindPrecondition, "ThiefMustMove", "The thief must move to another tile")
	ErrPlayerNotFound        = newErr(KindNotFound, "PlayerNotFound", "Player not found")
	ErrUserNotFound          = newErr(KindNotFound, "UserNotFound", "User not found")
	ErrTradeNotFound         = newErr(KindNotFound, "TradeNotFound", "Trade not found or user not in trade")
	ErrTileNotFound          = newErr(KindNotFound, "TileNotFound", "Tile not found")
	ErrSlotNotFound          = newErr(KindNotFound, "SlotNotFound", "Build slot not found")
	ErrDeckContention        = newErr(KindConflict, "DeckContention", "Card could not be drawn, try again")
	ErrDeckEmpty             = newErr(KindConflict, "DeckEmpty", "No cards left in the deck")
	ErrStoreContention       = newErr(KindConflict, "StoreContention", "The game is busy, try again")
	ErrUsernameTaken         = newErr(KindConflict, "UsernameTaken", "Username already registered")
	ErrInvalidCredentials    = newErr(KindPrecondition, "InvalidCredentials", "Invalid username or password")
	ErrConfiguration         = newErr(KindStorage, "ConfigurationError", "Game data is inconsistent")
)

// Invalid builds a ValidationError for a malformed payload.
func Invalid(msg string) *Error {
	return newErr(KindValidation, "ValidationError", msg)
}

// Storage wraps an unexpected store failure.
func Storage(err error) *Error {
	return &Error{Kind: KindStorage, Code: "StorageError", Message: "Database error", Err: err}
}

// Configuration reports a fatal data inconsistency found while preparing the game.
func Configuration(format string, args ...any) *Error {
	return &Error{Kind: KindStorage, Code: ErrConfiguration.Code, Message: ErrConfiguration.Message, Err: fmt.Errorf(format, args...)}
}

// With returns a copy of the sentinel carrying extra context.
func (e *Error) With(format string, args ...any) *Error {
	cp := *e
	cp.Err = fmt.Errorf(format, args...)
	return &cp
}

// KindOf returns the kind of err; foreign errors count as storage failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}

// CodeOf returns the machine readable code of err.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "StorageError"
}

// MessageOf returns the caller facing message of err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "Database error"
}
