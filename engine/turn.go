package engine

import "go-catan/entities"

// Phase 回合阶段
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseSetup1
	PhaseSetup2
	PhaseMain
)

func PhaseOf(s entities.GameSession) Phase {
	switch {
	case s.Round <= 0:
		return PhaseNotStarted
	case s.Round == 1:
		return PhaseSetup1
	case s.Round == 2:
		return PhaseSetup2
	default:
		return PhaseMain
	}
}

func (p Phase) String() string {
	switch p {
	case PhaseSetup1:
		return "setup1"
	case PhaseSetup2:
		return "setup2"
	case PhaseMain:
		return "main"
	default:
		return "notStarted"
	}
}

// NextTurn computes the (turn, round) after the current player passes.
// Round 1 runs 1..N, round 2 runs N..1 and every later round runs 1..N again.
func NextTurn(turn, round, maxPlayers int) (int, int) {
	switch {
	case turn == maxPlayers && round == 1:
		if maxPlayers == 1 {
			return 1, 2
		}
		return maxPlayers - 1, 2
	case turn == maxPlayers && round >= 2:
		return 1, round + 1
	case round == 2 && turn == 1:
		return 1, round + 1
	case round == 2:
		return turn - 1, 2
	default:
		return turn + 1, round
	}
}

// HasTurn reports whether p may act now.
func HasTurn(s entities.GameSession, p entities.Player) bool {
	return s.Started() && p.PlayOrder != 0 && p.PlayOrder == s.Turn
}

// RequireTurn fails unless the game is running and it is p's turn.
func RequireTurn(s entities.GameSession, p entities.Player) error {
	if !s.Started() {
		return ErrGameNotStarted
	}
	if !HasTurn(s, p) {
		return ErrNotYourTurn
	}
	return nil
}

// RequireMainTurn is RequireTurn restricted to rounds after the snake draft.
func RequireMainTurn(s entities.GameSession, p entities.Player) error {
	if err := RequireTurn(s, p); err != nil {
		return err
	}
	if PhaseOf(s) != PhaseMain {
		return ErrNotMainPhase
	}
	return nil
}

// IsBuildFree 前两轮轮到自己时建造免费
func IsBuildFree(s entities.GameSession, p entities.Player) bool {
	return HasTurn(s, p) && (s.Round == 1 || s.Round == 2)
}

// EndTurn validates the caller and returns the advanced session.
func EndTurn(s entities.GameSession, p entities.Player) (entities.GameSession, error) {
	if err := RequireTurn(s, p); err != nil {
		return s, err
	}
	s.Turn, s.Round = NextTurn(s.Turn, s.Round, s.MaxPlayers)
	s.LastDiceRoll = 0
	return s, nil
}

// StartGame moves a session out of NotStarted.
func StartGame(s entities.GameSession) entities.GameSession {
	s.Round = 1
	s.Turn = 1
	s.LastDiceRoll = 0
	return s
}
