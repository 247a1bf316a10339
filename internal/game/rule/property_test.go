package rule

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/codenames-arena/internal/game"
)

// randomAction 为当前状态随机挑选一个动作和发起者，不保证合法
func randomAction(r *rand.Rand, s *game.GameState) (string, Action) {
	players := []string{"alice", "bob", "carol", "dave"}
	who := players[r.IntN(len(players))]
	switch r.IntN(5) {
	case 0:
		return who, GiveClue("CLUE", r.IntN(4))
	case 1, 2:
		return who, RevealCard(r.IntN(game.BoardSize + 1))
	case 3:
		return who, PassTurn()
	default:
		return "", TimerExpired(s.StageSeq - r.IntN(2))
	}
}

func TestProperty_RevealAccounting(t *testing.T) {
	t.Parallel()

	for seed := uint64(0); seed < 50; seed++ {
		r := rand.New(rand.NewPCG(seed, 99))
		e := newTestEngine()
		s := playingState()

		for step := 0; step < 200 && s.Phase == game.PhasePlaying; step++ {
			playerID, action := randomAction(r, s)
			next, _, err := e.Apply(s, playerID, action)
			if err != nil {
				continue
			}

			// 已翻开的牌不会被翻回
			for i, c := range s.Cards {
				if c.Revealed {
					require.True(t, next.Cards[i].Revealed)
				}
				require.Equal(t, c.Type, next.Cards[i].Type)
			}

			revealed := game.BoardSize - next.UnrevealedCount()
			accounted := next.Revealed(game.CardDark) + next.Revealed(game.CardLight) +
				next.NeutralRevealed() + next.AssassinRevealed()
			require.Equal(t, revealed, accounted)
			require.Len(t, next.RevealHistory, revealed)
			require.LessOrEqual(t, next.AssassinRevealed(), 1)
			require.Equal(t, next.Revealed(game.CardDark), next.Scores[game.TeamDark])
			require.Equal(t, next.Revealed(game.CardLight), next.Scores[game.TeamLight])

			if next.Phase == game.PhasePlaying {
				require.True(t, next.CurrentTeam.Valid())
				require.Equal(t, game.TeamNone, next.Winner)
			} else {
				require.True(t, next.Winner.Valid())
			}
			s = next
		}
	}
}

func TestProperty_WinnerIsTerminal(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	s := playingState()
	s, _ = mustApply(t, e, s, "alice", GiveClue("OCEAN", 1))
	s, _ = mustApply(t, e, s, "bob", RevealCard(24))
	winner := s.Winner

	r := rand.New(rand.NewPCG(1, 1))
	for range 100 {
		playerID, action := randomAction(r, s)
		_, _, err := e.Apply(s, playerID, action)
		assert.Error(t, err)
	}
	assert.Equal(t, winner, s.Winner)
}

func TestProperty_RejectedClueNeverChangesState(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	for _, who := range []string{"bob", "carol", "dave"} {
		s := playingState()
		before := s.Clone()
		next, events, err := e.Apply(s, who, GiveClue("OCEAN", 1))
		assert.Error(t, err)
		assert.Nil(t, next)
		assert.Nil(t, events)
		assert.Equal(t, before, s)
	}
}
