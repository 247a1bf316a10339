package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/codenames-arena/internal/apperrors"
	"github.com/palemoky/codenames-arena/internal/game"
)

func lobbyWith(t *testing.T, e *Engine, names ...string) *game.GameState {
	t.Helper()
	s := game.NewGameState("ROOM", game.DefaultSettings(), t0)
	for _, n := range names {
		s, _ = mustApply(t, e, s, "", AddPlayer(game.Player{ID: n, Username: n}))
	}
	return s
}

func TestAddPlayer(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	s := lobbyWith(t, e, "alice")

	next, events := mustApply(t, e, s, "", AddPlayer(game.Player{ID: "bob", Username: " Bob "}))
	require.Len(t, next.Players, 2)
	assert.True(t, next.Players[0].IsRoomOwner)
	assert.False(t, next.Players[1].IsRoomOwner)
	assert.Equal(t, "Bob", next.Players[1].Username)
	assert.Equal(t, game.SecretNone, next.Players[1].SecretRole)
	assert.Equal(t, []EventType{EventPlayerJoined}, eventTypes(events))

	_, _, err := e.Apply(next, "", AddPlayer(game.Player{ID: "bob", Username: "Bob"}))
	assert.ErrorIs(t, err, apperrors.ErrInvalidMessage, "重复的玩家 ID")
	_, _, err = e.Apply(next, "", AddPlayer(game.Player{ID: "eve", Username: "  "}))
	assert.ErrorIs(t, err, apperrors.ErrInvalidMessage)
}

func TestAddPlayer_RoomFull(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	s := lobbyWith(t, e, "a", "b")
	s.Settings.MaxPlayers = 2

	_, _, err := e.Apply(s, "", AddPlayer(game.Player{ID: "c", Username: "c"}))
	assert.ErrorIs(t, err, apperrors.ErrRoomFull)
}

func TestRemovePlayer_OwnerHandover(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	s := lobbyWith(t, e, "alice", "bob", "carol")

	next, events := mustApply(t, e, s, "alice", RemovePlayer())
	require.Len(t, next.Players, 2)
	assert.True(t, next.Players[0].IsRoomOwner)
	assert.Equal(t, "bob", next.Players[0].ID)
	require.Len(t, events, 1)
	assert.Equal(t, "bob", events[0].NewOwnerID)

	next, _ = mustApply(t, e, next, "carol", RemovePlayer())
	next, _ = mustApply(t, e, next, "bob", RemovePlayer())
	assert.Empty(t, next.Players)

	_, _, err := e.Apply(next, "bob", RemovePlayer())
	assert.ErrorIs(t, err, apperrors.ErrNotInRoom)
}

func TestJoinTeam(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	s := lobbyWith(t, e, "alice")

	next, events := mustApply(t, e, s, "alice", JoinTeam(game.TeamLight, game.RoleSpymaster))
	p, _ := next.Player("alice")
	assert.Equal(t, game.TeamLight, p.Team)
	assert.Equal(t, game.RoleSpymaster, p.Role)
	assert.Equal(t, []EventType{EventTeamChanged}, eventTypes(events))

	_, _, err := e.Apply(next, "alice", JoinTeam("green", game.RoleGuesser))
	assert.ErrorIs(t, err, apperrors.ErrInvalidTeam)
	_, _, err = e.Apply(next, "alice", JoinTeam(game.TeamDark, "captain"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidTeam)
}

func TestJoinTeam_DuringGame(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	s := playingState()

	_, _, err := e.Apply(s, "bob", JoinTeam(game.TeamLight, game.RoleGuesser))
	assert.ErrorIs(t, err, apperrors.ErrGameInProgress, "对局中不能换队")

	s, _ = mustApply(t, e, s, "", AddPlayer(game.Player{ID: "erin", Username: "Erin"}))
	s, _ = mustApply(t, e, s, "erin", JoinTeam(game.TeamLight, game.RoleGuesser))
	p, _ := s.Player("erin")
	assert.Equal(t, game.TeamLight, p.Team)
}

func TestUpdateSettings(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	s := lobbyWith(t, e, "alice", "bob")

	settings := game.DefaultSettings()
	settings.ChaosMode = true
	settings.TimedMode = game.TimedMode{Enabled: true, SpymasterTime: 60, GuesserTime: 30}

	_, _, err := e.Apply(s, "bob", UpdateSettings(settings))
	assert.ErrorIs(t, err, apperrors.ErrNotRoomOwner)

	next, events := mustApply(t, e, s, "alice", UpdateSettings(settings))
	assert.Equal(t, settings, next.Settings)
	assert.Equal(t, []EventType{EventSettingsUpdated}, eventTypes(events))

	bad := settings
	bad.CardSplit = game.CardSplit{Starting: 10, Other: 8, Neutral: 7, Assassin: 1}
	_, _, err = e.Apply(s, "alice", UpdateSettings(bad))
	assert.ErrorIs(t, err, apperrors.ErrInvalidSettings)

	_, _, err = e.Apply(playingState(), "alice", UpdateSettings(settings))
	assert.ErrorIs(t, err, apperrors.ErrGameInProgress)
}

func TestStartGame(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	s := lobbyWith(t, e, "alice", "bob", "carol")

	_, _, err := e.Apply(s, "alice", StartGame())
	assert.ErrorIs(t, err, apperrors.ErrNotEnoughPlayers)

	s, _ = mustApply(t, e, s, "alice", JoinTeam(game.TeamDark, game.RoleSpymaster))
	s, _ = mustApply(t, e, s, "bob", JoinTeam(game.TeamLight, game.RoleGuesser))

	_, _, err = e.Apply(s, "bob", StartGame())
	assert.ErrorIs(t, err, apperrors.ErrNotRoomOwner)

	next, events := mustApply(t, e, s, "alice", StartGame())
	assert.Equal(t, game.PhasePlaying, next.Phase)
	assert.Len(t, next.Cards, game.BoardSize)
	assert.True(t, next.CurrentTeam.Valid())
	assert.Equal(t, next.StartingTeam, next.CurrentTeam)
	assert.Equal(t, game.StageAwaitingClue, next.Stage)
	assert.Equal(t, t0, next.CurrentTurnStartTime)
	assert.Equal(t, 9, next.Remaining(game.CardTypeOf(next.StartingTeam)))
	assert.Equal(t, 8, next.Remaining(game.CardTypeOf(next.StartingTeam.Opponent())))
	assert.Equal(t, 7, next.Remaining(game.CardNeutral))
	assert.Equal(t, 1, next.Remaining(game.CardAssassin))
	for _, p := range next.Players {
		assert.Equal(t, game.SecretNone, p.SecretRole, "非混乱模式没有隐藏身份")
	}
	require.Len(t, events, 1)
	assert.Equal(t, EventGameStarted, events[0].Type)

	_, _, err = e.Apply(next, "alice", StartGame())
	assert.ErrorIs(t, err, apperrors.ErrGameInProgress)
}

func TestRestartAndReturnToLobby(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	s := playingState()
	s, _ = mustApply(t, e, s, "alice", GiveClue("OCEAN", 1))
	s, _ = mustApply(t, e, s, "bob", RevealCard(24))
	require.Equal(t, game.PhaseEnded, s.Phase)

	_, _, err := e.Apply(s, "bob", RestartGame())
	assert.ErrorIs(t, err, apperrors.ErrNotRoomOwner)

	restarted, events := mustApply(t, e, s, "alice", RestartGame())
	assert.Equal(t, game.PhasePlaying, restarted.Phase)
	assert.Equal(t, game.TeamNone, restarted.Winner)
	assert.Empty(t, restarted.RevealHistory)
	assert.Equal(t, game.BoardSize, restarted.UnrevealedCount())
	assert.Equal(t, map[game.Team]int{game.TeamDark: 0, game.TeamLight: 0}, restarted.Scores)
	assert.Equal(t, []EventType{EventGameRestarted}, eventTypes(events))

	lobby, events := mustApply(t, e, s, "alice", ReturnToLobby())
	assert.Equal(t, game.PhaseLobby, lobby.Phase)
	assert.Empty(t, lobby.Cards)
	assert.Equal(t, game.TeamNone, lobby.Winner)
	assert.Greater(t, lobby.StageSeq, s.StageSeq)
	p, _ := lobby.Player("bob")
	assert.Equal(t, game.TeamDark, p.Team, "返回大厅保留队伍")
	assert.Equal(t, game.RoleGuesser, p.Role)
	assert.Equal(t, []EventType{EventReturnedToLobby}, eventTypes(events))

	_, _, err = e.Apply(lobby, "alice", ReturnToLobby())
	assert.ErrorIs(t, err, apperrors.ErrGameNotStarted)
	_, _, err = e.Apply(lobby, "alice", RestartGame())
	assert.ErrorIs(t, err, apperrors.ErrGameNotStarted)
}
