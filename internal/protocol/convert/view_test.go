package convert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/codenames-arena/internal/game"
	"github.com/palemoky/codenames-arena/internal/game/room"
	"github.com/palemoky/codenames-arena/internal/game/rule"
	"github.com/palemoky/codenames-arena/internal/protocol"
	"github.com/palemoky/codenames-arena/internal/protocol/codec"
)

var now = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func viewState() *game.GameState {
	s := game.NewGameState("ROOM", game.DefaultSettings(), now)
	s.Settings.ChaosMode = true
	s.Settings.TimedMode = game.TimedMode{Enabled: true, SpymasterTime: 60, GuesserTime: 30}
	s.Players = []game.Player{
		{ID: "spy", Username: "Spy", Team: game.TeamDark, Role: game.RoleSpymaster, IsRoomOwner: true, SecretRole: game.SecretNone},
		{ID: "guess", Username: "Guess", Team: game.TeamDark, Role: game.RoleGuesser, SecretRole: game.SecretProphet, KnownCardIDs: []int{0, 1, 2}},
		{ID: "other", Username: "Other", Team: game.TeamLight, Role: game.RoleGuesser, SecretRole: game.SecretDoubleAgent},
	}
	s.Cards = []game.Card{
		{ID: 0, Word: "OCEAN", Type: game.CardDark, Revealed: true},
		{ID: 1, Word: "RIVER", Type: game.CardLight},
		{ID: 2, Word: "KNIFE", Type: game.CardAssassin},
	}
	s.Phase = game.PhasePlaying
	s.CurrentTeam = game.TeamDark
	s.Stage = game.StageAwaitingGuess
	s.Clue = &game.Clue{Word: "WATER", Count: 1, Team: game.TeamDark}
	s.CurrentTurnStartTime = now
	return s
}

func TestGameView_GuesserSeesOnlyRevealedTypes(t *testing.T) {
	t.Parallel()

	v := GameView(viewState(), "other", nil, now)
	assert.Equal(t, "dark", v.Cards[0].Type)
	assert.Empty(t, v.Cards[1].Type)
	assert.Empty(t, v.Cards[2].Type)
	assert.Equal(t, "other", v.YouID)
	require.NotNil(t, v.Clue)
	assert.Equal(t, "WATER", v.Clue.Word)
	assert.Equal(t, now.Add(30*time.Second).UnixMilli(), v.TurnDeadline)
}

func TestGameView_ProphetSeesKnownCardTypes(t *testing.T) {
	t.Parallel()

	v := GameView(viewState(), "guess", nil, now)
	assert.Equal(t, "dark", v.Cards[0].Type)
	assert.Equal(t, "light", v.Cards[1].Type)
	assert.Equal(t, "assassin", v.Cards[2].Type)

	// 先知身份只影响本人视图
	s := viewState()
	s.Players[1].KnownCardIDs = []int{1}
	v = GameView(s, "guess", nil, now)
	assert.Equal(t, "light", v.Cards[1].Type)
	assert.Empty(t, v.Cards[2].Type)
	assert.Empty(t, GameView(s, "other", nil, now).Cards[1].Type)
}

func TestGameView_SpymasterSeesAllTypes(t *testing.T) {
	t.Parallel()

	v := GameView(viewState(), "spy", nil, now)
	for i, c := range v.Cards {
		assert.NotEmpty(t, c.Type, i)
	}
}

func TestGameView_SecretRolesRedacted(t *testing.T) {
	t.Parallel()

	v := GameView(viewState(), "guess", nil, now)
	assert.Empty(t, v.Players[0].SecretRole)
	assert.Equal(t, "prophet", v.Players[1].SecretRole, "本人可见")
	assert.Equal(t, []int{0, 1, 2}, v.Players[1].KnownCardIDs)
	assert.Empty(t, v.Players[2].SecretRole, "他人不可见")

	spectator := GameView(viewState(), "nobody", nil, now)
	for _, p := range spectator.Players {
		assert.Empty(t, p.SecretRole)
		assert.Empty(t, p.KnownCardIDs)
	}
	assert.Empty(t, spectator.Cards[1].Type)
}

func TestGameView_EndedRevealsEverything(t *testing.T) {
	t.Parallel()

	s := viewState()
	s.Phase = game.PhaseEnded
	s.Winner = game.TeamLight
	s.Stage = game.StageNone

	v := GameView(s, "other", nil, now)
	assert.Equal(t, "assassin", v.Cards[2].Type)
	assert.Equal(t, "prophet", v.Players[1].SecretRole)
	assert.Equal(t, "double_agent", v.Players[2].SecretRole)
	assert.Zero(t, v.TurnDeadline)
	assert.True(t, v.DoubleAgentVotingOpen)
}

func TestGameView_Online(t *testing.T) {
	t.Parallel()

	v := GameView(viewState(), "spy", func(id string) bool { return id == "spy" }, now)
	assert.True(t, v.Players[0].Online)
	assert.False(t, v.Players[1].Online)
}

func TestGameView_Counts(t *testing.T) {
	t.Parallel()

	v := GameView(viewState(), "spy", nil, now)
	assert.Equal(t, 0, v.DarkCardsRemaining)
	assert.Equal(t, 1, v.LightCardsRemaining)
	assert.Equal(t, map[string]int{"dark": 0, "light": 0}, v.Scores)
}

func TestSettingsRoundTrip(t *testing.T) {
	t.Parallel()

	s := game.DefaultSettings()
	s.ChaosMode = true
	s.TimedMode.Enabled = true
	assert.Equal(t, s, SettingsFromDTO(SettingsToDTO(s)))
}

func TestRoomListItems(t *testing.T) {
	t.Parallel()

	items := RoomListItems([]room.Summary{{RoomCode: "ABCDE", PlayerCount: 2, MaxPlayers: 10, HasPassword: true, Phase: game.PhaseLobby, CreatedAt: now}})
	require.Len(t, items, 1)
	assert.Equal(t, protocol.RoomListItem{
		RoomCode: "ABCDE", PlayerCount: 2, MaxPlayers: 10, HasPassword: true, Phase: "lobby", CreatedAt: now.UnixMilli(),
	}, items[0])
}

func TestEventMessage(t *testing.T) {
	t.Parallel()

	card := game.Card{ID: 3, Word: "OCEAN", Type: game.CardDark, Revealed: true}
	msg := EventMessage("ROOM", rule.Event{Type: rule.EventCardRevealed, PlayerID: "bob", Team: game.TeamDark, Card: &card}, protocol.SettingsDTO{})
	require.NotNil(t, msg)
	assert.Equal(t, protocol.MsgCardRevealed, msg.Type)
	p, err := codec.ParsePayload[protocol.CardRevealedPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, protocol.CardRevealedPayload{PlayerID: "bob", Team: "dark", CardID: 3, Word: "OCEAN", Type: "dark"}, *p)

	msg = EventMessage("ROOM", rule.Event{Type: rule.EventGameOver, Winner: game.TeamLight, WinReason: game.WinAssassin}, protocol.SettingsDTO{})
	assert.Equal(t, protocol.MsgGameOver, msg.Type)
	assert.JSONEq(t, `{"winner":"light","reason":"assassin"}`, string(msg.Payload))

	assert.Nil(t, EventMessage("ROOM", rule.Event{Type: "unknown"}, protocol.SettingsDTO{}))
	assert.Nil(t, EventMessage("ROOM", rule.Event{Type: rule.EventClueGiven}, protocol.SettingsDTO{}))
}
