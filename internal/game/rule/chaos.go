package rule

import (
	"time"

	"github.com/palemoky/codenames-arena/internal/apperrors"
	"github.com/palemoky/codenames-arena/internal/game"
	"github.com/palemoky/codenames-arena/internal/game/board"
)

// assignSecretRoles 每队随机一名先知；人数允许时再从其余成员中选一名双面间谍
func (e *Engine) assignSecretRoles(s *game.GameState) {
	for _, team := range game.Teams {
		var members []int
		for i, p := range s.Players {
			if p.Team == team && p.Role.Valid() {
				members = append(members, i)
			}
		}
		if len(members) == 0 {
			continue
		}
		e.Shuffle(len(members), func(i, j int) { members[i], members[j] = members[j], members[i] })

		prophet := &s.Players[members[0]]
		prophet.SecretRole = game.SecretProphet
		prophet.KnownCardIDs = board.PickCardIDs(e, ProphetKnownCards)

		if len(members) > 1 {
			s.Players[members[1]].SecretRole = game.SecretDoubleAgent
		}
	}
}

// VotingOpen 某一类别当前是否接受投票
func VotingOpen(s *game.GameState, c game.VoteCategory) bool {
	if s.Phase != game.PhaseEnded || !s.Settings.ChaosMode || s.Winner == game.TeamNone {
		return false
	}
	if s.GuessResult(c) != nil {
		return false
	}
	if c == game.VoteProphet && s.ConsecutivePasses[s.Loser()] >= FocusPenaltyPasses {
		return false
	}
	return true
}

func (e *Engine) vote(s *game.GameState, playerID string, c game.VoteCategory, targetID string, now time.Time) ([]Event, error) {
	voter, err := member(s, playerID)
	if err != nil {
		return nil, err
	}
	if !VotingOpen(s, c) || voter.Team != s.Loser() {
		return nil, apperrors.ErrVotingUnavailable
	}
	target, ok := s.Player(targetID)
	if !ok || target.Team != s.Winner {
		return nil, apperrors.ErrInvalidVote
	}
	votes := s.Votes(c)
	for _, v := range votes {
		if v.VoterID == playerID {
			return nil, apperrors.ErrAlreadyVoted
		}
	}

	s.SetVotes(c, append(votes, game.Vote{VoterID: playerID, TargetID: targetID, CastAt: now}))

	if ev, ok := resolveVotes(s, c, now); ok {
		return []Event{ev}, nil
	}
	return []Event{{Type: EventVotesUpdated, PlayerID: playerID, Category: c}}, nil
}

// resolveVotes 失败方全员投票后结算：得票最多者当选，平票取最早投出的一票
func resolveVotes(s *game.GameState, c game.VoteCategory, now time.Time) (Event, bool) {
	if !VotingOpen(s, c) {
		return Event{}, false
	}
	loser := s.Loser()
	voters := s.TeamMembers(loser)
	votes := s.Votes(c)
	if len(voters) == 0 || len(votes) == 0 {
		return Event{}, false
	}
	for _, id := range voters {
		if !hasVoted(votes, id) {
			return Event{}, false
		}
	}

	tally := make(map[string]int, len(votes))
	for _, v := range votes {
		tally[v.TargetID]++
	}
	best := ""
	for _, v := range votes {
		if best == "" || tally[v.TargetID] > tally[best] {
			best = v.TargetID
		}
	}

	result := &game.GuessResult{TargetID: best, Votes: tally, ResolvedAt: now}
	if target, ok := s.Player(best); ok && target.SecretRole == c.SecretRole() {
		result.Success = true
		s.Scores[loser] += GuessBonus
	}
	s.SetGuessResult(c, result)

	return Event{Type: EventVotesUpdated, Category: c, Result: result}, true
}

func hasVoted(votes []game.Vote, voterID string) bool {
	for _, v := range votes {
		if v.VoterID == voterID {
			return true
		}
	}
	return false
}

func dropVoter(votes []game.Vote, voterID string) []game.Vote {
	out := votes[:0:0]
	for _, v := range votes {
		if v.VoterID != voterID {
			out = append(out, v)
		}
	}
	return out
}
