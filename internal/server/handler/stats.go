package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/palemoky/codenames-arena/internal/apperrors"
	"github.com/palemoky/codenames-arena/internal/protocol"
	"github.com/palemoky/codenames-arena/internal/protocol/codec"
	"github.com/palemoky/codenames-arena/internal/types"
)

// storageTimeout Redis 操作超时
const storageTimeout = 3 * time.Second

// defaultLeaderboardLimit 未指定数量时返回前 10 名
const defaultLeaderboardLimit = 10

// handleGetLeaderboard 获取排行榜，未启用持久化时返回空列表
func (h *Handler) handleGetLeaderboard(client types.ClientInterface, msg *protocol.Message) error {
	payload, err := parse[protocol.GetLeaderboardPayload](msg)
	if err != nil {
		return err
	}
	limit := payload.Limit
	if limit == 0 {
		limit = defaultLeaderboardLimit
	}

	entries := []protocol.LeaderboardEntry{}
	if h.leaderboard != nil {
		ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
		defer cancel()
		entries, err = h.leaderboard.GetLeaderboard(ctx, limit)
		if err != nil {
			return fmt.Errorf("获取排行榜失败: %w", err)
		}
	}

	client.SendMessage(codec.MustNewMessage(protocol.MsgLeaderboardResult, protocol.LeaderboardResultPayload{
		Entries: entries,
	}))
	return nil
}

// handleRateWord 对当前棋盘上的词语点赞或点踩，结果广播给房间
func (h *Handler) handleRateWord(client types.ClientInterface, msg *protocol.Message) error {
	roomCode, playerID, err := currentRoom(client)
	if err != nil {
		return err
	}
	payload, err := parse[protocol.RateWordPayload](msg)
	if err != nil {
		return err
	}
	if h.store == nil {
		return apperrors.New(protocol.ErrCodeUnknown)
	}
	if !h.allowRating(client.GetID()) {
		return apperrors.ErrRateLimited
	}

	state, err := h.sessions.Snapshot(roomCode)
	if err != nil {
		return err
	}
	word := strings.TrimSpace(payload.Word)
	onBoard := false
	for _, c := range state.Cards {
		if strings.EqualFold(c.Word, word) {
			onBoard = true
			break
		}
	}
	if !onBoard {
		return apperrors.ErrInvalidCard
	}

	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()
	likes, dislikes, err := h.store.RateWord(ctx, word, payload.Like)
	if err != nil {
		return fmt.Errorf("保存词语评价失败: %w", err)
	}

	h.router.Broadcast(roomCode, codec.MustNewMessage(protocol.MsgWordRated, protocol.WordRatedPayload{
		PlayerID: playerID,
		Word:     word,
		Like:     payload.Like,
		Likes:    likes,
		Dislikes: dislikes,
	}))
	return nil
}
