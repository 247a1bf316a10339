// Package board 负责生成每局的 25 张卡牌。
package board

import (
	"errors"
	"fmt"
	"strings"

	"github.com/palemoky/codenames-arena/internal/game"
)

// ErrNotEnoughWords 词库去重后不足一局所需
var ErrNotEnoughWords = errors.New("词库数量不足")

// Source 随机源，*rand.Rand（math/rand/v2）满足该接口
type Source interface {
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

// NormalizeWords 去除空白、转大写并去重，保持原有顺序
func NormalizeWords(words []string) []string {
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToUpper(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

// Deal 按分布随机发牌，starting 为先手队伍
func Deal(r Source, words []string, split game.CardSplit, starting game.Team) ([]game.Card, error) {
	if !split.Valid() {
		return nil, fmt.Errorf("无效的卡牌分布 %+v", split)
	}
	if !starting.Valid() {
		return nil, fmt.Errorf("无效的先手队伍 %q", starting)
	}

	pool := NormalizeWords(words)
	if len(pool) < game.BoardSize {
		return nil, fmt.Errorf("%w: %d", ErrNotEnoughWords, len(pool))
	}
	r.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	types := make([]game.CardType, 0, game.BoardSize)
	types = appendN(types, game.CardTypeOf(starting), split.Starting)
	types = appendN(types, game.CardTypeOf(starting.Opponent()), split.Other)
	types = appendN(types, game.CardNeutral, split.Neutral)
	types = appendN(types, game.CardAssassin, split.Assassin)
	r.Shuffle(len(types), func(i, j int) { types[i], types[j] = types[j], types[i] })

	cards := make([]game.Card, game.BoardSize)
	for i := range cards {
		cards[i] = game.Card{ID: i, Word: pool[i], Type: types[i]}
	}
	return cards, nil
}

// PickCardIDs 随机选出 n 个不重复的卡牌 ID
func PickCardIDs(r Source, n int) []int {
	ids := make([]int, game.BoardSize)
	for i := range ids {
		ids[i] = i
	}
	r.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	if n > len(ids) {
		n = len(ids)
	}
	return ids[:n]
}

func appendN(types []game.CardType, t game.CardType, n int) []game.CardType {
	for range n {
		types = append(types, t)
	}
	return types
}
