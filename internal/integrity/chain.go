package integrity

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"
)

// ErrChainBroken 审计链校验失败
var ErrChainBroken = errors.New("审计链校验失败")

// Entry 审计链中的一条记录
type Entry struct {
	Version   int64     `json:"version"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	StateHash string    `json:"stateHash"`
	PrevHash  string    `json:"prevHash"`
	Hash      string    `json:"hash"`
	At        time.Time `json:"at"`
}

// Chain 只追加的审计哈希链：h_n = sha256(h_{n-1} | version | actor | action | stateHash)
type Chain struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewChain 创建空的审计链
func NewChain() *Chain {
	return &Chain{}
}

// Append 追加一条记录并返回其哈希
func (c *Chain) Append(version int64, actor, action, stateHash string, at time.Time) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := ""
	if n := len(c.entries); n > 0 {
		prev = c.entries[n-1].Hash
	}
	e := Entry{
		Version:   version,
		Actor:     actor,
		Action:    action,
		StateHash: stateHash,
		PrevHash:  prev,
		At:        at,
	}
	e.Hash = linkHash(e)
	c.entries = append(c.entries, e)
	return e.Hash
}

// Head 最新的链头哈希
func (c *Chain) Head() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.entries) == 0 {
		return ""
	}
	return c.entries[len(c.entries)-1].Hash
}

// Len 记录数量
func (c *Chain) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Entries 记录副本
func (c *Chain) Entries() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Verify 重新计算整条链
func (c *Chain) Verify() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return VerifyEntries(c.entries)
}

// VerifyEntries 校验一组按顺序排列的记录
func VerifyEntries(entries []Entry) error {
	prev := ""
	for i, e := range entries {
		if e.PrevHash != prev {
			return fmt.Errorf("%w: 第 %d 条前驱哈希不匹配", ErrChainBroken, i)
		}
		if linkHash(e) != e.Hash {
			return fmt.Errorf("%w: 第 %d 条哈希不匹配", ErrChainBroken, i)
		}
		prev = e.Hash
	}
	return nil
}

func linkHash(e Entry) string {
	h := sha256.New()
	for _, part := range []string{e.PrevHash, strconv.FormatInt(e.Version, 10), e.Actor, e.Action, e.StateHash} {
		h.Write([]byte(part))
		h.Write([]byte{'|'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
