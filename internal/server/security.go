package server

import (
	"net"
	"net/http"
	"net/netip"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// limiterIdleTTL 空闲多久后清理限流条目
const limiterIdleTTL = 2 * time.Minute

// perMinute 构造每分钟 n 次、突发 n 次的限流器
func perMinute(n int) *rate.Limiter {
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), n)
}

// perSecond 构造每秒 n 次、突发 n 次的限流器
func perSecond(n int) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(n), n)
}

// --- 连接限流 ---

type ipEntry struct {
	second      *rate.Limiter
	minute      *rate.Limiter
	bannedUntil time.Time
	lastSeen    time.Time
}

// RateLimiter 按 IP 限制建立连接的频率，超限后封禁一段时间
type RateLimiter struct {
	maxPerSecond int
	maxPerMinute int
	banDuration  time.Duration
	now          func() time.Time

	mu      sync.Mutex
	entries map[string]*ipEntry
}

// NewRateLimiter 创建连接限流器
func NewRateLimiter(maxPerSecond, maxPerMinute int, banDuration time.Duration) *RateLimiter {
	return &RateLimiter{
		maxPerSecond: maxPerSecond,
		maxPerMinute: maxPerMinute,
		banDuration:  banDuration,
		now:          time.Now,
		entries:      make(map[string]*ipEntry),
	}
}

// Allow 判断该 IP 是否允许新建连接
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	e, ok := rl.entries[ip]
	if !ok {
		e = &ipEntry{second: perSecond(rl.maxPerSecond), minute: perMinute(rl.maxPerMinute)}
		rl.entries[ip] = e
	}
	e.lastSeen = now

	if now.Before(e.bannedUntil) {
		return false
	}
	if !e.second.AllowN(now, 1) || !e.minute.AllowN(now, 1) {
		e.bannedUntil = now.Add(rl.banDuration)
		return false
	}
	return true
}

// IsBanned 判断该 IP 是否处于封禁期
func (rl *RateLimiter) IsBanned(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	e, ok := rl.entries[ip]
	return ok && rl.now().Before(e.bannedUntil)
}

// Prune 清理长时间无活动且未封禁的条目，返回清理数量
func (rl *RateLimiter) Prune() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	removed := 0
	for ip, e := range rl.entries {
		if now.Sub(e.lastSeen) > limiterIdleTTL && !now.Before(e.bannedUntil) {
			delete(rl.entries, ip)
			removed++
		}
	}
	return removed
}

// --- 消息限流 ---

type messageEntry struct {
	limiter  *rate.Limiter
	warnings int
}

// MessageRateLimiter 按连接限制消息频率，接近上限时给出警告
type MessageRateLimiter struct {
	maxPerSecond int
	now          func() time.Time

	mu      sync.Mutex
	clients map[string]*messageEntry
}

// NewMessageRateLimiter 创建消息限流器
func NewMessageRateLimiter(maxPerSecond int) *MessageRateLimiter {
	return &MessageRateLimiter{
		maxPerSecond: maxPerSecond,
		now:          time.Now,
		clients:      make(map[string]*messageEntry),
	}
}

// AllowMessage 返回是否放行以及是否需要警告
func (ml *MessageRateLimiter) AllowMessage(clientID string) (allowed, warning bool) {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	now := ml.now()
	e, ok := ml.clients[clientID]
	if !ok {
		e = &messageEntry{limiter: perSecond(ml.maxPerSecond)}
		ml.clients[clientID] = e
	}

	if !e.limiter.AllowN(now, 1) {
		e.warnings++
		return false, true
	}
	// 剩余令牌不足一半时提醒
	if e.limiter.TokensAt(now) < float64(ml.maxPerSecond)/2 {
		e.warnings++
		return true, true
	}
	return true, false
}

// GetWarningCount 返回累计警告次数
func (ml *MessageRateLimiter) GetWarningCount(clientID string) int {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	if e, ok := ml.clients[clientID]; ok {
		return e.warnings
	}
	return 0
}

// RemoveClient 连接断开时清理
func (ml *MessageRateLimiter) RemoveClient(clientID string) {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	delete(ml.clients, clientID)
}

// --- 聊天限流 ---

type chatEntry struct {
	second        *rate.Limiter
	minute        *rate.Limiter
	cooldownUntil time.Time
}

// ChatRateLimiter 聊天与嘲讽限流，刷屏后进入冷却
type ChatRateLimiter struct {
	maxPerSecond int
	maxPerMinute int
	cooldown     time.Duration
	now          func() time.Time

	mu      sync.Mutex
	clients map[string]*chatEntry
}

// NewChatRateLimiter 创建聊天限流器
func NewChatRateLimiter(maxPerSecond, maxPerMinute int, cooldown time.Duration) *ChatRateLimiter {
	return &ChatRateLimiter{
		maxPerSecond: maxPerSecond,
		maxPerMinute: maxPerMinute,
		cooldown:     cooldown,
		now:          time.Now,
		clients:      make(map[string]*chatEntry),
	}
}

// AllowChat 返回是否放行，拒绝时附带提示
func (cl *ChatRateLimiter) AllowChat(clientID string) (bool, string) {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	now := cl.now()
	e, ok := cl.clients[clientID]
	if !ok {
		e = &chatEntry{second: perSecond(cl.maxPerSecond), minute: perMinute(cl.maxPerMinute)}
		cl.clients[clientID] = e
	}

	if now.Before(e.cooldownUntil) {
		return false, "章鱼哥正在闭目养神，请稍后再发言"
	}
	if !e.second.AllowN(now, 1) {
		e.cooldownUntil = now.Add(cl.cooldown)
		return false, "你说得比派大星还快，先冷静一下"
	}
	if !e.minute.AllowN(now, 1) {
		return false, "发言太频繁了，休息一会儿吧"
	}
	return true, ""
}

// RemoveClient 连接断开时清理
func (cl *ChatRateLimiter) RemoveClient(clientID string) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	delete(cl.clients, clientID)
}

// --- Origin 校验 ---

// OriginChecker WebSocket 握手的 Origin 白名单
type OriginChecker struct {
	allowAll bool
	allowed  []string
}

// NewOriginChecker 创建 Origin 校验器，包含 "*" 时放行全部
func NewOriginChecker(origins []string) *OriginChecker {
	return &OriginChecker{
		allowAll: slices.Contains(origins, "*"),
		allowed:  origins,
	}
}

// Check 用作 websocket.Upgrader.CheckOrigin
func (oc *OriginChecker) Check(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || oc.allowAll {
		return true
	}
	return slices.Contains(oc.allowed, origin)
}

// --- IP 过滤 ---

// IPFilter 黑白名单，条目可以是单个 IP 或 CIDR
type IPFilter struct {
	mu        sync.RWMutex
	blacklist map[netip.Prefix]struct{}
	whitelist map[netip.Prefix]struct{}
}

// NewIPFilter 创建 IP 过滤器
func NewIPFilter(blocked ...string) *IPFilter {
	f := &IPFilter{
		blacklist: make(map[netip.Prefix]struct{}),
		whitelist: make(map[netip.Prefix]struct{}),
	}
	for _, entry := range blocked {
		f.AddToBlacklist(entry)
	}
	return f
}

func parsePrefix(entry string) (netip.Prefix, bool) {
	entry = strings.TrimSpace(entry)
	if strings.Contains(entry, "/") {
		p, err := netip.ParsePrefix(entry)
		return p.Masked(), err == nil
	}
	addr, err := netip.ParseAddr(entry)
	if err != nil {
		return netip.Prefix{}, false
	}
	addr = addr.Unmap()
	return netip.PrefixFrom(addr, addr.BitLen()), true
}

// AddToBlacklist 加入黑名单，无法解析的条目被忽略
func (f *IPFilter) AddToBlacklist(entry string) bool {
	p, ok := parsePrefix(entry)
	if !ok {
		return false
	}
	f.mu.Lock()
	f.blacklist[p] = struct{}{}
	f.mu.Unlock()
	return true
}

// RemoveFromBlacklist 移出黑名单
func (f *IPFilter) RemoveFromBlacklist(entry string) {
	if p, ok := parsePrefix(entry); ok {
		f.mu.Lock()
		delete(f.blacklist, p)
		f.mu.Unlock()
	}
}

// AddToWhitelist 加入白名单，白名单非空时只放行名单内地址
func (f *IPFilter) AddToWhitelist(entry string) bool {
	p, ok := parsePrefix(entry)
	if !ok {
		return false
	}
	f.mu.Lock()
	f.whitelist[p] = struct{}{}
	f.mu.Unlock()
	return true
}

func containsAddr(set map[netip.Prefix]struct{}, addr netip.Addr) bool {
	for p := range set {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// IsAllowed 判断该 IP 是否允许连接
func (f *IPFilter) IsAllowed(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()

	f.mu.RLock()
	defer f.mu.RUnlock()
	if containsAddr(f.blacklist, addr) {
		return false
	}
	if len(f.whitelist) > 0 {
		return containsAddr(f.whitelist, addr)
	}
	return true
}

// GetClientIP 获取客户端真实 IP，依次检查 X-Forwarded-For、X-Real-IP、RemoteAddr
func GetClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xrip := strings.TrimSpace(r.Header.Get("X-Real-IP")); xrip != "" {
		return xrip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
