// Package session keeps the bounded in-process conversation history. Sessions
// are created lazily, live for the process lifetime and never touch durable
// storage. Appends to the same session are serialized through a per-session
// lock so concurrent requests cannot interleave exchanges, while independent
// sessions never contend.
package session

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// DefaultMaxHistory 是单个会话保留的最大交换轮数。
const DefaultMaxHistory = 3

const (
	userRenderLimit      = 200
	assistantRenderLimit = 300
)

// Exchange 描述一次完整的用户/助手交换。
type Exchange struct {
	User      string    `json:"user"`
	Assistant string    `json:"assistant"`
	Timestamp time.Time `json:"timestamp"`
}

// Info 汇总单个会话的概要信息。
type Info struct {
	SessionID    string     `json:"sessionId"`
	MessageCount int        `json:"messageCount"`
	LastActivity *time.Time `json:"lastActivity"`
}

type entry struct {
	mu        sync.Mutex
	exchanges []Exchange
}

// Store 以内存方式维护各会话的历史记录。
type Store struct {
	mu         sync.RWMutex
	sessions   map[string]*entry
	maxHistory int
	enabled    bool
}

// NewStore 创建会话存储。maxHistory 小于等于 0 时使用默认值。
func NewStore(maxHistory int, enabled bool) *Store {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	return &Store{
		sessions:   make(map[string]*entry),
		maxHistory: maxHistory,
		enabled:    enabled,
	}
}

// Enabled 返回历史开关状态。
func (s *Store) Enabled() bool {
	return s.enabled
}

// ensure 返回指定会话的条目，首次访问时创建。
func (s *Store) ensure(sessionID string) *entry {
	s.mu.RLock()
	e, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok = s.sessions[sessionID]; ok {
		return e
	}
	e = &entry{}
	s.sessions[sessionID] = e
	return e
}

// GetHistory 返回会话的全部历史（副本），首次访问时创建空会话。
func (s *Store) GetHistory(sessionID string) []Exchange {
	e := s.ensure(sessionID)
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Exchange, len(e.exchanges))
	copy(out, e.exchanges)
	return out
}

// AppendExchange 追加一次交换，超出上限时从头部淘汰最旧的记录。
func (s *Store) AppendExchange(sessionID, userText, assistantText string) {
	e := s.ensure(sessionID)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.exchanges = append(e.exchanges, Exchange{
		User:      userText,
		Assistant: assistantText,
		Timestamp: time.Now(),
	})
	if overflow := len(e.exchanges) - s.maxHistory; overflow > 0 {
		e.exchanges = append([]Exchange(nil), e.exchanges[overflow:]...)
	}
}

// ClearSession 清空指定会话。会话不存在时为无操作。
func (s *Store) ClearSession(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// ListSessions 返回所有活跃会话的概要。
func (s *Store) ListSessions() []Info {
	s.mu.RLock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	infos := make([]Info, 0, len(ids))
	for _, id := range ids {
		s.mu.RLock()
		e, ok := s.sessions[id]
		s.mu.RUnlock()
		if !ok {
			continue
		}
		e.mu.Lock()
		info := Info{SessionID: id, MessageCount: len(e.exchanges)}
		if n := len(e.exchanges); n > 0 {
			ts := e.exchanges[n-1].Timestamp
			info.LastActivity = &ts
		}
		e.mu.Unlock()
		infos = append(infos, info)
	}
	return infos
}

// RenderHistory 将会话历史渲染为提示词片段。每条消息在渲染时独立截断，
// 存储中的原文保持完整。历史开关关闭时始终返回空串。
func (s *Store) RenderHistory(sessionID string) string {
	if !s.enabled {
		return ""
	}
	history := s.GetHistory(sessionID)
	if len(history) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n\nPrevious conversation:\n")
	for _, exchange := range history {
		fmt.Fprintf(&b, "User: %s\n", truncate(exchange.User, userRenderLimit))
		fmt.Fprintf(&b, "Assistant: %s\n\n", truncate(exchange.Assistant, assistantRenderLimit))
	}
	return b.String()
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
