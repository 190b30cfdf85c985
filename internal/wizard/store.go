package wizard

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound 会话不存在或已过期
var ErrSessionNotFound = errors.New("捐赠会话不存在")

// Store 会话存储
// 会话是捐赠人的临时状态，confirm之前不落库，进程内持有即可。
// 存储外只流转快照，活体会话仅在持锁的Update回调内可变
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore 创建会话存储
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
	}
}

// Create 创建并登记新会话，返回快照
func (s *Store) Create(wishlistId, ngoId, donorId int64) *Session {
	session := NewSession(uuid.NewString(), wishlistId, ngoId)
	session.DonorId = donorId

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Id] = session
	return session.Clone()
}

// Get 按id取会话快照
func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session.Clone(), nil
}

// Remove 移除会话
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Update 在持锁状态下修改会话，避免并发请求交错写
// 返回修改后的快照，fn出错时也返回当前快照供错误展示
func (s *Store) Update(id string, fn func(*Session) error) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	session.LastActive = time.Now()
	if err := fn(session); err != nil {
		return session.Clone(), err
	}
	return session.Clone(), nil
}

// Sweep 清理空闲超过idle的会话，返回清理数量
func (s *Store) Sweep(idle time.Duration) int {
	cutoff := time.Now().Add(-idle)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, session := range s.sessions {
		if session.LastActive.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}
