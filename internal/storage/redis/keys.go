package redis

import "fmt"

// sessionKey returns the Redis key for a session token
func (s *SessionStore) sessionKey(token string) string {
	return fmt.Sprintf("%s:session:%s", s.cfg.KeyPrefix, token)
}
