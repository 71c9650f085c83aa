// Package auth implements the single shared-password admin gate of the site.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// AdminCacheKey is the cache key persisting the open admin session.
const AdminCacheKey = "isAdminAuth"

// Cache is the persistent key/value surface the gate keeps its flag in.
type Cache interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// Gate compares submitted passwords with a fixed SHA-256 hash and remembers
// whether the admin is logged in across restarts.
type Gate struct {
	passwordHash string
	cache        Cache
	logger       zerolog.Logger

	mu      sync.RWMutex
	isAdmin bool
}

// NewGate creates a gate for the hex encoded SHA-256 passwordHash. An empty
// hash disables logging in.
func NewGate(passwordHash string, cache Cache) *Gate {
	return &Gate{
		passwordHash: strings.ToLower(strings.TrimSpace(passwordHash)),
		cache:        cache,
		logger:       log.With().Str("component", "adminGate").Logger(),
	}
}

// HashPassword returns the lowercase hex SHA-256 digest of password.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Restore reopens the admin session if it was open when the process stopped.
func (g *Gate) Restore() {
	if g.cache == nil {
		return
	}
	value, ok, err := g.cache.Get(AdminCacheKey)
	if err != nil {
		g.logger.Warn().Err(err).Msg("reading stored admin state failed")
		return
	}

	g.mu.Lock()
	g.isAdmin = ok && value == "true"
	g.mu.Unlock()

	if g.IsAdmin() {
		g.logger.Info().Msg("admin session restored")
	}
}

// Login opens the admin session when password matches.
func (g *Gate) Login(password string) bool {
	if g.passwordHash == "" {
		g.logger.Warn().Msg("login attempted but no admin password hash is configured")
		return false
	}

	hashed := HashPassword(password)
	if subtle.ConstantTimeCompare([]byte(hashed), []byte(g.passwordHash)) != 1 {
		g.logger.Info().Msg("login failed, incorrect password")
		return false
	}

	g.setAdmin(true)
	g.logger.Info().Msg("admin logged in")
	return true
}

// Logout closes the admin session.
func (g *Gate) Logout() {
	g.setAdmin(false)
	g.logger.Info().Msg("admin logged out")
}

// IsAdmin reports whether the admin session is open.
func (g *Gate) IsAdmin() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.isAdmin
}

func (g *Gate) setAdmin(isAdmin bool) {
	g.mu.Lock()
	g.isAdmin = isAdmin
	g.mu.Unlock()

	if g.cache == nil {
		return
	}
	var err error
	if isAdmin {
		err = g.cache.Set(AdminCacheKey, "true")
	} else {
		err = g.cache.Delete(AdminCacheKey)
	}
	if err != nil {
		g.logger.Error().Err(err).Msg("persisting admin state failed")
	}
}
