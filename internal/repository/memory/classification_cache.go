package memory

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"ai-mailroom-be/internal/entity"

	"github.com/patrickmn/go-cache"
)

// ClassificationCache remembers classifications by email content hash, so a
// duplicate or re-sent email never costs a second LLM call.
type ClassificationCache struct {
	cache *cache.Cache
}

func NewClassificationCache() *ClassificationCache {
	// Default expiration of 24 hours, purge sweep every hour
	c := cache.New(24*time.Hour, 1*time.Hour)
	return &ClassificationCache{
		cache: c,
	}
}

// Key hashes subject+message; the email id is deliberately excluded so the
// same content under a new id still hits.
func (r *ClassificationCache) Key(email *entity.Email) string {
	sum := sha256.Sum256([]byte(email.Subject + "\x00" + email.Message))
	return hex.EncodeToString(sum[:])
}

func (r *ClassificationCache) Save(key string, category entity.EmailCategory) {
	r.cache.Set(key, category, cache.DefaultExpiration)
}

func (r *ClassificationCache) Get(key string) (entity.EmailCategory, bool) {
	if x, found := r.cache.Get(key); found {
		return x.(entity.EmailCategory), true
	}
	return "", false
}
