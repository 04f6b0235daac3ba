package middleware

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/opencollective/frontend/internal/storage"
)

const (
	storeKey = "visitor_store"

	maxMatchingFundLength = 64
)

// VisitorState opens the visitor store of the request and records the
// referral and matching fund carried by campaign links (?referral=,
// ?matchingFund=) so a later checkout can read them back.
func VisitorState(provider storage.Provider, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var store storage.Store = storage.Memory{}
		if provider != nil {
			store = provider.ForRequest(c.Writer, c.Request)
		}
		c.Set(storeKey, store)

		ctx := c.Request.Context()
		if v := strings.TrimSpace(c.Query(storage.KeyReferral)); v != "" {
			if id, err := strconv.Atoi(v); err == nil && id > 0 {
				if err := store.Set(ctx, storage.KeyReferral, strconv.Itoa(id)); err != nil {
					logger.Warn("Failed to store referral", zap.Error(err))
				}
			}
		}
		if v := strings.TrimSpace(c.Query(storage.KeyMatchingFund)); v != "" && len(v) <= maxMatchingFundLength {
			if err := store.Set(ctx, storage.KeyMatchingFund, v); err != nil {
				logger.Warn("Failed to store matching fund", zap.Error(err))
			}
		}

		c.Next()
	}
}

// GetStoreFromContext returns the visitor store of the request
func GetStoreFromContext(c *gin.Context) (storage.Store, bool) {
	v, ok := c.Get(storeKey)
	if !ok {
		return nil, false
	}
	s, ok := v.(storage.Store)
	return s, ok
}
