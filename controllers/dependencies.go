package controllers

import (
	"context"

	"fanhub/cache"

	"github.com/gin-gonic/gin"
)

// InsightGenerator produces text from instructions and an input prompt.
type InsightGenerator interface {
	Generate(ctx context.Context, instructions string, input string) (string, error)
}

const cacheKey = "cache"
const insightsKey = "insights"

// SetServicesToContext makes the cache and the insight generator available to every handler.
func SetServicesToContext(store cache.Store, generator InsightGenerator) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(cacheKey, store)
		c.Set(insightsKey, generator)
		c.Next()
	}
}

func CacheInstance(c *gin.Context) cache.Store {
	v, ok := c.Get(cacheKey)
	if !ok {
		return nil
	}
	store, _ := v.(cache.Store)
	return store
}

func InsightsInstance(c *gin.Context) InsightGenerator {
	v, ok := c.Get(insightsKey)
	if !ok {
		return nil
	}
	gen, _ := v.(InsightGenerator)
	return gen
}
