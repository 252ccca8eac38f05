package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"fanhub/metrics"
	"fanhub/models"
	"fanhub/tools"

	"github.com/gin-gonic/gin"
)

const insightInstructions = "You are a football analyst writing for the supporters of a club. " +
	"Write a short, lively insight (max 120 words) about the match described below. " +
	"Before kickoff write a preview, during the match a live update, after the final whistle a recap. " +
	"Do not invent player names or statistics that are not given."

type cachedInsight struct {
	Insight     string    `json:"insight"`
	GeneratedAt time.Time `json:"generated_at"`
}

type InsightResponse struct {
	MatchID     int64     `json:"match_id"`
	Insight     string    `json:"insight"`
	Cached      bool      `json:"cached"`
	GeneratedAt time.Time `json:"generated_at"`
}

// insightCacheKey changes whenever the status or the score changes.
func insightCacheKey(m models.Match) string {
	return fmt.Sprintf("insights:match:%d:%s:%d-%d", m.ID, m.Status, m.HomeScore, m.AwayScore)
}

func matchPrompt(m models.Match) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Home team: %s\nAway team: %s\n", m.HomeTeam, m.AwayTeam)
	if m.Competition != "" {
		fmt.Fprintf(&b, "Competition: %s\n", m.Competition)
	}
	if m.Venue != "" {
		fmt.Fprintf(&b, "Venue: %s\n", m.Venue)
	}
	if m.KickoffAt != nil {
		fmt.Fprintf(&b, "Kickoff: %s\n", m.KickoffAt.UTC().Format(time.RFC1123))
	}
	fmt.Fprintf(&b, "Status: %s\n", m.Status)
	if m.Status != models.MATCH_STATUS_SCHEDULED {
		fmt.Fprintf(&b, "Score: %d-%d\n", m.HomeScore, m.AwayScore)
	}
	return b.String()
}

// GET /api/ai/insights/match/:id?refresh=true
func GetMatchInsight(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	refresh := queryBool(c, "refresh")
	if refresh && !member.IsStaff() {
		RespondError(c, "refresh requires admin", http.StatusForbidden)
		return
	}
	match, ok := findAssociationMatch(c, member)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	store := CacheInstance(c)
	key := insightCacheKey(*match)

	if store != nil && !refresh {
		raw, hit, err := store.Get(ctx, key)
		if err != nil {
			slog.Warn("insight cache read failed", "key", key, "error", err)
		}
		var cached cachedInsight
		if hit && json.Unmarshal([]byte(raw), &cached) == nil && cached.Insight != "" {
			metrics.InsightCache.WithLabelValues("hit").Inc()
			RespondSuccess(c, InsightResponse{
				MatchID:     match.ID,
				Insight:     cached.Insight,
				Cached:      true,
				GeneratedAt: cached.GeneratedAt,
			})
			return
		}
	}
	metrics.InsightCache.WithLabelValues("miss").Inc()

	generator := InsightsInstance(c)
	if generator == nil {
		RespondError(c, "ai insights not configured", http.StatusServiceUnavailable)
		return
	}
	text, err := generator.Generate(ctx, insightInstructions, matchPrompt(*match))
	if errors.Is(err, tools.ErrAIDisabled) {
		RespondError(c, "ai insights not configured", http.StatusServiceUnavailable)
		return
	}
	if err != nil {
		slog.Error("insight generation failed", "match_id", match.ID, "error", err)
		tools.CaptureErrorWithExtra(err, "match_id", match.ID)
		RespondError(c, "insight provider unavailable", http.StatusBadGateway)
		return
	}

	entry := cachedInsight{Insight: text, GeneratedAt: time.Now().UTC()}
	if store != nil {
		if b, err := json.Marshal(entry); err == nil {
			if err := store.Set(ctx, key, string(b), insightTTL()); err != nil {
				slog.Warn("insight cache write failed", "key", key, "error", err)
			}
		}
	}

	RespondSuccess(c, InsightResponse{
		MatchID:     match.ID,
		Insight:     entry.Insight,
		Cached:      false,
		GeneratedAt: entry.GeneratedAt,
	})
}
