package controllers

import (
	"net/http"
	"strings"
	"time"

	"fanhub/models"

	"github.com/gin-gonic/gin"
)

type matchRequest struct {
	HomeTeam         *string    `json:"home_team"`
	AwayTeam         *string    `json:"away_team"`
	Competition      *string    `json:"competition"`
	Venue            *string    `json:"venue"`
	KickoffAt        *time.Time `json:"kickoff_at"`
	Status           *string    `json:"status"`
	TicketPriceCents *int64     `json:"ticket_price_cents"`
	Currency         *string    `json:"currency"`
	Capacity         *int64     `json:"capacity"`
}

func (r matchRequest) apply(m *models.Match) string {
	if r.HomeTeam != nil {
		m.HomeTeam = strings.TrimSpace(*r.HomeTeam)
	}
	if r.AwayTeam != nil {
		m.AwayTeam = strings.TrimSpace(*r.AwayTeam)
	}
	if r.Competition != nil {
		m.Competition = strings.TrimSpace(*r.Competition)
	}
	if r.Venue != nil {
		m.Venue = strings.TrimSpace(*r.Venue)
	}
	if r.KickoffAt != nil {
		k := *r.KickoffAt
		m.KickoffAt = &k
	}
	if r.Status != nil {
		m.Status = strings.ToLower(strings.TrimSpace(*r.Status))
	}
	if r.TicketPriceCents != nil {
		m.TicketPriceCents = *r.TicketPriceCents
	}
	if r.Currency != nil {
		m.Currency = strings.ToUpper(strings.TrimSpace(*r.Currency))
	}
	if r.Capacity != nil {
		m.Capacity = *r.Capacity
	}

	if missing := m.MissingFields(); missing != "" {
		return "missing field " + missing
	}
	if !models.IsValidMatchStatus(m.Status) {
		return "invalid status"
	}
	if m.TicketPriceCents < 0 {
		return "ticket_price_cents must not be negative"
	}
	if m.Capacity < m.TicketsSold {
		return "capacity below tickets already sold"
	}
	return ""
}

// GET /api/matches?status=&upcoming=true
func GetMatches(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	db, ok := database(c)
	if !ok {
		return
	}

	limit, offset := pagination(c, 50, 200)
	query := db.Model(&models.Match{}).Where("association_id = ?", member.AssociationID)
	if status := strings.ToLower(strings.TrimSpace(c.Query("status"))); status != "" {
		query = query.Where("status = ?", status)
	}
	order := "kickoff_at desc"
	if queryBool(c, "upcoming") {
		query = query.Where("kickoff_at > ?", time.Now())
		order = "kickoff_at asc"
	}

	matches := []models.Match{}
	if err := query.Order(order).Limit(limit).Offset(offset).Find(&matches).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, gin.H{"matches": matches})
}

func findAssociationMatch(c *gin.Context, member models.Member) (*models.Match, bool) {
	id, ok := ParamID(c, "id")
	if !ok {
		return nil, false
	}
	db, ok := database(c)
	if !ok {
		return nil, false
	}
	var match models.Match
	if err := db.Where("id = ? AND association_id = ?", id, member.AssociationID).First(&match).Error; err != nil {
		RespondError(c, "match not found", http.StatusNotFound)
		return nil, false
	}
	return &match, true
}

// GET /api/matches/:id
func GetMatchByID(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	match, ok := findAssociationMatch(c, member)
	if !ok {
		return
	}
	RespondSuccess(c, gin.H{"match": match, "tickets_available": match.TicketsAvailable()})
}

// POST /api/matches (admin)
func CreateMatch(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	var req matchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	match := models.Match{
		AssociationID: member.AssociationID,
		Status:        models.MATCH_STATUS_SCHEDULED,
		Currency:      conf.Payments.DefaultCurrency,
	}
	if msg := req.apply(&match); msg != "" {
		RespondError(c, msg, http.StatusBadRequest)
		return
	}

	db, ok := database(c)
	if !ok {
		return
	}
	if err := db.Create(&match).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondCreated(c, gin.H{"match": match})
}

// PUT /api/matches/:id (admin)
func UpdateMatch(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	var req matchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	match, ok := findAssociationMatch(c, member)
	if !ok {
		return
	}
	if msg := req.apply(match); msg != "" {
		RespondError(c, msg, http.StatusBadRequest)
		return
	}
	db, _ := database(c)
	if err := db.Save(match).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, gin.H{"match": match})
}

// PUT /api/matches/:id/score (admin)  {home_score, away_score, status?}
func UpdateMatchScore(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	var req struct {
		HomeScore *int    `json:"home_score"`
		AwayScore *int    `json:"away_score"`
		Status    *string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if req.HomeScore == nil || req.AwayScore == nil || *req.HomeScore < 0 || *req.AwayScore < 0 {
		RespondError(c, "home_score and away_score are required", http.StatusBadRequest)
		return
	}
	match, ok := findAssociationMatch(c, member)
	if !ok {
		return
	}
	match.HomeScore = *req.HomeScore
	match.AwayScore = *req.AwayScore
	if req.Status != nil {
		status := strings.ToLower(strings.TrimSpace(*req.Status))
		if !models.IsValidMatchStatus(status) {
			RespondError(c, "invalid status", http.StatusBadRequest)
			return
		}
		match.Status = status
	} else if match.Status == models.MATCH_STATUS_SCHEDULED {
		match.Status = models.MATCH_STATUS_LIVE
	}

	db, _ := database(c)
	if err := db.Save(match).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, gin.H{"match": match})
}

// DELETE /api/matches/:id (admin). Refused once tickets were sold.
func DeleteMatch(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	match, ok := findAssociationMatch(c, member)
	if !ok {
		return
	}
	if match.TicketsSold > 0 {
		RespondError(c, "match has tickets sold", http.StatusConflict)
		return
	}
	db, _ := database(c)
	if err := db.Delete(match).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, gin.H{"status": "deleted"})
}
