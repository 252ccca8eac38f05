package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"fanhub/models"
	"fanhub/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
)

const maxTicketsPerPurchase = 10

type PurchaseTicketsRequest struct {
	MatchID  int64 `json:"match_id" form:"match_id"`
	Quantity int   `json:"quantity" form:"quantity"`
}

func seatLabel(n int64) string {
	return fmt.Sprintf("GA-%05d", n)
}

// POST /api/tickets  {match_id, quantity}
// Capacity is claimed with a conditional UPDATE so concurrent buyers never oversell.
func PurchaseTickets(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	var req PurchaseTicketsRequest
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.MatchID <= 0 {
		RespondError(c, "match_id is required", http.StatusBadRequest)
		return
	}
	if req.Quantity < 1 || req.Quantity > maxTicketsPerPurchase {
		RespondError(c, fmt.Sprintf("quantity must be between 1 and %d", maxTicketsPerPurchase), http.StatusBadRequest)
		return
	}

	db, ok := database(c)
	if !ok {
		return
	}

	var match models.Match
	if err := db.Where("id = ? AND association_id = ?", req.MatchID, member.AssociationID).First(&match).Error; err != nil {
		RespondError(c, "match not found", http.StatusNotFound)
		return
	}
	now := time.Now()
	if match.Status != models.MATCH_STATUS_SCHEDULED || match.KickoffAt == nil || !match.KickoffAt.After(now) {
		RespondError(c, "tickets are not on sale for this match", http.StatusConflict)
		return
	}

	qty := int64(req.Quantity)
	tx := db.Begin()
	res := tx.Model(&models.Match{}).
		Where("id = ? AND tickets_sold + ? <= capacity", match.ID, qty).
		UpdateColumns(map[string]any{
			"tickets_sold": gorm.Expr("tickets_sold + ?", qty),
			"seats_issued": gorm.Expr("seats_issued + ?", qty),
		})
	if res.Error != nil {
		tx.Rollback()
		RespondError(c, res.Error.Error(), http.StatusBadRequest)
		return
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		RespondError(c, "not enough tickets available", http.StatusConflict)
		return
	}
	if err := tx.First(&match, match.ID).Error; err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	firstSeat := match.SeatsIssued - qty + 1
	tickets := make([]models.Ticket, 0, qty)
	for i := int64(0); i < qty; i++ {
		t := models.Ticket{
			MatchID:       match.ID,
			MemberID:      member.ID,
			AssociationID: member.AssociationID,
			Code:          uuid.NewString(),
			Seat:          seatLabel(firstSeat + i),
			PriceCents:    match.TicketPriceCents,
			Currency:      match.Currency,
			Status:        models.TICKET_STATUS_VALID,
		}
		if err := tx.Create(&t).Error; err != nil {
			tx.Rollback()
			RespondError(c, err.Error(), http.StatusBadRequest)
			return
		}
		tickets = append(tickets, t)
	}

	reference := fmt.Sprintf("match:%d", match.ID)
	if err := services.AwardPoints(tx, member.ID, conf.Loyalty.TicketPoints*qty, models.POINTS_REASON_TICKET, reference); err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	_, err := services.Notify(tx, member.ID, "Tickets confirmed",
		fmt.Sprintf("%d ticket(s) for %s vs %s.", qty, match.HomeTeam, match.AwayTeam),
		models.NOTIFICATION_CATEGORY_TICKET, map[string]string{"match_id": fmt.Sprint(match.ID)})
	if err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondCreated(c, gin.H{
		"tickets":     tickets,
		"total_cents": match.TicketPriceCents * qty,
		"currency":    match.Currency,
	})
}

// GET /api/tickets/me
func GetMyTickets(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	db, ok := database(c)
	if !ok {
		return
	}
	query := db.Preload("Match").Where("member_id = ?", member.ID)
	if status := strings.ToLower(strings.TrimSpace(c.Query("status"))); status != "" {
		query = query.Where("status = ?", status)
	}
	tickets := []models.Ticket{}
	if err := query.Order("id desc").Find(&tickets).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, gin.H{"tickets": tickets})
}

func findOwnTicket(c *gin.Context, member models.Member) (*models.Ticket, bool) {
	id, ok := ParamID(c, "id")
	if !ok {
		return nil, false
	}
	db, ok := database(c)
	if !ok {
		return nil, false
	}
	var ticket models.Ticket
	if err := db.Preload("Match").Where("id = ? AND member_id = ?", id, member.ID).First(&ticket).Error; err != nil {
		RespondError(c, "ticket not found", http.StatusNotFound)
		return nil, false
	}
	return &ticket, true
}

// GET /api/tickets/:id
func GetTicketByID(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	ticket, ok := findOwnTicket(c, member)
	if !ok {
		return
	}
	RespondSuccess(c, gin.H{"ticket": ticket})
}

// POST /api/tickets/:id/cancel
// Allowed before kickoff; returns the capacity and takes back the ticket points.
// The seat label itself is never reissued.
func CancelTicket(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	ticket, ok := findOwnTicket(c, member)
	if !ok {
		return
	}
	if ticket.Status != models.TICKET_STATUS_VALID {
		RespondError(c, "ticket is "+ticket.Status, http.StatusConflict)
		return
	}
	now := time.Now()
	if ticket.Match == nil || ticket.Match.KickoffAt == nil || !ticket.Match.KickoffAt.After(now) {
		RespondError(c, "match already started", http.StatusConflict)
		return
	}

	db, _ := database(c)
	tx := db.Begin()
	res := tx.Model(&models.Ticket{}).
		Where("id = ? AND status = ?", ticket.ID, models.TICKET_STATUS_VALID).
		UpdateColumn("status", models.TICKET_STATUS_CANCELLED)
	if res.Error != nil || res.RowsAffected == 0 {
		tx.Rollback()
		RespondError(c, "ticket already changed", http.StatusConflict)
		return
	}
	if err := tx.Model(&models.Match{}).
		Where("id = ? AND tickets_sold > 0", ticket.MatchID).
		UpdateColumn("tickets_sold", gorm.Expr("tickets_sold - 1")).Error; err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	reference := fmt.Sprintf("ticket:%d:cancel", ticket.ID)
	if _, err := services.RevokePoints(tx, member.ID, conf.Loyalty.TicketPoints, models.POINTS_REASON_TICKET, reference); err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	ticket.Status = models.TICKET_STATUS_CANCELLED
	RespondSuccess(c, gin.H{"ticket": ticket})
}

// POST /api/tickets/validate (admin)  {code}
// Gate scan: a valid ticket becomes used; a second scan is refused.
func ValidateTicket(c *gin.Context) {
	staff, ok := loggedMember(c)
	if !ok {
		return
	}
	var req struct {
		Code string `json:"code" form:"code"`
	}
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	req.Code = strings.TrimSpace(req.Code)
	if req.Code == "" {
		RespondError(c, "code is required", http.StatusBadRequest)
		return
	}

	db, ok := database(c)
	if !ok {
		return
	}

	var ticket models.Ticket
	if err := db.Where("code = ? AND association_id = ?", req.Code, staff.AssociationID).First(&ticket).Error; err != nil {
		RespondError(c, "ticket not found", http.StatusNotFound)
		return
	}

	switch ticket.Status {
	case models.TICKET_STATUS_CANCELLED:
		RespondError(c, "ticket cancelled", http.StatusGone)
		return
	case models.TICKET_STATUS_USED:
		c.JSON(http.StatusConflict, gin.H{"error": "ticket already used", "used_at": ticket.UsedAt})
		return
	}

	now := time.Now()
	res := db.Model(&models.Ticket{}).
		Where("id = ? AND status = ?", ticket.ID, models.TICKET_STATUS_VALID).
		Updates(map[string]any{
			"status":        models.TICKET_STATUS_USED,
			"used_at":       &now,
			"scanned_by_id": staff.ID,
		})
	if res.Error != nil {
		RespondError(c, res.Error.Error(), http.StatusInternalServerError)
		return
	}
	if res.RowsAffected == 0 {
		db.First(&ticket, ticket.ID)
		c.JSON(http.StatusConflict, gin.H{"error": "ticket already used", "used_at": ticket.UsedAt})
		return
	}

	ticket.Status = models.TICKET_STATUS_USED
	ticket.UsedAt = &now
	ticket.ScannedByID = staff.ID

	var match models.Match
	db.First(&match, ticket.MatchID)
	ticket.Match = &match

	RespondSuccess(c, gin.H{"status": "valid", "ticket": ticket})
}
