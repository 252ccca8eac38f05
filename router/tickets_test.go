package router

import (
	"net/http"
	"testing"
	"time"

	"fanhub/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type purchaseResponse struct {
	Tickets    []models.Ticket `json:"tickets"`
	TotalCents int64           `json:"total_cents"`
	Currency   string          `json:"currency"`
}

func TestTicketPurchaseAndGateScan(t *testing.T) {
	s := newTestServer(t)
	gate := s.staff("gate@porto.pt")
	fan := s.register("fan@porto.pt")
	match := s.seedMatch(time.Now().Add(48*time.Hour), 3)

	w := s.do(http.MethodPost, "/api/tickets", fan.AccessToken, gin.H{"match_id": match.ID, "quantity": 2})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var bought purchaseResponse
	decode(t, w, &bought)
	require.Len(t, bought.Tickets, 2)
	assert.Equal(t, int64(7000), bought.TotalCents)
	assert.Equal(t, "EUR", bought.Currency)
	assert.Equal(t, "GA-00001", bought.Tickets[0].Seat)
	assert.Equal(t, "GA-00002", bought.Tickets[1].Seat)
	assert.NotEqual(t, bought.Tickets[0].Code, bought.Tickets[1].Code)
	assert.Equal(t, int64(20), s.reloadMember(fan.Member.ID).Points)

	t.Run("capacity is enforced", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/tickets", fan.AccessToken, gin.H{"match_id": match.ID, "quantity": 2})
		assert.Equal(t, http.StatusConflict, w.Code)

		var reloaded models.Match
		require.NoError(t, s.db.First(&reloaded, match.ID).Error)
		assert.Equal(t, int64(2), reloaded.TicketsSold)
	})

	t.Run("quantity bounds", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/tickets", fan.AccessToken, gin.H{"match_id": match.ID, "quantity": 11})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		w = s.do(http.MethodPost, "/api/tickets", fan.AccessToken, gin.H{"match_id": 9999})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("past matches are not on sale", func(t *testing.T) {
		past := s.seedMatch(time.Now().Add(-time.Hour), 100)
		w := s.do(http.MethodPost, "/api/tickets", fan.AccessToken, gin.H{"match_id": past.ID})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("scan once", func(t *testing.T) {
		code := bought.Tickets[0].Code

		w := s.do(http.MethodPost, "/api/tickets/validate", fan.AccessToken, gin.H{"code": code})
		assert.Equal(t, http.StatusForbidden, w.Code, "members cannot scan")

		w = s.do(http.MethodPost, "/api/tickets/validate", gate.AccessToken, gin.H{"code": code})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var scanned struct {
			Status string        `json:"status"`
			Ticket models.Ticket `json:"ticket"`
		}
		decode(t, w, &scanned)
		assert.Equal(t, "valid", scanned.Status)
		assert.Equal(t, models.TICKET_STATUS_USED, scanned.Ticket.Status)
		assert.Equal(t, gate.Member.ID, scanned.Ticket.ScannedByID)
		require.NotNil(t, scanned.Ticket.Match)
		assert.Equal(t, "Benfica", scanned.Ticket.Match.AwayTeam)

		w = s.do(http.MethodPost, "/api/tickets/validate", gate.AccessToken, gin.H{"code": code})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "used_at")

		w = s.do(http.MethodPost, "/api/tickets/validate", gate.AccessToken, gin.H{"code": "unknown"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("cancel frees the seat", func(t *testing.T) {
		second := bought.Tickets[1]
		path := "/api/tickets/" + itoa(second.ID)

		other := s.register("other@porto.pt")
		assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, path, other.AccessToken, nil).Code)

		w := s.do(http.MethodPost, path+"/cancel", fan.AccessToken, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, int64(10), s.reloadMember(fan.Member.ID).Points)

		var reloaded models.Match
		require.NoError(t, s.db.First(&reloaded, match.ID).Error)
		assert.Equal(t, int64(1), reloaded.TicketsSold)

		w = s.do(http.MethodPost, path+"/cancel", fan.AccessToken, nil)
		assert.Equal(t, http.StatusConflict, w.Code)

		w = s.do(http.MethodPost, "/api/tickets/validate", gate.AccessToken, gin.H{"code": second.Code})
		assert.Equal(t, http.StatusGone, w.Code)

		used := "/api/tickets/" + itoa(bought.Tickets[0].ID) + "/cancel"
		assert.Equal(t, http.StatusConflict, s.do(http.MethodPost, used, fan.AccessToken, nil).Code)
	})

	t.Run("my tickets", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/tickets/me", fan.AccessToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var mine struct {
			Tickets []models.Ticket `json:"tickets"`
		}
		decode(t, w, &mine)
		assert.Len(t, mine.Tickets, 2)
	})
}

func TestCancelledSeatIsNotReissued(t *testing.T) {
	s := newTestServer(t)
	fan := s.register("fan@porto.pt")
	match := s.seedMatch(time.Now().Add(48*time.Hour), 3)

	w := s.do(http.MethodPost, "/api/tickets", fan.AccessToken, gin.H{"match_id": match.ID, "quantity": 2})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var first purchaseResponse
	decode(t, w, &first)
	require.Len(t, first.Tickets, 2)

	w = s.do(http.MethodPost, "/api/tickets/"+itoa(first.Tickets[0].ID)+"/cancel", fan.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/tickets", fan.AccessToken, gin.H{"match_id": match.ID, "quantity": 2})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var second purchaseResponse
	decode(t, w, &second)
	require.Len(t, second.Tickets, 2)
	assert.Equal(t, "GA-00003", second.Tickets[0].Seat)
	assert.Equal(t, "GA-00004", second.Tickets[1].Seat)

	var valid []models.Ticket
	require.NoError(t, s.db.Where("match_id = ? AND status = ?", match.ID, models.TICKET_STATUS_VALID).Find(&valid).Error)
	require.Len(t, valid, 3)
	seats := map[string]bool{}
	for _, ticket := range valid {
		assert.False(t, seats[ticket.Seat], "seat %s issued twice", ticket.Seat)
		seats[ticket.Seat] = true
	}

	var reloaded models.Match
	require.NoError(t, s.db.First(&reloaded, match.ID).Error)
	assert.Equal(t, int64(3), reloaded.TicketsSold)
	assert.Equal(t, int64(4), reloaded.SeatsIssued)
}
