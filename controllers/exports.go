package controllers

import (
	"fmt"
	"net/http"
	"time"

	"fanhub/models"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// buildWorkbook writes a single sheet with a bold header row.
func buildWorkbook(sheet string, header []any, rows [][]any) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, err
	}

	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		f.Close()
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(sheet, "A1", lastHeader, bold); err != nil {
		f.Close()
		return nil, err
	}

	for i := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

func sendWorkbook(c *gin.Context, filename string, f *excelize.File) {
	defer f.Close()
	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		_ = c.Error(err)
	}
}

// GET /api/admin/exports/subscriptions.xlsx
func ExportSubscriptions(c *gin.Context) {
	admin, ok := loggedMember(c)
	if !ok {
		return
	}
	db, ok := database(c)
	if !ok {
		return
	}

	var subs []models.Subscription
	if err := db.Where("association_id = ?", admin.AssociationID).Order("id asc").Find(&subs).Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	memberIDs := make([]int64, 0, len(subs))
	for _, s := range subs {
		memberIDs = append(memberIDs, s.MemberID)
	}
	emails := map[int64]string{}
	if len(memberIDs) > 0 {
		var members []models.Member
		if err := db.Select("id, email").Where("id IN (?)", memberIDs).Find(&members).Error; err != nil {
			RespondError(c, err.Error(), http.StatusInternalServerError)
			return
		}
		for _, m := range members {
			emails[m.ID] = m.Email
		}
	}

	header := []any{"ID", "Member ID", "Email", "Plan", "Interval", "Amount", "Currency", "Status", "Start", "End", "Auto renew", "Payment type", "Created"}
	rows := make([][]any, 0, len(subs))
	for _, s := range subs {
		rows = append(rows, []any{
			s.ID, s.MemberID, emails[s.MemberID], s.PlanName, s.Interval,
			float64(s.Amount) / 100, s.Currency, s.Status,
			formatTime(s.StartDate), formatTime(s.EndDate), s.AutoRenew, s.PaymentType,
			formatTime(s.CreatedAt),
		})
	}

	f, err := buildWorkbook("Subscriptions", header, rows)
	if err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	sendWorkbook(c, "subscriptions.xlsx", f)
}

// GET /api/admin/exports/members.xlsx
func ExportMembers(c *gin.Context) {
	admin, ok := loggedMember(c)
	if !ok {
		return
	}
	db, ok := database(c)
	if !ok {
		return
	}

	var members []models.Member
	if err := db.Where("association_id = ?", admin.AssociationID).Order("id asc").Find(&members).Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	header := []any{"ID", "Membership number", "Name", "Email", "Phone", "City", "Country", "Tier", "Status", "Points", "Created"}
	rows := make([][]any, 0, len(members))
	for _, m := range members {
		rows = append(rows, []any{
			m.ID, m.MembershipNumber, m.Name, m.Email, m.Phone, m.City, m.Country,
			m.Tier, memberStatusLabel(m.Status), m.Points, formatTime(m.CreatedAt),
		})
	}

	f, err := buildWorkbook("Members", header, rows)
	if err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	sendWorkbook(c, "members.xlsx", f)
}

func memberStatusLabel(status int) string {
	switch status {
	case models.MEMBER_STATUS_AVAILABLE:
		return "active"
	case models.MEMBER_STATUS_PENDING:
		return "pending"
	case models.MEMBER_STATUS_BLOCKED:
		return "blocked"
	}
	return "unknown"
}
