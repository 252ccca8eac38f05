package controllers

import (
	"net/http"
	"strings"

	"fanhub/models"

	"github.com/gin-gonic/gin"
)

type associationRequest struct {
	Name         *string `json:"name"`
	Slug         *string `json:"slug"`
	ShortName    *string `json:"short_name"`
	LogoURL      *string `json:"logo_url"`
	PrimaryColor *string `json:"primary_color"`
	SecondColor  *string `json:"second_color"`
	Country      *string `json:"country"`
	City         *string `json:"city"`
	Stadium      *string `json:"stadium"`
	Founded      *int    `json:"founded"`
	Website      *string `json:"website"`
	ContactEmail *string `json:"contact_email"`
	IsActive     *bool   `json:"is_active"`
}

// apply copies present fields; branding only unless full is set (superadmin).
func (r associationRequest) apply(a *models.Association, full bool) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&a.Name, r.Name)
	set(&a.ShortName, r.ShortName)
	set(&a.LogoURL, r.LogoURL)
	set(&a.PrimaryColor, r.PrimaryColor)
	set(&a.SecondColor, r.SecondColor)
	set(&a.Country, r.Country)
	set(&a.City, r.City)
	set(&a.Stadium, r.Stadium)
	set(&a.Website, r.Website)
	set(&a.ContactEmail, r.ContactEmail)
	if r.Founded != nil {
		a.Founded = *r.Founded
	}
	if full {
		if r.Slug != nil {
			a.Slug = models.Slugify(*r.Slug)
		}
		if r.IsActive != nil {
			a.IsActive = *r.IsActive
		}
	}
}

// GET /api/associations (public)
func GetAssociations(c *gin.Context) {
	db, ok := database(c)
	if !ok {
		return
	}
	var associations []models.Association
	if err := db.Where("is_active = ?", true).Order("name asc").Find(&associations).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, gin.H{"associations": associations})
}

// GET /api/associations/me
func GetMyAssociation(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	db, ok := database(c)
	if !ok {
		return
	}
	var association models.Association
	if err := db.First(&association, member.AssociationID).Error; err != nil {
		RespondError(c, "association not found", http.StatusNotFound)
		return
	}

	var members int64
	db.Model(&models.Member{}).Where("association_id = ?", association.ID).Count(&members)

	RespondSuccess(c, gin.H{"association": association, "members_count": members})
}

// PUT /api/associations/me (admin)
func UpdateMyAssociation(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	var req associationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	db, ok := database(c)
	if !ok {
		return
	}

	var association models.Association
	if err := db.First(&association, member.AssociationID).Error; err != nil {
		RespondError(c, "association not found", http.StatusNotFound)
		return
	}
	req.apply(&association, false)
	if missing := association.MissingFields(); missing != "" {
		RespondError(c, "missing field "+missing, http.StatusBadRequest)
		return
	}
	if err := db.Save(&association).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, gin.H{"association": association})
}

// POST /api/associations (superadmin)
func CreateAssociation(c *gin.Context) {
	var req associationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	association := models.Association{IsActive: true}
	req.apply(&association, true)
	if missing := association.MissingFields(); missing != "" {
		RespondError(c, "missing field "+missing, http.StatusBadRequest)
		return
	}
	if association.Slug == "" {
		association.Slug = models.Slugify(association.Name)
	}

	db, ok := database(c)
	if !ok {
		return
	}
	var count int64
	db.Model(&models.Association{}).Where("slug = ?", association.Slug).Count(&count)
	if count > 0 {
		RespondError(c, "slug already in use", http.StatusConflict)
		return
	}
	if err := createWithFlags(db, &association, map[string]bool{"is_active": association.IsActive}); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondCreated(c, gin.H{"association": association})
}

// PUT /api/associations/:id (superadmin)
func UpdateAssociation(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	var req associationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	db, ok := database(c)
	if !ok {
		return
	}

	var association models.Association
	if err := db.First(&association, id).Error; err != nil {
		RespondError(c, "association not found", http.StatusNotFound)
		return
	}
	req.apply(&association, true)
	if missing := association.MissingFields(); missing != "" {
		RespondError(c, "missing field "+missing, http.StatusBadRequest)
		return
	}
	if association.Slug == "" {
		association.Slug = models.Slugify(association.Name)
	}
	var count int64
	db.Model(&models.Association{}).Where("slug = ? AND id <> ?", association.Slug, association.ID).Count(&count)
	if count > 0 {
		RespondError(c, "slug already in use", http.StatusConflict)
		return
	}
	if err := db.Save(&association).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, gin.H{"association": association})
}

// DELETE /api/associations/:id (superadmin). Refused while members exist.
func DeleteAssociation(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	db, ok := database(c)
	if !ok {
		return
	}
	var members int64
	if err := db.Model(&models.Member{}).Where("association_id = ?", id).Count(&members).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if members > 0 {
		RespondError(c, "association still has members", http.StatusConflict)
		return
	}
	res := db.Delete(&models.Association{}, "id = ?", id)
	if res.Error != nil {
		RespondError(c, res.Error.Error(), http.StatusBadRequest)
		return
	}
	if res.RowsAffected == 0 {
		RespondError(c, "association not found", http.StatusNotFound)
		return
	}
	RespondSuccess(c, gin.H{"status": "deleted"})
}
