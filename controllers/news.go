package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"fanhub/models"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

type newsRequest struct {
	Title     *string `json:"title"`
	Summary   *string `json:"summary"`
	Body      *string `json:"body"`
	ImageURL  *string `json:"image_url"`
	Category  *string `json:"category"`
	Published *bool   `json:"published"`
}

func (r newsRequest) apply(article *models.NewsArticle, now time.Time) {
	if r.Title != nil {
		article.Title = strings.TrimSpace(*r.Title)
		article.Slug = models.Slugify(article.Title)
	}
	if r.Summary != nil {
		article.Summary = *r.Summary
	}
	if r.Body != nil {
		article.Body = *r.Body
	}
	if r.ImageURL != nil {
		article.ImageURL = strings.TrimSpace(*r.ImageURL)
	}
	if r.Category != nil {
		article.Category = strings.ToLower(strings.TrimSpace(*r.Category))
	}
	if article.Category == "" {
		article.Category = "general"
	}
	if r.Published != nil {
		setPublished(article, *r.Published, now)
	}
}

func setPublished(article *models.NewsArticle, published bool, now time.Time) {
	article.Published = published
	if published && article.PublishedAt == nil {
		article.PublishedAt = &now
	}
	if !published {
		article.PublishedAt = nil
	}
}

// attachCommentCounts fills CommentsCount for the listed articles.
func attachCommentCounts(db *gorm.DB, articles []models.NewsArticle) {
	if len(articles) == 0 {
		return
	}
	ids := make([]int64, 0, len(articles))
	for _, a := range articles {
		ids = append(ids, a.ID)
	}
	var rows []struct {
		NewsID int64
		Count  int64
	}
	if err := db.Model(&models.Comment{}).
		Select("news_id, count(*) as count").
		Where("news_id IN (?)", ids).
		Group("news_id").
		Scan(&rows).Error; err != nil {
		return
	}
	counts := map[int64]int64{}
	for _, r := range rows {
		counts[r.NewsID] = r.Count
	}
	for i := range articles {
		articles[i].CommentsCount = counts[articles[i].ID]
	}
}

// GET /api/news
// Query params: q (title/summary), category, limit (default 20, max 100), offset.
// Staff see drafts too with ?drafts=true.
func GetNews(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	db, ok := database(c)
	if !ok {
		return
	}

	limit, offset := pagination(c, 20, 100)
	query := db.Model(&models.NewsArticle{}).Where("association_id = ?", member.AssociationID)
	if !(member.IsStaff() && queryBool(c, "drafts")) {
		query = query.Where("published = ?", true)
	}
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		like := likePattern(q)
		query = query.Where("lower(title) LIKE ? OR lower(summary) LIKE ?", like, like)
	}
	if category := strings.ToLower(strings.TrimSpace(c.Query("category"))); category != "" {
		query = query.Where("category = ?", category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	articles := []models.NewsArticle{}
	if err := query.Order("published_at desc, id desc").Limit(limit).Offset(offset).Find(&articles).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	attachCommentCounts(db, articles)

	RespondSuccess(c, gin.H{
		"total":  total,
		"limit":  limit,
		"offset": offset,
		"news":   articles,
	})
}

func findAssociationArticle(c *gin.Context, member models.Member) (*models.NewsArticle, bool) {
	id, ok := ParamID(c, "id")
	if !ok {
		return nil, false
	}
	db, ok := database(c)
	if !ok {
		return nil, false
	}
	var article models.NewsArticle
	if err := db.Where("id = ? AND association_id = ?", id, member.AssociationID).First(&article).Error; err != nil {
		RespondError(c, "news not found", http.StatusNotFound)
		return nil, false
	}
	return &article, true
}

// GET /api/news/:id
func GetNewsByID(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	article, ok := findAssociationArticle(c, member)
	if !ok {
		return
	}
	if !article.Published && !member.IsStaff() {
		RespondError(c, "news not found", http.StatusNotFound)
		return
	}

	db, _ := database(c)
	if err := db.Model(article).UpdateColumn("views", gorm.Expr("views + 1")).Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	article.Views++

	list := []models.NewsArticle{*article}
	attachCommentCounts(db, list)
	RespondSuccess(c, gin.H{"news": list[0]})
}

// POST /api/news (admin)
func CreateNews(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	var req newsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	article := models.NewsArticle{AssociationID: member.AssociationID, AuthorID: member.ID}
	req.apply(&article, time.Now())
	if missing := article.MissingFields(); missing != "" {
		RespondError(c, "missing field "+missing, http.StatusBadRequest)
		return
	}

	db, ok := database(c)
	if !ok {
		return
	}
	if err := db.Create(&article).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondCreated(c, gin.H{"news": article})
}

// PUT /api/news/:id (admin)
func UpdateNews(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	var req newsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	article, ok := findAssociationArticle(c, member)
	if !ok {
		return
	}
	req.apply(article, time.Now())
	if missing := article.MissingFields(); missing != "" {
		RespondError(c, "missing field "+missing, http.StatusBadRequest)
		return
	}

	db, _ := database(c)
	if err := db.Save(article).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, gin.H{"news": article})
}

// POST /api/news/:id/publish (admin)
// Publishing notifies every active member of the association.
func PublishNews(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	article, ok := findAssociationArticle(c, member)
	if !ok {
		return
	}
	if article.Published {
		RespondSuccess(c, gin.H{"news": article, "notified": 0})
		return
	}

	db, _ := database(c)
	setPublished(article, true, time.Now())

	tx := db.Begin()
	if err := tx.Save(article).Error; err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	notified, err := broadcast(tx, member.AssociationID, article.Title, article.Summary,
		models.NOTIFICATION_CATEGORY_NEWS, map[string]string{"news_id": fmt.Sprint(article.ID)})
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
	RespondSuccess(c, gin.H{"news": article, "notified": notified})
}

// DELETE /api/news/:id (admin)
func DeleteNews(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	article, ok := findAssociationArticle(c, member)
	if !ok {
		return
	}

	db, _ := database(c)
	tx := db.Begin()
	if err := tx.Where("news_id = ?", article.ID).Delete(&models.Comment{}).Error; err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if err := tx.Delete(article).Error; err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, gin.H{"status": "deleted"})
}
