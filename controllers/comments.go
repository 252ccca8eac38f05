package controllers

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"fanhub/models"

	"github.com/gin-gonic/gin"
)

type CommentRequest struct {
	NewsID int64  `json:"news_id" form:"news_id"`
	Body   string `json:"body" form:"body"`
}

// publishedArticle loads a published article of the member's association.
func publishedArticle(c *gin.Context, member models.Member, newsID int64) (*models.NewsArticle, bool) {
	db, ok := database(c)
	if !ok {
		return nil, false
	}
	var article models.NewsArticle
	err := db.Where("id = ? AND association_id = ? AND published = ?", newsID, member.AssociationID, true).
		First(&article).Error
	if err != nil {
		RespondError(c, "news not found", http.StatusNotFound)
		return nil, false
	}
	return &article, true
}

// GET /api/comments?news_id=
func GetComments(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	newsID := int64(queryInt(c, "news_id", 0))
	if newsID <= 0 {
		RespondError(c, "news_id is required", http.StatusBadRequest)
		return
	}
	if _, ok := publishedArticle(c, member, newsID); !ok {
		return
	}

	db, _ := database(c)
	limit, offset := pagination(c, 100, 500)
	comments := []models.Comment{}
	if err := db.Where("news_id = ?", newsID).Order("id asc").Limit(limit).Offset(offset).Find(&comments).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, gin.H{"comments": comments})
}

// POST /api/comments  {news_id, body}
func CreateComment(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	var req CommentRequest
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	req.Body = strings.TrimSpace(req.Body)
	if req.NewsID <= 0 {
		RespondError(c, "news_id is required", http.StatusBadRequest)
		return
	}
	if req.Body == "" {
		RespondError(c, "body is required", http.StatusBadRequest)
		return
	}
	if utf8.RuneCountInString(req.Body) > models.COMMENT_MAX_LEN {
		RespondError(c, "body is too long", http.StatusBadRequest)
		return
	}
	if _, ok := publishedArticle(c, member, req.NewsID); !ok {
		return
	}

	comment := models.Comment{
		NewsID:     req.NewsID,
		MemberID:   member.ID,
		MemberName: member.Name,
		Body:       req.Body,
	}
	db, _ := database(c)
	if err := db.Create(&comment).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondCreated(c, gin.H{"comment": comment})
}

// DELETE /api/comments/:id (author or staff of the article's association)
func DeleteComment(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	db, ok := database(c)
	if !ok {
		return
	}

	var comment models.Comment
	if err := db.First(&comment, id).Error; err != nil {
		RespondError(c, "comment not found", http.StatusNotFound)
		return
	}
	var article models.NewsArticle
	if err := db.Where("id = ? AND association_id = ?", comment.NewsID, member.AssociationID).First(&article).Error; err != nil {
		RespondError(c, "comment not found", http.StatusNotFound)
		return
	}
	if comment.MemberID != member.ID && !member.IsStaff() {
		RespondError(c, "not allowed", http.StatusForbidden)
		return
	}

	if err := db.Delete(&comment).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, gin.H{"status": "deleted"})
}
