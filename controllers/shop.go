package controllers

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"fanhub/models"
	"fanhub/services"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

type productRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	PriceCents  *int64  `json:"price_cents"`
	Currency    *string `json:"currency"`
	Stock       *int64  `json:"stock"`
	ImageURL    *string `json:"image_url"`
	Category    *string `json:"category"`
	IsActive    *bool   `json:"is_active"`
}

func (r productRequest) apply(p *models.Product) string {
	if r.Name != nil {
		p.Name = strings.TrimSpace(*r.Name)
	}
	if r.Description != nil {
		p.Description = *r.Description
	}
	if r.PriceCents != nil {
		p.PriceCents = *r.PriceCents
	}
	if r.Currency != nil {
		p.Currency = strings.ToUpper(strings.TrimSpace(*r.Currency))
	}
	if r.Stock != nil {
		p.Stock = *r.Stock
	}
	if r.ImageURL != nil {
		p.ImageURL = strings.TrimSpace(*r.ImageURL)
	}
	if r.Category != nil {
		p.Category = strings.ToLower(strings.TrimSpace(*r.Category))
	}
	if p.Category == "" {
		p.Category = "general"
	}
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	}
	if missing := p.MissingFields(); missing != "" {
		return "missing field " + missing
	}
	if p.Stock < 0 {
		return "stock must not be negative"
	}
	return ""
}

// GET /api/shop/products?category=
func GetProducts(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	db, ok := database(c)
	if !ok {
		return
	}
	query := db.Where("association_id = ?", member.AssociationID)
	if !(member.IsStaff() && queryBool(c, "all")) {
		query = query.Where("is_active = ?", true)
	}
	if category := strings.ToLower(strings.TrimSpace(c.Query("category"))); category != "" {
		query = query.Where("category = ?", category)
	}
	products := []models.Product{}
	if err := query.Order("name asc").Find(&products).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, gin.H{"products": products})
}

func findAssociationProduct(c *gin.Context, member models.Member) (*models.Product, bool) {
	id, ok := ParamID(c, "id")
	if !ok {
		return nil, false
	}
	db, ok := database(c)
	if !ok {
		return nil, false
	}
	var product models.Product
	if err := db.Where("id = ? AND association_id = ?", id, member.AssociationID).First(&product).Error; err != nil {
		RespondError(c, "product not found", http.StatusNotFound)
		return nil, false
	}
	return &product, true
}

// GET /api/shop/products/:id
func GetProductByID(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	product, ok := findAssociationProduct(c, member)
	if !ok {
		return
	}
	if !product.IsActive && !member.IsStaff() {
		RespondError(c, "product not found", http.StatusNotFound)
		return
	}
	RespondSuccess(c, gin.H{"product": product})
}

// POST /api/shop/products (admin)
func CreateProduct(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	product := models.Product{
		AssociationID: member.AssociationID,
		Currency:      conf.Payments.DefaultCurrency,
		IsActive:      true,
	}
	if msg := req.apply(&product); msg != "" {
		RespondError(c, msg, http.StatusBadRequest)
		return
	}
	db, ok := database(c)
	if !ok {
		return
	}
	if err := createWithFlags(db, &product, map[string]bool{"is_active": product.IsActive}); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondCreated(c, gin.H{"product": product})
}

// PUT /api/shop/products/:id (admin)
func UpdateProduct(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	product, ok := findAssociationProduct(c, member)
	if !ok {
		return
	}
	if msg := req.apply(product); msg != "" {
		RespondError(c, msg, http.StatusBadRequest)
		return
	}
	db, _ := database(c)
	if err := db.Save(product).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, gin.H{"product": product})
}

// DELETE /api/shop/products/:id (admin). Products already ordered are deactivated.
func DeleteProduct(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	product, ok := findAssociationProduct(c, member)
	if !ok {
		return
	}
	db, _ := database(c)
	var ordered int64
	db.Model(&models.OrderItem{}).Where("product_id = ?", product.ID).Count(&ordered)
	if ordered > 0 {
		if err := db.Model(product).UpdateColumn("is_active", false).Error; err != nil {
			RespondError(c, err.Error(), http.StatusBadRequest)
			return
		}
		RespondSuccess(c, gin.H{"status": "deactivated"})
		return
	}
	if err := db.Delete(product).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, gin.H{"status": "deleted"})
}

type OrderItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type CreateOrderRequest struct {
	Items []OrderItemRequest `json:"items"`
}

// mergeItems sums quantities per product and rejects invalid lines.
func mergeItems(items []OrderItemRequest) ([]OrderItemRequest, string) {
	if len(items) == 0 {
		return nil, "items are required"
	}
	byProduct := map[int64]int64{}
	for _, it := range items {
		if it.ProductID <= 0 {
			return nil, "invalid product_id"
		}
		if it.Quantity <= 0 || it.Quantity > 100 {
			return nil, "quantity must be between 1 and 100"
		}
		byProduct[it.ProductID] += it.Quantity
	}
	out := make([]OrderItemRequest, 0, len(byProduct))
	for id, q := range byProduct {
		out = append(out, OrderItemRequest{ProductID: id, Quantity: q})
	}
	// stable lock order
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, ""
}

// POST /api/shop/orders  {items: [{product_id, quantity}]}
// Prices come from the catalogue; stock is decremented with conditional UPDATEs.
func CreateOrder(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	items, msg := mergeItems(req.Items)
	if msg != "" {
		RespondError(c, msg, http.StatusBadRequest)
		return
	}

	db, ok := database(c)
	if !ok {
		return
	}

	tx := db.Begin()
	order := models.Order{
		MemberID:      member.ID,
		AssociationID: member.AssociationID,
		Status:        models.ORDER_STATUS_PENDING,
	}
	var lines []models.OrderItem
	for _, it := range items {
		var product models.Product
		if err := tx.Where("id = ? AND association_id = ? AND is_active = ?", it.ProductID, member.AssociationID, true).
			First(&product).Error; err != nil {
			tx.Rollback()
			RespondError(c, fmt.Sprintf("product %d not available", it.ProductID), http.StatusBadRequest)
			return
		}
		if order.Currency == "" {
			order.Currency = product.Currency
		} else if order.Currency != product.Currency {
			tx.Rollback()
			RespondError(c, "products must share the same currency", http.StatusBadRequest)
			return
		}

		res := tx.Model(&models.Product{}).
			Where("id = ? AND stock >= ?", product.ID, it.Quantity).
			UpdateColumn("stock", gorm.Expr("stock - ?", it.Quantity))
		if res.Error != nil {
			tx.Rollback()
			RespondError(c, res.Error.Error(), http.StatusBadRequest)
			return
		}
		if res.RowsAffected == 0 {
			tx.Rollback()
			RespondError(c, fmt.Sprintf("not enough stock for %s", product.Name), http.StatusConflict)
			return
		}

		order.TotalCents += product.PriceCents * it.Quantity
		lines = append(lines, models.OrderItem{
			ProductID:      product.ID,
			ProductName:    product.Name,
			Quantity:       it.Quantity,
			UnitPriceCents: product.PriceCents,
		})
	}
	order.PointsEarned = services.PointsForAmount(order.TotalCents)

	if err := tx.Create(&order).Error; err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	for i := range lines {
		lines[i].OrderID = order.ID
		if err := tx.Create(&lines[i]).Error; err != nil {
			tx.Rollback()
			RespondError(c, err.Error(), http.StatusBadRequest)
			return
		}
	}
	order.Items = lines

	reference := fmt.Sprintf("order:%d", order.ID)
	if err := services.AwardPoints(tx, member.ID, order.PointsEarned, models.POINTS_REASON_ORDER, reference); err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondCreated(c, gin.H{"order": order})
}

// GET /api/shop/orders/me
func GetMyOrders(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	db, ok := database(c)
	if !ok {
		return
	}
	orders := []models.Order{}
	if err := db.Preload("Items").Where("member_id = ?", member.ID).Order("id desc").Find(&orders).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, gin.H{"orders": orders})
}

// GET /api/admin/orders?status=&limit=&offset=
func GetOrders(c *gin.Context) {
	admin, ok := loggedMember(c)
	if !ok {
		return
	}
	db, ok := database(c)
	if !ok {
		return
	}
	limit, offset := pagination(c, 50, 200)
	query := db.Model(&models.Order{}).Where("association_id = ?", admin.AssociationID)
	if status := strings.ToLower(strings.TrimSpace(c.Query("status"))); status != "" {
		query = query.Where("status = ?", status)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	orders := []models.Order{}
	if err := query.Preload("Items").Order("id desc").Limit(limit).Offset(offset).Find(&orders).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, gin.H{"total": total, "limit": limit, "offset": offset, "orders": orders})
}

// PUT /api/admin/orders/:id/status  {status}
// Cancelling restores stock and takes back the order points.
func UpdateOrderStatus(c *gin.Context) {
	admin, ok := loggedMember(c)
	if !ok {
		return
	}
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	req.Status = strings.ToLower(strings.TrimSpace(req.Status))
	if !models.IsValidOrderStatus(req.Status) {
		RespondError(c, "invalid status", http.StatusBadRequest)
		return
	}

	db, ok := database(c)
	if !ok {
		return
	}
	var order models.Order
	if err := db.Preload("Items").Where("id = ? AND association_id = ?", id, admin.AssociationID).First(&order).Error; err != nil {
		RespondError(c, "order not found", http.StatusNotFound)
		return
	}
	if order.Status == models.ORDER_STATUS_CANCELLED {
		RespondError(c, "order is cancelled", http.StatusConflict)
		return
	}
	if order.Status == req.Status {
		RespondSuccess(c, gin.H{"order": order})
		return
	}

	tx := db.Begin()
	// The status seen above must still hold, so a cancel restocks at most once.
	res := tx.Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, order.Status).
		UpdateColumn("status", req.Status)
	if res.Error != nil {
		tx.Rollback()
		RespondError(c, res.Error.Error(), http.StatusBadRequest)
		return
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		RespondError(c, "order already changed", http.StatusConflict)
		return
	}
	if req.Status == models.ORDER_STATUS_CANCELLED {
		for _, it := range order.Items {
			if err := tx.Model(&models.Product{}).Where("id = ?", it.ProductID).
				UpdateColumn("stock", gorm.Expr("stock + ?", it.Quantity)).Error; err != nil {
				tx.Rollback()
				RespondError(c, err.Error(), http.StatusBadRequest)
				return
			}
		}
		reference := fmt.Sprintf("order:%d:cancel", order.ID)
		if _, err := services.RevokePoints(tx, order.MemberID, order.PointsEarned, models.POINTS_REASON_ORDER, reference); err != nil {
			tx.Rollback()
			RespondError(c, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	order.Status = req.Status
	RespondSuccess(c, gin.H{"order": order})
}
