package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	dbpkg "fanhub/db"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

func ParamID(c *gin.Context, name string) (int64, bool) {
	v := c.Param(name)
	if v == "" {
		RespondError(c, name+" is required", http.StatusBadRequest)
		return 0, false
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		RespondError(c, "invalid "+name, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// database returns the request database or answers 500.
func database(c *gin.Context) (*gorm.DB, bool) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "database not configured", http.StatusInternalServerError)
		return nil, false
	}
	return db, true
}

func queryInt(c *gin.Context, key string, def int) int {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return def
	}
	var n int
	_, err := fmt.Sscanf(v, "%d", &n)
	if err != nil {
		return def
	}
	return n
}

func queryBool(c *gin.Context, key string) bool {
	b, _ := strconv.ParseBool(strings.TrimSpace(c.Query(key)))
	return b
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// pagination reads limit/offset with the given default and max limit.
func pagination(c *gin.Context, def, max int) (int, int) {
	limit := clampInt(queryInt(c, "limit", def), 1, max)
	offset := clampInt(queryInt(c, "offset", 0), 0, 1_000_000)
	return limit, offset
}

func likePattern(q string) string {
	return "%" + strings.ToLower(q) + "%"
}

func parseDateRange(c *gin.Context) (time.Time, time.Time, bool) {
	now := time.Now()
	from := now.AddDate(0, 0, -6)
	to := now

	fromStr := strings.TrimSpace(c.Query("from"))
	toStr := strings.TrimSpace(c.Query("to"))

	var err error
	if fromStr != "" {
		from, err = time.ParseInLocation("2006-01-02", fromStr, time.Local)
		if err != nil {
			RespondError(c, "invalid from (use YYYY-MM-DD)", http.StatusBadRequest)
			return time.Time{}, time.Time{}, false
		}
	}
	if toStr != "" {
		to, err = time.ParseInLocation("2006-01-02", toStr, time.Local)
		if err != nil {
			RespondError(c, "invalid to (use YYYY-MM-DD)", http.StatusBadRequest)
			return time.Time{}, time.Time{}, false
		}
	}
	if from.After(to) {
		RespondError(c, "from must not be after to", http.StatusBadRequest)
		return time.Time{}, time.Time{}, false
	}
	if to.Sub(from) > 366*24*time.Hour {
		RespondError(c, "range too large (max 366 days)", http.StatusBadRequest)
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

type dailyCount struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

// fillDailySeries returns one entry per day in [from, to], zero when rows has no value.
func fillDailySeries(from time.Time, to time.Time, rows []dailyCount) []dailyCount {
	m := map[string]int64{}
	for _, r := range rows {
		if r.Day == "" {
			continue
		}
		m[r.Day] = r.Count
	}

	out := []dailyCount{}
	cur := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.Local)
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.Local)
	for !cur.After(end) {
		key := cur.Format("2006-01-02")
		out = append(out, dailyCount{Day: key, Count: m[key]})
		cur = cur.AddDate(0, 0, 1)
	}
	return out
}

// dayExpr renders column as YYYY-MM-DD for the current dialect.
func dayExpr(db *gorm.DB, column string) string {
	dialect := strings.ToLower(db.Dialect().GetName())
	switch {
	case strings.Contains(dialect, "sqlite"):
		return fmt.Sprintf("substr(%s, 1, 10)", column)
	case strings.Contains(dialect, "postgres"):
		return fmt.Sprintf("to_char(date_trunc('day', %s), 'YYYY-MM-DD')", column)
	}
	return fmt.Sprintf("date(%s)", column)
}

// tryDatabase is database without an error response, for anti-enumeration endpoints.
func tryDatabase(c *gin.Context) *gorm.DB {
	return dbpkg.DBInstance(c)
}

func gormNow() *time.Time {
	now := time.Now()
	return &now
}

// createWithFlags inserts value and then stores every flag requested as false.
// gorm skips zero values of columns with a default and reloads the default after insert,
// so the requested values are passed in rather than read back from value.
func createWithFlags(db *gorm.DB, value any, flags map[string]bool) error {
	if err := db.Create(value).Error; err != nil {
		return err
	}
	for column, v := range flags {
		if v {
			continue
		}
		if err := db.Model(value).UpdateColumn(column, false).Error; err != nil {
			return err
		}
	}
	return nil
}
