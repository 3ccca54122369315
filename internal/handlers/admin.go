package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// AdminListUsers pages through the registered accounts. Password hashes
// never leave the server.
func (h HandlerSet) AdminListUsers(c *gin.Context) {
	limit := 50
	page := 1

	if perPage := c.Query("perPage"); perPage != "" {
		if v, err := strconv.Atoi(perPage); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}
	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 1 {
			page = v
		}
	}

	users, err := h.auth.Users(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	total := len(users)
	// Compare pages before multiplying so a huge page cannot overflow.
	offset := total
	if page-1 <= total/limit {
		offset = min((page-1)*limit, total)
	}
	users = users[offset:min(offset+limit, total)]

	items := make([]map[string]interface{}, 0, len(users))
	for _, u := range users {
		items = append(items, map[string]interface{}{
			"id":        u.ID,
			"firstName": u.FirstName,
			"lastName":  u.LastName,
			"email":     u.Email,
			"role":      u.Role,
			"createdAt": u.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": total,
	})
}

// AdminActivity returns the recent catalog events, newest first.
func (h HandlerSet) AdminActivity(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"items": h.activity.Recent(),
	})
}
