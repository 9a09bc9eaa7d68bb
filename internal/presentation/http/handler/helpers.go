package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sanjeevani/pos-api/internal/domain/enum"
)

// GetUserID extracts the operator ID from the Gin context
func GetUserID(c *gin.Context) (int64, bool) {
	userIDVal, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	userID, ok := userIDVal.(int64)
	return userID, ok
}

// GetUserRole extracts the operator role from the Gin context
func GetUserRole(c *gin.Context) enum.UserRole {
	roleVal, exists := c.Get("user_role")
	if !exists {
		return ""
	}
	role, _ := roleVal.(enum.UserRole)
	return role
}

// IsAdmin checks if the current operator is an admin
func IsAdmin(c *gin.Context) bool {
	return GetUserRole(c) == enum.RoleAdmin
}
