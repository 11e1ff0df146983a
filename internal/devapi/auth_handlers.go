package devapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/boxoffice-dev/boxoffice/internal/session"
)

// LoginRequest represents a login request. Identifier is a username or an
// email address.
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// LoginResponse represents a login response
type LoginResponse struct {
	Token string              `json:"token"`
	User  session.UserProfile `json:"user"`
}

func profileOf(u *User) session.UserProfile {
	return session.UserProfile{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Roles:       u.RoleList(),
		DisplayName: u.DisplayName,
	}
}

func (s *Server) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	identifier := strings.ToLower(strings.TrimSpace(req.Identifier))

	var user User
	err := s.db.Where("lower(username) = ? OR lower(email) = ?", identifier, identifier).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error().Err(err).Msg("Failed to look up user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if err != nil || !CheckPassword(user.PasswordHash, req.Password) {
		s.logger.Info().Str("identifier", identifier).Msg("Invalid login attempt")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, _, err := s.tokens.Generate(&user)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	s.logger.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("User logged in")

	c.JSON(http.StatusOK, LoginResponse{Token: token, User: profileOf(&user)})
}

// logout revokes the presented token for the rest of its lifetime
func (s *Server) logout(c *gin.Context) {
	p, _ := GetPrincipal(c)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("expires_at < ?", time.Now()).Delete(&RevokedToken{}).Error; err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&RevokedToken{TokenID: p.TokenID, ExpiresAt: p.ExpiresAt}).Error
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to revoke token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	s.logger.Info().Str("user_id", p.User.ID).Msg("User logged out")
	c.Status(http.StatusNoContent)
}

func (s *Server) getCurrentUser(c *gin.Context) {
	p, _ := GetPrincipal(c)
	c.JSON(http.StatusOK, profileOf(p.User))
}
