package devapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UserDetail represents user information returned to administrators
type UserDetail struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateUserRequest represents a request to create a new user
type CreateUserRequest struct {
	Username    string   `json:"username" validate:"required,min=3,max=32,alphanumdash"`
	Email       string   `json:"email" validate:"required,email"`
	DisplayName string   `json:"display_name" validate:"max=64"`
	Password    string   `json:"password" validate:"required,min=8"`
	Roles       []string `json:"roles" validate:"dive,oneof=user admin"`
}

func userDetail(u *User) UserDetail {
	return UserDetail{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Roles:     u.RoleList(),
		CreatedAt: u.CreatedAt,
	}
}

func (s *Server) listConcerts(c *gin.Context) {
	var concerts []Concert
	err := s.db.
		Preload("Performances", func(db *gorm.DB) *gorm.DB { return db.Order("starts_at") }).
		Order("name").
		Find(&concerts).Error
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list concerts")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, concerts)
}

func (s *Server) listOrders(c *gin.Context) {
	p, _ := GetPrincipal(c)

	var orders []Order
	if err := s.db.Preload("Tickets").Where("user_id = ?", p.User.ID).Order("created_at desc").Find(&orders).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list orders")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, orders)
}

// getOrder returns an order owned by the caller. Administrators can read
// any order.
func (s *Server) getOrder(c *gin.Context) {
	p, _ := GetPrincipal(c)

	query := s.db.Preload("Tickets").Where("id = ?", c.Param("id"))
	if !p.User.HasRole(AdminRole) {
		query = query.Where("user_id = ?", p.User.ID)
	}

	var order Order
	if err := query.First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to get order")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) listUsers(c *gin.Context) {
	var users []User
	if err := s.db.Order("username").Find(&users).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list users")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	details := make([]UserDetail, 0, len(users))
	for i := range users {
		details = append(details, userDetail(&users[i]))
	}
	c.JSON(http.StatusOK, details)
}

func (s *Server) createUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	roles := req.Roles
	if len(roles) == 0 {
		roles = []string{"user"}
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	user := &User{
		Username:     req.Username,
		Email:        strings.ToLower(req.Email),
		DisplayName:  req.DisplayName,
		PasswordHash: hash,
		Roles:        strings.Join(roles, ","),
	}

	var existing int64
	s.db.Model(&User{}).Where("lower(username) = ? OR lower(email) = ?", strings.ToLower(user.Username), user.Email).Count(&existing)
	if existing > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
		return
	}

	if err := s.db.Create(user).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	s.logger.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("User created")
	c.JSON(http.StatusCreated, userDetail(user))
}
