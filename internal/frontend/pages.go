package frontend

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Storefront pages

func (s *Server) concerts(c *gin.Context) {
	concerts, err := s.api.ListConcerts(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	s.render(c, http.StatusOK, "concerts.html", gin.H{"Concerts": concerts})
}

func (s *Server) account(c *gin.Context) {
	profile, err := s.api.Me(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	s.render(c, http.StatusOK, "account.html", gin.H{"Profile": profile})
}

func (s *Server) orders(c *gin.Context) {
	orders, err := s.api.ListOrders(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	s.render(c, http.StatusOK, "orders.html", gin.H{"Orders": orders})
}

func (s *Server) order(c *gin.Context) {
	order, err := s.api.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	s.render(c, http.StatusOK, "order.html", gin.H{"Order": order})
}

// Console pages

func (s *Server) adminDashboard(c *gin.Context) {
	users, err := s.api.ListUsers(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	concerts, err := s.api.ListConcerts(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	s.render(c, http.StatusOK, "admin.html", gin.H{
		"UserCount":    len(users),
		"ConcertCount": len(concerts),
	})
}

func (s *Server) adminUsers(c *gin.Context) {
	users, err := s.api.ListUsers(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	s.render(c, http.StatusOK, "users.html", gin.H{"Users": users})
}

func (s *Server) adminConcerts(c *gin.Context) {
	concerts, err := s.api.ListConcerts(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	s.render(c, http.StatusOK, "concerts.html", gin.H{"Concerts": concerts})
}
