package mockapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type owner struct {
	ID                 string `json:"_id"`
	Email              string `json:"email"`
	IsVerified         bool   `json:"isVerified"`
	Role               string `json:"role"`
	IsDeleted          bool   `json:"isDeleted"`
	IsProfileCompleted bool   `json:"isProfileCompleted"`
	HasAdminBlocked    bool   `json:"hasAdminBlocked"`
}

type remoteUser struct {
	ID             string   `json:"_id"`
	User           owner    `json:"user"`
	FullName       string   `json:"fullName,omitempty"`
	ProfilePicture string   `json:"profilePicture,omitempty"`
	Username       string   `json:"username,omitempty"`
	Followers      []string `json:"followers"`
	Following      []string `json:"following"`
	Bio            string   `json:"bio,omitempty"`
}

func seedUsers() []*remoteUser {
	return []*remoteUser{
		{
			ID:        "p-1",
			User:      owner{ID: "u-1", Email: "jane@example.com", IsVerified: true, Role: "user", IsProfileCompleted: true},
			FullName:  "Jane Doe",
			Username:  "jane",
			Followers: []string{"u-2", "u-3"},
			Following: []string{"u-2"},
			Bio:       "Hello there",
		},
		{
			ID:        "p-2",
			User:      owner{ID: "u-2", Email: "sam@example.com", Role: "user"},
			Username:  "sam",
			Followers: []string{},
			Following: []string{"u-1"},
		},
		{
			ID:        "p-3",
			User:      owner{ID: "u-3", Email: "blocked@example.com", IsVerified: true, Role: "user", HasAdminBlocked: true},
			Followers: []string{},
			Following: []string{},
		},
	}
}

// AddUser appends a user to the fake's directory.
func (s *Server) AddUser(id, email, fullName string, verified bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = append(s.users, &remoteUser{
		ID:        "p-" + id,
		User:      owner{ID: id, Email: email, IsVerified: verified, Role: "user"},
		FullName:  fullName,
		Followers: []string{},
		Following: []string{},
	})
}

func (s *Server) findUserLocked(id string) (int, *remoteUser) {
	for i, u := range s.users {
		if u.User.ID == id || u.ID == id {
			return i, u
		}
	}
	return -1, nil
}

func queryInt(c *gin.Context, key string, def int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func (s *Server) handleListUsers(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 10)

	s.mu.Lock()
	total := len(s.users)
	start := min((page-1)*limit, total)
	end := min(start+limit, total)
	items := make([]remoteUser, 0, end-start)
	for _, u := range s.users[start:end] {
		items = append(items, *u)
	}
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"page":    page,
		"limit":   limit,
		"total":   total,
		"items":   items,
	})
}

func (s *Server) handleGetUser(c *gin.Context) {
	s.mu.Lock()
	_, u := s.findUserLocked(c.Param("id"))
	var out remoteUser
	if u != nil {
		out = *u
	}
	s.mu.Unlock()

	if u == nil {
		fail(c, http.StatusNotFound, "User not found", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": out})
}

func (s *Server) handleToggleBlock(c *gin.Context) {
	s.mu.Lock()
	_, u := s.findUserLocked(c.Param("id"))
	blocked := false
	if u != nil {
		u.User.HasAdminBlocked = !u.User.HasAdminBlocked
		blocked = u.User.HasAdminBlocked
	}
	s.mu.Unlock()

	if u == nil {
		fail(c, http.StatusNotFound, "User not found", nil)
		return
	}
	verb := "unblocked"
	if blocked {
		verb = "blocked"
	}
	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"hasAdminBlocked": blocked,
		"message":         fmt.Sprintf("User %s successfully", verb),
	})
}

func (s *Server) handleDeleteUser(c *gin.Context) {
	s.mu.Lock()
	i, u := s.findUserLocked(c.Param("id"))
	if u != nil {
		s.users = append(s.users[:i], s.users[i+1:]...)
	}
	s.mu.Unlock()

	if u == nil {
		fail(c, http.StatusNotFound, "User not found", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User deleted successfully"})
}
