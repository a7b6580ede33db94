package mockapi

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	mw "admin-console-go/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const minPasswordLength = 8

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) adminUser() gin.H {
	return gin.H{
		"id":         adminUserID,
		"email":      s.opts.AdminEmail,
		"name":       "Admin",
		"role":       "admin",
		"isVerified": true,
	}
}

func (s *Server) handleSignIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !strings.EqualFold(req.Email, s.opts.AdminEmail) || req.Password != s.password {
		fail(c, http.StatusUnauthorized, "Invalid email or password", nil)
		return
	}
	if s.opts.RequirePasswordChange {
		reset := uuid.NewString()
		s.resetTokens[reset] = s.opts.AdminEmail
		c.JSON(http.StatusCreated, gin.H{
			"statusCode":        http.StatusCreated,
			"message":           "Password change required",
			"canChangePassword": true,
			"resetToken":        reset,
		})
		return
	}

	access, err := s.issueAccessLocked()
	if err != nil {
		fail(c, http.StatusInternalServerError, "Could not issue token", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"statusCode": http.StatusOK,
		"message":    "Signed in successfully",
		"data": gin.H{
			"accessToken":  access,
			"refreshToken": s.issueRefreshLocked(),
			"user":         s.adminUser(),
		},
	})
}

func (s *Server) handleRefresh(c *gin.Context) {
	s.refreshCalls.Add(1)
	if err := sleepCtx(c.Request.Context(), s.opts.RefreshDelay); err != nil {
		return
	}

	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		fail(c, http.StatusBadRequest, "Refresh token is required", nil)
		return
	}
	if s.failRefresh.Load() {
		fail(c, http.StatusUnauthorized, "Refresh token expired", nil)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.refreshTokens[req.RefreshToken] {
		fail(c, http.StatusUnauthorized, "Invalid refresh token", nil)
		return
	}
	access, err := s.issueAccessLocked()
	if err != nil {
		fail(c, http.StatusInternalServerError, "Could not issue token", nil)
		return
	}
	data := gin.H{"accessToken": access}
	if s.opts.RotateRefreshTokens {
		delete(s.refreshTokens, req.RefreshToken)
		data["refreshToken"] = s.issueRefreshLocked()
	}
	log.WithField("rotated", s.opts.RotateRefreshTokens).Debug("mock refresh issued")
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Token refreshed", "data": data})
}

func (s *Server) handleLogout(c *gin.Context) {
	s.mu.Lock()
	s.revokeLocked(c.GetString(mw.ContextAccessToken))
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out successfully"})
}

func (s *Server) handleForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		fail(c, http.StatusBadRequest, "Validation failed", map[string][]string{"email": {"Email is required"}})
		return
	}
	if !strings.EqualFold(req.Email, s.opts.AdminEmail) {
		fail(c, http.StatusNotFound, "No account found for this email", nil)
		return
	}
	s.mu.Lock()
	s.otps[strings.ToLower(req.Email)] = DefaultOTP
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "OTP sent to your email"})
}

func (s *Server) handleVerifyOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(req.Email)
	if want, ok := s.otps[key]; !ok || want != req.OTP {
		fail(c, http.StatusBadRequest, "Validation failed", map[string][]string{"otp": {"Invalid or expired OTP"}})
		return
	}
	delete(s.otps, key)
	reset := uuid.NewString()
	s.resetTokens[reset] = req.Email
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "OTP verified", "data": gin.H{"resetToken": reset}})
}

func (s *Server) handleResetPassword(c *gin.Context) {
	var req struct {
		Token       string `json:"token"`
		Email       string `json:"email"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if len(req.NewPassword) < minPasswordLength {
		fail(c, http.StatusBadRequest, "Validation failed", map[string][]string{
			"newPassword": {fmt.Sprintf("Password must be at least %d characters", minPasswordLength)},
		})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case req.Token != "":
		if _, ok := s.resetTokens[req.Token]; !ok {
			fail(c, http.StatusBadRequest, "Invalid or expired reset token", nil)
			return
		}
		delete(s.resetTokens, req.Token)
	case strings.EqualFold(req.Email, s.opts.AdminEmail):
	default:
		fail(c, http.StatusBadRequest, "Reset token or email is required", nil)
		return
	}
	s.password = req.NewPassword
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password reset successfully"})
}

func (s *Server) handleUpdatePassword(c *gin.Context) {
	var req struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if req.OldPassword != s.password {
		fail(c, http.StatusBadRequest, "Validation failed", map[string][]string{"oldPassword": {"Current password is incorrect"}})
		return
	}
	if len(req.NewPassword) < minPasswordLength {
		fail(c, http.StatusBadRequest, "Validation failed", map[string][]string{
			"newPassword": {fmt.Sprintf("Password must be at least %d characters", minPasswordLength)},
		})
		return
	}
	s.password = req.NewPassword
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password updated successfully"})
}

func (s *Server) handleUpload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, "Validation failed", map[string][]string{"file": {"File is required"}})
		return
	}
	name := path.Base(file.Filename)
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "File uploaded",
		"data": gin.H{
			"url":  "/uploads/" + uuid.NewString() + "/" + name,
			"size": file.Size,
		},
	})
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
