package mockapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type document struct {
	ID        string    `json:"_id"`
	Content   string    `json:"content"`
	Version   string    `json:"version,omitempty"`
	Language  string    `json:"language,omitempty"`
	Platform  string    `json:"platform,omitempty"`
	User      string    `json:"user,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type contentRequest struct {
	Content  string `json:"content"`
	Language string `json:"language"`
	Platform string `json:"platform"`
}

func bindContent(c *gin.Context) (contentRequest, bool) {
	var req contentRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		fail(c, http.StatusBadRequest, "Validation failed", map[string][]string{"content": {"Content is required"}})
		return req, false
	}
	return req, true
}

func (s *Server) newDocumentLocked(prev *document, content string) *document {
	now := s.now().UTC()
	doc := &document{ID: uuid.NewString(), Content: content, CreatedAt: now, UpdatedAt: now}
	if prev != nil {
		doc.ID = prev.ID
		doc.CreatedAt = prev.CreatedAt
	}
	return doc
}

func (s *Server) handleGetPrivacy(c *gin.Context) {
	s.mu.Lock()
	doc := s.privacy
	s.mu.Unlock()
	if doc == nil {
		fail(c, http.StatusNotFound, "Privacy policy not found", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"privacyPolicy": doc}})
}

func (s *Server) handleSavePrivacy(c *gin.Context) {
	req, ok := bindContent(c)
	if !ok {
		return
	}
	s.mu.Lock()
	doc := s.newDocumentLocked(s.privacy, req.Content)
	doc.User = adminUserID
	s.privacy = doc
	s.mu.Unlock()
	c.JSON(http.StatusCreated, gin.H{"message": "Privacy policy saved", "privacyPolicy": doc})
}

func termsLanguage(c *gin.Context) string {
	lang := strings.TrimSpace(c.GetHeader("Accept-Language"))
	if i := strings.IndexAny(lang, ",;"); i >= 0 {
		lang = lang[:i]
	}
	if lang == "" {
		return "en"
	}
	return strings.ToLower(lang)
}

func (s *Server) handleGetTerms(c *gin.Context) {
	lang := termsLanguage(c)
	s.mu.Lock()
	doc := s.terms[lang]
	s.mu.Unlock()
	if doc == nil {
		fail(c, http.StatusNotFound, "Terms not found for language "+lang, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Terms fetched", "terms": doc})
}

func (s *Server) handleSaveTerms(c *gin.Context) {
	req, ok := bindContent(c)
	if !ok {
		return
	}
	lang := termsLanguage(c)
	s.mu.Lock()
	prev := s.terms[lang]
	version := 1
	if prev != nil {
		_, _ = fmt.Sscanf(prev.Version, "%d", &version)
		version++
	}
	doc := &document{
		ID:        uuid.NewString(),
		Content:   req.Content,
		Version:   fmt.Sprintf("%d.0", version),
		Language:  lang,
		CreatedAt: s.now().UTC(),
	}
	doc.UpdatedAt = doc.CreatedAt
	s.terms[lang] = doc
	s.mu.Unlock()
	c.JSON(http.StatusCreated, gin.H{"message": "Terms saved", "terms": doc})
}

func aboutKey(language, platform string) string {
	return strings.ToLower(language) + "|" + strings.ToLower(platform)
}

func (s *Server) handleGetAbout(c *gin.Context) {
	language, platform := c.DefaultQuery("language", "en"), c.DefaultQuery("platform", "android")
	s.mu.Lock()
	doc := s.about[aboutKey(language, platform)]
	s.mu.Unlock()
	if doc == nil {
		fail(c, http.StatusNotFound, "About app content not found", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": doc})
}

func (s *Server) handleSaveAbout(c *gin.Context) {
	req, ok := bindContent(c)
	if !ok {
		return
	}
	if req.Language == "" {
		req.Language = "en"
	}
	if req.Platform == "" {
		req.Platform = "android"
	}
	key := aboutKey(req.Language, req.Platform)
	s.mu.Lock()
	doc := s.newDocumentLocked(s.about[key], req.Content)
	doc.Language, doc.Platform = req.Language, req.Platform
	s.about[key] = doc
	s.mu.Unlock()
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "About app saved", "aboutApp": doc})
}
