package admin

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"admin-console-go/internal/apiclient"
	"admin-console-go/internal/config"

	"github.com/tidwall/gjson"
)

// Document is a published content record: a privacy policy, terms entry or
// about-app text.
type Document struct {
	ID        string     `json:"_id,omitempty"`
	Content   string     `json:"content"`
	Version   string     `json:"version,omitempty"`
	Language  string     `json:"language,omitempty"`
	Platform  string     `json:"platform,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// LastSaved is UpdatedAt, falling back to CreatedAt.
func (d *Document) LastSaved() *time.Time {
	if d.UpdatedAt != nil {
		return d.UpdatedAt
	}
	return d.CreatedAt
}

// ContentService reads and publishes the static legal and informational
// content.
type ContentService struct {
	api       API
	endpoints config.Endpoints
}

// GetPrivacyPolicy returns the current policy with the wrapper removed.
func (s *ContentService) GetPrivacyPolicy(ctx context.Context) (*Document, error) {
	env, err := s.api.Get(ctx, s.endpoints.PrivacyPolicy)
	if err != nil {
		return nil, notFound(err, ErrContentNotFound)
	}
	doc, err := decodeDocument(env, "data.privacyPolicy", "privacyPolicy")
	if err != nil {
		return nil, err
	}
	doc.Content = UnwrapPolicy(doc.Content)
	return doc, nil
}

// SavePrivacyPolicy publishes content, wrapping it first.
func (s *ContentService) SavePrivacyPolicy(ctx context.Context, content string) (*Document, error) {
	wrapped := WrapPolicy(content)
	if wrapped == "" {
		return nil, ErrEmptyContent
	}
	env, err := s.api.Post(ctx, s.endpoints.PrivacyPolicy, map[string]string{"content": wrapped})
	if err != nil {
		return nil, err
	}
	doc, err := decodeDocument(env, "privacyPolicy", "data.privacyPolicy")
	if err != nil {
		doc = &Document{Content: wrapped}
	}
	doc.Content = UnwrapPolicy(doc.Content)
	return doc, nil
}

// GetTerms returns the terms for lang.
func (s *ContentService) GetTerms(ctx context.Context, lang string) (*Document, error) {
	env, err := s.api.Get(ctx, s.endpoints.TermsConditions, languageHeader(lang))
	if err != nil {
		return nil, notFound(err, ErrContentNotFound)
	}
	return decodeDocument(env, "terms", "data.terms")
}

// SaveTerms publishes a new terms version for lang. The server assigns the
// version.
func (s *ContentService) SaveTerms(ctx context.Context, lang, content string) (*Document, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	env, err := s.api.Post(ctx, s.endpoints.TermsConditions,
		map[string]string{"content": content}, languageHeader(lang))
	if err != nil {
		return nil, err
	}
	doc, err := decodeDocument(env, "terms", "data.terms")
	if err != nil {
		return &Document{Content: content, Language: lang}, nil
	}
	return doc, nil
}

// GetAboutApp returns the about text for a language and platform.
func (s *ContentService) GetAboutApp(ctx context.Context, language, platform string) (*Document, error) {
	q := url.Values{}
	q.Set("language", language)
	q.Set("platform", platform)
	env, err := s.api.Get(ctx, s.endpoints.AboutApp, apiclient.WithQuery(q))
	if err != nil {
		return nil, notFound(err, ErrContentNotFound)
	}
	doc, ok := NormalizeAboutApp(env.Raw())
	if !ok {
		return nil, ErrContentNotFound
	}
	return doc, nil
}

// SaveAboutApp publishes the about text for a language and platform.
func (s *ContentService) SaveAboutApp(ctx context.Context, language, platform, content string) (*Document, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	env, err := s.api.Post(ctx, s.endpoints.AboutApp, map[string]string{
		"content":  content,
		"language": language,
		"platform": platform,
	})
	if err != nil {
		return nil, err
	}
	if doc, ok := NormalizeAboutApp(env.Raw()); ok {
		return doc, nil
	}
	return &Document{Content: content, Language: language, Platform: platform}, nil
}

// NormalizeAboutApp picks the record from aboutApp, content or data, in that
// order. A bare string becomes the document content.
func NormalizeAboutApp(body []byte) (*Document, bool) {
	for _, key := range []string{"aboutApp", "content", "data"} {
		r := gjson.GetBytes(body, key)
		switch {
		case r.Type == gjson.String:
			return &Document{Content: r.String()}, true
		case r.IsObject():
			var doc Document
			if err := json.Unmarshal([]byte(r.Raw), &doc); err != nil {
				return nil, false
			}
			return &doc, true
		}
	}
	return nil, false
}

func decodeDocument(env *apiclient.Envelope, paths ...string) (*Document, error) {
	for _, path := range paths {
		if env.Get(path).IsObject() {
			var doc Document
			if err := env.DecodePath(path, &doc); err != nil {
				return nil, err
			}
			return &doc, nil
		}
	}
	return nil, ErrContentNotFound
}

func languageHeader(lang string) apiclient.CallOption {
	if lang == "" {
		return nil
	}
	return apiclient.WithHeader("Accept-Language", lang)
}
