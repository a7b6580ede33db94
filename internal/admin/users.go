package admin

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"admin-console-go/internal/apiclient"
	"admin-console-go/internal/config"

	"github.com/tidwall/gjson"
)

// UserStatus is the console's derived view of an account.
type UserStatus string

const (
	StatusActive  UserStatus = "active"
	StatusBlocked UserStatus = "blocked"
	StatusPending UserStatus = "pending"
)

const (
	unknownUserName = "Unknown User"
	missingEmail    = "N/A"
)

// RemoteOwner is the account record nested in a RemoteUser.
type RemoteOwner struct {
	ID                 string `json:"_id"`
	Email              string `json:"email"`
	IsVerified         bool   `json:"isVerified"`
	Role               string `json:"role"`
	IsDeleted          bool   `json:"isDeleted"`
	IsProfileCompleted bool   `json:"isProfileCompleted"`
	HasAdminBlocked    bool   `json:"hasAdminBlocked"`
}

// RemoteUser is a profile as the users endpoint returns it.
type RemoteUser struct {
	ID             string            `json:"_id"`
	User           RemoteOwner       `json:"user"`
	FullName       string            `json:"fullName"`
	ProfilePicture string            `json:"profilePicture"`
	Username       string            `json:"username"`
	Followers      []json.RawMessage `json:"followers"`
	Following      []json.RawMessage `json:"following"`
	Bio            string            `json:"bio"`
	IsFollowing    *bool             `json:"isFollowing,omitempty"`
	IsMuted        *bool             `json:"isMuted,omitempty"`
}

// User is the normalised row shown by the console.
type User struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Email              string     `json:"email"`
	Username           string     `json:"username,omitempty"`
	Avatar             string     `json:"avatar,omitempty"`
	Bio                string     `json:"bio,omitempty"`
	Role               string     `json:"role,omitempty"`
	FollowersCount     int        `json:"followersCount"`
	FollowingCount     int        `json:"followingCount"`
	IsVerified         bool       `json:"isVerified"`
	IsProfileCompleted bool       `json:"isProfileCompleted"`
	HasAdminBlocked    bool       `json:"hasAdminBlocked"`
	IsDeleted          bool       `json:"isDeleted"`
	IsMuted            *bool      `json:"isMuted,omitempty"`
	IsFollowing        *bool      `json:"isFollowing,omitempty"`
	Status             UserStatus `json:"status"`
}

// UsersPage is one page of the user list.
type UsersPage struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Total int    `json:"total"`
	Items []User `json:"items"`
}

// DeriveStatus maps account flags to a UserStatus. Blocked wins over
// verified.
func DeriveStatus(hasAdminBlocked, isDeleted, isVerified bool) UserStatus {
	switch {
	case hasAdminBlocked || isDeleted:
		return StatusBlocked
	case isVerified:
		return StatusActive
	default:
		return StatusPending
	}
}

// NormalizeUser converts a RemoteUser into the console row.
func NormalizeUser(r RemoteUser) User {
	email := strings.TrimSpace(r.User.Email)
	name := firstNonBlank(r.FullName, r.Username, emailLocalPart(email), unknownUserName)
	if email == "" {
		email = missingEmail
	}
	return User{
		ID:                 r.User.ID,
		Name:               name,
		Email:              email,
		Username:           r.Username,
		Avatar:             r.ProfilePicture,
		Bio:                r.Bio,
		Role:               r.User.Role,
		FollowersCount:     len(r.Followers),
		FollowingCount:     len(r.Following),
		IsVerified:         r.User.IsVerified,
		IsProfileCompleted: r.User.IsProfileCompleted,
		HasAdminBlocked:    r.User.HasAdminBlocked,
		IsDeleted:          r.User.IsDeleted,
		IsMuted:            r.IsMuted,
		IsFollowing:        r.IsFollowing,
		Status:             DeriveStatus(r.User.HasAdminBlocked, r.User.IsDeleted, r.User.IsVerified),
	}
}

func emailLocalPart(email string) string {
	if email == "" {
		return ""
	}
	local, _, _ := strings.Cut(email, "@")
	return local
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

// UsersService manages application users.
type UsersService struct {
	api       API
	endpoints config.Endpoints
}

// List fetches one page of users. Zero page or limit are left to the
// server's defaults.
func (s *UsersService) List(ctx context.Context, page, limit int) (*UsersPage, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	env, err := s.api.Get(ctx, s.endpoints.Users, apiclient.WithQuery(q))
	if err != nil {
		return nil, err
	}

	var raw struct {
		Page  int          `json:"page"`
		Limit int          `json:"limit"`
		Total *int         `json:"total"`
		Items []RemoteUser `json:"items"`
	}
	if err := env.DecodeData(&raw); err != nil {
		return nil, err
	}

	out := &UsersPage{Page: page, Limit: limit, Items: make([]User, 0, len(raw.Items))}
	for _, r := range raw.Items {
		out.Items = append(out.Items, NormalizeUser(r))
	}
	if raw.Page > 0 {
		out.Page = raw.Page
	}
	if raw.Limit > 0 {
		out.Limit = raw.Limit
	}
	out.Total = len(out.Items)
	if raw.Total != nil {
		out.Total = *raw.Total
	}
	return out, nil
}

// Get fetches a single profile. The id is used when the payload omits it.
func (s *UsersService) Get(ctx context.Context, id string) (*User, error) {
	env, err := s.api.Get(ctx, s.userPath(id))
	if err != nil {
		return nil, notFound(err, ErrProfileNotFound)
	}

	profile, ok := extractProfile(env.Data())
	if !ok {
		return nil, ErrProfileNotFound
	}
	var remote RemoteUser
	if err := json.Unmarshal([]byte(profile.Raw), &remote); err != nil {
		return nil, err
	}
	user := NormalizeUser(remote)
	if user.ID == "" {
		user.ID = firstNonBlank(remote.ID, id, "unknown")
	}
	return &user, nil
}

// extractProfile accepts the profile itself or an object nesting it under
// user.
func extractProfile(data gjson.Result) (gjson.Result, bool) {
	if !data.IsObject() {
		return gjson.Result{}, false
	}
	for _, key := range []string{"followers", "following", "bio"} {
		if data.Get(key).Exists() {
			return data, true
		}
	}
	if nested := data.Get("user"); nested.IsObject() {
		return nested, true
	}
	return gjson.Result{}, false
}

// ToggleAdminBlock flips the admin block flag and returns the new value.
// When the server omits it, !current is assumed.
func (s *UsersService) ToggleAdminBlock(ctx context.Context, id string, current bool) (bool, error) {
	env, err := s.api.Patch(ctx, s.userPath(id)+"/admin-block", nil)
	if err != nil {
		return current, err
	}
	for _, path := range []string{"hasAdminBlocked", "data.hasAdminBlocked"} {
		if r := env.Get(path); r.IsBool() {
			return r.Bool(), nil
		}
	}
	return !current, nil
}

// Delete removes a user.
func (s *UsersService) Delete(ctx context.Context, id string) error {
	_, err := s.api.Delete(ctx, s.userPath(id))
	return err
}

func (s *UsersService) userPath(id string) string {
	return strings.TrimRight(s.endpoints.Users, "/") + "/" + url.PathEscape(id)
}
