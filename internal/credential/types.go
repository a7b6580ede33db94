package credential

// UserProfile holds the optional profile fields of the signed-in admin.
type UserProfile struct {
	FullName       string `json:"fullName,omitempty"`
	ProfilePicture string `json:"profilePicture,omitempty"`
	CoverImage     string `json:"coverImage,omitempty"`
	Bio            string `json:"bio,omitempty"`
}

// AuthUser is the signed-in admin as returned by the sign-in endpoint.
type AuthUser struct {
	ID         string       `json:"id"`
	Email      string       `json:"email"`
	Name       string       `json:"name,omitempty"`
	Role       string       `json:"role,omitempty"`
	IsVerified bool         `json:"isVerified,omitempty"`
	Profile    *UserProfile `json:"profile,omitempty"`
}

// Clone returns a deep copy of u.
func (u *AuthUser) Clone() *AuthUser {
	if u == nil {
		return nil
	}
	cp := *u
	if u.Profile != nil {
		p := *u.Profile
		cp.Profile = &p
	}
	return &cp
}

// Credentials is an immutable snapshot of the session. An empty token
// means the token is absent.
type Credentials struct {
	User            *AuthUser `json:"user"`
	AccessToken     string    `json:"accessToken"`
	RefreshToken    string    `json:"refreshToken"`
	IsAuthenticated bool      `json:"isAuthenticated"`
}

// Update is a partial credential update. Nil fields and empty tokens leave
// the stored value unchanged.
type Update struct {
	User         *AuthUser
	AccessToken  *string
	RefreshToken *string
}

// UserPatch is merged into the current user by UpdateUser. Empty fields are
// ignored, as are empty profile fields.
type UserPatch struct {
	Email      string
	Name       string
	Role       string
	IsVerified *bool
	Profile    UserProfile
}

// persistedState mirrors the JSON layout written under the snapshot key.
type persistedState struct {
	State struct {
		User         *AuthUser `json:"user"`
		AccessToken  *string   `json:"accessToken"`
		RefreshToken *string   `json:"refreshToken"`
	} `json:"state"`
	Version int `json:"version"`
}

// ChangeEvent is published on every mutation. It carries token presence
// only, never token values.
type ChangeEvent struct {
	HasAccessToken  bool   `json:"has_access_token"`
	HasRefreshToken bool   `json:"has_refresh_token"`
	UserID          string `json:"user_id,omitempty"`
	Reason          string `json:"reason"`
}

// String returns a pointer to s, for building Updates.
func String(s string) *string { return &s }
