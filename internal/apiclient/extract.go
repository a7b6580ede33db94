package apiclient

import "github.com/tidwall/gjson"

// TokenExtractor is an ordered list of gjson paths; the first one holding a
// non-empty string wins.
type TokenExtractor []string

var (
	AccessTokenExtractor  = TokenExtractor{"accessToken", "data.accessToken"}
	RefreshTokenExtractor = TokenExtractor{"refreshToken", "data.refreshToken"}
)

// From returns the first non-empty string token found in body.
func (x TokenExtractor) From(body []byte) string {
	for _, path := range x {
		r := gjson.GetBytes(body, path)
		if r.Type == gjson.String && r.Str != "" {
			return r.Str
		}
	}
	return ""
}
