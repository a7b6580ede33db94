package admin

import (
	"context"
	"testing"

	"admin-console-go/internal/mockapi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrivacyPolicyRoundTrip(t *testing.T) {
	env := newTestEnv(t, mockapi.Options{})
	env.signIn(t)
	ctx := context.Background()

	_, err := env.svc.Content.GetPrivacyPolicy(ctx)
	require.ErrorIs(t, err, ErrContentNotFound)

	_, err = env.svc.Content.SavePrivacyPolicy(ctx, "   ")
	require.ErrorIs(t, err, ErrEmptyContent)

	saved, err := env.svc.Content.SavePrivacyPolicy(ctx, " <p>We keep your data safe.</p> ")
	require.NoError(t, err)
	assert.Equal(t, "<p>We keep your data safe.</p>", saved.Content)

	doc, err := env.svc.Content.GetPrivacyPolicy(ctx)
	require.NoError(t, err)
	assert.Equal(t, "<p>We keep your data safe.</p>", doc.Content)
	assert.NotNil(t, doc.LastSaved())
}

func TestTermsPerLanguage(t *testing.T) {
	env := newTestEnv(t, mockapi.Options{})
	env.signIn(t)
	ctx := context.Background()

	_, err := env.svc.Content.GetTerms(ctx, "fr")
	require.ErrorIs(t, err, ErrContentNotFound)

	first, err := env.svc.Content.SaveTerms(ctx, "fr", "Conditions v1")
	require.NoError(t, err)
	assert.Equal(t, "1.0", first.Version)
	second, err := env.svc.Content.SaveTerms(ctx, "fr", "Conditions v2")
	require.NoError(t, err)
	assert.Equal(t, "2.0", second.Version)

	doc, err := env.svc.Content.GetTerms(ctx, "fr")
	require.NoError(t, err)
	assert.Equal(t, "Conditions v2", doc.Content)
	assert.Equal(t, "fr", doc.Language)

	_, err = env.svc.Content.GetTerms(ctx, "en")
	assert.ErrorIs(t, err, ErrContentNotFound)
}

func TestAboutAppRoundTrip(t *testing.T) {
	env := newTestEnv(t, mockapi.Options{})
	env.signIn(t)
	ctx := context.Background()

	_, err := env.svc.Content.GetAboutApp(ctx, "en", "ios")
	require.ErrorIs(t, err, ErrContentNotFound)

	saved, err := env.svc.Content.SaveAboutApp(ctx, "en", "ios", "About us")
	require.NoError(t, err)
	assert.Equal(t, "ios", saved.Platform)

	doc, err := env.svc.Content.GetAboutApp(ctx, "en", "ios")
	require.NoError(t, err)
	assert.Equal(t, "About us", doc.Content)

	_, err = env.svc.Content.GetAboutApp(ctx, "en", "android")
	assert.ErrorIs(t, err, ErrContentNotFound)
}

func TestNormalizeAboutApp(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		want    string
		wantOK  bool
		wantPlt string
	}{
		{"aboutApp first", `{"aboutApp":{"content":"A","platform":"ios"},"content":"B"}`, "A", true, "ios"},
		{"content object", `{"content":{"content":"B"},"data":{"content":"C"}}`, "B", true, ""},
		{"content string", `{"content":"plain"}`, "plain", true, ""},
		{"data fallback", `{"message":"ok","data":{"content":"C"}}`, "C", true, ""},
		{"data string", `{"data":"raw"}`, "raw", true, ""},
		{"nothing", `{"message":"ok"}`, "", false, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc, ok := NormalizeAboutApp([]byte(tc.body))
			require.Equal(t, tc.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tc.want, doc.Content)
			assert.Equal(t, tc.wantPlt, doc.Platform)
		})
	}
}
