package admin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapPolicy(t *testing.T) {
	wrapped := WrapPolicy("  <p>Hello</p> ")
	assert.Equal(t, `<div data-policy-wrapper="true" style="margin:16px;"><p>Hello</p></div>`, wrapped)

	assert.Equal(t, wrapped, WrapPolicy(wrapped), "wrapping is idempotent")
	assert.Empty(t, WrapPolicy("   "))
}

func TestUnwrapPolicy(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"wrapped", `<div data-policy-wrapper="true" style="margin:16px;"><p>Hi</p></div>`, "<p>Hi</p>"},
		{"style whitespace tolerated", `<div data-policy-wrapper="true" style="margin: 16px ;"><b>x</b></div>`, "<b>x</b>"},
		{"not a wrapper", `<div style="margin:16px;"><p>Hi</p></div>`, `<div style="margin:16px;"><p>Hi</p></div>`},
		{"wrong style", `<div data-policy-wrapper="true" style="margin:8px;">x</div>`, `<div data-policy-wrapper="true" style="margin:8px;">x</div>`},
		{"plain text", "  just text ", "just text"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, UnwrapPolicy(tc.in))
		})
	}
}

func TestWrapUnwrapRoundTrip(t *testing.T) {
	for _, in := range []string{"<p>a</p><p>b</p>", "<ul><li>one</li></ul>", "text &amp; more"} {
		assert.Equal(t, in, UnwrapPolicy(WrapPolicy(in)))
	}
}
