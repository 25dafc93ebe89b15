package web

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEngine_RendersRolePage(t *testing.T) {
	engine := Engine()
	require.NoError(t, engine.Load())

	var buf bytes.Buffer
	require.NoError(t, engine.Render(&buf, "role", map[string]any{"Title": "Welcome"}))
	require.Contains(t, buf.String(), "<title>Welcome - TidBid</title>")
}

func TestEngine_AdminLoginShowsDemoEmail(t *testing.T) {
	engine := Engine()
	require.NoError(t, engine.Load())

	var buf bytes.Buffer
	err := engine.Render(&buf, "admin_login", map[string]any{"Title": "Admin Login", "AdminEmail": "ops@tidbid.com"})
	require.NoError(t, err)
	require.Contains(t, buf.String(), "ops@tidbid.com")
}

func TestStatic_ServesScript(t *testing.T) {
	f, err := Static().Open("app.js")
	require.NoError(t, err)
	defer f.Close()

	data, err := io.ReadAll(f)
	require.NoError(t, err)
	require.Contains(t, string(data), "/api/ws/")
}

func TestIsImage(t *testing.T) {
	require.True(t, isImage("https://images.unsplash.com/photo.jpg"))
	require.True(t, isImage("/static/me.png"))
	require.False(t, isImage("A"))
	require.False(t, isImage(""))
}

func TestStatic_ScriptHandlesEveryPushedEvent(t *testing.T) {
	f, err := Static().Open("app.js")
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)

	for _, kind := range []string{"thread", "message", "typing", "cleared", "filter", "preview", "notice"} {
		require.Contains(t, string(data), "case '"+kind+"'", kind)
	}
	require.Contains(t, string(data), "header.avatar")
}
