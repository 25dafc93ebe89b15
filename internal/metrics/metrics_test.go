package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/pelusa-v/tidbid/internal/chat"
	"github.com/pelusa-v/tidbid/internal/view"
)

var _ chat.Recorder = (*Metrics)(nil)

func TestCounters(t *testing.T) {
	m := New()
	m.MessageSent(view.SurfaceAdmin)
	m.MessageSent(view.SurfaceAdmin)
	m.ReplyDelivered(view.SurfacePortal, true)
	m.ReplyDelivered(view.SurfacePortal, false)
	m.ThreadCleared(view.SurfaceAdmin)
	m.Login("client", true)
	m.Login("admin", false)
	m.Registered()
	m.Limited("send")

	require.Equal(t, 2.0, testutil.ToFloat64(m.messagesSent.WithLabelValues("admin")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.repliesShown.WithLabelValues("portal", "true")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.repliesShown.WithLabelValues("portal", "false")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.threadsCleared.WithLabelValues("admin")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.logins.WithLabelValues("client", "success")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.logins.WithLabelValues("admin", "failure")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.registrations))
	require.Equal(t, 1.0, testutil.ToFloat64(m.limited.WithLabelValues("send")))
}

func TestGauges(t *testing.T) {
	m := New()
	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()
	m.SocketOpened()
	require.Equal(t, 1.0, testutil.ToFloat64(m.sessions))
	require.Equal(t, 1.0, testutil.ToFloat64(m.sockets))
	m.SocketClosed()
	require.Equal(t, 0.0, testutil.ToFloat64(m.sockets))
}

func TestHandler_ServesText(t *testing.T) {
	m := New()
	m.MessageSent(view.SurfacePortal)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	require.True(t, strings.Contains(body, `tidbid_messages_sent_total{surface="portal"} 1`), body)
}
