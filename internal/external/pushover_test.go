package external

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rainalert/internal/types"
)

func newTestPushover(serverURL string) *PushoverClient {
	return NewPushoverClient(&http.Client{Timeout: 5 * time.Second}, PushoverClientConfig{
		Token:           "po-token",
		User:            "po-user",
		BaseURL:         serverURL,
		EmergencyRetry:  60 * time.Second,
		EmergencyExpire: 2 * time.Hour,
	})
}

func captureForm(t *testing.T, status int, body string) (*httptest.Server, *url.Values) {
	t.Helper()
	var form url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/1/messages.json", r.URL.Path)
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, &form
}

func TestPushoverNotify_NormalPriority(t *testing.T) {
	server, form := captureForm(t, http.StatusOK, `{"status":1,"request":"abc"}`)

	err := newTestPushover(server.URL).Notify(context.Background(), types.Alert{
		Kind:     types.AlertKindRain,
		Title:    "Rain Alert",
		Message:  "Light rain in about 12 min (3:04 PM) in McKinney.\nTake an umbrella ☔",
		Priority: types.PriorityNormal,
	})
	require.NoError(t, err)

	assert.Equal(t, "po-token", form.Get("token"))
	assert.Equal(t, "po-user", form.Get("user"))
	assert.Equal(t, "Rain Alert", form.Get("title"))
	assert.Contains(t, form.Get("message"), "McKinney")
	assert.Equal(t, "1", form.Get("priority"))
	assert.Empty(t, form.Get("retry"))
	assert.Empty(t, form.Get("expire"))
}

func TestPushoverNotify_EmergencyAddsRetryExpire(t *testing.T) {
	server, form := captureForm(t, http.StatusOK, `{"status":1,"request":"abc","receipt":"r1"}`)

	err := newTestPushover(server.URL).Notify(context.Background(), types.Alert{
		Kind:     types.AlertKindCold,
		Title:    "🥶 Freezing Alert",
		Message:  "Feels like -2°C in McKinney.\nRisk of frost or icy surfaces.",
		Priority: types.PriorityEmergency,
	})
	require.NoError(t, err)

	assert.Equal(t, "2", form.Get("priority"))
	assert.Equal(t, "60", form.Get("retry"))
	assert.Equal(t, "7200", form.Get("expire"))
}

func TestPushoverNotify_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		code   types.ErrorCode
	}{
		{"invalid token", http.StatusBadRequest, `{"status":0,"errors":["application token is invalid"]}`, types.ErrCodeNotifierRejected},
		{"rate limited", http.StatusTooManyRequests, ``, types.ErrCodeNotifierUnavailable},
		{"server error", http.StatusInternalServerError, `oops`, types.ErrCodeNotifierUnavailable},
		{"status zero on 200", http.StatusOK, `{"status":0}`, types.ErrCodeNotifierRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := captureForm(t, tt.status, tt.body)

			err := newTestPushover(server.URL).Notify(context.Background(), types.Alert{Title: "t", Message: "m"})
			require.Error(t, err)
			assert.Equal(t, tt.code, types.CodeOf(err))
			assert.True(t, types.IsNotifierError(err))
		})
	}
}

func TestPushoverNotify_RejectedMessageNamesErrors(t *testing.T) {
	server, _ := captureForm(t, http.StatusBadRequest, `{"status":0,"errors":["user identifier is invalid"]}`)

	err := newTestPushover(server.URL).Notify(context.Background(), types.Alert{Title: "t", Message: "m"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user identifier is invalid")
}

func TestPushoverDefaults(t *testing.T) {
	p := NewPushoverClient(nil, PushoverClientConfig{})
	assert.Equal(t, "pushover", p.Name())
	assert.Equal(t, pushoverAPIBase, p.baseURL)
	assert.Equal(t, 60*time.Second, p.cfg.EmergencyRetry)
	assert.Equal(t, time.Hour, p.cfg.EmergencyExpire)
}

func TestPushoverNotify_RoutinePrioritySentAsZero(t *testing.T) {
	server, form := captureForm(t, http.StatusOK, `{"status":1,"request":"abc"}`)

	err := newTestPushover(server.URL).Notify(context.Background(), types.Alert{
		Kind:     types.AlertKindDigest,
		Title:    "Daily Weather",
		Message:  "🌤️ Today – McKinney",
		Priority: types.PriorityRoutine,
	})
	require.NoError(t, err)

	assert.Equal(t, "0", form.Get("priority"))
	assert.Empty(t, form.Get("retry"))
}
