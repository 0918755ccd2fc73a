package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_SendMessage(t *testing.T) {
	t.Parallel()

	t.Run("posts the message with HTML parse mode", func(t *testing.T) {
		var gotPath string
		var gotBody map[string]string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			w.Write([]byte(`{"ok":true}`))
		}))
		defer server.Close()

		client, err := New(server.URL, "123:token", server.Client())
		require.NoError(t, err)
		err = client.SendMessage(context.Background(), "-100555", "🚨 <b>SPEEDING ALERT</b>")
		require.NoError(t, err)

		assert.Equal(t, "/bot123:token/sendMessage", gotPath)
		assert.Equal(t, "-100555", gotBody["chat_id"])
		assert.Equal(t, "🚨 <b>SPEEDING ALERT</b>", gotBody["text"])
		assert.Equal(t, "HTML", gotBody["parse_mode"])
	})

	t.Run("non-2xx response is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"ok":false,"description":"Too Many Requests"}`))
		}))
		defer server.Close()

		client, err := New(server.URL, "123:token", server.Client())
		require.NoError(t, err)
		err = client.SendMessage(context.Background(), "-100555", "hello")
		assert.Error(t, err)
	})

	t.Run("ok:false in a 200 response is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
		}))
		defer server.Close()

		client, err := New(server.URL, "123:token", server.Client())
		require.NoError(t, err)
		err = client.SendMessage(context.Background(), "-100555", "hello")
		assert.Error(t, err)
	})

	t.Run("transport failure is an error", func(t *testing.T) {
		client, err := New("http://127.0.0.1:1", "123:token", &http.Client{})
		require.NoError(t, err)
		err = client.SendMessage(context.Background(), "-100555", "hello")
		assert.Error(t, err)
	})

	t.Run("transport errors never carry the bot token", func(t *testing.T) {
		const botToken = "12345:AAE-very-secret-bot-token"
		client, err := New("http://127.0.0.1:1", botToken, &http.Client{})
		require.NoError(t, err)

		err = client.SendMessage(context.Background(), "-100555", "hello")
		require.Error(t, err)
		assert.NotContains(t, err.Error(), botToken)
	})
}
