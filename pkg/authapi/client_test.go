package authapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whispernotes/whisper/pkg/core"
)

func setupServer(t *testing.T) (*Client, *DevServer) {
	t.Helper()
	backend := NewDevServer()
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, srv.Client()), backend
}

func TestClient_Login(t *testing.T) {
	client, backend := setupServer(t)
	seeded := backend.Register("Chihiro", "chihiro@bathhouse.jp", "haku")

	t.Run("valid credentials", func(t *testing.T) {
		u, err := client.Login(context.Background(), "chihiro@bathhouse.jp", "haku")
		require.NoError(t, err)
		assert.Equal(t, seeded.ID, u.ID)
		assert.Equal(t, "Chihiro", u.Name)
	})

	t.Run("wrong password carries server message", func(t *testing.T) {
		_, err := client.Login(context.Background(), "chihiro@bathhouse.jp", "no-face")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid email or password")
	})

	t.Run("unknown account", func(t *testing.T) {
		_, err := client.Login(context.Background(), "yubaba@bathhouse.jp", "haku")
		assert.Error(t, err)
	})
}

func TestClient_Signup(t *testing.T) {
	client, _ := setupServer(t)
	ctx := context.Background()

	u, err := client.Signup(ctx, "Kiki", "kiki@koriko.se", "jiji-the-cat")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "kiki@koriko.se", u.Email)

	// Signing up the same email again conflicts.
	_, err = client.Signup(ctx, "Kiki", "kiki@koriko.se", "jiji-the-cat")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	// And the fresh account can log in.
	again, err := client.Login(ctx, "kiki@koriko.se", "jiji-the-cat")
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)
}

func TestClient_UpdateProfile(t *testing.T) {
	client, backend := setupServer(t)
	backend.Register("Chihiro", "chihiro@bathhouse.jp", "haku")
	ctx := context.Background()

	_, err := client.Login(ctx, "chihiro@bathhouse.jp", "haku")
	require.NoError(t, err)

	name := "Sen"
	avatar := "river-spirit.png"
	u, err := client.UpdateProfile(ctx, core.ProfileUpdate{Name: &name, Avatar: &avatar})
	require.NoError(t, err)
	assert.Equal(t, "Sen", u.Name)
	assert.Equal(t, "river-spirit.png", u.Avatar)
	assert.Equal(t, "chihiro@bathhouse.jp", u.Email, "omitted fields must survive")
}

func TestClient_UpdateProfileWithoutSession(t *testing.T) {
	client, _ := setupServer(t)

	name := "Nobody"
	_, err := client.UpdateProfile(context.Background(), core.ProfileUpdate{Name: &name})
	assert.Error(t, err)
}

func TestClient_RejectsEnvelopeWithoutUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"user":{}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client())
	_, err := client.Login(context.Background(), "a@b.co", "secret")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no user")
}

func TestClient_StatusWithoutMessageBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway timeout", http.StatusGatewayTimeout)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client())
	_, err := client.Login(context.Background(), "a@b.co", "secret")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "504")
}

func TestClient_ContextCancellation(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	client := NewClient(srv.URL, srv.Client())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Login(ctx, "a@b.co", "secret")
	assert.ErrorIs(t, err, context.Canceled)
}
