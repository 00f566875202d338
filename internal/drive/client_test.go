package drive

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/journallm/journallm/internal/config"
)

const installedAppCreds = `{
	"installed": {
		"client_id": "client.apps.googleusercontent.com",
		"client_secret": "secret",
		"auth_uri": "https://accounts.google.com/o/oauth2/auth",
		"token_uri": "https://oauth2.googleapis.com/token",
		"redirect_uris": ["http://localhost"]
	}
}`

func writeCreds(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte(installedAppCreds), 0o600))
	return path
}

func TestNewDownloader_MissingToken(t *testing.T) {
	cfg := config.DriveConfig{
		FolderID:        "folder123",
		CredentialsFile: writeCreds(t),
		TokenFile:       filepath.Join(t.TempDir(), "token.json"),
	}

	_, err := NewDownloader(context.Background(), cfg, nil)
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestNewDownloader_MissingFolderID(t *testing.T) {
	_, err := NewDownloader(context.Background(), config.DriveConfig{}, nil)
	assert.ErrorContains(t, err, "folder_id")
}

func TestNewDownloader_MissingCredentials(t *testing.T) {
	cfg := config.DriveConfig{
		FolderID:        "folder123",
		CredentialsFile: filepath.Join(t.TempDir(), "absent.json"),
	}
	_, err := NewDownloader(context.Background(), cfg, nil)
	assert.ErrorContains(t, err, "credentials")
}

func TestTokenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	token := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		Expiry:       time.Now().Add(time.Hour).Round(time.Second),
	}

	require.NoError(t, saveToken(path, token))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm(), "token file is owner-only")

	loaded, err := loadToken(path)
	require.NoError(t, err)
	assert.Equal(t, token.AccessToken, loaded.AccessToken)
	assert.Equal(t, token.RefreshToken, loaded.RefreshToken)
}

func TestOAuthConfig(t *testing.T) {
	oc, err := oauthConfig(config.DriveConfig{CredentialsFile: writeCreds(t)})
	require.NoError(t, err)
	assert.Equal(t, "client.apps.googleusercontent.com", oc.ClientID)
	assert.NotEmpty(t, oc.Scopes)
}
