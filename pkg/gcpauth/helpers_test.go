package gcpauth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// testRSAKey generates a throwaway signing key and its PEM encoding.
func testRSAKey(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	block := &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}
	return key, string(pem.EncodeToMemory(block))
}

func testServiceAccountKey(t *testing.T, tokenURI string) *ServiceAccountKey {
	t.Helper()
	_, pemKey := testRSAKey(t)
	return &ServiceAccountKey{
		Type:        "service_account",
		ProjectID:   "test-project",
		PrivateKey:  pemKey,
		ClientEmail: "robot@test-project.iam.gserviceaccount.com",
		TokenURI:    tokenURI,
	}
}

func writeServiceAccountFile(t *testing.T, key *ServiceAccountKey) string {
	t.Helper()
	data, err := json.Marshal(key)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "key.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

// writeADCDir creates a gcloud-style config dir holding the given
// application_default_credentials.json contents and returns the dir.
func writeADCDir(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, adcFileName), []byte(contents), 0o600))
	return dir
}

// unreachableHostPort returns a host:port that refuses connections.
func unreachableHostPort(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

const validADC = `{
  "client_id": "abc.apps.googleusercontent.com",
  "client_secret": "s3cret",
  "refresh_token": "1//refresh",
  "type": "authorized_user"
}`
