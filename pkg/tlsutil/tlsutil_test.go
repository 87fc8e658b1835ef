package tlsutil

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadClientTLSConfig_Defaults(t *testing.T) {
	cfg, err := LoadClientTLSConfig(Config{})
	require.NoError(t, err)

	assert.Equal(t, uint16(tls.VersionTLS12), cfg.MinVersion)
	assert.False(t, cfg.InsecureSkipVerify)
	assert.NotNil(t, cfg.RootCAs)
}

func TestLoadClientTLSConfig_MinVersion(t *testing.T) {
	tests := []struct {
		version  string
		expected uint16
	}{
		{"", tls.VersionTLS12},
		{"1.2", tls.VersionTLS12},
		{"1.3", tls.VersionTLS13},
		{"bogus", tls.VersionTLS12},
	}

	for _, test := range tests {
		cfg, err := LoadClientTLSConfig(Config{MinVersion: test.version})
		require.NoError(t, err)
		assert.Equal(t, test.expected, cfg.MinVersion, "version %q", test.version)
	}
}

func TestLoadClientTLSConfig_InsecureSkipVerify(t *testing.T) {
	cfg, err := LoadClientTLSConfig(Config{InsecureSkipVerify: true})
	require.NoError(t, err)
	assert.True(t, cfg.InsecureSkipVerify)
}

func TestLoadClientTLSConfig_CustomCA(t *testing.T) {
	caFile := writeTestCA(t)

	cfg, err := LoadClientTLSConfig(Config{CAFiles: []string{caFile}})
	require.NoError(t, err)
	assert.NotNil(t, cfg.RootCAs)
}

func TestLoadClientTLSConfig_Errors(t *testing.T) {
	t.Run("missing CA file", func(t *testing.T) {
		_, err := LoadClientTLSConfig(Config{CAFiles: []string{"/nonexistent/ca.pem"}})
		assert.Error(t, err)
	})

	t.Run("invalid PEM data", func(t *testing.T) {
		badFile := filepath.Join(t.TempDir(), "bad.pem")
		require.NoError(t, os.WriteFile(badFile, []byte("not a certificate"), 0644))

		_, err := LoadClientTLSConfig(Config{CAFiles: []string{badFile}})
		assert.Error(t, err)
	})
}

// writeTestCA generates a self-signed certificate and writes it as PEM
func writeTestCA(t *testing.T) string {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "test-ca"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageCertSign,
		BasicConstraintsValid: true,
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	require.NoError(t, err)

	caFile := filepath.Join(t.TempDir(), "ca.pem")
	pemData := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	require.NoError(t, os.WriteFile(caFile, pemData, 0644))

	return caFile
}
