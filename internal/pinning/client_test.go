package pinning

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nft-minter/internal/domain"
)

// Well-known CIDv0 (sha2-256 of the "hello world" ipfs example).
const testCID = "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	client, err := NewClient(Options{
		APIKey:    "test-key",
		SecretKey: "test-secret",
		BaseURL:   serverURL,
	})
	require.NoError(t, err)
	return client
}

func TestNewClient_MissingCredentials(t *testing.T) {
	_, err := NewClient(Options{APIKey: "only-key"})
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = NewClient(Options{SecretKey: "only-secret"})
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestClient_PinFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pinning/pinFileToIPFS", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("pinata_api_key"))
		assert.Equal(t, "test-secret", r.Header.Get("pinata_secret_api_key"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		assert.Equal(t, "art.png", header.Filename)
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, []byte{0x89, 0x50, 0x4e, 0x47}, data)

		json.NewEncoder(w).Encode(map[string]string{"IpfsHash": testCID})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	result := client.PinFile(context.Background(), Asset{
		Name:        "art.png",
		ContentType: "image/png",
		Data:        []byte{0x89, 0x50, 0x4e, 0x47},
	})

	require.True(t, result.Success, "pin failed: %s", result.Message)
	assert.Equal(t, "https://gateway.pinata.cloud/ipfs/"+testCID, result.URI)
}

func TestClient_PinFile_Oversized(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	client, err := NewClient(Options{
		APIKey:       "k",
		SecretKey:    "s",
		BaseURL:      server.URL,
		MaxAssetSize: 8,
	})
	require.NoError(t, err)

	result := client.PinFile(context.Background(), Asset{Data: make([]byte, 9)})

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "file too large")
	assert.Equal(t, int64(0), calls.Load(), "oversized payload must be rejected before any network call")
}

func TestClient_PinFile_EmptyAsset(t *testing.T) {
	client, err := NewClient(Options{APIKey: "k", SecretKey: "s"})
	require.NoError(t, err)

	result := client.PinFile(context.Background(), Asset{})
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "no file provided")
}

func TestClient_PinFile_ServiceRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"reason": "INVALID_CREDENTIALS", "details": "Invalid API key"},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	result := client.PinFile(context.Background(), Asset{Data: []byte("x")})

	assert.False(t, result.Success)
	assert.Equal(t, "Invalid API key", result.Message)
}

func TestClient_PinJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pinning/pinJSONToIPFS", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var doc domain.TokenMetadata
		require.NoError(t, json.NewDecoder(r.Body).Decode(&doc))
		assert.Equal(t, "Sunset", doc.Name)
		assert.Equal(t, "evening sky", doc.Description)
		assert.Equal(t, "https://gateway.pinata.cloud/ipfs/"+testCID, doc.Image)

		json.NewEncoder(w).Encode(map[string]string{"IpfsHash": testCID})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	result := client.PinJSON(context.Background(), domain.TokenMetadata{
		Name:        "Sunset",
		Description: "evening sky",
		Image:       "https://gateway.pinata.cloud/ipfs/" + testCID,
	})

	require.True(t, result.Success, "pin failed: %s", result.Message)
	assert.Equal(t, "https://gateway.pinata.cloud/ipfs/"+testCID, result.URI)
}

func TestClient_PinJSON_MissingImage(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	result := client.PinJSON(context.Background(), domain.TokenMetadata{Name: "x", Description: "y"})

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "missing image URI")
	assert.Equal(t, int64(0), calls.Load())
}

func TestClient_PinFile_MalformedCID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"IpfsHash": "Qm-not-base58-0OIl"})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	result := client.PinFile(context.Background(), Asset{Data: []byte("x")})

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "malformed content identifier")
}

func TestValidateCID(t *testing.T) {
	assert.NoError(t, ValidateCID(testCID))
	assert.NoError(t, ValidateCID("bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi"))

	assert.Error(t, ValidateCID(""))
	assert.Error(t, ValidateCID("Qmshort"))
	assert.Error(t, ValidateCID("not-a-cid"))
	assert.Error(t, ValidateCID("BAFYUPPER"))
}
