// Package pinning uploads assets and metadata documents to a
// Pinata-compatible pinning service and returns durable gateway URIs.
// Failures are returned in the Result, never raised: the caller decides
// whether a failed pin is fatal to its flow.
package pinning

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"nft-minter/internal/domain"
)

// ErrMissingCredentials indicates the client was configured without the
// service's API key pair.
var ErrMissingCredentials = errors.New("pinning: api key and secret are required")

// DefaultMaxAssetSize caps uploads before any network round trip.
const DefaultMaxAssetSize = 25 << 20 // 25 MiB

// Asset is a raw binary payload to pin.
type Asset struct {
	Name        string // file name hint for the multipart part
	ContentType string // e.g. "image/png"
	Data        []byte
}

// Result is the outcome of a pin call. URI is set on success; Message
// carries the service's failure text verbatim otherwise.
type Result struct {
	Success bool
	URI     string
	Message string
}

// Options configures the pinning client.
type Options struct {
	APIKey         string
	SecretKey      string
	BaseURL        string // default https://api.pinata.cloud
	GatewayBase    string // default https://gateway.pinata.cloud/ipfs/
	MaxAssetSize   int64  // bytes; 0 means DefaultMaxAssetSize
	HTTPClient     *http.Client
	Logger         zerolog.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls against the pinning service.
type Client struct {
	apiKey       string
	secretKey    string
	baseURL      string
	gatewayBase  string
	maxAssetSize int64
	httpClient   *http.Client
	logger       zerolog.Logger
}

// NewClient constructs a client with sane defaults.
func NewClient(opts Options) (*Client, error) {
	if opts.APIKey == "" || opts.SecretKey == "" {
		return nil, ErrMissingCredentials
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.pinata.cloud"
	}

	gatewayBase := opts.GatewayBase
	if gatewayBase == "" {
		gatewayBase = "https://gateway.pinata.cloud/ipfs/"
	}
	if !strings.HasSuffix(gatewayBase, "/") {
		gatewayBase += "/"
	}

	maxSize := opts.MaxAssetSize
	if maxSize <= 0 {
		maxSize = DefaultMaxAssetSize
	}

	return &Client{
		apiKey:       opts.APIKey,
		secretKey:    opts.SecretKey,
		baseURL:      baseURL,
		gatewayBase:  gatewayBase,
		maxAssetSize: maxSize,
		httpClient:   httpClient,
		logger:       opts.Logger,
	}, nil
}

// pinResponse is the service's success envelope.
type pinResponse struct {
	IpfsHash string `json:"IpfsHash"`
}

// errorBody is the service's failure envelope.
type errorBody struct {
	Error json.RawMessage `json:"error"`
}

// PinFile uploads raw bytes as a single multipart body. Exactly one
// network round trip; no retry, no chunking.
func (c *Client) PinFile(ctx context.Context, asset Asset) Result {
	if len(asset.Data) == 0 {
		return failure("no file provided")
	}
	if int64(len(asset.Data)) > c.maxAssetSize {
		return failure(fmt.Sprintf("file too large: %d bytes exceeds limit of %d", len(asset.Data), c.maxAssetSize))
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	name := asset.Name
	if name == "" {
		name = "asset"
	}
	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return failure(fmt.Sprintf("build multipart body: %v", err))
	}
	if _, err := part.Write(asset.Data); err != nil {
		return failure(fmt.Sprintf("build multipart body: %v", err))
	}
	if err := writer.Close(); err != nil {
		return failure(fmt.Sprintf("build multipart body: %v", err))
	}

	return c.post(ctx, "/pinning/pinFileToIPFS", writer.FormDataContentType(), &body)
}

// PinJSON uploads a metadata document. The document's Image field must
// already hold a resolvable URI; reachability is not checked here.
func (c *Client) PinJSON(ctx context.Context, doc domain.TokenMetadata) Result {
	if doc.Image == "" {
		return failure("metadata document missing image URI")
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return failure(fmt.Sprintf("encode metadata: %v", err))
	}

	return c.post(ctx, "/pinning/pinJSONToIPFS", "application/json", bytes.NewReader(payload))
}

// GatewayURI returns the retrieval URI for a content identifier.
func (c *Client) GatewayURI(cid string) string {
	return c.gatewayBase + cid
}

// post performs the single round trip shared by both pin endpoints.
func (c *Client) post(ctx context.Context, path, contentType string, body io.Reader) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return failure(fmt.Sprintf("create request: %v", err))
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("pinata_api_key", c.apiKey)
	req.Header.Set("pinata_secret_api_key", c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("path", path).Msg("pin request failed")
		return failure(err.Error())
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return failure(fmt.Sprintf("read response: %v", err))
	}

	if resp.StatusCode != http.StatusOK {
		msg := serviceError(respBody)
		c.logger.Error().Int("status", resp.StatusCode).Str("path", path).Str("message", msg).Msg("pin rejected by service")
		return failure(msg)
	}

	var pinResp pinResponse
	if err := json.Unmarshal(respBody, &pinResp); err != nil {
		return failure(fmt.Sprintf("decode response: %v", err))
	}
	if pinResp.IpfsHash == "" {
		return failure("service response missing content identifier")
	}
	if err := ValidateCID(pinResp.IpfsHash); err != nil {
		return failure(fmt.Sprintf("service returned malformed content identifier: %v", err))
	}

	uri := c.GatewayURI(pinResp.IpfsHash)
	c.logger.Debug().Str("path", path).Str("uri", uri).Msg("pinned")
	return Result{Success: true, URI: uri}
}

// serviceError extracts the failure text from the service's error body,
// falling back to the raw body.
func serviceError(body []byte) string {
	var envelope errorBody
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Error) > 0 {
		// The error field is either a bare string or a nested object
		// with a "details" string.
		var s string
		if json.Unmarshal(envelope.Error, &s) == nil && s != "" {
			return s
		}
		var nested struct {
			Details string `json:"details"`
			Reason  string `json:"reason"`
		}
		if json.Unmarshal(envelope.Error, &nested) == nil {
			if nested.Details != "" {
				return nested.Details
			}
			if nested.Reason != "" {
				return nested.Reason
			}
		}
	}
	return strings.TrimSpace(string(body))
}

func failure(msg string) Result {
	return Result{Success: false, Message: msg}
}
