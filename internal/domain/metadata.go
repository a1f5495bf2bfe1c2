package domain

import (
	"errors"
	"strings"
)

// Validation errors for mint input and metadata construction.
var (
	ErrEmptyName        = errors.New("name is required")
	ErrEmptyDescription = errors.New("description is required")
	ErrNoImage          = errors.New("image asset is required")
	ErrNoImageURI       = errors.New("image URI must reference a pinned asset")
)

// TokenMetadata is the JSON metadata document pinned alongside the image
// and referenced by the minted token's URI.
type TokenMetadata struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"` // gateway URI of a successfully pinned asset
}

// Validate checks that a mint input is complete. Any missing field
// aborts the attempt before a single network call is made. A field of
// nothing but whitespace is as missing as an empty one.
func (in MintInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(in.Description) == "" {
		return ErrEmptyDescription
	}
	if len(in.Image) == 0 {
		return ErrNoImage
	}
	return nil
}

// NewTokenMetadata builds the metadata document for a pinned image.
// imageURI must be the URI of a successful pin; the invariant holds
// because this is only reachable after the media pin stage succeeds.
func NewTokenMetadata(name, description, imageURI string) (TokenMetadata, error) {
	if imageURI == "" {
		return TokenMetadata{}, ErrNoImageURI
	}
	return TokenMetadata{
		Name:        name,
		Description: description,
		Image:       imageURI,
	}, nil
}
