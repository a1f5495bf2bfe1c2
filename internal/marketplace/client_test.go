package marketplace

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCollections(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections" {
			t.Errorf("path = %s, want /collections", r.URL.Path)
		}
		if got := r.URL.Query().Get("limit"); got != "9" {
			t.Errorf("limit = %s, want 9", got)
		}
		if got := r.Header.Get("x-api-key"); got != "test-key" {
			t.Errorf("x-api-key = %s, want test-key", got)
		}
		w.Write([]byte(`{
			"collections": [
				{"name": "Good", "owner": "0xaaaa", "image_url": "https://img/1.png",
				 "opensea_url": "https://opensea.io/collection/good",
				 "contracts": [{"address": "0xc1", "chain": "ethereum"}]},
				{"name": "NoImage", "owner": "0xbbbb", "image_url": "",
				 "opensea_url": "", "contracts": []},
				{"name": "NoOwner", "owner": "ens-name", "image_url": "https://img/2.png",
				 "opensea_url": "", "contracts": []}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(Options{BaseURL: server.URL, APIKey: "test-key"})
	collections, err := client.Collections(context.Background(), 9)
	if err != nil {
		t.Fatalf("Collections() error = %v", err)
	}

	// Rows without an image or an on-chain owner are dropped.
	if len(collections) != 1 {
		t.Fatalf("got %d collections, want 1", len(collections))
	}
	if collections[0].Name != "Good" {
		t.Errorf("name = %s, want Good", collections[0].Name)
	}
	if len(collections[0].Contracts) != 1 || collections[0].Contracts[0].Chain != "ethereum" {
		t.Errorf("contracts = %+v", collections[0].Contracts)
	}
}

func TestAccountNFTs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		want := "/chain/ethereum/account/0xaaaa/nfts"
		if r.URL.Path != want {
			t.Errorf("path = %s, want %s", r.URL.Path, want)
		}
		w.Write([]byte(`{
			"nfts": [
				{"identifier": "7", "name": "Sunset", "image_url": "https://img/7.png",
				 "token_standard": "erc721", "contract": "0xc1"}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(Options{BaseURL: server.URL})
	nfts, err := client.AccountNFTs(context.Background(), "ethereum", "0xaaaa")
	if err != nil {
		t.Fatalf("AccountNFTs() error = %v", err)
	}
	if len(nfts) != 1 {
		t.Fatalf("got %d nfts, want 1", len(nfts))
	}
	if nfts[0].Identifier != "7" || nfts[0].TokenStandard != "erc721" {
		t.Errorf("nft = %+v", nfts[0])
	}
}

func TestAccountNFTs_MissingArgs(t *testing.T) {
	client := NewClient(Options{})
	if _, err := client.AccountNFTs(context.Background(), "", "0xaaaa"); err == nil {
		t.Error("expected error for missing chain")
	}
	if _, err := client.AccountNFTs(context.Background(), "ethereum", ""); err == nil {
		t.Error("expected error for missing address")
	}
}

func TestCollections_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "invalid api key"}`))
	}))
	defer server.Close()

	client := NewClient(Options{BaseURL: server.URL, APIKey: "bad"})
	if _, err := client.Collections(context.Background(), 9); err == nil {
		t.Fatal("expected error for rejected request")
	}
}
