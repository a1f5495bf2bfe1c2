package explorer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"nft-minter/internal/domain"
)

func TestTransactionsByAddress(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for k, v := range r.URL.Query() {
			gotQuery[k] = v[0]
		}
		w.Write([]byte(`{
			"status": "1",
			"message": "OK",
			"result": [
				{"hash": "0xaaa", "blockNumber": "120", "timeStamp": "1704067200",
				 "from": "0x1111", "to": "0x2222", "value": "1000000000000000000",
				 "input": "0x", "gasUsed": "21000", "gasPrice": "30000000000", "isError": "0"},
				{"hash": "0xbbb", "blockNumber": "100", "timeStamp": "1704000000",
				 "from": "0x1111", "to": "0x3333", "value": "0",
				 "input": "0xd0def521000000", "gasUsed": "90000", "gasPrice": "30000000000", "isError": "0"}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(Options{BaseURL: server.URL, APIKey: "test-key"})
	txs, err := client.TransactionsByAddress(context.Background(), "0x1111", 50)
	if err != nil {
		t.Fatalf("TransactionsByAddress() error = %v", err)
	}

	if gotQuery["module"] != "account" || gotQuery["action"] != "txlist" {
		t.Errorf("module/action = %s/%s", gotQuery["module"], gotQuery["action"])
	}
	if gotQuery["address"] != "0x1111" {
		t.Errorf("address = %s", gotQuery["address"])
	}
	if gotQuery["startblock"] != "50" {
		t.Errorf("startblock = %s, want 50", gotQuery["startblock"])
	}
	if gotQuery["apikey"] != "test-key" {
		t.Errorf("apikey = %s", gotQuery["apikey"])
	}
	if gotQuery["sort"] != "desc" {
		t.Errorf("sort = %s", gotQuery["sort"])
	}

	if len(txs) != 2 {
		t.Fatalf("got %d transactions, want 2", len(txs))
	}
	if txs[0].Hash != "0xaaa" || txs[0].Value != "1000000000000000000" {
		t.Errorf("first tx = %+v", txs[0])
	}
}

func TestNFTTransfersByAddress(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("action"); got != "tokennfttx" {
			t.Errorf("action = %s, want tokennfttx", got)
		}
		w.Write([]byte(`{
			"status": "1",
			"message": "OK",
			"result": [
				{"hash": "0xccc", "blockNumber": "130", "timeStamp": "1704070000",
				 "from": "0x0000000000000000000000000000000000000000", "to": "0x1111",
				 "tokenID": "7", "tokenName": "MyNFT", "tokenSymbol": "MNFT"}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(Options{BaseURL: server.URL})
	transfers, err := client.NFTTransfersByAddress(context.Background(), "0x1111", 0)
	if err != nil {
		t.Fatalf("NFTTransfersByAddress() error = %v", err)
	}
	if len(transfers) != 1 {
		t.Fatalf("got %d transfers, want 1", len(transfers))
	}
	if transfers[0].TokenID != "7" || transfers[0].TokenName != "MyNFT" {
		t.Errorf("transfer = %+v", transfers[0])
	}
}

func TestTransactionsByAddress_NoTransactionsFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "0", "message": "No transactions found", "result": []}`))
	}))
	defer server.Close()

	client := NewClient(Options{BaseURL: server.URL})
	txs, err := client.TransactionsByAddress(context.Background(), "0x1111", 0)
	if err != nil {
		t.Fatalf("TransactionsByAddress() error = %v, want nil for empty history", err)
	}
	if len(txs) != 0 {
		t.Errorf("got %d transactions, want 0", len(txs))
	}
}

func TestTransactionsByAddress_ExplorerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "0", "message": "Invalid API Key", "result": []}`))
	}))
	defer server.Close()

	client := NewClient(Options{BaseURL: server.URL, APIKey: "bad"})
	if _, err := client.TransactionsByAddress(context.Background(), "0x1111", 0); err == nil {
		t.Fatal("expected error for explorer rejection")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		tx   Transaction
		want domain.TransferKind
	}{
		{"contract creation", Transaction{To: "", Input: "0x60806040"}, domain.TransferKindContractCreation},
		{"plain transfer", Transaction{To: "0x2222", Input: "0x"}, domain.TransferKindTransfer},
		{"empty input", Transaction{To: "0x2222", Input: ""}, domain.TransferKindTransfer},
		{"erc20 transfer", Transaction{To: "0x2222", Input: "0xa9059cbb0000"}, domain.TransferKindTransfer},
		{"mint uint256", Transaction{To: "0x2222", Input: "0x40c10f190000"}, domain.TransferKindMint},
		{"mint uri", Transaction{To: "0x2222", Input: "0xd0def5210000"}, domain.TransferKindMint},
		{"other contract call", Transaction{To: "0x2222", Input: "0xdeadbeef"}, domain.TransferKindMint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.tx); got != tt.want {
				t.Errorf("Classify() = %s, want %s", got, tt.want)
			}
		})
	}
}
