package pipeline_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/madhu-yavar/table-extraction/internal/document"
	"github.com/madhu-yavar/table-extraction/internal/pipeline"
	"github.com/madhu-yavar/table-extraction/internal/reference"
)

// scriptedClient answers with canned model output keyed by a marker found in
// the prompt, exercising the exported pipeline surface end to end.
type scriptedClient struct {
	responses map[string]string
}

func (c *scriptedClient) Invoke(_ context.Context, prompt string) (string, error) {
	for marker, response := range c.responses {
		if strings.Contains(prompt, marker) {
			return response, nil
		}
	}
	return "", fmt.Errorf("no scripted response for prompt")
}

func TestEndToEndSingleDocument(t *testing.T) {
	vendors, err := reference.LoadCSV(
		strings.NewReader("Payee\nCoffee Shop\nOverdraft Fee\n"),
		reference.VendorColumn, "vendors.csv")
	if err != nil {
		t.Fatal(err)
	}

	client := &scriptedClient{responses: map[string]string{
		"STMT PAGE ONE": "```json\n" + `[
			{"Date":"02/15/2024","Description":"POS PURCHASE COFFEE SHOP #12","Deposits_Credits":0,"Withdrawals_Debits":"$4.50","Vendor Name":"Coffee Shop"},
			{"Date":"13/45/2023","Description":"PHANTOM ROW","Deposits_Credits":0,"Withdrawals_Debits":1,"Vendor Name":"Coffee Shop"},
		]` + "\n```",
		"STMT PAGE TWO": `Sure, here you go: [
			{"Date":"02/16/2024","Description":"OVERDRAFT FEE","Deposits_Credits":null,"Withdrawals_Debits":35,"Vendor Name":"Overdraft Fee"}]`,
	}}

	doc := &document.Pages{
		Name:       "feb.pdf",
		TotalPages: 2,
		Pages: []document.PageText{
			{PageNumber: 1, Text: "STMT PAGE ONE"},
			{PageNumber: 2, Text: "STMT PAGE TWO"},
		},
	}

	p := pipeline.New(client, vendors)
	result, err := p.ProcessDocument(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Transactions) != 2 {
		t.Fatalf("got %d transactions, want 2", len(result.Transactions))
	}
	if result.Dropped != 1 {
		t.Errorf("Dropped = %d, want 1 (invalid date)", result.Dropped)
	}

	first := result.Transactions[0]
	if first.Date != "02/15/2024" || first.WithdrawalsDebits != 4.5 || first.VendorName != "Coffee Shop" {
		t.Errorf("first = %+v", first)
	}
	second := result.Transactions[1]
	if second.Description != "OVERDRAFT FEE" || second.DepositsCredits != 0 {
		t.Errorf("second = %+v", second)
	}
	if result.PagesFailed != 0 {
		t.Errorf("PagesFailed = %d", result.PagesFailed)
	}
}
