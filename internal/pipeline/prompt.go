package pipeline

import (
	"strings"
)

// Prompt builders are pure functions of their inputs. No I/O happens here,
// so the exact instructions the model sees are testable without a backend.

// BuildExtractionPrompt renders the single-call extraction+categorization
// instruction for one page of statement text.
func BuildExtractionPrompt(pageText string, vendors []string) string {
	var b strings.Builder

	b.WriteString("Extract structured transactions from the bank statement and match them to vendors.\n\n")
	b.WriteString("STRICT RULES:\n")
	b.WriteString("- Use vendor names ONLY from this list:\n")
	writeReferenceList(&b, vendors)
	b.WriteString("- Do NOT assume vendors. If no match is found, return \"" + UnknownVendor + "\".\n")
	b.WriteString("- Do NOT modify transaction descriptions; copy them verbatim from the statement.\n")
	b.WriteString("- Return pure JSON output ONLY. No explanations, no additional text.\n\n")

	b.WriteString("Each object must have these EXACT keys:\n")
	b.WriteString("- \"Date\": string, format \"MM/DD/YYYY\"\n")
	b.WriteString("- \"Description\": string, verbatim transaction details\n")
	b.WriteString("- \"Deposits_Credits\": number (0 if empty)\n")
	b.WriteString("- \"Withdrawals_Debits\": number (0 if empty)\n")
	b.WriteString("- \"Vendor Name\": string, matched vendor from the list or \"" + UnknownVendor + "\"\n\n")

	b.WriteString("Example:\n")
	b.WriteString(extractionExample)
	b.WriteString("\n\nStatement Text:\n")
	b.WriteString(pageText)
	b.WriteString("\n\nOutput must begin with \"[\" and end with \"]\".\n")

	return b.String()
}

// BuildExtractOnlyPrompt renders step 1 of the two-step variant: transaction
// extraction with no vendor matching.
func BuildExtractOnlyPrompt(pageText string) string {
	var b strings.Builder

	b.WriteString("Analyze this bank statement text and extract transactions.\n\n")
	b.WriteString("Return a JSON array of objects with these EXACT keys:\n")
	b.WriteString("- \"Date\": string, format \"MM/DD/YYYY\"\n")
	b.WriteString("- \"Description\": string, verbatim transaction details\n")
	b.WriteString("- \"Deposits_Credits\": number (0 if empty)\n")
	b.WriteString("- \"Withdrawals_Debits\": number (0 if empty)\n\n")
	b.WriteString("Do NOT modify transaction descriptions.\n")
	b.WriteString("Return pure JSON output ONLY. No explanations, no additional text.\n\n")

	b.WriteString("Example:\n")
	b.WriteString(extractOnlyExample)
	b.WriteString("\n\nStatement Text:\n")
	b.WriteString(pageText)
	b.WriteString("\n")

	return b.String()
}

// BuildClassifyPrompt renders step 2 of the two-step variant: vendor and
// account classification for the already-extracted descriptions.
func BuildClassifyPrompt(descriptions, vendors, accounts []string) string {
	var b strings.Builder

	b.WriteString("Understand each transaction description and match it to the exact vendor and account from the lists below.\n\n")
	b.WriteString("Use this Vendor List:\n")
	writeReferenceList(&b, vendors)
	b.WriteString("Use this Chart of Accounts:\n")
	writeReferenceList(&b, accounts)

	b.WriteString("Rules:\n")
	b.WriteString("1. Match vendors and accounts EXACTLY to the provided lists.\n")
	b.WriteString("2. Do NOT assume or invent vendors.\n")
	b.WriteString("3. If no match is found, use \"" + UnknownVendor + "\" for Vendor Name and \"" + OtherExpensesAccount + "\" for Account.\n")
	b.WriteString("4. Return pure JSON output ONLY.\n\n")

	b.WriteString("Return a JSON array of objects with these EXACT keys:\n")
	b.WriteString("- \"Description\": string, the transaction description unchanged\n")
	b.WriteString("- \"Vendor Name\": string from the Vendor List only\n")
	b.WriteString("- \"Account\": string from the Chart of Accounts only\n\n")

	b.WriteString("Example:\n")
	b.WriteString(classifyExample)
	b.WriteString("\n\nTransactions:\n")
	for _, d := range descriptions {
		b.WriteString("- ")
		b.WriteString(d)
		b.WriteString("\n")
	}

	return b.String()
}

// BuildAnalyticsPrompt embeds the serialized record set verbatim and appends
// the caller's question.
func BuildAnalyticsPrompt(recordsJSON, question string) string {
	var b strings.Builder
	b.WriteString("Analyze the following transaction data:\n")
	b.WriteString(recordsJSON)
	b.WriteString("\nUser Question: ")
	b.WriteString(question)
	return b.String()
}

// writeReferenceList serializes one entry per line so the model cannot claim
// ignorance of an allowed value.
func writeReferenceList(b *strings.Builder, values []string) {
	for _, v := range values {
		b.WriteString("- ")
		b.WriteString(v)
		b.WriteString("\n")
	}
	if len(values) == 0 {
		b.WriteString("(empty list)\n")
	}
	b.WriteString("\n")
}

const extractionExample = `[
    {
        "Date": "11/01/2023",
        "Description": "Overdraft Fee for a Transaction Posted on 10/31 $143.00 Dell",
        "Deposits_Credits": 0,
        "Withdrawals_Debits": 35.00,
        "Vendor Name": "Overdraft Fee"
    },
    {
        "Date": "11/01/2023",
        "Description": "ATM Cash Deposit on 11/01 1530 Heitman St Fort Myers FL",
        "Deposits_Credits": 600.00,
        "Withdrawals_Debits": 0,
        "Vendor Name": "ATM"
    }
]`

const extractOnlyExample = `[
    {
        "Date": "11/01/2023",
        "Description": "Overdraft Fee for Transaction",
        "Deposits_Credits": 0,
        "Withdrawals_Debits": 35.00
    },
    {
        "Date": "11/01/2023",
        "Description": "ATM Cash Deposit",
        "Deposits_Credits": 600.00,
        "Withdrawals_Debits": 0
    }
]`

const classifyExample = `[
    {
        "Description": "Overdraft Fee for Transaction",
        "Vendor Name": "Overdraft Fee",
        "Account": "Bank Charges & Fees"
    },
    {
        "Description": "ATM Cash Deposit",
        "Vendor Name": "ATM",
        "Account": "Cash on hand"
    }
]`
