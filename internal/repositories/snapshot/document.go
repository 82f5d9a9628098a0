package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/pinledger/internal/models"
	"github.com/shopspring/decimal"
)

const documentVersion = 1

// document is the JSON layout of the data file.
//
// Version 0 documents come from the first ATM release: the hash lives under
// "pin", the balance is a JSON number and history entries are plain strings.
// They are read transparently; writes always produce the current version.
type document struct {
	Version        int                  `json:"version"`
	Balance        decimal.Decimal      `json:"balance"`
	CredentialHash string               `json:"credential_hash,omitempty"`
	LegacyPIN      *string              `json:"pin,omitempty"`
	Transactions   []models.Transaction `json:"transactions"`
}

func encodeDocument(a models.Account) ([]byte, error) {
	doc := document{
		Version:        documentVersion,
		Balance:        a.Balance,
		CredentialHash: a.CredentialHash,
		Transactions:   a.Transactions,
	}
	if doc.Transactions == nil {
		doc.Transactions = []models.Transaction{}
	}
	return json.MarshalIndent(doc, "", "  ")
}

func decodeDocument(data []byte) (*models.Account, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if b, ok := raw["balance"]; !ok || bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return nil, fmt.Errorf("missing balance")
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Version > documentVersion {
		return nil, fmt.Errorf("unsupported document version %d", doc.Version)
	}

	hash := doc.CredentialHash
	if hash == "" && doc.LegacyPIN != nil {
		hash = *doc.LegacyPIN
	}

	return &models.Account{
		Balance:        doc.Balance,
		CredentialHash: hash,
		Transactions:   doc.Transactions,
	}, nil
}
