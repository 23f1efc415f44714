package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"shopgifter/internal/model"

	"gopkg.in/yaml.v3"
)

// legacyAccount is one entry of an accounts file. Device id and secret are
// base64 encoded.
type legacyAccount struct {
	AccountID   string `json:"accountId" yaml:"accountId"`
	DeviceID    string `json:"deviceId" yaml:"deviceId"`
	Secret      string `json:"secret" yaml:"secret"`
	DisplayName string `json:"displayName,omitempty" yaml:"displayName,omitempty"`
}

// ReadAccountsFile parses a JSON or YAML accounts file. The format is picked
// by extension; anything other than .yaml or .yml is read as JSON.
func ReadAccountsFile(path string) ([]model.BotAccount, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read accounts file: %w", err)
	}

	var entries []legacyAccount
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &entries)
	default:
		err = json.Unmarshal(data, &entries)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse accounts file %s: %w", path, err)
	}

	accounts := make([]model.BotAccount, 0, len(entries))
	for i, e := range entries {
		if e.AccountID == "" {
			return nil, fmt.Errorf("entry %d: accountId is required", i)
		}
		deviceID, err := decodeSecret(e.DeviceID)
		if err != nil || deviceID == "" {
			return nil, fmt.Errorf("entry %d (%s): deviceId is not valid base64", i, e.AccountID)
		}
		secret, err := decodeSecret(e.Secret)
		if err != nil || secret == "" {
			return nil, fmt.Errorf("entry %d (%s): secret is not valid base64", i, e.AccountID)
		}
		accounts = append(accounts, model.BotAccount{
			AccountID:   e.AccountID,
			DeviceID:    deviceID,
			Secret:      secret,
			DisplayName: e.DisplayName,
		})
	}
	return accounts, nil
}
