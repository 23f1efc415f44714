package repository

import (
	"os"
	"path/filepath"
	"testing"

	"shopgifter/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadAccountsFileJSON(t *testing.T) {
	path := writeFile(t, "accounts.json", `[
		{"accountId": "aaa", "deviceId": "`+encodeSecret("dev-a")+`", "secret": "`+encodeSecret("sec-a")+`", "displayName": "Bot A"},
		{"accountId": "bbb", "deviceId": "`+encodeSecret("dev-b")+`", "secret": "`+encodeSecret("sec-b")+`"}
	]`)

	accounts, err := ReadAccountsFile(path)

	require.NoError(t, err)
	assert.Equal(t, []model.BotAccount{
		{AccountID: "aaa", DeviceID: "dev-a", Secret: "sec-a", DisplayName: "Bot A"},
		{AccountID: "bbb", DeviceID: "dev-b", Secret: "sec-b"},
	}, accounts)
}

func TestReadAccountsFileYAML(t *testing.T) {
	path := writeFile(t, "accounts.yml", `
- accountId: aaa
  deviceId: `+encodeSecret("dev-a")+`
  secret: `+encodeSecret("sec-a")+`
`)

	accounts, err := ReadAccountsFile(path)

	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "dev-a", accounts[0].DeviceID)
	assert.Equal(t, "sec-a", accounts[0].Secret)
}

func TestReadAccountsFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"malformed", `{not json`, "failed to parse"},
		{"missing id", `[{"deviceId": "ZGV2", "secret": "c2Vj"}]`, "accountId is required"},
		{"bad device id", `[{"accountId": "aaa", "deviceId": "%%%", "secret": "c2Vj"}]`, "deviceId is not valid base64"},
		{"empty secret", `[{"accountId": "aaa", "deviceId": "ZGV2", "secret": ""}]`, "secret is not valid base64"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadAccountsFile(writeFile(t, "accounts.json", tt.content))
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestReadAccountsFileMissing(t *testing.T) {
	_, err := ReadAccountsFile(filepath.Join(t.TempDir(), "nope.json"))

	assert.ErrorContains(t, err, "failed to read accounts file")
}
