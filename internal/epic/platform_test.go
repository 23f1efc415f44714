package epic

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"shopgifter/internal/cache"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap/zaptest"
)

const (
	testClientToken       = "Y2xpZW50OnNlY3JldA=="
	testDeviceClientToken = "ZGV2aWNlOnNlY3JldA=="
	botAccountID          = "b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0"
	newAccountID          = "c0ffeec0ffeec0ffeec0ffeec0ffee00"
)

// fakePlatform imitates the account and gift services closely enough for the
// client's request shapes to be checked.
type fakePlatform struct {
	mu sync.Mutex

	devices      map[string]string // account id -> "deviceID:secret"
	names        map[string]string // lower-cased display name -> account id
	pendingPolls int

	giftStatus int
	giftBody   string
	giftDelay  time.Duration

	lookups int
	gifts   []giftCall
}

type giftCall struct {
	AccountID     string
	Authorization string
	ProfileID     string
	Payload       map[string]interface{}
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		devices:    map[string]string{botAccountID: "device-1:secret-1"},
		names:      map[string]string{"someplayer": "0123456789abcdef0123456789abcdef"},
		giftStatus: http.StatusOK,
		giftBody:   `{"profileRevision":3,"profileId":"common_core","profileChanges":[],"notifications":[]}`,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func platformError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"errorCode":        code,
		"errorMessage":     message,
		"numericErrorCode": status * 10,
	})
}

func (p *fakePlatform) router() http.Handler {
	r := chi.NewRouter()

	r.Route("/account/api", func(r chi.Router) {
		r.Post("/oauth/token", p.token)
		r.Post("/oauth/deviceAuthorization", p.requireBearer("client-token", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"device_code":               "dc-1",
				"user_code":                 "ABCD-EFGH",
				"verification_uri_complete": "https://www.epicgames.com/activate?userCode=ABCD-EFGH",
				"expires_in":                600,
				"interval":                  10,
			})
		}))
		r.Get("/oauth/exchange", func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
				platformError(w, http.StatusUnauthorized, "errors.com.epicgames.common.authentication.authentication_failed", "no token")
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"code": "exchange-1"})
		})

		r.Route("/public/account", func(r chi.Router) {
			r.Get("/displayName/{name}", p.displayName)
			r.Get("/{accountID}", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, map[string]string{
					"id":    chi.URLParam(r, "accountID"),
					"name":  "Botty",
					"email": "botty@example.com",
				})
			})
			r.Post("/{accountID}/deviceAuth", p.requireBearer("device-client-token", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, map[string]string{
					"deviceId":  "device-new",
					"secret":    "secret-new",
					"accountId": chi.URLParam(r, "accountID"),
				})
			}))
		})
	})

	r.Post("/fortnite/api/game/v2/profile/{accountID}/client/GiftCatalogEntry", p.gift)
	return r
}

func (p *fakePlatform) requireBearer(token string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+token {
			platformError(w, http.StatusUnauthorized, "errors.com.epicgames.common.authentication.authentication_failed", "bad token")
			return
		}
		next(w, r)
	}
}

func (p *fakePlatform) token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		platformError(w, http.StatusBadRequest, "errors.com.epicgames.common.oauth.invalid_request", err.Error())
		return
	}
	basic := strings.TrimPrefix(r.Header.Get("Authorization"), "Basic ")

	p.mu.Lock()
	defer p.mu.Unlock()

	switch r.PostForm.Get("grant_type") {
	case "device_auth":
		accountID := r.PostForm.Get("account_id")
		want, ok := p.devices[accountID]
		if basic != testDeviceClientToken || !ok || want != r.PostForm.Get("device_id")+":"+r.PostForm.Get("secret") {
			platformError(w, http.StatusUnauthorized, "errors.com.epicgames.account.invalid_account_credentials", "Invalid device auth")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"access_token": "token-" + accountID,
			"account_id":   accountID,
			"expires_at":   "2030-01-01T00:00:00.000Z",
		})
	case "client_credentials":
		if basic != testClientToken {
			platformError(w, http.StatusUnauthorized, "errors.com.epicgames.common.oauth.invalid_client", "bad client")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"access_token": "client-token"})
	case "device_code":
		if p.pendingPolls > 0 {
			p.pendingPolls--
			platformError(w, http.StatusBadRequest, "errors.com.epicgames.account.oauth.authorization_pending", "pending")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"access_token": "session-token", "account_id": newAccountID})
	case "exchange_code":
		if basic != testDeviceClientToken || r.PostForm.Get("exchange_code") != "exchange-1" {
			platformError(w, http.StatusBadRequest, "errors.com.epicgames.account.oauth.exchange_code_not_found", "bad code")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"access_token": "device-client-token", "account_id": newAccountID})
	default:
		platformError(w, http.StatusBadRequest, "errors.com.epicgames.common.oauth.unsupported_grant_type", "unsupported")
	}
}

func (p *fakePlatform) displayName(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	p.mu.Lock()
	p.lookups++
	id, ok := p.names[strings.ToLower(name)]
	p.mu.Unlock()

	if !ok {
		platformError(w, http.StatusNotFound, "errors.com.epicgames.account.account_not_found",
			"Sorry, we couldn't find an account for "+name)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "displayName": name})
}

func (p *fakePlatform) gift(w http.ResponseWriter, r *http.Request) {
	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		platformError(w, http.StatusBadRequest, "errors.com.epicgames.common.json_parse_error", err.Error())
		return
	}

	p.mu.Lock()
	p.gifts = append(p.gifts, giftCall{
		AccountID:     chi.URLParam(r, "accountID"),
		Authorization: r.Header.Get("Authorization"),
		ProfileID:     r.URL.Query().Get("profileId"),
		Payload:       payload,
	})
	status, body, delay := p.giftStatus, p.giftBody, p.giftDelay
	p.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func (p *fakePlatform) lookupCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lookups
}

func (p *fakePlatform) pendingLeft() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pendingPolls
}

func (p *fakePlatform) giftCalls() []giftCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]giftCall(nil), p.gifts...)
}

func newTestClient(t *testing.T, p *fakePlatform, c cache.Cache) *Client {
	t.Helper()
	srv := httptest.NewServer(p.router())
	t.Cleanup(srv.Close)

	return NewClient(Config{
		AccountBaseURL:    srv.URL + "/",
		MCPBaseURL:        srv.URL,
		LoginURL:          "https://www.epicgames.com/id/exchange",
		ClientToken:       testClientToken,
		DeviceClientToken: testDeviceClientToken,
		AuthTimeout:       2 * time.Second,
		PollInterval:      10 * time.Millisecond,
		RecipientCacheTTL: time.Minute,
	}, srv.Client(), c, zaptest.NewLogger(t))
}
