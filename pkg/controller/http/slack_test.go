package http

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
)

func signRequest(secret string, ts string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "v0:%s:%s", ts, body)
	return "v0=" + hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySlackSignature(t *testing.T) {
	const secret = "test-signing-secret"
	body := []byte(`{"type":"event_callback"}`)
	ts := fmt.Sprintf("%d", time.Now().Unix())

	t.Run("valid signature", func(t *testing.T) {
		sig := signRequest(secret, ts, body)
		gt.NoError(t, verifySlackSignature(secret, ts, sig, body))
	})

	t.Run("wrong secret", func(t *testing.T) {
		sig := signRequest("other-secret", ts, body)
		gt.Error(t, verifySlackSignature(secret, ts, sig, body))
	})

	t.Run("tampered body", func(t *testing.T) {
		sig := signRequest(secret, ts, body)
		gt.Error(t, verifySlackSignature(secret, ts, sig, []byte(`{"type":"other"}`)))
	})

	t.Run("stale timestamp", func(t *testing.T) {
		old := fmt.Sprintf("%d", time.Now().Add(-10*time.Minute).Unix())
		sig := signRequest(secret, old, body)
		gt.Error(t, verifySlackSignature(secret, old, sig, body))
	})

	t.Run("missing headers", func(t *testing.T) {
		gt.Error(t, verifySlackSignature(secret, "", "v0=abc", body))
		gt.Error(t, verifySlackSignature(secret, ts, "", body))
	})
}

func TestSlackSignatureMiddleware(t *testing.T) {
	const secret = "test-signing-secret"
	body := []byte(`{"hello":"world"}`)

	var gotBody []byte
	handler := SlackSignatureMiddleware(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error
		gotBody, err = io.ReadAll(r.Body)
		gt.NoError(t, err)
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("signed request passes with body restored", func(t *testing.T) {
		ts := fmt.Sprintf("%d", time.Now().Unix())
		req := httptest.NewRequest(http.MethodPost, "/hooks/slack/event", bytes.NewReader(body))
		req.Header.Set("X-Slack-Request-Timestamp", ts)
		req.Header.Set("X-Slack-Signature", signRequest(secret, ts, body))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		gt.Value(t, rec.Code).Equal(http.StatusOK)
		gt.Value(t, string(gotBody)).Equal(string(body))
	})

	t.Run("unsigned request rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/hooks/slack/event", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		gt.Value(t, rec.Code).Equal(http.StatusUnauthorized)
	})
}

func TestSlackURLVerification(t *testing.T) {
	h := NewSlackEventHandler(nil)

	body := `{"type":"url_verification","challenge":"challenge-token-123"}`
	req := httptest.NewRequest(http.MethodPost, "/hooks/slack/event", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	gt.Value(t, rec.Code).Equal(http.StatusOK)
	gt.Value(t, rec.Body.String()).Equal("challenge-token-123")
}

func TestSplitTarget(t *testing.T) {
	t.Run("plain mention", func(t *testing.T) {
		target, rest := splitTarget("<@U123ABC> repeated spam")
		gt.Value(t, string(target)).Equal("U123ABC")
		gt.Value(t, rest).Equal("repeated spam")
	})

	t.Run("mention with display name", func(t *testing.T) {
		target, rest := splitTarget("<@U123ABC|alice> harassment")
		gt.Value(t, string(target)).Equal("U123ABC")
		gt.Value(t, rest).Equal("harassment")
	})

	t.Run("no mention", func(t *testing.T) {
		target, rest := splitTarget("just a reason")
		gt.Value(t, string(target)).Equal("")
		gt.Value(t, rest).Equal("just a reason")
	})
}

func TestParseSlackTimestamp(t *testing.T) {
	t.Run("microsecond timestamp", func(t *testing.T) {
		ts := parseSlackTimestamp("1700000000.123456")
		gt.Value(t, ts.Unix()).Equal(int64(1700000000))
		gt.Value(t, ts.Nanosecond()).Equal(123456000)
	})

	t.Run("malformed input yields zero time", func(t *testing.T) {
		gt.Value(t, parseSlackTimestamp("not-a-timestamp").IsZero()).Equal(true)
	})
}
