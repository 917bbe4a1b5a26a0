package webhook

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"ticketcrm_backend/internal/inventory"
	"ticketcrm_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

type testMetaConfig struct {
	secret string
	token  string
}

func (c testMetaConfig) GetMetaAppSecret() string   { return c.secret }
func (c testMetaConfig) GetMetaVerifyToken() string { return c.token }

func newTestRouter(p *pipeline, cfg testMetaConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewHandler(p.service, cfg, logger.New("test"))
	router := gin.New()
	router.GET("/api/v1/webhooks/leads", handler.HandleVerification)
	router.POST("/api/v1/webhooks/leads", handler.HandleLeadEvent)
	return router
}

func TestHandleVerification(t *testing.T) {
	p := newPipeline(&fakeMatcher{match: inventory.NoMatch}, &fakeEngine{})
	router := newTestRouter(p, testMetaConfig{secret: "s", token: "tok-123"})

	cases := []struct {
		name       string
		query      url.Values
		wantStatus int
		wantBody   string
	}{
		{
			name: "valid handshake echoes challenge",
			query: url.Values{
				"hub.mode":         {"subscribe"},
				"hub.verify_token": {"tok-123"},
				"hub.challenge":    {"challenge-42"},
			},
			wantStatus: http.StatusOK,
			wantBody:   "challenge-42",
		},
		{
			name: "wrong token",
			query: url.Values{
				"hub.mode":         {"subscribe"},
				"hub.verify_token": {"wrong"},
				"hub.challenge":    {"challenge-42"},
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "missing arguments",
			query:      url.Values{"hub.challenge": {"challenge-42"}},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/webhooks/leads?"+tc.query.Encode(), nil)
			router.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, rec.Code)
			}
			if tc.wantBody != "" && rec.Body.String() != tc.wantBody {
				t.Fatalf("expected body %q, got %q", tc.wantBody, rec.Body.String())
			}
		})
	}
}

func signedEnvelope(t *testing.T, secret string) (body []byte, header string) {
	t.Helper()
	value, err := json.Marshal(vipLeadgenValue())
	if err != nil {
		t.Fatalf("marshal value: %v", err)
	}
	envelope := Envelope{
		Object: "page",
		Entry:  []Entry{{ID: "page-1", Changes: []Change{{Field: leadgenField, Value: value}}}},
	}
	body, err = json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return body, signBody(secret, body)
}

func TestHandleLeadEventRejectsBadSignature(t *testing.T) {
	p := newPipeline(&fakeMatcher{match: inventory.NoMatch}, &fakeEngine{})
	router := newTestRouter(p, testMetaConfig{secret: "s", token: "t"})

	body, _ := signedEnvelope(t, "s")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/leads", bytes.NewReader(body))
	req.Header.Set(SignatureHeader, signBody("other-secret", body))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if len(p.store.created) != 0 {
		t.Fatal("no processing may happen on a bad signature")
	}
}

func TestHandleLeadEventAcknowledgesValidDelivery(t *testing.T) {
	p := newPipeline(&fakeMatcher{match: inventory.NoMatch}, &fakeEngine{})
	router := newTestRouter(p, testMetaConfig{secret: "s", token: "t"})

	body, sig := signedEnvelope(t, "s")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/leads", bytes.NewReader(body))
	req.Header.Set(SignatureHeader, sig)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != ackBody {
		t.Fatalf("expected %q, got %q", ackBody, rec.Body.String())
	}
	if len(p.store.created) != 1 {
		t.Fatalf("expected one lead, got %d", len(p.store.created))
	}
}

func TestHandleLeadEventReturns500OnPersistenceFailure(t *testing.T) {
	p := newPipeline(&fakeMatcher{match: inventory.NoMatch}, &fakeEngine{})
	p.store.err = errors.New("connection refused")
	router := newTestRouter(p, testMetaConfig{secret: "s", token: "t"})

	body, sig := signedEnvelope(t, "s")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/leads", bytes.NewReader(body))
	req.Header.Set(SignatureHeader, sig)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestHandleLeadEventAcknowledgesUnparseablePayload(t *testing.T) {
	p := newPipeline(&fakeMatcher{match: inventory.NoMatch}, &fakeEngine{})
	router := newTestRouter(p, testMetaConfig{secret: "s", token: "t"})

	body := []byte("not json at all")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/leads", bytes.NewReader(body))
	req.Header.Set(SignatureHeader, signBody("s", body))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for a signed but unparseable payload, got %d", rec.Code)
	}
}
