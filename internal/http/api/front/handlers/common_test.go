package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/InvoiceDrafter/internal/draft"
	"github.com/router-for-me/InvoiceDrafter/internal/schema"
	"github.com/router-for-me/InvoiceDrafter/internal/settings"
)

type stubPipeline struct {
	err error
}

func (s stubPipeline) LoadDraft(context.Context) (draft.DraftView, error) {
	return draft.DraftView{}, s.err
}

func (s stubPipeline) SaveInvoice(context.Context, schema.InvoiceDraft) (draft.SavedInvoice, error) {
	return draft.SavedInvoice{}, s.err
}

func (s stubPipeline) CurrentSequence(context.Context) (int64, error) {
	return 0, s.err
}

func (s stubPipeline) LoadBankProfile(context.Context) (draft.ProfileView[schema.BankProfile], error) {
	return draft.ProfileView[schema.BankProfile]{}, s.err
}

func (s stubPipeline) LoadAddressProfile(context.Context) (draft.ProfileView[schema.AddressProfile], error) {
	return draft.ProfileView[schema.AddressProfile]{}, s.err
}

func (s stubPipeline) LoadSystemPreferences(context.Context) (draft.ProfileView[schema.SystemPreferences], error) {
	return draft.ProfileView[schema.SystemPreferences]{}, s.err
}

func (s stubPipeline) SaveBankProfile(_ context.Context, p schema.BankProfile) (schema.BankProfile, error) {
	return p, s.err
}

func (s stubPipeline) SaveAddressProfile(_ context.Context, p schema.AddressProfile) (schema.AddressProfile, error) {
	return p, s.err
}

func (s stubPipeline) SaveSystemPreferences(_ context.Context, p schema.SystemPreferences) (schema.SystemPreferences, error) {
	return p, s.err
}

func serve(t *testing.T, handler gin.HandlerFunc, method, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Handle(method, "/x", handler)
	req := httptest.NewRequest(method, "/x", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRespondErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
		body string
	}{
		{"validation", &schema.ValidationError{Kind: schema.KindBankProfile, Fields: schema.FieldErrors{"swiftCode": "bad"}}, http.StatusUnprocessableEntity, `"swiftCode":"bad"`},
		{"unavailable", fmt.Errorf("%w: no table", settings.ErrStoreUnavailable), http.StatusServiceUnavailable, "unavailable"},
		{"closed", settings.ErrClosed, http.StatusServiceUnavailable, "unavailable"},
		{"persist", fmt.Errorf("sequence: advance to 1: %w", settings.ErrPersistFailed), http.StatusInternalServerError, "save failed"},
		{"export", fmt.Errorf("%w: disk full", draft.ErrExportFailed), http.StatusInternalServerError, "export failed"},
		{"malformed", settings.ErrMalformedValue, http.StatusInternalServerError, "unreadable"},
		{"other", errors.New("boom"), http.StatusInternalServerError, "internal error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewDraftHandler(stubPipeline{err: tc.err})
			rec := serve(t, h.Show, http.MethodGet, "")
			if rec.Code != tc.want {
				t.Fatalf("expected status %d, got %d", tc.want, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tc.body) {
				t.Fatalf("expected body to contain %q, got %s", tc.body, rec.Body.String())
			}
		})
	}
}

func TestSaveRejectsMalformedJSON(t *testing.T) {
	h := NewSettingsHandler(stubPipeline{})
	rec := serve(t, h.PutBank, http.MethodPut, "{not json")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestSaveEchoesRecord(t *testing.T) {
	h := NewSettingsHandler(stubPipeline{})
	rec := serve(t, h.PutSystem, http.MethodPut, `{"theme":"dark"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"theme":"dark"`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}
