package handler

import (
	"testing"

	"github.com/menuhound/menuhound/models"
)

func testHandler() *Handler {
	sites := []models.Site{
		{Name: "korzo", URL: "https://example-korzo.sk/menu", Enabled: true},
		{Name: "zaba", URL: "https://example-zaba.sk/", Enabled: false},
	}
	return New(nil, sites, nil, nil)
}

func TestResolveSite(t *testing.T) {
	h := testHandler()

	tests := []struct {
		name     string
		req      models.ScrapeRequest
		wantErr  bool
		wantName string
		wantURL  string
	}{
		{
			name:     "configured site by name",
			req:      models.ScrapeRequest{Site: "korzo"},
			wantName: "korzo",
			wantURL:  "https://example-korzo.sk/menu",
		},
		{
			name:     "ad-hoc url",
			req:      models.ScrapeRequest{URL: "https://new-place.sk/obedy"},
			wantName: "new-place.sk",
			wantURL:  "https://new-place.sk/obedy",
		},
		{
			name:    "unknown site name",
			req:     models.ScrapeRequest{Site: "nobody"},
			wantErr: true,
		},
		{
			name:    "both site and url",
			req:     models.ScrapeRequest{Site: "korzo", URL: "https://x.sk"},
			wantErr: true,
		},
		{
			name:    "neither site nor url",
			req:     models.ScrapeRequest{},
			wantErr: true,
		},
		{
			name:    "relative url",
			req:     models.ScrapeRequest{URL: "/obedy"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			site, errDetail := h.resolveSite(tt.req)
			if (errDetail != nil) != tt.wantErr {
				t.Fatalf("resolveSite(%+v) error = %v, wantErr %v", tt.req, errDetail, tt.wantErr)
			}
			if tt.wantErr {
				if errDetail.Code != models.ErrCodeInvalidInput {
					t.Errorf("error code = %q, want %q", errDetail.Code, models.ErrCodeInvalidInput)
				}
				return
			}
			if site.Name != tt.wantName {
				t.Errorf("site name = %q, want %q", site.Name, tt.wantName)
			}
			if site.URL != tt.wantURL {
				t.Errorf("site url = %q, want %q", site.URL, tt.wantURL)
			}
			if !site.Enabled {
				t.Error("resolved site is not enabled")
			}
		})
	}
}
