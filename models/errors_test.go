package models

import (
	"errors"
	"testing"
)

func TestMenuErrorFormatting(t *testing.T) {
	wrapped := errors.New("net::ERR_CONNECTION_REFUSED")

	tests := []struct {
		name string
		err  *MenuError
		want string
	}{
		{
			name: "with wrapped cause",
			err:  NewMenuError(ErrCodeNavigation, "navigation to site URL failed", wrapped),
			want: "NAVIGATION_FAILED: navigation to site URL failed: net::ERR_CONNECTION_REFUSED",
		},
		{
			name: "without cause",
			err:  NewMenuError(ErrCodeChallengeUnresolved, "challenge did not clear", nil),
			want: "CHALLENGE_UNRESOLVED: challenge did not clear",
		},
		{
			name: "consent click failure",
			err:  NewMenuError(ErrCodeConsentDismiss, "consent button click failed", nil),
			want: "CONSENT_DISMISS_FAILED: consent button click failed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMenuErrorUnwrap(t *testing.T) {
	cause := errors.New("pool exhausted")
	err := NewMenuError(ErrCodeBrowserCrash, "failed to acquire page", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is does not reach the wrapped cause")
	}
	var me *MenuError
	if !errors.As(err, &me) || me.Code != ErrCodeBrowserCrash {
		t.Errorf("errors.As recovered %+v, want code %s", me, ErrCodeBrowserCrash)
	}
}

func TestMenuErrorToDetail(t *testing.T) {
	err := NewMenuError(ErrCodeRateLimited, "rate limit exceeded", errors.New("internal detail"))
	detail := err.ToDetail()

	if detail.Code != ErrCodeRateLimited {
		t.Errorf("detail code = %q, want %q", detail.Code, ErrCodeRateLimited)
	}
	// The wrapped cause stays internal; only code and message cross the API.
	if detail.Message != "rate limit exceeded" {
		t.Errorf("detail message = %q, want the bare message", detail.Message)
	}
}
