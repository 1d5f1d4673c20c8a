package auth

import (
	"strings"
	"testing"
)

func TestLoginURL(t *testing.T) {
	p := NewGoogleOAuth("client-id", "client-secret", "http://localhost/callback")
	url := p.LoginURL("state-abc")

	if !strings.Contains(url, "state=state-abc") {
		t.Errorf("expected state param in URL, got %s", url)
	}
	if !strings.Contains(url, "prompt=select_account") {
		t.Errorf("expected account chooser prompt in URL, got %s", url)
	}
	if !strings.Contains(url, "client_id=client-id") {
		t.Errorf("expected client_id in URL, got %s", url)
	}
}

func TestProviderName(t *testing.T) {
	p := NewGoogleOAuth("id", "secret", "http://localhost/callback")
	if p.Name() != "google" {
		t.Errorf("expected provider name google, got %s", p.Name())
	}
}
