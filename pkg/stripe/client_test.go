package stripe

import (
	"context"
	"testing"

	"github.com/angelmondragon/dimensionalz-backend/pkg/config"
)

func TestNewClientScopesAPIToKey(t *testing.T) {
	client, err := NewClient(context.Background(), config.StripeConfig{
		APIKey: "sk_test_123",
		Secret: "whsec_abc",
	}, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if client.Environment() != testEnv {
		t.Fatalf("expected test env, got %q", client.Environment())
	}
	if client.API() == nil || client.API().V1CheckoutSessions == nil {
		t.Fatalf("expected checkout sessions service")
	}
	if client.SigningSecret() != "whsec_abc" {
		t.Fatalf("unexpected signing secret %q", client.SigningSecret())
	}
}

func TestNewClientRejectsMismatchedKey(t *testing.T) {
	cases := []config.StripeConfig{
		{APIKey: "sk_live_123", Secret: "whsec_abc", Env: "test"},
		{APIKey: "sk_test_123", Secret: "whsec_abc", Env: "live"},
		{APIKey: "sk_test_123", Env: "test"},
		{Secret: "whsec_abc", Env: "test"},
		{APIKey: "sk_test_123", Secret: "whsec_abc", Env: "staging"},
	}
	for _, cfg := range cases {
		if _, err := NewClient(context.Background(), cfg, nil); err == nil {
			t.Fatalf("expected error for %+v", cfg)
		}
	}
}

func TestNilClientAccessors(t *testing.T) {
	var client *Client
	if client.API() != nil || client.Environment() != "" || client.SigningSecret() != "" {
		t.Fatalf("nil client should report zero values")
	}
}
