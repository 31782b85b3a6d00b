package pubsub

import (
	"context"
	"testing"

	"github.com/angelmondragon/dimensionalz-backend/pkg/config"
)

func TestTopicResourceName(t *testing.T) {
	cases := []struct {
		project string
		name    string
		want    string
	}{
		{"dmz-prod", "dmz-order-events", "projects/dmz-prod/topics/dmz-order-events"},
		{"dmz-prod", " dmz-order-events ", "projects/dmz-prod/topics/dmz-order-events"},
		{"", "projects/other/topics/orders", "projects/other/topics/orders"},
		{"", "orders", ""},
		{"dmz-prod", "", ""},
	}
	for _, tc := range cases {
		if got := TopicResourceName(tc.project, tc.name); got != tc.want {
			t.Fatalf("TopicResourceName(%q, %q) = %q, want %q", tc.project, tc.name, got, tc.want)
		}
	}
}

func TestNewClientValidatesConfig(t *testing.T) {
	if _, err := NewClient(context.Background(), config.PubSubConfig{OrdersTopic: "orders"}, nil); err != errProjectIDRequired {
		t.Fatalf("expected project id error, got %v", err)
	}
	if _, err := NewClient(context.Background(), config.PubSubConfig{ProjectID: "dmz"}, nil); err != errNoOrdersTopic {
		t.Fatalf("expected topic error, got %v", err)
	}
}

func TestNilClientIsSafe(t *testing.T) {
	var c *Client
	if c.OrdersPublisher() != nil {
		t.Fatal("expected nil publisher")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := c.Ping(context.Background()); err == nil {
		t.Fatal("expected ping error on nil client")
	}
}
