package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClient_Send(t *testing.T) {
	var got sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/emails" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer api-key" {
			t.Errorf("missing auth header")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		w.Write([]byte(`{"id":"email_1"}`))
	}))
	defer srv.Close()

	client := NewClient(&Config{APIKey: "api-key", BaseURL: srv.URL, From: "Photo AI <hello@example.com>"})

	err := client.Send(context.Background(), TrainingSucceeded("u1@example.com", "Test User", "m1"))
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if got.From != "Photo AI <hello@example.com>" {
		t.Errorf("from = %q", got.From)
	}
	if len(got.To) != 1 || got.To[0] != "u1@example.com" {
		t.Errorf("to = %v", got.To)
	}
}

func TestClient_SendRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"invalid to address"}`))
	}))
	defer srv.Close()

	client := NewClient(&Config{APIKey: "api-key", BaseURL: srv.URL, From: "x@example.com"})

	if err := client.Send(context.Background(), Message{To: "bad", Subject: "s", HTML: "<p>b</p>"}); err == nil {
		t.Fatal("expected error for rejected send")
	}
}

func TestTemplates(t *testing.T) {
	t.Run("succeeded", func(t *testing.T) {
		msg := TrainingSucceeded("u1@example.com", "Test User", "m1")
		if msg.Subject != "Your model training is completed!" {
			t.Errorf("subject = %q", msg.Subject)
		}
		if !strings.Contains(msg.HTML, "Hi, Test User") {
			t.Errorf("html = %q", msg.HTML)
		}
	})

	t.Run("status change interpolates literal status", func(t *testing.T) {
		msg := TrainingStatusChanged("u1@example.com", "Test User", "m1", "canceled")
		if !strings.Contains(msg.Subject, "canceled") {
			t.Errorf("subject = %q", msg.Subject)
		}
		if !strings.Contains(msg.HTML, "has been canceled") {
			t.Errorf("html = %q", msg.HTML)
		}
	})

	t.Run("empty display name falls back", func(t *testing.T) {
		msg := TrainingSucceeded("u1@example.com", "", "m1")
		if !strings.Contains(msg.HTML, "Hi, there") {
			t.Errorf("html = %q", msg.HTML)
		}
	})
}
