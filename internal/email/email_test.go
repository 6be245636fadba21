package email

import (
	"strings"
	"testing"
)

func TestHTMLToText(t *testing.T) {
	text, err := HTMLToText(`<h1>Daily report</h1><p>Checked in at <b>09:00</b></p>`)
	if err != nil {
		t.Fatalf("HTMLToText: %v", err)
	}
	if !strings.Contains(text, "Daily report") || !strings.Contains(text, "09:00") {
		t.Fatalf("unexpected text: %q", text)
	}
	if strings.Contains(text, "<b>") {
		t.Fatalf("tags should be stripped: %q", text)
	}
}

func TestRender_MultipartAlternative(t *testing.T) {
	c, err := NewClient(SMTPConfig{Host: "localhost", Port: 25, From: "noreply@example.com"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	raw, err := c.Render(&Message{
		To:      []string{"user@example.com"},
		Subject: "Daily report",
		HTML:    "<p>Hello</p>",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	body := string(raw)
	for _, want := range []string{"multipart/alternative", "text/plain", "text/html", "Subject: Daily report", "user@example.com"} {
		if !strings.Contains(body, want) {
			t.Fatalf("rendered message missing %q:\n%s", want, body)
		}
	}
}

func TestNewClient_RequiresHost(t *testing.T) {
	if _, err := NewClient(SMTPConfig{From: "a@example.com"}); err == nil {
		t.Fatalf("expected error without host")
	}
	if _, err := NewClient(SMTPConfig{Host: "localhost"}); err == nil {
		t.Fatalf("expected error without sender")
	}
}

func TestBuild_InvalidRecipient(t *testing.T) {
	c, _ := NewClient(SMTPConfig{Host: "localhost", Port: 25, From: "noreply@example.com"})
	if _, err := c.Build(&Message{To: []string{"not an address"}, Text: "x"}); err == nil {
		t.Fatalf("expected invalid recipient error")
	}
}

func TestValidAddress(t *testing.T) {
	valid := []string{"a@b.co", " user@example.com "}
	for _, addr := range valid {
		if err := ValidAddress(addr); err != nil {
			t.Fatalf("ValidAddress(%q) = %v", addr, err)
		}
	}

	invalid := map[string]error{
		"":             ErrMissingAddress,
		"@example.com": ErrInvalidAddress,
		"user@":        ErrInvalidAddress,
		"no at sign":   ErrInvalidAddress,
	}
	for addr, want := range invalid {
		if err := ValidAddress(addr); err != want {
			t.Fatalf("ValidAddress(%q) = %v, want %v", addr, err, want)
		}
	}
}
