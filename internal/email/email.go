package email

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/inbucket/html2text"
	"github.com/wneessen/go-mail"
)

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// Message represents an email message
type Message struct {
	To      []string
	Subject string
	HTML    string
	Text    string // optional, will be auto-generated from HTML if empty
}

type Client struct {
	cfg SMTPConfig
}

func NewClient(cfg SMTPConfig) (*Client, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("email host is not configured")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("email sender is not configured")
	}
	return &Client{cfg: cfg}, nil
}

// Build assembles a multipart/alternative message with a plain text part
// and an HTML alternative.
func (c *Client) Build(msg *Message) (*mail.Msg, error) {
	if msg.Text == "" {
		text, err := HTMLToText(msg.HTML)
		if err != nil {
			return nil, fmt.Errorf("failed to convert HTML to text: %w", err)
		}
		msg.Text = text
	}

	m := mail.NewMsg()
	if err := m.From(c.cfg.From); err != nil {
		return nil, fmt.Errorf("invalid sender: %w", err)
	}
	if err := m.To(msg.To...); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetDate()
	m.SetBodyString(mail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	}
	return m, nil
}

func (c *Client) Send(ctx context.Context, msg *Message) error {
	m, err := c.Build(msg)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(c.cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if c.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(c.cfg.Username),
			mail.WithPassword(c.cfg.Password),
		)
	}

	client, err := mail.NewClient(c.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}

	slog.Info("Email sent", "to", msg.To, "subject", msg.Subject)
	return nil
}

// Render writes the full RFC 5322 message, mostly for previews and tests.
func (c *Client) Render(msg *Message) ([]byte, error) {
	m, err := c.Build(msg)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// HTMLToText converts HTML to plain text
func HTMLToText(htmlContent string) (string, error) {
	return html2text.FromString(htmlContent, html2text.Options{
		PrettyTables: true,
		OmitLinks:    false,
	})
}
