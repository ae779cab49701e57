// Package mail delivers plain text emails over SMTP.
package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// SMTP is a finassist.Sender using an SMTP server.
//
// Port 465 uses implicit TLS, any other port upgrades the connection with
// STARTTLS when the server offers it.
type SMTP struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string // sender address, Username when empty

	tlsConfig *tls.Config
}

// New returns a sender using the server at host:port.
func New(host, port, user, pass, from string) *SMTP {
	return &SMTP{Host: host, Port: port, Username: user, Password: pass, From: from}
}

func (s *SMTP) from() string {
	if s.From != "" {
		return s.From
	}
	return s.Username
}

func (s *SMTP) config() *tls.Config {
	if s.tlsConfig != nil {
		return s.tlsConfig
	}
	return &tls.Config{ServerName: s.Host}
}

// Send implements finassist.Sender.
func (s *SMTP) Send(ctx context.Context, to, subject, body string) error {
	if s.Host == "" {
		return errors.New("no SMTP host configured")
	}
	msg, err := message(s.from(), to, subject, body)
	if err != nil {
		return err
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(s.Host, s.Port))
	if err != nil {
		return err
	}
	defer conn.Close()
	// The SMTP client has no context, closing the connection aborts it.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if s.Port == "465" {
		tconn := tls.Client(conn, s.config())
		if err := tconn.HandshakeContext(ctx); err != nil {
			return err
		}
		conn = tconn
	}

	client, err := smtp.NewClient(conn, s.Host)
	if err != nil {
		return s.fail(ctx, err)
	}
	defer client.Close()

	if _, ok := conn.(*tls.Conn); !ok {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(s.config()); err != nil {
				return s.fail(ctx, err)
			}
		}
	}

	if s.Username != "" {
		auth := smtp.PlainAuth("", s.Username, s.Password, s.Host)
		if err := client.Auth(auth); err != nil {
			return s.fail(ctx, err)
		}
	}

	// Set sender & recipient
	if err := client.Mail(s.from()); err != nil {
		return s.fail(ctx, err)
	}
	if err := client.Rcpt(to); err != nil {
		return s.fail(ctx, err)
	}

	w, err := client.Data()
	if err != nil {
		return s.fail(ctx, err)
	}
	if _, err := w.Write(msg); err != nil {
		return s.fail(ctx, err)
	}
	if err := w.Close(); err != nil {
		return s.fail(ctx, err)
	}
	return client.Quit()
}

// fail prefers the context error over the network error it caused.
func (s *SMTP) fail(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %v", ctx.Err(), err)
	}
	return err
}

// message formats a plain text email. Lines of body end with CRLF.
func message(from, to, subject, body string) ([]byte, error) {
	for _, h := range []string{from, to, subject} {
		if strings.ContainsAny(h, "\r\n") {
			return nil, fmt.Errorf("invalid header value %q", h)
		}
	}
	if to == "" {
		return nil, errors.New("no recipient")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	body = strings.ReplaceAll(body, "\r\n", "\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	b.WriteString("\r\n")
	return []byte(b.String()), nil
}
