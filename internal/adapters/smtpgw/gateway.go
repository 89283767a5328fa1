package smtpgw

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"github.com/Eklavya-kapoor/armor-api/internal/core"
)

// Gateway is an SMTP content gateway: it accepts messages, scans their
// text through the risk pipeline, stamps the assessment into headers and
// optionally relays the result upstream. High-tier messages can be
// rejected at DATA time.
type Gateway struct {
	service      *core.ScanService
	logger       *zap.Logger
	listenAddr   string
	server       *smtp.Server
	blockHigh    bool
	scoreHeader  string
	levelHeader  string
	reasonHeader string
	relayAddr    string
	relayPort    int
	relayEnabled bool
}

// NewGateway creates a new SMTP gateway
func NewGateway(
	service *core.ScanService,
	logger *zap.Logger,
	listenAddr string,
	blockHigh bool,
	scoreHeader string,
	levelHeader string,
	reasonHeader string,
	relayAddr string,
	relayPort int,
	relayEnabled bool,
) *Gateway {
	return &Gateway{
		service:      service,
		logger:       logger,
		listenAddr:   listenAddr,
		blockHigh:    blockHigh,
		scoreHeader:  scoreHeader,
		levelHeader:  levelHeader,
		reasonHeader: reasonHeader,
		relayAddr:    relayAddr,
		relayPort:    relayPort,
		relayEnabled: relayEnabled,
	}
}

// Scan submits a request to the pipeline and returns the assessment
func (g *Gateway) Scan(ctx context.Context, req *core.ScanRequest) (*core.RiskAssessment, error) {
	return g.service.Scan(ctx, req)
}

// Start starts the SMTP gateway
func (g *Gateway) Start() error {
	g.server = smtp.NewServer(&smtpBackend{gateway: g})

	g.server.Addr = g.listenAddr
	g.server.Domain = "localhost"
	g.server.ReadTimeout = 30 * time.Second
	g.server.WriteTimeout = 30 * time.Second
	g.server.MaxMessageBytes = 30 * 1024 * 1024
	g.server.MaxRecipients = 50
	g.server.AllowInsecureAuth = true

	g.logger.Info("SMTP gateway starting", zap.String("address", g.listenAddr))

	go func() {
		if err := g.server.ListenAndServe(); err != nil {
			if err != smtp.ErrServerClosed {
				g.logger.Error("SMTP server error", zap.Error(err))
			}
		}
	}()

	return nil
}

// Stop stops the SMTP gateway
func (g *Gateway) Stop() error {
	if g.server != nil {
		return g.server.Close()
	}
	return nil
}

// relay sends the stamped message to the upstream SMTP listener.
func (g *Gateway) relay(sender string, recipients []string, data []byte) error {
	addr := fmt.Sprintf("%s:%d", g.relayAddr, g.relayPort)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to relay: %w", err)
	}
	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}
	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	accepted := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			g.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
		} else {
			accepted = true
		}
	}
	if !accepted {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send message data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		g.logger.Warn("QUIT command failed", zap.Error(err))
	}
	return nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	gateway *Gateway
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{
		gateway:    b.gateway,
		recipients: make([]string, 0),
	}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	gateway    *Gateway
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = make([]string, 0)
}

// AuthPlain handles PLAIN authentication (not needed for the gateway)
func (s *smtpSession) AuthPlain(_ []byte) error {
	return smtp.ErrAuthUnsupported
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data scans the message and either rejects it or stamps the assessment
// into headers and relays it onward.
func (s *smtpSession) Data(r io.Reader) error {
	rawData, err := io.ReadAll(r)
	if err != nil {
		s.gateway.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	msg, err := mail.ReadMessage(bytes.NewReader(rawData))
	if err != nil {
		s.gateway.logger.Error("Failed to parse message", zap.Error(err))
		return err
	}

	textContent, err := extractTextFromMessage(msg)
	if err != nil {
		s.gateway.logger.Error("Failed to extract text content", zap.Error(err))
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	assessment, err := s.gateway.service.Scan(ctx, &core.ScanRequest{
		Text:   textContent,
		Sender: s.sender,
	})
	if err != nil {
		// Empty bodies are the only scan failure; pass them through
		// unscored rather than bouncing mail.
		s.gateway.logger.Warn("Message not scorable, passing through",
			zap.Error(err),
			zap.String("sender", s.sender))
		assessment = &core.RiskAssessment{
			RiskScore:   0,
			RiskLevel:   core.RiskLevelLow,
			Explanation: []string{"Message not scorable"},
		}
	}

	if s.gateway.blockHigh && assessment.RiskLevel == core.RiskLevelHigh {
		s.gateway.logger.Info("Rejecting high-risk message",
			zap.String("from", s.sender),
			zap.Float64("risk_score", assessment.RiskScore))
		return fmt.Errorf("550 Rejected as high risk (score: %.2f)", assessment.RiskScore)
	}

	stamped := s.stampHeaders(msg, rawData, assessment)

	if s.gateway.relayEnabled {
		if err := s.gateway.relay(s.sender, s.recipients, stamped); err != nil {
			s.gateway.logger.Error("Failed to relay message",
				zap.Error(err),
				zap.String("sender", s.sender))
			return err
		}
	}

	s.gateway.logger.Info("Processed message",
		zap.String("from", s.sender),
		zap.String("risk_level", string(assessment.RiskLevel)),
		zap.Float64("risk_score", assessment.RiskScore),
		zap.Bool("degraded", assessment.Degraded))

	return nil
}

// stampHeaders prepends the assessment headers, preserving the original
// headers and raw body (including MIME parts) untouched.
func (s *smtpSession) stampHeaders(msg *mail.Message, rawData []byte, assessment *core.RiskAssessment) []byte {
	var out bytes.Buffer

	fmt.Fprintf(&out, "%s: %.4f\r\n", s.gateway.scoreHeader, assessment.RiskScore)
	fmt.Fprintf(&out, "%s: %s\r\n", s.gateway.levelHeader, assessment.RiskLevel)
	fmt.Fprintf(&out, "%s: %s\r\n", s.gateway.reasonHeader, strings.Join(assessment.Explanation, "; "))

	for key, values := range msg.Header {
		for _, value := range values {
			fmt.Fprintf(&out, "%s: %s\r\n", key, value)
		}
	}
	out.WriteString("\r\n")

	if idx := bytes.Index(rawData, []byte("\r\n\r\n")); idx != -1 {
		out.Write(rawData[idx+4:])
	} else if idx := bytes.Index(rawData, []byte("\n\n")); idx != -1 {
		out.Write(rawData[idx+2:])
	}

	return out.Bytes()
}

// Logout handles SMTP logout (not needed for the gateway)
func (s *smtpSession) Logout() error {
	return nil
}
