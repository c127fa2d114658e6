package whatsapp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/skip2/go-qrcode"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types/events"

	"wedding-rsvp/internal/models"
)

type Config struct {
	DataDir     string
	NotifyPhone string
	CountryCode string
	CoupleNames string
}

// Service forwards RSVP confirmations to the couple over WhatsApp.
type Service struct {
	client *whatsmeow.Client
	cfg    Config
	log    zerolog.Logger
}

// NewService creates a new WhatsApp service backed by a device store in
// cfg.DataDir
func NewService(ctx context.Context, cfg Config, log zerolog.Logger) (*Service, error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on", filepath.Join(cfg.DataDir, "whatsmeow.db"))
	container, err := sqlstore.New(ctx, "sqlite3", dsn, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}

	deviceStore, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	service := &Service{
		client: whatsmeow.NewClient(deviceStore, nil),
		cfg:    cfg,
		log:    log,
	}
	service.client.AddEventHandler(service.eventHandler)

	return service, nil
}

// Connect connects to WhatsApp, printing a pairing QR code on first use
func (s *Service) Connect(ctx context.Context) error {
	if s.client.Store.ID != nil {
		if err := s.client.Connect(); err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}
		return nil
	}

	qrChan, err := s.client.GetQRChannel(ctx)
	if err != nil {
		return fmt.Errorf("failed to get QR channel: %w", err)
	}
	if err := s.client.Connect(); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	for evt := range qrChan {
		if evt.Event != "code" {
			s.log.Info().Str("event", evt.Event).Msg("Login event")
			continue
		}
		q, err := qrcode.New(evt.Code, qrcode.Medium)
		if err != nil {
			fmt.Printf("QR Code: %s\n", evt.Code)
			continue
		}
		fmt.Println("\n" + q.ToSmallString(false))
		fmt.Println("📱 Scan the QR code above in WhatsApp > Linked Devices > Link a Device")
	}
	return nil
}

// Disconnect disconnects from WhatsApp
func (s *Service) Disconnect() {
	s.client.Disconnect()
}

// NotifyConfirmation tells the couple who in the group will attend.
func (s *Service) NotifyConfirmation(ctx context.Context, group string, submission models.AttendanceSubmission) error {
	return s.SendMessage(ctx, s.cfg.NotifyPhone, FormatConfirmation(s.cfg.CoupleNames, group, submission))
}

// SendMessage sends a text message to phoneNumber after checking it is on
// WhatsApp.
func (s *Service) SendMessage(ctx context.Context, phoneNumber, message string) error {
	phoneNumber = NormalizePhoneNumber(phoneNumber, s.cfg.CountryCode)

	resp, err := s.client.IsOnWhatsApp(ctx, []string{"+" + phoneNumber})
	if err != nil {
		return fmt.Errorf("failed to verify number on WhatsApp: %w", err)
	}
	if len(resp) == 0 || !resp[0].IsIn {
		return fmt.Errorf("number %s is not registered on WhatsApp", phoneNumber)
	}
	jid := resp[0].JID

	sent, err := s.client.SendMessage(ctx, jid, &waE2E.Message{
		Conversation: &message,
	})
	if err != nil {
		return fmt.Errorf("failed to send message to %s: %w", jid.String(), err)
	}

	s.log.Debug().Str("jid", jid.String()).Str("id", sent.ID).Msg("Message sent")
	return nil
}

func (s *Service) eventHandler(evt interface{}) {
	switch evt := evt.(type) {
	case *events.Connected:
		s.log.Info().Msg("Connected to WhatsApp")
	case *events.Disconnected:
		s.log.Info().Msg("Disconnected from WhatsApp")
	case *events.LoggedOut:
		s.log.Warn().Msg("Logged out from WhatsApp")
	case *events.Message:
		if !evt.Info.IsFromMe {
			s.log.Debug().Str("sender", evt.Info.Sender.String()).Msg("Ignoring incoming message")
		}
	}
}

// FormatConfirmation renders the notification sent to the couple.
func FormatConfirmation(coupleNames, group string, submission models.AttendanceSubmission) string {
	var b strings.Builder
	fmt.Fprintf(&b, "💌 *Nova confirmação para %s*\n\n", coupleNames)
	fmt.Fprintf(&b, "Convite: *%s*\n", group)

	attending := 0
	for _, r := range submission {
		mark := "❌"
		if r.Attending {
			mark = "✅"
			attending++
		}
		fmt.Fprintf(&b, "%s %s\n", mark, r.Name)
	}
	fmt.Fprintf(&b, "\nPresentes: %d de %d", attending, len(submission))
	return b.String()
}

// NormalizePhoneNumber reduces phoneNumber to digits in international format.
// National numbers (at most 11 digits once the trunk 0 is dropped) get
// countryCode prepended.
func NormalizePhoneNumber(phoneNumber, countryCode string) string {
	international := strings.HasPrefix(strings.TrimSpace(phoneNumber), "+")
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phoneNumber)

	if international {
		return digits
	}
	digits = strings.TrimLeft(digits, "0")
	if len(digits) <= 11 {
		return countryCode + digits
	}
	return digits
}
