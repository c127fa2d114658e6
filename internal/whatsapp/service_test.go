package whatsapp

import (
	"strings"
	"testing"

	"wedding-rsvp/internal/models"
)

func TestNormalizePhoneNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "(11) 91234-5678", want: "5511912345678"},
		{in: "+55 11 91234-5678", want: "5511912345678"},
		{in: "011 91234-5678", want: "5511912345678"},
		{in: "5511912345678", want: "5511912345678"},
		{in: "+972 50-123-4567", want: "972501234567"},
		{in: "1133334444", want: "551133334444"},
	}
	for _, tt := range tests {
		if got := NormalizePhoneNumber(tt.in, "55"); got != tt.want {
			t.Fatalf("NormalizePhoneNumber(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatConfirmation(t *testing.T) {
	msg := FormatConfirmation("Júlia & Vitor", "Família Silva", models.AttendanceSubmission{
		{Name: "Ana Silva", Attending: true},
		{Name: "Bruno Silva", Attending: false},
	})

	for _, want := range []string{
		"Júlia & Vitor",
		"Convite: *Família Silva*",
		"✅ Ana Silva",
		"❌ Bruno Silva",
		"Presentes: 1 de 2",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message %q missing %q", msg, want)
		}
	}
}
