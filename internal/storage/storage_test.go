package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"wedding-rsvp/internal/models"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := NewStorage(filepath.Join(t.TempDir(), "data", "guests.db"))
	if err != nil {
		t.Fatalf("new storage: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seed(t *testing.T, s *Storage, guests ...models.Guest) {
	t.Helper()
	for _, g := range guests {
		if err := s.AddGuest(context.Background(), g); err != nil {
			t.Fatalf("add guest %s: %v", g.Name, err)
		}
	}
}

func TestAddGuestDefaultsAndUpsert(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	seed(t, s, models.Guest{Name: "Ana Silva", Group: "Família Silva"})

	g, err := s.GetGuest(ctx, "Ana Silva")
	if err != nil {
		t.Fatalf("get guest: %v", err)
	}
	if g.RSVPStatus != models.RSVPPending || g.InvitedDate.IsZero() {
		t.Fatalf("guest = %+v", g)
	}

	if _, err := s.UpdateRSVP(ctx, []models.AttendanceRecord{{Name: "Ana Silva", Attending: true}}); err != nil {
		t.Fatalf("update: %v", err)
	}
	seed(t, s, models.Guest{Name: "Ana Silva", Group: "Família Silva Souza", PhoneNumber: "5511912345678"})

	g, err = s.GetGuest(ctx, "Ana Silva")
	if err != nil {
		t.Fatalf("get guest: %v", err)
	}
	if g.Group != "Família Silva Souza" || g.PhoneNumber != "5511912345678" {
		t.Fatalf("upsert did not update details: %+v", g)
	}
	if g.RSVPStatus != models.RSVPAccepted {
		t.Fatalf("upsert reset status to %q", g.RSVPStatus)
	}
}

func TestAddGuestRequiresNameAndGroup(t *testing.T) {
	s := newTestStorage(t)
	if err := s.AddGuest(context.Background(), models.Guest{Name: "Ana"}); err == nil {
		t.Fatal("expected error for missing group")
	}
}

func TestGetGuestNotFound(t *testing.T) {
	s := newTestStorage(t)
	if _, err := s.GetGuest(context.Background(), "Ninguém"); !errors.Is(err, ErrGuestNotFound) {
		t.Fatalf("err = %v, want ErrGuestNotFound", err)
	}
}

func TestFindGroup(t *testing.T) {
	s := newTestStorage(t)
	seed(t, s,
		models.Guest{Name: "Ana Silva", Group: "Família Silva"},
		models.Guest{Name: "Carla Souza", Group: "Carla e João"},
		models.Guest{Name: "Bruno Silva", Group: "Família Silva"},
		models.Guest{Name: "João Pereira", Group: "Carla e João"},
	)

	tests := []struct {
		query string
		want  []string
	}{
		{query: "Ana Silva", want: []string{"Ana Silva", "Bruno Silva"}},
		{query: "familia silva", want: []string{"Ana Silva", "Bruno Silva"}},
		{query: "JOAO", want: []string{"Carla Souza", "João Pereira"}},
		{query: "  carla   e joão ", want: []string{"Carla Souza", "João Pereira"}},
		{query: "Zzz Nonexistent", want: nil},
		{query: "   ", want: nil},
	}
	for _, tt := range tests {
		got, err := s.FindGroup(context.Background(), tt.query)
		if err != nil {
			t.Fatalf("find %q: %v", tt.query, err)
		}
		if got == nil {
			t.Fatalf("find %q returned nil slice", tt.query)
		}
		if len(got) != len(tt.want) {
			t.Fatalf("find %q = %d guests, want %d", tt.query, len(got), len(tt.want))
		}
		for i, name := range tt.want {
			if got[i].Name != name {
				t.Fatalf("find %q [%d] = %q, want %q", tt.query, i, got[i].Name, name)
			}
		}
	}
}

func TestUpdateRSVP(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	fixed := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	seed(t, s,
		models.Guest{Name: "Ana Silva", Group: "Família Silva"},
		models.Guest{Name: "Bruno Silva", Group: "Família Silva"},
	)

	n, err := s.UpdateRSVP(ctx, []models.AttendanceRecord{
		{Name: "Ana Silva", Attending: true},
		{Name: "Bruno Silva", Attending: false},
		{Name: "Desconhecido", Attending: true},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if n != 2 {
		t.Fatalf("updated = %d, want 2", n)
	}

	accepted, err := s.GetGuestsByStatus(ctx, models.RSVPAccepted)
	if err != nil {
		t.Fatalf("by status: %v", err)
	}
	if len(accepted) != 1 || accepted[0].Name != "Ana Silva" {
		t.Fatalf("accepted = %+v", accepted)
	}
	if !accepted[0].RSVPDate.Equal(fixed) {
		t.Fatalf("rsvp date = %s, want %s", accepted[0].RSVPDate, fixed)
	}
	declined, err := s.GetGuestsByStatus(ctx, models.RSVPDeclined)
	if err != nil {
		t.Fatalf("by status: %v", err)
	}
	if len(declined) != 1 || declined[0].Name != "Bruno Silva" {
		t.Fatalf("declined = %+v", declined)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guests.db")
	s, err := NewStorage(path)
	if err != nil {
		t.Fatalf("new storage: %v", err)
	}
	seed(t, s, models.Guest{Name: "Ana Silva", Group: "Família Silva"})
	s.Close()

	s, err = NewStorage(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	all, err := s.GetAllGuests(context.Background())
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("guests = %d, want 1", len(all))
	}
}

func TestFold(t *testing.T) {
	tests := map[string]string{
		"Família Silva":  "familia silva",
		"  JOÃO  Pereira": "joao pereira",
		"Zé":             "ze",
	}
	for in, want := range tests {
		if got := Fold(in); got != want {
			t.Fatalf("Fold(%q) = %q, want %q", in, got, want)
		}
	}
}
