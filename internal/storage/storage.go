package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"wedding-rsvp/internal/models"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var ErrGuestNotFound = errors.New("guest not found")

// Storage is the SQLite-backed guest list. Guest names are unique across the
// whole list because attendance updates only carry the individual name.
type Storage struct {
	db  *sql.DB
	now func() time.Time
}

// NewStorage opens (and migrates) the guest list at filePath
func NewStorage(filePath string) (*Storage, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", filePath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Storage{db: db, now: time.Now}, nil
}

func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Storage) Close() error {
	return s.db.Close()
}

// AddGuest adds a new guest or updates the group and phone of an existing one.
// The RSVP status and invitation date of an existing guest are kept.
func (s *Storage) AddGuest(ctx context.Context, guest models.Guest) error {
	if strings.TrimSpace(guest.Name) == "" || strings.TrimSpace(guest.Group) == "" {
		return fmt.Errorf("guest name and group are required")
	}
	if guest.InvitedDate.IsZero() {
		guest.InvitedDate = s.now()
	}
	if guest.RSVPStatus == "" {
		guest.RSVPStatus = models.RSVPPending
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO guests (name, group_label, phone_number, rsvp_status, invited_date)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			group_label = excluded.group_label,
			phone_number = excluded.phone_number`,
		guest.Name, guest.Group, guest.PhoneNumber, string(guest.RSVPStatus), guest.InvitedDate,
	)
	if err != nil {
		return fmt.Errorf("failed to add guest: %w", err)
	}
	return nil
}

// GetGuest retrieves a guest by individual name
func (s *Storage) GetGuest(ctx context.Context, name string) (*models.Guest, error) {
	row := s.db.QueryRowContext(ctx, selectGuests+` WHERE name = ?`, name)
	g, err := scanGuest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGuestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get guest: %w", err)
	}
	return g, nil
}

// FindGroup returns every member of the first invitation whose label or
// member name contains query, ignoring case and accents. An empty slice means
// nothing matched.
func (s *Storage) FindGroup(ctx context.Context, query string) ([]models.Guest, error) {
	q := Fold(query)
	if q == "" {
		return []models.Guest{}, nil
	}

	guests, err := s.GetAllGuests(ctx)
	if err != nil {
		return nil, err
	}

	group := ""
	for _, g := range guests {
		if strings.Contains(Fold(g.Group), q) || strings.Contains(Fold(g.Name), q) {
			group = g.Group
			break
		}
	}

	result := make([]models.Guest, 0)
	if group == "" {
		return result, nil
	}
	for _, g := range guests {
		if g.Group == group {
			result = append(result, g)
		}
	}
	return result, nil
}

// UpdateRSVP records attendance decisions and returns how many guests were
// updated. Unknown names are skipped.
func (s *Storage) UpdateRSVP(ctx context.Context, records []models.AttendanceRecord) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := s.now()
	updated := 0
	for _, r := range records {
		status := models.RSVPDeclined
		if r.Attending {
			status = models.RSVPAccepted
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE guests SET rsvp_status = ?, rsvp_date = ? WHERE name = ?`,
			string(status), now, r.Name,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to update RSVP for %q: %w", r.Name, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to update RSVP for %q: %w", r.Name, err)
		}
		updated += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit RSVP: %w", err)
	}
	return updated, nil
}

// GetAllGuests returns all guests in insertion order
func (s *Storage) GetAllGuests(ctx context.Context) ([]models.Guest, error) {
	return s.query(ctx, selectGuests+` ORDER BY id`)
}

// GetGuestsByStatus returns guests filtered by RSVP status
func (s *Storage) GetGuestsByStatus(ctx context.Context, status models.RSVPStatus) ([]models.Guest, error) {
	return s.query(ctx, selectGuests+` WHERE rsvp_status = ? ORDER BY id`, string(status))
}

const selectGuests = `SELECT id, name, group_label, phone_number, rsvp_status, rsvp_date, invited_date FROM guests`

type scanner interface {
	Scan(dest ...any) error
}

func scanGuest(row scanner) (*models.Guest, error) {
	var (
		g        models.Guest
		status   string
		rsvpDate sql.NullTime
	)
	if err := row.Scan(&g.ID, &g.Name, &g.Group, &g.PhoneNumber, &status, &rsvpDate, &g.InvitedDate); err != nil {
		return nil, err
	}
	g.RSVPStatus = models.RSVPStatus(status)
	if rsvpDate.Valid {
		g.RSVPDate = rsvpDate.Time
	}
	return &g, nil
}

func (s *Storage) query(ctx context.Context, query string, args ...any) ([]models.Guest, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query guests: %w", err)
	}
	defer rows.Close()

	guests := make([]models.Guest, 0)
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan guest: %w", err)
		}
		guests = append(guests, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read guests: %w", err)
	}
	return guests, nil
}

// Fold normalizes a name for matching: accents stripped, case folded and
// inner whitespace collapsed.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return cases.Fold().String(strings.Join(strings.Fields(out), " "))
}
