package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/cors"

	"wedding-rsvp/internal/config"
	"wedding-rsvp/internal/guestlist"
	"wedding-rsvp/internal/handler"
	"wedding-rsvp/internal/models"
	"wedding-rsvp/internal/storage"
)

func main() {
	fmt.Println("💒 Wedding Guest Directory")
	fmt.Println("==========================")

	cfg, err := config.LoadDirectory()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	log := config.NewLogger(cfg.LogLevel)

	// Initialize storage
	guestStorage, err := storage.NewStorage(cfg.DBPath)
	if err != nil {
		fmt.Printf("Error initializing storage: %v\n", err)
		os.Exit(1)
	}
	defer guestStorage.Close()

	// The site's browser page may call the directory cross-origin.
	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	})

	mux := http.NewServeMux()
	mux.Handle("/exec", guestlist.NewHandler(guestStorage, config.Component(log, "GuestList")))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler.WithLogging(config.Component(log, "HTTP"), c.Handler(mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Guest directory stopped")
		}
	}()
	fmt.Printf("\n✅ Guest directory listening on %s/exec\n", cfg.Addr)

	// Wait for interrupt signal or the console's exit command
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go startCLI(guestStorage, stop)
	<-ctx.Done()

	fmt.Println("\n\nShutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	fmt.Println("Goodbye! 👋")
}

func startCLI(storage *storage.Storage, exit func()) {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Println("\nCommands:")
		fmt.Println("  1. Add guest")
		fmt.Println("  2. View all guests")
		fmt.Println("  3. View guests by status")
		fmt.Println("  4. Exit")
		fmt.Print("\nEnter command (1-4): ")

		if !scanner.Scan() {
			return
		}

		switch strings.TrimSpace(scanner.Text()) {
		case "1":
			addGuest(scanner, storage)
		case "2":
			viewAllGuests(storage)
		case "3":
			viewGuestsByStatus(scanner, storage)
		case "4":
			fmt.Println("Exiting...")
			exit()
			return
		default:
			fmt.Println("Invalid command. Please try again.")
		}
	}
}

func addGuest(scanner *bufio.Scanner, storage *storage.Storage) {
	fmt.Print("Enter guest name: ")
	if !scanner.Scan() {
		return
	}
	name := strings.TrimSpace(scanner.Text())

	fmt.Print("Enter invitation name (e.g., Família Silva): ")
	if !scanner.Scan() {
		return
	}
	group := strings.TrimSpace(scanner.Text())

	fmt.Print("Enter phone number (optional): ")
	if !scanner.Scan() {
		return
	}
	phone := strings.TrimSpace(scanner.Text())

	err := storage.AddGuest(context.Background(), models.Guest{
		Name:        name,
		Group:       group,
		PhoneNumber: phone,
	})
	if err != nil {
		fmt.Printf("❌ Error adding guest: %v\n", err)
		return
	}
	fmt.Printf("✅ %s added to %s\n", name, group)
}

func viewAllGuests(storage *storage.Storage) {
	guests, err := storage.GetAllGuests(context.Background())
	if err != nil {
		fmt.Printf("❌ Error loading guests: %v\n", err)
		return
	}
	if len(guests) == 0 {
		fmt.Println("\nNo guests found.")
		return
	}

	fmt.Printf("\n📋 All Guests (%d total):\n", len(guests))
	printGuests(guests)
}

func viewGuestsByStatus(scanner *bufio.Scanner, storage *storage.Storage) {
	fmt.Println("\nSelect status:")
	fmt.Println("  1. Pending")
	fmt.Println("  2. Accepted")
	fmt.Println("  3. Declined")
	fmt.Print("Enter choice (1-3): ")

	if !scanner.Scan() {
		return
	}

	var status models.RSVPStatus
	switch strings.TrimSpace(scanner.Text()) {
	case "1":
		status = models.RSVPPending
	case "2":
		status = models.RSVPAccepted
	case "3":
		status = models.RSVPDeclined
	default:
		fmt.Println("Invalid choice.")
		return
	}

	guests, err := storage.GetGuestsByStatus(context.Background(), status)
	if err != nil {
		fmt.Printf("❌ Error loading guests: %v\n", err)
		return
	}
	if len(guests) == 0 {
		fmt.Printf("\nNo guests with status '%s'.\n", string(status))
		return
	}

	fmt.Printf("\n📋 Guests with status '%s' (%d total):\n", string(status), len(guests))
	printGuests(guests)
}

func printGuests(guests []models.Guest) {
	fmt.Println(strings.Repeat("-", 60))
	for _, guest := range guests {
		fmt.Printf("Name: %s\n", guest.Name)
		fmt.Printf("Invitation: %s\n", guest.Group)
		if guest.PhoneNumber != "" {
			fmt.Printf("Phone: %s\n", guest.PhoneNumber)
		}
		fmt.Printf("Status: %s\n", guest.RSVPStatus)
		if !guest.RSVPDate.IsZero() {
			fmt.Printf("RSVP Date: %s\n", guest.RSVPDate.Format("2006-01-02 15:04:05"))
		}
		fmt.Println(strings.Repeat("-", 60))
	}
}
