// Command stub-api is a local stand-in for the upstream email service.
// It serves generated campaigns, NDJSON event streams, and public
// profiles on the same paths the real upstream uses, so the server can
// be pointed at it during development without touching production.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/ignite/email-insights/internal/domain"
)

const defaultAddr = "localhost:9090"

// dataset is the generated world the stub serves. Built once at startup
// so repeated requests see consistent data.
type dataset struct {
	campaigns []domain.Campaign
	profiles  map[string]domain.UserProfile
	events    map[string][]stubEvent
}

// stubEvent is a tracking event plus the synthetic event id the real
// upstream attaches. The dashboard client ignores unknown fields.
type stubEvent struct {
	EventID      string    `json:"eventId"`
	EventSubject string    `json:"eventSubject"`
	EventType    string    `json:"eventType"`
	EventTime    time.Time `json:"eventTime"`
	EventTarget  string    `json:"eventTarget,omitempty"`
}

var firstNames = []string{"Maya", "Jonas", "Priya", "Oliver", "Sofia", "Daniel", "Ingrid", "Marcus"}
var lastNames = []string{"Adler", "Brandt", "Castillo", "Dietrich", "Eriksen", "Fontaine", "Gallo", "Hoffmann"}

func generate() *dataset {
	ds := &dataset{
		profiles: make(map[string]domain.UserProfile),
		events:   make(map[string][]stubEvent),
	}

	now := time.Now()
	titles := []string{"Weekly Digest", "Product Launch Announcement", "October Newsletter"}

	for i, title := range titles {
		sentAt := now.Add(-time.Duration(i*5+2) * 24 * time.Hour)
		audience := rand.Intn(40) + 10
		campaign := domain.Campaign{
			ID:             uuid.NewString(),
			Title:          title,
			SentAt:         sentAt,
			Sender:         domain.Sender{Name: "Campaign Team"},
			TargetAudience: &domain.TargetAudience{TotalRecipients: audience},
		}
		ds.campaigns = append(ds.campaigns, campaign)

		recipients := rand.Intn(6) + 4
		for r := 0; r < recipients; r++ {
			userID := uuid.NewString()
			ds.profiles[userID] = domain.UserProfile{
				ID:        userID,
				FirstName: firstNames[rand.Intn(len(firstNames))],
				LastName:  lastNames[rand.Intn(len(lastNames))],
			}
			ds.events[campaign.ID] = append(ds.events[campaign.ID], recipientEvents(userID, sentAt)...)
		}
	}

	return ds
}

// recipientEvents replays one recipient's engagement: a sent record,
// maybe some opens, maybe a click after an open.
func recipientEvents(userID string, sentAt time.Time) []stubEvent {
	subject := "user/" + userID
	at := sentAt

	events := []stubEvent{{
		EventID:      uuid.NewString(),
		EventSubject: subject,
		EventType:    string(domain.EventSent),
		EventTime:    at,
	}}

	opens := rand.Intn(4)
	for o := 0; o < opens; o++ {
		at = at.Add(time.Duration(rand.Intn(180)+5) * time.Minute)
		events = append(events, stubEvent{
			EventID:      uuid.NewString(),
			EventSubject: subject,
			EventType:    string(domain.EventOpen),
			EventTime:    at,
		})
		if rand.Intn(3) == 0 {
			at = at.Add(time.Duration(rand.Intn(10)+1) * time.Minute)
			events = append(events, stubEvent{
				EventID:      uuid.NewString(),
				EventSubject: subject,
				EventType:    string(domain.EventClick),
				EventTime:    at,
				EventTarget:  "https://example.com/offers/" + uuid.NewString()[:8],
			})
		}
	}
	return events
}

func main() {
	log.Println("Starting email-insights STUB upstream (generated data, local testing only)...")

	ds := generate()
	log.Printf("Generated %d campaigns, %d profiles", len(ds.campaigns), len(ds.profiles))

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"email-insights-stub"}`))
	})

	mux.HandleFunc("GET /api/email-service/emails/sent", func(w http.ResponseWriter, r *http.Request) {
		limit := len(ds.campaigns)
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed < limit {
				limit = parsed
			}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"data": ds.campaigns[:limit]})
	})

	mux.HandleFunc("GET /api/email-performance/{emailID}/events", func(w http.ResponseWriter, r *http.Request) {
		events, ok := ds.events[r.PathValue("emailID")]
		if !ok {
			http.Error(w, "unknown email", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/x-ndjson")
		enc := json.NewEncoder(w)
		for i, event := range events {
			// One corrupt line per stream so consumers exercise their
			// drop-bad-lines path, like the real feed occasionally does
			if i == len(events)/2 {
				fmt.Fprintln(w, `{"eventSubject": truncated`)
			}
			enc.Encode(event)
		}
	})

	mux.HandleFunc("GET /api/profiles/public/{userID}", func(w http.ResponseWriter, r *http.Request) {
		profile, ok := ds.profiles[r.PathValue("userID")]
		if !ok {
			http.Error(w, "profile not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(profile)
	})

	addr := os.Getenv("STUB_ADDR")
	if addr == "" {
		addr = defaultAddr
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Stub upstream listening on %s", addr)
		log.Printf("Point the server at it with EMAILSVC_DOMAIN=%s behind a TLS-terminating proxy", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Stub server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down stub...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	server.Shutdown(shutdownCtx)

	log.Println("Stub stopped")
}
