package api

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ignite/email-insights/internal/config"
	"github.com/ignite/email-insights/internal/domain"
	"github.com/ignite/email-insights/internal/interactions"
	"github.com/ignite/email-insights/internal/pkg/httputil"
)

const maxPageSize = 100

// Handlers holds the dependencies for all HTTP handlers
type Handlers struct {
	svc       *interactions.Service
	dashboard config.DashboardConfig
}

// NewHandlers creates a new Handlers instance
func NewHandlers(svc *interactions.Service, dashboard config.DashboardConfig) *Handlers {
	return &Handlers{svc: svc, dashboard: dashboard}
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]string{
		"status":  "healthy",
		"service": "email-insights",
	})
}

type emailListResponse struct {
	Data       []domain.Campaign   `json:"data"`
	Pagination PaginationMeta      `json:"pagination"`
	Source     interactions.Source `json:"source"`
}

// ListEmails handles GET /api/emails.
// Optional since/until (RFC 3339) filter on the campaign send time;
// page/limit paginate the filtered list.
func (h *Handlers) ListEmails(w http.ResponseWriter, r *http.Request) {
	since, until, err := parseTimeRange(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	result := h.svc.SentEmails(r.Context())

	campaigns := result.Campaigns
	if !since.IsZero() || !until.IsZero() {
		filtered := make([]domain.Campaign, 0, len(campaigns))
		for _, campaign := range campaigns {
			if !since.IsZero() && campaign.SentAt.Before(since) {
				continue
			}
			if !until.IsZero() && campaign.SentAt.After(until) {
				continue
			}
			filtered = append(filtered, campaign)
		}
		campaigns = filtered
	}

	params := ParsePagination(r, h.dashboard.EmailPageSize, maxPageSize)
	start, end := pageSlice(len(campaigns), params)

	httputil.OK(w, emailListResponse{
		Data:       campaigns[start:end],
		Pagination: NewPaginationMeta(params, len(campaigns)),
		Source:     result.Source,
	})
}

type emailRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type performanceResponse struct {
	Email      emailRef             `json:"email"`
	Data       []domain.Interaction `json:"data"`
	Stats      interactions.Stats   `json:"stats"`
	Pagination PaginationMeta       `json:"pagination"`
	Source     interactions.Source  `json:"source"`
}

// GetPerformance handles GET /api/emails/{emailID}/performance.
// Query params: since/until (RFC 3339, defaulted from the campaign's send
// time), search, sort (recipient|status), direction
// (ascending|descending|original), page, limit.
func (h *Handlers) GetPerformance(w http.ResponseWriter, r *http.Request) {
	emailID := chi.URLParam(r, "emailID")

	campaign := h.findCampaign(r, emailID)
	since, until, err := parseTimeRange(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	if since.IsZero() || until.IsZero() {
		since, until = defaultWindow(campaign)
	}

	result := h.svc.Performance(r.Context(), emailID, since, until)

	// Stats cover the full result set, not the filtered page
	stats := interactions.ComputeStats(result.Interactions, campaign)

	list := interactions.SortRecipients(result.Interactions,
		interactions.SortKey(r.URL.Query().Get("sort")),
		interactions.SortDirection(r.URL.Query().Get("direction")))
	list = interactions.FilterRecipients(list, r.URL.Query().Get("search"))

	params := ParsePagination(r, h.dashboard.RecipientPageSize, maxPageSize)
	start, end := pageSlice(len(list), params)

	ref := emailRef{ID: emailID, Title: "Email"}
	if campaign != nil {
		ref.Title = campaign.Title
	}

	httputil.OK(w, performanceResponse{
		Email:      ref,
		Data:       list[start:end],
		Stats:      stats,
		Pagination: NewPaginationMeta(params, len(list)),
		Source:     result.Source,
	})
}

// ExportPerformanceCSV handles GET /api/emails/{emailID}/performance/export.
// Honors the same search/sort/direction/since/until params as
// GetPerformance and streams the full filtered set, not one page.
func (h *Handlers) ExportPerformanceCSV(w http.ResponseWriter, r *http.Request) {
	if !h.dashboard.EnableCSVDownload {
		httputil.NotFound(w, "CSV export is disabled")
		return
	}

	emailID := chi.URLParam(r, "emailID")

	campaign := h.findCampaign(r, emailID)
	since, until, err := parseTimeRange(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	if since.IsZero() || until.IsZero() {
		since, until = defaultWindow(campaign)
	}

	result := h.svc.Performance(r.Context(), emailID, since, until)

	list := interactions.SortRecipients(result.Interactions,
		interactions.SortKey(r.URL.Query().Get("sort")),
		interactions.SortDirection(r.URL.Query().Get("direction")))
	list = interactions.FilterRecipients(list, r.URL.Query().Get("search"))

	title := "email"
	if campaign != nil {
		title = campaign.Title
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+interactions.CSVFilename(title)+`"`)
	if err := interactions.WriteCSV(w, list); err != nil {
		// Headers and part of the body are already on the wire
		log.Printf("[api] CSV export aborted for %s: %v", emailID, err)
	}
}

// findCampaign resolves a campaign by id from the (possibly fixture)
// sent list, for its title and audience size. Nil when unknown.
func (h *Handlers) findCampaign(r *http.Request, emailID string) *domain.Campaign {
	result := h.svc.SentEmails(r.Context())
	for i := range result.Campaigns {
		if result.Campaigns[i].ID == emailID {
			return &result.Campaigns[i]
		}
	}
	return nil
}

// parseTimeRange reads optional since/until query params. Zero times mean
// "not provided".
func parseTimeRange(r *http.Request) (time.Time, time.Time, error) {
	var since, until time.Time

	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return since, until, err
		}
		since = parsed
	}
	if raw := r.URL.Query().Get("until"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return since, until, err
		}
		until = parsed
	}
	return since, until, nil
}

// defaultWindow derives the query range from the campaign send time, or
// the trailing 30 days when the campaign is unknown.
func defaultWindow(campaign *domain.Campaign) (time.Time, time.Time) {
	now := time.Now()
	if campaign != nil {
		return interactions.DetailWindow(campaign.SentAt, now)
	}
	return now.Add(-30 * 24 * time.Hour), now.Add(-10 * time.Second)
}
