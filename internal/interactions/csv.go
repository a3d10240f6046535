package interactions

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/ignite/email-insights/internal/domain"
)

// csvTimeFormat matches the dashboard's medium-date/short-time display.
const csvTimeFormat = "Jan 2, 2006, 3:04 PM"

// WriteCSV emits one header row and one data row per sent/open/click fact,
// in that nesting order per recipient. Every field is quoted and embedded
// quotes are doubled (RFC 4180 style); encoding/csv is not used because it
// only quotes fields that need it, and consumers of this export expect the
// all-quoted form.
func WriteCSV(w io.Writer, list []domain.Interaction) error {
	header := "First Name,Last Name,User ID,Interaction Type,Interaction Time,Clicked URL"
	if _, err := io.WriteString(w, header+"\n"); err != nil {
		return err
	}

	for _, interaction := range list {
		base := []string{
			interaction.User.FirstName,
			interaction.User.LastName,
			interaction.User.ID,
		}

		if interaction.SentTime != nil {
			if err := writeRow(w, base, "Sent", *interaction.SentTime, ""); err != nil {
				return err
			}
		}
		for _, open := range interaction.Opens {
			if err := writeRow(w, base, "Open", open.OpenTime, ""); err != nil {
				return err
			}
			for _, click := range open.Clicks {
				if err := writeRow(w, base, "Click", click.ClickTime, click.TargetURL); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func writeRow(w io.Writer, base []string, kind string, at time.Time, url string) error {
	fields := make([]string, 0, 6)
	fields = append(fields, base...)
	fields = append(fields, kind, at.Format(csvTimeFormat), url)

	quoted := make([]string, len(fields))
	for i, field := range fields {
		quoted[i] = escapeCSVField(field)
	}
	_, err := fmt.Fprintln(w, strings.Join(quoted, ","))
	return err
}

// escapeCSVField quotes a field unconditionally, doubling embedded quotes.
func escapeCSVField(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

var unsafeFilenameRe = regexp.MustCompile(`[^a-z0-9]+`)

// CSVFilename derives a download filename from a campaign title.
func CSVFilename(title string) string {
	if title == "" {
		title = "email"
	}
	slug := unsafeFilenameRe.ReplaceAllString(strings.ToLower(title), "_")
	slug = strings.Trim(slug, "_")
	if slug == "" {
		slug = "email"
	}
	return "email_performance_" + slug + ".csv"
}
