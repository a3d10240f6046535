package interactions

import (
	"testing"
	"time"

	"github.com/ignite/email-insights/internal/domain"
)

func interactionFor(first, last string, sent bool, opens int) domain.Interaction {
	i := domain.Interaction{
		User:  domain.UserProfile{ID: last, FirstName: first, LastName: last},
		Opens: []domain.OpenDetail{},
	}
	if sent {
		at := t0
		i.SentTime = &at
	}
	for n := 0; n < opens; n++ {
		i.WasOpened = true
		i.Opens = append(i.Opens, domain.OpenDetail{
			OpenTime: t0.Add(time.Duration(n) * time.Minute),
			Clicks:   []domain.ClickDetail{},
		})
	}
	return i
}

func lastNames(list []domain.Interaction) []string {
	names := make([]string, len(list))
	for i, interaction := range list {
		names[i] = interaction.User.LastName
	}
	return names
}

func TestSortRecipientsOriginalIsIdentity(t *testing.T) {
	list := []domain.Interaction{
		interactionFor("Ana", "Reyes", true, 0),
		interactionFor("Bo", "Chen", true, 2),
	}

	sorted := SortRecipients(list, SortByRecipient, DirectionOriginal)
	got := lastNames(sorted)
	if got[0] != "Reyes" || got[1] != "Chen" {
		t.Errorf("Original direction must preserve canonical order, got %v", got)
	}
}

func TestSortRecipientsByName(t *testing.T) {
	list := []domain.Interaction{
		interactionFor("Ana", "Reyes", true, 0),
		interactionFor("Bo", "Chen", true, 0),
	}

	asc := SortRecipients(list, SortByRecipient, DirectionAscending)
	if got := lastNames(asc); got[0] != "Reyes" || got[1] != "Chen" {
		// "Ana Reyes" < "Bo Chen" on full name
		t.Errorf("Ascending name sort compares full names, got %v", got)
	}

	desc := SortRecipients(list, SortByRecipient, DirectionDescending)
	if got := lastNames(desc); got[0] != "Chen" || got[1] != "Reyes" {
		t.Errorf("Descending name sort wrong, got %v", got)
	}
}

func TestSortRecipientsByStatus(t *testing.T) {
	list := []domain.Interaction{
		interactionFor("A", "SentOnly", true, 0),
		interactionFor("B", "TwoOpens", true, 2),
		interactionFor("C", "Unknown", false, 0),
		interactionFor("D", "OneOpen", true, 1),
	}

	desc := SortRecipients(list, SortByStatus, DirectionDescending)
	got := lastNames(desc)
	want := []string{"TwoOpens", "OneOpen", "SentOnly", "Unknown"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Status descending order: got %v, want %v", got, want)
		}
	}

	asc := SortRecipients(list, SortByStatus, DirectionAscending)
	got = lastNames(asc)
	if got[0] != "Unknown" || got[3] != "TwoOpens" {
		t.Errorf("Status ascending order wrong: %v", got)
	}
}

func TestSortRecipientsDoesNotMutateInput(t *testing.T) {
	list := []domain.Interaction{
		interactionFor("Ana", "Reyes", true, 0),
		interactionFor("Bo", "Chen", true, 0),
	}

	_ = SortRecipients(list, SortByRecipient, DirectionAscending)
	if list[0].User.LastName != "Reyes" {
		t.Error("SortRecipients must operate on a copy")
	}
}

func TestFilterRecipients(t *testing.T) {
	list := []domain.Interaction{
		interactionFor("Nicole", "Adams", true, 1),
		interactionFor("Jean", "Kirstein", true, 0),
	}

	if got := FilterRecipients(list, "nicole ad"); len(got) != 1 || got[0].User.LastName != "Adams" {
		t.Errorf("Case-insensitive full-name filter failed: %v", lastNames(got))
	}
	if got := FilterRecipients(list, ""); len(got) != 2 {
		t.Errorf("Empty term must keep everything, got %d", len(got))
	}
	if got := FilterRecipients(list, "zzz"); len(got) != 0 {
		t.Errorf("Non-matching term must drop everything, got %d", len(got))
	}
}

func TestComputeStats(t *testing.T) {
	list := []domain.Interaction{
		interactionFor("A", "One", true, 2),
		interactionFor("B", "Two", true, 1),
		interactionFor("C", "Three", true, 0),
	}

	stats := ComputeStats(list, nil)
	if stats.TotalRecipients != 3 {
		t.Errorf("Expected 3 recipients without campaign info, got %d", stats.TotalRecipients)
	}
	if stats.UniqueOpens != 2 {
		t.Errorf("Expected 2 unique opens, got %d", stats.UniqueOpens)
	}
	if stats.TotalOpens != 3 {
		t.Errorf("Expected 3 total opens, got %d", stats.TotalOpens)
	}

	campaign := &domain.Campaign{TargetAudience: &domain.TargetAudience{TotalRecipients: 150}}
	stats = ComputeStats(list, campaign)
	if stats.TotalRecipients != 150 {
		t.Errorf("Campaign audience size must win, got %d", stats.TotalRecipients)
	}
}
