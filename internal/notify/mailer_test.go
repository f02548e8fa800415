package notify

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestFilterRecipients(t *testing.T) {
	allowed := []string{"awcghana.com"}
	in := []string{
		"cro@awcghana.com",
		"Board@AWCGhana.com",
		"outsider@gmail.com",
		"no-at-sign",
		"trailing@",
		" spaced@awcghana.com ",
	}
	got := FilterRecipients(in, allowed)
	want := []string{"cro@awcghana.com", "Board@AWCGhana.com", "spaced@awcghana.com"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestFilterRecipientsEmptyAllowList(t *testing.T) {
	if got := FilterRecipients([]string{"cro@awcghana.com"}, nil); got != nil {
		t.Fatalf("empty allow-list must reject everything, got %v", got)
	}
}

func TestSubject(t *testing.T) {
	asOf := time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC)
	if got := Subject(asOf); got != "DBG KRI Summary – 2025-05-31" {
		t.Fatalf("subject = %q", got)
	}
}

func TestComposeBodyWithDashboard(t *testing.T) {
	body := ComposeBody("First paragraph.\nSecond paragraph.", "Key Risk Indicator Overview", "https://bi.example.com/kri")
	if !strings.Contains(body, "https://bi.example.com/kri") {
		t.Fatal("missing dashboard link")
	}
	if !strings.Contains(body, "View Key Risk Indicator Overview") {
		t.Fatal("missing call-to-action label")
	}
	if !strings.Contains(body, "First paragraph.") || !strings.Contains(body, "Second paragraph.") {
		t.Fatal("paragraphs not rendered")
	}
	if strings.Contains(body, "currently unavailable") {
		t.Fatal("unavailability notice should not appear when a link exists")
	}
}

func TestComposeBodyWithoutDashboard(t *testing.T) {
	body := ComposeBody("Summary text.", "", "")
	if !strings.Contains(body, "Dashboard link currently unavailable.") {
		t.Fatal("missing unavailability notice")
	}
	if strings.Contains(body, "<a href") {
		t.Fatal("no link should be rendered")
	}
}

func TestComposeBodyEscapesHTML(t *testing.T) {
	body := ComposeBody("Risk <script>alert(1)</script> rising.", "", "")
	if strings.Contains(body, "<script>") {
		t.Fatal("summary text must be escaped")
	}
}
