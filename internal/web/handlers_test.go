package web

import (
	"encoding/json"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/sharai/chronotrack/internal/config"
	"github.com/sharai/chronotrack/internal/db"
	"github.com/sharai/chronotrack/internal/ops"
	"github.com/sharai/chronotrack/internal/timeline"
)

func setupTest(t *testing.T) *Handlers {
	t.Helper()
	database, err := db.Init(t.TempDir(), false)
	if err != nil {
		t.Fatalf("db.Init: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	ctrl := timeline.NewController(database)
	if err := ctrl.Recover(); err != nil {
		t.Fatalf("ctrl.Recover: %v", err)
	}

	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		t.Fatalf("template sub-FS: %v", err)
	}

	return &Handlers{
		db:       database,
		ctrl:     ctrl,
		cfg:      config.DefaultConfig(),
		renderer: NewRenderer(templateSub, "test"),
	}
}

// seedActivity creates an activity and returns its ID.
func seedActivity(t *testing.T, h *Handlers, name string) string {
	t.Helper()
	out, err := ops.ActivityCreate(h.db, ops.ActivityCreateInput{Name: name, Color: -48511})
	if err != nil {
		t.Fatalf("seed activity %q: %v", name, err)
	}
	return out.Activity.ID
}

// seedClosedEntry tracks the activity for roughly an hour ending now and
// returns the entry ID.
func seedClosedEntry(t *testing.T, h *Handlers, activityID string) string {
	t.Helper()
	start := time.Now().Add(-time.Hour)
	if _, err := ops.Switch(h.ctrl, ops.SwitchInput{ActivityID: activityID, Start: start}); err != nil {
		t.Fatalf("seed switch: %v", err)
	}
	if _, err := ops.Stop(h.ctrl); err != nil {
		t.Fatalf("seed stop: %v", err)
	}
	entries, err := db.ListTimeEntriesForActivity(h.db, activityID)
	if err != nil {
		t.Fatalf("seed list entries: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("seed produced no entries")
	}
	return entries[0].ID
}

// --- HandleTimeline ---

func TestHandleTimeline_Idle(t *testing.T) {
	h := setupTest(t)

	req := httptest.NewRequest("GET", "/timeline", nil)
	rec := httptest.NewRecorder()
	h.HandleTimeline(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Not tracking.") {
		t.Error("expected idle banner")
	}
	if !strings.Contains(body, "No entries in this range.") {
		t.Error("expected empty state message")
	}
}

func TestHandleTimeline_Tracking(t *testing.T) {
	h := setupTest(t)
	workID := seedActivity(t, h, "Work")
	if _, err := ops.Switch(h.ctrl, ops.SwitchInput{ActivityID: workID}); err != nil {
		t.Fatalf("switch: %v", err)
	}

	req := httptest.NewRequest("GET", "/timeline", nil)
	rec := httptest.NewRecorder()
	h.HandleTimeline(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Work") {
		t.Error("expected tracked activity name in banner")
	}
	if !strings.Contains(body, `action="/stop"`) {
		t.Error("expected stop form while tracking")
	}
}

func TestHandleTimeline_ExplicitRange(t *testing.T) {
	h := setupTest(t)
	workID := seedActivity(t, h, "Work")
	seedClosedEntry(t, h, workID)

	today := time.Now().Format("2006-01-02")
	req := httptest.NewRequest("GET", "/timeline?from="+today+"&to="+today, nil)
	rec := httptest.NewRecorder()
	h.HandleTimeline(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Work") {
		t.Error("expected entry for today in explicit range")
	}
}

func TestHandleTimeline_InvalidRange(t *testing.T) {
	h := setupTest(t)

	req := httptest.NewRequest("GET", "/timeline?from=notadate&to=2026-08-29", nil)
	rec := httptest.NewRecorder()
	h.HandleTimeline(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

// --- HandleStats ---

func TestHandleStats_Empty(t *testing.T) {
	h := setupTest(t)

	req := httptest.NewRequest("GET", "/stats", nil)
	rec := httptest.NewRecorder()
	h.HandleStats(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No tracked time in this range.") {
		t.Error("expected empty state message")
	}
}

func TestHandleStats_WithEntries(t *testing.T) {
	h := setupTest(t)
	workID := seedActivity(t, h, "Work")
	seedClosedEntry(t, h, workID)

	req := httptest.NewRequest("GET", "/stats", nil)
	rec := httptest.NewRecorder()
	h.HandleStats(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Work") {
		t.Error("expected activity name in stats table")
	}
	// A single activity owns the whole range
	if !strings.Contains(body, "100.0%") {
		t.Error("expected 100.0% share for the only activity")
	}
}

// --- HandleActivities ---

func TestHandleActivities(t *testing.T) {
	h := setupTest(t)
	workID := seedActivity(t, h, "Work")
	sleepID := seedActivity(t, h, "Sleep")
	if _, err := ops.ActivityArchive(h.db, h.ctrl, ops.ActivityArchiveInput{ID: sleepID}); err != nil {
		t.Fatalf("archive: %v", err)
	}
	if _, err := ops.Switch(h.ctrl, ops.SwitchInput{ActivityID: workID}); err != nil {
		t.Fatalf("switch: %v", err)
	}

	req := httptest.NewRequest("GET", "/activities", nil)
	rec := httptest.NewRecorder()
	h.HandleActivities(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Work") {
		t.Error("expected active activity")
	}
	if !strings.Contains(body, "Archived") || !strings.Contains(body, "Sleep") {
		t.Error("expected archived section with Sleep")
	}
	if !strings.Contains(body, "tracking") {
		t.Error("expected tracking badge on the current activity")
	}
}

func TestHandleActivities_Empty(t *testing.T) {
	h := setupTest(t)

	req := httptest.NewRequest("GET", "/activities", nil)
	rec := httptest.NewRecorder()
	h.HandleActivities(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No activities yet") {
		t.Error("expected empty state message")
	}
}

// --- HandleSwitch / HandleStop ---

func TestHandleSwitch_Redirects(t *testing.T) {
	h := setupTest(t)
	workID := seedActivity(t, h, "Work")

	req := httptest.NewRequest("POST", "/activities/"+workID+"/switch", nil)
	req.SetPathValue("id", workID)
	rec := httptest.NewRecorder()
	h.HandleSwitch(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/timeline" {
		t.Errorf("Location = %q, want /timeline", loc)
	}
}

func TestHandleSwitch_UnknownActivity(t *testing.T) {
	h := setupTest(t)

	req := httptest.NewRequest("POST", "/activities/NONEXISTENT/switch", nil)
	req.SetPathValue("id", "NONEXISTENT")
	rec := httptest.NewRecorder()
	h.HandleSwitch(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandleStop_Redirects(t *testing.T) {
	h := setupTest(t)
	workID := seedActivity(t, h, "Work")
	if _, err := ops.Switch(h.ctrl, ops.SwitchInput{ActivityID: workID}); err != nil {
		t.Fatalf("switch: %v", err)
	}

	req := httptest.NewRequest("POST", "/stop", nil)
	rec := httptest.NewRecorder()
	h.HandleStop(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if h.ctrl.Current().Activity != nil {
		t.Error("still tracking after stop")
	}
}

// --- HandleEntryDetail ---

func TestHandleEntryDetail_Found(t *testing.T) {
	h := setupTest(t)
	workID := seedActivity(t, h, "Work")
	entryID := seedClosedEntry(t, h, workID)
	if _, err := ops.CommentAdd(h.db, ops.CommentAddInput{TimeEntryID: entryID, Text: "went *well*"}); err != nil {
		t.Fatalf("comment add: %v", err)
	}

	req := httptest.NewRequest("GET", "/entries/"+entryID, nil)
	req.SetPathValue("id", entryID)
	rec := httptest.NewRecorder()
	h.HandleEntryDetail(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Work") {
		t.Error("expected activity name on detail page")
	}
	// Markdown emphasis should come through rendered
	if !strings.Contains(body, "<em>well</em>") {
		t.Error("expected rendered markdown in comment body")
	}
	if !strings.Contains(body, "Delete entry") {
		t.Error("expected delete button for a closed entry")
	}
}

func TestHandleEntryDetail_OpenEntryHidesDelete(t *testing.T) {
	h := setupTest(t)
	workID := seedActivity(t, h, "Work")
	if _, err := ops.Switch(h.ctrl, ops.SwitchInput{ActivityID: workID}); err != nil {
		t.Fatalf("switch: %v", err)
	}
	entries, err := db.ListTimeEntriesForActivity(h.db, workID)
	if err != nil || len(entries) == 0 {
		t.Fatalf("list entries: %v (%d)", err, len(entries))
	}

	req := httptest.NewRequest("GET", "/entries/"+entries[0].ID, nil)
	req.SetPathValue("id", entries[0].ID)
	rec := httptest.NewRecorder()
	h.HandleEntryDetail(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "Delete entry") {
		t.Error("open entry should not offer deletion")
	}
}

func TestHandleEntryDetail_NotFound(t *testing.T) {
	h := setupTest(t)

	req := httptest.NewRequest("GET", "/entries/NONEXISTENT", nil)
	req.SetPathValue("id", "NONEXISTENT")
	rec := httptest.NewRecorder()
	h.HandleEntryDetail(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<!DOCTYPE html>") {
		t.Error("full error page should contain layout")
	}
	if !strings.Contains(body, "404") {
		t.Error("error page should show status code")
	}
}

// --- HandleCommentAdd ---

func TestHandleCommentAdd_Redirects(t *testing.T) {
	h := setupTest(t)
	workID := seedActivity(t, h, "Work")
	entryID := seedClosedEntry(t, h, workID)

	form := url.Values{"text": {"from the dashboard"}}
	req := httptest.NewRequest("POST", "/entries/"+entryID+"/comments", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetPathValue("id", entryID)
	rec := httptest.NewRecorder()
	h.HandleCommentAdd(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/entries/"+entryID {
		t.Errorf("Location = %q, want /entries/%s", loc, entryID)
	}

	out, err := ops.CommentList(h.db, ops.CommentListInput{TimeEntryID: entryID})
	if err != nil {
		t.Fatalf("comment list: %v", err)
	}
	if len(out.Comments) != 1 {
		t.Errorf("comments = %d, want 1", len(out.Comments))
	}
}

func TestHandleCommentAdd_EmptyText(t *testing.T) {
	h := setupTest(t)
	workID := seedActivity(t, h, "Work")
	entryID := seedClosedEntry(t, h, workID)

	form := url.Values{"text": {"   "}}
	req := httptest.NewRequest("POST", "/entries/"+entryID+"/comments", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetPathValue("id", entryID)
	rec := httptest.NewRecorder()
	h.HandleCommentAdd(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

// --- HandleEntryDelete ---

func TestHandleEntryDelete_ClosedEntry(t *testing.T) {
	h := setupTest(t)
	workID := seedActivity(t, h, "Work")
	entryID := seedClosedEntry(t, h, workID)

	req := httptest.NewRequest("POST", "/entries/"+entryID+"/delete", nil)
	req.SetPathValue("id", entryID)
	rec := httptest.NewRecorder()
	h.HandleEntryDelete(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/timeline" {
		t.Errorf("Location = %q, want /timeline", loc)
	}
}

func TestHandleEntryDelete_OpenEntryRejected(t *testing.T) {
	h := setupTest(t)
	workID := seedActivity(t, h, "Work")
	if _, err := ops.Switch(h.ctrl, ops.SwitchInput{ActivityID: workID}); err != nil {
		t.Fatalf("switch: %v", err)
	}
	entries, err := db.ListTimeEntriesForActivity(h.db, workID)
	if err != nil || len(entries) == 0 {
		t.Fatalf("list entries: %v (%d)", err, len(entries))
	}

	req := httptest.NewRequest("POST", "/entries/"+entries[0].ID+"/delete", nil)
	req.SetPathValue("id", entries[0].ID)
	rec := httptest.NewRecorder()
	h.HandleEntryDelete(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

// --- Error rendering ---

func TestErrorRendering_JSONError(t *testing.T) {
	h := setupTest(t)

	req := httptest.NewRequest("GET", "/entries/NONEXISTENT", nil)
	req.SetPathValue("id", "NONEXISTENT")
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.HandleEntryDetail(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var resp map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	errObj, ok := resp["error"].(map[string]any)
	if !ok {
		t.Fatal("expected error object in JSON response")
	}
	if errObj["status"] != float64(404) {
		t.Errorf("error.status = %v, want 404", errObj["status"])
	}
	if errObj["code"] != "NOT_FOUND" {
		t.Errorf("error.code = %v, want NOT_FOUND", errObj["code"])
	}
}

// --- Helper functions ---

func TestParseRange_Default(t *testing.T) {
	req := httptest.NewRequest("GET", "/timeline", nil)
	from, to, err := parseRange(req)
	if err != nil {
		t.Fatalf("parseRange: %v", err)
	}
	if !to.AddDate(0, 0, -defaultRangeDays).Equal(from) {
		t.Errorf("default range = [%v, %v), want %d days", from, to, defaultRangeDays)
	}
	if !to.After(time.Now()) {
		t.Error("default range should end after now")
	}
}

func TestParseRange_Explicit(t *testing.T) {
	req := httptest.NewRequest("GET", "/stats?from=2026-08-22&to=2026-08-28", nil)
	from, to, err := parseRange(req)
	if err != nil {
		t.Fatalf("parseRange: %v", err)
	}
	if from.Format("2006-01-02") != "2026-08-22" {
		t.Errorf("from = %v", from)
	}
	// The inclusive "to" date becomes an exclusive next-day bound
	if to.Format("2006-01-02") != "2026-08-29" {
		t.Errorf("to = %v, want exclusive 2026-08-29", to)
	}
}

func TestParseRange_Invalid(t *testing.T) {
	for _, q := range []string{"from=bad&to=2026-08-29", "from=2026-08-22&to=bad", "from=2026-08-22"} {
		req := httptest.NewRequest("GET", "/stats?"+q, nil)
		if _, _, err := parseRange(req); err == nil {
			t.Errorf("parseRange(%q) expected error", q)
		}
	}
}

func TestFormatClock(t *testing.T) {
	if got := formatClock("2026-08-29T14:30:05Z"); got != "14:30:05" {
		t.Errorf("formatClock = %q, want 14:30:05", got)
	}
	// Unparseable input passes through
	if got := formatClock("garbage"); got != "garbage" {
		t.Errorf("formatClock(garbage) = %q", got)
	}
}

func TestFormatDurationSecs(t *testing.T) {
	tests := []struct {
		secs int64
		want string
	}{
		{0, "00:00:00"},
		{59, "00:00:59"},
		{3661, "01:01:01"},
		{36000, "10:00:00"},
	}
	for _, tt := range tests {
		if got := formatDurationSecs(tt.secs); got != tt.want {
			t.Errorf("formatDurationSecs(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := formatPercent(66.666666); got != "66.7%" {
		t.Errorf("formatPercent = %q, want 66.7%%", got)
	}
	if got := formatPercent(0); got != "0.0%" {
		t.Errorf("formatPercent(0) = %q, want 0.0%%", got)
	}
}

func TestColorCSS(t *testing.T) {
	// Work preset: ARGB 0xFFFF4081
	if got := colorCSS(-48511); got != "#ff4081" {
		t.Errorf("colorCSS(-48511) = %q, want #ff4081", got)
	}
	black := uint32(0xFF000000)
	if got := colorCSS(int(int32(black))); got != "#000000" {
		t.Errorf("colorCSS(black) = %q, want #000000", got)
	}
}

func TestRenderMarkdown_EscapesRawHTML(t *testing.T) {
	out := string(renderMarkdown(`<script>alert(1)</script> *ok*`))
	if strings.Contains(out, "<script>") {
		t.Error("raw HTML should be escaped")
	}
	if !strings.Contains(out, "<em>ok</em>") {
		t.Error("markdown emphasis should render")
	}
}
