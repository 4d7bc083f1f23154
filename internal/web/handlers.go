package web

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/sharai/chronotrack/internal/config"
	"github.com/sharai/chronotrack/internal/errors"
	"github.com/sharai/chronotrack/internal/ops"
	"github.com/sharai/chronotrack/internal/timeline"
	"github.com/sharai/chronotrack/internal/track"
)

// defaultRangeDays is the window shown when no range is given.
const defaultRangeDays = 7

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	db       *sql.DB
	ctrl     *timeline.Controller
	cfg      *config.Config
	renderer *Renderer
}

// parseRange reads from/to query parameters ("2006-01-02"). An absent
// range defaults to the last defaultRangeDays days ending tomorrow.
func parseRange(r *http.Request) (time.Time, time.Time, error) {
	fromStr := r.URL.Query().Get("from")
	toStr := r.URL.Query().Get("to")

	if fromStr == "" && toStr == "" {
		end := track.NextDay(time.Now())
		return end.AddDate(0, 0, -defaultRangeDays), end, nil
	}

	from, err := time.ParseInLocation("2006-01-02", fromStr, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, errors.NewInvalidRequest("from must be a date (e.g. 2026-08-22)")
	}
	to, err := time.ParseInLocation("2006-01-02", toStr, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, errors.NewInvalidRequest("to must be a date (e.g. 2026-08-29)")
	}

	// The "to" date is inclusive in the form, exclusive in the range.
	return from, track.NextDay(to), nil
}

// HandleTimeline renders the timeline page: current status plus recent
// entries grouped by day.
func (h *Handlers) HandleTimeline(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseRange(r)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	status, err := ops.Status(h.db, h.ctrl)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	statsOut, err := ops.Statistics(h.db, ops.StatisticsInput{From: from, To: to})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, "timeline", TimelinePageData{
		PageData: PageData{
			Title:   "Timeline",
			Version: h.renderer.version,
			Nav:     "timeline",
		},
		Status: status,
		Days:   statsOut.PerDay,
		From:   from.Format("2006-01-02"),
		To:     to.AddDate(0, 0, -1).Format("2006-01-02"),
	})
}

// HandleStats renders the statistics page for the requested range.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseRange(r)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	statsOut, err := ops.Statistics(h.db, ops.StatisticsInput{From: from, To: to})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, "stats", StatsPageData{
		PageData: PageData{
			Title:   "Statistics",
			Version: h.renderer.version,
			Nav:     "stats",
		},
		Stats: statsOut,
		From:  from.Format("2006-01-02"),
		To:    to.AddDate(0, 0, -1).Format("2006-01-02"),
	})
}

// HandleActivities renders the activity management page.
func (h *Handlers) HandleActivities(w http.ResponseWriter, r *http.Request) {
	active, err := ops.ActivityList(h.db, ops.ActivityListInput{})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	archived, err := ops.ActivityList(h.db, ops.ActivityListInput{Archived: true})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	data := ActivitiesPageData{
		PageData: PageData{
			Title:   "Activities",
			Version: h.renderer.version,
			Nav:     "activities",
		},
		Active:   active.Activities,
		Archived: archived.Activities,
	}
	for i := range active.Activities {
		if active.Activities[i].Current {
			data.Tracking = &active.Activities[i]
			break
		}
	}

	h.renderer.renderPage(w, "activities", data)
}

// HandleSwitch starts tracking the activity in the path and redirects back.
func (h *Handlers) HandleSwitch(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if _, err := ops.Switch(h.ctrl, ops.SwitchInput{ActivityID: id}); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, "/timeline", http.StatusSeeOther)
}

// HandleStop ends tracking and redirects back to the timeline.
func (h *Handlers) HandleStop(w http.ResponseWriter, r *http.Request) {
	if _, err := ops.Stop(h.ctrl); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, "/timeline", http.StatusSeeOther)
}

// HandleEntryDetail renders one entry with its comments.
func (h *Handlers) HandleEntryDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	out, err := ops.EntryGet(h.db, ops.EntryGetInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	rendered := make([]RenderedComment, 0, len(out.Comments))
	for _, c := range out.Comments {
		rendered = append(rendered, RenderedComment{
			CommentView:  c,
			RenderedHTML: renderMarkdown(c.Text),
		})
	}

	h.renderer.renderPage(w, "entry", EntryPageData{
		PageData: PageData{
			Title:   "Entry",
			Version: h.renderer.version,
			Nav:     "timeline",
		},
		Entry:    out.Entry,
		Comments: rendered,
	})
}

// HandleCommentAdd attaches a comment from the entry page form.
func (h *Handlers) HandleCommentAdd(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	input := ops.CommentAddInput{
		TimeEntryID: id,
		Text:        r.PostFormValue("text"),
		MediaType:   r.PostFormValue("media_type"),
		MediaURI:    r.PostFormValue("media_uri"),
	}
	if _, err := ops.CommentAdd(h.db, input); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/entries/%s", id), http.StatusSeeOther)
}

// HandleEntryDelete removes a closed entry and returns to the timeline.
func (h *Handlers) HandleEntryDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if _, err := ops.EntryDelete(h.db, ops.EntryDeleteInput{ID: id}); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, "/timeline", http.StatusSeeOther)
}
