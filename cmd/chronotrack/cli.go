package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/sharai/chronotrack/internal/config"
	"github.com/sharai/chronotrack/internal/errors"
	"github.com/sharai/chronotrack/internal/ops"
	"github.com/sharai/chronotrack/internal/timeline"
	"github.com/sharai/chronotrack/internal/track"
	"github.com/sharai/chronotrack/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, ctrl *timeline.Controller, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "chronotrack",
		Usage:   "Activity time tracker",
		Version: Version,
		Commands: []*cli.Command{
			switchCmd(db, ctrl),
			stopCmd(ctrl),
			statusCmd(db, ctrl),
			logCmd(db),
			statsCmd(db),
			purgeCmd(db),
			activityCmd(db, ctrl),
			entryCmd(db),
			commentCmd(db),
			webCmd(db, ctrl, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// switchCmd creates the switch command.
func switchCmd(db *sql.DB, ctrl *timeline.Controller) *cli.Command {
	return &cli.Command{
		Name:      "switch",
		Usage:     "Start tracking an activity (closes the current one)",
		ArgsUsage: "<activity id or name>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "at", Usage: "Start timestamp, RFC 3339 (default: now)"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("activity id or name is required"))
			}

			id, err := resolveActivityID(db, c.Args().First())
			if err != nil {
				return outputError(err)
			}

			input := ops.SwitchInput{ActivityID: id}
			if at := c.String("at"); at != "" {
				t, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return outputError(errors.NewInvalidRequest("--at must be RFC 3339 (e.g. 2026-08-29T14:30:00Z)"))
				}
				input.Start = t
			}

			output, err := ops.Switch(ctrl, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// stopCmd creates the stop command.
func stopCmd(ctrl *timeline.Controller) *cli.Command {
	return &cli.Command{
		Name:  "stop",
		Usage: "Stop tracking the current activity",
		Action: func(_ *cli.Context) error {
			output, err := ops.Stop(ctrl)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// statusCmd creates the status command.
func statusCmd(db *sql.DB, ctrl *timeline.Controller) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show the current activity and elapsed time",
		Action: func(_ *cli.Context) error {
			output, err := ops.Status(db, ctrl)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// logCmd creates the log command.
func logCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "log",
		Usage: "List entries grouped by day (default: last 7 days)",
		Flags: rangeFlags(),
		Action: func(c *cli.Context) error {
			from, to, err := rangeFromFlags(c)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Statistics(db, ops.StatisticsInput{From: from, To: to})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(struct {
				From   string        `json:"from"`
				To     string        `json:"to"`
				PerDay []ops.DayView `json:"per_day"`
			}{output.From, output.To, output.PerDay})
		},
	}
}

// statsCmd creates the stats command.
func statsCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Per-activity totals and percentages for a range (default: last 7 days)",
		Flags: rangeFlags(),
		Action: func(c *cli.Context) error {
			from, to, err := rangeFromFlags(c)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Statistics(db, ops.StatisticsInput{From: from, To: to})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// purgeCmd creates the purge command.
func purgeCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "purge",
		Usage: "Permanently delete closed entries fully inside a range",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "from", Required: true, Usage: "Range start (YYYY-MM-DD or RFC 3339)"},
			&cli.StringFlag{Name: "to", Required: true, Usage: "Range end, exclusive (YYYY-MM-DD or RFC 3339)"},
		},
		Action: func(c *cli.Context) error {
			from, err := parseDate(c.String("from"))
			if err != nil {
				return outputError(err)
			}
			to, err := parseDate(c.String("to"))
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Purge(db, ops.PurgeInput{From: from, To: to})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// activityCmd creates the activity command group.
func activityCmd(db *sql.DB, ctrl *timeline.Controller) *cli.Command {
	return &cli.Command{
		Name:  "activity",
		Usage: "Manage activities",
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Create a new activity",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Required: true, Usage: "Activity name"},
					&cli.StringFlag{Name: "color", Aliases: []string{"c"}, Usage: "Display color (#rrggbb)"},
					&cli.StringFlag{Name: "icon", Aliases: []string{"i"}, Usage: "Icon name"},
				},
				Action: func(c *cli.Context) error {
					input := ops.ActivityCreateInput{
						Name: c.String("name"),
						Icon: c.String("icon"),
					}
					if colorStr := c.String("color"); colorStr != "" {
						color, err := parseColor(colorStr)
						if err != nil {
							return outputError(err)
						}
						input.Color = color
					}

					output, err := ops.ActivityCreate(db, input)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:  "list",
				Usage: "List activities",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "archived", Usage: "List archived activities instead"},
				},
				Action: func(c *cli.Context) error {
					output, err := ops.ActivityList(db, ops.ActivityListInput{Archived: c.Bool("archived")})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "edit",
				Usage:     "Edit an activity's name, color, or icon",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "New name"},
					&cli.StringFlag{Name: "color", Aliases: []string{"c"}, Usage: "New color (#rrggbb)"},
					&cli.StringFlag{Name: "icon", Aliases: []string{"i"}, Usage: "New icon"},
				},
				Action: func(c *cli.Context) error {
					input := ops.ActivityUpdateInput{ID: c.Args().First()}
					if c.IsSet("name") {
						name := c.String("name")
						input.Name = &name
					}
					if c.IsSet("color") {
						color, err := parseColor(c.String("color"))
						if err != nil {
							return outputError(err)
						}
						input.Color = &color
					}
					if c.IsSet("icon") {
						icon := c.String("icon")
						input.Icon = &icon
					}

					output, err := ops.ActivityUpdate(db, input)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "archive",
				Usage:     "Archive an activity (entries are kept)",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					output, err := ops.ActivityArchive(db, ctrl, ops.ActivityArchiveInput{ID: c.Args().First()})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "restore",
				Usage:     "Restore an archived activity",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					output, err := ops.ActivityRestore(db, ops.ActivityRestoreInput{ID: c.Args().First()})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete an activity and all its entries",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					output, err := ops.ActivityDelete(db, ctrl, ops.ActivityDeleteInput{ID: c.Args().First()})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
		},
	}
}

// entryCmd creates the entry command group.
func entryCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "entry",
		Usage: "Inspect and delete individual entries",
		Subcommands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Show an entry with its comments",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					output, err := ops.EntryGet(db, ops.EntryGetInput{ID: c.Args().First()})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a closed entry (comments are removed too)",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					output, err := ops.EntryDelete(db, ops.EntryDeleteInput{ID: c.Args().First()})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
		},
	}
}

// commentCmd creates the comment command group.
func commentCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "comment",
		Usage: "Manage comments on entries",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Attach a comment to an entry",
				ArgsUsage: "<entry id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "text", Aliases: []string{"t"}, Usage: "Comment text"},
					&cli.StringFlag{Name: "media-type", Usage: "Media type: photo|video|audio"},
					&cli.StringFlag{Name: "media-uri", Usage: "Media URI"},
				},
				Action: func(c *cli.Context) error {
					input := ops.CommentAddInput{
						TimeEntryID: c.Args().First(),
						Text:        c.String("text"),
						MediaType:   c.String("media-type"),
						MediaURI:    c.String("media-uri"),
					}
					output, err := ops.CommentAdd(db, input)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "list",
				Usage:     "List an entry's comments",
				ArgsUsage: "<entry id>",
				Action: func(c *cli.Context) error {
					output, err := ops.CommentList(db, ops.CommentListInput{TimeEntryID: c.Args().First()})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "edit",
				Usage:     "Edit a comment's text",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "text", Aliases: []string{"t"}, Required: true, Usage: "New text"},
				},
				Action: func(c *cli.Context) error {
					text := c.String("text")
					output, err := ops.CommentUpdate(db, ops.CommentUpdateInput{
						ID:   c.Args().First(),
						Text: &text,
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a comment",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					output, err := ops.CommentDelete(db, ops.CommentDeleteInput{ID: c.Args().First()})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
		},
	}
}

// webCmd creates the web command.
func webCmd(db *sql.DB, ctrl *timeline.Controller, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "web",
		Usage: "Serve the web dashboard",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Usage: "Bind address (default from config)"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Port (default from config)"},
		},
		Action: func(c *cli.Context) error {
			bind := cfg.WebBind
			if c.IsSet("bind") {
				bind = c.String("bind")
			}
			port := cfg.WebPort
			if c.IsSet("port") {
				port = c.Int("port")
			}

			srv := web.NewServer(db, ctrl, cfg, Version, bind, port)
			return web.Run(srv)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if trackErr, ok := err.(*errors.TrackError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", trackErr.Code, trackErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// rangeFlags returns the shared --from/--to flags.
func rangeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "from", Usage: "Range start (YYYY-MM-DD or RFC 3339)"},
		&cli.StringFlag{Name: "to", Usage: "Range end, exclusive (YYYY-MM-DD or RFC 3339)"},
	}
}

// rangeFromFlags resolves --from/--to, defaulting to the last 7 days
// ending tomorrow so today's entries are included.
func rangeFromFlags(c *cli.Context) (time.Time, time.Time, error) {
	fromStr := c.String("from")
	toStr := c.String("to")

	if fromStr == "" && toStr == "" {
		end := track.NextDay(time.Now())
		return end.AddDate(0, 0, -7), end, nil
	}
	if fromStr == "" || toStr == "" {
		return time.Time{}, time.Time{}, errors.NewInvalidRequest("--from and --to must be provided together")
	}

	from, err := parseDate(fromStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := parseDate(toStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}

// parseDate accepts a calendar date or a full RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, errors.NewInvalidRequest(fmt.Sprintf("invalid date %q: use YYYY-MM-DD or RFC 3339", s))
}

// resolveActivityID resolves a user-supplied activity reference. IDs are
// matched first, then names case-insensitively, active before archived.
func resolveActivityID(db *sql.DB, ref string) (string, error) {
	if ref == "" {
		return "", errors.NewInvalidRequest("activity id or name is required")
	}

	for _, archived := range []bool{false, true} {
		output, err := ops.ActivityList(db, ops.ActivityListInput{Archived: archived})
		if err != nil {
			return "", err
		}
		for _, a := range output.Activities {
			if a.ID == ref {
				return a.ID, nil
			}
		}
		for _, a := range output.Activities {
			if strings.EqualFold(a.Name, ref) {
				return a.ID, nil
			}
		}
	}
	return "", errors.NewNotFound("activity", ref)
}

// parseColor parses a "#rrggbb" hex color into an opaque ARGB int.
func parseColor(s string) (int, error) {
	hex, ok := strings.CutPrefix(s, "#")
	if !ok || len(hex) != 6 {
		return 0, errors.NewInvalidRequest("color must be #rrggbb (e.g. #ff6b35)")
	}
	rgb, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, errors.NewInvalidRequest("color must be #rrggbb (e.g. #ff6b35)")
	}
	return int(int32(0xFF000000 | uint32(rgb))), nil
}
