package cli

import (
	"fmt"
	"strings"
	"time"

	"habit-tracker/internal/model"
	"habit-tracker/internal/service"
)

type ListCmd struct {
	Date   string `help:"Date in YYYY-MM-DD format (default: today)." default:""`
	Filter string `help:"all, today, completed or not-completed." default:"all"`
	Search string `help:"Only trackers whose name contains this text." default:""`
}

func (c *ListCmd) Run(ctx *Context) error {
	day, err := ctx.day(c.Date)
	if err != nil {
		return err
	}
	filter, err := model.ParseFilterType(c.Filter)
	if err != nil {
		return err
	}

	ctx.Session.SetSelectedDate(day)
	if err := ctx.Session.SetFilter(filter); err != nil {
		return err
	}
	ctx.Session.SetSearchQuery(c.Search)

	view, err := ctx.Session.View(ctx.Ctx)
	if err != nil {
		return err
	}
	ctx.printf("%s\n", renderList(view))
	return nil
}

// renderList prints the view grouped by category.
func renderList(v service.View) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s · %s", v.Date.Format(model.DayLayout), v.Filter.Title())))
	b.WriteByte('\n')
	if v.Search != "" {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("search: %q", v.Search)))
		b.WriteByte('\n')
	}
	if v.Empty != service.EmptyNone {
		b.WriteString(warningStyle.Render(v.Empty.Message()))
		return b.String()
	}
	for _, cat := range v.Categories {
		b.WriteByte('\n')
		b.WriteString(categoryStyle.Render(cat.Title))
		b.WriteByte('\n')
		for _, tr := range cat.Trackers {
			mark := "[ ]"
			if tr.CompletedOnDate {
				mark = doneStyle.Render("[x]")
			}
			b.WriteString(fmt.Sprintf("%s %s %s  %s  %s\n",
				mark,
				tr.Emoji,
				colorStyle(tr.Color).Render(tr.Name),
				mutedStyle.Render(scheduleText(tr.Schedule, tr.OneOffDay)),
				mutedStyle.Render(service.DaysLabel(tr.CompletedDays)+" · "+shortID(tr.ID)),
			))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func scheduleText(s model.Schedule, oneOffDay *string) string {
	if s.IsEmpty() {
		if oneOffDay != nil {
			return "once " + *oneOffDay
		}
		return "once"
	}
	return s.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

type AddCmd struct {
	Name     string `arg:"" help:"Tracker name."`
	Category string `help:"Category title, created when missing." required:""`
	Days     string `help:"Weekdays, e.g. \"mon,wed,fri\" or \"daily\". Empty makes a one-off tracker." default:""`
	Date     string `help:"Day of a one-off tracker in YYYY-MM-DD format (default: today)." default:""`
	Emoji    string `help:"Emoji from the palette." default:"🙂"`
	Color    string `help:"Colour name from the palette." default:"green"`
}

func (c *AddCmd) Run(ctx *Context) error {
	schedule, err := model.ParseSchedule(c.Days)
	if err != nil {
		return err
	}
	input := service.TrackerInput{
		Name:     c.Name,
		Category: c.Category,
		Color:    c.Color,
		Emoji:    c.Emoji,
		Schedule: schedule,
	}
	if schedule.IsEmpty() {
		day, err := ctx.day(c.Date)
		if err != nil {
			return err
		}
		input.OneOffDate = day
	}

	tracker, err := ctx.Session.CreateTracker(ctx.Ctx, input)
	if err != nil {
		return err
	}
	ctx.printf("Added tracker %s (%s)\n", tracker.Name, shortID(tracker.ID))
	return nil
}

type EditCmd struct {
	Tracker  string  `arg:"" help:"Tracker id, id prefix or name."`
	Name     *string `help:"New name."`
	Category *string `help:"New category title."`
	Days     *string `help:"New weekdays; empty makes it one-off."`
	Date     *string `help:"New day of a one-off tracker."`
	Emoji    *string `help:"New emoji."`
	Color    *string `help:"New colour."`
}

func (c *EditCmd) Run(ctx *Context) error {
	tracker, err := ctx.Trackers.Resolve(ctx.Ctx, c.Tracker)
	if err != nil {
		return err
	}
	input, err := ctx.Trackers.Input(ctx.Ctx, tracker.ID)
	if err != nil {
		return err
	}

	if c.Name != nil {
		input.Name = *c.Name
	}
	if c.Category != nil {
		input.Category = *c.Category
	}
	if c.Emoji != nil {
		input.Emoji = *c.Emoji
	}
	if c.Color != nil {
		input.Color = *c.Color
	}
	if c.Days != nil {
		schedule, err := model.ParseSchedule(*c.Days)
		if err != nil {
			return err
		}
		input.Schedule = schedule
	}
	if c.Date != nil {
		day, err := ctx.day(*c.Date)
		if err != nil {
			return err
		}
		input.OneOffDate = day
	}

	updated, err := ctx.Session.UpdateTracker(ctx.Ctx, tracker.ID, input)
	if err != nil {
		return err
	}
	ctx.printf("Updated tracker %s\n", updated.Name)
	return nil
}

type DeleteCmd struct {
	Tracker string `arg:"" help:"Tracker id, id prefix or name."`
}

func (c *DeleteCmd) Run(ctx *Context) error {
	tracker, err := ctx.Trackers.Resolve(ctx.Ctx, c.Tracker)
	if err != nil {
		return err
	}
	if err := ctx.Session.DeleteTracker(ctx.Ctx, tracker.ID); err != nil {
		return err
	}
	ctx.printf("Deleted tracker %s\n", tracker.Name)
	return nil
}

type DoneCmd struct {
	Tracker string `arg:"" help:"Tracker id, id prefix or name."`
	Date    string `help:"Date in YYYY-MM-DD format (default: today)." default:""`
}

func (c *DoneCmd) Run(ctx *Context) error {
	tracker, day, err := resolveOnDay(ctx, c.Tracker, c.Date)
	if err != nil {
		return err
	}
	if err := ctx.Completion.Complete(ctx.Ctx, tracker.ID, day); err != nil {
		return err
	}
	ctx.printf("Marked %s for %s\n", tracker.Name, ctx.Calendar.DayKey(day))
	return nil
}

type UndoCmd struct {
	Tracker string `arg:"" help:"Tracker id, id prefix or name."`
	Date    string `help:"Date in YYYY-MM-DD format (default: today)." default:""`
}

func (c *UndoCmd) Run(ctx *Context) error {
	tracker, day, err := resolveOnDay(ctx, c.Tracker, c.Date)
	if err != nil {
		return err
	}
	if err := ctx.Completion.Uncomplete(ctx.Ctx, tracker.ID, day); err != nil {
		return err
	}
	ctx.printf("Unmarked %s for %s\n", tracker.Name, ctx.Calendar.DayKey(day))
	return nil
}

func resolveOnDay(ctx *Context, ref, date string) (*model.Tracker, time.Time, error) {
	day, err := ctx.day(date)
	if err != nil {
		return nil, time.Time{}, err
	}
	tracker, err := ctx.Trackers.Resolve(ctx.Ctx, ref)
	if err != nil {
		return nil, time.Time{}, err
	}
	return tracker, day, nil
}

type StatsCmd struct{}

func (c *StatsCmd) Run(ctx *Context) error {
	stats, err := ctx.Session.Statistics(ctx.Ctx)
	if err != nil {
		return err
	}
	if !stats.HasData() {
		ctx.printf("%s\n", warningStyle.Render("Nothing to analyse yet"))
		return nil
	}
	ctx.printf("%s %d\n", headerStyle.Render("Trackers completed:"), stats.TotalCompleted)
	ctx.printf("%s %d\n", mutedStyle.Render("Trackers:"), stats.Trackers)
	return nil
}
