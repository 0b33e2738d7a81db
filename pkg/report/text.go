package report

import (
	"fmt"
	"io"
	"path"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/src-d/enry/v2"

	"github.com/Sumatoshi-tech/devrank/pkg/devstats"
	"github.com/Sumatoshi-tech/devrank/pkg/rating"
	"github.com/Sumatoshi-tech/devrank/pkg/terminal"
)

const (
	textTitle       = "DEVELOPER USEFULNESS RANKING"
	labelWidth      = 10
	barWidth        = 20
	scoreFormat     = "%.2f"
	detailedLimit   = 5
	unknownLanguage = "unknown"
	descriptionMax  = 60
	leaderLabel     = 13
)

// textRenderer writes the terminal report.
type textRenderer struct {
	w   io.Writer
	cfg terminal.Config
	err error
}

func writeText(w io.Writer, r *Report, cfg terminal.Config) error {
	if cfg.Width <= 0 {
		cfg.Width = terminal.DefaultWidth
	}

	tr := &textRenderer{w: w, cfg: cfg}

	tr.header(r)
	tr.ranking(r)
	tr.team(r.TeamStats)
	tr.developers(r)
	tr.weights(r)
	tr.notices(r)

	return tr.err
}

func (tr *textRenderer) printf(format string, args ...any) {
	if tr.err != nil {
		return
	}

	_, tr.err = fmt.Fprintf(tr.w, format, args...)
}

func (tr *textRenderer) section(title string) {
	tr.printf("\n%s\n%s\n", tr.cfg.Colorize(title, terminal.ColorBold), terminal.DrawSeparator(tr.cfg.Width))
}

func (tr *textRenderer) header(r *Report) {
	right := fmt.Sprintf("%d developers", r.Metadata.DeveloperCount)
	tr.printf("%s\n", terminal.DrawHeader(textTitle, right, tr.cfg.Width))

	if r.Metadata.Repository != "" {
		tr.printf("Repository: %s\n", r.Metadata.Repository)
	}

	tr.printf("Generated:  %s\n", r.Metadata.GeneratedAt)

	s := r.ScoreSummary
	if s.Count > 0 {
		tr.printf("Scores:     mean %.2f, median %.2f, stddev %.2f, range %.2f to %.2f\n",
			s.Mean, s.Median, s.StdDev, s.Min, s.Max)
	}
}

func (tr *textRenderer) ranking(r *Report) {
	tr.section("Ranking")

	if len(r.UsefulnessRating) == 0 {
		tr.printf("No developers found.\n")

		return
	}

	best := r.UsefulnessRating[0].Score

	tbl := newTable()
	tbl.AppendHeader(table.Row{"#", "Developer", "Score", "Commits", "Substantial", "Lines +/-", "Impact", "Days"})
	tbl.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
		{Number: 8, Align: text.AlignRight},
	})

	for i, sc := range r.UsefulnessRating {
		dev := r.Developers[sc.Identity]

		row := table.Row{
			i + 1,
			developerLabel(sc, tr.cfg.Width),
			tr.cfg.Colorize(fmt.Sprintf(scoreFormat, sc.Score), terminal.ColorForScore(sc.Score, best)),
		}

		if dev != nil {
			row = append(row,
				humanize.Comma(int64(dev.TotalCommits)),
				humanize.Comma(int64(dev.SubstantialCommits)),
				"+"+humanize.Comma(int64(dev.LinesAdded))+" / -"+humanize.Comma(int64(dev.LinesRemoved)),
				humanize.Comma(int64(dev.CommitImpact)),
				dev.ActiveDays,
			)
		}

		tbl.AppendRow(row)
	}

	tr.printf("%s\n", tbl.Render())
}

func developerLabel(sc rating.Score, width int) string {
	label := sc.Name
	if label == "" {
		label = sc.Identity
	} else if sc.Identity != "" {
		label = fmt.Sprintf("%s <%s>", sc.Name, sc.Identity)
	}

	return terminal.TruncateWithEllipsis(label, width/3)
}

func (tr *textRenderer) team(ts devstats.TeamStats) {
	tr.section("Team")

	t := ts.Totals
	tr.printf("Commits:      %s (%s substantial)\n", humanize.Comma(int64(t.Commits)), humanize.Comma(int64(t.SubstantialCommits)))
	tr.printf("Lines:        +%s / -%s\n", humanize.Comma(int64(t.LinesAdded)), humanize.Comma(int64(t.LinesRemoved)))
	tr.printf("Files:        %s across %d file types\n", humanize.Comma(int64(len(ts.FilesModified))), len(ts.FileTypes))
	tr.printf("Avg impact:   %.2f per commit\n", ts.AverageCommitImpact)

	tr.leader("Most active", ts.MostActive, "commits")
	tr.leader("Most impact", ts.MostImpactful, "impact")
	tr.leader("Most lines", ts.MostProlific, "lines added")
}

func (tr *textRenderer) leader(label string, l *devstats.Leader, unit string) {
	if l == nil {
		return
	}

	tr.printf("%s %s (%s %s)\n", terminal.PadRight(label+":", leaderLabel), l.Name, humanize.Comma(int64(l.Value)), unit)
}

func (tr *textRenderer) developers(r *Report) {
	limit := min(len(r.UsefulnessRating), detailedLimit)
	if limit == 0 {
		return
	}

	tr.section("Top developers")

	for _, sc := range r.UsefulnessRating[:limit] {
		dev := r.Developers[sc.Identity]
		if dev == nil {
			continue
		}

		tr.printf("\n%s  %s\n", tr.cfg.Colorize(developerLabel(sc, tr.cfg.Width*2), terminal.ColorBlue),
			fmt.Sprintf(scoreFormat, sc.Score))
		tr.printf("  Active %s to %s (%d days), %.2f commits/day, %.1f lines/day\n",
			dev.FirstCommitDate, dev.LastCommitDate, dev.ActiveDays, dev.CommitsPerDay, dev.LinesPerDay)

		tod := dev.TimeOfDay
		for _, b := range []struct {
			label string
			n     int
		}{
			{"Morning", tod.Morning},
			{"Afternoon", tod.Afternoon},
			{"Evening", tod.Evening},
			{"Night", tod.Night},
		} {
			tr.printf("  %s\n", terminal.DrawPercentBar(b.label, b.n, dev.TotalCommits, labelWidth, barWidth))
		}

		if len(dev.MostModifiedFiles) > 0 {
			top := dev.MostModifiedFiles[0]
			tr.printf("  Top file: %s (%s, %d commits)\n", top.Path, languageOf(top.Path), top.Count)
		}

		p := dev.CommitPatterns
		tr.printf("  Messages: %.0f%% structured, %.0f%% reference issues, %.0f%% minimal\n",
			p.Structured, p.IssueReferences, p.Minimal)
	}
}

// languageOf names the language of a path by filename and extension.
func languageOf(p string) string {
	lang, _ := enry.GetLanguageByFilename(path.Base(p))
	if lang == "" {
		lang, _ = enry.GetLanguageByExtension(p)
	}

	if lang == "" {
		return unknownLanguage
	}

	return lang
}

func (tr *textRenderer) weights(r *Report) {
	tr.section("Weights")

	tbl := newTable()
	tbl.AppendHeader(table.Row{"Factor", "Weight", "Description"})
	tbl.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, WidthMax: descriptionMax},
	})

	for _, f := range rating.Factors {
		w, ok := r.WeightsUsed[f.Name]
		if !ok {
			continue
		}

		tbl.AppendRow(table.Row{f.Name, fmt.Sprintf("%.2f", w), f.Description})
	}

	tr.printf("%s\n", tbl.Render())
}

func (tr *textRenderer) notices(r *Report) {
	var lines []string

	for _, name := range r.WeightDiagnostics.Unknown {
		lines = append(lines, fmt.Sprintf("ignored unknown weight %q", name))
	}

	for _, id := range r.Metadata.UnmatchedExclusions {
		lines = append(lines, fmt.Sprintf("excluded developer %s not found in history", id))
	}

	if len(lines) == 0 {
		return
	}

	tr.section("Warnings")

	for _, l := range lines {
		tr.printf("%s %s\n", tr.cfg.Colorize("!", terminal.ColorYellow), l)
	}
}

func newTable() table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateHeader = true
	tbl.Style().Format.Header = text.FormatDefault

	return tbl
}
