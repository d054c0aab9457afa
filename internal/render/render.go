// Package render formats engine reports for terminals and machines.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roach88/masterylens/internal/engine"
)

// Decimal places used when displaying percentages. Values are only rounded
// here; reports keep full precision.
const (
	spellPercentDecimals   = 1
	overallPercentDecimals = 2
)

// Options configures text rendering.
type Options struct {
	// Color enables ANSI colors on headings.
	Color bool

	// Language selects number formatting (thousands and decimal separators).
	Language language.Tag

	// Title overrides the header line, e.g. with a character name.
	Title string
}

// Text renders reports as tables.
type Text struct {
	opts    Options
	printer *message.Printer
	heading *color.Color
	muted   *color.Color
	warn    *color.Color
}

// NewText creates a text renderer.
func NewText(opts Options) *Text {
	if opts.Language == language.Und {
		opts.Language = language.English
	}

	t := &Text{
		opts:    opts,
		printer: message.NewPrinter(opts.Language),
		heading: color.New(color.FgCyan, color.Bold),
		muted:   color.New(color.FgHiBlack),
		warn:    color.New(color.FgYellow),
	}
	for _, c := range []*color.Color{t.heading, t.muted, t.warn} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return t
}

// Render writes r to w.
func (t *Text) Render(w io.Writer, r engine.Report) error {
	var parts []string

	parts = append(parts, t.header(r))
	parts = append(parts, t.summary(r))

	if len(r.Spells) > 0 {
		parts = append(parts, t.heading.Sprint("Spell Mastery Contributions")+"\n"+t.spellTable(r))
	} else {
		parts = append(parts, t.muted.Sprint("No mastery-boosted healing recorded."))
	}

	if len(r.Indirect) > 0 {
		parts = append(parts, t.heading.Sprint("Indirectly Boosted (excluded from ratios)")+"\n"+t.indirectTable(r))
	}

	parts = append(parts, t.footer(r))

	_, err := io.WriteString(w, strings.Join(parts, "\n\n")+"\n")
	return err
}

func (t *Text) header(r engine.Report) string {
	title := t.opts.Title
	if title == "" {
		title = fmt.Sprintf("Actor %d", r.ActorID)
	}
	return t.heading.Sprint(title) + " " +
		t.muted.Sprint(t.printer.Sprintf("(mastery %.2f%%)", r.MasteryPercent))
}

func (t *Text) summary(r engine.Report) string {
	lines := []string{
		t.heading.Sprint("Average Mastery Healing"),
		"  Raw Healing Due to Mastery: " + t.amount(r.TotalMasteryHealing),
		"  Overheal-Adjusted Mastery Healing: " + t.amount(r.TotalMasteryHealingOverhealAdjusted),
		"  Mastery Healing as % of Total Healing: " + t.percent(r.MasteryHealingPercent, overallPercentDecimals),
	}
	return strings.Join(lines, "\n")
}

func (t *Text) spellTable(r engine.Report) string {
	tbl := newTable()
	tbl.AppendHeader(table.Row{"Spell", "Direct %", "Direct", "Mastery %", "Mastery", "Mastery (adj)", "Avg Health", "Avg Bonus", "Heals"})

	for _, s := range r.Spells {
		tbl.AppendRow(table.Row{
			spellLabel(s.Name, int64(s.SpellID)),
			t.percent(s.DirectPercent, spellPercentDecimals),
			t.amount(s.DirectAmount),
			t.percent(s.MasteryPercent, spellPercentDecimals),
			t.amount(s.MasteryAmount),
			t.amount(s.MasteryAmountOverhealAdjusted),
			t.percent(s.AvgTargetHealthPercent, overallPercentDecimals),
			t.percent(s.AvgMasteryBonusPercent, overallPercentDecimals),
			t.printer.Sprintf("%d", s.HealCount),
		})
	}
	return tbl.Render()
}

func (t *Text) indirectTable(r engine.Report) string {
	tbl := newTable()
	tbl.AppendHeader(table.Row{"Spell", "Healing"})
	for _, s := range r.Indirect {
		tbl.AppendRow(table.Row{spellLabel(s.Name, int64(s.SpellID)), t.amount(s.DirectAmount)})
	}
	return tbl.Render()
}

func (t *Text) footer(r engine.Report) string {
	line := t.muted.Sprint("Total Healing: " + t.amount(r.TotalHealing))
	if r.TotalIndirectHealing > 0 {
		line += t.muted.Sprint(" (indirect " + t.amount(r.TotalIndirectHealing) + ")")
	}
	if r.Diagnostics > 0 {
		line += "\n" + t.warn.Sprint(t.printer.Sprintf("%d events had data problems; run with --verbose for details", r.Diagnostics))
	}
	return line
}

func (t *Text) amount(v float64) string {
	return t.printer.Sprintf("%.0f", v)
}

func (t *Text) percent(r engine.Ratio, decimals int) string {
	if !r.Defined {
		return "n/a"
	}
	return t.printer.Sprintf(fmt.Sprintf("%%.%df%%%%", decimals), r.Value)
}

func spellLabel(name string, id int64) string {
	if name == "" {
		return fmt.Sprintf("#%d", id)
	}
	return fmt.Sprintf("%s (%d)", name, id)
}

func newTable() table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.DrawBorder = false
	return tbl
}
