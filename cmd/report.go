package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
	"github.com/pterm/pterm"
	"gopkg.in/yaml.v3"

	"github.com/croncommander/cc-jobparse/internal/diag"
	"github.com/croncommander/cc-jobparse/internal/jobmodel"
)

type reportFormat string

const (
	formatText reportFormat = "text"
	formatJSON reportFormat = "json"
	formatYAML reportFormat = "yaml"
	formatTOML reportFormat = "toml"
)

func parseReportFormat(s string) (reportFormat, error) {
	switch f := reportFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case formatText, formatJSON, formatYAML, formatTOML:
		return f, nil
	case "":
		return formatText, nil
	}
	return "", errors.WithHint(
		errors.Newf("unknown output format %q", s),
		"use one of text, json, yaml or toml")
}

// fileReport is the structured form of one result.
type fileReport struct {
	Path       string               `json:"path" yaml:"path" toml:"path"`
	Descriptor *jobmodel.Descriptor `json:"descriptor,omitempty" yaml:"descriptor,omitempty" toml:"descriptor,omitempty"`
	Error      string               `json:"error,omitempty" yaml:"error,omitempty" toml:"error,omitempty"`
	Hint       string               `json:"hint,omitempty" yaml:"hint,omitempty" toml:"hint,omitempty"`
}

type batchReport struct {
	Files   []fileReport `json:"files" yaml:"files" toml:"files"`
	Summary batchSummary `json:"summary" yaml:"summary" toml:"summary"`
}

func newBatchReport(results []result) batchReport {
	rep := batchReport{
		Files:   make([]fileReport, 0, len(results)),
		Summary: summarize(results),
	}
	for _, r := range results {
		fr := fileReport{Path: r.Path, Descriptor: r.Descriptor}
		if r.Err != nil {
			fr.Error = r.Err.Error()
			fr.Hint = diag.Hint(r.Err)
		}
		rep.Files = append(rep.Files, fr)
	}
	return rep
}

// writeReport renders results to w in the given format.
func writeReport(w io.Writer, format reportFormat, results []result) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(newBatchReport(results)), "encoding json report")
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(newBatchReport(results)); err != nil {
			return errors.Wrap(err, "encoding yaml report")
		}
		return errors.Wrap(enc.Close(), "encoding yaml report")
	case formatTOML:
		enc := toml.NewEncoder(w)
		enc.SetIndentTables(true)
		return errors.Wrap(enc.Encode(newBatchReport(results)), "encoding toml report")
	default:
		return writeText(w, results)
	}
}

func writeText(w io.Writer, results []result) error {
	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if r.Err != nil {
			fmt.Fprintf(w, "%s %s\n", pterm.Red("✗"), r.Err)
			if hint := diag.Hint(r.Err); hint != "" {
				fmt.Fprintf(w, "  %s %s\n", pterm.Gray("hint:"), hint)
			}
			continue
		}
		writeDescriptor(w, r.Descriptor)
	}

	s := summarize(results)
	line := fmt.Sprintf("%d files, %d decoded, %d failed, %d warnings", s.Files, s.Decoded, s.Failed, s.Warnings)
	fmt.Fprintln(w)
	switch {
	case s.Failed > 0:
		fmt.Fprintln(w, pterm.Red(line))
	case s.Warnings > 0:
		fmt.Fprintln(w, pterm.Yellow(line))
	default:
		fmt.Fprintln(w, pterm.Green(line))
	}
	return nil
}

func writeDescriptor(w io.Writer, d *jobmodel.Descriptor) {
	field := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(w, "  %-12s %s\n", pterm.Gray(label), value)
	}

	fmt.Fprintf(w, "%s %s [%s]\n", pterm.Green("✓"), pterm.LightCyan(d.Name), d.Format)
	field("source", d.SourcePath)
	field("job id", d.JobID)
	field("uri", jobmodel.Deref(d.URI))
	field("product", d.Product)
	field("version", d.SchemaVersion)
	field("author", jobmodel.Deref(d.Metadata.Author))
	field("description", jobmodel.Deref(d.Metadata.Description))
	if d.Metadata.Created != nil {
		field("created", d.Metadata.Created.String())
	}

	for _, a := range d.Actions {
		field("action", describeAction(a))
	}
	if p := d.Principal; p != nil {
		runAs := jobmodel.Deref(p.UserID)
		if runAs == "" {
			runAs = jobmodel.Deref(p.GroupID)
		}
		if p.WellKnownName != "" {
			runAs = fmt.Sprintf("%s (%s)", runAs, p.WellKnownName)
		}
		field("run as", runAs)
	}
	for _, t := range d.Triggers {
		field("trigger", describeTrigger(t))
	}
	field("priority", jobmodel.Deref(d.Settings.PriorityClass))
	field("flags", strings.Join(d.Settings.FlagNames, ", "))
	if d.Limits.MaxRunTime != nil {
		field("max run", d.Limits.MaxRunTime.String())
	}
	if rs := d.RunState; rs != nil {
		last := "never"
		if rs.LastRun != nil {
			last = rs.LastRun.String()
		}
		field("last run", fmt.Sprintf("%s, exit %d, %s (0x%08X)", last, rs.ExitCode, rs.Status, rs.StatusCode))
	}
	for _, warn := range d.Warnings {
		field("warning", pterm.Yellow(warn.String()))
	}
}

func describeAction(a jobmodel.Action) string {
	switch a.Kind {
	case jobmodel.ActionExec:
		parts := []string{a.Command}
		if args := jobmodel.Deref(a.Arguments); args != "" {
			parts = append(parts, args)
		}
		s := strings.Join(parts, " ")
		if dir := jobmodel.Deref(a.WorkingDirectory); dir != "" {
			s += " (in " + dir + ")"
		}
		return s
	case jobmodel.ActionComHandler:
		return "com handler " + a.ClassID
	default:
		return string(a.Kind)
	}
}

func describeTrigger(t jobmodel.Trigger) string {
	parts := []string{string(t.Kind)}
	if t.Enabled != nil && !*t.Enabled {
		parts = append(parts, "(disabled)")
	}
	if t.Start != nil {
		parts = append(parts, "from "+t.Start.String())
	}
	if t.End != nil {
		parts = append(parts, "until "+t.End.String())
	}
	if s := describeSchedule(t.Schedule); s != "" {
		parts = append(parts, s)
	}
	if r := t.Repetition; r != nil {
		rep := "repeat every " + r.Interval.String()
		if r.Duration != nil {
			rep += " for " + r.Duration.String()
		}
		parts = append(parts, rep)
	}
	if t.Delay != nil {
		parts = append(parts, "delay "+t.Delay.String())
	}
	return strings.Join(parts, " ")
}

func describeSchedule(s jobmodel.Schedule) string {
	switch s := s.(type) {
	case jobmodel.DailySchedule:
		return fmt.Sprintf("every %d day(s)", s.DaysInterval)
	case jobmodel.WeeklySchedule:
		return fmt.Sprintf("every %d week(s) on %s", s.WeeksInterval, s.DaysOfWeek)
	case jobmodel.MonthlyDateSchedule:
		return fmt.Sprintf("on day %s of %s", s.Days, s.Months)
	case jobmodel.MonthlyDayOfWeekSchedule:
		return fmt.Sprintf("on %s in week %s of %s", s.DaysOfWeek, s.Weeks, s.Months)
	case jobmodel.LogonSchedule:
		if s.UserID != "" {
			return "of " + s.UserID
		}
	case jobmodel.EventSchedule:
		if s.Subscription != "" {
			return "matching " + s.Subscription
		}
	case jobmodel.SessionStateChangeSchedule:
		return strings.TrimSpace(s.StateChange + " " + s.UserID)
	case jobmodel.UnknownSchedule:
		if s.RawType != nil {
			return fmt.Sprintf("type %d", *s.RawType)
		}
		return s.Element
	}
	return ""
}
