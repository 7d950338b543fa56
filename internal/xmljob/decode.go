// Package xmljob decodes Task Scheduler XML task definitions.
//
// The document is read into a generic element tree and the known
// element paths are walked into a typed Record. Unknown elements are
// ignored. Missing sections and values that do not parse are reported
// as warnings; only a document that cannot be tokenized, or whose root
// is not a Task element, is rejected.
package xmljob

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/cockroachdb/errors"

	"github.com/croncommander/cc-jobparse/internal/diag"
	"github.com/croncommander/cc-jobparse/internal/jobmodel"
)

var knownVersions = map[string]bool{
	"1.1": true, "1.2": true, "1.3": true, "1.4": true, "1.5": true, "1.6": true,
}

// Decode parses a task definition in UTF-8 or UTF-16.
func Decode(data []byte) (*Record, error) {
	text, err := ToUTF8(data)
	if err != nil {
		return nil, errors.Mark(err, diag.ErrMalformedXML)
	}

	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = passthroughCharset
	if err := doc.ReadFromBytes(text); err != nil {
		return nil, errors.Wrapf(errors.Mark(err, diag.ErrMalformedXML), "parsing task xml")
	}

	root := doc.Root()
	if root == nil {
		return nil, errors.WithHint(errors.Wrap(diag.ErrMalformedXML, "document has no root element"),
			"the file may be empty or truncated")
	}
	if root.Tag != "Task" {
		return nil, errors.Wrapf(diag.ErrMalformedXML, "root element is <%s>, not <Task>", root.Tag)
	}

	r := &Record{
		Version:   root.SelectAttrValue("version", ""),
		Namespace: root.SelectAttrValue("xmlns", ""),
	}
	w := &walker{ws: &r.Warnings}

	if r.Namespace != "" && r.Namespace != Namespace {
		w.warn(diag.CodeUnrecognizedVersion, "Task", "unexpected namespace %q", r.Namespace)
	}
	if r.Version != "" && !knownVersions[r.Version] {
		w.warn(diag.CodeUnrecognizedVersion, "Task", "unrecognized task schema version %q", r.Version)
	}

	if el := root.SelectElement("RegistrationInfo"); el != nil {
		r.Registration = w.registration(el)
	}

	if el := root.SelectElement("Triggers"); el != nil {
		r.HasTriggers = true
		r.Triggers = w.triggers(el)
	} else {
		w.warn(diag.CodeMissingElement, "Triggers", "no triggers")
	}

	if el := root.SelectElement("Actions"); el != nil {
		r.HasActions = true
		r.ActionsContext = el.SelectAttrValue("Context", "")
		r.Actions = w.actions(el)
	} else {
		w.warn(diag.CodeMissingElement, "Actions", "no actions")
	}

	if el := root.SelectElement("Principals"); el != nil {
		r.Principals = w.principals(el)
	}
	if el := root.SelectElement("Settings"); el != nil {
		r.Settings = w.settings(el)
	}

	if r.ActionsContext != "" && !hasPrincipal(r.Principals, r.ActionsContext) {
		w.warn(diag.CodeMissingElement, "Actions/@Context", "context %q names no declared principal", r.ActionsContext)
	}
	return r, nil
}

// DecodeString parses a task definition held in a Go string.
func DecodeString(text string) (*Record, error) {
	return Decode([]byte(text))
}

func hasPrincipal(ps []Principal, id string) bool {
	for _, p := range ps {
		if p.ID == id {
			return true
		}
	}
	return false
}

// walker extracts typed leaf values and records what fails to parse.
type walker struct {
	ws *diag.Warnings
}

func (w *walker) warn(code diag.Code, field, format string, args ...interface{}) {
	w.ws.Add(code, field, diag.NoOffset, format, args...)
}

// text returns the character data of parent/tag verbatim.
func (w *walker) text(parent *etree.Element, tag string) *string {
	el := parent.SelectElement(tag)
	if el == nil {
		return nil
	}
	s := el.Text()
	return &s
}

func (w *walker) boolean(parent *etree.Element, tag, path string) *bool {
	s := w.text(parent, tag)
	if s == nil {
		return nil
	}
	switch strings.TrimSpace(*s) {
	case "true", "1":
		v := true
		return &v
	case "false", "0":
		v := false
		return &v
	}
	w.warn(diag.CodeInvalidValue, path, "%q is not a boolean", *s)
	return nil
}

func (w *walker) integer(parent *etree.Element, tag, path string) *int {
	s := w.text(parent, tag)
	if s == nil {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(*s))
	if err != nil {
		w.warn(diag.CodeInvalidValue, path, "%q is not an integer", *s)
		return nil
	}
	return &n
}

func (w *walker) duration(parent *etree.Element, tag, path string) *jobmodel.Duration {
	s := w.text(parent, tag)
	if s == nil {
		return nil
	}
	d, err := jobmodel.ParseISODuration(*s)
	if err != nil {
		w.warn(diag.CodeInvalidValue, path, "%v", err)
		return nil
	}
	return &d
}

// limit parses an execution time limit, where PT0S means no limit.
func (w *walker) limit(parent *etree.Element, tag, path string) *jobmodel.Duration {
	d := w.duration(parent, tag, path)
	if d != nil && d.Value == 0 {
		inf := jobmodel.InfiniteDuration()
		return &inf
	}
	return d
}

func (w *walker) timestamp(parent *etree.Element, tag, path string) *jobmodel.Timestamp {
	s := w.text(parent, tag)
	if s == nil {
		return nil
	}
	ts, err := jobmodel.ParseTimestamp(*s)
	if err != nil {
		w.warn(diag.CodeInvalidValue, path, "%v", err)
		return nil
	}
	return &ts
}

func (w *walker) registration(el *etree.Element) Registration {
	return Registration{
		URI:                w.text(el, "URI"),
		Author:             w.text(el, "Author"),
		Description:        w.text(el, "Description"),
		Date:               w.timestamp(el, "Date", "RegistrationInfo/Date"),
		Source:             w.text(el, "Source"),
		Version:            w.text(el, "Version"),
		Documentation:      w.text(el, "Documentation"),
		SecurityDescriptor: w.text(el, "SecurityDescriptor"),
	}
}

func (w *walker) actions(el *etree.Element) []Action {
	var out []Action
	for i, child := range el.ChildElements() {
		a := Action{Element: child.Tag, ID: child.SelectAttrValue("id", "")}
		switch child.Tag {
		case "Exec":
			a.Kind = jobmodel.ActionExec
			a.Command = w.text(child, "Command")
			a.Arguments = w.text(child, "Arguments")
			a.WorkingDirectory = w.text(child, "WorkingDirectory")
			if a.Command == nil {
				w.warn(diag.CodeMissingElement, fmt.Sprintf("Actions/Exec[%d]/Command", i), "exec action without a command")
			}
		case "ComHandler":
			a.Kind = jobmodel.ActionComHandler
			a.ClassID = w.text(child, "ClassId")
			a.Data = w.text(child, "Data")
		case "SendEmail":
			a.Kind = jobmodel.ActionSendEmail
			a.Details = leafText(child)
		case "ShowMessage":
			a.Kind = jobmodel.ActionShowMessage
			a.Details = leafText(child)
		default:
			continue
		}
		out = append(out, a)
	}
	return out
}

// leafText maps each child without element children to its text.
func leafText(el *etree.Element) map[string]string {
	out := make(map[string]string)
	for _, child := range el.ChildElements() {
		if len(child.ChildElements()) == 0 {
			out[child.Tag] = child.Text()
		}
	}
	return out
}

func (w *walker) principals(el *etree.Element) []Principal {
	var out []Principal
	for _, p := range el.SelectElements("Principal") {
		out = append(out, Principal{
			ID:          p.SelectAttrValue("id", ""),
			UserID:      w.text(p, "UserId"),
			GroupID:     w.text(p, "GroupId"),
			DisplayName: w.text(p, "DisplayName"),
			LogonType:   w.text(p, "LogonType"),
			RunLevel:    w.text(p, "RunLevel"),
		})
	}
	return out
}

func (w *walker) settings(el *etree.Element) Settings {
	s := Settings{
		Enabled:                    w.boolean(el, "Enabled", "Settings/Enabled"),
		Hidden:                     w.boolean(el, "Hidden", "Settings/Hidden"),
		AllowStartOnDemand:         w.boolean(el, "AllowStartOnDemand", "Settings/AllowStartOnDemand"),
		AllowHardTerminate:         w.boolean(el, "AllowHardTerminate", "Settings/AllowHardTerminate"),
		StartWhenAvailable:         w.boolean(el, "StartWhenAvailable", "Settings/StartWhenAvailable"),
		DisallowStartIfOnBatteries: w.boolean(el, "DisallowStartIfOnBatteries", "Settings/DisallowStartIfOnBatteries"),
		StopIfGoingOnBatteries:     w.boolean(el, "StopIfGoingOnBatteries", "Settings/StopIfGoingOnBatteries"),
		RunOnlyIfIdle:              w.boolean(el, "RunOnlyIfIdle", "Settings/RunOnlyIfIdle"),
		RunOnlyIfNetworkAvailable:  w.boolean(el, "RunOnlyIfNetworkAvailable", "Settings/RunOnlyIfNetworkAvailable"),
		WakeToRun:                  w.boolean(el, "WakeToRun", "Settings/WakeToRun"),
		MultipleInstancesPolicy:    w.text(el, "MultipleInstancesPolicy"),
		Priority:                   w.integer(el, "Priority", "Settings/Priority"),
		ExecutionTimeLimit:         w.limit(el, "ExecutionTimeLimit", "Settings/ExecutionTimeLimit"),
		DeleteExpiredTaskAfter:     w.duration(el, "DeleteExpiredTaskAfter", "Settings/DeleteExpiredTaskAfter"),
	}

	// Some exporters write the inverted form.
	if s.DisallowStartIfOnBatteries == nil {
		if allow := w.boolean(el, "AllowStartIfOnBatteries", "Settings/AllowStartIfOnBatteries"); allow != nil {
			v := !*allow
			s.DisallowStartIfOnBatteries = &v
		}
	}

	if rf := el.SelectElement("RestartOnFailure"); rf != nil {
		s.RestartCount = w.integer(rf, "Count", "Settings/RestartOnFailure/Count")
		s.RestartInterval = w.duration(rf, "Interval", "Settings/RestartOnFailure/Interval")
	}
	if idle := el.SelectElement("IdleSettings"); idle != nil {
		s.IdleDuration = w.duration(idle, "Duration", "Settings/IdleSettings/Duration")
		s.IdleWaitTimeout = w.duration(idle, "WaitTimeout", "Settings/IdleSettings/WaitTimeout")
		s.StopOnIdleEnd = w.boolean(idle, "StopOnIdleEnd", "Settings/IdleSettings/StopOnIdleEnd")
		s.RestartOnIdle = w.boolean(idle, "RestartOnIdle", "Settings/IdleSettings/RestartOnIdle")
	}
	return s
}
