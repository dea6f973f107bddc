// Package transcript renders agent JSONL event streams for humans.
//
// Input is one JSON object per line: thread/turn lifecycle events and
// item events (command executions, reasoning, messages, file changes,
// todo lists). Unknown event shapes degrade to a compact JSON preview
// instead of failing, since transcripts evolve faster than this tool.
package transcript

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
)

// ShowCmdOutput policies for command_execution items.
const (
	ShowNever  = "never"
	ShowOnFail = "on-fail"
	ShowAlways = "always"
)

// Options controls rendering.
type Options struct {
	// TruncateText bounds rendered text fields in runes; 0 disables.
	TruncateText int

	// TruncateCmd bounds rendered command lines in runes; 0 disables.
	TruncateCmd int

	// ShowCmdOutput is one of ShowNever, ShowOnFail, ShowAlways.
	ShowCmdOutput string

	// MaxJSONChars bounds raw JSON previews. Default 800.
	MaxJSONChars int

	// MaxListItems bounds file-change and todo listings. Default 8.
	MaxListItems int
}

// Renderer turns one JSONL event line into display lines.
type Renderer struct {
	opts Options

	cyan    *color.Color
	magenta *color.Color
	blue    *color.Color
	red     *color.Color
	yellow  *color.Color
	green   *color.Color
	dim     *color.Color
}

// New builds a Renderer. Color output follows the fatih/color globals,
// which already honor NO_COLOR and non-TTY output.
func New(opts Options) *Renderer {
	if opts.MaxJSONChars <= 0 {
		opts.MaxJSONChars = 800
	}
	if opts.MaxListItems <= 0 {
		opts.MaxListItems = 8
	}
	if opts.ShowCmdOutput == "" {
		opts.ShowCmdOutput = ShowOnFail
	}
	return &Renderer{
		opts:    opts,
		cyan:    color.New(color.FgCyan, color.Bold),
		magenta: color.New(color.FgMagenta, color.Bold),
		blue:    color.New(color.FgBlue, color.Bold),
		red:     color.New(color.FgRed, color.Bold),
		yellow:  color.New(color.FgYellow, color.Bold),
		green:   color.New(color.FgGreen, color.Bold),
		dim:     color.New(color.Faint),
	}
}

// RenderLine renders one raw JSONL line. Blank lines produce no output.
func (r *Renderer) RenderLine(line string) []string {
	stripped := strings.TrimRight(line, "\n")
	if strings.TrimSpace(stripped) == "" {
		return nil
	}

	var evt any
	if err := json.Unmarshal([]byte(stripped), &evt); err != nil {
		preview := oneLine(stripped)
		if r.opts.TruncateText > 0 {
			preview = truncate(preview, r.opts.TruncateText)
		}
		return []string{r.red.Sprint("invalid-json") + " :: " + preview}
	}
	obj, ok := evt.(map[string]any)
	if !ok {
		return []string{r.yellow.Sprint("non-object-json") + " :: " + r.jsonPreview(evt)}
	}
	return r.renderEvent(obj)
}

func (r *Renderer) renderEvent(evt map[string]any) []string {
	evtType, _ := evt["type"].(string)
	switch {
	case evtType == "thread.started":
		head := r.cyan.Sprint("thread.started")
		if tid, ok := evt["thread_id"].(string); ok && tid != "" {
			return []string{head + " " + tid}
		}
		return []string{head}
	case evtType == "turn.started" || evtType == "turn.completed":
		bar := r.dim.Sprint(strings.Repeat("─", 18))
		return []string{bar + " " + r.magenta.Sprint(evtType) + " " + bar}
	case strings.HasPrefix(evtType, "item."):
		return r.renderItemEvent(evtType, evt)
	}

	head := evtType
	if head == "" {
		head = "<no-type>"
	}
	keys := make([]string, 0, len(evt))
	for k := range evt {
		if k != "type" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	trailer := ""
	if len(keys) > 0 {
		trailer = fmt.Sprintf(" keys=%v", keys)
	}
	return []string{r.cyan.Sprint(head) + trailer + " :: " + r.jsonPreview(evt)}
}

func (r *Renderer) renderItemEvent(evtType string, evt map[string]any) []string {
	action := evtType
	if _, after, found := strings.Cut(evtType, "."); found {
		action = after
	}
	item, ok := evt["item"].(map[string]any)
	if !ok {
		return []string{r.blue.Sprint(evtType) + " :: " + r.jsonPreview(evt)}
	}

	switch item["type"] {
	case "command_execution":
		return r.renderCommand(item, action)
	case "reasoning":
		return r.renderReasoning(item, action)
	case "agent_message":
		return r.renderAgentMessage(item, action)
	case "file_change":
		return r.renderFileChange(item, action)
	case "todo_list":
		return r.renderTodoList(item, action)
	}

	itemType := stringOr(item["type"], "?")
	return []string{fmt.Sprintf("%s %s %s :: %s",
		r.blue.Sprint(action), itemType, stringOr(item["id"], "?"), r.jsonPreview(item))}
}

func (r *Renderer) renderCommand(item map[string]any, action string) []string {
	status := stringOr(item["status"], "?")
	command := stringOr(item["command"], "")
	if r.opts.TruncateCmd > 0 {
		command = truncate(oneLine(command), r.opts.TruncateCmd)
	}
	exit := ""
	if ec, ok := item["exit_code"]; ok && ec != nil {
		exit = fmt.Sprintf(" exit=%v", ec)
	}
	lines := []string{
		fmt.Sprintf("%s command_execution %s %s%s ::",
			r.blue.Sprint(action), stringOr(item["id"], "?"), r.statusColor(status).Sprint(status), exit),
		command,
	}

	output := stringOr(item["aggregated_output"], "")
	show := false
	switch r.opts.ShowCmdOutput {
	case ShowAlways:
		show = true
	case ShowNever:
		show = false
	default:
		show = (status == "failed" || status == "error") && strings.TrimSpace(output) != ""
	}
	if show && output != "" {
		if r.opts.TruncateText > 0 {
			output = truncate(output, r.opts.TruncateText*4)
		}
		lines = append(lines, indent(strings.Split(strings.TrimRight(output, "\n"), "\n"))...)
	}
	return lines
}

func (r *Renderer) renderReasoning(item map[string]any, action string) []string {
	text := stringOr(item["text"], "")
	if r.opts.TruncateText > 0 {
		text = truncate(oneLine(text), r.opts.TruncateText)
	}
	return []string{
		fmt.Sprintf("%s reasoning %s ::", r.blue.Sprint(action), stringOr(item["id"], "?")),
		text,
	}
}

func (r *Renderer) renderAgentMessage(item map[string]any, action string) []string {
	lines := []string{fmt.Sprintf("%s agent_message %s", r.blue.Sprint(action), stringOr(item["id"], "?"))}
	body := stringOr(item["text"], "")
	if r.opts.TruncateText > 0 {
		body = truncate(body, r.opts.TruncateText*6)
	}
	body = strings.TrimRight(body, "\n")
	if body != "" {
		lines = append(lines, indent(strings.Split(body, "\n"))...)
	}
	return lines
}

func (r *Renderer) renderFileChange(item map[string]any, action string) []string {
	status := stringOr(item["status"], "?")
	lines := []string{fmt.Sprintf("%s file_change %s %s",
		r.blue.Sprint(action), stringOr(item["id"], "?"), r.statusColor(status).Sprint(status))}

	changes, _ := item["changes"].([]any)
	for i, ch := range changes {
		if i >= r.opts.MaxListItems {
			lines = append(lines, fmt.Sprintf("  │ … (+%d more)", len(changes)-i))
			break
		}
		if m, ok := ch.(map[string]any); ok {
			lines = append(lines, fmt.Sprintf("  │ %s: %s", stringOr(m["kind"], "?"), stringOr(m["path"], "?")))
		} else {
			lines = append(lines, "  │ "+r.jsonPreview(ch))
		}
	}
	return lines
}

func (r *Renderer) renderTodoList(item map[string]any, action string) []string {
	lines := []string{fmt.Sprintf("%s todo_list %s", r.blue.Sprint(action), stringOr(item["id"], "?"))}

	todos, _ := item["items"].([]any)
	for i, t := range todos {
		if i >= r.opts.MaxListItems {
			lines = append(lines, fmt.Sprintf("  │ … (+%d more)", len(todos)-i))
			break
		}
		m, ok := t.(map[string]any)
		if !ok {
			lines = append(lines, "  │ "+r.jsonPreview(t))
			continue
		}
		mark := "[ ]"
		if done, _ := m["completed"].(bool); done {
			mark = "[x]"
		}
		text := oneLine(stringOr(m["text"], ""))
		if r.opts.TruncateText > 0 {
			text = truncate(text, r.opts.TruncateText)
		}
		lines = append(lines, fmt.Sprintf("  │ %s %s", mark, text))
	}
	return lines
}

func (r *Renderer) statusColor(status string) *color.Color {
	switch status {
	case "completed", "success":
		return r.green
	case "failed", "error":
		return r.red
	case "in_progress", "running":
		return r.yellow
	default:
		return r.blue
	}
}

func (r *Renderer) jsonPreview(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return truncate(fmt.Sprintf("%v", v), r.opts.MaxJSONChars)
	}
	return truncate(string(b), r.opts.MaxJSONChars)
}

// oneLine collapses all whitespace runs, newlines included, to single
// spaces.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate bounds s to max runes, marking the cut with an ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(runes[:max-1]) + "…"
}

func indent(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		if line == "" {
			out[i] = "  │"
		} else {
			out[i] = "  │ " + line
		}
	}
	return out
}

func stringOr(v any, fallback string) string {
	switch s := v.(type) {
	case nil:
		return fallback
	case string:
		if s == "" {
			return fallback
		}
		return s
	default:
		return fmt.Sprintf("%v", v)
	}
}
