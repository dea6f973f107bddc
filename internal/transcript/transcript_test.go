package transcript

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tests render without ANSI codes so assertions stay readable.
func plainRenderer(opts Options) *Renderer {
	color.NoColor = true
	return New(opts)
}

func TestRenderThreadAndTurnEvents(t *testing.T) {
	r := plainRenderer(Options{})

	lines := r.RenderLine(`{"type":"thread.started","thread_id":"th_1"}`)
	assert.Equal(t, []string{"thread.started th_1"}, lines)

	lines = r.RenderLine(`{"type":"turn.completed"}`)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "turn.completed")
	assert.Contains(t, lines[0], "──────────────────")
}

func TestRenderCommandExecution(t *testing.T) {
	r := plainRenderer(Options{})

	lines := r.RenderLine(`{"type":"item.completed","item":{"type":"command_execution","id":"item_3","status":"completed","exit_code":0,"command":"go test ./..."}}`)
	require.Len(t, lines, 2)
	assert.Equal(t, "completed command_execution item_3 completed exit=0 ::", lines[0])
	assert.Equal(t, "go test ./...", lines[1])
}

func TestRenderCommandOutputOnFailOnly(t *testing.T) {
	r := plainRenderer(Options{ShowCmdOutput: ShowOnFail})

	ok := r.RenderLine(`{"type":"item.completed","item":{"type":"command_execution","id":"i","status":"completed","command":"true","aggregated_output":"fine"}}`)
	assert.Len(t, ok, 2)

	failed := r.RenderLine(`{"type":"item.completed","item":{"type":"command_execution","id":"i","status":"failed","command":"false","aggregated_output":"boom\nbang"}}`)
	require.Len(t, failed, 4)
	assert.Equal(t, "  │ boom", failed[2])
	assert.Equal(t, "  │ bang", failed[3])
}

func TestRenderReasoningTruncated(t *testing.T) {
	r := plainRenderer(Options{TruncateText: 10})

	lines := r.RenderLine(`{"type":"item.started","item":{"type":"reasoning","id":"r1","text":"first line\nsecond line of thought"}}`)
	require.Len(t, lines, 2)
	assert.Equal(t, "started reasoning r1 ::", lines[0])
	assert.Equal(t, "first lin…", lines[1])
	assert.Len(t, []rune(lines[1]), 10)
}

func TestRenderAgentMessageBody(t *testing.T) {
	r := plainRenderer(Options{})

	lines := r.RenderLine(`{"type":"item.completed","item":{"type":"agent_message","id":"m1","text":"hello\nworld\n"}}`)
	assert.Equal(t, []string{
		"completed agent_message m1",
		"  │ hello",
		"  │ world",
	}, lines)
}

func TestRenderFileChangeListCapped(t *testing.T) {
	r := plainRenderer(Options{MaxListItems: 2})

	lines := r.RenderLine(`{"type":"item.completed","item":{"type":"file_change","id":"f1","status":"completed","changes":[
	  {"kind":"edit","path":"a.go"},
	  {"kind":"add","path":"b.go"},
	  {"kind":"delete","path":"c.go"}
	]}}`)
	assert.Equal(t, []string{
		"completed file_change f1 completed",
		"  │ edit: a.go",
		"  │ add: b.go",
		"  │ … (+1 more)",
	}, lines)
}

func TestRenderTodoList(t *testing.T) {
	r := plainRenderer(Options{})

	lines := r.RenderLine(`{"type":"item.updated","item":{"type":"todo_list","id":"t1","items":[
	  {"text":"write tests","completed":true},
	  {"text":"ship it","completed":false}
	]}}`)
	assert.Equal(t, []string{
		"updated todo_list t1",
		"  │ [x] write tests",
		"  │ [ ] ship it",
	}, lines)
}

func TestRenderInvalidAndNonObjectJSON(t *testing.T) {
	r := plainRenderer(Options{})

	lines := r.RenderLine(`{not json`)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "invalid-json ::")

	lines = r.RenderLine(`[1,2,3]`)
	require.Len(t, lines, 1)
	assert.Equal(t, "non-object-json :: [1,2,3]", lines[0])
}

func TestRenderUnknownEventShowsKeys(t *testing.T) {
	r := plainRenderer(Options{})

	lines := r.RenderLine(`{"type":"session.ended","reason":"done"}`)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "session.ended keys=[reason] ::")
}

func TestBlankLinesProduceNoOutput(t *testing.T) {
	r := plainRenderer(Options{})
	assert.Nil(t, r.RenderLine(""))
	assert.Nil(t, r.RenderLine("   "))
}

func TestStreamTeesRawBytes(t *testing.T) {
	r := plainRenderer(Options{})
	in := strings.NewReader(`{"type":"thread.started","thread_id":"th_9"}` + "\n" + `{bad}` + "\n")

	var out, tee1, tee2 bytes.Buffer
	require.NoError(t, Stream(in, &out, r, &tee1, &tee2))

	// Tees receive the raw stream, rendering errors included.
	assert.Equal(t, in.Size(), int64(tee1.Len()))
	assert.Equal(t, tee1.String(), tee2.String())
	assert.Contains(t, tee1.String(), `{bad}`)

	assert.Contains(t, out.String(), "thread.started th_9")
	assert.Contains(t, out.String(), "invalid-json")
}
