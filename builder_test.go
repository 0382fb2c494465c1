package textops

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTool_Validation(t *testing.T) {
	fn := func(text string, _ ...string) string { return text }
	tests := []struct {
		name    string
		tool    string
		mode    RenderMode
		params  []string
		fn      ToolFunc
		wantErr string
	}{
		{"empty name", "", RenderDiff, nil, fn, "tool name must not be empty"},
		{"nil handler", "t", RenderDiff, nil, nil, "handler must not be nil"},
		{"bad mode", "t", "table", nil, fn, `unknown render mode "table"`},
		{"empty param", "t", RenderDiff, []string{"a", ""}, fn, "invalid parameter name"},
		{"text in the middle", "t", RenderDiff, []string{"a", "text"}, fn, "invalid parameter name"},
		{"duplicate param", "t", RenderDiff, []string{"a", "a"}, fn, `duplicate parameter "a"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTool(tt.tool, "d", tt.mode, tt.params, tt.fn)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewTool_Defaults(t *testing.T) {
	tool, err := NewTool("t", "desc", "", []string{"text", "a"}, func(text string, _ ...string) string { return text })
	require.NoError(t, err)
	assert.Equal(t, RenderDiff, tool.RenderMode())
	assert.Equal(t, []string{"text", "a"}, tool.Params(), "leading text is not duplicated")
	assert.Equal(t, "desc", tool.Description())
}

func TestNewTool_ParamsIsCopy(t *testing.T) {
	tool := padTool(t)
	p := tool.Params()
	p[1] = "mutated"
	assert.Equal(t, "left", tool.Params()[1])
}

func TestTool_Execute_NormalizesArgs(t *testing.T) {
	var got []string
	tool, err := NewTool("t", "d", RenderOutput, []string{"a", "b"}, func(_ string, args ...string) string {
		got = args
		return "ok"
	})
	require.NoError(t, err)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"missing args", []string{"text"}, []string{"", ""}},
		{"exact args", []string{"text", "1", "2"}, []string{"1", "2"}},
		{"extra args dropped", []string{"text", "1", "2", "3"}, []string{"1", "2"}},
		{"no text", nil, []string{"", ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tool.Execute(context.Background(), tt.args)
			require.NoError(t, err)
			assert.Equal(t, "ok", out)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeArgs(t *testing.T) {
	assert.Equal(t, []string{"a", ""}, NormalizeArgs([]string{"a"}, 2))
	assert.Equal(t, []string{"a"}, NormalizeArgs([]string{"a", "b"}, 1))
	assert.Equal(t, []string{}, NormalizeArgs([]string{"a"}, 0))
	assert.Equal(t, []string{}, NormalizeArgs(nil, -1))
}

func TestMustTool_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustTool("", "d", RenderDiff, nil, func(text string, _ ...string) string { return text })
	})
}

func TestSignatureOf_Tags(t *testing.T) {
	tool := MustTool("t", "d", RenderOutput, nil, func(text string, _ ...string) string { return text }, WithTags("count"))
	sig := SignatureOf(tool)
	assert.Equal(t, []string{"count"}, sig.Tags)
	assert.Equal(t, RenderOutput, sig.RenderMode)
}
