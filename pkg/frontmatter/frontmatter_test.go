package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testMatter struct {
	Description string  `yaml:"description,omitempty"`
	Model       string  `yaml:"model,omitempty"`
	Temperature float64 `yaml:"temperature,omitempty"`
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantDesc string
		wantBody string
		wantErr  bool
	}{
		{
			name:     "frontmatter and body",
			content:  "---\ndescription: reviews code\n---\n\nBe thorough.\n",
			wantDesc: "reviews code",
			wantBody: "Be thorough.\n",
		},
		{
			name:     "no frontmatter",
			content:  "Just instructions.\n",
			wantBody: "Just instructions.\n",
		},
		{
			name:     "empty body",
			content:  "---\ndescription: terse\n---\n",
			wantDesc: "terse",
			wantBody: "",
		},
		{
			name:    "unclosed block",
			content: "---\ndescription: broken\n",
			wantErr: true,
		},
		{
			name:    "invalid yaml",
			content: "---\n: [\n---\nbody\n",
			wantErr: true,
		},
		{
			name:     "dashes opening a frontmatter line",
			content:  "---\ndescription: terse\n---foo: extra\n---\nbody\n",
			wantDesc: "terse",
			wantBody: "body\n",
		},
		{
			name:     "crlf line endings",
			content:  "---\r\ndescription: windows\r\n---\r\nbody\r\n",
			wantDesc: "windows",
			wantBody: "body\r\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var matter testMatter
			body, err := Parse([]byte(tt.content), &matter)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDesc, matter.Description)
			assert.Equal(t, tt.wantBody, string(body))
		})
	}
}

func TestFormat(t *testing.T) {
	matter := testMatter{Description: "builds features", Model: "sonnet"}

	out, err := Format(matter, "Do the work.")
	require.NoError(t, err)

	want := "---\ndescription: builds features\nmodel: sonnet\n---\n\nDo the work.\n"
	assert.Equal(t, want, string(out))
}

func TestFormatNilMatter(t *testing.T) {
	out, err := Format(nil, "plain body")
	require.NoError(t, err)
	assert.Equal(t, "plain body\n", string(out))
}

func TestRoundTrip(t *testing.T) {
	in := testMatter{Description: "audits dependencies", Temperature: 0.1}

	encoded, err := Format(in, "Check every dependency.\n")
	require.NoError(t, err)

	var out testMatter
	body, err := Parse(encoded, &out)
	require.NoError(t, err)
	assert.Equal(t, in, out)
	assert.Equal(t, "Check every dependency.\n", string(body))
}
