package vo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIdentifier(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"Q42", true},
		{"Q1", true},
		{"Q0123456789", true},
		{"", false},
		{"Q", false},
		{"q42", false},
		{"P180", false},
		{"M12345", false},
		{" Q42", false},
		{"Q42 ", false},
		{"Q42\n", false},
		{"Q4x2", false},
		{"QQ42", false},
		{"Q-42", false},
		{"Q٤٢", false}, // non-ASCII digits
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			id, ok := ParseIdentifier(tt.in)
			assert.Equal(t, tt.want, ok)
			if tt.want {
				assert.Equal(t, Identifier(tt.in), id)
			} else {
				assert.Empty(t, id)
			}
		})
	}
}

func TestFormatTitle(t *testing.T) {
	assert.Equal(t, "Foo bar baz", FormatTitle("Foo_bar_baz"))
	assert.Equal(t, "Already spaced", FormatTitle("Already spaced"))
	assert.Equal(t, "", FormatTitle(""))
}

func TestMediaAggregateSections(t *testing.T) {
	empty := MediaAggregate{}
	assert.True(t, empty.Empty())
	assert.False(t, empty.Separated())

	depictsOnly := MediaAggregate{Depicts: []Identifier{"Q1"}}
	assert.True(t, depictsOnly.HasDepicts())
	assert.False(t, depictsOnly.HasUsage())
	assert.False(t, depictsOnly.Separated())

	both := MediaAggregate{
		Depicts: []Identifier{"Q1"},
		Usage:   []UsageEntry{{ID: "Q10", Title: "Page A"}},
	}
	assert.True(t, both.Separated())
	assert.False(t, both.Empty())
}

func TestRenderable(t *testing.T) {
	assert.False(t, Renderable(nil))
	assert.False(t, Renderable(MediaAggregate{}))
	assert.False(t, Renderable(Single{}))
	assert.True(t, Renderable(Single{ID: "Q42"}))
	assert.True(t, Renderable(MediaAggregate{Usage: []UsageEntry{{ID: "Q10", Title: "Page A"}}}))
}

func TestEnvelope(t *testing.T) {
	t.Run("none", func(t *testing.T) {
		env := NewEnvelope(nil)
		assert.Equal(t, ResultKindNone, env.Kind)
		assert.False(t, env.Renderable)
		assert.Nil(t, env.Result())
	})

	t.Run("empty aggregate is not none", func(t *testing.T) {
		env := NewEnvelope(MediaAggregate{})
		assert.Equal(t, ResultKindMedia, env.Kind)
		assert.False(t, env.Renderable)
		assert.Equal(t, MediaAggregate{}, env.Result())
	})

	t.Run("json", func(t *testing.T) {
		data, err := json.Marshal(NewEnvelope(MediaAggregate{
			Depicts: []Identifier{"Q1", "Q2"},
			Usage:   []UsageEntry{{ID: "Q10", Title: "Page A"}},
		}))
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"kind": "media",
			"depicts": ["Q1", "Q2"],
			"usage": [{"id": "Q10", "title": "Page A"}],
			"renderable": true
		}`, string(data))

		var env Envelope
		require.NoError(t, json.Unmarshal([]byte(`{"kind":"single","id":"Q42","renderable":true}`), &env))
		assert.Equal(t, Single{ID: "Q42"}, env.Result())
	})
}
