package steward

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModelID(t *testing.T) {
	tests := []struct {
		in      string
		want    ModelID
		wantErr bool
	}{
		{in: "builtin::anthropic::claude-sonnet-4-5", want: ModelID{Provider: ProviderAnthropic, Name: "claude-sonnet-4-5"}},
		{in: "custom::openai::my-model", want: ModelID{Custom: true, Provider: ProviderOpenAI, Name: "my-model"}},
		{in: "google::gemini-2.5-flash", want: ModelID{Provider: ProviderGoogle, Name: "gemini-2.5-flash"}},
		{in: "gpt-4.1", wantErr: true},
		{in: "other::openai::x", wantErr: true},
		{in: "builtin::::x", wantErr: true},
		{in: "a::b::c::d", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseModelID(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestModelIDString(t *testing.T) {
	id := ModelID{Provider: ProviderGoogle, Name: "gemini-2.5-pro"}
	assert.Equal(t, "builtin::google::gemini-2.5-pro", id.String())

	id.Custom = true
	assert.Equal(t, "custom::google::gemini-2.5-pro", id.String())
}

func TestParseModelSlot(t *testing.T) {
	slot, err := ParseModelSlot("router")
	require.NoError(t, err)
	assert.Equal(t, SlotRouter, slot)

	_, err = ParseModelSlot("planner")
	assert.Error(t, err)
}
