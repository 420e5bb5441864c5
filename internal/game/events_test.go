package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeEvent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
		want Event
	}{
		{name: "game_started", data: `{"type":"game_started","session_id":"s1"}`, want: Started{}},
		{name: "new_turn", data: `{"type":"new_turn","user_id":"alice"}`, want: NewTurn{UserID: "alice"}},
		{name: "player_joined", data: `{"type":"player_joined","user_id":"bob"}`, want: PlayerJoined{UserID: "bob"}},
		{name: "player_left", data: `{"type":"player_left","user_id":"bob"}`, want: PlayerLeft{UserID: "bob"}},
		{name: "player_ready", data: `{"type":"player_ready","user_id":"bob","ready":true}`, want: PlayerReady{UserID: "bob", Ready: true}},
		{name: "last_player_message", data: `{"type":"last_player_message","content":"and then"}`, want: LastPlayerMessage{Content: "and then"}},
		{name: "error", data: `{"type":"error","message":"not your turn"}`, want: ServerError{Message: "not your turn"}},
		{name: "session_deleted", data: `{"type":"session_deleted"}`, want: SessionDeleted{}},
		{name: "waiting", data: `{"type":"waiting_for_story_generation"}`, want: WaitingForStoryGeneration{}},
		{name: "story_chunk", data: `{"type":"story_chunk","seq":3,"chunk":"llo"}`, want: StoryChunk{Seq: 3, Chunk: "llo"}},
		{name: "story_complete", data: `{"type":"story_complete","story_id":"st1","full_text":"Hello"}`, want: StoryComplete{StoryID: "st1", FullText: "Hello"}},
		{name: "game_finished", data: `{"type":"game_finished","session_id":"s1"}`, want: Finished{}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := DecodeEvent([]byte(tt.data))
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeEvent_Errors(t *testing.T) {
	t.Parallel()

	_, err := DecodeEvent([]byte(`{"type":"mystery"}`))
	require.ErrorContains(t, err, "unknown game event type")

	_, err = DecodeEvent([]byte(`{{`))
	require.Error(t, err)
}
