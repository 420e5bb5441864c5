package apperr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMessage_FixedPerKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{name: "timeout", err: RequestTimeout(), want: "Request timed out"},
		{name: "tooMany", err: TooManyRequests(), want: "Too many requests"},
		{name: "noInternet", err: NoInternet(), want: "No internet connection"},
		{name: "server", err: Server(), want: "Server error"},
		{name: "serialization", err: Serialization(), want: "Serialization error"},
		{name: "unauthorized", err: Unauthorized(), want: "Unauthorized"},
		{name: "remoteUnknown", err: RemoteUnknown(), want: "Unknown error"},
		{name: "diskFull", err: DiskFull(), want: "Disk full"},
		{name: "localUnknown", err: LocalUnknown(), want: "Unknown error occurred"},
		{name: "unknown", err: Unknown("boom"), want: "Unknown error occurred"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, tt.err.Message())
			require.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestMessage_APIErrorPrefersDetail(t *testing.T) {
	t.Parallel()

	require.Equal(t, "session is full", API("bad request", "session is full").Message())
	require.Equal(t, "bad request", API("bad request", "").Message())
}

func TestIs_ComparesKinds(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, Unauthorized(), Unauthorized())
	require.NotErrorIs(t, Unauthorized(), Server())
	require.ErrorIs(t, API("a", "b"), API("x", "y"))
	require.NotErrorIs(t, Unknown("ctx"), errors.New("ctx"))
}

func TestDecodeEnvelope(t *testing.T) {
	t.Parallel()

	body := []byte(`{"error":{"message":"join failed","data":{"detail":"session already started","req_uuid":"7e6c2c1e"}}}`)
	err, ok := DecodeEnvelope(body)
	require.True(t, ok)
	require.Equal(t, KindAPIError, err.Kind)
	require.Equal(t, "join failed", err.APIMessage)
	require.Equal(t, "session already started", err.Detail)
	require.Equal(t, "session already started", err.Message())
}

func TestDecodeEnvelope_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{name: "notJSON", body: "<html>503</html>"},
		{name: "emptyObject", body: "{}"},
		{name: "emptyEnvelope", body: `{"error":{"message":"","data":{"detail":""}}}`},
		{name: "differentShape", body: `{"code":503,"status":"unavailable"}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, ok := DecodeEnvelope([]byte(tt.body))
			require.False(t, ok)
		})
	}
}
