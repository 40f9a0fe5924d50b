package trace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracerProviderParamsFromConfigLine(t *testing.T) {
	t.Parallel()

	defaults := defaultTracerProviderParams()

	tests := []struct {
		name    string
		line    string
		want    tracerProviderParams
		wantErr error
	}{
		{
			name: "default",
			line: "otel",
			want: defaults,
		},
		{
			name: "http_url",
			line: "otel=http://127.0.0.1:4318/v1/traces",
			want: tracerProviderParams{
				proto: "http", endpoint: "127.0.0.1:4318", urlPath: "/v1/traces",
				insecure: true, headers: map[string]string{},
			},
		},
		{
			name: "https_with_headers",
			line: "otel=https://collector.test,header.Authorization=Bearer abc",
			want: tracerProviderParams{
				proto: "http", endpoint: "collector.test",
				headers: map[string]string{"Authorization": "Bearer abc"},
			},
		},
		{
			name: "grpc_proto",
			line: "otel=http://collector.test:4317,proto=grpc",
			want: tracerProviderParams{
				proto: "grpc", endpoint: "collector.test:4317",
				insecure: true, headers: map[string]string{},
			},
		},
		{
			name:    "grpc_with_path",
			line:    "otel=http://collector.test/v1/traces,proto=grpc",
			wantErr: ErrInvalidGRPCWithURLPath,
		},
		{
			name:    "bad_output",
			line:    "jaeger=http://x",
			wantErr: ErrInvalidTracesOutput,
		},
		{
			name:    "bad_scheme",
			line:    "otel=ftp://x",
			wantErr: ErrInvalidURLScheme,
		},
		{
			name:    "bad_proto",
			line:    "otel=http://x,proto=udp",
			wantErr: ErrInvalidProto,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := tracerProviderParamsFromConfigLine(tt.line)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := tracerProviderParamsFromConfigLine("otel=http://x,color=red")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown otel config key color")
}

func TestTracerProviderFromConfigLineNone(t *testing.T) {
	t.Parallel()

	for _, line := range []string{"", "none"} {
		tp, err := TracerProviderFromConfigLine(context.Background(), line)
		require.NoError(t, err)
		_, span := tp.Tracer("x").Start(context.Background(), "noop")
		assert.False(t, span.IsRecording())
		require.NoError(t, tp.Shutdown(context.Background()))
	}
}
