package sizex

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Bytes
		wantErr bool
	}{
		{in: "", want: 0},
		{in: "1024", want: 1024},
		{in: "8MB", want: 8_000_000},
		{in: "512KiB", want: 512 * 1024},
		{in: " 1 MiB ", want: 1 << 20},
		{in: "lots", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBytes_JSON(t *testing.T) {
	var cfg struct {
		A Bytes `json:"a"`
		B Bytes `json:"b"`
		C Bytes `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"2MiB","b":4096,"c":null}`), &cfg))
	assert.Equal(t, Bytes(2<<20), cfg.A)
	assert.Equal(t, Bytes(4096), cfg.B)
	assert.Equal(t, Bytes(0), cfg.C)

	assert.Error(t, json.Unmarshal([]byte(`{"a":true}`), &cfg))
	assert.Error(t, json.Unmarshal([]byte(`{"a":"huge"}`), &cfg))

	b, err := json.Marshal(Bytes(2 << 20))
	require.NoError(t, err)
	assert.Equal(t, `"2.0 MiB"`, string(b))
}

func TestBytes_Decode(t *testing.T) {
	var b Bytes
	require.NoError(t, b.Decode("1KB"))
	assert.Equal(t, int64(1000), b.Int64())
	assert.Error(t, b.Decode("x"))
}
