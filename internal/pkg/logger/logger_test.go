package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Configure_WritesJSONWithComponent(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: DebugLevel, Output: &buf})
	t.Cleanup(func() { Configure(Config{Level: InfoLevel}) })

	lgr := WithComponent("borrow")
	lgr.Info().Int64("userID", 7).Msg("book borrowed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "borrow", entry["component"])
	assert.Equal(t, ServiceName, entry["service"])
	assert.Contains(t, entry, "caller")
	assert.Equal(t, "book borrowed", entry["message"])
	assert.EqualValues(t, 7, entry["userID"])
}

func Test_Configure_UnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "loud", Output: &buf})
	t.Cleanup(func() { Configure(Config{Level: InfoLevel}) })

	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	Debug().Msg("hidden")
	assert.Empty(t, buf.String())
}

func Test_ConfigFromStrings(t *testing.T) {
	cfg := ConfigFromStrings(" WARN ", "text")

	assert.Equal(t, WarnLevel, cfg.Level)
	assert.True(t, cfg.Pretty)
}
