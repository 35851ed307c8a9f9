package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/omnimarket/omnimarket/internal/app"
	_ "github.com/omnimarket/omnimarket/testing"
)

func TestRunsInTestMode(t *testing.T) {
	require.True(t, app.InTestMode())
}

func TestTriggerRejectsUnknownJob(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewJobsCLI(mr.Addr())
	t.Cleanup(func() { _ = c.Close() })

	_, err := c.Trigger(context.Background(), "mail:send")
	require.ErrorContains(t, err, "unsupported job")
}

func TestWriteStats(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteStats(&buf, QueueStats{Queue: "default", Pending: 2, Retry: 1}))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	require.True(t, strings.HasPrefix(lines[0], "QUEUE"))
	require.Equal(t, []string{"default", "2", "0", "0", "1", "0"}, strings.Fields(lines[1]))
}
