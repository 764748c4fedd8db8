package transfer

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsoleObserver_LogsSteppedProgress(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	o := newConsoleObserver(&bytes.Buffer{}, false, logger)

	o.Start("e01.mkv", 1000)
	for _, pct := range []int{1, 10, 26, 30, 60, 99, 100} {
		o.Update(Progress{File: "e01.mkv", Percent: pct})
	}
	o.Finish(true)

	// 26 crosses 25, 60 crosses 50, 99 crosses 75, 100 crosses 100.
	assert.Equal(t, 4, strings.Count(logs.String(), "transfer progress"))
	assert.Contains(t, logs.String(), "percent=60")
}

func TestConsoleObserver_DrawsBarOnTerminal(t *testing.T) {
	var out bytes.Buffer
	o := newConsoleObserver(&out, true, slog.Default())

	o.Start("e01.mkv", 1000)
	o.Update(Progress{File: "e01.mkv", Percent: 100, Bytes: 1000, Total: 1000})
	o.Finish(true)

	assert.Contains(t, out.String(), "e01.mkv")
	assert.Nil(t, o.bar)
}
