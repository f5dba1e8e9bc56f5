package common

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLine struct {
	values []int
	failOn int
	closed bool
}

func (l *fakeLine) SetValue(value int) error {
	if l.failOn >= 0 && len(l.values) == l.failOn {
		return errors.New("line busy")
	}
	l.values = append(l.values, value)
	return nil
}

func (l *fakeLine) Close() error {
	l.closed = true
	return nil
}

func TestResetPulse(t *testing.T) {
	line := &fakeLine{failOn: -1}
	r := newResetLine(line, 10*time.Millisecond, 30*time.Millisecond)
	var slept []time.Duration
	r.sleep = func(d time.Duration) { slept = append(slept, d) }

	require.NoError(t, r.Pulse())
	assert.Equal(t, []int{0, 1}, line.values)
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 30 * time.Millisecond}, slept)

	require.NoError(t, r.Close())
	assert.True(t, line.closed)
}

func TestResetPulseReleaseFailure(t *testing.T) {
	line := &fakeLine{failOn: 1}
	r := newResetLine(line, 0, 0)
	r.sleep = func(time.Duration) {}

	err := r.Pulse()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "release")
}

func TestOpenSerialChannelMissingTTY(t *testing.T) {
	_, err := OpenSerialChannel("/dev/does-not-exist-si5326", 115200)
	assert.Error(t, err)
}
