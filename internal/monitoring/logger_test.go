package monitoring

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLogger(t *testing.T) {
	// Save original logger
	original := Logf
	defer func() { Logf = original }()

	called := false
	SetLogger(func(format string, v ...interface{}) {
		called = true
	})
	Logf("test message")
	if !called {
		t.Error("Custom logger was not called")
	}

	// nil installs a no-op
	called = false
	SetLogger(nil)
	Logf("test")
	if called {
		t.Error("No-op logger should not have triggered callback")
	}
}

func TestLogf_Default(t *testing.T) {
	if Logf == nil {
		t.Error("Logf should not be nil by default")
	}
}

func TestHaltfPanicsWithInvariantError(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var logged string
	SetLogger(func(format string, v ...interface{}) {
		logged = fmt.Sprintf(format, v...)
	})

	defer func() {
		r := recover()
		require.NotNil(t, r, "Haltf must not return")
		err, ok := r.(*InvariantError)
		require.True(t, ok, "panic value %T", r)
		assert.Equal(t, "invariant violated: flight mode 7", err.Error())
		assert.Contains(t, logged, "HALT")
	}()
	Haltf("flight mode %d", 7)
}

func TestSetHalt(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()
	defer SetHalt(nil)

	var msg string
	SetHalt(func(format string, v ...interface{}) {
		msg = fmt.Sprintf(format, v...)
	})
	Haltf("boom %s", "here")
	assert.Equal(t, "boom here", msg)

	SetHalt(nil)
	assert.Panics(t, func() {
		SetLogger(nil)
		Haltf("again")
	})
}
