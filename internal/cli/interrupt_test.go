package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewInterruptHandler(t *testing.T) {
	handler := NewInterruptHandler(nil, "")
	assert.NotNil(t, handler.writer)
	assert.False(t, handler.WasInterrupted())
}

func TestInterruptHandler_Interrupt(t *testing.T) {
	var out bytes.Buffer
	handler := NewInterruptHandler(&out, "Les lignes déjà importées sont enregistrées.")

	ctx, stop := handler.HandleInterrupts(context.Background())
	defer stop()

	handler.interrupt()
	handler.interrupt()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context should be canceled after an interrupt")
	}

	assert.True(t, handler.WasInterrupted())
	assert.Equal(t, 1, bytes.Count(out.Bytes(), []byte("Interrompu.")), "the message is shown once")
	assert.Contains(t, out.String(), "déjà importées")
}

func TestInterruptHandler_StopWithoutInterrupt(t *testing.T) {
	var out bytes.Buffer
	handler := NewInterruptHandler(&out, "")

	ctx, stop := handler.HandleInterrupts(context.Background())
	stop()

	<-ctx.Done()
	assert.False(t, handler.WasInterrupted())
	assert.Empty(t, out.String())
}
