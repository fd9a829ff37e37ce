package testutil

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/recon/internal/ir"
	"github.com/roach88/recon/internal/transport"
)

func TestScriptedSubmitter_AnswersInOrder(t *testing.T) {
	s := NewScriptedSubmitter(
		Success(`{"ok":true}`),
		StatusFailure(http.StatusInternalServerError, "boom"),
	)
	ctx := context.Background()

	body, err := s.Submit(ctx, ir.SubmitRequest{AttemptID: "a1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))

	_, err = s.Submit(ctx, ir.SubmitRequest{AttemptID: "a2"})
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, transport.StatusCode(err))

	_, err = s.Submit(ctx, ir.SubmitRequest{AttemptID: "a3"})
	assert.ErrorIs(t, err, ErrUnscripted)

	require.Equal(t, 3, s.Calls())
	assert.Equal(t, "a2", s.Requests()[1].AttemptID)
}

func TestScriptedSubmitter_TransportFailureHasNoStatus(t *testing.T) {
	cause := errors.New("connection refused")
	s := NewScriptedSubmitter(TransportFailure(cause))

	_, err := s.Submit(context.Background(), ir.SubmitRequest{})
	require.ErrorIs(t, err, cause)
	assert.False(t, transport.IsStatusError(err))
}

func TestScriptedSubmitter_HoldRelease(t *testing.T) {
	s := NewScriptedSubmitter(Success(`{}`))
	s.Hold()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.Submit(context.Background(), ir.SubmitRequest{})
	}()

	select {
	case <-done:
		t.Fatal("submit returned while held")
	case <-time.After(20 * time.Millisecond):
	}

	s.Release()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("submit still blocked after release")
	}
}
