package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileDigest(t *testing.T) {
	// sha256("") is a well known constant.
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", FileDigest(nil))
	assert.Len(t, FileDigest([]byte("fileA")), 64)
}

func TestEventIDDeterministic(t *testing.T) {
	ev := Event{
		Kind:  EventFileSet,
		State: "idle",
		Seq:   1,
		Attrs: map[string]string{AttrSlot: "current", AttrName: "fileA.xlsx"},
	}

	id1, err := EventID("wf-1", ev)
	require.NoError(t, err)
	id2, err := EventID("wf-1", ev)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)
	assert.Len(t, id1, 64)

	other := ev
	other.Seq = 2
	assert.NotEqual(t, id1, MustEventID("wf-1", other))
	assert.NotEqual(t, id1, MustEventID("wf-2", ev))
}

func TestEventIDIgnoresExistingID(t *testing.T) {
	ev := Event{Kind: EventLabelSet, State: "idle", Seq: 3, Attrs: map[string]string{}}
	withID := ev
	withID.ID = "something"
	assert.Equal(t, MustEventID("wf", ev), MustEventID("wf", withID))
}
