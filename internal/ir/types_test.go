package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSlot(t *testing.T) {
	slot, err := ParseSlot("current")
	require.NoError(t, err)
	assert.Equal(t, SlotCurrent, slot)

	slot, err = ParseSlot("previous")
	require.NoError(t, err)
	assert.Equal(t, SlotPrevious, slot)

	_, err = ParseSlot("next")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown slot")
}

func TestInputFileRef(t *testing.T) {
	f := InputFile{Name: "fileA.xlsx", MediaType: "application/x", Data: []byte("abc"), Digest: "d"}
	ref := f.Ref()
	assert.Equal(t, FileRef{Name: "fileA.xlsx", MediaType: "application/x", Size: 3, Digest: "d"}, ref)
}

func TestEventCanonicalMapOmitsEmptyAttempt(t *testing.T) {
	ev := Event{Kind: EventLabelSet, State: "idle", Seq: 1, Attrs: map[string]string{AttrLabel: "JAN 2026"}}
	m := ev.CanonicalMap()
	_, ok := m["attempt_id"]
	assert.False(t, ok)

	ev.AttemptID = "attempt-1"
	assert.Equal(t, "attempt-1", ev.CanonicalMap()["attempt_id"])

	data, err := MarshalCanonical(ev.CanonicalMap())
	require.NoError(t, err)
	assert.Equal(t, `{"attempt_id":"attempt-1","attrs":{"label":"JAN 2026"},"kind":"label_set","seq":1,"state":"idle"}`, string(data))
}
