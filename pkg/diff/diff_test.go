package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type item struct {
	ID    int64
	Label string
}

func (i item) DiffID() int64 { return i.ID }

func TestCalculateEmptyInputs(t *testing.T) {
	result := Calculate[item](nil, nil)
	assert.True(t, result.Empty())
	assert.Empty(t, result.Created)
	assert.Empty(t, result.Updated)
	assert.Empty(t, result.DeletedIDs)
}

func TestCalculateAllCreated(t *testing.T) {
	current := []item{{Label: "a"}, {Label: "b"}}

	result := Calculate(nil, current)

	assert.Len(t, result.Created, 2)
	assert.Empty(t, result.Updated)
	assert.Empty(t, result.DeletedIDs)
}

func TestCalculateAllDeleted(t *testing.T) {
	snapshot := []item{{ID: 1, Label: "a"}, {ID: 2, Label: "b"}}

	result := Calculate(snapshot, nil)

	assert.Empty(t, result.Created)
	assert.Empty(t, result.Updated)
	assert.ElementsMatch(t, []int64{1, 2}, result.DeletedIDs)
}

func TestCalculateMixed(t *testing.T) {
	snapshot := []item{
		{ID: 1, Label: "keep"},
		{ID: 2, Label: "drop"},
	}
	current := []item{
		{ID: 1, Label: "keep-renamed"},
		{Label: "new"},
	}

	result := Calculate(snapshot, current)

	assert.Len(t, result.Created, 1)
	assert.Equal(t, "new", result.Created[0].Label)
	assert.Len(t, result.Updated, 1)
	assert.Equal(t, int64(1), result.Updated[0].ID)
	assert.Equal(t, []int64{2}, result.DeletedIDs)
}

func TestCalculateUnknownIDStaysInUpdated(t *testing.T) {
	snapshot := []item{{ID: 1, Label: "a"}}
	current := []item{{ID: 99, Label: "ghost"}}

	result := Calculate(snapshot, current)

	assert.Empty(t, result.Created)
	assert.Len(t, result.Updated, 1)
	assert.Equal(t, int64(99), result.Updated[0].ID)
	assert.Equal(t, []int64{1}, result.DeletedIDs)
}

func TestCalculateFuncSkipsUnchanged(t *testing.T) {
	snapshot := []item{
		{ID: 1, Label: "same"},
		{ID: 2, Label: "old"},
	}
	current := []item{
		{ID: 1, Label: "same"},
		{ID: 2, Label: "new"},
	}

	result := CalculateFunc(snapshot, current, func(old, new item) bool {
		return old.Label == new.Label
	})

	assert.Empty(t, result.Created)
	assert.Len(t, result.Updated, 1)
	assert.Equal(t, int64(2), result.Updated[0].ID)
	assert.Empty(t, result.DeletedIDs)
}

func TestCalculateZeroIDSnapshotEntriesIgnoredForDeletion(t *testing.T) {
	snapshot := []item{{ID: 0, Label: "stray"}}

	result := Calculate(snapshot, nil)

	assert.True(t, result.Empty())
}
