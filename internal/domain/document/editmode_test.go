package document

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnterEdit_OutsideEditableRegion(t *testing.T) {
	d, s := load(t, testIssue())
	before := append([]string(nil), s.lines...)

	for _, line := range []int{2, 5, 6, 10, 12} {
		_, err := d.EnterEdit(line)
		require.ErrorIs(t, err, ErrNotEditable, "line %d", line)
	}

	_, editing := d.Editing()
	assert.False(t, editing)
	assert.Equal(t, before, s.lines)
}

func TestEditMode_StripsAndRestoresMask(t *testing.T) {
	d, s := load(t, testIssue())

	r, err := d.EnterEdit(8)
	require.NoError(t, err)
	assert.Equal(t, RegionDescription, r.Ref.Kind)
	assert.Equal(t, []string{"Line one", "Line two"}, s.lines[7:9])

	editing, ok := d.Editing()
	require.True(t, ok)
	assert.Equal(t, r.Handle, editing.Handle)

	d.LeaveEdit()

	assert.Equal(t, []string{MaskPrefix + "Line one", MaskPrefix + "Line two"}, s.lines[7:9])
	assert.Equal(t, "Line one\nLine two", d.Description().Body)
	assert.False(t, d.Description().Dirty())
	_, ok = d.Editing()
	assert.False(t, ok)
}

func TestEditMode_SwitchingRegionsRemasksPrevious(t *testing.T) {
	d, s := load(t, testIssue())

	_, err := d.EnterEdit(7)
	require.NoError(t, err)
	r, err := d.EnterEdit(11)
	require.NoError(t, err)

	assert.Equal(t, RegionComment, r.Ref.Kind)
	assert.Equal(t, MaskPrefix+"Line one", s.lines[7])
	assert.Equal(t, "Looks good", s.lines[11])
}

func TestEditMode_TitleIsNeverMasked(t *testing.T) {
	d, s := load(t, testIssue())

	_, err := d.EnterEdit(0)
	require.NoError(t, err)
	hostEdit(d, s, 0, 1, "Fix the parser")
	d.LeaveEdit()

	assert.Equal(t, "Fix the parser", s.lines[0])
	assert.Equal(t, "Fix the parser", d.Title().Body)
	assert.True(t, d.Title().Dirty())
}

func TestLinesChanged_GrowsEditedRegion(t *testing.T) {
	d, s := load(t, testIssue())

	_, err := d.EnterEdit(8)
	require.NoError(t, err)
	hostEdit(d, s, 8, 9, "Line 2", "Line 3")

	desc := d.Description()
	assert.Equal(t, "Line one\nLine 2\nLine 3", desc.Body)
	assert.True(t, desc.Dirty())

	c, ok := d.Comment(0)
	require.True(t, ok)
	r, ok := d.Region(c.Region)
	require.True(t, ok)
	assert.Equal(t, [2]int{12, 13}, [2]int{r.Start, r.End})
	assert.Equal(t, "Looks good", c.Body)
}

func TestLinesChanged_AppendAtEndOfEditedRegion(t *testing.T) {
	d, s := load(t, testIssue())

	_, err := d.EnterEdit(11)
	require.NoError(t, err)
	hostEdit(d, s, 12, 12, "more")

	c, ok := d.Comment(0)
	require.True(t, ok)
	assert.Equal(t, "Looks good\nmore", c.Body)
	assert.True(t, c.Dirty())
}

func TestEditMode_BodyNeverContainsMask(t *testing.T) {
	d, s := load(t, testIssue())

	_, err := d.EnterEdit(11)
	require.NoError(t, err)
	hostEdit(d, s, 11, 12, "LGTM", "ship it")
	d.LeaveEdit()
	_, err = d.EnterEdit(7)
	require.NoError(t, err)
	d.LeaveEdit()

	assert.False(t, strings.Contains(d.Description().Body, MaskPrefix))
	for _, c := range d.Comments() {
		assert.False(t, strings.Contains(c.Body, MaskPrefix))
		assert.Equal(t, c.Body != c.SavedBody, c.Dirty())
	}
	assert.Equal(t, MaskPrefix+"LGTM", s.lines[11])
}

func TestDirty_RevertingEditClearsDirty(t *testing.T) {
	d, s := load(t, testIssue())

	_, err := d.EnterEdit(11)
	require.NoError(t, err)
	hostEdit(d, s, 11, 12, "Looks bad")
	assert.True(t, d.Pending().Comments[0].Dirty())

	hostEdit(d, s, 11, 12, "Looks good")

	assert.True(t, d.Pending().Empty())
}
