package brewclock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coffeebot/internal/models"
)

var base = time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)

func at(d time.Duration) *time.Time {
	t := base.Add(d)
	return &t
}

func TestIsFuture(t *testing.T) {
	assert.False(t, IsFuture(nil, base))
	assert.True(t, IsFuture(at(time.Nanosecond), base))
	assert.False(t, IsFuture(at(0), base), "ReadyAt == now counts as fresh")
	assert.False(t, IsFuture(at(-time.Minute), base))
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, models.StatusUnknown, StatusOf(nil, base))
	assert.Equal(t, models.StatusBrewing, StatusOf(at(2*time.Minute), base))
	assert.Equal(t, models.StatusFresh, StatusOf(at(-2*time.Minute), base))
}

func TestMoodOf_Buckets(t *testing.T) {
	cases := []struct {
		offset time.Duration
		want   models.Mood
	}{
		{4 * time.Minute, models.MoodBrewing},
		{time.Minute, models.MoodBrewing},
		{59 * time.Second, models.MoodAlmostReady},
		{10 * time.Second, models.MoodAlmostReady},
		{9 * time.Second, models.MoodImminent},
		{0, models.MoodJustBrewed},
		{-59 * time.Second, models.MoodJustBrewed},
		{-time.Minute, models.MoodFresh},
		{-59 * time.Minute, models.MoodFresh},
		{-time.Hour, models.MoodStale},
		{-48 * time.Hour, models.MoodStale},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, MoodOf(at(tc.offset), base), "offset %v", tc.offset)
	}
	assert.Equal(t, models.MoodUnknown, MoodOf(nil, base))
}

func TestMoodOf_NeverImprovesAsStalenessGrows(t *testing.T) {
	readyAt := at(0)
	prev := -1
	for now := base.Add(-5 * time.Minute); now.Before(base.Add(3 * time.Hour)); now = now.Add(time.Second) {
		r, ok := Rank(MoodOf(readyAt, now))
		require.True(t, ok)
		require.GreaterOrEqual(t, r, prev, "tier improved at %v", now)
		prev = r
	}
}

func TestDescribe_Unknown(t *testing.T) {
	d := Describe(nil, base)
	assert.Equal(t, models.StatusUnknown, d.Status)
	assert.Equal(t, TextUnknown, d.Text)
	assert.Empty(t, d.Distance)
}

func TestDescribe_Brewing(t *testing.T) {
	d := Describe(at(2*time.Minute), base)
	assert.Equal(t, models.StatusBrewing, d.Status)
	assert.Equal(t, models.MoodBrewing, d.Mood)
	assert.Equal(t, "2 minutes", d.Distance)
	assert.Equal(t, "Coffee will be ready in about 2 minutes", d.Text)
}

func TestDescribe_Fresh(t *testing.T) {
	d := Describe(at(-5*time.Minute), base)
	assert.Equal(t, models.StatusFresh, d.Status)
	assert.Equal(t, models.MoodFresh, d.Mood)
	assert.Equal(t, "Coffee was last ready 5 minutes ago", d.Text)
	assert.Equal(t, "fresh", d.Label)
}

func TestDescribe_IsDeterministic(t *testing.T) {
	r := at(-90 * time.Second)
	assert.Equal(t, Describe(r, base), Describe(r, base))
}

func TestDescribe_SubSecondGaps(t *testing.T) {
	assert.Equal(t, "Coffee will be ready any moment now", Describe(at(300*time.Millisecond), base).Text)
	assert.Equal(t, "Coffee was ready just now", Describe(at(0), base).Text)
}
