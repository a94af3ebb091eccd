package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("bad date %q: %v", value, err)
	}
	return d
}

func TestStreakFrom(t *testing.T) {
	now := day(t, "2026-08-31").Add(10 * time.Hour)

	tests := []struct {
		name string
		days []string
		want int
	}{
		{name: "no sessions", days: nil, want: 0},
		{name: "single session today", days: []string{"2026-08-31"}, want: 1},
		{name: "single session yesterday", days: []string{"2026-08-30"}, want: 1},
		{name: "broken streak", days: []string{"2026-08-28"}, want: 0},
		{
			name: "three consecutive days",
			days: []string{"2026-08-31", "2026-08-30", "2026-08-29"},
			want: 3,
		},
		{
			name: "gap stops the count",
			days: []string{"2026-08-31", "2026-08-30", "2026-08-27"},
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var days []time.Time
			for _, d := range tt.days {
				days = append(days, day(t, d))
			}
			assert.Equal(t, tt.want, streakFrom(days, now))
		})
	}
}

func TestHourWindowCounts(t *testing.T) {
	histogram := map[int]int{5: 2, 21: 3}

	before, after := hourWindowCounts(histogram)

	assert.Equal(t, 0, before[5], "a 05:xx start is not before 05:00")
	assert.Equal(t, 2, before[6])
	assert.Equal(t, 2, before[7])
	assert.Equal(t, 5, before[22]+after[22], "every session lands on one side of a boundary")
	assert.Equal(t, 3, after[20])
	assert.Equal(t, 3, after[21], "a 21:xx start counts as after 21:00")
	assert.Equal(t, 0, after[22])
	assert.Equal(t, 5, after[0])
}
