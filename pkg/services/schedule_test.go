package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveEventSchedule(t *testing.T) {
	tests := []struct {
		name         string
		start        time.Time
		end          time.Time
		wantDate     string
		wantStart    string
		wantEnd      string
		wantDay      int
		wantErr      bool
	}{
		{
			name:      "saturday morning",
			start:     time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
			end:       time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
			wantDate:  "2025-03-01",
			wantStart: "09:00:00",
			wantEnd:   "10:00:00",
			wantDay:   6,
		},
		{
			name:      "sunday is weekday zero",
			start:     time.Date(2025, 3, 2, 14, 30, 0, 0, time.UTC),
			end:       time.Date(2025, 3, 2, 16, 0, 0, 0, time.UTC),
			wantDate:  "2025-03-02",
			wantStart: "14:30:00",
			wantEnd:   "16:00:00",
			wantDay:   0,
		},
		{
			name: "offset instants are normalized to utc",
			// 01:00+02:00 is 23:00 UTC the previous day.
			start:     time.Date(2025, 3, 3, 1, 0, 0, 0, time.FixedZone("EET", 2*3600)),
			end:       time.Date(2025, 3, 3, 2, 0, 0, 0, time.FixedZone("EET", 2*3600)),
			wantDate:  "2025-03-02",
			wantStart: "23:00:00",
			wantEnd:   "00:00:00",
			wantDay:   0,
		},
		{
			name:    "end before start",
			start:   time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
			end:     time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
			wantErr: true,
		},
		{
			name:    "end equals start",
			start:   time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
			end:     time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
			wantErr: true,
		},
		{
			name:    "zero start",
			end:     time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schedule, err := DeriveEventSchedule(tt.start, tt.end)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDate, schedule.SpecificDate.Format("2006-01-02"))
			assert.Equal(t, tt.wantStart, schedule.StartTime)
			assert.Equal(t, tt.wantEnd, schedule.EndTime)
			assert.Equal(t, tt.wantDay, schedule.DayOfWeek)
		})
	}
}
