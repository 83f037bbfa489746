package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseServer(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Server
		wantErr bool
	}{
		{name: "jp server", input: "日服", want: ServerJP},
		{name: "tw server", input: "台服", want: ServerTW},
		{name: "global server", input: "国际服", want: ServerGlobal},
		{name: "cn server", input: "国服", want: ServerCN},
		{name: "unknown server", input: "美服", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseServer(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidServer)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseStartTime(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.Local)

	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{
			name:  "hour minute resolves to today",
			input: "20:30",
			want:  time.Date(2024, 1, 1, 20, 30, 0, 0, time.Local),
		},
		{
			name:  "single digit hour",
			input: "8:05",
			want:  time.Date(2024, 1, 1, 8, 5, 0, 0, time.Local),
		},
		{
			name:  "full literal",
			input: "2023-11-01 20:00:00",
			want:  time.Date(2023, 11, 1, 20, 0, 0, 0, time.Local),
		},
		{
			name:  "past time is still legal to parse",
			input: "00:10",
			want:  time.Date(2024, 1, 1, 0, 10, 0, 0, time.Local),
		},
		{name: "hour out of range", input: "24:00", wantErr: true},
		{name: "minute out of range", input: "20:61", wantErr: true},
		{name: "garbage", input: "tomorrow", wantErr: true},
		{name: "partial date", input: "2023-11-01 20:00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStartTime(now, tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidStartTime)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %v, got %v", tt.want, got)
			assert.Equal(t, tt.want.Format(TimeLayout), got.Format(TimeLayout))
		})
	}
}

func TestTeamRosterHelpers(t *testing.T) {
	team := &Team{
		CreatorID: "u1",
		Members: []TeamMember{
			{UserID: "u1", Nickname: "alpha"},
			{UserID: "u2", Nickname: "beta"},
		},
	}

	assert.True(t, team.HasMember("u1"))
	assert.True(t, team.HasMember("u2"))
	assert.False(t, team.HasMember("u3"))
	assert.False(t, team.IsFull())

	for i := 3; i <= MaxTeamSize; i++ {
		team.Members = append(team.Members, TeamMember{UserID: "u" + string(rune('0'+i))})
	}
	assert.True(t, team.IsFull())
}
