package domain

import (
	"regexp"
	"strconv"
	"time"
)

// Server is one of the four game server regions a team can be created for
type Server string

const (
	ServerJP     Server = "日服"
	ServerTW     Server = "台服"
	ServerGlobal Server = "国际服"
	ServerCN     Server = "国服"
)

// Servers lists all valid server regions in display order
var Servers = []Server{ServerJP, ServerTW, ServerGlobal, ServerCN}

// ParseServer validates a raw server token against the fixed enumeration
func ParseServer(s string) (Server, error) {
	for _, srv := range Servers {
		if Server(s) == srv {
			return srv, nil
		}
	}
	return "", ErrInvalidServer
}

// MaxTeamSize is the hard roster capacity, creator included
const MaxTeamSize = 5

// TimeLayout is the canonical text form of team timestamps at the chat edge
const TimeLayout = "2006-01-02 15:04:05"

// TeamMember is one entry of a team roster
type TeamMember struct {
	UserID   string `json:"user_id"`
	Nickname string `json:"nickname"`
}

// Team is a proposed shared activity with a capacity-bounded roster and a
// scheduled start time. The creator is always the first member.
type Team struct {
	ID          int64        `json:"id"`
	CreatorID   string       `json:"creator_id"`
	CreatorName string       `json:"creator_name"`
	StartTime   time.Time    `json:"start_time"`
	CreatedAt   time.Time    `json:"created_at"`
	GroupID     string       `json:"group_id,omitempty"`
	Server      Server       `json:"server"`
	Members     []TeamMember `json:"members"`
}

// HasMember reports whether userID is already on the roster
func (t *Team) HasMember(userID string) bool {
	for _, m := range t.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// IsFull reports whether the roster has reached capacity
func (t *Team) IsFull() bool {
	return len(t.Members) >= MaxTeamSize
}

var hourMinuteRe = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):([0-5][0-9])$`)

// ParseStartTime resolves a user-supplied time token to an absolute local
// timestamp. HH:MM means today at that time; otherwise the token must be a
// full "YYYY-MM-DD HH:MM:SS" literal.
func ParseStartTime(now time.Time, input string) (time.Time, error) {
	if m := hourMinuteRe.FindStringSubmatch(input); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		return time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location()), nil
	}

	t, err := time.ParseInLocation(TimeLayout, input, now.Location())
	if err != nil {
		return time.Time{}, ErrInvalidStartTime
	}
	return t, nil
}
