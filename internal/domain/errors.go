package domain

import "errors"

// Outcome codes for team operations. The command layer maps these to
// user-facing response text; anything else is a persistence failure.
var (
	ErrTeamNotFound       = errors.New("team not found")
	ErrTeamFull           = errors.New("team is full")
	ErrAlreadyJoined      = errors.New("already a member of this team")
	ErrNotAMember         = errors.New("not a member of this team")
	ErrCreatorCannotLeave = errors.New("creator cannot leave own team")
	ErrNotOwner           = errors.New("only the creator may delete a team")
	ErrInvalidServer      = errors.New("invalid server region")
	ErrInvalidStartTime   = errors.New("invalid start time")
)
