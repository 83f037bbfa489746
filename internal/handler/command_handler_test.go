package handler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teambot/internal/domain"
	"teambot/pkg/logger"
)

// stubTeams is a canned TeamService for command dispatch tests
type stubTeams struct {
	createTeam *domain.Team
	createErr  error
	joinErr    error
	leaveErr   error
	deleteErr  error
	listTeams  []*domain.Team
	listErr    error
	descTeam   *domain.Team
	descErr    error

	lastJoinID    int64
	lastJoined    domain.TeamMember
	lastStartTime time.Time
	lastServer    string
	lastGroupID   string
}

func (s *stubTeams) Create(_ context.Context, creatorID, creatorName string, startTime time.Time, groupID, server string) (*domain.Team, error) {
	s.lastStartTime = startTime
	s.lastServer = server
	s.lastGroupID = groupID
	if s.createErr != nil {
		return nil, s.createErr
	}
	if s.createTeam != nil {
		return s.createTeam, nil
	}
	return &domain.Team{ID: 1, CreatorID: creatorID, CreatorName: creatorName}, nil
}

func (s *stubTeams) Join(_ context.Context, teamID int64, member domain.TeamMember) error {
	s.lastJoinID = teamID
	s.lastJoined = member
	return s.joinErr
}

func (s *stubTeams) Leave(_ context.Context, teamID int64, userID string) error { return s.leaveErr }

func (s *stubTeams) Delete(_ context.Context, teamID int64, requesterID string) error {
	return s.deleteErr
}

func (s *stubTeams) ListAll(_ context.Context) ([]*domain.Team, error) {
	return s.listTeams, s.listErr
}

func (s *stubTeams) Describe(_ context.Context, teamID int64) (*domain.Team, error) {
	return s.descTeam, s.descErr
}

func (s *stubTeams) Remove(_ context.Context, teamID int64) error { return nil }

func (s *stubTeams) SweepExpired(_ context.Context, now time.Time) (int64, error) { return 0, nil }

func (s *stubTeams) DueForNotification(_ context.Context, now time.Time, window time.Duration) ([]*domain.Team, error) {
	return nil, nil
}

func newTestCommandHandler(teams *stubTeams) *CommandHandler {
	h := NewCommandHandler(teams, logger.NewNop())
	h.now = func() time.Time {
		return time.Date(2024, 1, 1, 10, 0, 0, 0, time.Local)
	}
	return h
}

func testMessage() domain.GroupMessage {
	return domain.GroupMessage{
		GroupID:  "10001",
		UserID:   "u1",
		Nickname: "alpha",
	}
}

func TestHandleHelp(t *testing.T) {
	h := newTestCommandHandler(&stubTeams{})

	got := h.Handle(context.Background(), testMessage(), "")
	for _, verb := range []string{"查询", "加入", "删除", "创建", "退出"} {
		assert.Contains(t, got, verb)
	}
}

func TestHandleUnknown(t *testing.T) {
	h := newTestCommandHandler(&stubTeams{})

	got := h.Handle(context.Background(), testMessage(), "散伙")
	assert.Equal(t, msgUnknown, got)
}

func TestHandleListAll(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		h := newTestCommandHandler(&stubTeams{})
		assert.Equal(t, msgNoTeams, h.Handle(context.Background(), testMessage(), "查询"))
	})

	t.Run("formats each team", func(t *testing.T) {
		teams := &stubTeams{listTeams: []*domain.Team{
			{
				ID:          1,
				CreatorName: "alpha",
				StartTime:   time.Date(2024, 1, 1, 20, 30, 0, 0, time.Local),
				Server:      domain.ServerJP,
				Members:     []domain.TeamMember{{UserID: "u1"}, {UserID: "u2"}},
			},
		}}
		h := newTestCommandHandler(teams)

		got := h.Handle(context.Background(), testMessage(), "查询")
		assert.Contains(t, got, "当前队伍列表")
		assert.Contains(t, got, "[1] alpha [2/5] 2024-01-01 20:30:00 [日服]")
	})

	t.Run("store failure", func(t *testing.T) {
		h := newTestCommandHandler(&stubTeams{listErr: assert.AnError})
		assert.Equal(t, msgInternal, h.Handle(context.Background(), testMessage(), "查询"))
	})
}

func TestHandleDescribe(t *testing.T) {
	t.Run("bad id", func(t *testing.T) {
		h := newTestCommandHandler(&stubTeams{})
		assert.Equal(t, msgBadTeamID, h.Handle(context.Background(), testMessage(), "查询 abc"))
	})

	t.Run("not found", func(t *testing.T) {
		h := newTestCommandHandler(&stubTeams{descErr: domain.ErrTeamNotFound})
		assert.Equal(t, "队伍 5 不存在", h.Handle(context.Background(), testMessage(), "查询 5"))
	})

	t.Run("lists members and start time", func(t *testing.T) {
		teams := &stubTeams{descTeam: &domain.Team{
			ID:        3,
			StartTime: time.Date(2024, 1, 1, 20, 30, 0, 0, time.Local),
			Members: []domain.TeamMember{
				{UserID: "u1", Nickname: "alpha"},
				{UserID: "u2", Nickname: "beta"},
			},
		}}
		h := newTestCommandHandler(teams)

		got := h.Handle(context.Background(), testMessage(), "查询 3")
		assert.Contains(t, got, "队伍 3 成员列表")
		assert.Contains(t, got, "1. alpha")
		assert.Contains(t, got, "2. beta")
		assert.Contains(t, got, "开始时间: 2024-01-01 20:30:00")
	})
}

func TestHandleJoin(t *testing.T) {
	tests := []struct {
		name    string
		joinErr error
		want    string
	}{
		{name: "success", want: msgJoined},
		{name: "not found", joinErr: domain.ErrTeamNotFound, want: msgTeamNotFound},
		{name: "already joined", joinErr: domain.ErrAlreadyJoined, want: msgAlreadyIn},
		{name: "full", joinErr: domain.ErrTeamFull, want: msgTeamFull},
		{name: "store failure", joinErr: assert.AnError, want: msgInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			teams := &stubTeams{joinErr: tt.joinErr}
			h := newTestCommandHandler(teams)

			got := h.Handle(context.Background(), testMessage(), "加入 2")
			assert.Equal(t, tt.want, got)
			assert.Equal(t, int64(2), teams.lastJoinID)
			assert.Equal(t, domain.TeamMember{UserID: "u1", Nickname: "alpha"}, teams.lastJoined)
		})
	}

	t.Run("bad id", func(t *testing.T) {
		h := newTestCommandHandler(&stubTeams{})
		assert.Equal(t, msgBadTeamID, h.Handle(context.Background(), testMessage(), "加入 x"))
		assert.Equal(t, msgBadTeamID, h.Handle(context.Background(), testMessage(), "加入"))
	})
}

func TestHandleLeave(t *testing.T) {
	tests := []struct {
		name     string
		leaveErr error
		want     string
	}{
		{name: "success", want: msgLeft},
		{name: "not found", leaveErr: domain.ErrTeamNotFound, want: msgTeamNotFound},
		{name: "not a member", leaveErr: domain.ErrNotAMember, want: msgNotMember},
		{name: "creator", leaveErr: domain.ErrCreatorCannotLeave, want: msgCreatorLeave},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestCommandHandler(&stubTeams{leaveErr: tt.leaveErr})
			assert.Equal(t, tt.want, h.Handle(context.Background(), testMessage(), "退出 1"))
		})
	}
}

func TestHandleDelete(t *testing.T) {
	tests := []struct {
		name      string
		deleteErr error
		want      string
	}{
		{name: "success", want: msgDeleted},
		{name: "not found", deleteErr: domain.ErrTeamNotFound, want: msgTeamNotFound},
		{name: "not owner", deleteErr: domain.ErrNotOwner, want: msgNotOwner},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestCommandHandler(&stubTeams{deleteErr: tt.deleteErr})
			assert.Equal(t, tt.want, h.Handle(context.Background(), testMessage(), "删除 1"))
		})
	}
}

func TestHandleCreate(t *testing.T) {
	t.Run("hour minute resolves to today", func(t *testing.T) {
		teams := &stubTeams{}
		h := newTestCommandHandler(teams)

		got := h.Handle(context.Background(), testMessage(), "创建 日服 20:30")
		assert.Equal(t, "队伍创建成功，序号为 1", got)
		assert.Equal(t, "日服", teams.lastServer)
		assert.Equal(t, "10001", teams.lastGroupID)

		want := time.Date(2024, 1, 1, 20, 30, 0, 0, time.Local)
		assert.True(t, want.Equal(teams.lastStartTime), "want %v, got %v", want, teams.lastStartTime)
	})

	t.Run("full literal", func(t *testing.T) {
		teams := &stubTeams{}
		h := newTestCommandHandler(teams)

		got := h.Handle(context.Background(), testMessage(), "创建 国际服 2023-11-01 20:00:00")
		require.Equal(t, "队伍创建成功，序号为 1", got)
		assert.Equal(t, "国际服", teams.lastServer)

		want := time.Date(2023, 11, 1, 20, 0, 0, 0, time.Local)
		assert.True(t, want.Equal(teams.lastStartTime), "want %v, got %v", want, teams.lastStartTime)
	})

	t.Run("missing args", func(t *testing.T) {
		h := newTestCommandHandler(&stubTeams{})
		assert.Equal(t, msgBadCreate, h.Handle(context.Background(), testMessage(), "创建 日服"))
		assert.Equal(t, msgBadCreate, h.Handle(context.Background(), testMessage(), "创建"))
	})

	t.Run("bad server", func(t *testing.T) {
		h := newTestCommandHandler(&stubTeams{})
		assert.Equal(t, msgBadServer, h.Handle(context.Background(), testMessage(), "创建 美服 20:30"))
	})

	t.Run("bad time", func(t *testing.T) {
		h := newTestCommandHandler(&stubTeams{})
		assert.Equal(t, msgBadTime, h.Handle(context.Background(), testMessage(), "创建 日服 25:99"))
	})
}
