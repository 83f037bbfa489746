package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"teambot/internal/domain"
	"teambot/internal/service"
	"teambot/pkg/logger"
)

const helpText = "车队命令帮助：\n" +
	"- 车队 查询：列出所有发布的队伍\n" +
	"- 车队 加入 [序号]：加入指定的队伍\n" +
	"- 车队 查询 [序号]：列出这个队伍的当前加入人\n" +
	"- 车队 删除 [序号]：删除该队伍\n" +
	"- 车队 创建 [服务器] [开始时间]：创建一个新队伍，时间格式为'小时:分钟'\n" +
	"- 车队 退出 [序号]：退出指定的队伍\n"

const (
	msgBadTeamID    = "请输入正确的队伍序号"
	msgBadTime      = "请输入正确的时间格式，例如：20:30 或 2023-11-01 20:00:00"
	msgBadServer    = "服务器只能是'日服'、'台服'、'国际服'或'国服'"
	msgBadCreate    = "请输入正确的格式：车队 创建 [服务器] [开始时间]，例如：车队 创建 日服 20:30"
	msgUnknown      = "未知命令，请输入'车队'查看帮助"
	msgInternal     = "操作失败，请稍后再试"
	msgNoTeams      = "当前没有队伍"
	msgJoined       = "加入成功"
	msgLeft         = "退出成功"
	msgDeleted      = "删除成功"
	msgTeamNotFound = "队伍不存在"
	msgAlreadyIn    = "你已经在队伍中了"
	msgTeamFull     = "队伍已满"
	msgNotMember    = "你不在这个队伍中"
	msgCreatorLeave = "创建者不能退出队伍，请使用删除命令"
	msgNotOwner     = "只有创建者可以删除队伍"
)

// CommandHandler turns stripped team commands into user-facing response
// text. Every error is recovered here; nothing propagates past the command
// boundary.
type CommandHandler struct {
	teams  service.TeamService
	logger *logger.Logger
	now    func() time.Time
}

// NewCommandHandler creates a new command handler
func NewCommandHandler(teams service.TeamService, log *logger.Logger) *CommandHandler {
	return &CommandHandler{
		teams:  teams,
		logger: log,
		now:    time.Now,
	}
}

// Handle dispatches one stripped, trimmed command for the given message
func (h *CommandHandler) Handle(ctx context.Context, msg domain.GroupMessage, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}

	verb, args := fields[0], fields[1:]
	switch verb {
	case "查询":
		if len(args) == 0 {
			return h.listAll(ctx)
		}
		return h.describe(ctx, args[0])
	case "加入":
		return h.join(ctx, msg, args)
	case "删除":
		return h.delete(ctx, msg, args)
	case "创建":
		return h.create(ctx, msg, args)
	case "退出":
		return h.leave(ctx, msg, args)
	default:
		return msgUnknown
	}
}

func (h *CommandHandler) listAll(ctx context.Context) string {
	teams, err := h.teams.ListAll(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list teams")
		return msgInternal
	}
	if len(teams) == 0 {
		return msgNoTeams
	}

	var b strings.Builder
	b.WriteString("当前队伍列表：\n")
	for _, team := range teams {
		fmt.Fprintf(&b, "[%d] %s [%d/%d] %s [%s]\n",
			team.ID,
			team.CreatorName,
			len(team.Members),
			domain.MaxTeamSize,
			team.StartTime.Format(domain.TimeLayout),
			team.Server,
		)
	}
	return b.String()
}

func (h *CommandHandler) describe(ctx context.Context, rawID string) string {
	teamID, ok := parseTeamID(rawID)
	if !ok {
		return msgBadTeamID
	}

	team, err := h.teams.Describe(ctx, teamID)
	if err != nil {
		if errors.Is(err, domain.ErrTeamNotFound) {
			return fmt.Sprintf("队伍 %d 不存在", teamID)
		}
		h.logger.WithError(err).WithField("team_id", teamID).Error("Failed to describe team")
		return msgInternal
	}

	var b strings.Builder
	fmt.Fprintf(&b, "队伍 %d 成员列表：\n", teamID)
	for i, member := range team.Members {
		fmt.Fprintf(&b, "%d. %s\n", i+1, member.Nickname)
	}
	fmt.Fprintf(&b, "开始时间: %s", team.StartTime.Format(domain.TimeLayout))
	return b.String()
}

func (h *CommandHandler) join(ctx context.Context, msg domain.GroupMessage, args []string) string {
	if len(args) == 0 {
		return msgBadTeamID
	}
	teamID, ok := parseTeamID(args[0])
	if !ok {
		return msgBadTeamID
	}

	member := domain.TeamMember{UserID: msg.UserID, Nickname: msg.SenderName()}
	if err := h.teams.Join(ctx, teamID, member); err != nil {
		switch {
		case errors.Is(err, domain.ErrTeamNotFound):
			return msgTeamNotFound
		case errors.Is(err, domain.ErrAlreadyJoined):
			return msgAlreadyIn
		case errors.Is(err, domain.ErrTeamFull):
			return msgTeamFull
		}
		h.logger.WithError(err).WithField("team_id", teamID).Error("Failed to join team")
		return msgInternal
	}
	return msgJoined
}

func (h *CommandHandler) leave(ctx context.Context, msg domain.GroupMessage, args []string) string {
	if len(args) == 0 {
		return msgBadTeamID
	}
	teamID, ok := parseTeamID(args[0])
	if !ok {
		return msgBadTeamID
	}

	if err := h.teams.Leave(ctx, teamID, msg.UserID); err != nil {
		switch {
		case errors.Is(err, domain.ErrTeamNotFound):
			return msgTeamNotFound
		case errors.Is(err, domain.ErrNotAMember):
			return msgNotMember
		case errors.Is(err, domain.ErrCreatorCannotLeave):
			return msgCreatorLeave
		}
		h.logger.WithError(err).WithField("team_id", teamID).Error("Failed to leave team")
		return msgInternal
	}
	return msgLeft
}

func (h *CommandHandler) delete(ctx context.Context, msg domain.GroupMessage, args []string) string {
	if len(args) == 0 {
		return msgBadTeamID
	}
	teamID, ok := parseTeamID(args[0])
	if !ok {
		return msgBadTeamID
	}

	if err := h.teams.Delete(ctx, teamID, msg.UserID); err != nil {
		switch {
		case errors.Is(err, domain.ErrTeamNotFound):
			return msgTeamNotFound
		case errors.Is(err, domain.ErrNotOwner):
			return msgNotOwner
		}
		h.logger.WithError(err).WithField("team_id", teamID).Error("Failed to delete team")
		return msgInternal
	}
	return msgDeleted
}

func (h *CommandHandler) create(ctx context.Context, msg domain.GroupMessage, args []string) string {
	if len(args) < 2 {
		return msgBadCreate
	}

	if _, err := domain.ParseServer(args[0]); err != nil {
		return msgBadServer
	}

	// A full date-time literal spans two tokens
	startTime, err := domain.ParseStartTime(h.now(), strings.Join(args[1:], " "))
	if err != nil {
		return msgBadTime
	}

	team, err := h.teams.Create(ctx, msg.UserID, msg.SenderName(), startTime, msg.GroupID, args[0])
	if err != nil {
		if errors.Is(err, domain.ErrInvalidServer) {
			return msgBadServer
		}
		h.logger.WithError(err).Error("Failed to create team")
		return msgInternal
	}
	return fmt.Sprintf("队伍创建成功，序号为 %d", team.ID)
}

// parseTeamID parses a user-supplied team id token
func parseTeamID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
