package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"arena-contest-service/internal/app"
	"arena-contest-service/internal/domain"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// WSHandler upgrades HTTP requests into role-tagged contest connections.
// Hosts and referees identify by contestId+userId; participants and displays
// may come in with just a join code.
type WSHandler struct {
	service  *app.ContestService
	hub      *Hub
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.ContestService, hub *Hub, log zerolog.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		hub:     hub,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	role := Role(query.Get("role"))
	if role == "" {
		role = RoleParticipant
	}
	switch role {
	case RoleHost, RoleParticipant, RoleReferee, RoleDisplay:
	default:
		http.Error(w, "unknown role", http.StatusBadRequest)
		return
	}

	userID := query.Get("userId")
	nickname := query.Get("nickname")
	code := query.Get("code")
	teamName := query.Get("team")

	ctx := r.Context()
	var (
		contest     domain.Contest
		participant domain.Participant
		referee     domain.Referee
		err         error
	)

	switch role {
	case RoleParticipant:
		if code == "" || nickname == "" {
			http.Error(w, "missing code or nickname", http.StatusBadRequest)
			return
		}
	default:
		contest, err = h.resolveContest(ctx, query.Get("contestId"), code)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		if role == RoleHost && contest.HostID != userID {
			http.Error(w, "not the contest host", http.StatusForbidden)
			return
		}
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}

	// The join itself happens after the upgrade so failures reach the
	// client as an error frame instead of a bare HTTP status.
	switch role {
	case RoleParticipant:
		contest, participant, err = h.service.JoinParticipant(ctx, code, userID, nickname, teamName)
	case RoleReferee:
		referee, err = h.service.JoinReferee(ctx, contest.ID, userID)
	}
	if err != nil {
		h.rejectConn(conn, err)
		return
	}

	client := newClient(h.hub, conn, contest.ID, role, userID)
	if role == RoleParticipant {
		client.setParticipant(participant.ID, participant.TeamID)
	}
	h.hub.Register(client)
	go client.writePump()

	h.reply(client, "joined", joinedPayload{Contest: contest, Participant: participant, Referee: referee})

	h.readLoop(client)

	h.hub.Unregister(client)
	_ = conn.Close()
	switch role {
	case RoleParticipant:
		h.service.DisconnectParticipant(context.Background(), contest.ID, client.participant())
	case RoleReferee:
		h.service.DisconnectReferee(context.Background(), contest.ID, userID)
	}
}

func (h *WSHandler) resolveContest(ctx context.Context, contestID, code string) (domain.Contest, error) {
	if contestID != "" {
		id, err := uuid.Parse(contestID)
		if err != nil {
			return domain.Contest{}, domain.ErrContestNotFound
		}
		return h.service.GetContest(ctx, id)
	}
	return h.service.GetContestByJoinCode(ctx, code)
}

func (h *WSHandler) rejectConn(conn *websocket.Conn, err error) {
	raw, _ := json.Marshal(outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}})
	_ = conn.WriteMessage(websocket.TextMessage, raw)
	_ = conn.Close()
}

func (h *WSHandler) reply(c *Client, msgType string, payload any) {
	raw, err := json.Marshal(outboundMessage{Type: msgType, Payload: payload})
	if err != nil {
		h.log.Error().Err(err).Str("type", msgType).Msg("marshal reply")
		return
	}
	select {
	case c.send <- raw:
	default:
	}
}

func (h *WSHandler) replyErr(c *Client, err error) {
	h.reply(c, "error", errorPayload{Message: err.Error()})
}

func (h *WSHandler) readLoop(c *Client) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		var inbound inboundMessage
		if err := c.conn.ReadJSON(&inbound); err != nil {
			return
		}
		h.dispatch(c, inbound)
	}
}

func (h *WSHandler) dispatch(c *Client, inbound inboundMessage) {
	ctx := context.Background()
	switch inbound.Type {
	case "startContest":
		h.hostCommand(c, func() error { return h.service.StartContest(ctx, c.contestID, c.userID) })
	case "pauseContest":
		h.hostCommand(c, func() error { return h.service.PauseContest(ctx, c.contestID, c.userID) })
	case "resumeContest":
		h.hostCommand(c, func() error { return h.service.ResumeContest(ctx, c.contestID, c.userID) })
	case "endContest":
		h.hostCommand(c, func() error { return h.service.EndContest(ctx, c.contestID, c.userID) })
	case "nextQuestion":
		h.hostCommand(c, func() error { return h.service.NextQuestion(ctx, c.contestID, c.userID) })
	case "jumpToQuestion":
		var payload jumpPayload
		if !h.decode(c, inbound.Payload, &payload) {
			return
		}
		h.hostCommand(c, func() error { return h.service.JumpToQuestion(ctx, c.contestID, c.userID, payload.Index) })
	case "revealAnswer":
		h.hostCommand(c, func() error { return h.service.RevealAnswer(ctx, c.contestID, c.userID) })
	case "showLeaderboard":
		h.hostCommand(c, func() error { return h.service.ShowLeaderboard(ctx, c.contestID, c.userID) })
	case "setPhase":
		var payload setPhasePayload
		if !h.decode(c, inbound.Payload, &payload) {
			return
		}
		h.hostCommand(c, func() error { return h.service.SetPhase(ctx, c.contestID, c.userID, payload.Phase) })
	case "addQuestion":
		var payload addQuestionPayload
		if !h.decode(c, inbound.Payload, &payload) {
			return
		}
		h.hostCommand(c, func() error {
			question, err := h.service.AddQuestion(ctx, c.contestID, c.userID, domain.Question{
				Prompt:         payload.Prompt,
				Options:        payload.Options,
				CorrectAnswers: payload.CorrectAnswers,
				MultiSelect:    payload.MultiSelect,
				Explanation:    payload.Explanation,
				TimeLimitSec:   payload.TimeLimitSec,
				Points:         payload.Points,
			})
			if err != nil {
				return err
			}
			h.reply(c, "questionAdded", question)
			return nil
		})
	case "adjustTimer":
		var payload adjustTimerPayload
		if !h.decode(c, inbound.Payload, &payload) {
			return
		}
		h.hostCommand(c, func() error { return h.service.AdjustTimer(ctx, c.contestID, c.userID, payload.DeltaSec) })
	case "resetTimer":
		var payload resetTimerPayload
		if !h.decode(c, inbound.Payload, &payload) {
			return
		}
		h.hostCommand(c, func() error { return h.service.ResetTimer(ctx, c.contestID, c.userID, payload.DurationSec) })
	case "timerRemaining":
		remaining, err := h.service.TimerRemaining(ctx, c.contestID)
		if err != nil {
			h.replyErr(c, err)
			return
		}
		h.reply(c, "timerRemaining", timerRemainingPayload{RemainingMs: remaining})
	case "overrideScore":
		var payload overridePayload
		if !h.decode(c, inbound.Payload, &payload) {
			return
		}
		h.hostCommand(c, func() error {
			return h.service.OverrideScore(ctx, c.contestID, payload.SubmissionID, c.userID, payload.NewScore, payload.Comment)
		})
	case "manualJudge":
		var payload judgePayload
		if !h.decode(c, inbound.Payload, &payload) {
			return
		}
		h.hostCommand(c, func() error {
			return h.service.ManualJudge(ctx, c.contestID, payload.SubmissionID, c.userID, payload.Correct, payload.Comment)
		})
	case "addReferee":
		var payload refereePayload
		if !h.decode(c, inbound.Payload, &payload) {
			return
		}
		h.hostCommand(c, func() error {
			referee, err := h.service.AddReferee(ctx, c.contestID, c.userID, payload.UserID, payload.Nickname, payload.Permissions)
			if err != nil {
				return err
			}
			h.reply(c, "refereeAdded", referee)
			return nil
		})
	case "removeReferee":
		var payload refereePayload
		if !h.decode(c, inbound.Payload, &payload) {
			return
		}
		h.hostCommand(c, func() error { return h.service.RemoveReferee(ctx, c.contestID, c.userID, payload.UserID) })
	case "submitAnswer":
		var payload submitPayload
		if !h.decode(c, inbound.Payload, &payload) {
			return
		}
		h.participantCommand(c, func(participantID uuid.UUID) error {
			submission, err := h.service.Submit(ctx, c.contestID, payload.QuestionID, participantID, payload.Answer, payload.TimeSpentMs)
			if err != nil {
				return err
			}
			h.reply(c, "submissionResult", submission)
			return nil
		})
	case "createTeam":
		var payload createTeamPayload
		if !h.decode(c, inbound.Payload, &payload) {
			return
		}
		h.participantCommand(c, func(participantID uuid.UUID) error {
			team, err := h.service.CreateTeam(ctx, c.contestID, participantID, payload.Name, payload.Role)
			if err != nil {
				return err
			}
			c.setTeam(team.ID)
			h.reply(c, "teamCreated", team)
			return nil
		})
	case "joinTeam":
		var payload joinTeamPayload
		if !h.decode(c, inbound.Payload, &payload) {
			return
		}
		h.participantCommand(c, func(participantID uuid.UUID) error {
			team, err := h.service.JoinTeam(ctx, payload.TeamID, participantID, payload.Role)
			if err != nil {
				return err
			}
			c.setTeam(team.ID)
			h.reply(c, "teamJoined", team)
			return nil
		})
	case "leaveTeam":
		h.participantCommand(c, func(participantID uuid.UUID) error {
			if err := h.service.LeaveTeam(ctx, participantID); err != nil {
				return err
			}
			c.setTeam(uuid.Nil)
			return nil
		})
	case "transferCaptain":
		var payload transferCaptainPayload
		if !h.decode(c, inbound.Payload, &payload) {
			return
		}
		actorID := c.participant()
		if err := h.service.TransferCaptain(ctx, payload.TeamID, actorID, payload.NewCaptainID, c.userID); err != nil {
			h.replyErr(c, err)
		}
	case "updateMemberRole":
		var payload memberRolePayload
		if !h.decode(c, inbound.Payload, &payload) {
			return
		}
		if c.role != RoleParticipant && c.role != RoleHost {
			h.replyErr(c, domain.ErrNotAuthorized)
			return
		}
		if err := h.service.UpdateMemberRole(ctx, payload.TeamID, payload.ParticipantID, payload.Role, c.participant(), c.userID); err != nil {
			h.replyErr(c, err)
		}
	case "disbandTeam":
		var payload teamIDPayload
		if !h.decode(c, inbound.Payload, &payload) {
			return
		}
		if err := h.service.DisbandTeam(ctx, payload.TeamID, c.participant(), c.userID); err != nil {
			h.replyErr(c, err)
			return
		}
		if c.role == RoleParticipant {
			c.setTeam(uuid.Nil)
		}
	case "leaderboard":
		board, err := h.service.Leaderboard(ctx, c.contestID)
		if err != nil {
			h.replyErr(c, err)
			return
		}
		h.reply(c, "leaderboard", board)
	default:
		h.replyErr(c, errUnsupportedMessage)
	}
}

// hostCommand runs fn for host and referee connections; the service layer
// still checks the actor's actual authority per operation.
func (h *WSHandler) hostCommand(c *Client, fn func() error) {
	if c.role != RoleHost && c.role != RoleReferee {
		h.replyErr(c, domain.ErrNotAuthorized)
		return
	}
	if err := fn(); err != nil {
		h.replyErr(c, err)
	}
}

func (h *WSHandler) participantCommand(c *Client, fn func(participantID uuid.UUID) error) {
	if c.role != RoleParticipant {
		h.replyErr(c, domain.ErrNotAuthorized)
		return
	}
	if err := fn(c.participant()); err != nil {
		h.replyErr(c, err)
	}
}

func (h *WSHandler) decode(c *Client, raw json.RawMessage, dst any) bool {
	if err := json.Unmarshal(raw, dst); err != nil {
		h.replyErr(c, errInvalidPayload)
		return false
	}
	return true
}
