package app

import (
	"context"

	"arena-contest-service/internal/domain"
	"github.com/google/uuid"
)

// JoinParticipant resolves a join code into a contest and registers or
// resumes the participant. Re-joining with the same identity or nickname
// resumes the existing record instead of creating a duplicate.
func (s *ContestService) JoinParticipant(ctx context.Context, joinCode, userID, nickname, teamName string) (domain.Contest, domain.Participant, error) {
	contest, err := s.store.GetContestByJoinCode(ctx, normalizeJoinCode(joinCode))
	if err != nil {
		return domain.Contest{}, domain.Participant{}, err
	}
	if contest.Status == domain.StatusFinished {
		return domain.Contest{}, domain.Participant{}, domain.ErrInvalidTransition
	}
	if (contest.Status == domain.StatusOngoing || contest.Status == domain.StatusPaused) && !contest.Settings.AllowLateJoin {
		return domain.Contest{}, domain.Participant{}, domain.ErrLateJoinClosed
	}

	participant, existing, err := s.store.FindParticipant(ctx, contest.ID, userID, nickname)
	if err != nil {
		return domain.Contest{}, domain.Participant{}, err
	}
	if existing {
		if err := s.store.SetParticipantOnline(ctx, participant.ID, true); err != nil {
			return domain.Contest{}, domain.Participant{}, err
		}
		participant.Online = true
	} else {
		if contest.Settings.MaxParticipants > 0 && contest.ParticipantCount >= contest.Settings.MaxParticipants {
			return domain.Contest{}, domain.Participant{}, domain.ErrContestFull
		}
		participant = domain.Participant{
			ID:        uuid.New(),
			ContestID: contest.ID,
			UserID:    userID,
			Nickname:  nickname,
			Online:    true,
			JoinedAt:  s.clock.Now(),
		}
		if err := s.store.CreateParticipant(ctx, &participant); err != nil {
			return domain.Contest{}, domain.Participant{}, err
		}
		if err := s.store.AdjustContestCounts(ctx, contest.ID, 1, 0); err != nil {
			return domain.Contest{}, domain.Participant{}, err
		}
	}

	// Warm the question cache so the first submission does not pay the
	// backing-store round trip.
	if _, err := s.bank.GetQuestions(ctx, contest.ID); err != nil {
		s.log.Debug().Err(err).Str("contest_id", contest.ID.String()).Msg("question warm-up failed")
	}

	// A rejoin may be the first traffic after a restart; bring the
	// question countdown back from the contest record if it was lost.
	s.restoreTimer(ctx, contest)

	// On-site auto team-matching is best-effort: a failure here must not
	// fail the join itself.
	if contest.Settings.OnSite && contest.Settings.Teams.Enabled && teamName != "" && participant.TeamID == nil {
		if teamID, err := s.autoMatchTeam(ctx, contest.ID, participant.ID, teamName); err != nil {
			s.log.Warn().Err(err).Str("contest_id", contest.ID.String()).Str("team_name", teamName).Msg("auto team match failed")
		} else {
			participant.TeamID = &teamID
		}
	}

	s.sink.Broadcast(domain.ToAll(contest.ID, domain.EventParticipantJoined, map[string]any{
		"participantId": participant.ID,
		"nickname":      participant.Nickname,
		"teamId":        participant.TeamID,
	}))
	return contest, participant, nil
}

// autoMatchTeam joins an existing team by case-insensitive name, or
// creates one with the joiner as captain.
func (s *ContestService) autoMatchTeam(ctx context.Context, contestID, participantID uuid.UUID, teamName string) (uuid.UUID, error) {
	team, exists, err := s.store.FindTeamByName(ctx, contestID, teamName)
	if err != nil {
		return uuid.Nil, err
	}
	if exists && team.Active {
		joined, err := s.JoinTeam(ctx, team.ID, participantID, "")
		if err != nil {
			return uuid.Nil, err
		}
		return joined.ID, nil
	}
	created, err := s.CreateTeam(ctx, contestID, participantID, teamName, "")
	if err != nil {
		return uuid.Nil, err
	}
	return created.ID, nil
}

// JoinReferee admits an identity already on the contest's referee roster
// and marks it online. The host room is notified.
func (s *ContestService) JoinReferee(ctx context.Context, contestID uuid.UUID, userID string) (domain.Referee, error) {
	referee, err := s.store.GetReferee(ctx, contestID, userID)
	if err != nil {
		return domain.Referee{}, err
	}
	if err := s.store.SetRefereeOnline(ctx, contestID, userID, true); err != nil {
		return domain.Referee{}, err
	}
	referee.Online = true
	s.sink.Broadcast(domain.ToHost(contestID, domain.EventRefereeOnline, map[string]any{
		"userId":   userID,
		"nickname": referee.Nickname,
	}))
	return referee, nil
}

// AddReferee attaches an identity with a permission set. Host only.
func (s *ContestService) AddReferee(ctx context.Context, contestID uuid.UUID, actor, userID, nickname string, permissions []domain.RefereePermission) (domain.Referee, error) {
	contest, err := s.store.GetContest(ctx, contestID)
	if err != nil {
		return domain.Referee{}, err
	}
	if contest.HostID != actor {
		return domain.Referee{}, domain.ErrNotAuthorized
	}
	if contest.Settings.MaxReferees > 0 {
		existing, err := s.store.ListReferees(ctx, contestID)
		if err != nil {
			return domain.Referee{}, err
		}
		if len(existing) >= contest.Settings.MaxReferees {
			return domain.Referee{}, domain.ErrRefereeLimit
		}
	}
	referee := domain.Referee{
		ContestID:   contestID,
		UserID:      userID,
		Nickname:    nickname,
		Permissions: permissions,
		AddedAt:     s.clock.Now(),
	}
	if err := s.store.AddReferee(ctx, &referee); err != nil {
		return domain.Referee{}, err
	}
	return referee, nil
}

// RemoveReferee detaches a referee. Host only.
func (s *ContestService) RemoveReferee(ctx context.Context, contestID uuid.UUID, actor, userID string) error {
	contest, err := s.store.GetContest(ctx, contestID)
	if err != nil {
		return err
	}
	if contest.HostID != actor {
		return domain.ErrNotAuthorized
	}
	if err := s.store.RemoveReferee(ctx, contestID, userID); err != nil {
		return err
	}
	s.sink.Broadcast(domain.ToHost(contestID, domain.EventRefereeOffline, map[string]any{"userId": userID}))
	return nil
}

// DisconnectParticipant marks a participant offline; the record is kept
// so a rejoin resumes it.
func (s *ContestService) DisconnectParticipant(ctx context.Context, contestID, participantID uuid.UUID) {
	if err := s.store.SetParticipantOnline(ctx, participantID, false); err != nil {
		s.log.Warn().Err(err).Str("participant_id", participantID.String()).Msg("offline mark failed")
		return
	}
	s.sink.Broadcast(domain.ToAll(contestID, domain.EventParticipantLeft, map[string]any{
		"participantId": participantID,
	}))
}

// DisconnectReferee clears the online flag; only the host room hears
// about it.
func (s *ContestService) DisconnectReferee(ctx context.Context, contestID uuid.UUID, userID string) {
	if err := s.store.SetRefereeOnline(ctx, contestID, userID, false); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("referee offline mark failed")
		return
	}
	s.sink.Broadcast(domain.ToHost(contestID, domain.EventRefereeOffline, map[string]any{"userId": userID}))
}
