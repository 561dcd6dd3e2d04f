package app

import (
	"context"
	"sort"

	"arena-contest-service/internal/domain"
	"github.com/google/uuid"
)

// CreateTeam forms a team with the creating participant as captain.
func (s *ContestService) CreateTeam(ctx context.Context, contestID, captainID uuid.UUID, name string, role domain.TeamRole) (domain.Team, error) {
	contest, err := s.store.GetContest(ctx, contestID)
	if err != nil {
		return domain.Team{}, err
	}
	if !contest.Settings.Teams.Enabled {
		return domain.Team{}, domain.ErrTeamsDisabled
	}

	captain, err := s.store.GetParticipant(ctx, captainID)
	if err != nil {
		return domain.Team{}, err
	}
	if captain.ContestID != contestID {
		return domain.Team{}, domain.ErrParticipantNotFound
	}
	if captain.TeamID != nil {
		return domain.Team{}, domain.ErrAlreadyInTeam
	}
	if _, exists, err := s.store.FindTeamByName(ctx, contestID, name); err != nil {
		return domain.Team{}, err
	} else if exists {
		return domain.Team{}, domain.ErrDuplicateTeamName
	}

	if role == "" {
		role = domain.TeamRoleBoth
	}
	if err := validateRoleMode(contest.Settings.Teams.RoleMode, nil, role); err != nil {
		return domain.Team{}, err
	}

	team := domain.Team{
		ID:        uuid.New(),
		ContestID: contestID,
		Name:      name,
		CaptainID: captainID,
		MaxSize:   contest.Settings.Teams.MaxTeamSize,
		Members: []domain.TeamMember{{
			ParticipantID: captainID,
			Nickname:      captain.Nickname,
			Role:          role,
			JoinedAt:      s.clock.Now(),
		}},
		Active:    true,
		CreatedAt: s.clock.Now(),
	}
	if err := s.store.CreateTeam(ctx, &team); err != nil {
		return domain.Team{}, err
	}
	if err := s.store.SetParticipantTeam(ctx, captainID, &team.ID, role); err != nil {
		return domain.Team{}, err
	}
	if err := s.store.AdjustContestCounts(ctx, contestID, 0, 1); err != nil {
		return domain.Team{}, err
	}

	s.sink.Broadcast(domain.ToAll(contestID, domain.EventTeamCreated, team))
	return team, nil
}

// JoinTeam adds a participant to an existing team, enforcing size and
// role-mode invariants.
func (s *ContestService) JoinTeam(ctx context.Context, teamID, participantID uuid.UUID, role domain.TeamRole) (domain.Team, error) {
	team, err := s.store.GetTeam(ctx, teamID)
	if err != nil {
		return domain.Team{}, err
	}
	if !team.Active {
		return domain.Team{}, domain.ErrTeamNotFound
	}
	contest, err := s.store.GetContest(ctx, team.ContestID)
	if err != nil {
		return domain.Team{}, err
	}
	if !contest.Settings.Teams.Enabled {
		return domain.Team{}, domain.ErrTeamsDisabled
	}

	participant, err := s.store.GetParticipant(ctx, participantID)
	if err != nil {
		return domain.Team{}, err
	}
	if participant.ContestID != team.ContestID {
		return domain.Team{}, domain.ErrParticipantNotFound
	}
	if participant.TeamID != nil {
		return domain.Team{}, domain.ErrAlreadyInTeam
	}
	if team.MaxSize > 0 && len(team.Members) >= team.MaxSize {
		return domain.Team{}, domain.ErrTeamFull
	}

	if role == "" {
		role = domain.TeamRoleBoth
	}
	if err := validateRoleMode(contest.Settings.Teams.RoleMode, team.Members, role); err != nil {
		return domain.Team{}, err
	}

	team.Members = append(team.Members, domain.TeamMember{
		ParticipantID: participantID,
		Nickname:      participant.Nickname,
		Role:          role,
		JoinedAt:      s.clock.Now(),
	})
	if err := s.store.UpdateTeam(ctx, &team); err != nil {
		return domain.Team{}, err
	}
	if err := s.store.SetParticipantTeam(ctx, participantID, &team.ID, role); err != nil {
		return domain.Team{}, err
	}

	s.sink.Broadcast(domain.ToAll(team.ContestID, domain.EventTeamMemberJoined, map[string]any{
		"teamId":        team.ID,
		"participantId": participantID,
		"nickname":      participant.Nickname,
		"role":          role,
	}))
	if err := s.UpdateTeamScores(ctx, team.ID); err != nil {
		s.log.Warn().Err(err).Str("team_id", team.ID.String()).Msg("team score refresh after join failed")
	}
	return team, nil
}

// LeaveTeam removes the participant from their team. A leaving captain
// hands captaincy to an arbitrary remaining member; the last member
// leaving marks the team inactive.
func (s *ContestService) LeaveTeam(ctx context.Context, participantID uuid.UUID) error {
	participant, err := s.store.GetParticipant(ctx, participantID)
	if err != nil {
		return err
	}
	if participant.TeamID == nil {
		return domain.ErrTeamNotFound
	}
	team, err := s.store.GetTeam(ctx, *participant.TeamID)
	if err != nil {
		return err
	}

	idx := team.MemberIndex(participantID)
	if idx < 0 {
		return domain.ErrTeamNotFound
	}
	team.Members = append(team.Members[:idx], team.Members[idx+1:]...)

	if len(team.Members) == 0 {
		team.Active = false
		if err := s.store.AdjustContestCounts(ctx, team.ContestID, 0, -1); err != nil {
			return err
		}
	} else if team.CaptainID == participantID {
		team.CaptainID = team.Members[0].ParticipantID
	}

	if err := s.store.UpdateTeam(ctx, &team); err != nil {
		return err
	}
	if err := s.store.SetParticipantTeam(ctx, participantID, nil, ""); err != nil {
		return err
	}

	s.sink.Broadcast(domain.ToAll(team.ContestID, domain.EventTeamMemberLeft, map[string]any{
		"teamId":        team.ID,
		"participantId": participantID,
		"newCaptainId":  team.CaptainID,
		"active":        team.Active,
	}))
	if team.Active {
		if err := s.UpdateTeamScores(ctx, team.ID); err != nil {
			s.log.Warn().Err(err).Str("team_id", team.ID.String()).Msg("team score refresh after leave failed")
		}
	}
	return nil
}

// TransferCaptain hands captaincy to another member. Current captain or
// the host may do this.
func (s *ContestService) TransferCaptain(ctx context.Context, teamID uuid.UUID, actorParticipantID, newCaptainID uuid.UUID, actorUserID string) error {
	team, err := s.store.GetTeam(ctx, teamID)
	if err != nil {
		return err
	}
	contest, err := s.store.GetContest(ctx, team.ContestID)
	if err != nil {
		return err
	}
	if team.CaptainID != actorParticipantID && contest.HostID != actorUserID {
		return domain.ErrNotAuthorized
	}
	if team.MemberIndex(newCaptainID) < 0 {
		return domain.ErrParticipantNotFound
	}
	team.CaptainID = newCaptainID
	if err := s.store.UpdateTeam(ctx, &team); err != nil {
		return err
	}
	s.sink.Broadcast(domain.ToTeam(team.ContestID, team.ID, domain.EventTeamRoleUpdated, map[string]any{
		"teamId":    team.ID,
		"captainId": newCaptainID,
	}))
	return nil
}

// UpdateMemberRole changes a member's role, re-validating the contest's
// role mode against the remaining members. The member themselves, the
// team captain or the host may do this.
func (s *ContestService) UpdateMemberRole(ctx context.Context, teamID, participantID uuid.UUID, role domain.TeamRole, actorParticipantID uuid.UUID, actorUserID string) error {
	team, err := s.store.GetTeam(ctx, teamID)
	if err != nil {
		return err
	}
	contest, err := s.store.GetContest(ctx, team.ContestID)
	if err != nil {
		return err
	}
	if actorParticipantID != participantID && team.CaptainID != actorParticipantID && contest.HostID != actorUserID {
		return domain.ErrNotAuthorized
	}

	idx := team.MemberIndex(participantID)
	if idx < 0 {
		return domain.ErrParticipantNotFound
	}
	others := make([]domain.TeamMember, 0, len(team.Members)-1)
	others = append(others, team.Members[:idx]...)
	others = append(others, team.Members[idx+1:]...)
	if err := validateRoleMode(contest.Settings.Teams.RoleMode, others, role); err != nil {
		return err
	}

	team.Members[idx].Role = role
	if err := s.store.UpdateTeam(ctx, &team); err != nil {
		return err
	}
	if err := s.store.SetParticipantTeam(ctx, participantID, &team.ID, role); err != nil {
		return err
	}
	s.sink.Broadcast(domain.ToTeam(team.ContestID, team.ID, domain.EventTeamRoleUpdated, map[string]any{
		"teamId":        team.ID,
		"participantId": participantID,
		"role":          role,
	}))
	return nil
}

// DisbandTeam dissolves a team, returning every member to teamless state.
// Captain or host only.
func (s *ContestService) DisbandTeam(ctx context.Context, teamID uuid.UUID, actorParticipantID uuid.UUID, actorUserID string) error {
	team, err := s.store.GetTeam(ctx, teamID)
	if err != nil {
		return err
	}
	contest, err := s.store.GetContest(ctx, team.ContestID)
	if err != nil {
		return err
	}
	if team.CaptainID != actorParticipantID && contest.HostID != actorUserID {
		return domain.ErrNotAuthorized
	}

	for _, member := range team.Members {
		if err := s.store.SetParticipantTeam(ctx, member.ParticipantID, nil, ""); err != nil {
			return err
		}
	}
	team.Members = nil
	team.Active = false
	if err := s.store.UpdateTeam(ctx, &team); err != nil {
		return err
	}
	if err := s.store.AdjustContestCounts(ctx, team.ContestID, 0, -1); err != nil {
		return err
	}
	s.sink.Broadcast(domain.ToAll(team.ContestID, domain.EventTeamDisbanded, map[string]any{"teamId": team.ID}))
	return nil
}

// UpdateTeamScores recomputes one team's aggregates from its members'
// cumulative totals. Pull-based: O(members), invoked after any scoring
// event that could change the team's standing.
func (s *ContestService) UpdateTeamScores(ctx context.Context, teamID uuid.UUID) error {
	team, err := s.store.GetTeam(ctx, teamID)
	if err != nil {
		return err
	}
	total, correct, wrong := 0, 0, 0
	for _, member := range team.Members {
		p, err := s.store.GetParticipant(ctx, member.ParticipantID)
		if err != nil {
			continue
		}
		total += p.TotalScore
		correct += p.CorrectCount
		wrong += p.WrongCount
	}
	team.TotalScore = total
	team.CorrectCount = correct
	team.WrongCount = wrong
	team.AverageScore = 0
	if len(team.Members) > 0 {
		team.AverageScore = float64(total) / float64(len(team.Members))
	}
	if err := s.store.UpdateTeam(ctx, &team); err != nil {
		return err
	}

	payload := map[string]any{
		"teamId":       team.ID,
		"totalScore":   team.TotalScore,
		"averageScore": team.AverageScore,
		"correctCount": team.CorrectCount,
		"wrongCount":   team.WrongCount,
	}
	s.sink.Broadcast(domain.ToTeam(team.ContestID, team.ID, domain.EventTeamScoreUpdated, payload))
	s.sink.Broadcast(domain.ToHost(team.ContestID, domain.EventTeamScoreUpdated, payload))
	return nil
}

// UpdateTeamRankings sorts active teams by score then correctness and
// assigns dense ranks. Explicit step, run at end-of-contest and on demand.
func (s *ContestService) UpdateTeamRankings(ctx context.Context, contestID uuid.UUID) error {
	contest, err := s.store.GetContest(ctx, contestID)
	if err != nil {
		return err
	}
	if !contest.Settings.Teams.Enabled {
		return domain.ErrTeamsDisabled
	}
	teams, err := s.store.ListTeams(ctx, contestID)
	if err != nil {
		return err
	}

	active := teams[:0]
	for _, t := range teams {
		if t.Active {
			active = append(active, t)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		if active[i].TotalScore != active[j].TotalScore {
			return active[i].TotalScore > active[j].TotalScore
		}
		return active[i].CorrectCount > active[j].CorrectCount
	})

	rank := 0
	for i := range active {
		if i == 0 || active[i].TotalScore != active[i-1].TotalScore || active[i].CorrectCount != active[i-1].CorrectCount {
			rank++
		}
		active[i].Rank = rank
		if err := s.store.UpdateTeam(ctx, &active[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateRoleMode checks a candidate role against the existing members
// under the contest's role mode. Split view allows at most one viewer and
// one submitter; the combined role is not available in that mode.
func validateRoleMode(mode domain.TeamRoleMode, members []domain.TeamMember, role domain.TeamRole) error {
	if mode != domain.TeamRoleModeSplitView {
		return nil
	}
	if role == domain.TeamRoleBoth {
		return domain.ErrRoleModeViolation
	}
	for _, m := range members {
		if m.Role == role {
			return domain.ErrRoleModeViolation
		}
	}
	return nil
}
