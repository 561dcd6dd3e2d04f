package app_test

import (
	"context"
	"testing"

	"arena-contest-service/internal/domain"
	"github.com/google/uuid"
)

func teamSettings() domain.ContestSettings {
	settings := defaultSettings()
	settings.Teams = domain.TeamRules{Enabled: true, MaxTeamSize: 3}
	return settings
}

func TestCreateTeamMakesCreatorCaptain(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	contest := env.createContest(t, teamSettings())
	alice := env.join(t, contest, "", "Alice")

	team, err := env.service.CreateTeam(ctx, contest.ID, alice.ID, "Falcons", "")
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	if team.CaptainID != alice.ID || len(team.Members) != 1 {
		t.Fatalf("expected creator as sole captain, got %+v", team)
	}

	updated, _ := env.store.GetParticipant(ctx, alice.ID)
	if updated.TeamID == nil || *updated.TeamID != team.ID {
		t.Fatal("participant not linked to team")
	}
	current, _ := env.store.GetContest(ctx, contest.ID)
	if current.TeamCount != 1 {
		t.Fatalf("expected team count 1, got %d", current.TeamCount)
	}
}

func TestCreateTeamRejectsDuplicateNameCaseInsensitive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	contest := env.createContest(t, teamSettings())
	alice := env.join(t, contest, "", "Alice")
	bob := env.join(t, contest, "", "Bob")

	if _, err := env.service.CreateTeam(ctx, contest.ID, alice.ID, "Falcons", ""); err != nil {
		t.Fatalf("create team: %v", err)
	}
	if _, err := env.service.CreateTeam(ctx, contest.ID, bob.ID, "fAlCoNs", ""); err != domain.ErrDuplicateTeamName {
		t.Fatalf("expected duplicate name rejection, got %v", err)
	}
}

func TestJoinTeamEnforcesSizeAndMembership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	settings := defaultSettings()
	settings.Teams = domain.TeamRules{Enabled: true, MaxTeamSize: 2}
	contest := env.createContest(t, settings)
	alice := env.join(t, contest, "", "Alice")
	bob := env.join(t, contest, "", "Bob")
	carol := env.join(t, contest, "", "Carol")

	team, _ := env.service.CreateTeam(ctx, contest.ID, alice.ID, "Falcons", "")
	if _, err := env.service.JoinTeam(ctx, team.ID, bob.ID, ""); err != nil {
		t.Fatalf("join team: %v", err)
	}
	if _, err := env.service.JoinTeam(ctx, team.ID, carol.ID, ""); err != domain.ErrTeamFull {
		t.Fatalf("expected team full, got %v", err)
	}
	if _, err := env.service.JoinTeam(ctx, team.ID, bob.ID, ""); err != domain.ErrAlreadyInTeam {
		t.Fatalf("expected already-in-team rejection, got %v", err)
	}
}

func TestTeamAggregatesRecomputeFromMembers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	contest := env.createContest(t, teamSettings())
	question := env.addQuestion(t, contest, domain.Question{Prompt: "q", CorrectAnswers: []string{"a"}})
	alice := env.join(t, contest, "", "Alice")
	bob := env.join(t, contest, "", "Bob")
	team, _ := env.service.CreateTeam(ctx, contest.ID, alice.ID, "Falcons", "")
	if _, err := env.service.JoinTeam(ctx, team.ID, bob.ID, ""); err != nil {
		t.Fatalf("join team: %v", err)
	}

	_ = env.service.StartContest(ctx, contest.ID, hostID)
	env.advanceToQuestion(t, contest)

	if _, err := env.service.Submit(ctx, contest.ID, question.ID, alice.ID, []string{"a"}, 30_000); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := env.service.Submit(ctx, contest.ID, question.ID, bob.ID, []string{"b"}, 30_000); err != nil {
		t.Fatalf("submit: %v", err)
	}

	updated, _ := env.store.GetTeam(ctx, team.ID)
	if updated.TotalScore != 125 {
		t.Fatalf("expected team total 125, got %d", updated.TotalScore)
	}
	if updated.AverageScore != 62.5 {
		t.Fatalf("expected average 62.5, got %v", updated.AverageScore)
	}
	if updated.CorrectCount != 1 || updated.WrongCount != 1 {
		t.Fatalf("expected 1 correct / 1 wrong, got %d/%d", updated.CorrectCount, updated.WrongCount)
	}
}

func TestLeaveTeamHandsOffCaptaincy(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	contest := env.createContest(t, teamSettings())
	alice := env.join(t, contest, "", "Alice")
	bob := env.join(t, contest, "", "Bob")
	team, _ := env.service.CreateTeam(ctx, contest.ID, alice.ID, "Falcons", "")
	_, _ = env.service.JoinTeam(ctx, team.ID, bob.ID, "")

	if err := env.service.LeaveTeam(ctx, alice.ID); err != nil {
		t.Fatalf("leave team: %v", err)
	}
	updated, _ := env.store.GetTeam(ctx, team.ID)
	if updated.CaptainID != bob.ID {
		t.Fatal("expected captaincy handed to remaining member")
	}

	if err := env.service.LeaveTeam(ctx, bob.ID); err != nil {
		t.Fatalf("leave team: %v", err)
	}
	updated, _ = env.store.GetTeam(ctx, team.ID)
	if updated.Active {
		t.Fatal("expected empty team to become inactive")
	}
	current, _ := env.store.GetContest(ctx, contest.ID)
	if current.TeamCount != 0 {
		t.Fatalf("expected team count back to 0, got %d", current.TeamCount)
	}

	// The freed name can be reused.
	carol := env.join(t, contest, "", "Carol")
	if _, err := env.service.CreateTeam(ctx, contest.ID, carol.ID, "Falcons", ""); err != nil {
		t.Fatalf("expected freed name to be reusable, got %v", err)
	}
}

func TestTransferCaptainAuthorization(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	contest := env.createContest(t, teamSettings())
	alice := env.join(t, contest, "", "Alice")
	bob := env.join(t, contest, "", "Bob")
	team, _ := env.service.CreateTeam(ctx, contest.ID, alice.ID, "Falcons", "")
	_, _ = env.service.JoinTeam(ctx, team.ID, bob.ID, "")

	if err := env.service.TransferCaptain(ctx, team.ID, bob.ID, bob.ID, ""); err != domain.ErrNotAuthorized {
		t.Fatalf("expected non-captain transfer rejection, got %v", err)
	}
	// The host may force a transfer.
	if err := env.service.TransferCaptain(ctx, team.ID, uuid.Nil, bob.ID, hostID); err != nil {
		t.Fatalf("host transfer failed: %v", err)
	}
	updated, _ := env.store.GetTeam(ctx, team.ID)
	if updated.CaptainID != bob.ID {
		t.Fatal("captaincy not transferred")
	}
}

func TestDisbandTeamFreesAllMembers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	contest := env.createContest(t, teamSettings())
	alice := env.join(t, contest, "", "Alice")
	bob := env.join(t, contest, "", "Bob")
	team, _ := env.service.CreateTeam(ctx, contest.ID, alice.ID, "Falcons", "")
	_, _ = env.service.JoinTeam(ctx, team.ID, bob.ID, "")

	if err := env.service.DisbandTeam(ctx, team.ID, bob.ID, ""); err != domain.ErrNotAuthorized {
		t.Fatalf("expected non-captain disband rejection, got %v", err)
	}
	if err := env.service.DisbandTeam(ctx, team.ID, alice.ID, ""); err != nil {
		t.Fatalf("disband failed: %v", err)
	}

	for _, id := range []uuid.UUID{alice.ID, bob.ID} {
		p, _ := env.store.GetParticipant(ctx, id)
		if p.TeamID != nil {
			t.Fatal("expected member freed from team")
		}
	}
	updated, _ := env.store.GetTeam(ctx, team.ID)
	if updated.Active {
		t.Fatal("expected disbanded team inactive")
	}
}

func TestSplitViewRoleConstraints(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	settings := defaultSettings()
	settings.Teams = domain.TeamRules{Enabled: true, MaxTeamSize: 4, RoleMode: domain.TeamRoleModeSplitView}
	contest := env.createContest(t, settings)
	alice := env.join(t, contest, "", "Alice")
	bob := env.join(t, contest, "", "Bob")
	carol := env.join(t, contest, "", "Carol")

	if _, err := env.service.CreateTeam(ctx, contest.ID, alice.ID, "Owls", domain.TeamRoleBoth); err != domain.ErrRoleModeViolation {
		t.Fatalf("expected combined role rejection, got %v", err)
	}
	team, err := env.service.CreateTeam(ctx, contest.ID, alice.ID, "Owls", domain.TeamRoleViewer)
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	if _, err := env.service.JoinTeam(ctx, team.ID, bob.ID, domain.TeamRoleViewer); err != domain.ErrRoleModeViolation {
		t.Fatalf("expected second viewer rejection, got %v", err)
	}
	if _, err := env.service.JoinTeam(ctx, team.ID, bob.ID, domain.TeamRoleSubmitter); err != nil {
		t.Fatalf("join as submitter: %v", err)
	}
	if _, err := env.service.JoinTeam(ctx, team.ID, carol.ID, domain.TeamRoleSubmitter); err != domain.ErrRoleModeViolation {
		t.Fatalf("expected second submitter rejection, got %v", err)
	}

	// Swapping roles via update is allowed when the slot is free.
	if err := env.service.UpdateMemberRole(ctx, team.ID, alice.ID, domain.TeamRoleSubmitter, alice.ID, ""); err != domain.ErrRoleModeViolation {
		t.Fatalf("expected occupied slot rejection, got %v", err)
	}
}

func TestUpdateMemberRoleAuthorization(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	contest := env.createContest(t, teamSettings())
	alice := env.join(t, contest, "", "Alice")
	bob := env.join(t, contest, "", "Bob")
	carol := env.join(t, contest, "", "Carol")
	team, _ := env.service.CreateTeam(ctx, contest.ID, alice.ID, "Falcons", "")
	_, _ = env.service.JoinTeam(ctx, team.ID, bob.ID, "")

	// An anonymous connection carries neither a participant nor a user id.
	if err := env.service.UpdateMemberRole(ctx, team.ID, alice.ID, domain.TeamRoleViewer, uuid.Nil, ""); err != domain.ErrNotAuthorized {
		t.Fatalf("expected anonymous rejection, got %v", err)
	}
	updated, _ := env.store.GetTeam(ctx, team.ID)
	if updated.Members[updated.MemberIndex(alice.ID)].Role == domain.TeamRoleViewer {
		t.Fatal("role changed despite rejection")
	}

	// Neither may a participant outside the team touch its members.
	if err := env.service.UpdateMemberRole(ctx, team.ID, bob.ID, domain.TeamRoleViewer, carol.ID, ""); err != domain.ErrNotAuthorized {
		t.Fatalf("expected outsider rejection, got %v", err)
	}

	// Self, captain and host are each allowed.
	if err := env.service.UpdateMemberRole(ctx, team.ID, bob.ID, domain.TeamRoleViewer, bob.ID, ""); err != nil {
		t.Fatalf("self update: %v", err)
	}
	if err := env.service.UpdateMemberRole(ctx, team.ID, bob.ID, domain.TeamRoleSubmitter, alice.ID, ""); err != nil {
		t.Fatalf("captain update: %v", err)
	}
	if err := env.service.UpdateMemberRole(ctx, team.ID, bob.ID, domain.TeamRoleViewer, uuid.Nil, hostID); err != nil {
		t.Fatalf("host update: %v", err)
	}
}

func TestTeamRankingsAreDense(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	contest := env.createContest(t, teamSettings())

	names := []string{"Alpha", "Beta", "Gamma", "Delta"}
	scores := []int{300, 300, 200, 100}
	teams := make([]domain.Team, len(names))
	for i, name := range names {
		p := env.join(t, contest, "", name+"-captain")
		team, err := env.service.CreateTeam(ctx, contest.ID, p.ID, name, "")
		if err != nil {
			t.Fatalf("create team %s: %v", name, err)
		}
		team.TotalScore = scores[i]
		team.CorrectCount = 1
		if err := env.store.UpdateTeam(ctx, &team); err != nil {
			t.Fatalf("seed team score: %v", err)
		}
		teams[i] = team
	}

	if err := env.service.UpdateTeamRankings(ctx, contest.ID); err != nil {
		t.Fatalf("rank teams: %v", err)
	}

	wantRanks := map[string]int{"Alpha": 1, "Beta": 1, "Gamma": 2, "Delta": 3}
	for _, team := range teams {
		updated, _ := env.store.GetTeam(ctx, team.ID)
		if updated.Rank != wantRanks[updated.Name] {
			t.Fatalf("team %s: expected dense rank %d, got %d", updated.Name, wantRanks[updated.Name], updated.Rank)
		}
	}
}
