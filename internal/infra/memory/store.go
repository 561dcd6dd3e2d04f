package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"arena-contest-service/internal/domain"
	"github.com/google/uuid"
)

// Store is an in-memory implementation of app.Store, used for dev mode and
// unit tests. A single mutex guards all maps, which also makes the
// submission insert an atomic check-and-insert the way the Postgres
// unique constraint does.
type Store struct {
	mu           sync.RWMutex
	contests     map[uuid.UUID]*domain.Contest
	questions    map[uuid.UUID]*domain.Question
	participants map[uuid.UUID]*domain.Participant
	submissions  map[uuid.UUID]*domain.Submission
	submissionBy map[string]uuid.UUID // questionID|participantID -> submission id
	teams        map[uuid.UUID]*domain.Team
	referees     map[string]*domain.Referee // contestID|userID
}

func NewStore() *Store {
	return &Store{
		contests:     make(map[uuid.UUID]*domain.Contest),
		questions:    make(map[uuid.UUID]*domain.Question),
		participants: make(map[uuid.UUID]*domain.Participant),
		submissions:  make(map[uuid.UUID]*domain.Submission),
		submissionBy: make(map[string]uuid.UUID),
		teams:        make(map[uuid.UUID]*domain.Team),
		referees:     make(map[string]*domain.Referee),
	}
}

func submissionKey(questionID, participantID uuid.UUID) string {
	return questionID.String() + "|" + participantID.String()
}

func refereeKey(contestID uuid.UUID, userID string) string {
	return contestID.String() + "|" + userID
}

func (s *Store) CreateContest(_ context.Context, contest *domain.Contest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *contest
	s.contests[contest.ID] = &copied
	return nil
}

func (s *Store) GetContest(_ context.Context, id uuid.UUID) (domain.Contest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	contest, ok := s.contests[id]
	if !ok {
		return domain.Contest{}, domain.ErrContestNotFound
	}
	return *contest, nil
}

func (s *Store) GetContestByJoinCode(_ context.Context, code string) (domain.Contest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, contest := range s.contests {
		if contest.JoinCode == code {
			return *contest, nil
		}
	}
	return domain.Contest{}, domain.ErrContestNotFound
}

func (s *Store) UpdateContestState(_ context.Context, id uuid.UUID, status domain.Status, phase domain.Phase, questionIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	contest, ok := s.contests[id]
	if !ok {
		return domain.ErrContestNotFound
	}
	contest.Status = status
	contest.Phase = phase
	contest.CurrentQuestionIndex = questionIndex
	return nil
}

func (s *Store) SetContestEnded(_ context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	contest, ok := s.contests[id]
	if !ok {
		return domain.ErrContestNotFound
	}
	contest.EndedAt = at
	return nil
}

func (s *Store) AdjustContestCounts(_ context.Context, id uuid.UUID, participantDelta, teamDelta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	contest, ok := s.contests[id]
	if !ok {
		return domain.ErrContestNotFound
	}
	contest.ParticipantCount += participantDelta
	contest.TeamCount += teamDelta
	return nil
}

func (s *Store) SaveTimerSnapshot(_ context.Context, contestID uuid.UUID, state domain.TimerState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	contest, ok := s.contests[contestID]
	if !ok {
		return domain.ErrContestNotFound
	}
	contest.Timer = state
	return nil
}

func (s *Store) AddQuestion(_ context.Context, question *domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	contest, ok := s.contests[question.ContestID]
	if !ok {
		return domain.ErrContestNotFound
	}
	question.Order = contest.QuestionCount
	contest.QuestionCount++
	copied := *question
	s.questions[question.ID] = &copied
	return nil
}

func (s *Store) GetQuestion(_ context.Context, id uuid.UUID) (domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	question, ok := s.questions[id]
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return *question, nil
}

func (s *Store) GetQuestionByIndex(_ context.Context, contestID uuid.UUID, index int) (domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, question := range s.questions {
		if question.ContestID == contestID && question.Order == index {
			return *question, nil
		}
	}
	return domain.Question{}, domain.ErrQuestionNotFound
}

func (s *Store) UpdateQuestionStatus(_ context.Context, id uuid.UUID, status domain.QuestionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	question, ok := s.questions[id]
	if !ok {
		return domain.ErrQuestionNotFound
	}
	question.Status = status
	return nil
}

// LoadQuestions returns the contest's full ordered sequence; it satisfies
// the question bank loader interface.
func (s *Store) LoadQuestions(_ context.Context, contestID uuid.UUID) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.contests[contestID]; !ok {
		return nil, domain.ErrContestNotFound
	}
	var questions []domain.Question
	for _, question := range s.questions {
		if question.ContestID == contestID {
			questions = append(questions, *question)
		}
	}
	for i := range questions {
		for j := i + 1; j < len(questions); j++ {
			if questions[j].Order < questions[i].Order {
				questions[i], questions[j] = questions[j], questions[i]
			}
		}
	}
	return questions, nil
}

func (s *Store) CreateParticipant(_ context.Context, participant *domain.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *participant
	s.participants[participant.ID] = &copied
	return nil
}

func (s *Store) GetParticipant(_ context.Context, id uuid.UUID) (domain.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	participant, ok := s.participants[id]
	if !ok {
		return domain.Participant{}, domain.ErrParticipantNotFound
	}
	return *participant, nil
}

func (s *Store) FindParticipant(_ context.Context, contestID uuid.UUID, userID, nickname string) (domain.Participant, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, participant := range s.participants {
		if participant.ContestID != contestID {
			continue
		}
		if userID != "" && participant.UserID == userID {
			return *participant, true, nil
		}
		if userID == "" && strings.EqualFold(participant.Nickname, nickname) {
			return *participant, true, nil
		}
	}
	return domain.Participant{}, false, nil
}

func (s *Store) ListParticipants(_ context.Context, contestID uuid.UUID) ([]domain.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var participants []domain.Participant
	for _, participant := range s.participants {
		if participant.ContestID == contestID {
			participants = append(participants, *participant)
		}
	}
	return participants, nil
}

func (s *Store) SetParticipantOnline(_ context.Context, id uuid.UUID, online bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	participant, ok := s.participants[id]
	if !ok {
		return domain.ErrParticipantNotFound
	}
	participant.Online = online
	return nil
}

func (s *Store) SetParticipantTeam(_ context.Context, id uuid.UUID, teamID *uuid.UUID, role domain.TeamRole) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	participant, ok := s.participants[id]
	if !ok {
		return domain.ErrParticipantNotFound
	}
	participant.TeamID = teamID
	participant.TeamRole = role
	return nil
}

func (s *Store) IncrementScore(_ context.Context, id uuid.UUID, deltaPoints, deltaCorrect, deltaWrong int) (domain.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	participant, ok := s.participants[id]
	if !ok {
		return domain.Participant{}, domain.ErrParticipantNotFound
	}
	participant.TotalScore += deltaPoints
	participant.CorrectCount += deltaCorrect
	participant.WrongCount += deltaWrong
	return *participant, nil
}

func (s *Store) SaveParticipantRanks(_ context.Context, contestID uuid.UUID, ranks map[uuid.UUID]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, rank := range ranks {
		if participant, ok := s.participants[id]; ok && participant.ContestID == contestID {
			participant.Rank = rank
		}
	}
	return nil
}

func (s *Store) InsertSubmission(_ context.Context, submission *domain.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := submissionKey(submission.QuestionID, submission.ParticipantID)
	if _, exists := s.submissionBy[key]; exists {
		return domain.ErrAlreadySubmitted
	}
	copied := *submission
	s.submissions[submission.ID] = &copied
	s.submissionBy[key] = submission.ID
	return nil
}

func (s *Store) GetSubmission(_ context.Context, id uuid.UUID) (domain.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	submission, ok := s.submissions[id]
	if !ok {
		return domain.Submission{}, domain.ErrSubmissionNotFound
	}
	return *submission, nil
}

func (s *Store) FindSubmission(_ context.Context, questionID, participantID uuid.UUID) (domain.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.submissionBy[submissionKey(questionID, participantID)]
	if !ok {
		return domain.Submission{}, domain.ErrSubmissionNotFound
	}
	return *s.submissions[id], nil
}

func (s *Store) UpdateSubmissionScore(_ context.Context, id uuid.UUID, points int, correct bool, override domain.ScoreOverride) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	submission, ok := s.submissions[id]
	if !ok {
		return domain.ErrSubmissionNotFound
	}
	submission.Points = points
	submission.Correct = correct
	submission.Override = &override
	return nil
}

func (s *Store) CreateTeam(_ context.Context, team *domain.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.teams {
		if existing.ContestID == team.ContestID && existing.Active && strings.EqualFold(existing.Name, team.Name) {
			return domain.ErrDuplicateTeamName
		}
	}
	copied := *team
	copied.Members = append([]domain.TeamMember(nil), team.Members...)
	s.teams[team.ID] = &copied
	return nil
}

func (s *Store) GetTeam(_ context.Context, id uuid.UUID) (domain.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	team, ok := s.teams[id]
	if !ok {
		return domain.Team{}, domain.ErrTeamNotFound
	}
	copied := *team
	copied.Members = append([]domain.TeamMember(nil), team.Members...)
	return copied, nil
}

func (s *Store) FindTeamByName(_ context.Context, contestID uuid.UUID, name string) (domain.Team, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, team := range s.teams {
		if team.ContestID == contestID && team.Active && strings.EqualFold(team.Name, name) {
			copied := *team
			copied.Members = append([]domain.TeamMember(nil), team.Members...)
			return copied, true, nil
		}
	}
	return domain.Team{}, false, nil
}

func (s *Store) UpdateTeam(_ context.Context, team *domain.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.teams[team.ID]; !ok {
		return domain.ErrTeamNotFound
	}
	copied := *team
	copied.Members = append([]domain.TeamMember(nil), team.Members...)
	s.teams[team.ID] = &copied
	return nil
}

func (s *Store) ListTeams(_ context.Context, contestID uuid.UUID) ([]domain.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var teams []domain.Team
	for _, team := range s.teams {
		if team.ContestID == contestID {
			copied := *team
			copied.Members = append([]domain.TeamMember(nil), team.Members...)
			teams = append(teams, copied)
		}
	}
	return teams, nil
}

func (s *Store) AddReferee(_ context.Context, referee *domain.Referee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *referee
	s.referees[refereeKey(referee.ContestID, referee.UserID)] = &copied
	return nil
}

func (s *Store) RemoveReferee(_ context.Context, contestID uuid.UUID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := refereeKey(contestID, userID)
	if _, ok := s.referees[key]; !ok {
		return domain.ErrRefereeNotFound
	}
	delete(s.referees, key)
	return nil
}

func (s *Store) GetReferee(_ context.Context, contestID uuid.UUID, userID string) (domain.Referee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	referee, ok := s.referees[refereeKey(contestID, userID)]
	if !ok {
		return domain.Referee{}, domain.ErrRefereeNotFound
	}
	return *referee, nil
}

func (s *Store) ListReferees(_ context.Context, contestID uuid.UUID) ([]domain.Referee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var referees []domain.Referee
	for _, referee := range s.referees {
		if referee.ContestID == contestID {
			referees = append(referees, *referee)
		}
	}
	return referees, nil
}

func (s *Store) SetRefereeOnline(_ context.Context, contestID uuid.UUID, userID string, online bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	referee, ok := s.referees[refereeKey(contestID, userID)]
	if !ok {
		return domain.ErrRefereeNotFound
	}
	referee.Online = online
	return nil
}
