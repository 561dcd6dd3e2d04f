package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"arena-contest-service/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// uniqueViolation is the SQLSTATE for a unique-constraint failure.
const uniqueViolation = "23505"

// Store is the pgx-backed implementation of app.Store. The submission
// uniqueness invariant lives in the submissions table's unique constraint;
// participant totals are mutated with in-place increments, never
// read-modify-write.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (s *Store) CreateContest(ctx context.Context, contest *domain.Contest) error {
	timer, err := json.Marshal(contest.Timer)
	if err != nil {
		return fmt.Errorf("marshal timer: %w", err)
	}
	settings, err := json.Marshal(contest.Settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO contests (id, host_id, title, join_code, status, phase, current_question_index, timer, settings, participant_count, team_count, question_count, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		contest.ID, contest.HostID, contest.Title, contest.JoinCode, contest.Status, contest.Phase,
		contest.CurrentQuestionIndex, timer, settings, contest.ParticipantCount, contest.TeamCount,
		contest.QuestionCount, contest.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert contest: %w", err)
	}
	return nil
}

const contestColumns = `id, host_id, title, join_code, status, phase, current_question_index, timer, settings, participant_count, team_count, question_count, created_at, ended_at`

func (s *Store) scanContest(row pgx.Row) (domain.Contest, error) {
	var (
		contest  domain.Contest
		timer    []byte
		settings []byte
		endedAt  *time.Time
	)
	err := row.Scan(&contest.ID, &contest.HostID, &contest.Title, &contest.JoinCode, &contest.Status,
		&contest.Phase, &contest.CurrentQuestionIndex, &timer, &settings, &contest.ParticipantCount,
		&contest.TeamCount, &contest.QuestionCount, &contest.CreatedAt, &endedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Contest{}, domain.ErrContestNotFound
		}
		return domain.Contest{}, fmt.Errorf("scan contest: %w", err)
	}
	if err := json.Unmarshal(timer, &contest.Timer); err != nil {
		return domain.Contest{}, fmt.Errorf("unmarshal timer: %w", err)
	}
	if err := json.Unmarshal(settings, &contest.Settings); err != nil {
		return domain.Contest{}, fmt.Errorf("unmarshal settings: %w", err)
	}
	if endedAt != nil {
		contest.EndedAt = *endedAt
	}
	return contest, nil
}

func (s *Store) GetContest(ctx context.Context, id uuid.UUID) (domain.Contest, error) {
	return s.scanContest(s.pool.QueryRow(ctx, `SELECT `+contestColumns+` FROM contests WHERE id=$1`, id))
}

func (s *Store) GetContestByJoinCode(ctx context.Context, code string) (domain.Contest, error) {
	return s.scanContest(s.pool.QueryRow(ctx, `SELECT `+contestColumns+` FROM contests WHERE join_code=$1`, code))
}

func (s *Store) UpdateContestState(ctx context.Context, id uuid.UUID, status domain.Status, phase domain.Phase, questionIndex int) error {
	tag, err := s.pool.Exec(ctx, `UPDATE contests SET status=$2, phase=$3, current_question_index=$4 WHERE id=$1`,
		id, status, phase, questionIndex)
	if err != nil {
		return fmt.Errorf("update contest state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrContestNotFound
	}
	return nil
}

func (s *Store) SetContestEnded(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := s.pool.Exec(ctx, `UPDATE contests SET ended_at=$2 WHERE id=$1`, id, at)
	if err != nil {
		return fmt.Errorf("set contest ended: %w", err)
	}
	return nil
}

func (s *Store) AdjustContestCounts(ctx context.Context, id uuid.UUID, participantDelta, teamDelta int) error {
	_, err := s.pool.Exec(ctx, `UPDATE contests SET participant_count=participant_count+$2, team_count=team_count+$3 WHERE id=$1`,
		id, participantDelta, teamDelta)
	if err != nil {
		return fmt.Errorf("adjust contest counts: %w", err)
	}
	return nil
}

func (s *Store) SaveTimerSnapshot(ctx context.Context, contestID uuid.UUID, state domain.TimerState) error {
	timer, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal timer: %w", err)
	}
	_, err = s.pool.Exec(ctx, `UPDATE contests SET timer=$2 WHERE id=$1`, contestID, timer)
	if err != nil {
		return fmt.Errorf("save timer snapshot: %w", err)
	}
	return nil
}

func (s *Store) AddQuestion(ctx context.Context, question *domain.Question) error {
	options, err := json.Marshal(question.Options)
	if err != nil {
		return fmt.Errorf("marshal options: %w", err)
	}
	answers, err := json.Marshal(question.CorrectAnswers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO questions (id, contest_id, ord, prompt, options, correct_answers, multi_select, explanation, time_limit_sec, points, status)
		VALUES ($1, $2, (SELECT COALESCE(MAX(ord)+1, 0) FROM questions WHERE contest_id=$2), $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ord`,
		question.ID, question.ContestID, question.Prompt, options, answers, question.MultiSelect,
		question.Explanation, question.TimeLimitSec, question.Points, question.Status).Scan(&question.Order)
	if err != nil {
		return fmt.Errorf("insert question: %w", err)
	}
	if _, err := tx.Exec(ctx, `UPDATE contests SET question_count=question_count+1 WHERE id=$1`, question.ContestID); err != nil {
		return fmt.Errorf("bump question count: %w", err)
	}
	return tx.Commit(ctx)
}

const questionColumns = `id, contest_id, ord, prompt, options, correct_answers, multi_select, explanation, time_limit_sec, points, status`

func scanQuestion(row pgx.Row) (domain.Question, error) {
	var (
		question domain.Question
		options  []byte
		answers  []byte
	)
	err := row.Scan(&question.ID, &question.ContestID, &question.Order, &question.Prompt, &options,
		&answers, &question.MultiSelect, &question.Explanation, &question.TimeLimitSec,
		&question.Points, &question.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Question{}, domain.ErrQuestionNotFound
		}
		return domain.Question{}, fmt.Errorf("scan question: %w", err)
	}
	if err := json.Unmarshal(options, &question.Options); err != nil {
		return domain.Question{}, fmt.Errorf("unmarshal options: %w", err)
	}
	if err := json.Unmarshal(answers, &question.CorrectAnswers); err != nil {
		return domain.Question{}, fmt.Errorf("unmarshal answers: %w", err)
	}
	return question, nil
}

func (s *Store) GetQuestion(ctx context.Context, id uuid.UUID) (domain.Question, error) {
	return scanQuestion(s.pool.QueryRow(ctx, `SELECT `+questionColumns+` FROM questions WHERE id=$1`, id))
}

func (s *Store) GetQuestionByIndex(ctx context.Context, contestID uuid.UUID, index int) (domain.Question, error) {
	return scanQuestion(s.pool.QueryRow(ctx, `SELECT `+questionColumns+` FROM questions WHERE contest_id=$1 AND ord=$2`, contestID, index))
}

func (s *Store) UpdateQuestionStatus(ctx context.Context, id uuid.UUID, status domain.QuestionStatus) error {
	tag, err := s.pool.Exec(ctx, `UPDATE questions SET status=$2 WHERE id=$1`, id, status)
	if err != nil {
		return fmt.Errorf("update question status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuestionNotFound
	}
	return nil
}

// LoadQuestions satisfies the question bank loader interface.
func (s *Store) LoadQuestions(ctx context.Context, contestID uuid.UUID) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+questionColumns+` FROM questions WHERE contest_id=$1 ORDER BY ord`, contestID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		question, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, question)
	}
	return questions, rows.Err()
}

func (s *Store) CreateParticipant(ctx context.Context, participant *domain.Participant) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO participants (id, contest_id, user_id, nickname, team_id, team_role, total_score, correct_count, wrong_count, rank, online, joined_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		participant.ID, participant.ContestID, participant.UserID, participant.Nickname,
		participant.TeamID, participant.TeamRole, participant.TotalScore, participant.CorrectCount,
		participant.WrongCount, participant.Rank, participant.Online, participant.JoinedAt)
	if err != nil {
		return fmt.Errorf("insert participant: %w", err)
	}
	return nil
}

const participantColumns = `id, contest_id, user_id, nickname, team_id, team_role, total_score, correct_count, wrong_count, rank, online, joined_at`

func scanParticipant(row pgx.Row) (domain.Participant, error) {
	var participant domain.Participant
	err := row.Scan(&participant.ID, &participant.ContestID, &participant.UserID, &participant.Nickname,
		&participant.TeamID, &participant.TeamRole, &participant.TotalScore, &participant.CorrectCount,
		&participant.WrongCount, &participant.Rank, &participant.Online, &participant.JoinedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Participant{}, domain.ErrParticipantNotFound
		}
		return domain.Participant{}, fmt.Errorf("scan participant: %w", err)
	}
	return participant, nil
}

func (s *Store) GetParticipant(ctx context.Context, id uuid.UUID) (domain.Participant, error) {
	return scanParticipant(s.pool.QueryRow(ctx, `SELECT `+participantColumns+` FROM participants WHERE id=$1`, id))
}

func (s *Store) FindParticipant(ctx context.Context, contestID uuid.UUID, userID, nickname string) (domain.Participant, bool, error) {
	var row pgx.Row
	if userID != "" {
		row = s.pool.QueryRow(ctx, `SELECT `+participantColumns+` FROM participants WHERE contest_id=$1 AND user_id=$2`, contestID, userID)
	} else {
		row = s.pool.QueryRow(ctx, `SELECT `+participantColumns+` FROM participants WHERE contest_id=$1 AND user_id='' AND lower(nickname)=lower($2)`, contestID, nickname)
	}
	participant, err := scanParticipant(row)
	if err != nil {
		if errors.Is(err, domain.ErrParticipantNotFound) {
			return domain.Participant{}, false, nil
		}
		return domain.Participant{}, false, err
	}
	return participant, true, nil
}

func (s *Store) ListParticipants(ctx context.Context, contestID uuid.UUID) ([]domain.Participant, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+participantColumns+` FROM participants WHERE contest_id=$1`, contestID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var participants []domain.Participant
	for rows.Next() {
		participant, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		participants = append(participants, participant)
	}
	return participants, rows.Err()
}

func (s *Store) SetParticipantOnline(ctx context.Context, id uuid.UUID, online bool) error {
	tag, err := s.pool.Exec(ctx, `UPDATE participants SET online=$2 WHERE id=$1`, id, online)
	if err != nil {
		return fmt.Errorf("set participant online: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrParticipantNotFound
	}
	return nil
}

func (s *Store) SetParticipantTeam(ctx context.Context, id uuid.UUID, teamID *uuid.UUID, role domain.TeamRole) error {
	tag, err := s.pool.Exec(ctx, `UPDATE participants SET team_id=$2, team_role=$3 WHERE id=$1`, id, teamID, role)
	if err != nil {
		return fmt.Errorf("set participant team: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrParticipantNotFound
	}
	return nil
}

// IncrementScore applies the deltas atomically in the database and returns
// the updated row.
func (s *Store) IncrementScore(ctx context.Context, id uuid.UUID, deltaPoints, deltaCorrect, deltaWrong int) (domain.Participant, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE participants
		SET total_score=total_score+$2, correct_count=correct_count+$3, wrong_count=wrong_count+$4
		WHERE id=$1
		RETURNING `+participantColumns, id, deltaPoints, deltaCorrect, deltaWrong)
	return scanParticipant(row)
}

func (s *Store) SaveParticipantRanks(ctx context.Context, contestID uuid.UUID, ranks map[uuid.UUID]int) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)
	for id, rank := range ranks {
		if _, err := tx.Exec(ctx, `UPDATE participants SET rank=$2 WHERE id=$1 AND contest_id=$3`, id, rank, contestID); err != nil {
			return fmt.Errorf("save rank: %w", err)
		}
	}
	return tx.Commit(ctx)
}

func (s *Store) InsertSubmission(ctx context.Context, submission *domain.Submission) error {
	answer, err := json.Marshal(submission.Answer)
	if err != nil {
		return fmt.Errorf("marshal answer: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO submissions (id, contest_id, question_id, participant_id, answer, correct, points, time_bonus, time_spent_ms, submitted_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		submission.ID, submission.ContestID, submission.QuestionID, submission.ParticipantID,
		answer, submission.Correct, submission.Points, submission.TimeBonus, submission.TimeSpentMs,
		submission.SubmittedAt)
	if err != nil {
		// A concurrent duplicate that loses the unique constraint is a
		// normal duplicate rejection, not an internal error.
		if isUniqueViolation(err) {
			return domain.ErrAlreadySubmitted
		}
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

const submissionColumns = `id, contest_id, question_id, participant_id, answer, correct, points, time_bonus, time_spent_ms, override, submitted_at`

func scanSubmission(row pgx.Row) (domain.Submission, error) {
	var (
		submission domain.Submission
		answer     []byte
		override   []byte
	)
	err := row.Scan(&submission.ID, &submission.ContestID, &submission.QuestionID, &submission.ParticipantID,
		&answer, &submission.Correct, &submission.Points, &submission.TimeBonus, &submission.TimeSpentMs,
		&override, &submission.SubmittedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Submission{}, domain.ErrSubmissionNotFound
		}
		return domain.Submission{}, fmt.Errorf("scan submission: %w", err)
	}
	if err := json.Unmarshal(answer, &submission.Answer); err != nil {
		return domain.Submission{}, fmt.Errorf("unmarshal answer: %w", err)
	}
	if len(override) > 0 {
		submission.Override = &domain.ScoreOverride{}
		if err := json.Unmarshal(override, submission.Override); err != nil {
			return domain.Submission{}, fmt.Errorf("unmarshal override: %w", err)
		}
	}
	return submission, nil
}

func (s *Store) GetSubmission(ctx context.Context, id uuid.UUID) (domain.Submission, error) {
	return scanSubmission(s.pool.QueryRow(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id=$1`, id))
}

func (s *Store) FindSubmission(ctx context.Context, questionID, participantID uuid.UUID) (domain.Submission, error) {
	return scanSubmission(s.pool.QueryRow(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE question_id=$1 AND participant_id=$2`, questionID, participantID))
}

func (s *Store) UpdateSubmissionScore(ctx context.Context, id uuid.UUID, points int, correct bool, override domain.ScoreOverride) error {
	raw, err := json.Marshal(override)
	if err != nil {
		return fmt.Errorf("marshal override: %w", err)
	}
	tag, err := s.pool.Exec(ctx, `UPDATE submissions SET points=$2, correct=$3, override=$4 WHERE id=$1`, id, points, correct, raw)
	if err != nil {
		return fmt.Errorf("update submission score: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSubmissionNotFound
	}
	return nil
}

func (s *Store) CreateTeam(ctx context.Context, team *domain.Team) error {
	members, err := json.Marshal(team.Members)
	if err != nil {
		return fmt.Errorf("marshal members: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO teams (id, contest_id, name, captain_id, members, max_size, total_score, average_score, correct_count, wrong_count, rank, active, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		team.ID, team.ContestID, team.Name, team.CaptainID, members, team.MaxSize, team.TotalScore,
		team.AverageScore, team.CorrectCount, team.WrongCount, team.Rank, team.Active, team.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateTeamName
		}
		return fmt.Errorf("insert team: %w", err)
	}
	return nil
}

const teamColumns = `id, contest_id, name, captain_id, members, max_size, total_score, average_score, correct_count, wrong_count, rank, active, created_at`

func scanTeam(row pgx.Row) (domain.Team, error) {
	var (
		team    domain.Team
		members []byte
	)
	err := row.Scan(&team.ID, &team.ContestID, &team.Name, &team.CaptainID, &members, &team.MaxSize,
		&team.TotalScore, &team.AverageScore, &team.CorrectCount, &team.WrongCount, &team.Rank,
		&team.Active, &team.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Team{}, domain.ErrTeamNotFound
		}
		return domain.Team{}, fmt.Errorf("scan team: %w", err)
	}
	if err := json.Unmarshal(members, &team.Members); err != nil {
		return domain.Team{}, fmt.Errorf("unmarshal members: %w", err)
	}
	return team, nil
}

func (s *Store) GetTeam(ctx context.Context, id uuid.UUID) (domain.Team, error) {
	return scanTeam(s.pool.QueryRow(ctx, `SELECT `+teamColumns+` FROM teams WHERE id=$1`, id))
}

func (s *Store) FindTeamByName(ctx context.Context, contestID uuid.UUID, name string) (domain.Team, bool, error) {
	team, err := scanTeam(s.pool.QueryRow(ctx, `SELECT `+teamColumns+` FROM teams WHERE contest_id=$1 AND active AND lower(name)=lower($2)`, contestID, name))
	if err != nil {
		if errors.Is(err, domain.ErrTeamNotFound) {
			return domain.Team{}, false, nil
		}
		return domain.Team{}, false, err
	}
	return team, true, nil
}

func (s *Store) UpdateTeam(ctx context.Context, team *domain.Team) error {
	members, err := json.Marshal(team.Members)
	if err != nil {
		return fmt.Errorf("marshal members: %w", err)
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE teams SET name=$2, captain_id=$3, members=$4, total_score=$5, average_score=$6, correct_count=$7, wrong_count=$8, rank=$9, active=$10
		WHERE id=$1`,
		team.ID, team.Name, team.CaptainID, members, team.TotalScore, team.AverageScore,
		team.CorrectCount, team.WrongCount, team.Rank, team.Active)
	if err != nil {
		return fmt.Errorf("update team: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTeamNotFound
	}
	return nil
}

func (s *Store) ListTeams(ctx context.Context, contestID uuid.UUID) ([]domain.Team, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+teamColumns+` FROM teams WHERE contest_id=$1`, contestID)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	defer rows.Close()

	var teams []domain.Team
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

func (s *Store) AddReferee(ctx context.Context, referee *domain.Referee) error {
	permissions, err := json.Marshal(referee.Permissions)
	if err != nil {
		return fmt.Errorf("marshal permissions: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO referees (contest_id, user_id, nickname, permissions, online, added_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (contest_id, user_id) DO UPDATE SET nickname=EXCLUDED.nickname, permissions=EXCLUDED.permissions`,
		referee.ContestID, referee.UserID, referee.Nickname, permissions, referee.Online, referee.AddedAt)
	if err != nil {
		return fmt.Errorf("insert referee: %w", err)
	}
	return nil
}

func (s *Store) RemoveReferee(ctx context.Context, contestID uuid.UUID, userID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM referees WHERE contest_id=$1 AND user_id=$2`, contestID, userID)
	if err != nil {
		return fmt.Errorf("remove referee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRefereeNotFound
	}
	return nil
}

const refereeColumns = `contest_id, user_id, nickname, permissions, online, added_at`

func scanReferee(row pgx.Row) (domain.Referee, error) {
	var (
		referee     domain.Referee
		permissions []byte
	)
	err := row.Scan(&referee.ContestID, &referee.UserID, &referee.Nickname, &permissions, &referee.Online, &referee.AddedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Referee{}, domain.ErrRefereeNotFound
		}
		return domain.Referee{}, fmt.Errorf("scan referee: %w", err)
	}
	if err := json.Unmarshal(permissions, &referee.Permissions); err != nil {
		return domain.Referee{}, fmt.Errorf("unmarshal permissions: %w", err)
	}
	return referee, nil
}

func (s *Store) GetReferee(ctx context.Context, contestID uuid.UUID, userID string) (domain.Referee, error) {
	return scanReferee(s.pool.QueryRow(ctx, `SELECT `+refereeColumns+` FROM referees WHERE contest_id=$1 AND user_id=$2`, contestID, userID))
}

func (s *Store) ListReferees(ctx context.Context, contestID uuid.UUID) ([]domain.Referee, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+refereeColumns+` FROM referees WHERE contest_id=$1`, contestID)
	if err != nil {
		return nil, fmt.Errorf("list referees: %w", err)
	}
	defer rows.Close()

	var referees []domain.Referee
	for rows.Next() {
		referee, err := scanReferee(rows)
		if err != nil {
			return nil, err
		}
		referees = append(referees, referee)
	}
	return referees, rows.Err()
}

func (s *Store) SetRefereeOnline(ctx context.Context, contestID uuid.UUID, userID string, online bool) error {
	tag, err := s.pool.Exec(ctx, `UPDATE referees SET online=$3 WHERE contest_id=$1 AND user_id=$2`, contestID, userID, online)
	if err != nil {
		return fmt.Errorf("set referee online: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRefereeNotFound
	}
	return nil
}
