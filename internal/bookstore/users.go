package bookstore

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/bluemoxon/bluemoxon/internal/domain"
)

const (
	logActionInsertUser      = "insert user"
	logActionSelectUser      = "select user"
	logActionInsertSession   = "insert session"
	logActionSelectSession   = "select session"
	logActionTouchSession    = "touch session"
	logActionDeleteSession   = "delete session"
	logActionExpiredSessions = "purge expired sessions"

	logMsgUserInserted    = "user inserted"
	logMsgSessionsExpired = "expired sessions purged"

	logAttrUserID       = "user_id"
	logAttrPurgedCount  = "purged_count"
	colEmail            = "email"
	colPasswordHash     = "password_hash"
	colAdmin            = "admin"
	colToken            = "token"
	colUserID           = "user_id"
	colExpiresAt        = "expires_at"
)

// InsertUser persists a new user account.
func (s *Store) InsertUser(ctx context.Context, user domain.User) (domain.User, error) {
	if err := user.Validate(); err != nil {
		return domain.User{}, err
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now().UTC()

	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(usersTableName).
		Rows(goqu.Record{
			colID:           user.ID,
			colEmail:        user.Email,
			colPasswordHash: user.PasswordHash,
			colAdmin:        user.Admin,
			colCreatedAt:    user.CreatedAt,
		})

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		s.logBuildQueryError(toSQLErr)
		return domain.User{}, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	if _, _, err := s.executeStatement(ctx, sqlQuery, logActionInsertUser); err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, ErrUserExists
		}

		return domain.User{}, err
	}

	s.logOperation(logMsgUserInserted, logAttrUserID, user.ID.String())

	return user, nil
}

// UserByEmail retrieves a user by email or ErrUserNotFound.
func (s *Store) UserByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.userBy(ctx, goqu.Ex{colEmail: email})
}

// UserByID retrieves a user by ID or ErrUserNotFound.
func (s *Store) UserByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	return s.userBy(ctx, goqu.Ex{colID: id})
}

func (s *Store) userBy(ctx context.Context, where goqu.Ex) (domain.User, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(usersTableName).
		Select(colID, colEmail, colPasswordHash, colAdmin, colCreatedAt).
		Where(where)

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		s.logBuildQueryError(toSQLErr)
		return domain.User{}, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	rows, _, queryErr := s.executeQuery(ctx, sqlQuery, logActionSelectUser)
	if queryErr != nil {
		return domain.User{}, queryErr
	}
	defer s.closeRows(rows)

	if !rows.Next() {
		return domain.User{}, ErrUserNotFound
	}

	var user domain.User
	if scanErr := rows.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Admin, &user.CreatedAt); scanErr != nil {
		s.logScanRowError(scanErr)
		return domain.User{}, errors.Join(ErrScanningRowFailed, scanErr)
	}

	return user, nil
}

// InsertSession persists a new login session.
func (s *Store) InsertSession(ctx context.Context, session domain.Session) error {
	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(sessionsTableName).
		Rows(goqu.Record{
			colToken:     session.Token,
			colUserID:    session.UserID,
			colExpiresAt: session.ExpiresAt,
		})

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		s.logBuildQueryError(toSQLErr)
		return errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	_, _, err := s.executeStatement(ctx, sqlQuery, logActionInsertSession)

	return err
}

// SessionByToken retrieves a session by its token or ErrSessionNotFound.
func (s *Store) SessionByToken(ctx context.Context, token string) (domain.Session, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(sessionsTableName).
		Select(colToken, colUserID, colExpiresAt).
		Where(goqu.Ex{colToken: token})

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		s.logBuildQueryError(toSQLErr)
		return domain.Session{}, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	rows, _, queryErr := s.executeQuery(ctx, sqlQuery, logActionSelectSession)
	if queryErr != nil {
		return domain.Session{}, queryErr
	}
	defer s.closeRows(rows)

	if !rows.Next() {
		return domain.Session{}, ErrSessionNotFound
	}

	var session domain.Session
	if scanErr := rows.Scan(&session.Token, &session.UserID, &session.ExpiresAt); scanErr != nil {
		s.logScanRowError(scanErr)
		return domain.Session{}, errors.Join(ErrScanningRowFailed, scanErr)
	}

	return session, nil
}

// TouchSession moves a session's expiry forward, keeping active sessions
// alive. Returns ErrSessionNotFound when the token does not exist.
func (s *Store) TouchSession(ctx context.Context, token string, expiresAt time.Time) error {
	updateStmt := goqu.Dialect(dialectPostgres).
		Update(sessionsTableName).
		Set(goqu.Record{colExpiresAt: expiresAt}).
		Where(goqu.Ex{colToken: token})

	sqlQuery, _, toSQLErr := updateStmt.ToSQL()
	if toSQLErr != nil {
		s.logBuildQueryError(toSQLErr)
		return errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	touched, _, err := s.executeStatement(ctx, sqlQuery, logActionTouchSession)
	if err != nil {
		return err
	}

	if touched == 0 {
		return ErrSessionNotFound
	}

	return nil
}

// DeleteSession removes a session; deleting an unknown token is not an error.
func (s *Store) DeleteSession(ctx context.Context, token string) error {
	deleteStmt := goqu.Dialect(dialectPostgres).
		Delete(sessionsTableName).
		Where(goqu.Ex{colToken: token})

	sqlQuery, _, toSQLErr := deleteStmt.ToSQL()
	if toSQLErr != nil {
		s.logBuildQueryError(toSQLErr)
		return errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	_, _, err := s.executeStatement(ctx, sqlQuery, logActionDeleteSession)

	return err
}

// PurgeExpiredSessions removes sessions whose expiry has passed and returns
// how many were removed. Called lazily from the auth middleware path.
func (s *Store) PurgeExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	deleteStmt := goqu.Dialect(dialectPostgres).
		Delete(sessionsTableName).
		Where(goqu.I(colExpiresAt).Lte(now))

	sqlQuery, _, toSQLErr := deleteStmt.ToSQL()
	if toSQLErr != nil {
		s.logBuildQueryError(toSQLErr)
		return 0, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	purged, _, err := s.executeStatement(ctx, sqlQuery, logActionExpiredSessions)
	if err != nil {
		return 0, err
	}

	if purged > 0 {
		s.logOperation(logMsgSessionsExpired, logAttrPurgedCount, purged)
	}

	return purged, nil
}
