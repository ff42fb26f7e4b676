package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/edgard/slackchat/internal/slackts"
)

var (
	// ErrNotFound is returned when a looked-up or deleted record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned by UpsertMessage when the timestamp already
	// belongs to a message in another channel.
	ErrConflict = errors.New("timestamp belongs to another channel")
)

// Queries are the record operations used while reconciling a single event.
// They run either directly against the pool or inside Store.InTx.
type Queries interface {
	// GetChannel looks a channel up by its Slack id.
	GetChannel(ctx context.Context, apiID string) (*Channel, error)

	// GetUser looks a user up by its Slack id.
	GetUser(ctx context.Context, apiID string) (*User, error)

	// GetOrCreateUser returns the user with apiID, creating an empty profile
	// on first sight. created reports whether a row was inserted.
	GetOrCreateUser(ctx context.Context, apiID string) (user *User, created bool, err error)

	// GetMessage looks a message up by channel and timestamp.
	GetMessage(ctx context.Context, channel *Channel, ts slackts.Timestamp) (*Message, error)

	// GetMessageByTimestamp looks a message up by its globally unique timestamp.
	GetMessageByTimestamp(ctx context.Context, ts slackts.Timestamp) (*Message, error)

	// UpsertMessage creates the message at (channel, ts) or replaces its text.
	// The author is only set on creation.
	UpsertMessage(ctx context.Context, channel *Channel, ts slackts.Timestamp, user *User, text string) (*Message, bool, error)

	// DeleteMessage removes the message at (channel, ts) authored by user.
	DeleteMessage(ctx context.Context, channel *Channel, ts slackts.Timestamp, user *User) error

	// GetKeywordArgument looks a reply up by (message, ts, user).
	GetKeywordArgument(ctx context.Context, message *Message, ts slackts.Timestamp, user *User) (*KeywordArgument, error)

	// UpsertKeywordArgument creates the reply at (message, ts, user) or replaces its key and value.
	UpsertKeywordArgument(ctx context.Context, message *Message, ts slackts.Timestamp, user *User, key, value string) (*KeywordArgument, bool, error)

	// DeleteKeywordArgument removes a reply.
	DeleteKeywordArgument(ctx context.Context, kwarg *KeywordArgument) error
}

// Store defines the interface for database operations.
// Methods should accept context.Context for cancellation and timeouts.
type Store interface {
	Queries

	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// InTx runs fn inside a transaction. The transaction commits when fn
	// returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(q Queries) error) error

	// CreateChannel provisions a channel, updating its name if it already exists.
	CreateChannel(ctx context.Context, apiID, name string) (*Channel, error)

	// ListChannels returns all provisioned channels ordered by Slack id.
	ListChannels(ctx context.Context) ([]Channel, error)

	// DeleteChannel removes a channel together with its messages and replies.
	DeleteChannel(ctx context.Context, apiID string) error

	// ListMessages returns the most recent messages of a channel, newest first.
	ListMessages(ctx context.Context, channel *Channel, limit int) ([]Message, error)

	// ListKeywordArguments returns the replies attached to message, oldest first.
	ListKeywordArguments(ctx context.Context, message *Message) ([]KeywordArgument, error)

	// ListUsersWithoutProfile returns up to limit users whose profile was never
	// synced, least recently attempted first.
	ListUsersWithoutProfile(ctx context.Context, limit int) ([]User, error)

	// UpdateUserProfile stores the profile fields of user and marks it synced.
	UpdateUserProfile(ctx context.Context, user *User) error

	// DeferUserProfileSync moves user to the back of the profile sync queue.
	DeferUserProfileSync(ctx context.Context, user *User) error

	// HasEventReceipt reports whether eventID was already processed.
	HasEventReceipt(ctx context.Context, eventID string) (bool, error)

	// SaveEventReceipt records the outcome of eventID.
	SaveEventReceipt(ctx context.Context, eventID, outcome string) error

	// PruneEventReceipts deletes receipts received before the cutoff.
	PruneEventReceipts(ctx context.Context, before time.Time) (int64, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// dbtx is satisfied by both *sqlx.DB and *sqlx.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	Rebind(query string) string
}

const (
	channelColumns = `id, api_id, name, created_at, updated_at`
	userColumns    = `id, api_id, first_name, last_name, title, image, profile_synced_at, created_at, updated_at`
	messageColumns = `id, channel_id, user_id, timestamp, text, created_at, updated_at`
	kwargColumns   = `id, message_id, user_id, timestamp, key, value, created_at, updated_at`
)

// queries implements Queries on top of a pool or a transaction.
type queries struct {
	db     dbtx
	logger *slog.Logger
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	*queries
	db *sqlx.DB
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger = logger.With("component", "store")
	return &sqlxStore{
		queries: &queries{db: db, logger: logger},
		db:      db,
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// InTx runs fn inside a single transaction.
func (s *sqlxStore) InTx(ctx context.Context, fn func(q Queries) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction", "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				if !errors.Is(rollbackErr, sql.ErrTxDone) {
					s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
				}
			}
		}
	}()

	if err := fn(&queries{db: tx, logger: s.logger}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit transaction", "error", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	// Successfully committed, set tx to nil to avoid rollback
	tx = nil
	return nil
}

func (q *queries) get(ctx context.Context, dest any, query string, args ...any) error {
	err := q.db.GetContext(ctx, dest, q.db.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (q *queries) exec(ctx context.Context, query string, args ...any) (int64, error) {
	result, err := q.db.ExecContext(ctx, q.db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// GetChannel looks a channel up by its Slack id.
func (q *queries) GetChannel(ctx context.Context, apiID string) (*Channel, error) {
	var channel Channel
	err := q.get(ctx, &channel, `SELECT `+channelColumns+` FROM channels WHERE api_id = ?`, apiID)
	switch {
	case errors.Is(err, ErrNotFound):
		q.logger.DebugContext(ctx, "Channel not found", "channel_api_id", apiID)
		return nil, err
	case err != nil:
		q.logger.ErrorContext(ctx, "Error getting channel", "channel_api_id", apiID, "error", err)
		return nil, fmt.Errorf("failed to get channel %s: %w", apiID, err)
	}
	return &channel, nil
}

// GetUser looks a user up by its Slack id.
func (q *queries) GetUser(ctx context.Context, apiID string) (*User, error) {
	var user User
	err := q.get(ctx, &user, `SELECT `+userColumns+` FROM users WHERE api_id = ?`, apiID)
	switch {
	case errors.Is(err, ErrNotFound):
		q.logger.DebugContext(ctx, "User not found", "user_api_id", apiID)
		return nil, err
	case err != nil:
		q.logger.ErrorContext(ctx, "Error getting user", "user_api_id", apiID, "error", err)
		return nil, fmt.Errorf("failed to get user %s: %w", apiID, err)
	}
	return &user, nil
}

// GetOrCreateUser returns the user with apiID, inserting it on first sight.
// An existing user is never modified.
func (q *queries) GetOrCreateUser(ctx context.Context, apiID string) (*User, bool, error) {
	if apiID == "" {
		return nil, false, fmt.Errorf("user api id cannot be empty")
	}

	now := time.Now().UTC()
	affected, err := q.exec(ctx, `
        INSERT INTO users (api_id, created_at, updated_at)
        VALUES (?, ?, ?)
        ON CONFLICT (api_id) DO NOTHING`, apiID, now, now)
	if err != nil {
		q.logger.ErrorContext(ctx, "Error creating user", "user_api_id", apiID, "error", err)
		return nil, false, fmt.Errorf("failed to create user %s: %w", apiID, err)
	}

	user, err := q.GetUser(ctx, apiID)
	if err != nil {
		return nil, false, err
	}

	created := affected == 1
	if created {
		q.logger.DebugContext(ctx, "User created", "user_api_id", apiID, "user_id", user.ID)
	}
	return user, created, nil
}

// GetMessage looks a message up by channel and timestamp.
func (q *queries) GetMessage(ctx context.Context, channel *Channel, ts slackts.Timestamp) (*Message, error) {
	var message Message
	err := q.get(ctx, &message,
		`SELECT `+messageColumns+` FROM messages WHERE channel_id = ? AND timestamp = ?`, channel.ID, ts)
	switch {
	case errors.Is(err, ErrNotFound):
		return nil, err
	case err != nil:
		q.logger.ErrorContext(ctx, "Error getting message",
			"channel_id", channel.ID, "timestamp", ts.String(), "error", err)
		return nil, fmt.Errorf("failed to get message %s: %w", ts, err)
	}
	return &message, nil
}

// GetMessageByTimestamp looks a message up by its globally unique timestamp.
func (q *queries) GetMessageByTimestamp(ctx context.Context, ts slackts.Timestamp) (*Message, error) {
	var message Message
	err := q.get(ctx, &message, `SELECT `+messageColumns+` FROM messages WHERE timestamp = ?`, ts)
	switch {
	case errors.Is(err, ErrNotFound):
		return nil, err
	case err != nil:
		q.logger.ErrorContext(ctx, "Error getting message by timestamp", "timestamp", ts.String(), "error", err)
		return nil, fmt.Errorf("failed to get message %s: %w", ts, err)
	}
	return &message, nil
}

// UpsertMessage creates the message at (channel, ts) or replaces its text.
// The conflict clause refuses to touch a row owned by another channel.
func (q *queries) UpsertMessage(ctx context.Context, channel *Channel, ts slackts.Timestamp, user *User, text string) (*Message, bool, error) {
	existing, err := q.GetMessageByTimestamp(ctx, ts)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}
	if existing != nil && existing.ChannelID != channel.ID {
		q.logger.WarnContext(ctx, "Message timestamp already used in another channel",
			"timestamp", ts.String(), "channel_id", channel.ID, "existing_channel_id", existing.ChannelID)
		return nil, false, ErrConflict
	}

	now := time.Now().UTC()
	affected, err := q.exec(ctx, `
        INSERT INTO messages (channel_id, user_id, timestamp, text, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT (timestamp) DO UPDATE
        SET text = excluded.text, updated_at = excluded.updated_at
        WHERE messages.channel_id = excluded.channel_id`,
		channel.ID, user.ID, ts, text, now, now)
	if err != nil {
		q.logger.ErrorContext(ctx, "Error upserting message",
			"channel_id", channel.ID, "timestamp", ts.String(), "error", err)
		return nil, false, fmt.Errorf("failed to upsert message %s: %w", ts, err)
	}
	if affected == 0 {
		return nil, false, ErrConflict
	}

	message, err := q.GetMessage(ctx, channel, ts)
	if err != nil {
		return nil, false, err
	}

	created := existing == nil
	q.logger.DebugContext(ctx, "Message upserted",
		"message_id", message.ID, "channel_id", channel.ID, "timestamp", ts.String(), "created", created)
	return message, created, nil
}

// DeleteMessage removes the message at (channel, ts) authored by user.
// Its keyword arguments are removed by the foreign key cascade.
func (q *queries) DeleteMessage(ctx context.Context, channel *Channel, ts slackts.Timestamp, user *User) error {
	affected, err := q.exec(ctx,
		`DELETE FROM messages WHERE channel_id = ? AND timestamp = ? AND user_id = ?`,
		channel.ID, ts, user.ID)
	if err != nil {
		q.logger.ErrorContext(ctx, "Error deleting message",
			"channel_id", channel.ID, "timestamp", ts.String(), "error", err)
		return fmt.Errorf("failed to delete message %s: %w", ts, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	q.logger.DebugContext(ctx, "Message deleted", "channel_id", channel.ID, "timestamp", ts.String())
	return nil
}

// GetKeywordArgument looks a reply up by (message, ts, user).
func (q *queries) GetKeywordArgument(ctx context.Context, message *Message, ts slackts.Timestamp, user *User) (*KeywordArgument, error) {
	var kwarg KeywordArgument
	err := q.get(ctx, &kwarg, `
        SELECT `+kwargColumns+` FROM keyword_arguments
        WHERE message_id = ? AND user_id = ? AND timestamp = ?`,
		message.ID, user.ID, ts)
	switch {
	case errors.Is(err, ErrNotFound):
		return nil, err
	case err != nil:
		q.logger.ErrorContext(ctx, "Error getting keyword argument",
			"message_id", message.ID, "timestamp", ts.String(), "error", err)
		return nil, fmt.Errorf("failed to get keyword argument %s: %w", ts, err)
	}
	return &kwarg, nil
}

// UpsertKeywordArgument creates the reply at (message, ts, user) or replaces its key and value.
func (q *queries) UpsertKeywordArgument(ctx context.Context, message *Message, ts slackts.Timestamp, user *User, key, value string) (*KeywordArgument, bool, error) {
	existing, err := q.GetKeywordArgument(ctx, message, ts, user)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	now := time.Now().UTC()
	_, err = q.exec(ctx, `
        INSERT INTO keyword_arguments (message_id, user_id, timestamp, key, value, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (message_id, user_id, timestamp) DO UPDATE
        SET key = excluded.key, value = excluded.value, updated_at = excluded.updated_at`,
		message.ID, user.ID, ts, key, value, now, now)
	if err != nil {
		q.logger.ErrorContext(ctx, "Error upserting keyword argument",
			"message_id", message.ID, "timestamp", ts.String(), "error", err)
		return nil, false, fmt.Errorf("failed to upsert keyword argument %s: %w", ts, err)
	}

	kwarg, err := q.GetKeywordArgument(ctx, message, ts, user)
	if err != nil {
		return nil, false, err
	}

	created := existing == nil
	q.logger.DebugContext(ctx, "Keyword argument upserted",
		"keyword_argument_id", kwarg.ID, "message_id", message.ID, "key", key, "created", created)
	return kwarg, created, nil
}

// DeleteKeywordArgument removes a reply.
func (q *queries) DeleteKeywordArgument(ctx context.Context, kwarg *KeywordArgument) error {
	affected, err := q.exec(ctx, `DELETE FROM keyword_arguments WHERE id = ?`, kwarg.ID)
	if err != nil {
		q.logger.ErrorContext(ctx, "Error deleting keyword argument", "keyword_argument_id", kwarg.ID, "error", err)
		return fmt.Errorf("failed to delete keyword argument %d: %w", kwarg.ID, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	q.logger.DebugContext(ctx, "Keyword argument deleted", "keyword_argument_id", kwarg.ID)
	return nil
}

// CreateChannel provisions a channel, updating its name if it already exists.
func (s *sqlxStore) CreateChannel(ctx context.Context, apiID, name string) (*Channel, error) {
	if apiID == "" {
		return nil, fmt.Errorf("channel api id cannot be empty")
	}

	now := time.Now().UTC()
	_, err := s.exec(ctx, `
        INSERT INTO channels (api_id, name, created_at, updated_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT (api_id) DO UPDATE
        SET name = excluded.name, updated_at = excluded.updated_at`,
		apiID, name, now, now)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error creating channel", "channel_api_id", apiID, "error", err)
		return nil, fmt.Errorf("failed to create channel %s: %w", apiID, err)
	}

	s.logger.InfoContext(ctx, "Channel provisioned", "channel_api_id", apiID, "name", name)
	return s.GetChannel(ctx, apiID)
}

// ListChannels returns all provisioned channels ordered by Slack id.
func (s *sqlxStore) ListChannels(ctx context.Context) ([]Channel, error) {
	var channels []Channel
	err := s.db.SelectContext(ctx, &channels, `SELECT `+channelColumns+` FROM channels ORDER BY api_id`)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error listing channels", "error", err)
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	return channels, nil
}

// DeleteChannel removes a channel together with its messages and replies.
func (s *sqlxStore) DeleteChannel(ctx context.Context, apiID string) error {
	affected, err := s.exec(ctx, `DELETE FROM channels WHERE api_id = ?`, apiID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error deleting channel", "channel_api_id", apiID, "error", err)
		return fmt.Errorf("failed to delete channel %s: %w", apiID, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	s.logger.InfoContext(ctx, "Channel removed", "channel_api_id", apiID)
	return nil
}

// ListMessages returns the most recent messages of a channel, newest first.
func (s *sqlxStore) ListMessages(ctx context.Context, channel *Channel, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 20
	} else if limit > 1000 {
		limit = 1000
	}

	var messages []Message
	err := s.db.SelectContext(ctx, &messages, s.db.Rebind(`
        SELECT `+messageColumns+` FROM messages
        WHERE channel_id = ?
        ORDER BY timestamp DESC
        LIMIT ?`), channel.ID, limit)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error listing messages", "channel_id", channel.ID, "error", err)
		return nil, fmt.Errorf("failed to list messages for channel %s: %w", channel.APIID, err)
	}
	return messages, nil
}

// ListKeywordArguments returns the replies attached to message, oldest first.
func (s *sqlxStore) ListKeywordArguments(ctx context.Context, message *Message) ([]KeywordArgument, error) {
	var kwargs []KeywordArgument
	err := s.db.SelectContext(ctx, &kwargs, s.db.Rebind(`
        SELECT `+kwargColumns+` FROM keyword_arguments
        WHERE message_id = ?
        ORDER BY timestamp, id`), message.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error listing keyword arguments", "message_id", message.ID, "error", err)
		return nil, fmt.Errorf("failed to list keyword arguments for message %d: %w", message.ID, err)
	}
	return kwargs, nil
}

// ListUsersWithoutProfile returns up to limit users whose profile was never
// synced, least recently attempted first.
func (s *sqlxStore) ListUsersWithoutProfile(ctx context.Context, limit int) ([]User, error) {
	if limit <= 0 {
		limit = 50
	}

	var users []User
	err := s.db.SelectContext(ctx, &users, s.db.Rebind(`
        SELECT `+userColumns+` FROM users
        WHERE profile_synced_at IS NULL
        ORDER BY updated_at, id
        LIMIT ?`), limit)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error listing users without profile", "error", err)
		return nil, fmt.Errorf("failed to list users without profile: %w", err)
	}
	return users, nil
}

// UpdateUserProfile stores the profile fields of user and marks it synced.
func (s *sqlxStore) UpdateUserProfile(ctx context.Context, user *User) error {
	if user == nil {
		return fmt.Errorf("cannot update nil user")
	}

	now := time.Now().UTC()
	user.UpdatedAt = now
	user.ProfileSyncedAt = sql.NullTime{Time: now, Valid: true}

	result, err := s.db.NamedExecContext(ctx, `
        UPDATE users
        SET first_name = :first_name, last_name = :last_name, title = :title, image = :image,
            profile_synced_at = :profile_synced_at, updated_at = :updated_at
        WHERE id = :id`, user)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error updating user profile", "user_id", user.ID, "error", err)
		return fmt.Errorf("failed to update profile for user %s: %w", user.APIID, err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}

	s.logger.DebugContext(ctx, "User profile updated", "user_id", user.ID, "user_api_id", user.APIID)
	return nil
}

// DeferUserProfileSync bumps updated_at of an unsynced user so a batch that
// keeps failing does not block the users queued behind it.
func (s *sqlxStore) DeferUserProfileSync(ctx context.Context, user *User) error {
	if user == nil {
		return fmt.Errorf("cannot defer nil user")
	}

	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`
        UPDATE users SET updated_at = ?
        WHERE id = ? AND profile_synced_at IS NULL`), now, user.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error deferring user profile sync", "user_id", user.ID, "error", err)
		return fmt.Errorf("failed to defer profile sync for user %s: %w", user.APIID, err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}

	user.UpdatedAt = now
	return nil
}

// HasEventReceipt reports whether eventID was already processed.
func (s *sqlxStore) HasEventReceipt(ctx context.Context, eventID string) (bool, error) {
	var receipt EventReceipt
	err := s.get(ctx, &receipt, `SELECT event_id, outcome, received_at FROM event_receipts WHERE event_id = ?`, eventID)
	switch {
	case errors.Is(err, ErrNotFound):
		return false, nil
	case err != nil:
		s.logger.ErrorContext(ctx, "Error checking event receipt", "event_id", eventID, "error", err)
		return false, fmt.Errorf("failed to check event receipt %s: %w", eventID, err)
	}
	return true, nil
}

// SaveEventReceipt records the outcome of eventID.
func (s *sqlxStore) SaveEventReceipt(ctx context.Context, eventID, outcome string) error {
	_, err := s.exec(ctx, `
        INSERT INTO event_receipts (event_id, outcome, received_at)
        VALUES (?, ?, ?)
        ON CONFLICT (event_id) DO UPDATE SET outcome = excluded.outcome`,
		eventID, outcome, time.Now().Unix())
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving event receipt", "event_id", eventID, "error", err)
		return fmt.Errorf("failed to save event receipt %s: %w", eventID, err)
	}
	return nil
}

// PruneEventReceipts deletes receipts received before the cutoff.
func (s *sqlxStore) PruneEventReceipts(ctx context.Context, before time.Time) (int64, error) {
	affected, err := s.exec(ctx, `DELETE FROM event_receipts WHERE received_at < ?`, before.Unix())
	if err != nil {
		s.logger.ErrorContext(ctx, "Error pruning event receipts", "error", err)
		return 0, fmt.Errorf("failed to prune event receipts: %w", err)
	}
	s.logger.DebugContext(ctx, "Event receipts pruned", "deleted", affected)
	return affected, nil
}

// RunSQLMaintenance executes VACUUM on SQLite and VACUUM ANALYZE on PostgreSQL.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	// Check if context is already done
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled or timed out before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	statement := "VACUUM;"
	if s.db.DriverName() == DriverPostgres {
		statement = "VACUUM ANALYZE;"
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...", "statement", statement)

	// VACUUM must run outside a transaction
	_, err := s.db.ExecContext(ctx, statement)

	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)

	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)

	default:
		s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully")
	}

	return nil
}
