package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/umlhub/umlhub-backend/internal/assistant/domain"
	"github.com/umlhub/umlhub-backend/internal/projects/utils"
)

// DurableStore keeps one conversation log per diagram in Postgres. It is
// append-only with an explicit trim that deletes the oldest non-system turns
// beyond the window.
type DurableStore struct {
	db       *sql.DB
	maxTurns int
}

func NewDurableStore(db *sql.DB, maxTurns int) *DurableStore {
	return &DurableStore{db: db, maxTurns: maxTurns}
}

// Load returns the ordered turn log for the diagram, or (nil, false) when no
// conversation exists yet.
func (s *DurableStore) Load(ctx context.Context, diagramID, userID string) ([]domain.Turn, bool, error) {
	var conversationID string
	err := s.db.QueryRowContext(ctx, `
SELECT id FROM conversations WHERE diagram_id = $1 AND user_id = $2;
`, diagramID, userID).Scan(&conversationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT role, content, is_code_response, created_at
FROM messages
WHERE conversation_id = $1
ORDER BY seq ASC;
`, conversationID)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	var turns []domain.Turn
	for rows.Next() {
		var t domain.Turn
		var role string
		if err := rows.Scan(&role, &t.Content, &t.IsCodeResponse, &t.Timestamp); err != nil {
			return nil, false, err
		}
		t.Role = domain.Role(role)
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return turns, true, nil
}

// Append adds turns to the diagram's conversation, creating it on first use,
// then trims the log to the window: the system turn plus the maxTurns most
// recent others. Runs in one transaction.
func (s *DurableStore) Append(ctx context.Context, diagramID, userID string, turns []domain.Turn) error {
	if len(turns) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var conversationID string
	err = tx.QueryRowContext(ctx, `
SELECT id FROM conversations WHERE diagram_id = $1 AND user_id = $2 FOR UPDATE;
`, diagramID, userID).Scan(&conversationID)
	if errors.Is(err, sql.ErrNoRows) {
		conversationID, err = utils.NewID("conv")
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
INSERT INTO conversations (id, diagram_id, user_id) VALUES ($1, $2, $3);
`, conversationID, diagramID, userID)
	}
	if err != nil {
		return err
	}

	for _, t := range turns {
		msgID, err := utils.NewID("msg")
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
INSERT INTO messages (id, conversation_id, role, content, is_code_response, created_at)
VALUES ($1, $2, $3, $4, $5, $6);
`, msgID, conversationID, string(t.Role), t.Content, t.IsCodeResponse, t.Timestamp)
		if err != nil {
			return err
		}
	}

	// trim-and-delete-oldest: keep the system turn and the newest maxTurns
	// non-system turns
	_, err = tx.ExecContext(ctx, `
DELETE FROM messages
WHERE conversation_id = $1
  AND role <> 'system'
  AND seq NOT IN (
    SELECT seq FROM messages
    WHERE conversation_id = $1 AND role <> 'system'
    ORDER BY seq DESC
    LIMIT $2
  );
`, conversationID, s.maxTurns)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Clear deletes the diagram's conversation and all of its messages.
func (s *DurableStore) Clear(ctx context.Context, diagramID, userID string) error {
	_, err := s.db.ExecContext(ctx, `
DELETE FROM conversations WHERE diagram_id = $1 AND user_id = $2;
`, diagramID, userID)
	return err
}
