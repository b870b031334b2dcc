package postgres

import (
	"context"
	"errors"

	"github.com/cantis/FlaskFactor2/internal/model"
	"github.com/cantis/FlaskFactor2/internal/storage"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const playerColumns = `id, email, name, password, password_attempts, reset_password, is_active`

// playerTx runs player queries inside one pgx transaction
type playerTx struct {
	tx pgx.Tx
}

var _ storage.Tx = (*playerTx)(nil)

func scanPlayer(row pgx.Row) (*model.Player, error) {
	var (
		p  model.Player
		id int64
	)
	if err := row.Scan(&id, &p.Email, &p.Name, &p.Password, &p.PasswordAttempts, &p.ResetPassword, &p.IsActive); err != nil {
		return nil, err
	}
	p.ID = model.PlayerID(id)
	return &p, nil
}

func (t *playerTx) PlayerByID(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	row := t.tx.QueryRow(ctx, `SELECT `+playerColumns+` FROM player WHERE id = $1`, int64(id))
	p, err := scanPlayer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storage.NewStoreError("player by id", "PLAYER_QUERY_FAILED", err)
	}
	return p, nil
}

func (t *playerTx) PlayerByEmail(ctx context.Context, email string) (*model.Player, error) {
	row := t.tx.QueryRow(ctx, `SELECT `+playerColumns+` FROM player WHERE email = $1`, email)
	p, err := scanPlayer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storage.NewStoreError("player by email", "PLAYER_QUERY_FAILED", err)
	}
	return p, nil
}

func (t *playerTx) Players(ctx context.Context) ([]*model.Player, error) {
	rows, err := t.tx.Query(ctx, `SELECT `+playerColumns+` FROM player ORDER BY id`)
	if err != nil {
		return nil, storage.NewStoreError("list players", "PLAYER_QUERY_FAILED", err)
	}
	defer rows.Close()

	players := []*model.Player{}
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, storage.NewStoreError("list players", "PLAYER_SCAN_FAILED", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storage.NewStoreError("list players", "PLAYER_QUERY_FAILED", err)
	}
	return players, nil
}

func (t *playerTx) InsertPlayer(ctx context.Context, p *model.Player) error {
	var id int64
	err := t.tx.QueryRow(ctx,
		`INSERT INTO player (email, name, password, password_attempts, reset_password, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		p.Email, p.Name, p.Password, p.PasswordAttempts, p.ResetPassword, p.IsActive,
	).Scan(&id)
	if isUniqueViolation(err) {
		return &model.PlayerAlreadyExistsError{Email: p.Email}
	}
	if err != nil {
		return storage.NewStoreError("insert player", "PLAYER_INSERT_FAILED", err)
	}
	p.ID = model.PlayerID(id)
	return nil
}

func (t *playerTx) UpdatePlayer(ctx context.Context, p *model.Player) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE player SET email = $2, name = $3, password = $4,
		 password_attempts = $5, reset_password = $6, is_active = $7
		 WHERE id = $1`,
		int64(p.ID), p.Email, p.Name, p.Password, p.PasswordAttempts, p.ResetPassword, p.IsActive,
	)
	if isUniqueViolation(err) {
		return &model.PlayerAlreadyExistsError{Email: p.Email}
	}
	if err != nil {
		return storage.NewStoreError("update player", "PLAYER_UPDATE_FAILED", err)
	}
	if tag.RowsAffected() == 0 {
		return model.NotFoundByID(p.ID)
	}
	return nil
}

func (t *playerTx) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM player WHERE id = $1`, int64(id))
	if err != nil {
		return storage.NewStoreError("delete player", "PLAYER_DELETE_FAILED", err)
	}
	if tag.RowsAffected() == 0 {
		return model.NotFoundByID(id)
	}
	return nil
}

func (t *playerTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return storage.NewStoreError("commit", "TX_COMMIT_FAILED", err)
	}
	return nil
}

func (t *playerTx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return storage.NewStoreError("rollback", "TX_ROLLBACK_FAILED", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
