package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cwchanap/grus-server/domain"
)

// PostgresRepo backs the RoomStore and PlayerStore contracts with a pgx
// pool. Room and player rows are bookkeeping; all live session state stays
// in the game package and the state store.
type PostgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresRepo(ctx context.Context, connString string) (*PostgresRepo, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	return &PostgresRepo{pool: pool}, nil
}

func (r *PostgresRepo) Close() {
	r.pool.Close()
}

func (r *PostgresRepo) Exists(ctx context.Context, roomId string) (bool, error) {
	var exists bool
	row := r.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM rooms WHERE id = $1 AND is_active)", roomId)
	if err := row.Scan(&exists); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return false, err
		}
		return false, fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
	}
	return exists, nil
}

func (r *PostgresRepo) HasCapacity(ctx context.Context, roomId string) (bool, error) {
	var maxPlayers, current int
	row := r.pool.QueryRow(ctx,
		`SELECT r.max_players, (SELECT COUNT(*) FROM players p WHERE p.room_id = r.id AND p.is_connected)
		 FROM rooms r WHERE r.id = $1 AND r.is_active`, roomId)

	err := row.Scan(&maxPlayers, &current)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return false, domain.ErrRoomNotFound
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return false, err
		default:
			return false, fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
		}
	}
	return current < maxPlayers, nil
}

func (r *PostgresRepo) GetRoom(ctx context.Context, roomId string) (domain.Room, error) {
	room := domain.Room{Id: roomId}

	row := r.pool.QueryRow(ctx, "SELECT name, host_id, max_players, is_active FROM rooms WHERE id = $1", roomId)

	err := row.Scan(&room.Name, &room.HostId, &room.MaxPlayers, &room.IsActive)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return domain.Room{}, domain.ErrRoomNotFound
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return domain.Room{}, err
		default:
			return domain.Room{}, fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
		}
	}
	return room, nil
}

func (r *PostgresRepo) CreateRoom(ctx context.Context, room domain.Room) error {
	_, err := r.pool.Exec(ctx,
		"INSERT INTO rooms(id, name, host_id, max_players, is_active) VALUES($1, $2, $3, $4, $5)",
		room.Id, room.Name, room.HostId, room.MaxPlayers, room.IsActive)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// "23505" is the PostgreSQL error code for unique_violation
			return domain.ErrDuplicateRoom
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
	}
	return nil
}

func (r *PostgresRepo) DeactivateRoom(ctx context.Context, roomId string) error {
	_, err := r.pool.Exec(ctx, "UPDATE rooms SET is_active = FALSE WHERE id = $1", roomId)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
	}
	return nil
}

func (r *PostgresRepo) UpsertPlayer(ctx context.Context, player domain.Player) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO players(id, room_id, name, is_host, is_connected, last_activity)
		 VALUES($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id, room_id) DO UPDATE
		 SET name = $3, is_host = $4, is_connected = $5, last_activity = $6`,
		player.Id, player.RoomId, player.Name, player.IsHost, player.IsConnected, player.LastActivity)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
	}
	return nil
}

func (r *PostgresRepo) GetPlayer(ctx context.Context, playerId, roomId string) (domain.Player, error) {
	player := domain.Player{Id: playerId, RoomId: roomId}

	row := r.pool.QueryRow(ctx,
		"SELECT name, is_host, is_connected, last_activity FROM players WHERE id = $1 AND room_id = $2",
		playerId, roomId)

	err := row.Scan(&player.Name, &player.IsHost, &player.IsConnected, &player.LastActivity)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return domain.Player{}, domain.ErrPlayerNotFound
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return domain.Player{}, err
		default:
			return domain.Player{}, fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
		}
	}
	return player, nil
}

func (r *PostgresRepo) DeletePlayer(ctx context.Context, playerId, roomId string) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM players WHERE id = $1 AND room_id = $2", playerId, roomId)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
	}
	return nil
}
