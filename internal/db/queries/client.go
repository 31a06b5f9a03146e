package queries

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rebeliceyang/pgglance/internal/models"
)

// Conns hands out one connection per command; release returns it.
type Conns interface {
	Conn(ctx context.Context) (db DB, release func(), err error)
}

// PoolConns acquires connections from a pgx pool.
type PoolConns struct {
	Pool *pgxpool.Pool
}

func (p PoolConns) Conn(ctx context.Context) (DB, func(), error) {
	conn, err := p.Pool.Acquire(ctx)
	if err != nil {
		return nil, nil, wrap("connection", err)
	}
	return conn, conn.Release, nil
}

// Client runs the dashboard's reads and writes against one server. Every
// statement of a command goes through the same backend.
type Client struct {
	conns Conns
	info  models.ServerInfo
}

// NewClient binds conns to the server described by info; the detected
// extensions and major version choose query variants.
func NewClient(conns Conns, info models.ServerInfo) *Client {
	return &Client{conns: conns, info: info}
}

func (c *Client) with(ctx context.Context, fn func(db DB) error) error {
	db, release, err := c.conns.Conn(ctx)
	if err != nil {
		return err
	}
	defer release()
	return fn(db)
}

func (c *Client) FetchSnapshot(ctx context.Context) (snap *models.Snapshot, err error) {
	err = c.with(ctx, func(db DB) error {
		snap, err = FetchSnapshot(ctx, db, c.info.Extensions, c.info.MajorVersion())
		return err
	})
	return snap, err
}

func (c *Client) FetchBloat(ctx context.Context) (bloat Bloat, err error) {
	err = c.with(ctx, func(db DB) error {
		bloat, err = FetchBloat(ctx, db, c.info.Extensions)
		return err
	})
	return bloat, err
}

func (c *Client) CancelBackend(ctx context.Context, pid int32) (ok bool, err error) {
	err = c.with(ctx, func(db DB) error {
		ok, err = CancelBackend(ctx, db, pid)
		return err
	})
	return ok, err
}

func (c *Client) TerminateBackend(ctx context.Context, pid int32) (ok bool, err error) {
	err = c.with(ctx, func(db DB) error {
		ok, err = TerminateBackend(ctx, db, pid)
		return err
	})
	return ok, err
}

func (c *Client) ResetStatStatements(ctx context.Context) error {
	return c.with(ctx, func(db DB) error {
		return ResetStatStatements(ctx, db)
	})
}
