// Package repo is the persistence layer. Each entity has a client built on
// ent's SQL dialect builders; queries are plain Postgres over lib/pq.
package repo

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// Client is the entry point to the persistence layer. A Client handed out by
// WithTx runs every entity client on the same transaction.
type Client struct {
	driver dialect.Driver
	conn   dialect.ExecQuerier

	Unit         *UnitClient
	Profile      *ProfileClient
	Membership   *MembershipClient
	Patient      *PatientClient
	Appointment  *AppointmentClient
	Evolution    *EvolutionClient
	Assessment   *AssessmentClient
	Notification *NotificationClient
}

// NewClient creates a Client on top of the given driver.
func NewClient(drv dialect.Driver) *Client {
	c := &Client{driver: drv}
	c.init(drv)
	return c
}

func (c *Client) init(conn dialect.ExecQuerier) {
	c.conn = conn
	c.Unit = &UnitClient{conn: conn}
	c.Profile = &ProfileClient{conn: conn}
	c.Membership = &MembershipClient{conn: conn}
	c.Patient = &PatientClient{conn: conn}
	c.Appointment = &AppointmentClient{conn: conn}
	c.Evolution = &EvolutionClient{conn: conn}
	c.Assessment = &AssessmentClient{conn: conn}
	c.Notification = &NotificationClient{conn: conn}
}

// Driver returns the underlying driver. It is nil for transactional clients.
func (c *Client) Driver() dialect.Driver { return c.driver }

// Close closes the database connection.
func (c *Client) Close() error {
	if c.driver == nil {
		return nil
	}
	return c.driver.Close()
}

// Ping runs a trivial query to check connectivity.
func (c *Client) Ping(ctx context.Context) error {
	var rows entsql.Rows
	if err := c.conn.Query(ctx, "SELECT 1", []any{}, &rows); err != nil {
		return err
	}
	return rows.Close()
}

// WithTx runs fn inside a transaction. The transaction is rolled back if fn
// returns an error or panics, and committed otherwise. Calling WithTx on a
// transactional client joins the outer transaction.
func (c *Client) WithTx(ctx context.Context, fn func(tx *Client) error) error {
	if c.driver == nil {
		return fn(c)
	}

	tx, err := c.driver.Tx(ctx)
	if err != nil {
		return fmt.Errorf("starting a transaction: %w", err)
	}

	txc := &Client{}
	txc.init(tx)

	defer func() {
		if v := recover(); v != nil {
			_ = tx.Rollback()
			panic(v)
		}
	}()

	if err := fn(txc); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			err = fmt.Errorf("%w: rolling back transaction: %v", err, rerr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
