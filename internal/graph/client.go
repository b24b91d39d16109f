// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package graph writes the normalized citation dataset into Neo4j in
// fixed-size batches of upsert statements, and derives the relationship
// and count properties that are views over the loaded edges.
package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/BlueBrain/citation-graph/pkg/types"
)

// Executor runs Cypher against the target database. The batch writer
// depends on this interface so tests can substitute a recording fake.
type Executor interface {
	// WriteQuery executes one statement inside a write transaction.
	WriteQuery(ctx context.Context, query string, params map[string]any) error

	// ReadCount executes a statement returning a single count value.
	ReadCount(ctx context.Context, query string) (int64, error)
}

// Client wraps the Neo4j driver for one database. The connection settings
// come from an explicit GraphConfig; there is no package-level default.
type Client struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewClient connects to the database described by cfg and verifies
// connectivity before returning.
func NewClient(ctx context.Context, cfg types.GraphConfig) (*Client, error) {
	cfg = cfg.WithDefaults()
	if cfg.URI == "" {
		return nil, fmt.Errorf("graph: URI required")
	}

	auth := neo4j.BasicAuth(cfg.Username, cfg.Password, "")
	driver, err := neo4j.NewDriverWithContext(cfg.URI, auth, func(c *neo4j.Config) {
		c.SocketConnectTimeout = cfg.ConnectTimeout
	})
	if err != nil {
		return nil, fmt.Errorf("graph: init driver: %w", err)
	}

	verifyCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := driver.VerifyConnectivity(verifyCtx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("graph: verify connectivity: %w", err)
	}

	return &Client{driver: driver, database: cfg.Database}, nil
}

// Close releases the driver.
func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.driver == nil {
		return nil
	}
	err := c.driver.Close(ctx)
	c.driver = nil
	return err
}

// WriteQuery runs one statement in its own session and write transaction.
// One call is one unit of retry for the batch writer.
func (c *Client) WriteQuery(ctx context.Context, query string, params map[string]any) error {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: c.database})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return res.Consume(ctx)
	})
	return err
}

// ReadCount runs a statement whose single record holds one integer.
func (c *Client) ReadCount(ctx context.Context, query string) (int64, error) {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: c.database})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, nil)
		if err != nil {
			return nil, err
		}
		record, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		return record.Values[0], nil
	})
	if err != nil {
		return 0, err
	}
	n, ok := result.(int64)
	if !ok {
		return 0, fmt.Errorf("graph: count query returned %T, want int64", result)
	}
	return n, nil
}
