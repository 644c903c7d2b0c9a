package driver

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Conn is one bolt connection serving both logical databases.
type Conn struct {
	Driver neo4j.DriverWithContext
}

func Connect(ctx context.Context, uri, username, password string) (*Conn, error) {
	d, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, err
	}
	if err := d.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("neo4j connectivity check failed: %w", err)
	}
	return &Conn{Driver: d}, nil
}

func (c *Conn) Close(ctx context.Context) error {
	return c.Driver.Close(ctx)
}

// Database returns a handle scoped to the named database.
func (c *Conn) Database(name string) *DB {
	return &DB{driver: c.Driver, name: name}
}

type DB struct {
	driver neo4j.DriverWithContext
	name   string
}

func (d *DB) Name() string { return d.name }

func (d *DB) ExecuteQuery(ctx context.Context, query string, params map[string]any) (neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(ctx, d.driver, query, params, neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(d.name))
	if err != nil {
		return neo4j.EagerResult{}, fmt.Errorf("failed to execute query: %w", err)
	}
	return *result, nil
}

// Record value helpers. The driver hands values back as any; these collapse
// the nil/missing cases instead of sprinkling assertions through callers.

func StringValue(rec *neo4j.Record, key string) string {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

func IntValue(rec *neo4j.Record, key string) int64 {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return 0
	}
	switch n := v.(type) {
	case int64:
		return n
	case float64:
		return int64(n)
	}
	return 0
}

func FloatValue(rec *neo4j.Record, key string) float64 {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	}
	return 0
}

func StringsValue(rec *neo4j.Record, key string) []string {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// SingleInt pulls one integer column from a single-row result, as returned
// by the count-reporting merge queries.
func SingleInt(res neo4j.EagerResult, key string) int64 {
	if len(res.Records) == 0 {
		return 0
	}
	return IntValue(res.Records[0], key)
}

// VectorValue converts a stored embedding back to float32 form.
func VectorValue(rec *neo4j.Record, key string) []float32 {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]float32, len(items))
	for i, it := range items {
		switch f := it.(type) {
		case float64:
			out[i] = float32(f)
		case float32:
			out[i] = f
		}
	}
	return out
}
