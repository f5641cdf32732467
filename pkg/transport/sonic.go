package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/go-redis/redis/v8"

	"github.com/netfleet/netfleet/pkg/inventory"
	"github.com/netfleet/netfleet/pkg/util"
)

// sonicDBs maps SONiC database names to redis DB indexes.
var sonicDBs = map[string]int{
	"APPL_DB":     0,
	"ASIC_DB":     1,
	"COUNTERS_DB": 2,
	"CONFIG_DB":   4,
	"STATE_DB":    6,
}

// sonicKeySep returns the table/key separator used by a SONiC database.
// APPL_DB and its siblings use ":", CONFIG_DB and STATE_DB use "|".
func sonicKeySep(db string) string {
	switch db {
	case "CONFIG_DB", "STATE_DB":
		return "|"
	}
	return ":"
}

// sonicConn executes table selectors against a SONiC device's redis
// databases, reached through an SSH tunnel. Selector syntax (produced by the
// command translator):
//
//	<DB>/<TABLE>        all entries of a table, keyed by entry key
//	<DB>/<TABLE>|<KEY>  a single entry
//	<DB>/*              every table in the database
//
// Output is the selected entries rendered as JSON.
type sonicConn struct {
	device string
	tunnel *Tunnel

	mu      sync.Mutex
	clients map[int]*redis.Client // by redis DB index
}

func dialSonicDB(ctx context.Context, dev *inventory.Device) (Conn, error) {
	tunnel, err := NewTunnel(ctx, dev.Addr(), dev.Username, dev.Password, "127.0.0.1:6379")
	if err != nil {
		return nil, err
	}

	c := &sonicConn{
		device:  dev.Name,
		tunnel:  tunnel,
		clients: make(map[int]*redis.Client),
	}

	// Verify the redis side is reachable before handing the session out.
	if err := c.client(sonicDBs["CONFIG_DB"]).Ping(ctx).Err(); err != nil {
		c.Close()
		return nil, fmt.Errorf("redis ping via tunnel to %s: %w", dev.Name, err)
	}
	return c, nil
}

func (c *sonicConn) client(db int) *redis.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cl, ok := c.clients[db]; ok {
		return cl
	}
	cl := redis.NewClient(&redis.Options{
		Addr: c.tunnel.LocalAddr(),
		DB:   db,
	})
	c.clients[db] = cl
	return cl
}

func (c *sonicConn) Execute(ctx context.Context, command string) (string, error) {
	dbName, selector, ok := strings.Cut(command, "/")
	if !ok {
		return "", util.NewCommandError(c.device, command, "", fmt.Errorf("malformed selector"))
	}
	db, ok := sonicDBs[dbName]
	if !ok {
		return "", util.NewCommandError(c.device, command, "", fmt.Errorf("unknown SONiC database '%s'", dbName))
	}

	sep := sonicKeySep(dbName)
	cl := c.client(db)

	var (
		result interface{}
		err    error
	)
	switch {
	case selector == "*":
		result, err = c.dumpAll(ctx, cl, sep)
	case strings.Contains(selector, sep):
		result, err = c.fetchEntry(ctx, cl, selector)
	default:
		result, err = c.scanTable(ctx, cl, selector, sep)
	}
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", util.NewCommandError(c.device, command, "", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", util.NewCommandError(c.device, command, "", err)
	}
	return string(out), nil
}

// fetchEntry returns the field map of a single table entry.
func (c *sonicConn) fetchEntry(ctx context.Context, cl *redis.Client, key string) (map[string]string, error) {
	fields, err := cl.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("no entry '%s'", key)
	}
	return fields, nil
}

// scanTable returns every entry of a table keyed by the entry key (the part
// after the table prefix).
func (c *sonicConn) scanTable(ctx context.Context, cl *redis.Client, table, sep string) (map[string]map[string]string, error) {
	keys, err := cl.Keys(ctx, table+sep+"*").Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)

	entries := make(map[string]map[string]string, len(keys))
	for _, key := range keys {
		fields, err := cl.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, err
		}
		entries[strings.TrimPrefix(key, table+sep)] = fields
	}
	return entries, nil
}

// dumpAll returns every table in the database, grouped by table name.
func (c *sonicConn) dumpAll(ctx context.Context, cl *redis.Client, sep string) (map[string]map[string]map[string]string, error) {
	keys, err := cl.Keys(ctx, "*").Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)

	tables := make(map[string]map[string]map[string]string)
	for _, key := range keys {
		table, entry, ok := strings.Cut(key, sep)
		if !ok {
			continue
		}
		fields, err := cl.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, err
		}
		if tables[table] == nil {
			tables[table] = make(map[string]map[string]string)
		}
		tables[table][entry] = fields
	}
	return tables, nil
}

func (c *sonicConn) Close() error {
	c.mu.Lock()
	for _, cl := range c.clients {
		cl.Close()
	}
	c.clients = make(map[int]*redis.Client)
	c.mu.Unlock()
	return c.tunnel.Close()
}
