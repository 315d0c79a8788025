package redisstore

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/roach88/jsgraph/internal/graph"
	"github.com/roach88/jsgraph/internal/jid"
)

// DefaultPrefix namespaces every key the store writes.
const DefaultPrefix = "jsgraph"

// Hash fields of a stored row.
const (
	fieldOwner = "owner_id"
	fieldUser  = "user"
	fieldName  = "name"
	fieldKind  = "kind"
	fieldType  = "type"
	fieldTS    = "ts"
	fieldBody  = "body"
)

var _ graph.Backend = (*Store)(nil)

// Options configures the Redis connection.
type Options struct {
	// URL is the Redis connection string (e.g., "redis://localhost:6379")
	URL string

	// Prefix namespaces keys. Defaults to DefaultPrefix.
	Prefix string

	// ConnectTimeout is the maximum time to wait for connection establishment
	ConnectTimeout time.Duration

	// ReadTimeout is the maximum time to wait for read operations
	ReadTimeout time.Duration

	// WriteTimeout is the maximum time to wait for write operations
	WriteTimeout time.Duration
}

// Store implements graph.Backend using go-redis/v9.
type Store struct {
	client *redis.Client
	prefix string
}

// Open connects to Redis and verifies the connection with a PING.
func Open(opts Options) (*Store, error) {
	if opts.URL == "" {
		opts.URL = "redis://localhost:6379"
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 5 * time.Second
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 5 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 5 * time.Second
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	redisOpts.DialTimeout = opts.ConnectTimeout
	redisOpts.ReadTimeout = opts.ReadTimeout
	redisOpts.WriteTimeout = opts.WriteTimeout

	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return New(client, opts.Prefix), nil
}

// New wraps an existing client. An empty prefix means DefaultPrefix.
func New(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) objKey(id jid.ID) string {
	return s.prefix + ":obj:" + id.String()
}

func (s *Store) userKey(user string) string {
	return s.prefix + ":user:" + user
}

func (s *Store) typeKey(user string, t graph.EntityType) string {
	return s.userKey(user) + ":type:" + string(t)
}

// Load returns the row for id, or a NOT_FOUND graph error.
func (s *Store) Load(ctx context.Context, id jid.ID) (graph.Row, error) {
	fields, err := s.client.HGetAll(ctx, s.objKey(id)).Result()
	if err != nil {
		return graph.Row{}, fmt.Errorf("load %s: %w", id, err)
	}
	if len(fields) == 0 {
		return graph.Row{}, graph.NewNotFound(id)
	}
	return decodeRow(id, fields)
}

// indexEntry is where an existing row is indexed.
type indexEntry struct {
	user string
	typ  graph.EntityType
}

// Apply writes a batch in one MULTI/EXEC transaction. Index entries of rows
// that change type, or are deleted, are read first so they can be removed
// inside the same transaction. A row keeps the user that first wrote it.
func (s *Store) Apply(ctx context.Context, b graph.Batch) error {
	ids := make([]jid.ID, 0, len(b.Puts)+len(b.Deletes))
	for _, row := range b.Puts {
		ids = append(ids, row.ID)
	}
	ids = append(ids, b.Deletes...)
	existing, err := s.indexEntries(ctx, ids)
	if err != nil {
		return fmt.Errorf("apply: %w", err)
	}

	puts := make([]graph.Row, len(b.Puts))
	for i, row := range b.Puts {
		if old, ok := existing[row.ID]; ok {
			row.User = old.user
		}
		puts[i] = row
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, row := range puts {
			if old, ok := existing[row.ID]; ok && old.typ != row.Type {
				pipe.SRem(ctx, s.typeKey(old.user, old.typ), row.ID.String())
			}
			pipe.HSet(ctx, s.objKey(row.ID), encodeRow(row))
			pipe.SAdd(ctx, s.userKey(row.User), row.ID.String())
			pipe.SAdd(ctx, s.typeKey(row.User, row.Type), row.ID.String())
		}
		for _, id := range b.Deletes {
			pipe.Del(ctx, s.objKey(id))
			// Rows put earlier in this batch are indexed under their new type.
			for _, entry := range indexedUnder(id, existing, puts) {
				pipe.SRem(ctx, s.userKey(entry.user), id.String())
				pipe.SRem(ctx, s.typeKey(entry.user, entry.typ), id.String())
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("apply: %w", err)
	}
	return nil
}

// indexedUnder lists every index entry id may sit under once the batch's
// puts are applied.
func indexedUnder(id jid.ID, existing map[jid.ID]indexEntry, puts []graph.Row) []indexEntry {
	var out []indexEntry
	if old, ok := existing[id]; ok {
		out = append(out, old)
	}
	for _, row := range puts {
		if row.ID == id {
			out = append(out, indexEntry{user: row.User, typ: row.Type})
		}
	}
	return out
}

func (s *Store) indexEntries(ctx context.Context, ids []jid.ID) (map[jid.ID]indexEntry, error) {
	out := make(map[jid.ID]indexEntry, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	pipe := s.client.Pipeline()
	cmds := make([]*redis.SliceCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HMGet(ctx, s.objKey(id), fieldUser, fieldType)
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("read index entries: %w", err)
	}
	for i, cmd := range cmds {
		vals, err := cmd.Result()
		if err != nil {
			return nil, fmt.Errorf("read index entry %s: %w", ids[i], err)
		}
		user, ok1 := vals[0].(string)
		typ, ok2 := vals[1].(string)
		if ok1 && ok2 {
			out[ids[i]] = indexEntry{user: user, typ: graph.EntityType(typ)}
		}
	}
	return out, nil
}

// ListByUser returns the user's rows ordered by timestamp, then id.
func (s *Store) ListByUser(ctx context.Context, user string) ([]graph.Row, error) {
	return s.list(ctx, s.userKey(user))
}

// ListByType returns the user's rows of one entity type, same order.
func (s *Store) ListByType(ctx context.Context, user string, t graph.EntityType) ([]graph.Row, error) {
	return s.list(ctx, s.typeKey(user, t))
}

func (s *Store) list(ctx context.Context, index string) ([]graph.Row, error) {
	members, err := s.client.SMembers(ctx, index).Result()
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", index, err)
	}

	ids := make([]jid.ID, 0, len(members))
	for _, m := range members {
		id, err := jid.Parse(m)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", index, err)
		}
		ids = append(ids, id)
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, s.objKey(id))
	}
	if len(ids) > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, fmt.Errorf("list %s: %w", index, err)
		}
	}

	rows := make([]graph.Row, 0, len(ids))
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		row, err := decodeRow(ids[i], fields)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	slices.SortFunc(rows, func(a, b graph.Row) int {
		return cmp.Or(a.Timestamp.Compare(b.Timestamp), a.ID.Compare(b.ID))
	})
	return rows, nil
}

// DeleteUser removes every row of the user and its indexes in one
// transaction, returning the number of rows removed.
func (s *Store) DeleteUser(ctx context.Context, user string) (int, error) {
	members, err := s.client.SMembers(ctx, s.userKey(user)).Result()
	if err != nil {
		return 0, fmt.Errorf("delete user %q: %w", user, err)
	}

	var dels []*redis.IntCmd
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, m := range members {
			dels = append(dels, pipe.Del(ctx, s.prefix+":obj:"+m))
		}
		pipe.Del(ctx, s.userKey(user))
		for _, t := range graph.EntityTypes {
			pipe.Del(ctx, s.typeKey(user, t))
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("delete user %q: %w", user, err)
	}

	n := 0
	for _, d := range dels {
		n += int(d.Val())
	}
	return n, nil
}

func encodeRow(row graph.Row) map[string]any {
	owner := ""
	if !row.OwnerID.IsNil() {
		owner = row.OwnerID.String()
	}
	return map[string]any{
		fieldOwner: owner,
		fieldUser:  row.User,
		fieldName:  row.Name,
		fieldKind:  row.Kind,
		fieldType:  string(row.Type),
		fieldTS:    strconv.FormatInt(row.Timestamp.UnixNano(), 10),
		fieldBody:  row.Body,
	}
}

func decodeRow(id jid.ID, fields map[string]string) (graph.Row, error) {
	ts, err := strconv.ParseInt(fields[fieldTS], 10, 64)
	if err != nil {
		return graph.Row{}, fmt.Errorf("decode %s: ts: %w", id, err)
	}
	row := graph.Row{
		ID:        id,
		User:      fields[fieldUser],
		Name:      fields[fieldName],
		Kind:      fields[fieldKind],
		Type:      graph.EntityType(fields[fieldType]),
		Timestamp: time.Unix(0, ts).UTC(),
		Body:      []byte(fields[fieldBody]),
	}
	if owner := fields[fieldOwner]; owner != "" {
		if row.OwnerID, err = jid.Parse(owner); err != nil {
			return graph.Row{}, fmt.Errorf("decode %s: owner: %w", id, err)
		}
	}
	return row, nil
}
