// Package journal records kernel events in a SQLite database.
//
// Attach it directly with kern.Kernel.Attach, or by name:
//
//     import _ "github.com/oruby/mosig/ext/journal"
//
//     k.Require("journal", "events.db")
package journal

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/oruby/mosig"
	"github.com/oruby/mosig/kern"
)

const schema = `
create table if not exists events (
	id        integer not null primary key autoincrement,
	seq       integer not null,
	kind      text    not null,
	env       integer not null,
	signal    integer not null,
	from_env  integer not null,
	pc        integer not null,
	nested    integer not null,
	exit_kind integer,
	exit_msg  text
);
create index if not exists events_env on events (env);
`

func init() {
	kern.Extension("journal", func(k *kern.Kernel, arg string) (kern.Observer, error) {
		return Open(arg)
	})
}

// Journal is a kern.Observer writing every event to SQLite.
type Journal struct {
	mu     sync.Mutex
	db     *sql.DB
	insert *sql.Stmt
	err    error
}

// Open opens or creates the journal at path. ":memory:" keeps it in memory.
func Open(path string) (*Journal, error) {
	if path == "" {
		return nil, errors.New("journal: empty database path")
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// one connection, so ":memory:" is a single database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	insert, err := db.Prepare(`insert into events
		(seq, kind, env, signal, from_env, pc, nested, exit_kind, exit_msg)
		values (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Journal{db: db, insert: insert}, nil
}

// Observe implements kern.Observer. A failed write is kept and reported by
// Err; later events are still attempted.
func (j *Journal) Observe(ev kern.Event) {
	var exitKind sql.NullInt64
	var exitMsg sql.NullString
	if ev.Exit != nil {
		exitKind = sql.NullInt64{Int64: int64(ev.Exit.Kind), Valid: true}
		exitMsg = sql.NullString{String: ev.Exit.String(), Valid: true}
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	_, err := j.insert.Exec(ev.Seq, ev.Kind.String(), uint32(ev.Env), int(ev.Signal),
		uint32(ev.From), ev.PC, ev.Nested, exitKind, exitMsg)
	if err != nil && j.err == nil {
		j.err = err
	}
}

// Err returns the first write error.
func (j *Journal) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

// Events returns the recorded events of env in order, or of every env
// when env is 0.
func (j *Journal) Events(ctx context.Context, env kern.EnvID) ([]kern.Event, error) {
	query := `select seq, kind, env, signal, from_env, pc, nested, exit_kind, exit_msg
		from events`
	var args []interface{}
	if env != 0 {
		query += ` where env = ?`
		args = append(args, uint32(env))
	}
	query += ` order by id`

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ret []kern.Event
	for rows.Next() {
		var (
			ev       kern.Event
			kind     string
			envID    uint32
			sig      int
			from     uint32
			exitKind sql.NullInt64
			exitMsg  sql.NullString
		)
		if err := rows.Scan(&ev.Seq, &kind, &envID, &sig, &from, &ev.PC, &ev.Nested, &exitKind, &exitMsg); err != nil {
			return nil, err
		}
		if ev.Kind, err = kern.ParseEventKind(kind); err != nil {
			return nil, err
		}
		ev.Env = kern.EnvID(envID)
		ev.Signal = mosig.Signal(sig)
		ev.From = kern.EnvID(from)
		if exitKind.Valid {
			x := kern.Exit{Kind: kern.ExitKind(exitKind.Int64), Signal: ev.Signal}
			if x.Kind == kern.ExitFatal {
				x.Err = errors.New(exitMsg.String)
			}
			ev.Exit = &x
		}
		ret = append(ret, ev)
	}
	return ret, rows.Err()
}

// Counts returns how many events of each kind were recorded.
func (j *Journal) Counts(ctx context.Context) (map[kern.EventKind]int, error) {
	rows, err := j.db.QueryContext(ctx, `select kind, count(*) from events group by kind`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ret := make(map[kern.EventKind]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		k, err := kern.ParseEventKind(kind)
		if err != nil {
			return nil, err
		}
		ret[k] = n
	}
	return ret, rows.Err()
}

// Close implements io.Closer.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.insert != nil {
		j.insert.Close()
		j.insert = nil
	}
	return j.db.Close()
}
