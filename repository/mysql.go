package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go-catan/engine"
	"go-catan/entities"

	"github.com/go-sql-driver/mysql"
)

//go:embed schema.sql
var schemaSQL string

const (
	errLockWaitTimeout = 1205
	errDeadlock        = 1213
	errDuplicateEntry  = 1062
)

// MySQLStore 基于 InnoDB 行锁的存储
type MySQLStore struct {
	db *sql.DB
}

// OpenMySQL connects with parseTime on and the InnoDB lock wait bounded by lockWait.
func OpenMySQL(dsn string, lockWait time.Duration) (*MySQLStore, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("解析 MySQL DSN 失败: %w", err)
	}
	cfg.ParseTime = true
	if lockWait > 0 {
		if cfg.Params == nil {
			cfg.Params = map[string]string{}
		}
		cfg.Params["innodb_lock_wait_timeout"] = strconv.Itoa(int(lockWait.Seconds()))
	}
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("创建 MySQL 连接器失败: %w", err)
	}
	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(32)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("MySQL 连接失败: %w", err)
	}
	return &MySQLStore{db: db}, nil
}

func (s *MySQLStore) Close() error {
	return s.db.Close()
}

func (s *MySQLStore) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	return s.run(ctx, false, fn)
}

func (s *MySQLStore) View(ctx context.Context, fn func(tx Tx) error) error {
	return s.run(ctx, true, fn)
}

func (s *MySQLStore) run(ctx context.Context, readOnly bool, fn func(tx Tx) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: readOnly})
	if err != nil {
		return translate(fmt.Errorf("开启事务失败: %w", err))
	}
	defer tx.Rollback()

	lock := " FOR UPDATE"
	if readOnly {
		lock = ""
	}
	if err := fn(&mysqlTx{tx: tx, lock: lock}); err != nil {
		return translate(err)
	}
	if err := tx.Commit(); err != nil {
		return translate(fmt.Errorf("提交事务失败: %w", err))
	}
	return nil
}

// translate maps lock waits and deadlocks to a retryable conflict; engine errors pass through.
func translate(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case errLockWaitTimeout, errDeadlock:
			return engine.ErrStoreContention.With("mysql %d: %s", me.Number, me.Message)
		}
	}
	return err
}

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == errDuplicateEntry
}

// Migrate creates the tables and loads the reference rows; existing rows are left alone.
func (s *MySQLStore) Migrate(ctx context.Context, seed Seed) error {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("建表失败: %w", err)
		}
	}
	return s.WithTx(ctx, func(t Tx) error {
		return seedRows(ctx, t.(*mysqlTx).tx, seed)
	})
}

func seedRows(ctx context.Context, tx *sql.Tx, seed Seed) error {
	exec := func(query string, args ...any) error {
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("初始化数据失败 (%s): %w", strings.Fields(query)[3], err)
		}
		return nil
	}

	if err := exec(`INSERT IGNORE INTO game_match (id, turn, round, last_dice, max_player) VALUES (1, 1, 0, 0, ?)`, seed.MaxPlayers); err != nil {
		return err
	}
	for _, b := range seed.Bank {
		if err := exec(`INSERT IGNORE INTO resources_card (id, card_name, max_count, current_count, max_hex_count) VALUES (?, ?, ?, 0, ?)`,
			int(b.Resource), b.Resource.String(), b.Supply, b.MaxHexCount); err != nil {
			return err
		}
	}
	for _, spec := range seed.Catalog.Specs() {
		if err := exec(`INSERT IGNORE INTO building (id, name, max_count) VALUES (?, ?, ?)`, int(spec.Kind), spec.Kind.String(), spec.MaxCount); err != nil {
			return err
		}
		for i, r := range entities.TradeableResources {
			if spec.Cost[i] == 0 {
				continue
			}
			if err := exec(`INSERT IGNORE INTO building_resources_card (id_building, id_card, qty) VALUES (?, ?, ?)`, int(spec.Kind), int(r), spec.Cost[i]); err != nil {
				return err
			}
		}
	}
	for _, h := range seed.Board.Hexagons {
		if err := exec(`INSERT IGNORE INTO hexagon (id, q, r, resource_id, dice_number, letter, is_thief) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			h.ID, h.Q, h.R, int(h.Resource), nullInt(h.DiceNumber), h.Letter, h.IsThief); err != nil {
			return err
		}
	}
	for _, t := range seed.Board.Towns {
		if err := exec(`INSERT IGNORE INTO town (id, pos_x, pos_y, level) VALUES (?, ?, ?, 0)`, t.ID, t.X, t.Y); err != nil {
			return err
		}
	}
	for _, r := range seed.Board.Roads {
		if err := exec(`INSERT IGNORE INTO town_conections (id, from_town_id, to_town_id) VALUES (?, ?, ?)`, r.ID, r.FromTown, r.ToTown); err != nil {
			return err
		}
	}
	for _, l := range seed.Board.Links {
		if err := exec(`INSERT IGNORE INTO hexagon_conections (from_hexagon_id, to_town_id) VALUES (?, ?)`, l.HexID, l.TownID); err != nil {
			return err
		}
	}
	for _, c := range seed.Cards {
		if err := exec(`INSERT IGNORE INTO random_card (id, card_name, max_count, current_count) VALUES (?, ?, ?, 0)`, int(c.Kind), c.Name, c.MaxCount); err != nil {
			return err
		}
	}
	return nil
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}
