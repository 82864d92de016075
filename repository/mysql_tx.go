package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go-catan/engine"
	"go-catan/entities"
)

// mysqlTx runs every Lock* query with lock appended (" FOR UPDATE" inside WithTx, empty inside View).
type mysqlTx struct {
	tx   *sql.Tx
	lock string
}

const playerColumns = `p.id, p.id_user, u.username, COALESCE(p.color, ''), p.is_playing, p.current_order, p.points, p.largest_path, p.biggest_army`

func scanPlayer(row interface{ Scan(...any) error }) (entities.Player, error) {
	var p entities.Player
	err := row.Scan(&p.ID, &p.UserID, &p.Username, &p.Color, &p.IsPlaying, &p.PlayOrder, &p.Points, &p.HasLongestRoad, &p.HasLargestArmy)
	return p, err
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func (t *mysqlTx) LockSession(ctx context.Context) (entities.GameSession, error) {
	var s entities.GameSession
	err := t.tx.QueryRowContext(ctx, `
		SELECT turn, round, last_dice, max_player, COALESCE(longest_road_player, 0), longest_road_length
		FROM game_match
		WHERE id = 1`+t.lock).
		Scan(&s.Turn, &s.Round, &s.LastDiceRoll, &s.MaxPlayers, &s.LongestRoadHolder, &s.LongestRoadLength)
	if errors.Is(err, sql.ErrNoRows) {
		return s, engine.Configuration("game_match row 1 missing")
	}
	if err != nil {
		return s, fmt.Errorf("读取 game_match 失败: %w", err)
	}
	return s, nil
}

func (t *mysqlTx) UpdateSession(ctx context.Context, s entities.GameSession) error {
	_, err := t.tx.ExecContext(ctx, `
		UPDATE game_match
		SET turn = ?, round = ?, last_dice = ?, longest_road_player = NULLIF(?, 0), longest_road_length = ?
		WHERE id = 1`,
		s.Turn, s.Round, s.LastDiceRoll, s.LongestRoadHolder, s.LongestRoadLength)
	if err != nil {
		return fmt.Errorf("更新 game_match 失败: %w", err)
	}
	return nil
}

func (t *mysqlTx) UserByName(ctx context.Context, username string) (entities.User, error) {
	var u entities.User
	err := t.tx.QueryRowContext(ctx, `
		SELECT id, username, password_hash, user_image, created_at
		FROM users
		WHERE username = ?
		LIMIT 1`, username).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.UserImage, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return u, engine.ErrUserNotFound.With("%s", username)
	}
	if err != nil {
		return u, fmt.Errorf("读取用户失败: %w", err)
	}
	return u, nil
}

func (t *mysqlTx) InsertUser(ctx context.Context, u entities.User) (entities.User, error) {
	res, err := t.tx.ExecContext(ctx, `INSERT INTO users (username, password_hash, user_image) VALUES (?, ?, ?)`,
		u.Username, u.PasswordHash, u.UserImage)
	if isDuplicate(err) {
		return u, engine.ErrUsernameTaken
	}
	if err != nil {
		return u, fmt.Errorf("创建用户失败: %w", err)
	}
	if u.ID, err = res.LastInsertId(); err != nil {
		return u, fmt.Errorf("读取用户 id 失败: %w", err)
	}
	return u, nil
}

func (t *mysqlTx) LockPlayerByUsername(ctx context.Context, username string) (entities.Player, error) {
	p, err := scanPlayer(t.tx.QueryRowContext(ctx, `
		SELECT `+playerColumns+`
		FROM player p
		JOIN users u ON u.id = p.id_user
		WHERE u.username = ?`+t.lock, username))
	if errors.Is(err, sql.ErrNoRows) {
		return p, engine.ErrPlayerNotFound.With("%s", username)
	}
	if err != nil {
		return p, fmt.Errorf("读取玩家失败: %w", err)
	}
	return p, nil
}

func (t *mysqlTx) LockPlayer(ctx context.Context, id int64) (entities.Player, error) {
	p, err := scanPlayer(t.tx.QueryRowContext(ctx, `
		SELECT `+playerColumns+`
		FROM player p
		JOIN users u ON u.id = p.id_user
		WHERE p.id = ?`+t.lock, id))
	if errors.Is(err, sql.ErrNoRows) {
		return p, engine.ErrPlayerNotFound.With("id %d", id)
	}
	if err != nil {
		return p, fmt.Errorf("读取玩家失败: %w", err)
	}
	return p, nil
}

func (t *mysqlTx) LockPlayers(ctx context.Context) ([]entities.Player, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT `+playerColumns+`
		FROM player p
		JOIN users u ON u.id = p.id_user
		ORDER BY p.id`+t.lock)
	if err != nil {
		return nil, fmt.Errorf("读取玩家列表失败: %w", err)
	}
	defer rows.Close()

	var out []entities.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("解析玩家失败: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (t *mysqlTx) InsertPlayer(ctx context.Context, userID int64) (entities.Player, error) {
	stmts := []string{
		`INSERT IGNORE INTO player (id_user) VALUES (?)`,
		`INSERT IGNORE INTO player_resources_card (id_player, id_card, qty)
		 SELECT p.id, rc.id, 0
		 FROM player p
		 CROSS JOIN resources_card rc
		 WHERE p.id_user = ? AND rc.id <> 6`,
		`INSERT IGNORE INTO player_random_card (id_player, id_card, qty)
		 SELECT p.id, rc.id, 0
		 FROM player p
		 CROSS JOIN random_card rc
		 WHERE p.id_user = ?`,
	}
	for _, q := range stmts {
		if _, err := t.tx.ExecContext(ctx, q, userID); err != nil {
			return entities.Player{}, fmt.Errorf("创建玩家失败: %w", err)
		}
	}
	p, err := scanPlayer(t.tx.QueryRowContext(ctx, `
		SELECT `+playerColumns+`
		FROM player p
		JOIN users u ON u.id = p.id_user
		WHERE p.id_user = ?`, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return p, engine.ErrUserNotFound.With("id %d", userID)
	}
	if err != nil {
		return p, fmt.Errorf("读取玩家失败: %w", err)
	}
	return p, nil
}

func (t *mysqlTx) UpdatePlayers(ctx context.Context, players ...entities.Player) error {
	stmt, err := t.tx.PrepareContext(ctx, `
		UPDATE player
		SET color = NULLIF(?, ''), is_playing = ?, current_order = ?, points = ?, largest_path = ?, biggest_army = ?
		WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("准备更新玩家失败: %w", err)
	}
	defer stmt.Close()
	for _, p := range players {
		if _, err := stmt.ExecContext(ctx, p.Color, p.IsPlaying, p.PlayOrder, p.Points, p.HasLongestRoad, p.HasLargestArmy, p.ID); err != nil {
			if isDuplicate(err) {
				return engine.ErrColorTaken.With("%s", p.Color)
			}
			return fmt.Errorf("更新玩家[%d]失败: %w", p.ID, err)
		}
	}
	return nil
}

func (t *mysqlTx) ColorTaken(ctx context.Context, color string, exceptPlayer int64) (bool, error) {
	var one int
	err := t.tx.QueryRowContext(ctx, `
		SELECT 1
		FROM player
		WHERE LOWER(color) = LOWER(?) AND id <> ?
		LIMIT 1`+t.lock, color, exceptPlayer).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("检查颜色失败: %w", err)
	}
	return true, nil
}

func (t *mysqlTx) LockLedgers(ctx context.Context, playerIDs ...int64) (map[int64]entities.ResourceVector, error) {
	if len(playerIDs) == 0 {
		return map[int64]entities.ResourceVector{}, nil
	}
	ids := append([]int64(nil), playerIDs...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := t.tx.QueryContext(ctx, `
		SELECT id_player, id_card, qty
		FROM player_resources_card
		WHERE id_player IN (`+placeholders(len(ids))+`) AND id_card <> 6
		ORDER BY id_player, id_card`+t.lock, args...)
	if err != nil {
		return nil, fmt.Errorf("读取玩家资源失败: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]entities.ResourceVector, len(ids))
	for rows.Next() {
		var (
			pid  int64
			card int
			qty  int
		)
		if err := rows.Scan(&pid, &card, &qty); err != nil {
			return nil, fmt.Errorf("解析玩家资源失败: %w", err)
		}
		l := out[pid]
		l.Add(entities.ResourceType(card), qty)
		out[pid] = l
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, ok := out[id]; !ok {
			return nil, engine.ErrPlayerNotFound.With("ledger of %d", id)
		}
	}
	return out, nil
}

func (t *mysqlTx) LockBank(ctx context.Context) ([]entities.BankEntry, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, max_count, current_count, max_hex_count
		FROM resources_card
		ORDER BY id`+t.lock)
	if err != nil {
		return nil, fmt.Errorf("读取银行资源失败: %w", err)
	}
	defer rows.Close()

	var out []entities.BankEntry
	for rows.Next() {
		var b entities.BankEntry
		var id int
		if err := rows.Scan(&id, &b.Supply, &b.InCirculation, &b.MaxHexCount); err != nil {
			return nil, fmt.Errorf("解析银行资源失败: %w", err)
		}
		b.Resource = entities.ResourceType(id)
		out = append(out, b)
	}
	return out, rows.Err()
}

// ApplyTransfer writes all ledger deltas in one multi-row upsert and the bank in one CASE update.
func (t *mysqlTx) ApplyTransfer(ctx context.Context, deltas map[int64]entities.ResourceVector) error {
	var (
		values      []string
		args        []any
		ids         []any
		circulation entities.ResourceVector
	)
	for pid, d := range deltas {
		ids = append(ids, pid)
		circulation = circulation.Plus(d)
		for i, r := range entities.TradeableResources {
			if d[i] == 0 {
				continue
			}
			values = append(values, "(?, ?, ?)")
			args = append(args, pid, int(r), d[i])
		}
	}
	if len(values) == 0 {
		return nil
	}

	if _, err := t.tx.ExecContext(ctx, `
		INSERT INTO player_resources_card (id_player, id_card, qty)
		VALUES `+strings.Join(values, ", ")+`
		ON DUPLICATE KEY UPDATE qty = qty + VALUES(qty)`, args...); err != nil {
		return fmt.Errorf("更新玩家资源失败: %w", err)
	}

	var negative int
	if err := t.tx.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM player_resources_card
		WHERE qty < 0 AND id_player IN (`+placeholders(len(ids))+`)`, ids...).Scan(&negative); err != nil {
		return fmt.Errorf("校验玩家资源失败: %w", err)
	}
	if negative > 0 {
		return engine.ErrInsufficientResources.With("%d ledger rows would go negative", negative)
	}

	var cases []string
	var bankArgs []any
	for i, r := range entities.TradeableResources {
		if circulation[i] == 0 {
			continue
		}
		cases = append(cases, "WHEN ? THEN ?")
		bankArgs = append(bankArgs, int(r), circulation[i])
	}
	if len(cases) == 0 {
		return nil
	}
	if _, err := t.tx.ExecContext(ctx, `
		UPDATE resources_card
		SET current_count = current_count + CASE id `+strings.Join(cases, " ")+` ELSE 0 END`, bankArgs...); err != nil {
		return fmt.Errorf("更新银行资源失败: %w", err)
	}
	return nil
}

func (t *mysqlTx) LockHexagons(ctx context.Context) ([]entities.Hexagon, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, q, r, resource_id, dice_number, letter, is_thief
		FROM hexagon
		ORDER BY id`+t.lock)
	if err != nil {
		return nil, fmt.Errorf("读取地图失败: %w", err)
	}
	defer rows.Close()

	var out []entities.Hexagon
	for rows.Next() {
		var (
			h    entities.Hexagon
			res  int
			dice sql.NullInt64
		)
		if err := rows.Scan(&h.ID, &h.Q, &h.R, &res, &dice, &h.Letter, &h.IsThief); err != nil {
			return nil, fmt.Errorf("解析地图失败: %w", err)
		}
		h.Resource = entities.ResourceType(res)
		if dice.Valid {
			n := int(dice.Int64)
			h.DiceNumber = &n
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (t *mysqlTx) UpdateHexagons(ctx context.Context, hexes []entities.Hexagon) error {
	stmt, err := t.tx.PrepareContext(ctx, `UPDATE hexagon SET resource_id = ?, dice_number = ?, letter = ?, is_thief = ? WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("准备更新地图失败: %w", err)
	}
	defer stmt.Close()
	for _, h := range hexes {
		if _, err := stmt.ExecContext(ctx, int(h.Resource), nullInt(h.DiceNumber), h.Letter, h.IsThief, h.ID); err != nil {
			return fmt.Errorf("更新地图[%d]失败: %w", h.ID, err)
		}
	}
	return nil
}

func (t *mysqlTx) MoveThief(ctx context.Context, hexID int) error {
	res, err := t.tx.ExecContext(ctx, `UPDATE hexagon SET is_thief = (id = ?)`, hexID)
	if err != nil {
		return fmt.Errorf("移动强盗失败: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return engine.ErrTileNotFound.With("hex %d", hexID)
	}
	return nil
}

func (t *mysqlTx) HexTowns(ctx context.Context) ([]entities.HexTown, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT from_hexagon_id, to_town_id
		FROM hexagon_conections
		ORDER BY from_hexagon_id, to_town_id`)
	if err != nil {
		return nil, fmt.Errorf("读取地图连接失败: %w", err)
	}
	defer rows.Close()

	var out []entities.HexTown
	for rows.Next() {
		var l entities.HexTown
		if err := rows.Scan(&l.HexID, &l.TownID); err != nil {
			return nil, fmt.Errorf("解析地图连接失败: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (t *mysqlTx) LockTowns(ctx context.Context) ([]entities.Town, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, pos_x, pos_y, COALESCE(player_id, 0), level
		FROM town
		ORDER BY id`+t.lock)
	if err != nil {
		return nil, fmt.Errorf("读取城镇失败: %w", err)
	}
	defer rows.Close()

	var out []entities.Town
	for rows.Next() {
		var tw entities.Town
		if err := rows.Scan(&tw.ID, &tw.X, &tw.Y, &tw.PlayerID, &tw.Level); err != nil {
			return nil, fmt.Errorf("解析城镇失败: %w", err)
		}
		out = append(out, tw)
	}
	return out, rows.Err()
}

func (t *mysqlTx) UpdateTown(ctx context.Context, town entities.Town) error {
	if _, err := t.tx.ExecContext(ctx, `UPDATE town SET player_id = NULLIF(?, 0), level = ? WHERE id = ?`,
		town.PlayerID, town.Level, town.ID); err != nil {
		return fmt.Errorf("更新城镇[%d]失败: %w", town.ID, err)
	}
	return nil
}

func (t *mysqlTx) LockRoads(ctx context.Context) ([]entities.Road, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, from_town_id, to_town_id, COALESCE(player_id, 0)
		FROM town_conections
		ORDER BY id`+t.lock)
	if err != nil {
		return nil, fmt.Errorf("读取道路失败: %w", err)
	}
	defer rows.Close()

	var out []entities.Road
	for rows.Next() {
		var r entities.Road
		if err := rows.Scan(&r.ID, &r.FromTown, &r.ToTown, &r.PlayerID); err != nil {
			return nil, fmt.Errorf("解析道路失败: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (t *mysqlTx) UpdateRoad(ctx context.Context, r entities.Road) error {
	if _, err := t.tx.ExecContext(ctx, `UPDATE town_conections SET player_id = NULLIF(?, 0) WHERE id = ?`, r.PlayerID, r.ID); err != nil {
		return fmt.Errorf("更新道路[%d]失败: %w", r.ID, err)
	}
	return nil
}

func (t *mysqlTx) LockCardPools(ctx context.Context) ([]entities.CardPool, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, card_name, max_count, current_count
		FROM random_card
		ORDER BY id`+t.lock)
	if err != nil {
		return nil, fmt.Errorf("读取发展卡失败: %w", err)
	}
	defer rows.Close()

	var out []entities.CardPool
	for rows.Next() {
		var c entities.CardPool
		var id int
		if err := rows.Scan(&id, &c.Name, &c.MaxCount, &c.CurrentCount); err != nil {
			return nil, fmt.Errorf("解析发展卡失败: %w", err)
		}
		c.Kind = entities.CardKind(id)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (t *mysqlTx) IncrementCardDrawn(ctx context.Context, kind entities.CardKind) (bool, error) {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE random_card
		SET current_count = current_count + 1
		WHERE id = ? AND current_count < max_count`, int(kind))
	if err != nil {
		return false, fmt.Errorf("更新发展卡失败: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("读取影响行数失败: %w", err)
	}
	return n == 1, nil
}

func (t *mysqlTx) AddPlayerCard(ctx context.Context, playerID int64, kind entities.CardKind) error {
	if _, err := t.tx.ExecContext(ctx, `
		INSERT INTO player_random_card (id_player, id_card, qty) VALUES (?, ?, 1)
		ON DUPLICATE KEY UPDATE qty = qty + 1`, playerID, int(kind)); err != nil {
		return fmt.Errorf("发放发展卡失败: %w", err)
	}
	return nil
}

func (t *mysqlTx) PlayerCards(ctx context.Context, playerID int64) (map[entities.CardKind]int, error) {
	rows, err := t.tx.QueryContext(ctx, `SELECT id_card, qty FROM player_random_card WHERE id_player = ?`, playerID)
	if err != nil {
		return nil, fmt.Errorf("读取玩家发展卡失败: %w", err)
	}
	defer rows.Close()

	out := make(map[entities.CardKind]int)
	for rows.Next() {
		var id, qty int
		if err := rows.Scan(&id, &qty); err != nil {
			return nil, fmt.Errorf("解析玩家发展卡失败: %w", err)
		}
		out[entities.CardKind(id)] = qty
	}
	return out, rows.Err()
}

const tradeColumns = `id, from_id_player, to_id_player, from_resource_ids, to_resource_ids, created_at`

func scanTrade(row interface{ Scan(...any) error }) (entities.TradeNotification, error) {
	var (
		tn       entities.TradeNotification
		fromJSON []byte
		toJSON   []byte
	)
	if err := row.Scan(&tn.ID, &tn.FromPlayer, &tn.ToPlayer, &fromJSON, &toJSON, &tn.CreatedAt); err != nil {
		return tn, err
	}
	from, err := decodeVector(fromJSON)
	if err != nil {
		return tn, fmt.Errorf("trade %d from_resource_ids: %w", tn.ID, err)
	}
	tn.FromOffer = from
	if toJSON != nil {
		to, err := decodeVector(toJSON)
		if err != nil {
			return tn, fmt.Errorf("trade %d to_resource_ids: %w", tn.ID, err)
		}
		tn.ToOffer = &to
	}
	return tn, nil
}

func decodeVector(raw []byte) (entities.ResourceVector, error) {
	var qty []int
	if err := json.Unmarshal(raw, &qty); err != nil {
		return entities.ResourceVector{}, err
	}
	return entities.VectorFromSlice(qty)
}

func encodeVector(v entities.ResourceVector) (string, error) {
	b, err := json.Marshal(v.Slice())
	return string(b), err
}

func (t *mysqlTx) LockTrade(ctx context.Context, id int64) (entities.TradeNotification, error) {
	tn, err := scanTrade(t.tx.QueryRowContext(ctx, `SELECT `+tradeColumns+` FROM trade_notifications WHERE id = ?`+t.lock, id))
	if errors.Is(err, sql.ErrNoRows) {
		return tn, engine.ErrTradeNotFound.With("trade %d", id)
	}
	if err != nil {
		return tn, fmt.Errorf("读取交易失败: %w", err)
	}
	return tn, nil
}

func (t *mysqlTx) LockTradeBetween(ctx context.Context, from, to int64) (*entities.TradeNotification, error) {
	tn, err := scanTrade(t.tx.QueryRowContext(ctx, `
		SELECT `+tradeColumns+`
		FROM trade_notifications
		WHERE from_id_player = ? AND to_id_player = ?`+t.lock, from, to))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取交易失败: %w", err)
	}
	return &tn, nil
}

func (t *mysqlTx) InsertTrade(ctx context.Context, tn entities.TradeNotification) (int64, error) {
	from, err := encodeVector(tn.FromOffer)
	if err != nil {
		return 0, err
	}
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO trade_notifications (from_id_player, to_id_player, from_resource_ids)
		VALUES (?, ?, CAST(? AS JSON))`, tn.FromPlayer, tn.ToPlayer, from)
	if isDuplicate(err) {
		return 0, engine.ErrTradeAlreadyOpen
	}
	if err != nil {
		return 0, fmt.Errorf("创建交易失败: %w", err)
	}
	return res.LastInsertId()
}

func (t *mysqlTx) UpdateTradeCounter(ctx context.Context, id int64, counter entities.ResourceVector) error {
	to, err := encodeVector(counter)
	if err != nil {
		return err
	}
	if _, err := t.tx.ExecContext(ctx, `UPDATE trade_notifications SET to_resource_ids = CAST(? AS JSON) WHERE id = ?`, to, id); err != nil {
		return fmt.Errorf("更新交易失败: %w", err)
	}
	return nil
}

func (t *mysqlTx) DeleteTrade(ctx context.Context, id int64) (bool, error) {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM trade_notifications WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("删除交易失败: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("读取影响行数失败: %w", err)
	}
	return n == 1, nil
}

func (t *mysqlTx) TradesFor(ctx context.Context, playerID int64) ([]entities.TradeNotification, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT `+tradeColumns+`
		FROM trade_notifications
		WHERE from_id_player = ? OR to_id_player = ?
		ORDER BY id`, playerID, playerID)
	if err != nil {
		return nil, fmt.Errorf("读取交易列表失败: %w", err)
	}
	defer rows.Close()

	var out []entities.TradeNotification
	for rows.Next() {
		tn, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("解析交易失败: %w", err)
		}
		out = append(out, tn)
	}
	return out, rows.Err()
}
