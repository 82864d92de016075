package repository

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"go-catan/engine"
	"go-catan/entities"

	"github.com/go-sql-driver/mysql"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		contention bool
	}{
		{"lock wait timeout", &mysql.MySQLError{Number: errLockWaitTimeout, Message: "Lock wait timeout exceeded"}, true},
		{"deadlock", &mysql.MySQLError{Number: errDeadlock, Message: "Deadlock found"}, true},
		{"wrapped deadlock", fmt.Errorf("读取会话失败: %w", &mysql.MySQLError{Number: errDeadlock}), true},
		{"duplicate", &mysql.MySQLError{Number: errDuplicateEntry}, false},
		{"foreign", errors.New("connection reset"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translate(tt.err)
			if errors.Is(got, engine.ErrStoreContention) != tt.contention {
				t.Fatalf("translate(%v) = %v", tt.err, got)
			}
			if !tt.contention && got != tt.err {
				t.Fatalf("non-contention error was rewritten: %v", got)
			}
			if tt.contention && engine.KindOf(got) != engine.KindConflict {
				t.Fatalf("contention kind = %v", engine.KindOf(got))
			}
		})
	}
}

func TestIsDuplicate(t *testing.T) {
	if !isDuplicate(fmt.Errorf("插入用户失败: %w", &mysql.MySQLError{Number: errDuplicateEntry})) {
		t.Fatalf("wrapped 1062 not detected")
	}
	if isDuplicate(&mysql.MySQLError{Number: errDeadlock}) || isDuplicate(errors.New("1062")) {
		t.Fatalf("non-duplicate reported as duplicate")
	}
}

func TestPlaceholders(t *testing.T) {
	tests := map[int]string{1: "?", 3: "?,?,?"}
	for n, want := range tests {
		if got := placeholders(n); got != want {
			t.Fatalf("placeholders(%d) = %q, want %q", n, got, want)
		}
	}
}

type fakeRow []any

func (r fakeRow) Scan(dest ...any) error {
	if len(dest) != len(r) {
		return fmt.Errorf("scan %d columns into %d targets", len(r), len(dest))
	}
	for i, v := range r {
		switch d := dest[i].(type) {
		case *int64:
			*d = v.(int64)
		case *[]byte:
			if v == nil {
				*d = nil
			} else {
				*d = []byte(v.(string))
			}
		case *time.Time:
			*d = v.(time.Time)
		default:
			return fmt.Errorf("unexpected target %T", d)
		}
	}
	return nil
}

func TestScanTrade(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tn, err := scanTrade(fakeRow{int64(7), int64(1), int64(2), "[1,0,2,0,0]", nil, at})
	if err != nil {
		t.Fatalf("scan open trade: %v", err)
	}
	if tn.ID != 7 || tn.FromPlayer != 1 || tn.ToPlayer != 2 || tn.ToOffer != nil || !tn.CreatedAt.Equal(at) {
		t.Fatalf("trade = %+v", tn)
	}
	if tn.FromOffer.Get(entities.Wood) != 1 || tn.FromOffer.Get(entities.Sheep) != 2 {
		t.Fatalf("offer = %v", tn.FromOffer)
	}

	tn, err = scanTrade(fakeRow{int64(8), int64(1), int64(2), "[1]", "[0,0,0,0,3]", at})
	if err != nil {
		t.Fatalf("scan countered trade: %v", err)
	}
	if tn.ToOffer == nil || tn.ToOffer.Get(entities.Ore) != 3 {
		t.Fatalf("counter = %v", tn.ToOffer)
	}

	if _, err := scanTrade(fakeRow{int64(9), int64(1), int64(2), "[-1]", nil, at}); err == nil {
		t.Fatalf("negative offer accepted")
	}
	if _, err := scanTrade(fakeRow{int64(9), int64(1), int64(2), "[1]", "{", at}); err == nil {
		t.Fatalf("malformed counter accepted")
	}
}

func TestEncodeVectorRoundTrip(t *testing.T) {
	var v entities.ResourceVector
	v.Add(entities.Brick, 2)
	v.Add(entities.Wheat, 1)
	raw, err := encodeVector(v)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if raw != "[0,2,0,1,0]" {
		t.Fatalf("encoded = %s", raw)
	}
	back, err := decodeVector([]byte(raw))
	if err != nil || back != v {
		t.Fatalf("decoded %v %v", back, err)
	}
}

func TestSchemaStatements(t *testing.T) {
	var tables []string
	for _, stmt := range strings.Split(schemaSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if !strings.HasPrefix(strings.ToUpper(stmt), "CREATE TABLE") {
			t.Fatalf("unexpected statement %q", stmt)
		}
		tables = append(tables, stmt)
	}
	for _, name := range []string{"player_resources_card", "resources_card", "random_card", "player_random_card"} {
		found := false
		for _, stmt := range tables {
			if strings.Contains(stmt, name+" ") || strings.Contains(stmt, name+"`") || strings.Contains(stmt, name+"(") {
				found = true
			}
		}
		if !found {
			t.Fatalf("schema has no table %s", name)
		}
	}
}
