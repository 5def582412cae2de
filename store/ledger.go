package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MatchResult is one finished match in the ledger.
type MatchResult struct {
	ID        uint   `gorm:"primaryKey"`
	MatchID   string `gorm:"uniqueIndex;not null"`
	Map       string `gorm:"index"`
	Player1   string `gorm:"index"` // strategy name
	Player2   string `gorm:"index"`
	Outcome   string
	Winner    int
	Alive1    int
	Alive2    int
	Turns     int
	Result    string
	CreatedAt time.Time
}

// Standing is the aggregate record of one strategy across the ledger.
type Standing struct {
	Strategy string
	Played   int
	Wins     int
	Losses   int
	Ties     int
}

// Points scores a win as 3 and a tie as 1.
func (s Standing) Points() int { return s.Wins*3 + s.Ties }

// Ledger stores match results in sqlite.
type Ledger struct {
	db *gorm.DB
}

// OpenLedger opens (creating if needed) the sqlite ledger at path. An empty
// path opens a private in-memory database.
func OpenLedger(path string) (*Ledger, error) {
	dsn := path
	if dsn == "" {
		dsn = "file::memory:"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	// one connection: tournament workers write concurrently and an in-memory
	// database exists per connection
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&MatchResult{}); err != nil {
		return nil, fmt.Errorf("migrate ledger: %w", err)
	}
	return &Ledger{db: db}, nil
}

func (l *Ledger) Close() error {
	sqlDB, err := l.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Record inserts r. Recording the same MatchID twice is an error.
func (l *Ledger) Record(ctx context.Context, r *MatchResult) error {
	if r.MatchID == "" {
		return errors.New("match id is required")
	}
	if err := l.db.WithContext(ctx).Create(r).Error; err != nil {
		return fmt.Errorf("record match %s: %w", r.MatchID, err)
	}
	return nil
}

// Recent returns up to limit results, newest first.
func (l *Ledger) Recent(ctx context.Context, limit int) ([]MatchResult, error) {
	var out []MatchResult
	if err := l.db.WithContext(ctx).Order("id desc").Limit(limit).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	return out, nil
}

// Standings aggregates every result by strategy, best first.
func (l *Ledger) Standings(ctx context.Context) ([]Standing, error) {
	var rows []MatchResult
	if err := l.db.WithContext(ctx).Select("player1", "player2", "winner").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}

	byName := make(map[string]*Standing)
	get := func(name string) *Standing {
		s, ok := byName[name]
		if !ok {
			s = &Standing{Strategy: name}
			byName[name] = s
		}
		return s
	}
	for _, r := range rows {
		p1, p2 := get(r.Player1), get(r.Player2)
		p1.Played++
		p2.Played++
		switch r.Winner {
		case 1:
			p1.Wins++
			p2.Losses++
		case 2:
			p2.Wins++
			p1.Losses++
		default:
			p1.Ties++
			p2.Ties++
		}
	}

	out := make([]Standing, 0, len(byName))
	for _, s := range byName {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Points() != out[j].Points() {
			return out[i].Points() > out[j].Points()
		}
		return out[i].Strategy < out[j].Strategy
	})
	return out, nil
}
