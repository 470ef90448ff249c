// Package store persists analysis history, the learner's word collection and
// the mastered-word set in sqlite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mxppxm/english-tutor/internal/logger"
)

type Store struct {
	db  *sql.DB
	log *logger.Logger
}

func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS analysis_history (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp       DATETIME NOT NULL,
		title           TEXT NOT NULL DEFAULT '',
		original_text   TEXT NOT NULL DEFAULT '',
		analysis_result TEXT NOT NULL DEFAULT '{}',
		preview         TEXT NOT NULL DEFAULT '',
		word_count      INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_history_timestamp ON analysis_history(timestamp);
	CREATE INDEX IF NOT EXISTS idx_history_title ON analysis_history(title);

	CREATE TABLE IF NOT EXISTS word_collection (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		word            TEXT NOT NULL,
		translation     TEXT DEFAULT '',
		context         TEXT DEFAULT '',
		source_sentence TEXT DEFAULT '',
		created_at      DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_word_collection_word ON word_collection(word);

	CREATE TABLE IF NOT EXISTS mastered_words (
		word        TEXT PRIMARY KEY,
		mastered_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}

	return &Store{db: db, log: logger.New("Store")}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// HistoryRecord is one saved analysis.
type HistoryRecord struct {
	ID             int64           `json:"id"`
	Timestamp      time.Time       `json:"timestamp"`
	Title          string          `json:"title"`
	OriginalText   string          `json:"originalText"`
	AnalysisResult json.RawMessage `json:"analysisResult"`
	Preview        string          `json:"preview"`
	WordCount      int             `json:"wordCount"`
}

// SaveHistory stores an analysis result, deriving the preview and word count
// from the original text.
func (s *Store) SaveHistory(title, originalText string, analysisResult json.RawMessage) (int64, error) {
	if title == "" {
		title = "英文精讲"
	}
	res, err := s.db.Exec(
		`INSERT INTO analysis_history (timestamp, title, original_text, analysis_result, preview, word_count)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		time.Now().UTC(), title, originalText, string(analysisResult),
		preview(originalText), wordCount(originalText),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) ListHistory(limit, offset int) ([]HistoryRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, timestamp, title, original_text, analysis_result, preview, word_count
		 FROM analysis_history ORDER BY timestamp DESC, id DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]HistoryRecord, 0)
	for rows.Next() {
		var rec HistoryRecord
		var result string
		if err := rows.Scan(&rec.ID, &rec.Timestamp, &rec.Title, &rec.OriginalText, &result, &rec.Preview, &rec.WordCount); err != nil {
			return nil, err
		}
		rec.AnalysisResult = json.RawMessage(result)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *Store) GetHistory(id int64) (*HistoryRecord, error) {
	var rec HistoryRecord
	var result string
	err := s.db.QueryRow(
		`SELECT id, timestamp, title, original_text, analysis_result, preview, word_count
		 FROM analysis_history WHERE id = ?`, id).
		Scan(&rec.ID, &rec.Timestamp, &rec.Title, &rec.OriginalText, &result, &rec.Preview, &rec.WordCount)
	if err != nil {
		return nil, err
	}
	rec.AnalysisResult = json.RawMessage(result)
	return &rec, nil
}

func (s *Store) DeleteHistory(id int64) error {
	_, err := s.db.Exec(`DELETE FROM analysis_history WHERE id = ?`, id)
	return err
}

func (s *Store) ClearHistory() error {
	_, err := s.db.Exec(`DELETE FROM analysis_history`)
	return err
}

// PurgeHistoryBefore deletes records older than the cutoff and returns how
// many were removed.
func (s *Store) PurgeHistoryBefore(cutoff time.Time) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM analysis_history WHERE timestamp < ?`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CollectedWord is one bookmarked vocabulary item.
type CollectedWord struct {
	ID             int64     `json:"id"`
	Word           string    `json:"word"`
	Translation    string    `json:"translation"`
	Context        string    `json:"context"`
	SourceSentence string    `json:"sourceSentence"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (s *Store) AddWord(w CollectedWord) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO word_collection (word, translation, context, source_sentence) VALUES (?, ?, ?, ?)`,
		w.Word, w.Translation, w.Context, w.SourceSentence)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) ListWords() ([]CollectedWord, error) {
	rows, err := s.db.Query(
		`SELECT id, word, translation, context, source_sentence, created_at
		 FROM word_collection ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	words := make([]CollectedWord, 0)
	for rows.Next() {
		var w CollectedWord
		if err := rows.Scan(&w.ID, &w.Word, &w.Translation, &w.Context, &w.SourceSentence, &w.CreatedAt); err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	return words, rows.Err()
}

func (s *Store) DeleteWord(id int64) error {
	_, err := s.db.Exec(`DELETE FROM word_collection WHERE id = ?`, id)
	return err
}

// Mastered words are keyed by lowercased word text.

func (s *Store) MasterWord(word string) error {
	_, err := s.db.Exec(
		`INSERT INTO mastered_words (word) VALUES (?) ON CONFLICT(word) DO NOTHING`,
		strings.ToLower(strings.TrimSpace(word)))
	return err
}

func (s *Store) UnmasterWord(word string) error {
	_, err := s.db.Exec(`DELETE FROM mastered_words WHERE word = ?`, strings.ToLower(strings.TrimSpace(word)))
	return err
}

func (s *Store) ListMastered() ([]string, error) {
	rows, err := s.db.Query(`SELECT word FROM mastered_words ORDER BY word`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	words := make([]string, 0)
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	return words, rows.Err()
}

func preview(text string) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= 100 {
		return text
	}
	return string(runes[:100]) + "..."
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}
