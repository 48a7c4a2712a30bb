package vocab

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// ErrWordNotFound is returned by lookups for unknown words or themes.
var ErrWordNotFound = errors.New("word not found")

// Store is the SQLite-backed vocabulary catalog. Content is written
// once at startup by the import methods and read-only afterwards.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the vocabulary database at path and
// runs migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening vocabulary db: %w", err)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma: %w", err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS vocabulary (
		id TEXT PRIMARY KEY,
		japanese TEXT NOT NULL,
		romaji TEXT NOT NULL,
		english TEXT NOT NULL,
		jlpt_level INTEGER NOT NULL,
		part_of_speech TEXT NOT NULL DEFAULT '',
		example_sentence TEXT NOT NULL DEFAULT '',
		example_translation TEXT NOT NULL DEFAULT '',
		usage_notes TEXT NOT NULL DEFAULT ''
	);
	CREATE TABLE IF NOT EXISTS vocabulary_themes (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT ''
	);
	CREATE TABLE IF NOT EXISTS vocabulary_theme_words (
		theme_id TEXT NOT NULL,
		word_id TEXT NOT NULL,
		PRIMARY KEY (theme_id, word_id),
		FOREIGN KEY (theme_id) REFERENCES vocabulary_themes(id) ON DELETE CASCADE,
		FOREIGN KEY (word_id) REFERENCES vocabulary(id) ON DELETE CASCADE
	);`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("migrating vocabulary schema: %w", err)
	}
	return nil
}

// ImportWords upserts words into the catalog.
func (s *Store) ImportWords(words []Word) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO vocabulary (id, japanese, romaji, english, jlpt_level, part_of_speech, example_sentence, example_translation, usage_notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			japanese = excluded.japanese,
			romaji = excluded.romaji,
			english = excluded.english,
			jlpt_level = excluded.jlpt_level,
			part_of_speech = excluded.part_of_speech,
			example_sentence = excluded.example_sentence,
			example_translation = excluded.example_translation,
			usage_notes = excluded.usage_notes`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, w := range words {
		if _, err := stmt.Exec(w.ID, w.Japanese, w.Romaji, w.English, w.JLPTLevel,
			w.PartOfSpeech, w.ExampleSentence, w.ExampleTranslation, w.UsageNotes); err != nil {
			return fmt.Errorf("importing word %s: %w", w.ID, err)
		}
	}
	return tx.Commit()
}

// ImportThemes upserts themes and their word memberships. Memberships
// pointing at unknown words are skipped rather than failing the import.
func (s *Store) ImportThemes(themes []Theme) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, t := range themes {
		if _, err := tx.Exec(`
			INSERT INTO vocabulary_themes (id, name, description) VALUES (?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name, description = excluded.description`,
			t.ID, t.Name, t.Description); err != nil {
			return fmt.Errorf("importing theme %s: %w", t.ID, err)
		}
		for _, wordID := range t.Words {
			if _, err := tx.Exec(`
				INSERT OR IGNORE INTO vocabulary_theme_words (theme_id, word_id)
				SELECT ?, id FROM vocabulary WHERE id = ?`,
				t.ID, wordID); err != nil {
				return fmt.Errorf("linking theme %s word %s: %w", t.ID, wordID, err)
			}
		}
	}
	return tx.Commit()
}

// ImportDir loads jlpt_n*.json word files and themes.json from a
// content directory. Missing files are not an error.
func (s *Store) ImportDir(dir string) error {
	files, err := DiscoverWordFiles(dir)
	if err != nil {
		return err
	}
	for _, f := range files {
		words, err := LoadWordsFile(f)
		if err != nil {
			return err
		}
		if err := s.ImportWords(words); err != nil {
			return err
		}
	}

	themesPath := filepath.Join(dir, "themes.json")
	themes, err := LoadThemesFile(themesPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return s.ImportThemes(themes)
}

// WordByID fetches a word by exact id.
func (s *Store) WordByID(id string) (*Word, error) {
	return s.queryWord("WHERE id = ?", id)
}

// FindWord matches a query against japanese, romaji, english or id,
// case-insensitively; exact matches win over substring matches.
func (s *Store) FindWord(query string) (*Word, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, ErrWordNotFound
	}
	w, err := s.queryWord(
		"WHERE lower(japanese) = ? OR lower(romaji) = ? OR lower(english) = ? OR id = ?",
		q, q, q, q)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, ErrWordNotFound) {
		return nil, err
	}
	like := "%" + q + "%"
	return s.queryWord(
		"WHERE lower(japanese) LIKE ? OR lower(romaji) LIKE ? OR lower(english) LIKE ? ORDER BY jlpt_level DESC",
		like, like, like)
}

func (s *Store) queryWord(where string, args ...any) (*Word, error) {
	row := s.db.QueryRow(`
		SELECT id, japanese, romaji, english, jlpt_level, part_of_speech, example_sentence, example_translation, usage_notes
		FROM vocabulary `+where+" LIMIT 1", args...)
	var w Word
	err := row.Scan(&w.ID, &w.Japanese, &w.Romaji, &w.English, &w.JLPTLevel,
		&w.PartOfSpeech, &w.ExampleSentence, &w.ExampleTranslation, &w.UsageNotes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// Themes lists all themes ordered by name, word ids included.
func (s *Store) Themes() ([]Theme, error) {
	rows, err := s.db.Query("SELECT id, name, description FROM vocabulary_themes ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var themes []Theme
	for rows.Next() {
		var t Theme
		if err := rows.Scan(&t.ID, &t.Name, &t.Description); err != nil {
			return nil, err
		}
		themes = append(themes, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range themes {
		ids, err := s.themeWordIDs(themes[i].ID)
		if err != nil {
			return nil, err
		}
		themes[i].Words = ids
	}
	return themes, nil
}

// ThemeByName fetches a theme by case-insensitive name or id.
func (s *Store) ThemeByName(name string) (*Theme, error) {
	q := strings.ToLower(strings.TrimSpace(name))
	row := s.db.QueryRow(
		"SELECT id, name, description FROM vocabulary_themes WHERE lower(name) = ? OR id = ? LIMIT 1", q, q)
	var t Theme
	err := row.Scan(&t.ID, &t.Name, &t.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWordNotFound
	}
	if err != nil {
		return nil, err
	}
	ids, err := s.themeWordIDs(t.ID)
	if err != nil {
		return nil, err
	}
	t.Words = ids
	return &t, nil
}

// ThemeWords fetches the full word records belonging to a theme.
func (s *Store) ThemeWords(themeID string) ([]Word, error) {
	rows, err := s.db.Query(`
		SELECT v.id, v.japanese, v.romaji, v.english, v.jlpt_level, v.part_of_speech, v.example_sentence, v.example_translation, v.usage_notes
		FROM vocabulary v
		JOIN vocabulary_theme_words tw ON tw.word_id = v.id
		WHERE tw.theme_id = ?
		ORDER BY v.jlpt_level DESC, v.romaji`, themeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var words []Word
	for rows.Next() {
		var w Word
		if err := rows.Scan(&w.ID, &w.Japanese, &w.Romaji, &w.English, &w.JLPTLevel,
			&w.PartOfSpeech, &w.ExampleSentence, &w.ExampleTranslation, &w.UsageNotes); err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	return words, rows.Err()
}

func (s *Store) themeWordIDs(themeID string) ([]string, error) {
	rows, err := s.db.Query("SELECT word_id FROM vocabulary_theme_words WHERE theme_id = ? ORDER BY word_id", themeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// WordCount reports the number of imported words.
func (s *Store) WordCount() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM vocabulary").Scan(&n)
	return n, err
}
