package vocab

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testWords() []Word {
	return []Word{
		{ID: "word_ocha", Japanese: "お茶", Romaji: "ocha", English: "tea", JLPTLevel: 5, PartOfSpeech: "noun",
			ExampleSentence: "お茶を飲みます。", ExampleTranslation: "I drink tea."},
		{ID: "word_jinja", Japanese: "神社", Romaji: "jinja", English: "shrine", JLPTLevel: 5, PartOfSpeech: "noun"},
		{ID: "word_kawa", Japanese: "川", Romaji: "kawa", English: "river", JLPTLevel: 5, PartOfSpeech: "noun"},
	}
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "vocab.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if err := s.ImportWords(testWords()); err != nil {
		t.Fatalf("importing words: %v", err)
	}
	if err := s.ImportThemes([]Theme{
		{ID: "theme_nature", Name: "Nature", Description: "Outdoors words",
			Words: []string{"word_kawa", "word_jinja", "word_missing"}},
	}); err != nil {
		t.Fatalf("importing themes: %v", err)
	}
	return s
}

func TestFindWordExactAndSubstring(t *testing.T) {
	s := openTestStore(t)

	for _, q := range []string{"ocha", "お茶", "TEA", "word_ocha"} {
		w, err := s.FindWord(q)
		if err != nil {
			t.Errorf("FindWord(%q): %v", q, err)
			continue
		}
		if w.ID != "word_ocha" {
			t.Errorf("FindWord(%q) = %s, want word_ocha", q, w.ID)
		}
	}

	if w, err := s.FindWord("shri"); err != nil || w.ID != "word_jinja" {
		t.Errorf("substring match failed: %v %v", w, err)
	}

	if _, err := s.FindWord("katana"); !errors.Is(err, ErrWordNotFound) {
		t.Errorf("expected ErrWordNotFound, got %v", err)
	}
	if _, err := s.FindWord(""); !errors.Is(err, ErrWordNotFound) {
		t.Errorf("empty query should be not-found, got %v", err)
	}
}

func TestImportIsIdempotent(t *testing.T) {
	s := openTestStore(t)

	if err := s.ImportWords(testWords()); err != nil {
		t.Fatalf("re-import: %v", err)
	}
	n, err := s.WordCount()
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("expected 3 words after re-import, got %d", n)
	}
}

func TestThemesSkipUnknownWords(t *testing.T) {
	s := openTestStore(t)

	theme, err := s.ThemeByName("nature")
	if err != nil {
		t.Fatalf("ThemeByName: %v", err)
	}
	if len(theme.Words) != 2 {
		t.Errorf("expected 2 linked words (unknown skipped), got %v", theme.Words)
	}

	words, err := s.ThemeWords(theme.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(words) != 2 {
		t.Errorf("expected 2 theme words, got %d", len(words))
	}

	if _, err := s.ThemeByName("cooking"); !errors.Is(err, ErrWordNotFound) {
		t.Errorf("expected not found for unknown theme, got %v", err)
	}
}

func TestImportDirEasierLevelWinsCollisions(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("jlpt_n1.json", `[{"id": "word_hashi", "japanese": "端", "romaji": "hashi",
		"english": "edge", "jlpt_level": 1, "part_of_speech": "noun"}]`)
	write("jlpt_n5.json", `[{"id": "word_hashi", "japanese": "箸", "romaji": "hashi",
		"english": "chopsticks", "jlpt_level": 5, "part_of_speech": "noun"}]`)

	files, err := DiscoverWordFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 || filepath.Base(files[1]) != "jlpt_n5.json" {
		t.Fatalf("easiest file must import last, got %v", files)
	}

	s, err := Open(filepath.Join(t.TempDir(), "vocab.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	// No themes.json in dir; that must not be an error.
	if err := s.ImportDir(dir); err != nil {
		t.Fatalf("ImportDir: %v", err)
	}

	w, err := s.WordByID("word_hashi")
	if err != nil {
		t.Fatalf("WordByID: %v", err)
	}
	if w.JLPTLevel != 5 || w.English != "chopsticks" {
		t.Errorf("collision resolved to %+v, want the N5 entry", w)
	}
}

func TestWordCard(t *testing.T) {
	w := testWords()[0]
	card := w.Card()
	for _, want := range []string{"お茶", "ocha", "tea", "N5", "お茶を飲みます。"} {
		if !strings.Contains(card, want) {
			t.Errorf("card missing %q:\n%s", want, card)
		}
	}
}
