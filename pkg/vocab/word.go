// Package vocab holds the JLPT vocabulary catalog: words and themes
// imported from JSON content files into a SQLite store at startup.
package vocab

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Word is one Japanese vocabulary entry.
type Word struct {
	ID                 string `json:"id"`
	Japanese           string `json:"japanese"`
	Romaji             string `json:"romaji"`
	English            string `json:"english"`
	JLPTLevel          int    `json:"jlpt_level"` // 5 (easiest) to 1
	PartOfSpeech       string `json:"part_of_speech"`
	ExampleSentence    string `json:"example_sentence,omitempty"`
	ExampleTranslation string `json:"example_translation,omitempty"`
	UsageNotes         string `json:"usage_notes,omitempty"`
}

// Card renders the word as the player-facing study card.
func (w *Word) Card() string {
	s := fmt.Sprintf("%s (%s) - %s [N%d, %s]", w.Japanese, w.Romaji, w.English, w.JLPTLevel, w.PartOfSpeech)
	if w.ExampleSentence != "" {
		s += "\n  " + w.ExampleSentence
		if w.ExampleTranslation != "" {
			s += "\n  " + w.ExampleTranslation
		}
	}
	if w.UsageNotes != "" {
		s += "\n  Note: " + w.UsageNotes
	}
	return s
}

// Theme groups words around a topic (food, travel, shrine visits...).
type Theme struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Words       []string `json:"words"` // word ids
}

// LoadWordsFile reads one JSON array of words.
func LoadWordsFile(path string) ([]Word, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var words []Word
	if err := json.Unmarshal(data, &words); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return words, nil
}

// LoadThemesFile reads one JSON array of themes.
func LoadThemesFile(path string) ([]Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var themes []Theme
	if err := json.Unmarshal(data, &themes); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return themes, nil
}

// DiscoverWordFiles lists the jlpt_n*.json files in a content
// directory, easiest level last so its entries win id collisions on
// import.
func DiscoverWordFiles(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "jlpt_n*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}
