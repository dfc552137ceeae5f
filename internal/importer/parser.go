package importer

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/models"
)

// ParsedQuestion is one question block read from a document
type ParsedQuestion struct {
	Number        int
	Text          string
	Answers       []ParsedAnswer
	CorrectLetter string
}

type ParsedAnswer struct {
	Letter string
	Text   string
}

var (
	ErrNoQuestions       = errors.New("no questions found")
	ErrMalformedQuestion = errors.New("malformed question block")

	headerPattern = regexp.MustCompile(`(?i)##.*?(\d+)\s*-\s*savol`)
	answerPattern = regexp.MustCompile(`^([A-D])\)\s*(.+)$`)
)

// Parse reads question blocks of the form
//
//	## 1-savol
//	Question text
//	A) ...
//	B) ...
//	C) ...
//	D) ...
//	Javob: B
//
// Any malformed block rejects the whole document; a partial set is never returned.
func Parse(paragraphs []string) ([]ParsedQuestion, error) {
	var (
		out     []ParsedQuestion
		current *ParsedQuestion
		seq     int
	)

	flush := func() error {
		if current == nil {
			return nil
		}
		if err := current.check(); err != nil {
			return err
		}
		out = append(out, *current)
		current = nil
		return nil
	}

	for _, raw := range paragraphs {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if strings.Contains(line, "##") && strings.Contains(strings.ToLower(line), "savol") {
			if err := flush(); err != nil {
				return nil, err
			}
			seq++
			number := seq
			if m := headerPattern.FindStringSubmatch(line); m != nil {
				if n, err := strconv.Atoi(m[1]); err == nil {
					number = n
				}
			}
			seq = number
			current = &ParsedQuestion{Number: number}
			continue
		}

		if current == nil {
			// preamble before the first header
			continue
		}

		if m := answerPattern.FindStringSubmatch(line); m != nil {
			current.Answers = append(current.Answers, ParsedAnswer{Letter: m[1], Text: strings.TrimSpace(m[2])})
			continue
		}

		if strings.HasPrefix(strings.ToLower(line), "javob:") {
			current.CorrectLetter = strings.ToUpper(strings.TrimSpace(line[len("javob:"):]))
			continue
		}

		if current.Text == "" {
			current.Text = line
		}
	}

	if err := flush(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNoQuestions
	}
	return out, nil
}

func (q *ParsedQuestion) check() error {
	fail := func(reason string) error {
		return fmt.Errorf("%w: question %d %s", ErrMalformedQuestion, q.Number, reason)
	}
	if q.Text == "" {
		return fail("has no text")
	}
	if len(q.Answers) != models.AnswersPerQuestion {
		return fail(fmt.Sprintf("has %d answers", len(q.Answers)))
	}
	seen := make(map[string]bool, len(q.Answers))
	for _, a := range q.Answers {
		if seen[a.Letter] {
			return fail("repeats answer " + a.Letter)
		}
		seen[a.Letter] = true
	}
	if !seen[q.CorrectLetter] {
		return fail(fmt.Sprintf("has invalid correct answer %q", q.CorrectLetter))
	}
	return nil
}

// ToModels converts parsed blocks into question rows for testSetID
func ToModels(testSetID uint, parsed []ParsedQuestion) []models.Question {
	out := make([]models.Question, 0, len(parsed))
	for _, p := range parsed {
		q := models.Question{TestSetID: testSetID, Number: p.Number, Text: p.Text}
		for _, a := range p.Answers {
			q.Answers = append(q.Answers, models.Answer{
				Letter:    a.Letter,
				Text:      a.Text,
				IsCorrect: a.Letter == p.CorrectLetter,
			})
		}
		out = append(out, q)
	}
	return out
}

// ParseDocx extracts and parses question blocks from DOCX bytes
func ParseDocx(data []byte) ([]ParsedQuestion, error) {
	paragraphs, err := Paragraphs(data)
	if err != nil {
		return nil, err
	}
	return Parse(paragraphs)
}
