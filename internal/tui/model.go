package tui

import (
	"strings"
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/rbright/recite/internal/fsm"
	"github.com/rbright/recite/internal/render"
	"github.com/rbright/recite/internal/session"
)

// Action is the side effect a key press asks the app to perform.
type Action int

const (
	ActionNone Action = iota
	ActionToggle
	ActionNextPassage
	ActionSpeak
	ActionPlayPreview
	ActionCommitText
	ActionQuit
)

// Model is everything the screen shows. It is only touched on the event loop.
type Model struct {
	State   session.State
	Text    string
	Status  string
	Editing bool
	Draft   []rune
}

// HandleKey applies one key press and reports the action to run.
func (m *Model) HandleKey(key tcell.Key, ch rune) Action {
	if key == tcell.KeyCtrlC {
		return ActionQuit
	}
	if m.Editing {
		return m.editKey(key, ch)
	}
	if key != tcell.KeyRune {
		return ActionNone
	}

	switch unicode.ToLower(ch) {
	case ' ':
		return ActionToggle
	case 'n':
		return ActionNextPassage
	case 's':
		return ActionSpeak
	case 'p':
		return ActionPlayPreview
	case 'e':
		m.Editing = true
		m.Draft = []rune(m.Text)
		m.Status = "Editing passage: Enter saves, Esc cancels"
		return ActionNone
	case 'q':
		return ActionQuit
	}
	return ActionNone
}

func (m *Model) editKey(key tcell.Key, ch rune) Action {
	switch key {
	case tcell.KeyEscape:
		m.Editing = false
		m.Draft = nil
		m.Status = ""
	case tcell.KeyEnter:
		draft := strings.TrimSpace(string(m.Draft))
		m.Editing = false
		m.Draft = nil
		if draft == "" {
			m.Status = "Passage unchanged: text is empty"
			return ActionNone
		}
		m.Text = draft
		m.Status = "Passage updated"
		return ActionCommitText
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(m.Draft) > 0 {
			m.Draft = m.Draft[:len(m.Draft)-1]
		}
	case tcell.KeyRune:
		m.Draft = append(m.Draft, ch)
	}
	return ActionNone
}

// Line is one styled row of the layout.
type Line struct {
	Text  string
	Style tcell.Style
}

var (
	styleTitle   = tcell.StyleDefault.Bold(true)
	styleLabel   = tcell.StyleDefault.Foreground(tcell.ColorTeal).Bold(true)
	styleBody    = tcell.StyleDefault
	styleRecord  = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleWaiting = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleSuccess = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleError   = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleHint    = tcell.StyleDefault.Dim(true)
)

const helpLine = "[space] record/stop  [n] next  [s] speak  [e] edit  [p] play  [q] quit"

// Layout renders the model into rows no wider than width.
func (m Model) Layout(width int) []Line {
	if width < 20 {
		width = 20
	}

	lines := []Line{{Text: "recite: reading practice", Style: styleTitle}, {}}

	lines = append(lines, Line{Text: "Passage", Style: styleLabel})
	text := m.Text
	if m.Editing {
		text = string(m.Draft) + "_"
	}
	for _, row := range wrap(text, width-2) {
		lines = append(lines, Line{Text: "  " + row, Style: styleBody})
	}
	lines = append(lines, Line{})

	label, style := phaseLabel(m.State.Phase)
	lines = append(lines, Line{Text: label, Style: style})

	switch m.State.Phase {
	case fsm.StateSucceeded:
		if m.State.Result != nil {
			lines = append(lines, Line{})
			for _, row := range render.Build(*m.State.Result).Lines() {
				for _, wrapped := range wrap(row, width) {
					lines = append(lines, Line{Text: wrapped, Style: styleBody})
				}
			}
		}
	case fsm.StateFailed:
		for _, row := range wrap(m.State.Message, width) {
			lines = append(lines, Line{Text: row, Style: styleError})
		}
	}

	lines = append(lines, Line{})
	if m.Status != "" {
		for _, row := range wrap(m.Status, width) {
			lines = append(lines, Line{Text: row, Style: styleWaiting})
		}
	}
	lines = append(lines, Line{Text: helpLine, Style: styleHint})
	return lines
}

func phaseLabel(phase fsm.State) (string, tcell.Style) {
	switch phase {
	case fsm.StateRecording:
		return "Recording... press space to stop", styleRecord
	case fsm.StateProcessing:
		return "Scoring your reading...", styleWaiting
	case fsm.StateSucceeded:
		return "Scored", styleSuccess
	case fsm.StateFailed:
		return "Failed", styleError
	default:
		return "Ready: press space to start reading", styleBody
	}
}

// wrap breaks text on spaces into rows of at most width runes.
// Words longer than width are split.
func wrap(text string, width int) []string {
	if width <= 0 {
		width = 1
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var rows []string
	var current []rune
	for _, word := range words {
		runes := []rune(word)
		for len(runes) > width {
			if len(current) > 0 {
				rows = append(rows, string(current))
				current = nil
			}
			rows = append(rows, string(runes[:width]))
			runes = runes[width:]
		}
		if len(runes) == 0 {
			continue
		}
		switch {
		case len(current) == 0:
			current = append(current, runes...)
		case len(current)+1+len(runes) <= width:
			current = append(current, ' ')
			current = append(current, runes...)
		default:
			rows = append(rows, string(current))
			current = append([]rune(nil), runes...)
		}
	}
	if len(current) > 0 {
		rows = append(rows, string(current))
	}
	return rows
}
