package widgets

import (
	"github.com/charmbracelet/lipgloss"

	"note-trainer/theme"
	"note-trainer/trainer"
)

// RenderLetterButtons draws the answer buttons, colored by feedback
func RenderLetterButtons(buttons []trainer.Button, th *theme.Theme) string {
	rendered := make([]string, 0, len(buttons))
	for _, b := range buttons {
		rendered = append(rendered, renderButton(b, th))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func renderButton(b trainer.Button, th *theme.Theme) string {
	border := th.Muted()
	mark := th.Symbols.Idle
	switch b.Feedback {
	case trainer.FeedbackCorrect:
		border = th.Correct()
		mark = th.Symbols.Correct
	case trainer.FeedbackIncorrect:
		border = th.Incorrect()
		mark = th.Symbols.Incorrect
	}

	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Foreground(th.FG()).
		Width(5).
		Align(lipgloss.Center)

	return style.Render(b.Label + "\n" + string(mark))
}
