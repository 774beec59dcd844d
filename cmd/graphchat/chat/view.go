package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"graphchat/internal/conversation"
)

func (m Model) renderHistory() string {
	var sb strings.Builder

	for _, msg := range m.store.Messages() {
		switch {
		case msg.Role == conversation.RoleUser:
			label := m.styles.UserLabel.MarginTop(1)
			sb.WriteString(label.Render("You") + "\n")
			sb.WriteString(m.styles.UserText.Render(msg.Text))
			sb.WriteString("\n\n")

		case msg.IsError:
			label := m.styles.AssistantLabel.MarginTop(1)
			sb.WriteString(label.Render("GraphChat") + "\n")
			sb.WriteString(m.styles.ErrorText.Render(msg.Text))
			sb.WriteString("\n\n")

		default:
			label := m.styles.AssistantLabel.MarginTop(1)
			sb.WriteString(label.Render("GraphChat") + "\n")
			sb.WriteString(m.styles.AssistantText.Render(m.safeRenderMarkdown(msg.Text)))
			sb.WriteString("\n")
			if meta := m.renderTurnMeta(msg); meta != "" {
				sb.WriteString(meta)
				sb.WriteString("\n")
			}
			sb.WriteString("\n")
		}
	}

	if m.store.Pending() {
		sb.WriteString(m.spinner.View())
		sb.WriteString(m.styles.Muted.Render(" Searching the knowledge graph..."))
		sb.WriteString("\n")
	}

	return sb.String()
}

// renderTurnMeta shows the entities and fact count behind an answer.
func (m Model) renderTurnMeta(msg conversation.Message) string {
	var parts []string
	for _, e := range msg.Entities {
		parts = append(parts, m.styles.EntityBadge.Render(e))
	}
	if msg.FactCount > 0 {
		parts = append(parts, m.styles.FactCaption.Render(
			fmt.Sprintf("%d facts used", msg.FactCount)))
	}
	if len(parts) == 0 {
		return ""
	}
	return "  " + strings.Join(parts, " ")
}

// safeRenderMarkdown renders markdown with panic recovery. Backend
// answers are untrusted text; if glamour chokes, fall back to plain.
func (m Model) safeRenderMarkdown(content string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			result = content
		}
	}()

	if m.renderer != nil && content != "" {
		rendered, err := m.renderer.Render(content)
		if err == nil {
			return rendered
		}
	}
	return content
}

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	header := m.renderHeader()

	inputStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.styles.Theme.Accent).
		Padding(0, 1)
	inputArea := inputStyle.Render(m.textarea.View())

	footer := m.renderFooter()

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		m.viewport.View(),
		inputArea,
		footer,
	)
}

func (m Model) renderHeader() string {
	title := m.styles.Header.Render(" GraphChat ")

	// A zero snapshot means the counters were unavailable at startup.
	snap := m.store.Stats()
	var badge string
	if snap.EntityCount > 0 || snap.FactCount > 0 {
		badge = m.styles.StatsBadge.Render(
			fmt.Sprintf("%d entities · %d facts", snap.EntityCount, snap.FactCount))
	} else {
		badge = m.styles.StatsBadge.Render("graph stats unavailable")
	}

	var status string
	if m.store.Pending() {
		status = m.spinner.View()
	} else {
		status = m.styles.Healthy.Render("Ready")
	}

	headerLine := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", badge, "  ", status)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		headerLine,
		m.styles.RenderDivider(m.width),
	)
}

func (m Model) renderFooter() string {
	help := "Enter: send | Tab: example question | Ctrl+C: exit"
	return m.styles.Footer.MarginTop(1).Render(help)
}
