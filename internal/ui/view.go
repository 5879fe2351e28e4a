package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atomicstack/folderctl/internal/folder"
	"github.com/atomicstack/folderctl/internal/format/table"
	"github.com/atomicstack/folderctl/internal/session"
	uistate "github.com/atomicstack/folderctl/internal/ui/state"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

type styledLine struct {
	text          string
	style         *lipgloss.Style
	prefixStyle   *lipgloss.Style
	highlightFrom int
	raw           bool // text contains ANSI escapes; skip style wrapping, use ANSI-aware truncation
}

const (
	pickerFooter = "↑/↓ move  enter edit  ctrl+n new  esc clear/quit  ctrl+c quit"
	editorFooter = "enter save & close  ctrl+s save  tab switch  space toggle  ctrl+x delete  esc close"
)

var peerSections = []struct {
	category folder.PeerCategory
	label    string
}{
	{folder.PeersPinned, "Pinned"},
	{folder.PeersInclude, "Included"},
	{folder.PeersExclude, "Excluded"},
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.mode == ModeEditor && m.editor != nil {
		return m.viewEditor()
	}
	return m.viewPicker()
}

func (m *Model) viewPicker() string {
	lines := make([]styledLine, 0, 16)
	lines = append(lines, styledLine{text: m.header(), style: styles.Header})
	if m.loading && m.pendingLabel != "" {
		lines = append(lines, styledLine{text: m.pendingLabel, style: styles.Loading})
	}
	if len(m.list.Items) == 0 {
		msg := "(no folders)"
		if m.list.Filter != "" {
			msg = fmt.Sprintf("No matches for %q", m.list.Filter)
		}
		lines = append(lines, styledLine{text: msg, style: styles.Info})
	} else {
		visible, start := m.list.Visible(m.maxVisibleItems())
		rows := m.pickerRows(visible)
		for i, row := range rows {
			lines = append(lines, m.buildItemLine(row, start+i, m.width))
		}
	}
	if info := m.currentInfo(); info != "" {
		lines = append(lines, styledLine{})
		lines = append(lines, styledLine{text: info, style: styles.Info})
	}
	if m.showFooter {
		lines = append(lines, styledLine{})
		lines = append(lines, styledLine{text: pickerFooter, style: styles.Footer})
	}
	lines = limitHeight(lines, m.height-2, m.width)
	lines = applyWidth(lines, m.width)

	bottomLines := []styledLine{
		m.statusLine(),
		{text: m.filterPrompt()},
	}
	bottomLines = applyWidth(bottomLines, m.width)
	lines = append(lines, bottomLines...)
	return renderLines(lines)
}

func (m *Model) viewEditor() string {
	e := m.editor
	lines := make([]styledLine, 0, 24)
	lines = append(lines, styledLine{text: m.header(), style: styles.Header})
	if e.loading() {
		lines = append(lines, styledLine{text: "Loading chats…", style: styles.Loading})
	}

	lines = append(lines, styledLine{text: "Name", style: styles.Label})
	lines = append(lines, styledLine{text: e.title.View(), raw: true})
	if e.titleErr != "" {
		lines = append(lines, styledLine{text: e.titleErr, style: styles.FieldError})
	}

	lines = append(lines, styledLine{})
	lines = append(lines, styledLine{text: "Chat types", style: styles.Label})
	for i, flag := range folder.AllFlags {
		lines = append(lines, e.flagLine(flag, i))
	}

	if peerLines := m.peerLines(e.sess.Working()); len(peerLines) > 0 {
		lines = append(lines, styledLine{})
		lines = append(lines, peerLines...)
	}

	lines = append(lines, styledLine{})
	lines = append(lines, styledLine{text: e.actionsLine(), raw: true})

	if e.dialog != session.DialogNone {
		lines = append(lines, styledLine{})
		for _, row := range strings.Split(renderDialog(e.dialog), "\n") {
			lines = append(lines, styledLine{text: row, raw: true})
		}
	}
	if e.hint != "" {
		lines = append(lines, styledLine{})
		lines = append(lines, styledLine{text: e.hint, style: styles.Info})
	}
	if info := m.currentInfo(); info != "" {
		lines = append(lines, styledLine{text: info, style: styles.Info})
	}
	if m.showFooter {
		lines = append(lines, styledLine{})
		lines = append(lines, styledLine{text: editorFooter, style: styles.Footer})
	}
	lines = limitHeight(lines, m.height-1, m.width)
	lines = applyWidth(lines, m.width)

	status := styledLine{}
	if e.alert != "" {
		style := styles.Info
		if e.alertErr {
			style = styles.Error
		}
		status = styledLine{text: e.alert, style: style}
	}
	lines = append(lines, applyWidth([]styledLine{status}, m.width)...)
	return renderLines(lines)
}

func (m *Model) header() string {
	if m.mode == ModeEditor && m.editor != nil {
		title := m.editor.heading()
		if m.editor.sess.Mode() == session.ModeEdit {
			if name := strings.TrimSpace(m.editor.sess.Original().Title); name != "" {
				title += " › " + name
			}
		}
		if m.editor.sess.SaveInFlight() {
			title += " (saving…)"
		}
		return title
	}
	return "Folders"
}

func (m *Model) statusLine() styledLine {
	switch {
	case m.errMsg != "":
		return styledLine{text: fmt.Sprintf("Error: %s", m.errMsg), style: styles.Error}
	case m.backendLastErr != "":
		return styledLine{text: fmt.Sprintf("Watch: %s", m.backendLastErr), style: styles.Error}
	}
	return styledLine{}
}

// pickerRows aligns title, kind and chat count for the visible rows.
func (m *Model) pickerRows(entries []uistate.Entry) []string {
	rows := make([][]string, len(entries))
	for i, entry := range entries {
		kind, count := "", ""
		if f, ok := m.folders.Get(entry.ID); ok {
			if f.IsChatlist() {
				kind = "shared"
			}
			count = chatCount(len(f.PinnedPeerIDs) + len(f.IncludePeerIDs))
		}
		rows[i] = []string{entry.Label, kind, count}
	}
	return table.Format(rows, []table.Alignment{table.AlignLeft, table.AlignLeft, table.AlignRight})
}

func chatCount(n int) string {
	if n == 1 {
		return "1 chat"
	}
	return fmt.Sprintf("%d chats", n)
}

// buildItemLine constructs a single styledLine for a picker row. When width
// is positive the text is padded so the selected row spans the container.
func (m *Model) buildItemLine(label string, idx int, width int) styledLine {
	indicator := "▌"
	lineStyle := styles.Item
	indicatorStyle := styles.ItemIndicator
	if idx == m.list.Cursor {
		indicatorStyle = styles.SelectedItemIndicator
		lineStyle = styles.SelectedItem
	}
	fullText := indicator + " " + label
	if width > 0 {
		if pad := width - lipgloss.Width(fullText); pad > 0 {
			fullText += strings.Repeat(" ", pad)
		}
	}
	return styledLine{
		text:          fullText,
		style:         lineStyle,
		prefixStyle:   indicatorStyle,
		highlightFrom: 1,
	}
}

func (e *editor) flagLine(flag folder.Flag, idx int) styledLine {
	mark := " "
	style := styles.FlagOff
	if e.activeFlags[flag] {
		mark = "✓"
		style = styles.FlagOn
	}
	label := flag.Label()
	if flag.Excludes() {
		label = "Exclude " + strings.ToLower(label)
	}
	text := fmt.Sprintf("[%s] %s", mark, label)
	if e.focus == focusFlags && idx == e.flagCursor {
		text = "› " + text
		if styles.FlagFocused != nil && style != nil {
			focused := style.Inherit(*styles.FlagFocused)
			style = &focused
		}
	} else {
		text = "  " + text
	}
	return styledLine{text: text, style: style}
}

func (e *editor) actionsLine() string {
	render := func(style *lipgloss.Style, text string) string {
		if style == nil {
			return text
		}
		return style.Render(text)
	}
	var parts []string
	if e.saveVisible {
		style := styles.Action
		if !e.saveEnabled {
			style = styles.ActionDisabled
		}
		parts = append(parts, render(style, "[ Save ]"))
	}
	if e.optionsVisible {
		style := styles.Action
		if e.sess.Deleting() {
			style = styles.ActionDisabled
		}
		parts = append(parts, render(style, "[ Delete folder ]"))
	}
	return strings.Join(parts, "  ")
}

func (m *Model) peerLines(f folder.Filter) []styledLine {
	var lines []styledLine
	for _, section := range peerSections {
		ids := f.Peers(section.category)
		if len(ids) == 0 {
			continue
		}
		var names []string
		if m.peers != nil {
			names = m.peers.Names(ids)
		}
		text := fmt.Sprintf("%s (%d)", section.label, len(ids))
		if len(names) > 0 {
			text += ": " + strings.Join(names, ", ")
		}
		lines = append(lines, styledLine{text: text, style: styles.Info})
	}
	return lines
}

func renderDialog(d session.Dialog) string {
	var title, body string
	switch d {
	case session.DialogConfirmDelete:
		title = "Delete folder?"
		body = "This cannot be undone.  y delete  n cancel"
	case session.DialogShareInvite:
		title = "Shared folder"
		body = "Revoke the folder's invite links before deleting it.  enter ok"
	}
	if styles.DialogTitle != nil {
		title = styles.DialogTitle.Render(title)
	}
	content := title + "\n" + body
	if styles.Dialog != nil {
		return styles.Dialog.Render(content)
	}
	return content
}

func (m *Model) filterPrompt() string {
	render := func(style *lipgloss.Style, value string) string {
		if style == nil || value == "" {
			return value
		}
		return style.Render(value)
	}
	prompt := "» "
	if styles.FilterPrompt != nil {
		prompt = styles.FilterPrompt.Render(prompt)
	}
	text := m.list.Filter
	if text == "" {
		placeholder := []rune("(type to search)")
		caret := m.renderFilterCursor(string(placeholder[:1]))
		return prompt + caret + render(styles.FilterPlaceholder, string(placeholder[1:]))
	}
	runes := []rune(text)
	pos := m.list.FilterCursor
	if pos < 0 {
		pos = 0
	}
	if pos > len(runes) {
		pos = len(runes)
	}
	before := render(styles.Filter, string(runes[:pos]))
	caretRune := " "
	after := ""
	if pos < len(runes) {
		caretRune = string(runes[pos])
		after = render(styles.Filter, string(runes[pos+1:]))
	}
	return prompt + before + m.renderFilterCursor(caretRune) + after
}

func (m *Model) renderFilterCursor(char string) string {
	if char == "" {
		char = " "
	}
	m.filterCursor.SetChar(char)
	if styles.Cursor != nil {
		return styles.Cursor.Inline(true).Render(char)
	}
	return char
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	resize, ok := msg.(tea.WindowSizeMsg)
	if !ok {
		return nil
	}
	if !m.fixedWidth {
		m.width = resize.Width
	}
	if !m.fixedHeight {
		m.height = resize.Height
	}
	m.syncViewport()
	return nil
}

func (m *Model) maxVisibleItems() int {
	if m.height <= 0 {
		return -1
	}
	used := 3 // header + status + filter prompt
	if m.loading && m.pendingLabel != "" {
		used++
	}
	if info := m.currentInfo(); info != "" {
		used += 2
	}
	if m.showFooter {
		used += 2
	}
	remain := m.height - used
	if remain < 1 {
		return 1
	}
	return remain
}

func (m *Model) syncViewport() {
	m.list.EnsureCursorVisible(m.maxVisibleItems())
}

// syncList rebuilds the picker rows from the folder store.
func (m *Model) syncList() {
	folders := m.folders.Entries()
	entries := make([]uistate.Entry, 0, len(folders))
	for _, f := range folders {
		detail := string(f.Kind)
		entries = append(entries, uistate.Entry{ID: f.ID, Label: strings.TrimSpace(f.Title), Detail: detail})
	}
	m.list.UpdateEntries(entries)
	m.syncViewport()
}

func (m *Model) setInfo(message string) {
	m.infoMsg = message
	m.infoExpire = time.Now().Add(5 * time.Second)
}

func (m *Model) forceClearInfo() {
	m.infoMsg = ""
	m.infoExpire = time.Time{}
}

func (m *Model) currentInfo() string {
	if m.infoMsg != "" && !m.infoExpire.IsZero() && time.Now().After(m.infoExpire) {
		m.infoMsg = ""
		m.infoExpire = time.Time{}
	}
	return m.infoMsg
}

func limitHeight(lines []styledLine, height, width int) []styledLine {
	if height <= 0 || len(lines) <= height {
		return lines
	}
	if height == 1 {
		return []styledLine{{text: truncateText("…", width)}}
	}
	trimmed := make([]styledLine, 0, height)
	trimmed = append(trimmed, lines[:height-1]...)
	trimmed = append(trimmed, styledLine{text: truncateText("…", width)})
	return trimmed
}

func applyWidth(lines []styledLine, width int) []styledLine {
	if width <= 0 {
		return lines
	}
	result := make([]styledLine, len(lines))
	for i, line := range lines {
		text := line.text
		if line.raw {
			if lipgloss.Width(text) > width {
				text = truncate.StringWithTail(text, uint(width-1), "…")
			}
		} else {
			text = truncateText(text, width)
		}
		line.text = text
		result[i] = line
	}
	return result
}

func renderLines(lines []styledLine) string {
	out := make([]string, len(lines))
	for i, line := range lines {
		text := line.text
		if line.raw {
			out[i] = text
			continue
		}
		runes := []rune(text)
		if line.highlightFrom > 0 && line.highlightFrom < len(runes) {
			head := string(runes[:line.highlightFrom])
			tail := string(runes[line.highlightFrom:])
			if line.prefixStyle != nil {
				head = line.prefixStyle.Render(head)
			}
			if line.style != nil {
				tail = line.style.Render(tail)
			}
			text = head + tail
		} else if line.style != nil {
			text = line.style.Render(text)
		}
		out[i] = text
	}
	return strings.Join(out, "\n")
}

func truncateText(text string, width int) string {
	if width <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= width {
		return text
	}
	if width == 1 {
		return string(runes[:1])
	}
	return string(runes[:width-1]) + "…"
}
