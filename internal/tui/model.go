// Package tui renders the workspace in the terminal. Every user action is
// sent through the command dispatch table, so the terminal sees exactly the
// state an MCP or JSON-RPC client would.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rpggio/codepad/internal/domain/assistant"
	"github.com/rpggio/codepad/internal/domain/workspace"
	"github.com/rpggio/codepad/internal/mcp"
)

// Dispatcher runs a named command. *mcp.Handler satisfies it.
type Dispatcher interface {
	Run(ctx context.Context, method string, params any) (any, error)
}

// TranscriptUpdated asks the model to re-read the assistant transcript.
type TranscriptUpdated struct{}

// StateChanged asks the model to re-read the workspace state.
type StateChanged struct{ Event workspace.Event }

type toastExpiredMsg struct{ id int }

type focusArea int

const (
	focusProjects focusArea = iota
	focusFiles
	focusTabs
	focusEditor
	focusAssistant
)

type promptKind int

const (
	promptNone promptKind = iota
	promptProject
	promptFile
)

const toastTTL = 2500 * time.Millisecond

// Options configures a Model.
type Options struct {
	Logger    *slog.Logger
	Clipboard func(string) error
}

// Model is the Bubble Tea model for the workspace.
type Model struct {
	ctx    context.Context
	cmds   Dispatcher
	logger *slog.Logger
	copyFn func(string) error

	keys   keyMap
	help   help.Model
	styles styles

	state      mcp.StateResponse
	transcript mcp.TranscriptResponse

	focus         focusArea
	projectCursor int
	fileCursor    int

	editor textarea.Model
	query  textinput.Model

	prompt      textinput.Model
	promptKind  promptKind
	promptError string

	toast   string
	toastID int

	width  int
	height int
}

// New builds a model and loads the initial state.
func New(ctx context.Context, cmds Dispatcher, opts Options) (*Model, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	copyFn := opts.Clipboard
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}

	editor := textarea.New()
	editor.Placeholder = "Откройте файл для редактирования"
	editor.ShowLineNumbers = true
	editor.CharLimit = 0
	editor.SetWidth(60)
	editor.SetHeight(16)

	query := textinput.New()
	query.Placeholder = "Спросите CodeHelper"
	query.Prompt = "> "
	query.CharLimit = 500

	prompt := textinput.New()
	prompt.Prompt = "Имя: "
	prompt.CharLimit = 120

	m := &Model{
		ctx:    ctx,
		cmds:   cmds,
		logger: logger,
		copyFn: copyFn,
		keys:   newKeyMap(),
		help:   help.New(),
		styles: newStyles(),
		editor: editor,
		query:  query,
		prompt: prompt,
	}
	if err := m.reload(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil
	case TranscriptUpdated:
		m.refreshTranscript()
		return m, nil
	case StateChanged:
		return m, m.refreshState()
	case toastExpiredMsg:
		if msg.id == m.toastID {
			m.toast = ""
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, m.updateInputs(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.promptKind != promptNone {
		return m.handlePromptKey(msg)
	}

	switch m.focus {
	case focusEditor:
		if key.Matches(msg, m.keys.back) || key.Matches(msg, m.keys.nextFocus) {
			m.setFocus(focusTabs)
			return m, nil
		}
		return m, m.updateEditor(msg)
	case focusAssistant:
		switch {
		case key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.nextFocus):
			m.setFocus(focusProjects)
			return m, nil
		case msg.Type == tea.KeyEnter:
			return m, m.submitQuery()
		}
		var cmd tea.Cmd
		m.query, cmd = m.query.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.nextFocus):
		m.cycleFocus(1)
	case key.Matches(msg, m.keys.prevFocus):
		m.cycleFocus(-1)
	case key.Matches(msg, m.keys.up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.open):
		return m, m.openSelected()
	case key.Matches(msg, m.keys.nextTab):
		return m, m.stepTab(1)
	case key.Matches(msg, m.keys.prevTab):
		return m, m.stepTab(-1)
	case key.Matches(msg, m.keys.closeTab):
		return m, m.closeActiveTab()
	case key.Matches(msg, m.keys.newProject):
		return m, m.openPrompt(promptProject)
	case key.Matches(msg, m.keys.newFile):
		if m.state.CurrentProject == nil {
			return m, m.setToast("Сначала создайте или откройте проект")
		}
		return m, m.openPrompt(promptFile)
	case key.Matches(msg, m.keys.assistant):
		return m, m.toggleAssistant()
	case key.Matches(msg, m.keys.copy):
		return m, m.copyActiveFile()
	}
	return m, nil
}

func (m *Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.closePrompt()
		return m, nil
	case tea.KeyEnter:
		return m, m.submitPrompt()
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m *Model) openPrompt(kind promptKind) tea.Cmd {
	m.promptKind = kind
	m.promptError = ""
	m.prompt.SetValue("")
	return m.prompt.Focus()
}

func (m *Model) closePrompt() {
	m.promptKind = promptNone
	m.promptError = ""
	m.prompt.Blur()
	m.prompt.SetValue("")
}

func (m *Model) submitPrompt() tea.Cmd {
	method := "create_project"
	if m.promptKind == promptFile {
		method = "create_file"
	}
	res, err := m.cmds.Run(m.ctx, method, mcp.NameParams{Name: m.prompt.Value()})
	if err != nil {
		var apiErr *mcp.APIError
		if errors.As(err, &apiErr) && apiErr.Code == "INVALID_INPUT" {
			m.promptError = "Имя не может быть пустым"
			return nil
		}
		m.closePrompt()
		return m.fail(method, err)
	}
	m.closePrompt()
	m.applyResult(res)
	if m.state.EditorEnabled && method == "create_file" {
		m.setFocus(focusEditor)
		return m.editor.Focus()
	}
	return nil
}

func (m *Model) updateEditor(msg tea.KeyMsg) tea.Cmd {
	if !m.state.EditorEnabled {
		return nil
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	text := m.editor.Value()
	if text == m.state.Editor {
		return cmd
	}
	res, err := m.cmds.Run(m.ctx, "edit_active_file", mcp.EditParams{Text: text})
	if err != nil {
		return tea.Batch(cmd, m.fail("edit_active_file", err))
	}
	if result, ok := res.(mcp.CommandResult); ok {
		m.state = result.State
	}
	return cmd
}

func (m *Model) submitQuery() tea.Cmd {
	text := m.query.Value()
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if _, err := m.cmds.Run(m.ctx, "send_assistant_query", mcp.QueryParams{Text: text}); err != nil {
		return m.fail("send_assistant_query", err)
	}
	m.query.SetValue("")
	m.refreshTranscript()
	return nil
}

func (m *Model) openSelected() tea.Cmd {
	switch m.focus {
	case focusProjects:
		if m.projectCursor >= len(m.state.Projects) {
			return nil
		}
		return m.run("open_project", mcp.IDParams{ID: m.state.Projects[m.projectCursor].ID})
	case focusFiles:
		if m.state.CurrentProject == nil || m.fileCursor >= len(m.state.CurrentProject.Files) {
			return nil
		}
		cmd := m.run("open_file", mcp.IDParams{ID: m.state.CurrentProject.Files[m.fileCursor].ID})
		if m.state.EditorEnabled {
			m.setFocus(focusEditor)
			return tea.Batch(cmd, m.editor.Focus())
		}
		return cmd
	case focusTabs:
		if m.state.EditorEnabled {
			m.setFocus(focusEditor)
			return m.editor.Focus()
		}
	}
	return nil
}

func (m *Model) stepTab(delta int) tea.Cmd {
	n := len(m.state.Tabs)
	if n == 0 {
		return nil
	}
	idx := m.activeTabIndex()
	if idx < 0 {
		idx = 0
	} else {
		idx = (idx + delta + n) % n
	}
	return m.run("set_active_tab", mcp.IDParams{ID: m.state.Tabs[idx].ID})
}

func (m *Model) closeActiveTab() tea.Cmd {
	idx := m.activeTabIndex()
	if idx < 0 {
		return nil
	}
	return m.run("close_tab", mcp.IDParams{ID: m.state.Tabs[idx].ID})
}

func (m *Model) toggleAssistant() tea.Cmd {
	cmd := m.run("toggle_assistant", nil)
	m.refreshTranscript()
	if m.state.AssistantVisible {
		m.setFocus(focusAssistant)
		return tea.Batch(cmd, m.query.Focus())
	}
	if m.focus == focusAssistant {
		m.setFocus(focusProjects)
	}
	return cmd
}

func (m *Model) copyActiveFile() tea.Cmd {
	if m.state.CurrentFile == nil {
		return m.setToast("Нет открытого файла")
	}
	if err := m.copyFn(m.state.Editor); err != nil {
		m.logger.Warn("clipboard write failed", "error", err)
		return m.setToast("Не удалось скопировать: " + err.Error())
	}
	return m.setToast(fmt.Sprintf("Скопировано: %s", m.state.CurrentFile.Name))
}

// run dispatches a command whose result carries state.
func (m *Model) run(method string, params any) tea.Cmd {
	res, err := m.cmds.Run(m.ctx, method, params)
	if err != nil {
		return m.fail(method, err)
	}
	m.applyResult(res)
	return nil
}

func (m *Model) fail(method string, err error) tea.Cmd {
	m.logger.Debug("command failed", "method", method, "error", err)
	var apiErr *mcp.APIError
	if errors.As(err, &apiErr) {
		return m.setToast(apiErr.Message)
	}
	return m.setToast(err.Error())
}

func (m *Model) applyResult(res any) {
	switch v := res.(type) {
	case mcp.CommandResult:
		m.setState(v.State)
	case mcp.StateResponse:
		m.setState(v)
	}
}

func (m *Model) setState(state mcp.StateResponse) {
	m.state = state
	if m.editor.Value() != state.Editor {
		m.editor.SetValue(state.Editor)
	}
	if !state.EditorEnabled {
		m.editor.Blur()
		if m.focus == focusEditor {
			m.setFocus(focusTabs)
		}
	}
	if !state.AssistantVisible && m.focus == focusAssistant {
		m.setFocus(focusProjects)
	}
	m.clampCursors()
}

func (m *Model) reload() error {
	res, err := m.cmds.Run(m.ctx, "get_state", nil)
	if err != nil {
		return fmt.Errorf("loading state: %w", err)
	}
	m.applyResult(res)
	for i, p := range m.state.Projects {
		if p.Active {
			m.projectCursor = i
		}
	}
	m.refreshTranscript()
	return nil
}

func (m *Model) refreshState() tea.Cmd {
	res, err := m.cmds.Run(m.ctx, "get_state", nil)
	if err != nil {
		return m.fail("get_state", err)
	}
	m.applyResult(res)
	return nil
}

func (m *Model) refreshTranscript() {
	res, err := m.cmds.Run(m.ctx, "get_transcript", nil)
	if err != nil {
		m.logger.Debug("transcript refresh failed", "error", err)
		return
	}
	if t, ok := res.(mcp.TranscriptResponse); ok {
		m.transcript = t
		m.state.AssistantVisible = t.Visible
	}
}

func (m *Model) setToast(text string) tea.Cmd {
	m.toastID++
	m.toast = text
	id := m.toastID
	return tea.Tick(toastTTL, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

func (m *Model) setFocus(f focusArea) {
	m.focus = f
	if f != focusEditor {
		m.editor.Blur()
	}
	if f != focusAssistant {
		m.query.Blur()
	}
}

func (m *Model) cycleFocus(delta int) {
	order := []focusArea{focusProjects, focusFiles, focusTabs, focusEditor, focusAssistant}
	idx := 0
	for i, f := range order {
		if f == m.focus {
			idx = i
		}
	}
	for range order {
		idx = (idx + delta + len(order)) % len(order)
		if m.focusable(order[idx]) {
			m.setFocus(order[idx])
			switch order[idx] {
			case focusEditor:
				m.editor.Focus()
			case focusAssistant:
				m.query.Focus()
			}
			return
		}
	}
}

func (m *Model) focusable(f focusArea) bool {
	switch f {
	case focusFiles:
		return m.state.CurrentProject != nil
	case focusTabs:
		return len(m.state.Tabs) > 0
	case focusEditor:
		return m.state.EditorEnabled
	case focusAssistant:
		return m.state.AssistantVisible
	}
	return true
}

func (m *Model) moveCursor(delta int) {
	switch m.focus {
	case focusProjects:
		m.projectCursor += delta
	case focusFiles:
		m.fileCursor += delta
	case focusTabs:
		m.stepTab(delta)
	}
	m.clampCursors()
}

func (m *Model) clampCursors() {
	m.projectCursor = clamp(m.projectCursor, len(m.state.Projects))
	files := 0
	if m.state.CurrentProject != nil {
		files = len(m.state.CurrentProject.Files)
	}
	m.fileCursor = clamp(m.fileCursor, files)
}

func clamp(v, n int) int {
	if n == 0 || v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}

func (m *Model) activeTabIndex() int {
	for i, t := range m.state.Tabs {
		if t.Active {
			return i
		}
	}
	return -1
}

func (m *Model) updateInputs(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	if m.promptKind != promptNone {
		m.prompt, cmd = m.prompt.Update(msg)
		cmds = append(cmds, cmd)
	}
	if m.focus == focusEditor {
		m.editor, cmd = m.editor.Update(msg)
		cmds = append(cmds, cmd)
	}
	if m.focus == focusAssistant {
		m.query, cmd = m.query.Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (m *Model) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	side := m.sideWidth()
	assistantWidth := 0
	if m.state.AssistantVisible {
		assistantWidth = m.assistantWidth()
	}
	editorWidth := m.width - side - assistantWidth - 6
	if editorWidth < 20 {
		editorWidth = 20
	}
	editorHeight := m.height - 8
	if editorHeight < 3 {
		editorHeight = 3
	}
	m.editor.SetWidth(editorWidth)
	m.editor.SetHeight(editorHeight)
	m.help.Width = m.width
	setMarkdownWordWrap(assistantWidth - 4)
}

func (m *Model) sideWidth() int {
	w := m.width / 5
	if w < 18 {
		w = 18
	}
	return w
}

func (m *Model) assistantWidth() int {
	w := m.width / 3
	if w < 24 {
		w = 24
	}
	return w
}

// View renders the whole screen.
func (m *Model) View() string {
	if m.promptKind != promptNone {
		return m.viewPrompt()
	}

	left := lipgloss.JoinVertical(lipgloss.Left, m.viewProjects(), m.viewFiles())
	center := lipgloss.JoinVertical(lipgloss.Left, m.viewTabs(), m.viewEditor())
	columns := []string{left, center}
	if m.state.AssistantVisible {
		columns = append(columns, m.viewAssistant())
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, columns...)
	return m.styles.app.Render(lipgloss.JoinVertical(lipgloss.Left, body, m.viewStatus()))
}

func (m *Model) panel(f focusArea) lipgloss.Style {
	if m.focus == f {
		return m.styles.panelFocused
	}
	return m.styles.panel
}

func (m *Model) viewProjects() string {
	var b strings.Builder
	b.WriteString(m.styles.panelTitle.Render("Проекты"))
	b.WriteString("\n")
	if len(m.state.Projects) == 0 {
		b.WriteString(m.styles.statusHint.Render("нет проектов (n)"))
	}
	for i, p := range m.state.Projects {
		b.WriteString(m.listLine(p.Name, p.Active, m.focus == focusProjects && i == m.projectCursor))
		b.WriteString("\n")
	}
	return m.panel(focusProjects).Width(m.sideWidth()).Render(strings.TrimRight(b.String(), "\n"))
}

func (m *Model) viewFiles() string {
	var b strings.Builder
	b.WriteString(m.styles.panelTitle.Render("Файлы"))
	b.WriteString("\n")
	switch {
	case m.state.CurrentProject == nil:
		b.WriteString(m.styles.statusHint.Render("проект не открыт"))
	case len(m.state.CurrentProject.Files) == 0:
		b.WriteString(m.styles.statusHint.Render("нет файлов (f)"))
	default:
		for i, f := range m.state.CurrentProject.Files {
			b.WriteString(m.listLine(f.Name, f.Active, m.focus == focusFiles && i == m.fileCursor))
			b.WriteString("\n")
		}
	}
	return m.panel(focusFiles).Width(m.sideWidth()).Render(strings.TrimRight(b.String(), "\n"))
}

func (m *Model) listLine(name string, active, selected bool) string {
	marker := "  "
	if selected {
		marker = "> "
	}
	style := m.styles.listItem
	switch {
	case selected:
		style = m.styles.listSel
	case active:
		style = m.styles.listOpen
	}
	return marker + style.Render(name)
}

func (m *Model) viewTabs() string {
	if len(m.state.Tabs) == 0 {
		return m.panel(focusTabs).Render(m.styles.statusHint.Render("нет открытых вкладок"))
	}
	tabs := make([]string, 0, len(m.state.Tabs))
	for _, t := range m.state.Tabs {
		if t.Active {
			tabs = append(tabs, m.styles.tabActive.Render(t.Name+" ×"))
		} else {
			tabs = append(tabs, m.styles.tabInactive.Render(t.Name))
		}
	}
	return m.panel(focusTabs).Render(m.styles.tabsRow.Render(lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)))
}

func (m *Model) viewEditor() string {
	if !m.state.EditorEnabled {
		return m.panel(focusEditor).Render(m.styles.editorDisabled.Render("Выберите файл, чтобы начать редактирование"))
	}
	return m.panel(focusEditor).Render(m.editor.View())
}

func (m *Model) viewAssistant() string {
	var b strings.Builder
	b.WriteString(m.styles.panelTitle.Render("CodeHelper"))
	b.WriteString("\n")
	for _, msg := range m.transcript.Messages {
		if msg.Sender == assistant.SenderBot {
			b.WriteString(m.styles.botSender.Render(msg.Sender.DisplayName() + ":"))
			b.WriteString("\n")
			b.WriteString(renderMarkdown(msg.Text))
		} else {
			b.WriteString(m.styles.sender.Render(msg.Sender.DisplayName() + ": "))
			b.WriteString(msg.Text)
		}
		b.WriteString("\n")
	}
	if m.transcript.Pending > 0 {
		b.WriteString(m.styles.statusHint.Render("CodeHelper печатает..."))
		b.WriteString("\n")
	}
	b.WriteString(m.query.View())
	return m.panel(focusAssistant).Width(m.assistantWidth()).Render(b.String())
}

func (m *Model) viewStatus() string {
	line := m.help.View(m.keys)
	if m.toast != "" {
		line = m.toast + "  " + m.styles.statusHint.Render(line)
	}
	return m.styles.statusBar.Render(line)
}

func (m *Model) viewPrompt() string {
	title := "Новый проект"
	if m.promptKind == promptFile {
		title = "Новый файл"
	}
	lines := []string{m.styles.panelTitle.Render(title), "", m.prompt.View()}
	if m.promptError != "" {
		lines = append(lines, m.styles.promptErr.Render(m.promptError))
	}
	lines = append(lines, "", m.styles.promptHint.Render("enter: сохранить • esc: отмена"))
	box := m.styles.prompt.Render(strings.Join(lines, "\n"))
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// Notifier forwards assistant messages and workspace events into a running
// program. Both sources are wired before the program exists, so the program
// is attached later. Notifications can originate inside Update, so Send
// runs on its own goroutine.
type Notifier struct {
	program atomic.Pointer[tea.Program]
}

func (n *Notifier) Attach(p *tea.Program) {
	n.program.Store(p)
}

func (n *Notifier) AssistantMessage(assistant.Message) {
	if p := n.program.Load(); p != nil {
		go p.Send(TranscriptUpdated{})
	}
}

// WorkspaceEvent is meant for workspace.Service.Subscribe.
func (n *Notifier) WorkspaceEvent(ev workspace.Event) {
	if p := n.program.Load(); p != nil {
		go p.Send(StateChanged{Event: ev})
	}
}

// Run starts the full-screen program and blocks until the user quits.
func Run(ctx context.Context, cmds Dispatcher, notifier *Notifier, opts Options) error {
	m, err := New(ctx, cmds, opts)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if notifier != nil {
		notifier.Attach(p)
		defer notifier.Attach(nil)
	}
	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
