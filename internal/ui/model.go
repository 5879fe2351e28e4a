package ui

import (
	"context"
	"reflect"
	"time"

	"github.com/atomicstack/folderctl/internal/backend"
	"github.com/atomicstack/folderctl/internal/data/dispatcher"
	"github.com/atomicstack/folderctl/internal/folder"
	"github.com/atomicstack/folderctl/internal/state"
	"github.com/atomicstack/folderctl/internal/theme"
	"github.com/atomicstack/folderctl/internal/ui/command"
	uistate "github.com/atomicstack/folderctl/internal/ui/state"
	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
)

type Mode int

const (
	ModePicker Mode = iota
	ModeEditor
)

var styles = theme.Default()

type msgHandler func(tea.Msg) tea.Cmd

// FolderService persists folders. *store.Store satisfies it.
type FolderService interface {
	List(ctx context.Context) ([]folder.Filter, error)
	Get(ctx context.Context, id int64) (folder.Filter, error)
	Create(ctx context.Context, f folder.Filter) (folder.Filter, error)
	Update(ctx context.Context, f folder.Filter) (folder.Filter, error)
	Delete(ctx context.Context, id int64) error
}

// PeerResolver loads the chats referenced by a folder. *peers.Resolver
// satisfies it.
type PeerResolver interface {
	Resolve(ctx context.Context, f folder.Filter) (int, error)
	Names(ids []int64) []string
}

// EventSource streams pushed folder changes. *backend.Watcher satisfies it.
type EventSource interface {
	Events() <-chan backend.Event
}

// Options configures a Model.
type Options struct {
	Width      int
	Height     int
	ShowFooter bool
	Verbose    bool

	Folders FolderService
	Peers   PeerResolver
	Watcher EventSource
	// Replica is the origin stamped on this process's own writes.
	Replica string

	// StartFilter opens the edit panel for that folder on launch.
	StartFilter int64
	// StartCreate opens the create panel on launch.
	StartCreate bool
}

// Model implements the Bubble Tea model for the folder picker and panel.
type Model struct {
	ctx context.Context

	list         *uistate.List
	loading      bool
	pendingLabel string
	errMsg       string
	infoMsg      string
	infoExpire   time.Time
	width        int
	height       int
	fixedWidth   bool
	fixedHeight  bool
	showFooter   bool
	verbose      bool
	filterCursor cursor.Model

	backend        EventSource
	backendLastErr string

	editor *editor
	direct bool

	handlers map[reflect.Type]msgHandler

	bus        *command.Bus
	mode       Mode
	svc        FolderService
	peers      PeerResolver
	folders    state.FolderStore
	dispatcher *dispatcher.Dispatcher

	startFilter int64
	startCreate bool
}

// NewModel initialises the UI state from opts.
func NewModel(opts Options) *Model {
	folders := state.NewFolderStore()
	m := &Model{
		ctx:         context.Background(),
		list:        uistate.NewList(nil),
		showFooter:  opts.ShowFooter,
		verbose:     opts.Verbose,
		backend:     opts.Watcher,
		bus:         command.New(),
		mode:        ModePicker,
		svc:         opts.Folders,
		peers:       opts.Peers,
		folders:     folders,
		dispatcher:  dispatcher.New(folders, opts.Replica),
		direct:      opts.StartFilter != 0 || opts.StartCreate,
		startFilter: opts.StartFilter,
		startCreate: opts.StartCreate,
	}
	if opts.Width > 0 {
		m.width = opts.Width
		m.fixedWidth = true
	}
	if opts.Height > 0 {
		m.height = opts.Height
		m.fixedHeight = true
	}
	c := cursor.New()
	c.SetMode(cursor.CursorStatic)
	if styles.Cursor != nil {
		c.Style = *styles.Cursor
	}
	if styles.Filter != nil {
		c.TextStyle = *styles.Filter
	}
	c.SetChar(" ")
	m.filterCursor = c
	m.registerHandlers()
	return m
}

// Init is part of the tea.Model interface.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadFoldersCmd()}
	if m.backend != nil {
		cmds = append(cmds, waitForBackendEvent(m.backend))
	}
	switch {
	case m.startCreate:
		cmds = append(cmds, m.openCreate())
	case m.startFilter != 0:
		cmds = append(cmds, m.openEdit(m.startFilter))
	}
	if cmd := m.filterCursor.Focus(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// Update responds to Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if handler := m.handlerFor(msg); handler != nil {
		return m, handler(msg)
	}
	return m, nil
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):        m.handleKeyMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}): m.handleWindowSizeMsg,
		reflect.TypeOf(foldersLoadedMsg{}):  m.handleFoldersLoadedMsg,
		reflect.TypeOf(filterLoadedMsg{}):   m.handleFilterLoadedMsg,
		reflect.TypeOf(peersResolvedMsg{}):  m.handlePeersResolvedMsg,
		reflect.TypeOf(saveSettledMsg{}):    m.handleSaveSettledMsg,
		reflect.TypeOf(deleteSettledMsg{}):  m.handleDeleteSettledMsg,
		reflect.TypeOf(backendEventMsg{}):   m.handleBackendEventMsg,
		reflect.TypeOf(backendDoneMsg{}):    m.handleBackendDoneMsg,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := m.handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := m.handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}

// Mode returns the active screen.
func (m *Model) Mode() Mode { return m.mode }
