package shell

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// FyneConfig configures the desktop window.
type FyneConfig struct {
	AppID  string
	Title  string
	Width  float32
	Height float32

	// ConsoleLines caps the console view buffer.
	ConsoleLines int

	// Actions appear as toolbar buttons under the console.
	Actions []Action
}

// DefaultFyneConfig returns the standard window configuration.
func DefaultFyneConfig() FyneConfig {
	return FyneConfig{
		AppID:        "com.scribeview.desktop",
		Title:        "ScribeView",
		Width:        900,
		Height:       600,
		ConsoleLines: 500,
	}
}

// FyneHost is the real desktop window. The window shows the backend's
// console output and a status line; the web frontend itself runs in the
// user's browser against the local backend.
type FyneHost struct {
	fyneApp fyne.App
	win     fyne.Window

	console *ConsoleBuffer
	output  *widget.RichText
	status  *widget.Label

	destroyed []func()
}

var _ Host = (*FyneHost)(nil)

// NewFyneHost builds the window. Must be called from the main goroutine.
func NewFyneHost(cfg FyneConfig) *FyneHost {
	if cfg.AppID == "" {
		cfg = DefaultFyneConfig()
	}

	fyneApp := app.NewWithID(cfg.AppID)
	win := fyneApp.NewWindow(cfg.Title)
	win.Resize(fyne.NewSize(cfg.Width, cfg.Height))
	win.CenterOnScreen()
	win.SetMaster()

	h := &FyneHost{
		fyneApp: fyneApp,
		win:     win,
		console: NewConsoleBuffer(cfg.ConsoleLines),
		output:  widget.NewRichText(),
		status:  widget.NewLabel("starting"),
	}
	h.output.Wrapping = fyne.TextWrapWord

	outputScroll := container.NewScroll(h.output)
	outputScroll.SetMinSize(fyne.NewSize(400, 200))

	var buttons []fyne.CanvasObject
	for _, action := range cfg.Actions {
		action := action
		buttons = append(buttons, widget.NewButton(action.Label, action.Run))
	}

	content := container.NewBorder(
		widget.NewLabel("Backend console:"),
		container.NewVBox(container.NewHBox(buttons...), h.status),
		nil, nil,
		outputScroll,
	)
	win.SetContent(content)

	// Both close paths fire the destroy callbacks; subscribers tolerate
	// duplicates.
	win.SetCloseIntercept(func() {
		h.fireDestroyed()
		win.Close()
	})
	win.SetOnClosed(h.fireDestroyed)

	return h
}

// SetTitle sets the window title.
func (h *FyneHost) SetTitle(title string) {
	fyne.Do(func() {
		h.win.SetTitle(title)
	})
}

// AppendConsole adds a backend output line to the console view. Safe from
// any goroutine.
func (h *FyneHost) AppendConsole(line string) {
	h.console.Append(line)
	text := h.console.Text()
	fyne.Do(func() {
		h.output.ParseMarkdown("```\n" + text + "\n```")
	})
}

// ConsoleText returns the buffered console content.
func (h *FyneHost) ConsoleText() string {
	return h.console.Text()
}

// SetStatus replaces the status line. Safe from any goroutine.
func (h *FyneHost) SetStatus(text string) {
	fyne.Do(func() {
		h.status.SetText(text)
	})
}

// OnDestroyed registers a window-destroyed callback.
func (h *FyneHost) OnDestroyed(fn func()) {
	h.destroyed = append(h.destroyed, fn)
}

// ShowAndRun shows the window and runs the event loop until close.
func (h *FyneHost) ShowAndRun() {
	h.win.ShowAndRun()
}

// Close closes the window.
func (h *FyneHost) Close() {
	fyne.Do(func() {
		h.win.Close()
	})
}

// Window exposes the underlying window for native dialogs.
func (h *FyneHost) Window() fyne.Window {
	return h.win
}

// App exposes the underlying app for URL opening.
func (h *FyneHost) App() fyne.App {
	return h.fyneApp
}

func (h *FyneHost) fireDestroyed() {
	for _, fn := range h.destroyed {
		fn()
	}
}
