package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	appauth "github.com/bryanwahyu/admissions-desk/internal/application/auth"
	appreview "github.com/bryanwahyu/admissions-desk/internal/application/review"
	"github.com/bryanwahyu/admissions-desk/internal/domain/review"
	"github.com/bryanwahyu/admissions-desk/internal/domain/screens"
	"github.com/bryanwahyu/admissions-desk/internal/domain/session"
	"github.com/bryanwahyu/admissions-desk/internal/logger"
)

const (
	pageLogin     = "login"
	pageHome      = "home"
	pageDashboard = "dashboard"
	pageReview    = "review"
	pageProfile   = "profile"
	pageMessage   = "message"
)

// DeviceStore is the session storage of this machine.
type DeviceStore interface {
	session.Store
	Current(ctx context.Context) (*session.Session, error)
}

type Deps struct {
	Loader screens.Loader
	Auth   *appauth.Service
	Review *appreview.Service
	Device DeviceStore
	Logger *slog.Logger
}

// App is the terminal front-end. Fields below app are only touched on the
// tview event goroutine.
type App struct {
	deps   Deps
	ctx    context.Context
	app    *tview.Application
	pages  *tview.Pages
	update func(func())

	session *session.Session

	login       *tview.Form
	menu        *tview.List
	dashboard   *tview.TextView
	leads       int
	leadsLoaded bool
	leadsErr    string
	reviewInput *tview.InputField
	reviewOut   *tview.TextView
	profile     *tview.TextView
	screenPages map[screens.Name]*screenPage
}

func New(d Deps) *App {
	a := &App{
		deps:        d,
		ctx:         context.Background(),
		app:         tview.NewApplication(),
		pages:       tview.NewPages(),
		screenPages: make(map[screens.Name]*screenPage),
	}
	a.update = func(f func()) { a.app.QueueUpdateDraw(f) }

	a.pages.AddPage(pageLogin, a.buildLogin(), true, true)
	a.pages.AddPage(pageHome, a.buildMenu(), true, false)
	a.pages.AddPage(pageDashboard, a.buildDashboard(), true, false)
	a.pages.AddPage(pageReview, a.buildReview(), true, false)
	a.pages.AddPage(pageProfile, a.buildProfile(), true, false)
	a.app.SetRoot(a.pages, true)
	return a
}

// Run resumes the device session if there is one and blocks until the user
// quits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.ctx = ctx
	a.resume(ctx)

	go func() {
		<-ctx.Done()
		a.app.Stop()
	}()
	return a.app.Run()
}

// resume skips the login page when the device still holds a session.
func (a *App) resume(ctx context.Context) {
	sess, err := a.deps.Device.Current(ctx)
	switch {
	case err == nil:
		a.log().InfoContext(logger.WithSessionID(ctx, string(sess.ID)), "session resumed")
		a.signedIn(sess)
	case !errors.Is(err, session.ErrNotFound):
		a.log().WarnContext(ctx, "device session unreadable", slog.String("error", err.Error()))
	}
}

func (a *App) buildLogin() tview.Primitive {
	a.login = tview.NewForm().
		AddInputField("Employee ID", "", 30, nil, nil).
		AddPasswordField("Password", "", 30, '*', nil)
	a.login.AddButton("Login", func() {
		empid := a.login.GetFormItemByLabel("Employee ID").(*tview.InputField).GetText()
		password := a.login.GetFormItemByLabel("Password").(*tview.InputField).GetText()
		a.submitLogin(empid, password)
	})
	a.login.AddButton("Quit", a.app.Stop)
	a.login.SetBorder(true).SetTitle(accentText(" Admissions Desk ")).SetTitleAlign(tview.AlignCenter)
	return centered(a.login, 50, 9)
}

func (a *App) submitLogin(empid, password string) {
	go func() {
		sess, err := a.deps.Auth.Login(a.ctx, empid, password)
		a.update(func() {
			if err != nil {
				a.showMessage(loginMessage(err))
				return
			}
			a.login.GetFormItemByLabel("Password").(*tview.InputField).SetText("")
			a.signedIn(sess)
		})
	}()
}

func loginMessage(err error) string {
	var rejected *session.RejectedError
	switch {
	case errors.Is(err, session.ErrMissingCredentials):
		return "Please enter your employee ID and password."
	case errors.As(err, &rejected):
		return rejected.Error()
	default:
		return "Login failed. Please check your connection and try again."
	}
}

func (a *App) signedIn(sess *session.Session) {
	a.session = sess
	a.menu.SetTitle(accentText(" Welcome, " + sess.DisplayName() + " "))
	a.pages.SwitchToPage(pageHome)
}

func (a *App) buildMenu() tview.Primitive {
	a.menu = tview.NewList().ShowSecondaryText(false)
	for i, item := range a.menuItems() {
		a.menu.AddItem(item.label, "", rune('1'+i), item.open)
	}
	a.menu.SetBorder(true).SetTitleAlign(tview.AlignLeft)
	return a.menu
}

type menuItem struct {
	label string
	open  func()
}

func (a *App) menuItems() []menuItem {
	return []menuItem{
		{"Dashboard", a.showDashboard},
		{"Leads", func() { a.showScreen(screens.Leads) }},
		{"Applications", func() { a.showScreen(screens.Applications) }},
		{"Application Review", a.showReview},
		{"Users", func() { a.showScreen(screens.Users) }},
		{"Queries", func() { a.showScreen(screens.Queries) }},
		{"Campus Visit", func() { a.showScreen(screens.CampusVisits) }},
		{"Profile", a.showProfile},
		{"Logout", a.logout},
	}
}

func (a *App) goHome() { a.pages.SwitchToPage(pageHome) }

func (a *App) buildDashboard() tview.Primitive {
	a.dashboard = tview.NewTextView().SetDynamicColors(true).SetTextAlign(tview.AlignCenter)
	a.dashboard.SetBorder(true).SetTitle(accentText(" Dashboard ")).SetTitleAlign(tview.AlignLeft)
	a.dashboard.SetInputCapture(backOnEscape(a.goHome))
	a.renderDashboard()
	return a.dashboard
}

func (a *App) renderDashboard() {
	a.dashboard.SetText(dashboardText(a.leads, !a.leadsLoaded, a.leadsErr))
}

// showDashboard counts every lead, so it fetches the Leads endpoint.
func (a *App) showDashboard() {
	a.pages.SwitchToPage(pageDashboard)
	leads, _ := screens.Lookup(screens.Leads)
	go func() {
		ctx := logger.WithScreen(a.ctx, string(leads.Name))
		snap, err := a.deps.Loader.Fetch(ctx, leads.Endpoint)
		if err != nil {
			a.log().WarnContext(ctx, "dashboard fetch failed", slog.String("error", err.Error()))
		}
		a.update(func() {
			if err != nil {
				a.leadsErr = err.Error()
			} else {
				a.leads, a.leadsLoaded, a.leadsErr = len(snap.Records), true, ""
			}
			a.renderDashboard()
		})
	}()
}

// showScreen switches to a data screen and fetches it again. Rows from the
// previous visit stay until the new snapshot arrives.
func (a *App) showScreen(name screens.Name) {
	p, ok := a.screenPages[name]
	if !ok {
		s, err := screens.Lookup(name)
		if err != nil {
			a.showMessage(err.Error())
			return
		}
		p = newScreenPage(s)
		p.onBack = a.goHome
		p.onRefresh = func() { a.fetch(p) }
		p.focus = func(target tview.Primitive) { a.app.SetFocus(target) }
		a.screenPages[name] = p
		a.pages.AddPage(screenPageName(name), p.root, true, false)
	}
	a.pages.SwitchToPage(screenPageName(name))
	a.fetch(p)
}

func screenPageName(name screens.Name) string { return "screen:" + string(name) }

func (a *App) fetch(p *screenPage) {
	screen := p.screen
	go func() {
		ctx := logger.WithScreen(a.ctx, string(screen.Name))
		snap, err := a.deps.Loader.Fetch(ctx, screen.Endpoint)
		if err != nil {
			a.log().WarnContext(ctx, "screen fetch failed", slog.String("error", err.Error()))
			a.update(func() { p.setError(err) })
			return
		}
		snap = screen.Apply(snap)
		a.update(func() { p.setSnapshot(snap) })
	}()
}

func (a *App) buildReview() tview.Primitive {
	a.reviewOut = tview.NewTextView().SetDynamicColors(true).SetWordWrap(true)
	a.reviewOut.SetBorder(true).SetTitle(accentText(" Application ")).SetTitleAlign(tview.AlignLeft)
	a.reviewInput = tview.NewInputField().SetLabel("Application No: ").SetFieldWidth(24)
	a.reviewInput.SetDoneFunc(func(key tcell.Key) {
		switch key {
		case tcell.KeyEnter:
			a.lookup(a.reviewInput.GetText())
		case tcell.KeyEscape:
			a.goHome()
		}
	})
	return tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.reviewInput, 1, 0, true).
		AddItem(a.reviewOut, 0, 1, false)
}

func (a *App) showReview() {
	a.pages.SwitchToPage(pageReview)
}

func (a *App) lookup(number string) {
	reviewer := session.GuestName
	if a.session != nil {
		reviewer = a.session.DisplayName()
	}
	a.reviewOut.SetText("Loading...")
	go func() {
		r, err := a.deps.Review.Lookup(a.ctx, number, reviewer)
		a.update(func() {
			if err != nil {
				a.reviewOut.SetText(errorTag + tview.Escape(reviewMessage(err, number)) + accentReset)
				return
			}
			a.reviewOut.SetText(reviewText(r))
			a.reviewOut.ScrollToBeginning()
		})
	}()
}

func reviewMessage(err error, number string) string {
	switch {
	case errors.Is(err, review.ErrNumberRequired):
		return "Please enter an application number."
	case errors.Is(err, review.ErrNotFound):
		return fmt.Sprintf("No application found for %s.", number)
	default:
		return "Could not load the application. Please try again."
	}
}

func (a *App) buildProfile() tview.Primitive {
	a.profile = tview.NewTextView().SetDynamicColors(true).SetTextAlign(tview.AlignCenter)
	buttons := tview.NewForm().
		AddButton("Logout", a.logout).
		AddButton("Back", a.goHome).
		SetButtonsAlign(tview.AlignCenter)
	buttons.SetCancelFunc(a.goHome)
	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.profile, 0, 1, false).
		AddItem(buttons, 3, 0, true)
	layout.SetBorder(true).SetTitle(accentText(" Profile ")).SetTitleAlign(tview.AlignLeft)
	return layout
}

func (a *App) showProfile() {
	a.profile.SetText(profileText(a.session))
	a.pages.SwitchToPage(pageProfile)
}

func (a *App) logout() {
	sess := a.session
	a.session = nil
	a.pages.SwitchToPage(pageLogin)
	if sess == nil {
		return
	}
	go func() {
		if err := a.deps.Auth.Logout(a.ctx, sess.ID); err != nil {
			a.log().ErrorContext(a.ctx, "logout failed", slog.String("error", err.Error()))
		}
	}()
}

// showMessage opens a modal over the current page.
func (a *App) showMessage(text string) {
	modal := tview.NewModal().
		SetText(text).
		AddButtons([]string{"OK"}).
		SetDoneFunc(func(int, string) { a.pages.RemovePage(pageMessage) })
	a.pages.AddPage(pageMessage, modal, false, true)
}

func (a *App) log() *slog.Logger {
	if a.deps.Logger != nil {
		return a.deps.Logger
	}
	return slog.Default()
}

func backOnEscape(back func()) func(*tcell.EventKey) *tcell.EventKey {
	return func(ev *tcell.EventKey) *tcell.EventKey {
		if ev.Key() == tcell.KeyEscape {
			back()
			return nil
		}
		return ev
	}
}

// centered wraps p in a fixed-size box in the middle of the screen.
func centered(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 1, true).
			AddItem(nil, 0, 1, false), width, 1, true).
		AddItem(nil, 0, 1, false)
}
