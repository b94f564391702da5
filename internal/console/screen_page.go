package console

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/bryanwahyu/admissions-desk/internal/domain/listing"
	"github.com/bryanwahyu/admissions-desk/internal/domain/screens"
)

// screenPage is one data screen: search box, table and pager footer.
// All methods run on the tview event goroutine.
type screenPage struct {
	screen  screens.Screen
	list    *listing.List
	lastErr string

	root   *tview.Flex
	search *tview.InputField
	table  *tview.Table
	footer *tview.TextView

	// hooks set by the app
	onRefresh func()
	onBack    func()
	focus     func(tview.Primitive)
}

func newScreenPage(screen screens.Screen) *screenPage {
	p := &screenPage{
		screen: screen,
		list:   listing.New(screen.PageSize),
		search: tview.NewInputField().SetLabel("Search: ").SetFieldWidth(0),
		table:  tview.NewTable().SetFixed(1, 0).SetSelectable(true, false),
		footer: tview.NewTextView().SetDynamicColors(true),
	}
	p.table.SetBorder(true).SetTitle(accentText(screen.Title)).SetTitleAlign(tview.AlignLeft)
	p.table.SetBorderColor(tcell.ColorGray)

	p.search.SetChangedFunc(func(text string) {
		p.list.SetQuery(text)
		p.render()
	})
	p.search.SetDoneFunc(func(tcell.Key) { p.setFocus(p.table) })
	p.search.SetInputCapture(p.handleKey)
	p.table.SetInputCapture(p.tableKey)

	p.root = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(p.search, 1, 0, true).
		AddItem(p.table, 0, 1, false).
		AddItem(p.footer, 2, 0, false)
	p.render()
	return p
}

// setSnapshot installs freshly fetched records. The query is kept.
func (p *screenPage) setSnapshot(snap screens.Snapshot) {
	p.list.SetSnapshot(snap.Records)
	p.lastErr = ""
	p.render()
}

// setError records a failed fetch; the rows on screen stay.
func (p *screenPage) setError(err error) {
	p.lastErr = err.Error()
	p.render()
}

func (p *screenPage) render() {
	v := p.list.View()

	p.table.Clear()
	for c, h := range p.screen.Headers() {
		p.table.SetCell(0, c, tview.NewTableCell(accentText(h)).SetSelectable(false).SetExpansion(1))
	}
	for r, rec := range v.Items {
		for c, cell := range p.screen.Row(rec) {
			p.table.SetCell(r+1, c, tview.NewTableCell(tview.Escape(cell)).SetExpansion(1).SetMaxWidth(40))
		}
	}
	p.table.ScrollToBeginning()
	p.footer.SetText(footerText(v, !p.list.Loaded(), p.lastErr))
}

func (p *screenPage) handleKey(ev *tcell.EventKey) *tcell.EventKey {
	switch ev.Key() {
	case tcell.KeyPgDn:
		p.list.NextPage()
		p.render()
		return nil
	case tcell.KeyPgUp:
		p.list.PrevPage()
		p.render()
		return nil
	case tcell.KeyCtrlR:
		if p.onRefresh != nil {
			p.onRefresh()
		}
		return nil
	case tcell.KeyEscape:
		if p.onBack != nil {
			p.onBack()
		}
		return nil
	}
	return ev
}

// tableKey adds single-letter shortcuts that would be typed text in the search box.
func (p *screenPage) tableKey(ev *tcell.EventKey) *tcell.EventKey {
	if ev.Key() != tcell.KeyRune {
		return p.handleKey(ev)
	}
	switch ev.Rune() {
	case '[':
		return p.handleKey(tcell.NewEventKey(tcell.KeyPgUp, 0, tcell.ModNone))
	case ']':
		return p.handleKey(tcell.NewEventKey(tcell.KeyPgDn, 0, tcell.ModNone))
	case 'r':
		return p.handleKey(tcell.NewEventKey(tcell.KeyCtrlR, 0, tcell.ModNone))
	case '/':
		p.setFocus(p.search)
		return nil
	}
	return ev
}

func (p *screenPage) setFocus(target tview.Primitive) {
	if p.focus != nil {
		p.focus(target)
	}
}
