package tui

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gdamore/tcell/v2"

	"svw.info/blockpuzzle/internal/domain"
	"svw.info/blockpuzzle/internal/ports"
	"svw.info/blockpuzzle/internal/session"
)

// Layout offsets in screen cells. Grid cells are two columns wide.
const (
	originX   = 2
	originY   = 1
	cellWidth = 2
	slotWidth = 10
)

// App is a terminal host for one local session. It owns no game logic: keys
// become session commands and the snapshot is redrawn after each one.
type App struct {
	screen  tcell.Screen
	sess    *session.Session
	hinter  ports.Hinter
	wallet  ports.Wallet
	palette []tcell.Color
	logger  *slog.Logger

	cursor   domain.Coord
	selected int
	status   string
}

func New(screen tcell.Screen, sess *session.Session, hinter ports.Hinter, wallet ports.Wallet, palette []string, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	a := &App{screen: screen, sess: sess, hinter: hinter, wallet: wallet, logger: logger}
	for _, p := range palette {
		a.palette = append(a.palette, tcell.GetColor(p))
	}
	if len(a.palette) == 0 {
		a.palette = []tcell.Color{tcell.ColorYellow}
	}
	a.status = "arrows move · 1-3 pick · space drop · s shuffle · r rotate · b bomb · h hint · n new · q quit"
	return a
}

// Run draws and handles events until the player quits. It returns the
// coins paid out on exit.
func (a *App) Run(ctx context.Context) (int, error) {
	a.Draw()
	for {
		ev := a.screen.PollEvent()
		if ev == nil {
			break
		}
		switch ev := ev.(type) {
		case *tcell.EventResize:
			a.screen.Sync()
		case *tcell.EventKey:
			if a.HandleKey(ctx, ev) {
				return a.exit(ctx)
			}
		}
		a.Draw()
	}
	return a.exit(ctx)
}

func (a *App) exit(ctx context.Context) (int, error) {
	payout := a.sess.Exit()
	return payout, a.credit(ctx, payout)
}

func (a *App) credit(ctx context.Context, amount int) error {
	if a.wallet == nil || amount <= 0 {
		return nil
	}
	bal, err := a.wallet.Credit(ctx, amount)
	if err != nil {
		a.logger.Warn("wallet credit failed", "amount", amount, "err", err)
		return err
	}
	a.logger.Info("coins paid out", "amount", amount, "balance", bal)
	return nil
}

// HandleKey applies one key press. It reports whether the player quit.
func (a *App) HandleKey(ctx context.Context, ev *tcell.EventKey) bool {
	snap := a.sess.Snapshot()
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyUp:
		a.move(snap, -1, 0)
	case tcell.KeyDown:
		a.move(snap, 1, 0)
	case tcell.KeyLeft:
		a.move(snap, 0, -1)
	case tcell.KeyRight:
		a.move(snap, 0, 1)
	case tcell.KeyEnter:
		a.run(ctx, domain.Command{Op: domain.OpPlace, Slot: a.selected, Row: a.cursor.Row, Col: a.cursor.Col})
	case tcell.KeyRune:
		switch r := ev.Rune(); r {
		case 'q':
			return true
		case ' ':
			a.run(ctx, domain.Command{Op: domain.OpPlace, Slot: a.selected, Row: a.cursor.Row, Col: a.cursor.Col})
		case 's':
			a.run(ctx, domain.Command{Op: domain.OpActivate, PowerUp: domain.Shuffle})
		case 'r':
			a.run(ctx, domain.Command{Op: domain.OpActivate, PowerUp: domain.Rotate})
		case 'b':
			a.run(ctx, domain.Command{Op: domain.OpActivate, PowerUp: domain.Bomb})
		case 't':
			a.run(ctx, domain.Command{Op: domain.OpRotate, Slot: a.selected})
		case 'n':
			a.run(ctx, domain.Command{Op: domain.OpReset})
		case 'h':
			a.hint(ctx, snap)
		default:
			if r >= '1' && r <= '9' && int(r-'1') < len(snap.Hand) {
				a.selected = int(r - '1')
			}
		}
	}
	return false
}

func (a *App) move(snap domain.Snapshot, dr, dc int) {
	a.cursor.Row = min(max(a.cursor.Row+dr, 0), snap.Rows-1)
	a.cursor.Col = min(max(a.cursor.Col+dc, 0), snap.Cols-1)
}

func (a *App) run(ctx context.Context, c domain.Command) {
	events, err := a.sess.Apply(c)
	if err != nil {
		a.status = err.Error()
		a.logger.Debug("command rejected", "op", c.Op, "err", err)
		return
	}
	a.status = ""
	for _, e := range events {
		switch e.Kind {
		case domain.EventLinesCleared:
			a.status = fmt.Sprintf("cleared %d line(s) +%d", len(e.Rows)+len(e.Cols), e.Amount)
		case domain.EventGameWon:
			a.status = "level complete! n for a new game"
		case domain.EventGameLost:
			a.status = "no moves left. n for a new game"
		case domain.EventPayout:
			if err := a.credit(ctx, e.Amount); err != nil {
				a.status = err.Error()
			}
		}
	}
	a.logger.Debug("command applied", "op", c.Op, "events", len(events))
}

func (a *App) hint(ctx context.Context, snap domain.Snapshot) {
	if a.hinter == nil {
		return
	}
	h, ok, err := a.hinter.Hint(ctx, snap)
	switch {
	case err != nil:
		a.status = err.Error()
	case !ok:
		a.status = "no block fits"
	default:
		a.selected = h.Slot
		a.cursor = h.Origin
		a.status = fmt.Sprintf("try slot %d here", h.Slot+1)
		if h.Rotated {
			a.status += " after rotating it"
		}
	}
}

func (a *App) color(id domain.ColorID) tcell.Color {
	return a.palette[int(id)%len(a.palette)]
}

// Draw renders the current snapshot.
func (a *App) Draw() {
	snap := a.sess.Snapshot()
	s := a.screen
	s.Clear()

	for r, line := range snap.Grid {
		for c, cell := range line {
			x, y := originX+c*cellWidth, originY+r
			ch, style := '·', tcell.StyleDefault.Foreground(tcell.ColorGray)
			if cell.Filled {
				ch, style = '█', tcell.StyleDefault.Foreground(a.color(cell.Color))
				if cell.Marker {
					ch = '$'
				}
			}
			if r == a.cursor.Row && c == a.cursor.Col {
				style = style.Reverse(true)
			}
			s.SetContent(x, y, ch, nil, style)
			s.SetContent(x+1, y, ' ', nil, style)
		}
	}

	handY := originY + snap.Rows + 1
	for i, b := range snap.Hand {
		x := originX + i*slotWidth
		label := fmt.Sprintf(" %d ", i+1)
		if i == a.selected {
			label = fmt.Sprintf("[%d]", i+1)
		}
		a.text(x, handY, label, tcell.StyleDefault)
		if b.Placed {
			continue
		}
		for r, line := range b.Shape {
			for c, v := range line {
				if !v {
					continue
				}
				ch := '█'
				if b.Marker != nil && b.Marker.Row == r && b.Marker.Col == c {
					ch = '$'
				}
				st := tcell.StyleDefault.Foreground(a.color(b.Color))
				s.SetContent(x+c*cellWidth, handY+1+r, ch, nil, st)
				s.SetContent(x+c*cellWidth+1, handY+1+r, ' ', nil, st)
			}
		}
	}

	infoY := handY + 5
	total := "score"
	if snap.Mode == domain.ModeCoins {
		total = "coins"
	}
	a.text(originX, infoY, fmt.Sprintf("%s %d   lines %d   level %3.0f%%   %s",
		total, snap.Score, snap.LinesCleared, snap.LevelProgress*100, snap.Outcome), tcell.StyleDefault.Bold(true))
	x := originX
	for _, p := range snap.PowerUps {
		label := fmt.Sprintf("%s %3.0f%%", p.Kind, p.Readiness*100)
		st := tcell.StyleDefault
		if p.Ready() {
			st = st.Foreground(tcell.ColorGreen)
		}
		if snap.Armed == p.Kind {
			st = st.Reverse(true)
		}
		a.text(x, infoY+1, label, st)
		x += len(label) + 3
	}
	a.text(originX, infoY+3, a.status, tcell.StyleDefault.Foreground(tcell.ColorSilver))
	s.Show()
}

func (a *App) text(x, y int, str string, style tcell.Style) {
	for _, r := range str {
		a.screen.SetContent(x, y, r, nil, style)
		x++
	}
}
