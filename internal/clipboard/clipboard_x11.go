//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && !cgo

package clipboard

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"sync"
	"time"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// x11Owner holds a CLIPBOARD selection and answers conversion
// requests until another client claims the selection. It speaks the
// core protocol directly so the nocgo build needs no C toolchain.
type x11Owner struct {
	conn   *xgb.Conn
	window xproto.Window
	atoms  atomSet

	mu  sync.Mutex
	png []byte
}

type atomSet struct {
	clipboard xproto.Atom
	targets   xproto.Atom
	imagePNG  xproto.Atom
	property  xproto.Atom
}

var ownerMu sync.Mutex
var owner *x11Owner

func writeImage(img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode clipboard image: %w", err)
	}

	ownerMu.Lock()
	defer ownerMu.Unlock()
	if owner == nil {
		o, err := newOwner()
		if err != nil {
			return err
		}
		owner = o
		go owner.eventLoop()
	}
	return owner.claim(buf.Bytes())
}

func readImage() (image.Image, error) {
	o, err := newOwner()
	if err != nil {
		return nil, err
	}
	defer o.conn.Close()
	data, err := o.readSelection(o.atoms.imagePNG)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("clipboard holds no image")
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode clipboard image: %w", err)
	}
	return img, nil
}

func newOwner() (*x11Owner, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connect X display: %w", err)
	}
	setup := xproto.Setup(conn)
	screen := setup.DefaultScreen(conn)

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("allocate window id: %w", err)
	}
	err = xproto.CreateWindowChecked(conn, screen.RootDepth, wid, screen.Root,
		-10, -10, 1, 1, 0, xproto.WindowClassInputOutput, screen.RootVisual,
		xproto.CwEventMask, []uint32{xproto.EventMaskPropertyChange}).Check()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create selection window: %w", err)
	}

	o := &x11Owner{conn: conn, window: wid}
	if err := o.internAtoms(); err != nil {
		conn.Close()
		return nil, err
	}
	return o, nil
}

func (o *x11Owner) internAtoms() error {
	names := []struct {
		name string
		dst  *xproto.Atom
	}{
		{"CLIPBOARD", &o.atoms.clipboard},
		{"TARGETS", &o.atoms.targets},
		{"image/png", &o.atoms.imagePNG},
		{"INKSHOT_CLIPBOARD", &o.atoms.property},
	}
	for _, n := range names {
		reply, err := xproto.InternAtom(o.conn, false, uint16(len(n.name)), n.name).Reply()
		if err != nil {
			return fmt.Errorf("intern atom %s: %w", n.name, err)
		}
		*n.dst = reply.Atom
	}
	return nil
}

func (o *x11Owner) claim(data []byte) error {
	o.mu.Lock()
	o.png = data
	o.mu.Unlock()

	err := xproto.SetSelectionOwnerChecked(o.conn, o.window, o.atoms.clipboard, xproto.TimeCurrentTime).Check()
	if err != nil {
		return fmt.Errorf("claim clipboard selection: %w", err)
	}
	reply, err := xproto.GetSelectionOwner(o.conn, o.atoms.clipboard).Reply()
	if err != nil {
		return fmt.Errorf("verify selection owner: %w", err)
	}
	if reply.Owner != o.window {
		return fmt.Errorf("clipboard selection claimed by another client")
	}
	return nil
}

func (o *x11Owner) eventLoop() {
	for {
		ev, err := o.conn.WaitForEvent()
		if err != nil {
			continue
		}
		if ev == nil {
			return
		}
		switch e := ev.(type) {
		case xproto.SelectionRequestEvent:
			o.handleRequest(e)
		case xproto.SelectionClearEvent:
			o.mu.Lock()
			o.png = nil
			o.mu.Unlock()
		}
	}
}

func (o *x11Owner) handleRequest(req xproto.SelectionRequestEvent) {
	prop := req.Property
	if prop == xproto.AtomNone {
		prop = req.Target
	}
	granted := prop

	switch req.Target {
	case o.atoms.targets:
		data := atomsToBytes(o.atoms.targets, o.atoms.imagePNG)
		xproto.ChangeProperty(o.conn, xproto.PropModeReplace, req.Requestor,
			prop, xproto.AtomAtom, 32, uint32(len(data)/4), data)
	case o.atoms.imagePNG:
		o.mu.Lock()
		data := o.png
		o.mu.Unlock()
		if data == nil {
			granted = xproto.AtomNone
			break
		}
		xproto.ChangeProperty(o.conn, xproto.PropModeReplace, req.Requestor,
			prop, req.Target, 8, uint32(len(data)), data)
	default:
		granted = xproto.AtomNone
	}

	notify := xproto.SelectionNotifyEvent{
		Time:      req.Time,
		Requestor: req.Requestor,
		Selection: req.Selection,
		Target:    req.Target,
		Property:  granted,
	}
	xproto.SendEvent(o.conn, false, req.Requestor, xproto.EventMaskNoEvent, string(notify.Bytes()))
}

// readSelection asks the current owner to convert the CLIPBOARD
// selection to target and waits for the notify.
func (o *x11Owner) readSelection(target xproto.Atom) ([]byte, error) {
	err := xproto.ConvertSelectionChecked(o.conn, o.window, o.atoms.clipboard,
		target, o.atoms.property, xproto.TimeCurrentTime).Check()
	if err != nil {
		return nil, fmt.Errorf("request selection: %w", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		ev, err := o.conn.PollForEvent()
		if err != nil {
			return nil, fmt.Errorf("read selection event: %w", err)
		}
		if ev == nil {
			time.Sleep(10 * time.Millisecond)
			continue
		}
		notify, ok := ev.(xproto.SelectionNotifyEvent)
		if !ok {
			continue
		}
		if notify.Property == xproto.AtomNone {
			return nil, nil
		}
		reply, replyErr := xproto.GetProperty(o.conn, true, o.window, notify.Property,
			xproto.GetPropertyTypeAny, 0, 1<<24).Reply()
		if replyErr != nil {
			return nil, fmt.Errorf("fetch selection property: %w", replyErr)
		}
		return reply.Value, nil
	}
	return nil, fmt.Errorf("selection read timed out")
}

func atomsToBytes(atoms ...xproto.Atom) []byte {
	data := make([]byte, 4*len(atoms))
	for i, a := range atoms {
		xgb.Put32(data[4*i:], uint32(a))
	}
	return data
}
