package capture

import (
	"bytes"
	"errors"
	"testing"

	"gocv.io/x/gocv"
)

func TestPreview_Empty(t *testing.T) {
	p := NewPreview(0)
	if data, seq := p.Latest(); data != nil || seq != 0 {
		t.Errorf("Latest() = %d bytes, seq %d; want nothing", len(data), seq)
	}
	if err := p.Publish(nil); !errors.Is(err, ErrEmptyFrame) {
		t.Errorf("Publish(nil) error = %v, want ErrEmptyFrame", err)
	}
	if p.quality != 80 {
		t.Errorf("quality = %d, want 80", p.quality)
	}
}

func TestPreview_Publish(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	frame := gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3)
	defer frame.Close()

	p := NewPreview(70)
	for i := 1; i <= 2; i++ {
		if err := p.Publish(&frame); err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
		data, seq := p.Latest()
		if seq != uint64(i) {
			t.Errorf("seq = %d, want %d", seq, i)
		}
		if !bytes.HasPrefix(data, []byte{0xFF, 0xD8}) {
			t.Error("preview is not a JPEG")
		}
	}
}
