package capture

import (
	"errors"
	"slices"
	"testing"
)

func TestMockCamera_Playback(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	tests := []struct {
		name  string
		loop  bool
		reads int
		// errs[i] is the expected error of read i
		errs []error
	}{
		{"once", false, 4, []error{nil, nil, ErrNoMoreFrames, ErrNoMoreFrames}},
		{"loop", true, 5, []error{nil, nil, nil, nil, nil}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := NewSolidMockCamera(2, 64, 48)
			defer src.Release()
			cam := NewMockCamera(src.frames, tt.loop)

			if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
				t.Fatalf("ReadFrame() before Open error = %v, want ErrCameraNotOpen", err)
			}
			cam.Open()
			defer cam.Close()

			for i := range tt.reads {
				f, err := cam.ReadFrame()
				if !errors.Is(err, tt.errs[i]) {
					t.Fatalf("read %d error = %v, want %v", i, err, tt.errs[i])
				}
				if err != nil {
					continue
				}
				if f.Cols() != 64 || f.Rows() != 48 {
					t.Errorf("read %d size = %dx%d, want 64x48", i, f.Cols(), f.Rows())
				}
				f.Close()
			}
			if got := cam.Reads(); got != tt.reads {
				t.Errorf("Reads() = %d, want %d", got, tt.reads)
			}

			cam.Reset()
			f, err := cam.ReadFrame()
			if err != nil {
				t.Fatalf("ReadFrame() after Reset error = %v", err)
			}
			f.Close()
		})
	}
}

func TestMockCamera_Errors(t *testing.T) {
	cam := NewMockCamera(nil, true)
	cam.Open()

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrEmptyFrame) {
		t.Errorf("ReadFrame() with no frames error = %v, want ErrEmptyFrame", err)
	}

	unplugged := errors.New("device unplugged")
	cam.FailReads(unplugged)
	if _, err := cam.ReadFrame(); !errors.Is(err, unplugged) {
		t.Errorf("ReadFrame() error = %v, want %v", err, unplugged)
	}
	cam.FailReads(nil)
	if _, err := cam.ReadFrame(); !errors.Is(err, ErrEmptyFrame) {
		t.Errorf("ReadFrame() after clearing error = %v, want ErrEmptyFrame", err)
	}

	cam.Close()
	if cam.IsOpen() {
		t.Error("IsOpen() after Close")
	}
	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("ReadFrame() after Close error = %v", err)
	}
	if cam.Reads() != 3 {
		t.Errorf("Reads() = %d, want 3", cam.Reads())
	}
}

func TestMockCamera_FPSChanges(t *testing.T) {
	cam := NewMockCamera(nil, false)
	if cam.FPS() != DefaultFPS {
		t.Errorf("FPS() = %d, want %d", cam.FPS(), DefaultFPS)
	}

	for _, fps := range []int{30, 0, -2, 5} {
		cam.SetFPS(fps)
	}
	if got, want := cam.FPSChanges(), []int{30, 5}; !slices.Equal(got, want) {
		t.Errorf("FPSChanges() = %v, want %v", got, want)
	}
	if cam.FPS() != 5 {
		t.Errorf("FPS() = %d, want 5", cam.FPS())
	}
}
