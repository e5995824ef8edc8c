package detector

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/spatialtouch/internal/log"
)

// ErrScriptNotFound is returned when mediapipe_service.py cannot be located.
var ErrScriptNotFound = errors.New("mediapipe_service.py not found")

const (
	serviceScript = "mediapipe_service.py"
	// idleShutdown stops the service after this long without a frame.
	idleShutdown = 30 * time.Second
	// jpegQuality trades landmark accuracy for pipe bandwidth.
	jpegQuality = 85
)

// MediaPipeDetector runs hand landmark detection in a Python MediaPipe
// service. The service is started on the first frame, stopped after a
// period without frames, and restarted after an I/O failure.
type MediaPipeDetector struct {
	config Config
	script string

	mu       sync.Mutex
	svc      *service
	lastUsed time.Time
	idle     *time.Timer
}

// NewMediaPipeDetector locates the service script. It does not start
// Python.
func NewMediaPipeDetector(config Config) (*MediaPipeDetector, error) {
	script := config.ScriptPath
	if script == "" {
		script = locate(filepath.Join("scripts", serviceScript))
	}
	if script == "" {
		return nil, ErrScriptNotFound
	}
	if _, err := os.Stat(script); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScriptNotFound, err)
	}
	return &MediaPipeDetector{config: config, script: script}, nil
}

func (d *MediaPipeDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	if frame == nil || frame.Empty() {
		return nil, nil
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, *frame, []int{int(gocv.IMWriteJpegQuality), jpegQuality})
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.svc == nil {
		svc, err := startService(d.command())
		if err != nil {
			return nil, err
		}
		d.svc = svc
	}

	hands, err := d.svc.roundTrip(buf.GetBytes())
	var svcErr *serviceError
	if err != nil && !errors.As(err, &svcErr) {
		// the pipe is out of sync; start over on the next frame
		d.stopLocked()
		return nil, err
	}

	d.lastUsed = time.Now()
	d.armIdle()
	return hands, err
}

// Close stops the service if it is running.
func (d *MediaPipeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopLocked()
}

func (d *MediaPipeDetector) stopLocked() error {
	if d.idle != nil {
		d.idle.Stop()
		d.idle = nil
	}
	if d.svc == nil {
		return nil
	}
	err := d.svc.stop()
	d.svc = nil
	return err
}

func (d *MediaPipeDetector) armIdle() {
	if d.idle != nil {
		d.idle.Reset(idleShutdown)
		return
	}
	d.idle = time.AfterFunc(idleShutdown, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.svc == nil || time.Since(d.lastUsed) < idleShutdown {
			return
		}
		d.idle = nil
		if err := d.svc.stop(); err != nil {
			log.Warn("mediapipe idle shutdown", "error", err)
		}
		d.svc = nil
	})
}

// command builds the interpreter invocation from the detection config.
func (d *MediaPipeDetector) command() []string {
	python := locate(filepath.Join("venv", "bin", "python"))
	if python == "" {
		python = "python3"
	}
	return []string{
		python, d.script,
		"--max-hands", strconv.Itoa(d.config.MaxHands),
		"--min-detection-confidence", strconv.FormatFloat(d.config.MinConfidence, 'f', -1, 64),
		"--min-tracking-confidence", strconv.FormatFloat(d.config.MinTrackingConf, 'f', -1, 64),
		"--model-complexity", strconv.Itoa(d.config.ModelComplexity),
	}
}

// service is one running detection process. Requests are a 4-byte
// big-endian length followed by JPEG bytes; each is answered by one JSON
// line.
type service struct {
	cmd *exec.Cmd
	in  io.Closer
	w   *bufio.Writer
	r   *bufio.Reader
}

func startService(argv []string) (*service, error) {
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stderr = os.Stderr
	cmd.WaitDelay = 2 * time.Second

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("mediapipe stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("mediapipe stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start mediapipe service: %w", err)
	}

	log.Info("mediapipe service started", "pid", cmd.Process.Pid, "argv", argv)
	return &service{
		cmd: cmd,
		in:  stdin,
		w:   bufio.NewWriter(stdin),
		r:   bufio.NewReader(stdout),
	}, nil
}

func (s *service) roundTrip(jpeg []byte) ([]HandLandmarks, error) {
	if err := writeFrame(s.w, jpeg); err != nil {
		return nil, fmt.Errorf("send frame: %w", err)
	}
	line, err := s.r.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return parseResponse(line)
}

// stop closes stdin, which the service treats as shutdown, and waits.
func (s *service) stop() error {
	s.in.Close()
	err := s.cmd.Wait()
	log.Info("mediapipe service stopped")
	return err
}

func writeFrame(w *bufio.Writer, jpeg []byte) error {
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(jpeg)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	if _, err := w.Write(jpeg); err != nil {
		return err
	}
	return w.Flush()
}

// serviceError is a failure reported by the service itself. The stream
// stays usable after one.
type serviceError struct{ msg string }

func (e *serviceError) Error() string { return "mediapipe service: " + e.msg }

// parseResponse decodes one response line. Hands with fewer than
// NumLandmarks points are dropped.
func parseResponse(line []byte) ([]HandLandmarks, error) {
	var resp struct {
		Hands []struct {
			Points     []Point3D `json:"points"`
			Handedness string    `json:"handedness"`
			Score      float64   `json:"score"`
		} `json:"hands"`
		Error string `json:"error,omitempty"`
	}
	if err := json.Unmarshal(line, &resp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if resp.Error != "" {
		return nil, &serviceError{msg: resp.Error}
	}

	hands := make([]HandLandmarks, 0, len(resp.Hands))
	for _, h := range resp.Hands {
		if len(h.Points) < NumLandmarks {
			continue
		}
		lm := HandLandmarks{Handedness: h.Handedness, Score: h.Score}
		copy(lm.Points[:], h.Points)
		hands = append(hands, lm)
	}
	return hands, nil
}

// locate resolves rel against the working directory, its parent, the
// executable's directory and ~/.spatialtouch, returning the first absolute
// path that exists.
func locate(rel string) string {
	roots := []string{".", ".."}
	if exe, err := os.Executable(); err == nil {
		roots = append(roots, filepath.Dir(exe))
	}
	if home, err := os.UserHomeDir(); err == nil {
		roots = append(roots, filepath.Join(home, ".spatialtouch"))
	}
	for _, root := range roots {
		p := filepath.Join(root, rel)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			return abs
		}
		return p
	}
	return ""
}
