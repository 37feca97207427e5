package detector

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"
)

// serviceIdleTimeout is how long the sidecar may sit unused before it is
// shut down to free its memory. It restarts lazily on the next inference.
const serviceIdleTimeout = 30 * time.Second

// ServiceEngine implements Engine by hosting the hand-pose network in a
// Python sidecar process. Each call writes the input tensor as a
// length-prefixed block of big-endian float32 values to the sidecar's stdin
// and reads one JSON line of per-hand outputs from its stdout.
type ServiceEngine struct {
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    *bufio.Reader
	mu        sync.Mutex
	started   bool
	idleTimer *time.Timer
}

// NewServiceEngine creates a sidecar engine. The Python process is started
// lazily on first inference, but a missing service script is reported here
// so startup can fail fast.
func NewServiceEngine() (*ServiceEngine, error) {
	if findServiceScript() == "" {
		return nil, fmt.Errorf("handpose_service.py not found")
	}
	return &ServiceEngine{}, nil
}

// InputShape reports the fixed tensor contract of the sidecar network.
func (e *ServiceEngine) InputShape() TensorShape {
	return InputShape
}

// Infer runs one forward pass in the sidecar.
func (e *ServiceEngine) Infer(input []float32) (*Outputs, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ensureStarted(); err != nil {
		return nil, err
	}

	payload := make([]byte, 4+len(input)*4)
	binary.BigEndian.PutUint32(payload, uint32(len(input)*4))
	for i, v := range input {
		binary.BigEndian.PutUint32(payload[4+i*4:], math.Float32bits(v))
	}
	if _, err := e.stdin.Write(payload); err != nil {
		return nil, fmt.Errorf("write tensor: %w", err)
	}

	line, err := e.stdout.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var response struct {
		Hands []struct {
			Landmarks  []float32 `json:"landmarks"`
			Score      float32   `json:"score"`
			Handedness float32   `json:"handedness"`
		} `json:"hands"`
	}
	if err := json.Unmarshal([]byte(line), &response); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	out := &Outputs{}
	for _, h := range response.Hands {
		if len(h.Landmarks) != NumLandmarks*landmarkStride {
			return nil, fmt.Errorf("sidecar returned %d landmark values, want %d",
				len(h.Landmarks), NumLandmarks*landmarkStride)
		}
		out.Landmarks = append(out.Landmarks, h.Landmarks...)
		out.Scores = append(out.Scores, h.Score)
		out.Handedness = append(out.Handedness, h.Handedness)
	}

	e.resetIdleTimer()
	return out, nil
}

// Close shuts down the sidecar process.
func (e *ServiceEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.shutdown()
}

func (e *ServiceEngine) ensureStarted() error {
	if e.started {
		return nil
	}

	scriptPath := findServiceScript()
	if scriptPath == "" {
		return fmt.Errorf("handpose_service.py not found")
	}

	pythonPath := findVenvPython()
	if pythonPath == "" {
		pythonPath = "python3"
	}

	e.cmd = exec.Command(pythonPath, scriptPath)

	stdin, err := e.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}
	stdout, err := e.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}
	e.cmd.Stderr = os.Stderr

	if err := e.cmd.Start(); err != nil {
		return fmt.Errorf("start handpose service: %w", err)
	}

	e.stdin = stdin
	e.stdout = bufio.NewReader(stdout)
	e.started = true
	return nil
}

func (e *ServiceEngine) shutdown() error {
	if !e.started {
		return nil
	}

	if e.idleTimer != nil {
		e.idleTimer.Stop()
		e.idleTimer = nil
	}
	if e.stdin != nil {
		e.stdin.Close()
	}

	err := e.cmd.Wait()
	e.started = false
	e.cmd = nil
	e.stdin = nil
	e.stdout = nil
	return err
}

func (e *ServiceEngine) resetIdleTimer() {
	if e.idleTimer != nil {
		e.idleTimer.Stop()
	}
	e.idleTimer = time.AfterFunc(serviceIdleTimeout, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.shutdown()
	})
}

func findServiceScript() string {
	execPath, err := os.Executable()
	var execDir string
	if err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		"scripts/handpose_service.py",
		"../scripts/handpose_service.py",
		filepath.Join(execDir, "scripts/handpose_service.py"),
		filepath.Join(os.Getenv("HOME"), ".mudra/scripts/handpose_service.py"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}

// findVenvPython looks for a Python interpreter in a virtual environment.
func findVenvPython() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	execDir := filepath.Dir(execPath)

	candidates := []string{
		"venv/bin/python",
		"../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".mudra/venv/bin/python"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}
